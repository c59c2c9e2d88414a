package ldpc

import (
	"bytes"
	"math/rand"
	"testing"
)

// checkParity verifies every active block row of the lifted parity-check
// matrix against the punctured-input codeword: the rotated systematic
// blocks come from src, the parity blocks from cw.
func checkParity(t *testing.T, bg BaseGraph, ls int, src, cw []byte, nLayers int) {
	t.Helper()
	tab, err := baseGraphFor(bg)
	if err != nil {
		t.Fatal(err)
	}
	pcm, err := newCompactPCM(tab, ls, setIndexOf(ls))
	if err != nil {
		t.Fatal(err)
	}
	row := make([]byte, ls)
	for m := 0; m < nLayers; m++ {
		for i := range row {
			row[i] = 0
		}
		for _, e := range tab.rowEntries(m) {
			var blk []byte
			if e.col < tab.k {
				blk = src[e.col*ls : (e.col+1)*ls]
			} else {
				j := e.col - tab.k
				if j >= nLayers {
					t.Fatalf("row %d references parity block %d beyond %d layers", m, j, nLayers)
				}
				blk = cw[(tab.k-2+j)*ls : (tab.k-2+j+1)*ls]
			}
			xorRot(row, blk, int(pcm.at(e.row, e.col)))
		}
		for l, v := range row {
			if v != 0 {
				t.Fatalf("%v ls %d: check row %d fails at bit %d", bg, ls, m, l)
			}
		}
	}
}

func encodeAndCheck(t *testing.T, bg BaseGraph, ls int, typ EncoderType, rng *rand.Rand) {
	t.Helper()
	e, err := NewEncoder(bg, ls, typ)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	src := randomBits(rng, e.MessageLen())

	cw, err := e.Encode(nil, src)
	if err != nil {
		t.Fatal(err)
	}
	k, m, _ := bg.dims()
	checkParity(t, bg, ls, src, cw, m)

	// A rate-matched codeword satisfies the checks of its active layers.
	rm, err := e.EncodeRM(nil, src, (k+2)*ls+3*ls)
	if err != nil {
		t.Fatal(err)
	}
	checkParity(t, bg, ls, src, rm, len(rm)/ls-k+2)
}

// The lifting sizes below exercise every high-rate kernel variant with
// several sizes per set.
var kernelGrid = []struct {
	bg BaseGraph
	ls int
}{
	{BG1, 2}, {BG1, 64}, {BG1, 256}, // case 1, set 0
	{BG1, 24}, {BG1, 384}, // case 1, set 1
	{BG1, 40}, {BG1, 112}, {BG1, 288}, {BG1, 352}, // case 1, other sets
	{BG1, 13}, {BG1, 52}, {BG1, 104}, {BG1, 208}, // case 2, set 6
	{BG2, 8}, {BG2, 96}, {BG2, 320}, // case 3, sets 0-2
	{BG2, 18}, {BG2, 144}, {BG2, 22}, {BG2, 26}, // case 3, sets 4-6
	{BG2, 7}, {BG2, 56}, {BG2, 224}, // case 4, set 3
	{BG2, 15}, {BG2, 120}, {BG2, 240}, // case 4, set 7
}

func TestParityGeneric(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, g := range kernelGrid {
		encodeAndCheck(t, g.bg, g.ls, TypeGeneric, rng)
	}
}

func TestParityPacked(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for _, g := range kernelGrid {
		encodeAndCheck(t, g.bg, g.ls, TypePacked, rng)
	}
}

// Encoding is linear over GF(2): the codeword of a XOR of messages is the
// XOR of the codewords.
func TestEncodeLinearity(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for _, g := range []struct {
		bg BaseGraph
		ls int
	}{{BG1, 16}, {BG1, 26}, {BG2, 20}, {BG2, 30}} {
		e, err := NewEncoder(g.bg, g.ls, TypeGeneric)
		if err != nil {
			t.Fatal(err)
		}
		a := randomBits(rng, e.MessageLen())
		b := randomBits(rng, e.MessageLen())
		ab := make([]byte, len(a))
		for i := range ab {
			ab[i] = a[i] ^ b[i]
		}

		ca, err := e.Encode(nil, a)
		if err != nil {
			t.Fatal(err)
		}
		cb, err := e.Encode(nil, b)
		if err != nil {
			t.Fatal(err)
		}
		cab, err := e.Encode(nil, ab)
		if err != nil {
			t.Fatal(err)
		}
		for i := range cab {
			ca[i] ^= cb[i]
		}
		if !bytes.Equal(ca, cab) {
			t.Fatalf("%v ls %d: encoding not linear", g.bg, g.ls)
		}
		e.Close()
	}
}
