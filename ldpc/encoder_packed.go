package ldpc

import "github.com/observe-l/nrldpc/internal/pool"

// packedBackend is the word tier for lifting sizes up to 64: every block
// fits one uint64 (LSB first), so a block rotation is two shifts and a
// mask, and a block XOR is one word operation.
type packedBackend struct {
	pcm     *compactPCM
	bgK     int
	bgM     int
	ls      int
	mask    uint64
	hrShift int

	sys  []uint64 // bgK packed systematic blocks
	aux  []uint64 // bgM packed partial sums
	par  []uint64 // bgM packed parity blocks
	done func()

	highRate func(b *packedBackend)
}

func newPackedBackend(pcm *compactPCM, bgK, bgM, ls, hrCase, hrShift int) *packedBackend {
	b := &packedBackend{
		pcm:     pcm,
		bgK:     bgK,
		bgM:     bgM,
		ls:      ls,
		mask:    ^uint64(0) >> uint(64-ls),
		hrShift: hrShift,
	}
	words, done := pool.GetWordSlice(bgK + 2*bgM)
	b.done = done
	b.sys = words[:bgK]
	b.aux = words[bgK : bgK+bgM]
	b.par = words[bgK+bgM:]
	switch hrCase {
	case 1:
		b.highRate = (*packedBackend).highRateCase1
	case 2:
		b.highRate = (*packedBackend).highRateCase2
	case 3:
		b.highRate = (*packedBackend).highRateCase3
	default:
		b.highRate = (*packedBackend).highRateCase4
	}
	return b
}

func (b *packedBackend) encode(dst, src []byte, nLayers int) {
	b.load(src)
	b.preprocess()
	b.highRate(b)
	b.extRegion(nLayers)
	b.store(dst, nLayers)
}

func (b *packedBackend) load(src []byte) {
	ls := b.ls
	for k := 0; k < b.bgK; k++ {
		var w uint64
		for l, bit := range src[k*ls : (k+1)*ls] {
			w |= uint64(bit&1) << uint(l)
		}
		b.sys[k] = w
	}
}

func (b *packedBackend) preprocess() {
	for m := 0; m < b.bgM; m++ {
		var acc uint64
		for k := 0; k < b.bgK; k++ {
			s := b.pcm.at(m, k)
			if s == noEdge {
				continue
			}
			acc ^= rotWord(b.sys[k], int(s), b.ls, b.mask)
		}
		b.aux[m] = acc
	}
}

func (b *packedBackend) highRateCase1() {
	sum := b.aux[0] ^ b.aux[1] ^ b.aux[2] ^ b.aux[3]
	p0r := rotWord(sum, 1, b.ls, b.mask)
	b.par[0] = sum
	b.par[1] = b.aux[0] ^ p0r
	b.par[3] = b.aux[3] ^ p0r
	b.par[2] = b.aux[2] ^ b.par[3]
}

func (b *packedBackend) highRateCase2() {
	sum := b.aux[0] ^ b.aux[1] ^ b.aux[2] ^ b.aux[3]
	b.par[0] = rotWord(sum, (b.ls-b.hrShift)%b.ls, b.ls, b.mask)
	b.par[1] = b.aux[0] ^ b.par[0]
	b.par[3] = b.aux[3] ^ b.par[0]
	b.par[2] = b.aux[2] ^ b.par[3]
}

func (b *packedBackend) highRateCase3() {
	sum := b.aux[0] ^ b.aux[1] ^ b.aux[2] ^ b.aux[3]
	p0r := rotWord(sum, 1, b.ls, b.mask)
	b.par[0] = sum
	b.par[1] = b.aux[0] ^ p0r
	b.par[2] = b.aux[1] ^ b.par[1]
	b.par[3] = b.aux[3] ^ p0r
}

func (b *packedBackend) highRateCase4() {
	sum := b.aux[0] ^ b.aux[1] ^ b.aux[2] ^ b.aux[3]
	b.par[0] = rotWord(sum, (b.ls-b.hrShift)%b.ls, b.ls, b.mask)
	b.par[1] = b.aux[0] ^ b.par[0]
	b.par[2] = b.aux[1] ^ b.par[1]
	b.par[3] = b.aux[3] ^ b.par[0]
}

func (b *packedBackend) extRegion(nLayers int) {
	for m := 4; m < nLayers; m++ {
		w := b.aux[m]
		for j := 0; j < 4; j++ {
			s := b.pcm.at(m, b.bgK+j)
			if s == noEdge {
				continue
			}
			w ^= rotWord(b.par[j], int(s), b.ls, b.mask)
		}
		b.par[m] = w
	}
}

func (b *packedBackend) store(dst []byte, nLayers int) {
	ls := b.ls
	for k := 2; k < b.bgK; k++ {
		storeWord(dst[(k-2)*ls:(k-1)*ls], b.sys[k])
	}
	skip := (b.bgK - 2) * ls
	for m := 0; m < nLayers; m++ {
		storeWord(dst[skip+m*ls:skip+(m+1)*ls], b.par[m])
	}
}

func storeWord(dst []byte, w uint64) {
	for l := range dst {
		dst[l] = byte(w>>uint(l)) & 1
	}
}

func (b *packedBackend) release() {
	if b.done != nil {
		b.done()
		b.done = nil
		b.sys, b.aux, b.par = nil, nil, nil
	}
}
