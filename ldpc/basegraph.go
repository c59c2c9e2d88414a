package ldpc

import "fmt"

// BaseGraph selects one of the two NR LDPC base matrices.
type BaseGraph uint8

const (
	// BG1 is the large base graph: 22 systematic block columns, 46 parity
	// block rows, 68 block columns in total.
	BG1 BaseGraph = iota
	// BG2 is the small base graph: 10 systematic block columns, 42 parity
	// block rows, 52 block columns in total.
	BG2
)

func (bg BaseGraph) String() string {
	switch bg {
	case BG1:
		return "BG1"
	case BG2:
		return "BG2"
	}
	return fmt.Sprintf("BG%d?", uint8(bg)+1)
}

func (bg BaseGraph) valid() bool { return bg == BG1 || bg == BG2 }

// dims returns the block dimensions (bgK, bgM, bgN) of the base graph.
func (bg BaseGraph) dims() (k, m, n int) {
	if bg == BG1 {
		return 22, 46, 68
	}
	return 10, 42, 52
}

// numSets is the number of lifting-size sets. Each supported lifting size
// belongs to exactly one set, and the set index picks the shift column of
// the base graph tables.
const numSets = 8

// maxLiftingSize is the largest supported lifting size across all sets.
const maxLiftingSize = 384

// liftingSets lists the supported lifting sizes per set index. Set i holds
// the sizes a*2^j for the i-th odd seed a in {2,3,5,7,9,11,13,15}.
var liftingSets = [numSets][]int{
	{2, 4, 8, 16, 32, 64, 128, 256},
	{3, 6, 12, 24, 48, 96, 192, 384},
	{5, 10, 20, 40, 80, 160, 320},
	{7, 14, 28, 56, 112, 224},
	{9, 18, 36, 72, 144, 288},
	{11, 22, 44, 88, 176, 352},
	{13, 26, 52, 104, 208},
	{15, 30, 60, 120, 240},
}

// setIndexOf classifies a lifting size into its set index, or -1 when the
// size is not one of the 51 supported values.
func setIndexOf(ls int) int {
	if ls < 2 || ls > maxLiftingSize {
		return -1
	}
	for i := range liftingSets {
		for _, z := range liftingSets[i] {
			if z == ls {
				return i
			}
		}
	}
	return -1
}

// SupportedLiftingSizes returns all supported lifting sizes in increasing
// order. The returned slice is freshly allocated.
func SupportedLiftingSizes() []int {
	out := make([]int, 0, 51)
	for z := 2; z <= maxLiftingSize; z++ {
		if setIndexOf(z) >= 0 {
			out = append(out, z)
		}
	}
	return out
}

// highRateCase resolves which of the four high-rate kernel variants serves
// a base graph and lifting-size set. The split mirrors the structure of the
// first parity column: BG1 set 6 and BG2 sets 3 and 7 carry a non-zero
// shift there and need their own closing order.
func highRateCase(bg BaseGraph, setIdx int) (int, error) {
	switch {
	case bg == BG1 && setIdx != 6:
		return 1, nil
	case bg == BG1:
		return 2, nil
	case bg == BG2 && setIdx != 3 && setIdx != 7:
		return 3, nil
	case bg == BG2:
		return 4, nil
	}
	return 0, fmt.Errorf("%w: no high-rate kernel for %v set %d", ErrBaseGraph, bg, setIdx)
}
