package ldpc

import "github.com/observe-l/nrldpc/internal/pool"

// genericBackend is the portable tier: one bit per byte, block recursions
// written out directly. The packed tiers must match it bit for bit.
type genericBackend struct {
	pcm     *compactPCM
	bgK     int
	bgM     int
	ls      int
	hrShift int

	aux  []byte // bgM blocks of systematic partial sums
	done func()

	highRate func(b *genericBackend, dst []byte)
}

func newGenericBackend(pcm *compactPCM, bgK, bgM, ls, hrCase, hrShift int) *genericBackend {
	b := &genericBackend{
		pcm:     pcm,
		bgK:     bgK,
		bgM:     bgM,
		ls:      ls,
		hrShift: hrShift,
	}
	b.aux, b.done = pool.GetByteSlice(bgM * ls)
	switch hrCase {
	case 1:
		b.highRate = (*genericBackend).highRateCase1
	case 2:
		b.highRate = (*genericBackend).highRateCase2
	case 3:
		b.highRate = (*genericBackend).highRateCase3
	default:
		b.highRate = (*genericBackend).highRateCase4
	}
	return b
}

func (b *genericBackend) encode(dst, src []byte, nLayers int) {
	ls := b.ls
	copy(dst[:(b.bgK-2)*ls], src[2*ls:b.bgK*ls])
	b.preprocess(src)
	b.highRate(b, dst)
	b.extRegion(dst, nLayers)
}

// preprocess accumulates, for every block row, the rotated systematic
// blocks that row checks: aux[m][l] = sum_k src[k][(l+shift(m,k)) mod ls].
func (b *genericBackend) preprocess(src []byte) {
	ls := b.ls
	for i := range b.aux {
		b.aux[i] = 0
	}
	for m := 0; m < b.bgM; m++ {
		row := b.aux[m*ls : (m+1)*ls]
		for k := 0; k < b.bgK; k++ {
			s := b.pcm.at(m, k)
			if s == noEdge {
				continue
			}
			xorRot(row, src[k*ls:(k+1)*ls], int(s))
		}
	}
}

// highRateCase1 solves the four core parity blocks for BG1 with a regular
// lifting-size set. The rotate-by-one pattern of the first parity column
// makes the plain sum of the four partial sums equal the first parity
// block; the remaining three follow by back-substitution along the double
// diagonal.
func (b *genericBackend) highRateCase1(dst []byte) {
	ls := b.ls
	aux := b.aux
	skip0 := (b.bgK - 2) * ls
	skip1 := skip0 + ls
	skip2 := skip0 + 2*ls
	skip3 := skip0 + 3*ls
	for k := 0; k < ls; k++ {
		dst[skip0+k] = aux[k] ^ aux[ls+k] ^ aux[2*ls+k] ^ aux[3*ls+k]
	}
	for k := 0; k < ls; k++ {
		p0 := dst[skip0+(k+1)%ls]
		dst[skip1+k] = aux[k] ^ p0
		dst[skip3+k] = aux[3*ls+k] ^ p0
		dst[skip2+k] = aux[2*ls+k] ^ dst[skip3+k]
	}
}

// highRateCase2 covers BG1 with lifting-size set 6, where row 1 applies
// the set's characteristic rotation to the first parity block: the sum of
// the partial sums equals that rotation of the block, so it is undone
// before back-substitution.
func (b *genericBackend) highRateCase2(dst []byte) {
	ls := b.ls
	aux := b.aux
	skip0 := (b.bgK - 2) * ls
	skip1 := skip0 + ls
	skip2 := skip0 + 2*ls
	skip3 := skip0 + 3*ls
	for k := 0; k < ls; k++ {
		i := k - b.hrShift
		if i < 0 {
			i += ls
		}
		dst[skip0+k] = aux[i] ^ aux[ls+i] ^ aux[2*ls+i] ^ aux[3*ls+i]
	}
	for k := 0; k < ls; k++ {
		p0 := dst[skip0+k]
		dst[skip1+k] = aux[k] ^ p0
		dst[skip3+k] = aux[3*ls+k] ^ p0
		dst[skip2+k] = aux[2*ls+k] ^ dst[skip3+k]
	}
}

// highRateCase3 covers BG2 with a regular lifting-size set. Same closing
// idea as case 1, but the second diagonal chains rows 0-1-2 instead of
// 0-1 and 2-3.
func (b *genericBackend) highRateCase3(dst []byte) {
	ls := b.ls
	aux := b.aux
	skip0 := (b.bgK - 2) * ls
	skip1 := skip0 + ls
	skip2 := skip0 + 2*ls
	skip3 := skip0 + 3*ls
	for k := 0; k < ls; k++ {
		dst[skip0+k] = aux[k] ^ aux[ls+k] ^ aux[2*ls+k] ^ aux[3*ls+k]
	}
	for k := 0; k < ls; k++ {
		p0 := dst[skip0+(k+1)%ls]
		dst[skip1+k] = aux[k] ^ p0
		dst[skip2+k] = aux[ls+k] ^ dst[skip1+k]
		dst[skip3+k] = aux[3*ls+k] ^ p0
	}
}

// highRateCase4 covers BG2 with lifting-size sets 3 and 7, where row 2
// carries the characteristic rotation.
func (b *genericBackend) highRateCase4(dst []byte) {
	ls := b.ls
	aux := b.aux
	skip0 := (b.bgK - 2) * ls
	skip1 := skip0 + ls
	skip2 := skip0 + 2*ls
	skip3 := skip0 + 3*ls
	for k := 0; k < ls; k++ {
		i := k - b.hrShift
		if i < 0 {
			i += ls
		}
		dst[skip0+k] = aux[i] ^ aux[ls+i] ^ aux[2*ls+i] ^ aux[3*ls+i]
	}
	for k := 0; k < ls; k++ {
		p0 := dst[skip0+k]
		dst[skip1+k] = aux[k] ^ p0
		dst[skip2+k] = aux[ls+k] ^ dst[skip1+k]
		dst[skip3+k] = aux[3*ls+k] ^ p0
	}
}

// extRegion fills parity layers 4..nLayers-1. Each one is its row's
// systematic partial sum plus the rotated core parity blocks the row
// connects to; the identity diagonal makes the layer explicit.
func (b *genericBackend) extRegion(dst []byte, nLayers int) {
	ls := b.ls
	skip := (b.bgK - 2) * ls
	for m := 4; m < nLayers; m++ {
		layer := dst[skip+m*ls : skip+(m+1)*ls]
		copy(layer, b.aux[m*ls:(m+1)*ls])
		for j := 0; j < 4; j++ {
			s := b.pcm.at(m, b.bgK+j)
			if s == noEdge {
				continue
			}
			xorRot(layer, dst[skip+j*ls:skip+(j+1)*ls], int(s))
		}
	}
}

func (b *genericBackend) release() {
	if b.done != nil {
		b.done()
		b.done = nil
		b.aux = nil
	}
}
