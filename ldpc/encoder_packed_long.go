package ldpc

import "github.com/observe-l/nrldpc/internal/pool"

// packedLongBackend is the word tier for lifting sizes above 64: a block
// spans a fixed-size word group and rotations cross word boundaries.
type packedLongBackend struct {
	pcm     *compactPCM
	bgK     int
	bgM     int
	ls      int
	wz      int // words per block
	hrShift int

	sys  []uint64 // bgK blocks
	aux  []uint64 // bgM blocks
	par  []uint64 // bgM blocks
	tmp  []uint64 // one block of rotation scratch
	acc  []uint64 // one block of summation scratch
	done func()

	highRate func(b *packedLongBackend)
}

func newPackedLongBackend(pcm *compactPCM, bgK, bgM, ls, hrCase, hrShift int) *packedLongBackend {
	wz := (ls + 63) / 64
	b := &packedLongBackend{
		pcm:     pcm,
		bgK:     bgK,
		bgM:     bgM,
		ls:      ls,
		wz:      wz,
		hrShift: hrShift,
	}
	words, done := pool.GetWordSlice((bgK + 2*bgM + 2) * wz)
	b.done = done
	b.sys = words[:bgK*wz]
	b.aux = words[bgK*wz : (bgK+bgM)*wz]
	b.par = words[(bgK+bgM)*wz : (bgK+2*bgM)*wz]
	b.tmp = words[(bgK+2*bgM)*wz : (bgK+2*bgM+1)*wz]
	b.acc = words[(bgK+2*bgM+1)*wz:]
	switch hrCase {
	case 1:
		b.highRate = (*packedLongBackend).highRateCase1
	case 2:
		b.highRate = (*packedLongBackend).highRateCase2
	case 3:
		b.highRate = (*packedLongBackend).highRateCase3
	default:
		b.highRate = (*packedLongBackend).highRateCase4
	}
	return b
}

func (b *packedLongBackend) sysBlk(k int) []uint64 { return b.sys[k*b.wz : (k+1)*b.wz] }
func (b *packedLongBackend) auxBlk(m int) []uint64 { return b.aux[m*b.wz : (m+1)*b.wz] }
func (b *packedLongBackend) parBlk(m int) []uint64 { return b.par[m*b.wz : (m+1)*b.wz] }

func (b *packedLongBackend) encode(dst, src []byte, nLayers int) {
	b.load(src)
	b.preprocess()
	b.highRate(b)
	b.extRegion(nLayers)
	b.store(dst, nLayers)
}

func (b *packedLongBackend) load(src []byte) {
	ls := b.ls
	for k := 0; k < b.bgK; k++ {
		packBits(b.sysBlk(k), src[k*ls:(k+1)*ls])
	}
}

func (b *packedLongBackend) preprocess() {
	for m := 0; m < b.bgM; m++ {
		row := b.auxBlk(m)
		for i := range row {
			row[i] = 0
		}
		for k := 0; k < b.bgK; k++ {
			s := b.pcm.at(m, k)
			if s == noEdge {
				continue
			}
			rotWords(b.tmp, b.sysBlk(k), int(s), b.ls)
			xorWordsInto(row, b.tmp)
		}
	}
}

// sumCore leaves the XOR of the first four partial sums in acc.
func (b *packedLongBackend) sumCore() {
	copy(b.acc, b.auxBlk(0))
	xorWordsInto(b.acc, b.auxBlk(1))
	xorWordsInto(b.acc, b.auxBlk(2))
	xorWordsInto(b.acc, b.auxBlk(3))
}

func (b *packedLongBackend) highRateCase1() {
	b.sumCore()
	p0, p1, p2, p3 := b.parBlk(0), b.parBlk(1), b.parBlk(2), b.parBlk(3)
	copy(p0, b.acc)
	rotWords(b.tmp, p0, 1, b.ls)
	copy(p1, b.auxBlk(0))
	xorWordsInto(p1, b.tmp)
	copy(p3, b.auxBlk(3))
	xorWordsInto(p3, b.tmp)
	copy(p2, b.auxBlk(2))
	xorWordsInto(p2, p3)
}

func (b *packedLongBackend) highRateCase2() {
	b.sumCore()
	p0, p1, p2, p3 := b.parBlk(0), b.parBlk(1), b.parBlk(2), b.parBlk(3)
	rotWords(p0, b.acc, (b.ls-b.hrShift)%b.ls, b.ls)
	copy(p1, b.auxBlk(0))
	xorWordsInto(p1, p0)
	copy(p3, b.auxBlk(3))
	xorWordsInto(p3, p0)
	copy(p2, b.auxBlk(2))
	xorWordsInto(p2, p3)
}

func (b *packedLongBackend) highRateCase3() {
	b.sumCore()
	p0, p1, p2, p3 := b.parBlk(0), b.parBlk(1), b.parBlk(2), b.parBlk(3)
	copy(p0, b.acc)
	rotWords(b.tmp, p0, 1, b.ls)
	copy(p1, b.auxBlk(0))
	xorWordsInto(p1, b.tmp)
	copy(p2, b.auxBlk(1))
	xorWordsInto(p2, p1)
	copy(p3, b.auxBlk(3))
	xorWordsInto(p3, b.tmp)
}

func (b *packedLongBackend) highRateCase4() {
	b.sumCore()
	p0, p1, p2, p3 := b.parBlk(0), b.parBlk(1), b.parBlk(2), b.parBlk(3)
	rotWords(p0, b.acc, (b.ls-b.hrShift)%b.ls, b.ls)
	copy(p1, b.auxBlk(0))
	xorWordsInto(p1, p0)
	copy(p2, b.auxBlk(1))
	xorWordsInto(p2, p1)
	copy(p3, b.auxBlk(3))
	xorWordsInto(p3, p0)
}

func (b *packedLongBackend) extRegion(nLayers int) {
	for m := 4; m < nLayers; m++ {
		layer := b.parBlk(m)
		copy(layer, b.auxBlk(m))
		for j := 0; j < 4; j++ {
			s := b.pcm.at(m, b.bgK+j)
			if s == noEdge {
				continue
			}
			rotWords(b.tmp, b.parBlk(j), int(s), b.ls)
			xorWordsInto(layer, b.tmp)
		}
	}
}

func (b *packedLongBackend) store(dst []byte, nLayers int) {
	ls := b.ls
	for k := 2; k < b.bgK; k++ {
		unpackBits(dst[(k-2)*ls:(k-1)*ls], b.sysBlk(k))
	}
	skip := (b.bgK - 2) * ls
	for m := 0; m < nLayers; m++ {
		unpackBits(dst[skip+m*ls:skip+(m+1)*ls], b.parBlk(m))
	}
}

func (b *packedLongBackend) release() {
	if b.done != nil {
		b.done()
		b.done = nil
		b.sys, b.aux, b.par, b.tmp, b.acc = nil, nil, nil, nil, nil
	}
}
