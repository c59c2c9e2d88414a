package ldpc

// xorRot xors a cyclically rotated block into dst: dst[l] ^= src[(l+s) mod z]
// with z = len(dst) = len(src) and 0 <= s < z. dst and src must not overlap.
func xorRot(dst, src []byte, s int) {
	if s == 0 {
		for l, v := range src {
			dst[l] ^= v
		}
		return
	}
	n := len(src)
	for l, v := range src[s:] {
		dst[l] ^= v
	}
	tail := dst[n-s:]
	for l, v := range src[:s] {
		tail[l] ^= v
	}
}

// rotWord rotates a block packed into a single word, LSB-first: bit l of the
// result is bit (l+s) mod z of w. Bits at positions >= z must be zero and
// stay zero. mask keeps the low z bits.
func rotWord(w uint64, s, z int, mask uint64) uint64 {
	if s == 0 {
		return w
	}
	return (w>>uint(s) | w<<uint(z-s)) & mask
}

// rotWords writes rot(src, s) into dst for a block spanning several words:
// bit l of dst is bit (l+s) mod z of src. Bits at positions >= z are zero on
// both sides. dst and src must not alias.
func rotWords(dst, src []uint64, s, z int) {
	if s == 0 {
		copy(dst, src)
		return
	}
	wordOff := s >> 6
	bitOff := uint(s & 63)
	wz := len(src)
	for i := range dst {
		dst[i] = 0
	}
	// bits [s, z) of src land at [0, z-s)
	for i := 0; i+wordOff < wz; i++ {
		v := src[i+wordOff] >> bitOff
		if bitOff != 0 && i+wordOff+1 < wz {
			v |= src[i+wordOff+1] << (64 - bitOff)
		}
		dst[i] = v
	}
	// bits [0, s) of src wrap to [z-s, z)
	for b := 0; b < s; b++ {
		if src[b>>6]&(1<<uint(b&63)) != 0 {
			p := z - s + b
			dst[p>>6] |= 1 << uint(p&63)
		}
	}
}

func xorWordsInto(dst, src []uint64) {
	for i, v := range src {
		dst[i] ^= v
	}
}

// packBits packs z bytes holding one bit each into LSB-first words.
// Only the least significant bit of every byte is taken.
func packBits(dst []uint64, src []byte) {
	for i := range dst {
		dst[i] = 0
	}
	for l, b := range src {
		dst[l>>6] |= uint64(b&1) << uint(l&63)
	}
}

// unpackBits expands LSB-first packed words into one byte per bit.
func unpackBits(dst []byte, src []uint64) {
	for l := range dst {
		dst[l] = byte(src[l>>6]>>uint(l&63)) & 1
	}
}
