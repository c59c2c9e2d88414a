// Package pool provides typed slice pools for encoder scratch buffers.
package pool

import "sync"

// Slice pools for efficient reuse of encoder working memory. Encoder
// instances borrow their auxiliary buffers here and hand them back when
// closed, so short-lived instances do not churn the allocator.
var (
	byteSlicePool = sync.Pool{
		New: func() any { return &[]byte{} },
	}
	wordSlicePool = sync.Pool{
		New: func() any { return &[]uint64{} },
	}
)

// GetByteSlice retrieves a byte slice of the exact requested length from
// the pool, allocating when the pooled capacity is insufficient. The
// contents are unspecified. The returned cleanup function hands the slice
// back to the pool; the slice must not be used after calling it.
func GetByteSlice(size int) ([]byte, func()) {
	ptr, _ := byteSlicePool.Get().(*[]byte)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]byte, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { byteSlicePool.Put(ptr) }
}

// GetWordSlice retrieves a uint64 slice of the exact requested length from
// the pool, allocating when the pooled capacity is insufficient. The
// contents are unspecified. The returned cleanup function hands the slice
// back to the pool; the slice must not be used after calling it.
func GetWordSlice(size int) ([]uint64, func()) {
	ptr, _ := wordSlicePool.Get().(*[]uint64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint64, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { wordSlicePool.Put(ptr) }
}
