// Package mem provides small buffer-manipulation helpers shared by the
// hazmat packages.
package mem

// XORInPlace sets dst[i] ^= src[i] for each i in range dst; src must be at
// least as long as dst.
func XORInPlace(dst, src []byte) {
	for i, s := range src[:len(dst)] {
		dst[i] ^= s
	}
}

// XORWordsInPlace sets dst[i] ^= src[i] for each of the first n words. It is
// the word-at-a-time counterpart of XORInPlace, used where state is kept as
// [N]uint32 rather than bytes.
func XORWordsInPlace(dst, src []uint32, n int) {
	for i := 0; i < n; i++ {
		dst[i] ^= src[i]
	}
}

// SliceForAppend extends dst by n bytes, reusing its backing array when there
// is enough spare capacity. It returns the head slice (dst, possibly
// reallocated) and the tail slice of freshly appended, zeroed bytes.
func SliceForAppend(dst []byte, n int) (head, tail []byte) {
	total := len(dst) + n
	if cap(dst) >= total {
		head = dst[:total]
	} else {
		head = make([]byte, total)
		copy(head, dst)
	}
	tail = head[len(dst):]
	return head, tail
}
