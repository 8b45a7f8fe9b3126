package tree_test

import (
	"testing"

	"github.com/lamb356/blake3-optimized-sub001/hazmat/tree"
)

func data(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestStreamingEquivalenceAcrossChunkBoundaries(t *testing.T) {
	n := 4096 + 37 // spans several full chunks plus a short final one

	whole := tree.New()
	_, _ = whole.Write(data(n))
	want := whole.Digest()

	splits := [][]int{
		{1, 1023, 1, 3071, 1},
		{1024, 1024, 1024, 1024, 37 - 3}, // boundary-aligned then a short tail
		{4133},
	}

	for _, parts := range splits {
		h := tree.New()
		d := data(n)
		pos := 0
		for _, p := range parts {
			if pos+p > len(d) {
				p = len(d) - pos
			}
			if p <= 0 {
				continue
			}
			_, _ = h.Write(d[pos : pos+p])
			pos += p
		}
		if pos < len(d) {
			_, _ = h.Write(d[pos:])
		}
		if got := h.Digest(); got != want {
			t.Fatalf("partition %v: digest mismatch", parts)
		}
	}
}

func TestKeyedAndUnkeyedDiffer(t *testing.T) {
	unkeyed := tree.New()
	_, _ = unkeyed.Write([]byte("same input"))

	var key [tree.KeySize]byte
	for i := range key {
		key[i] = byte(i)
	}
	keyed := tree.NewKeyed(&key)
	_, _ = keyed.Write([]byte("same input"))

	if unkeyed.Digest() == keyed.Digest() {
		t.Fatal("keyed and unkeyed hashing of the same input must differ")
	}
}

func TestCloneDivergesIndependently(t *testing.T) {
	h := tree.New()
	_, _ = h.Write(data(2000))

	clone := h.Clone()
	_, _ = h.Write([]byte("original"))
	_, _ = clone.Write([]byte("clone"))

	if h.Digest() == clone.Digest() {
		t.Fatal("Clone must be independent after diverging writes")
	}
}

func TestResetMatchesFreshHasher(t *testing.T) {
	h := tree.New()
	_, _ = h.Write(data(5000))
	h.Reset()
	_, _ = h.Write(data(10))

	fresh := tree.New()
	_, _ = fresh.Write(data(10))

	if h.Digest() != fresh.Digest() {
		t.Fatal("Reset did not restore a fresh-hasher-equivalent state")
	}
}

func TestFinalizeRejectsNonPositiveLength(t *testing.T) {
	h := tree.New()
	_, _ = h.Write([]byte("x"))
	if _, err := h.Finalize(nil, 0); err != tree.ErrInvalidOutputLength {
		t.Fatalf("Finalize(0) = %v, want ErrInvalidOutputLength", err)
	}
}

func TestFinalizeDoesNotMutateState(t *testing.T) {
	h := tree.New()
	_, _ = h.Write([]byte("hello"))

	first, _ := h.Finalize(nil, 32)
	second, _ := h.Finalize(nil, 32)

	if string(first) != string(second) {
		t.Fatal("repeated Finalize calls must return the same output")
	}
}
