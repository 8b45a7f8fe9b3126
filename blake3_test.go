package blake3_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	blake3 "github.com/lamb356/blake3-optimized-sub001"
)

// input returns n bytes where input[i] = i mod 251, the standard BLAKE3
// test vector input.
func input(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestVectors(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{0, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
		{1, "2d3adedff11b61f14c886e35afa036736dcd87a74d27b5c1510225d0f592e213"},
		{1024, "42214739f095a406f3fc83deb889744ac00df831c10daa55189b5d121c855af7"},
		{1025, "d00278ae47eb27b34faecf67b4fe263f82d5412916c1ffd97c8cb7fb814b8444"},
		{102400, "bc3e3d41a1146b069abffad3c0d44860cf664390afce4d9661f7902e7943e085"},
	}

	for _, c := range cases {
		got := blake3.Sum256(nil, input(c.n))
		if hex.EncodeToString(got) != c.want {
			t.Errorf("n=%d: Sum256 = %x, want %s", c.n, got, c.want)
		}
	}
}

// TestStreamingEquivalence checks that splitting a write into arbitrary
// chunks never changes the digest.
func TestStreamingEquivalence(t *testing.T) {
	sizes := []int{0, 1, 2, 3, 63, 64, 65, 127, 128, 1023, 1024, 1025, 2048, 3072, 4096}
	partitions := [][]int{
		{1},
		{7, 13, 1},
		{1024},
		{512, 512},
		{1, 1, 1, 1, 1},
	}

	for _, n := range sizes {
		data := input(n)
		want := blake3.Sum256(nil, data)

		for _, parts := range partitions {
			h := blake3.New()
			pos := 0
			for _, p := range parts {
				if pos >= len(data) {
					break
				}
				end := pos + p
				if end > len(data) {
					end = len(data)
				}
				_, _ = h.Write(data[pos:end])
				pos = end
			}
			if pos < len(data) {
				_, _ = h.Write(data[pos:])
			}
			got := h.Digest()
			if !bytes.Equal(got[:], want) {
				t.Errorf("n=%d partition=%v: streamed digest mismatch", n, parts)
			}
		}
	}
}

func TestKeyedAndDeriveKeyDistinct(t *testing.T) {
	ctx := "example.com 2024 protocol v1"
	var material [32]byte

	dk := blake3.NewDeriveKey(ctx)
	_, _ = dk.Write(material[:])
	derived := dk.Digest()

	ctxHash := blake3.Sum256(nil, []byte(ctx))
	var ctxKey [32]byte
	copy(ctxKey[:], ctxHash)

	keyed := blake3.NewKeyed(&ctxKey)
	_, _ = keyed.Write(material[:])
	keyedDigest := keyed.Digest()

	if derived == keyedDigest {
		t.Fatal("DeriveKey and Keyed(hash(ctx)) must be distinct constructions")
	}
}

func TestXOFReaderExtendsDigest(t *testing.T) {
	h := blake3.New()
	_, _ = h.Write([]byte("hello world"))
	digest := h.Digest()

	r := h.XOFReader()
	out := make([]byte, 64)
	if _, err := r.Read(out); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(out[:32], digest[:]) {
		t.Fatal("first 32 bytes of XOF output must match the 32-byte digest")
	}

	// Reading more afterward continues the same stream rather than repeating.
	rest := make([]byte, 32)
	if _, err := r.Read(rest); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if bytes.Equal(rest, out[:32]) {
		t.Fatal("XOF output repeated instead of continuing the squeeze")
	}
}

func TestCloneIndependence(t *testing.T) {
	h := blake3.New()
	_, _ = h.Write([]byte("shared prefix"))

	clone := h.Clone()
	_, _ = h.Write([]byte(" original tail"))
	_, _ = clone.Write([]byte(" clone tail"))

	if h.Digest() == clone.Digest() {
		t.Fatal("clone must be independent of the original after diverging writes")
	}
}
