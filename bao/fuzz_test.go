package bao_test

import (
	"bytes"
	"testing"

	"github.com/lamb356/blake3-optimized-sub001/bao"
	"github.com/lamb356/blake3-optimized-sub001/internal/testdata"
	fuzz "github.com/trailofbits/go-fuzz-utils"
)

// FuzzDecodeCorruption generates a valid combined encoding, flips a single
// fuzzed byte of it, and checks that Decode never panics and never accepts
// the corrupted stream as the original content.
func FuzzDecodeCorruption(f *testing.F) {
	drbg := testdata.New("bao decode corruption")
	for range 10 {
		f.Add(drbg.Data(2000), uint16(500))
	}

	f.Fuzz(func(t *testing.T, seed []byte, flipOffsetSeed uint16) {
		tp, err := fuzz.NewTypeProvider(seed)
		if err != nil {
			t.Skip(err)
		}

		content, err := tp.GetBytes()
		if err != nil {
			t.Skip(err)
		}
		if len(content) > 8192 {
			content = content[:8192]
		}

		encoded, root := bao.Encode(content, false)
		if len(encoded) == 0 {
			t.Skip("empty encoding")
		}

		corrupted := append([]byte(nil), encoded...)
		offset := int(flipOffsetSeed) % len(corrupted)
		corrupted[offset] ^= 0x01

		decoded, err := bao.Decode(corrupted, root, nil)
		if err == nil && !bytes.Equal(decoded, content) {
			t.Fatalf("Decode accepted corrupted input and returned the wrong content (len=%d, offset=%d)", len(content), offset)
		}
	})
}

// FuzzDecodeNeverPanics feeds arbitrary byte slices and root hashes to
// Decode, which must always return an error rather than panicking on
// malformed input.
func FuzzDecodeNeverPanics(f *testing.F) {
	drbg := testdata.New("bao decode garbage")
	for range 10 {
		f.Add(drbg.Data(256))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		var root [32]byte
		copy(root[:], data)

		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("Decode panicked on malformed input: %v", r)
			}
		}()
		_, _ = bao.Decode(data, root, nil)
	})
}
