package iroh_test

import (
	"bytes"
	"testing"

	blake3 "github.com/lamb356/blake3-optimized-sub001"
	"github.com/lamb356/blake3-optimized-sub001/bao/iroh"
)

func input(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func rootHashOf(content []byte) [32]byte {
	var h [32]byte
	copy(h[:], blake3.Sum256(nil, content))
	return h
}

func TestEquivalenceAcrossGroupLogs(t *testing.T) {
	sizes := []int{0, 1, 500, 1024, 17408, 1 << 18}

	for _, n := range sizes {
		content := input(n)
		want := rootHashOf(content)

		for g := uint8(0); g <= 4; g++ {
			for _, outboard := range []bool{false, true} {
				encoded, root, err := iroh.Encode(content, outboard, g)
				if err != nil {
					t.Fatalf("n=%d g=%d: Encode: %v", n, g, err)
				}
				if root != want {
					t.Fatalf("n=%d g=%d: root hash does not equal BLAKE3(content)", n, g)
				}

				var outboardData []byte
				if outboard {
					outboardData = content
				}
				decoded, err := iroh.Decode(encoded, root, outboardData, g)
				if err != nil {
					t.Fatalf("n=%d g=%d outboard=%v: Decode: %v", n, g, outboard, err)
				}
				if !bytes.Equal(decoded, content) {
					t.Fatalf("n=%d g=%d outboard=%v: round trip mismatch", n, g, outboard)
				}
			}
		}
	}
}

func TestOutboardSizeFormula(t *testing.T) {
	const g = 4
	content := input(1 << 20)
	encoded, _, err := iroh.Encode(content, true, g)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	groups := iroh.CountGroups(uint64(len(content)), g)
	want := 8 + (groups-1)*64
	if uint64(len(encoded)) != want {
		t.Fatalf("outboard length = %d, want %d (groups=%d)", len(encoded), want, groups)
	}
}

func TestCountGroupsOfEmptyIsOne(t *testing.T) {
	if got := iroh.CountGroups(0, 4); got != 1 {
		t.Fatalf("CountGroups(0, 4) = %d, want 1", got)
	}
}

func TestRejectsOversizedGroupLog(t *testing.T) {
	if _, _, err := iroh.Encode([]byte("x"), false, iroh.MaxChunkGroupLog+1); err != iroh.ErrConfig {
		t.Fatalf("Encode with oversized g = %v, want ErrConfig", err)
	}
}
