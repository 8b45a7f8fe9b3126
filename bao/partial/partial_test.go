package partial_test

import (
	"bytes"
	"testing"

	blake3 "github.com/lamb356/blake3-optimized-sub001"
	"github.com/lamb356/blake3-optimized-sub001/bao"
	"github.com/lamb356/blake3-optimized-sub001/bao/partial"
	"github.com/lamb356/blake3-optimized-sub001/hazmat/compress"
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

// cvOf recomputes the chunk-group tree's chaining value for a span of
// content, the same recursion bao/iroh.encodeSubtree performs while
// building the wire encoding, used here only to regenerate sibling CVs for
// proof construction in tests.
func cvOf(content []byte, counterBase, groupLen uint64) [8]uint32 {
	if uint64(len(content)) <= groupLen {
		out, _ := bao.EncodeGroup(content, counterBase, true)
		return out.ChainingValue()
	}
	split := bao.LeftLenUnit(uint64(len(content)), groupLen)
	rightCounterBase := counterBase + bao.CountUnits(split, bao.ChunkLen)
	leftCV := cvOf(content[:split], counterBase, groupLen)
	rightCV := cvOf(content[split:], rightCounterBase, groupLen)
	return bao.ParentOutput(leftCV, rightCV).ChainingValue()
}

// collectProofs walks the same tree and records, for every group's leaf,
// the ordered bottom-up sibling-CV list partial.Receiver expects as a
// proof.
func collectProofs(content []byte, counterBase, offset, groupLen uint64, path [][32]byte, proofs map[uint64][][32]byte) {
	if uint64(len(content)) <= groupLen {
		groupIndex := offset / groupLen
		rev := make([][32]byte, len(path))
		for i, p := range path {
			rev[len(path)-1-i] = p
		}
		proofs[groupIndex] = rev
		return
	}
	split := bao.LeftLenUnit(uint64(len(content)), groupLen)
	rightCounterBase := counterBase + bao.CountUnits(split, bao.ChunkLen)
	leftCV := cvOf(content[:split], counterBase, groupLen)
	rightCV := cvOf(content[split:], rightCounterBase, groupLen)

	collectProofs(content[:split], counterBase, offset, groupLen, append(path, compress.CVBytes(rightCV)), proofs)
	collectProofs(content[split:], rightCounterBase, offset+split, groupLen, append(path, compress.CVBytes(leftCV)), proofs)
}

func groupBytes(content []byte, groupIndex, groupLen uint64) []byte {
	start := groupIndex * groupLen
	if start >= uint64(len(content)) {
		return nil
	}
	end := start + groupLen
	if end > uint64(len(content)) {
		end = uint64(len(content))
	}
	return content[start:end]
}

func TestAddGroupWithProofRejectsWrongBytes(t *testing.T) {
	const g = 4
	content := input(32768)
	root := rootHashOf(content)
	groupLen := uint64(bao.ChunkLen) << g

	proofs := make(map[uint64][][32]byte)
	collectProofs(content, 0, 0, groupLen, nil, proofs)

	r, err := partial.New(root, uint64(len(content)), g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	wrong := append([]byte(nil), groupBytes(content, 0, groupLen)...)
	wrong[0] ^= 0xff

	if err := r.AddGroupWithProof(0, wrong, proofs[0]); err == nil {
		t.Fatal("AddGroupWithProof accepted corrupted bytes")
	}
	if r.Progress() != 0 {
		t.Fatal("a failed AddGroupWithProof must not mutate the bitfield")
	}
}

func TestFinalizeAfterAllGroupsInAnyPermutation(t *testing.T) {
	const g = 4
	content := input(32768)
	root := rootHashOf(content)
	groupLen := uint64(bao.ChunkLen) << g

	proofs := make(map[uint64][][32]byte)
	collectProofs(content, 0, 0, groupLen, nil, proofs)

	r, err := partial.New(root, uint64(len(content)), g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.NumGroups() != 2 {
		t.Fatalf("NumGroups = %d, want 2", r.NumGroups())
	}

	// Add group 1 first, then group 0, to check that arrival order doesn't matter.
	if err := r.AddGroupWithProof(1, groupBytes(content, 1, groupLen), proofs[1]); err != nil {
		t.Fatalf("AddGroupWithProof(1): %v", err)
	}
	if err := r.AddGroupWithProof(0, groupBytes(content, 0, groupLen), proofs[0]); err != nil {
		t.Fatalf("AddGroupWithProof(0): %v", err)
	}

	got, err := r.Finalize(true)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatal("Finalize did not reproduce the original content")
	}
}

func TestExportImportStatePreservesProgress(t *testing.T) {
	const g = 2
	content := input(20000)
	root := rootHashOf(content)
	groupLen := uint64(bao.ChunkLen) << g

	proofs := make(map[uint64][][32]byte)
	collectProofs(content, 0, 0, groupLen, nil, proofs)

	r, err := partial.New(root, uint64(len(content)), g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	total := r.NumGroups()
	for i := uint64(0); i < total; i += 2 {
		if err := r.AddGroupWithProof(i, groupBytes(content, i, groupLen), proofs[i]); err != nil {
			t.Fatalf("AddGroupWithProof(%d): %v", i, err)
		}
	}

	state := r.ExportState()
	restored, err := partial.ImportState(state)
	if err != nil {
		t.Fatalf("ImportState: %v", err)
	}

	if len(restored.PresentGroups()) != len(r.PresentGroups()) {
		t.Fatal("ImportState lost present groups")
	}
	if len(restored.MissingGroups()) != len(r.MissingGroups()) {
		t.Fatal("ImportState lost missing groups")
	}

	for i := uint64(0); i < total; i++ {
		if i%2 == 1 {
			if err := restored.AddGroupWithProof(i, groupBytes(content, i, groupLen), proofs[i]); err != nil {
				t.Fatalf("AddGroupWithProof(%d) after import: %v", i, err)
			}
		}
	}

	got, err := restored.Finalize(true)
	if err != nil {
		t.Fatalf("Finalize after import: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatal("Finalize after import did not reproduce the original content")
	}
}

func TestAddGroupTrustedIdempotent(t *testing.T) {
	const g = 4
	content := input(8192)
	root := rootHashOf(content)
	groupLen := uint64(bao.ChunkLen) << g

	r, err := partial.New(root, uint64(len(content)), g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := groupBytes(content, 0, groupLen)
	if err := r.AddGroupTrusted(0, data); err != nil {
		t.Fatalf("AddGroupTrusted: %v", err)
	}
	if err := r.AddGroupTrusted(0, data); err != nil {
		t.Fatalf("re-adding an already-present group must be a no-op: %v", err)
	}
}
