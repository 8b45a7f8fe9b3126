// Package bao implements the Bao verified-streaming encoding over a BLAKE3
// tree: encode, decode, and slice operations that let a receiver verify
// each chunk of content against a single root hash as soon as its subtree's
// chaining values are known, without trusting the transport.
package bao

import (
	"github.com/lamb356/blake3-optimized-sub001/hazmat/chunk"
	"github.com/lamb356/blake3-optimized-sub001/hazmat/compress"
)

// ChunkLen is the number of content bytes covered by one leaf.
const ChunkLen = chunk.Len

// ParentLen is the encoded size of a parent node: two concatenated CVs.
const ParentLen = 64

// HeaderSize is the size of the little-endian content-length header that
// prefixes every encoded or sliced Bao stream.
const HeaderSize = 8

// leftLen returns the number of content bytes covered by the left subtree of
// a node spanning l bytes. It requires l > ChunkLen; the caller must not
// invoke it on a subtree that fits in a single chunk.
func leftLen(l uint64) uint64 {
	return leftLenUnit(l, ChunkLen)
}

// countChunks returns the number of chunks (including a final short one)
// spanned by l content bytes. countChunks(0) is defined as 1 for the purpose
// of chunk-counter bookkeeping elsewhere, but callers that special-case
// empty content never call it with l == 0.
func countChunks(l uint64) uint64 {
	return countUnits(l, ChunkLen)
}

// leftLenUnit generalizes leftLen to an arbitrary leaf granularity unit —
// ChunkLen for bao's own chunk-level tree, a chunk-group's byte length for
// bao/iroh's group-level tree. It requires l > unit.
//
// The split rounds the left side down to the largest power-of-two count of
// full units strictly less than the total, so the tree stays left-heavy and
// balanced the same way hazmat/tree's subtree stack is: the right subtree's
// unit count is always <= the left's.
func leftLenUnit(l, unit uint64) uint64 {
	if l <= unit {
		panic("bao: leftLenUnit called on a single-leaf subtree")
	}
	units := countUnits(l, unit)
	// Largest power of two strictly less than units.
	half := uint64(1)
	for half*2 < units {
		half *= 2
	}
	return half * unit
}

// countUnits returns the number of unit-sized leaves (including a final
// short one) spanned by l bytes. countUnits(0, unit) is defined as 1.
func countUnits(l, unit uint64) uint64 {
	if l == 0 {
		return 1
	}
	return (l + unit - 1) / unit
}

// parentOutput builds the deferred compression for a parent node over two
// children's chaining values. It reuses hazmat/chunk.Output — a parent node
// and a chunk node are both just "a deferred compression that may or may not
// turn out to be the root" — so the same ChainingValue/RootChainingValue
// laziness that hazmat/tree relies on for finalization applies here
// unchanged.
func parentOutput(leftCV, rightCV [8]uint32) chunk.Output {
	var block [16]uint32
	copy(block[:8], leftCV[:])
	copy(block[8:], rightCV[:])
	return chunk.Output{
		InputCV:  compress.IV,
		Block:    block,
		Counter:  0,
		BlockLen: compress.BlockLen,
		Flags:    compress.Parent,
	}
}

// cvBytes encodes an 8-word chaining value as it appears on the wire.
func cvBytes(cv [8]uint32) [32]byte {
	return compress.CVBytes(cv)
}

// cvFromBytes decodes a 32-byte wire chaining value.
func cvFromBytes(b []byte) [8]uint32 {
	var arr [32]byte
	copy(arr[:], b)
	return compress.CVFromBytes(arr)
}

// putLength writes the 8-byte little-endian content length header.
func putLength(l uint64) [HeaderSize]byte {
	return PutLength(l)
}

// getLength reads the 8-byte little-endian content length header.
func getLength(b []byte) uint64 {
	return GetLength(b)
}

// PutLength writes the 8-byte little-endian content length header shared by
// every Bao wire format (plain, sliced, and bao/iroh).
func PutLength(l uint64) [HeaderSize]byte {
	var out [HeaderSize]byte
	for i := range out {
		out[i] = byte(l >> (8 * i))
	}
	return out
}

// GetLength reads the 8-byte little-endian content length header.
func GetLength(b []byte) uint64 {
	var l uint64
	for i := 0; i < HeaderSize; i++ {
		l |= uint64(b[i]) << (8 * i)
	}
	return l
}
