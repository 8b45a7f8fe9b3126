package bao

import "github.com/lamb356/blake3-optimized-sub001/hazmat/chunk"

// EncodeGroup exposes the internal BLAKE3 subtree recursion Encode uses for
// its own chunks, for callers that need to treat an arbitrary byte range as
// a single BLAKE3 subtree rooted at chunk index counterBase — chiefly
// bao/iroh, whose chunk-group leaves are exactly this recursion run over
// one group's bytes.
func EncodeGroup(content []byte, counterBase uint64, outboard bool) (out chunk.Output, body []byte) {
	return encodeSubtree(content, counterBase, outboard)
}

// ParentOutput exposes the deferred parent-node compression for two child
// chaining values, for callers (bao/iroh, bao/partial) that merge CVs
// outside of Encode/Decode's own recursion.
func ParentOutput(leftCV, rightCV [8]uint32) chunk.Output {
	return parentOutput(leftCV, rightCV)
}

// LeftLen exposes the chunk-level left-subtree byte-count split rule for a
// subtree of l bytes. l must be greater than ChunkLen; trees with another
// leaf granularity (bao/iroh's chunk groups) use LeftLenUnit.
func LeftLen(l uint64) uint64 {
	return leftLen(l)
}

// CountChunks exposes the chunk-count helper for an arbitrary byte length.
func CountChunks(l uint64) uint64 {
	return countChunks(l)
}

// LeftLenUnit exposes the generalized left-subtree split rule for an
// arbitrary leaf granularity unit, for callers building a tree whose leaves
// are not single BLAKE3 chunks (bao/iroh's chunk groups).
func LeftLenUnit(l, unit uint64) uint64 {
	return leftLenUnit(l, unit)
}

// CountUnits exposes the generalized leaf-count helper for an arbitrary
// leaf granularity unit.
func CountUnits(l, unit uint64) uint64 {
	return countUnits(l, unit)
}
