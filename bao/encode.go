package bao

import (
	"github.com/lamb356/blake3-optimized-sub001/hazmat/chunk"
	"github.com/lamb356/blake3-optimized-sub001/hazmat/compress"
)

// Encode builds the Bao encoding of content and returns it alongside the
// root hash, which is identical to BLAKE3(content). When outboard is true,
// the returned bytes contain only the header and parent nodes — no chunk
// bytes — and content itself serves as the companion data source for
// Decode.
func Encode(content []byte, outboard bool) (encoded []byte, rootHash [32]byte) {
	header := putLength(uint64(len(content)))

	if len(content) == 0 {
		cs := chunk.New(compress.IV, 0, 0)
		out := cs.Output()
		return header[:], out.RootChainingValue()
	}

	out, body := encodeSubtree(content, 0, outboard)
	encoded = make([]byte, 0, HeaderSize+len(body))
	encoded = append(encoded, header[:]...)
	encoded = append(encoded, body...)
	return encoded, out.RootChainingValue()
}

// encodeSubtree recursively encodes content starting at chunk index
// counterBase and returns the deferred compression for its root node
// (chunk.Output, shared between leaf chunks and parent nodes — see
// parentOutput) along with the pre-order encoded bytes for the subtree. The
// ROOT flag is never applied here: only Encode's top-level call on the
// returned Output decides whether this subtree is the whole tree.
func encodeSubtree(content []byte, counterBase uint64, outboard bool) (out chunk.Output, body []byte) {
	if len(content) <= ChunkLen {
		cs := chunk.New(compress.IV, counterBase, 0)
		cs.Update(content)
		out = cs.Output()
		if !outboard {
			body = append(body, content...)
		}
		return out, body
	}

	split := leftLen(uint64(len(content)))
	leftOut, leftBody := encodeSubtree(content[:split], counterBase, outboard)
	rightOut, rightBody := encodeSubtree(content[split:], counterBase+countChunks(split), outboard)

	leftCV := leftOut.ChainingValue()
	rightCV := rightOut.ChainingValue()

	node := cvBytes(leftCV)
	rightNode := cvBytes(rightCV)

	body = make([]byte, 0, ParentLen+len(leftBody)+len(rightBody))
	body = append(body, node[:]...)
	body = append(body, rightNode[:]...)
	body = append(body, leftBody...)
	body = append(body, rightBody...)

	return parentOutput(leftCV, rightCV), body
}
