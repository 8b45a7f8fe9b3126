package bao

import (
	"crypto/subtle"

	"github.com/lamb356/blake3-optimized-sub001/hazmat/chunk"
	"github.com/lamb356/blake3-optimized-sub001/hazmat/compress"
)

// cursor is a forward-only read position over a byte slice, used to walk
// the node stream and the data stream independently (they are the same
// underlying stream in combined mode, distinct ones in outboard mode).
type cursor struct {
	b   []byte
	pos int
}

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.b) {
		return nil, ErrMalformedInput
	}
	out := c.b[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

// constantTimeEqual compares two equal-length chaining values without
// branching on their content, per spec's XOR-accumulate-OR-reduce
// requirement; crypto/subtle.ConstantTimeCompare implements exactly that
// fold and is already this module's constant-time primitive (see
// thyrse.go's use of the same function for tag comparison).
func constantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Decode verifies and reassembles the original content from a Bao encoding.
//
// outboardData selects the mode: nil means encoded is a combined stream
// (chunk bytes interleaved with parent nodes); a non-nil slice means
// encoded holds only the header and parent nodes, and outboardData is the
// content itself, supplying chunk bytes in order.
//
// Decode never returns bytes from a subtree whose chaining value has not
// been verified against an ancestor chain terminating at rootHash.
func Decode(encoded []byte, rootHash [32]byte, outboardData []byte) ([]byte, error) {
	if len(encoded) < HeaderSize {
		return nil, ErrMalformedInput
	}
	contentLen := getLength(encoded)
	nodeBytes := encoded[HeaderSize:]

	outboard := outboardData != nil
	dataBytes := nodeBytes
	if outboard {
		if uint64(len(outboardData)) != contentLen {
			return nil, ErrMalformedInput
		}
		dataBytes = outboardData
	} else if contentLen > uint64(len(nodeBytes)) {
		// A combined stream carries every content byte, so a header claiming
		// more content than the stream holds is truncated or corrupt.
		return nil, ErrMalformedInput
	}

	if contentLen == 0 {
		cs := chunk.New(compress.IV, 0, 0)
		actual := cs.Output().RootChainingValue()
		if !constantTimeEqual(actual[:], rootHash[:]) {
			return nil, ErrVerificationFailed
		}
		return []byte{}, nil
	}

	nodeCur := &cursor{b: nodeBytes}
	dataCur := nodeCur
	if outboard {
		dataCur = &cursor{b: dataBytes}
	}

	out := make([]byte, 0, contentLen)
	if err := decodeSubtree(contentLen, 0, rootHash, true, nodeCur, dataCur, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeSubtree verifies and emits the subtree spanning contentLen bytes
// starting at chunk index counterBase, checking its recomputed chaining
// value against expected (the root hash at the top of the recursion, or a
// parent's claimed child CV thereafter).
func decodeSubtree(contentLen uint64, counterBase uint64, expected [32]byte, isRoot bool, nodeCur, dataCur *cursor, out *[]byte) error {
	if contentLen <= ChunkLen {
		chunkBytes, err := dataCur.take(int(contentLen))
		if err != nil {
			return err
		}
		cs := chunk.New(compress.IV, counterBase, 0)
		cs.Update(chunkBytes)
		o := cs.Output()

		var actual [32]byte
		if isRoot {
			actual = o.RootChainingValue()
		} else {
			actual = cvBytes(o.ChainingValue())
		}
		if !constantTimeEqual(actual[:], expected[:]) {
			return ErrVerificationFailed
		}
		*out = append(*out, chunkBytes...)
		return nil
	}

	node, err := nodeCur.take(ParentLen)
	if err != nil {
		return err
	}
	leftCV := cvFromBytes(node[:32])
	rightCV := cvFromBytes(node[32:64])

	po := parentOutput(leftCV, rightCV)
	var actual [32]byte
	if isRoot {
		actual = po.RootChainingValue()
	} else {
		actual = cvBytes(po.ChainingValue())
	}
	if !constantTimeEqual(actual[:], expected[:]) {
		return ErrVerificationFailed
	}

	split := leftLen(contentLen)
	if err := decodeSubtree(split, counterBase, cvBytes(leftCV), false, nodeCur, dataCur, out); err != nil {
		return err
	}
	rightCounterBase := counterBase + countChunks(split)
	return decodeSubtree(contentLen-split, rightCounterBase, cvBytes(rightCV), false, nodeCur, dataCur, out)
}
