package bao

import (
	"github.com/lamb356/blake3-optimized-sub001/hazmat/chunk"
	"github.com/lamb356/blake3-optimized-sub001/hazmat/compress"
)

// Slice extracts the portion of an already-encoded Bao stream needed to
// verify and reconstruct content[start : start+length] against the same
// root hash the full encoding verifies against. Subtrees entirely outside
// the requested range are dropped, including their parent nodes; subtrees
// entirely inside are kept whole.
//
// outboardData has the same meaning as in Decode: nil selects combined
// mode (encoded holds the full interleaved stream), non-nil supplies the
// content for outboard mode.
func Slice(encoded []byte, start, length uint64, outboardData []byte) ([]byte, error) {
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
	}

	header := putLength(contentLen)
	if length == 0 {
		length = 1
	}

	if contentLen == 0 {
		if start != 0 {
			return nil, ErrInvalidRange
		}
		return header[:], nil
	}
	if start >= contentLen {
		start = contentLen - 1
	}
	end := start + length
	if end > contentLen {
		end = contentLen
	}

	nodeCur := &cursor{b: nodeBytes}
	dataCur := nodeCur
	if outboard {
		dataCur = &cursor{b: dataBytes}
	}

	out := make([]byte, 0, len(encoded))
	out = append(out, header[:]...)
	if err := sliceSubtree(0, contentLen, 0, start, end, nodeCur, dataCur, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// sliceSubtree walks the subtree spanning [subtreeStart, subtreeStart+contentLen)
// in pre-order, consuming exactly the bytes the original Encode call wrote
// for it (so omitted subtrees still advance the cursors correctly), and
// appending them to out only when emit is true. emit is threaded down from
// the caller's own overlap test: once a subtree is found to not overlap
// [start, end), neither can any of its descendants, so the whole subtree is
// dropped from the output but still consumed from the source.
func sliceSubtree(subtreeStart, contentLen, counterBase, start, end uint64, nodeCur, dataCur *cursor, out *[]byte, emit bool) error {
	if contentLen <= ChunkLen {
		chunkBytes, err := dataCur.take(int(contentLen))
		if err != nil {
			return err
		}
		if emit {
			*out = append(*out, chunkBytes...)
		}
		return nil
	}

	node, err := nodeCur.take(ParentLen)
	if err != nil {
		return err
	}
	if emit {
		*out = append(*out, node...)
	}

	split := leftLen(contentLen)
	leftEnd := subtreeStart + split
	leftOverlap := subtreeStart < end && start < leftEnd

	rightLen := contentLen - split
	rightOverlap := leftEnd < end && start < leftEnd+rightLen

	if err := sliceSubtree(subtreeStart, split, counterBase, start, end, nodeCur, dataCur, out, leftOverlap); err != nil {
		return err
	}
	rightCounterBase := counterBase + countChunks(split)
	return sliceSubtree(leftEnd, rightLen, rightCounterBase, start, end, nodeCur, dataCur, out, rightOverlap)
}

// DecodeSlice verifies and reconstructs content[start : min(start+length, contentLen)]
// from a slice produced by Slice, against rootHash. When that range is empty
// (length is zero, or start is at or past contentLen) the slice is still
// verified, for the same clamped position Slice used, and an empty result is
// returned.
func DecodeSlice(slice []byte, rootHash [32]byte, start, length uint64) ([]byte, error) {
	if len(slice) < HeaderSize {
		return nil, ErrMalformedInput
	}
	contentLen := getLength(slice)
	body := slice[HeaderSize:]

	emptyRange := length == 0 || start >= contentLen
	if length == 0 {
		length = 1
	}

	if contentLen == 0 {
		if start != 0 {
			return nil, ErrInvalidRange
		}
		cs := chunk.New(compress.IV, 0, 0)
		actual := cs.Output().RootChainingValue()
		if !constantTimeEqual(actual[:], rootHash[:]) {
			return nil, ErrVerificationFailed
		}
		return []byte{}, nil
	}
	if start >= contentLen {
		start = contentLen - 1
	}
	end := start + length
	if end > contentLen {
		end = contentLen
	}

	cur := &cursor{b: body}
	out := make([]byte, 0, length)
	if err := decodeSliceSubtree(0, contentLen, 0, rootHash, true, start, end, cur, &out); err != nil {
		return nil, err
	}
	if emptyRange {
		return []byte{}, nil
	}
	return out, nil
}

// decodeSliceSubtree mirrors sliceSubtree's traversal, but the slice stream
// itself omits non-overlapping subtrees, so an overlap test gates whether
// to read anything at all rather than just whether to emit.
func decodeSliceSubtree(subtreeStart, contentLen, counterBase uint64, expected [32]byte, isRoot bool, start, end uint64, cur *cursor, out *[]byte) error {
	if !(subtreeStart < end && start < subtreeStart+contentLen) {
		return nil
	}

	if contentLen <= ChunkLen {
		chunkBytes, err := cur.take(int(contentLen))
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

		lo, hi := uint64(0), uint64(len(chunkBytes))
		if subtreeStart < start {
			lo = start - subtreeStart
		}
		if subtreeStart+uint64(len(chunkBytes)) > end {
			hi = end - subtreeStart
		}
		*out = append(*out, chunkBytes[lo:hi]...)
		return nil
	}

	node, err := cur.take(ParentLen)
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
	leftEnd := subtreeStart + split
	if err := decodeSliceSubtree(subtreeStart, split, counterBase, cvBytes(leftCV), false, start, end, cur, out); err != nil {
		return err
	}
	rightCounterBase := counterBase + countChunks(split)
	return decodeSliceSubtree(leftEnd, contentLen-split, rightCounterBase, cvBytes(rightCV), false, start, end, cur, out)
}
