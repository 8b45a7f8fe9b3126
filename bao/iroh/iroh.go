// Package iroh implements the chunk-group variant of the Bao tree codec:
// the same tree discipline as bao, but with "group" substituted for "chunk"
// at the leaf level. A group covers 2^g chunks, shrinking outboard size by
// roughly a factor of 2^g at the cost of coarser verified-streaming
// granularity.
//
// Encode/Decode reuse bao.EncodeGroup and bao.ParentOutput directly rather
// than reimplementing the BLAKE3 subtree math: a group's chaining value is
// computed by running that same recursion over just the group's bytes.
package iroh

import (
	"errors"

	"github.com/lamb356/blake3-optimized-sub001/bao"
	"github.com/lamb356/blake3-optimized-sub001/hazmat/chunk"
)

// MaxChunkGroupLog is the largest chunk_group_log this implementation
// accepts; larger values are rejected with ErrConfig.
const MaxChunkGroupLog = 16

// ErrConfig is returned when chunk_group_log exceeds MaxChunkGroupLog.
var ErrConfig = errors.New("iroh: chunk_group_log too large")

// GroupLen returns the byte size of one chunk group at the given
// chunk_group_log (G = 2^g chunks of bao.ChunkLen bytes each).
func GroupLen(g uint8) uint64 {
	return uint64(bao.ChunkLen) << g
}

// CountGroups returns the number of groups (including a final short one)
// spanned by l content bytes at the given chunk_group_log. CountGroups(0,
// g) is 1.
func CountGroups(l uint64, g uint8) uint64 {
	return bao.CountUnits(l, GroupLen(g))
}

// Encode builds the chunk-group Bao encoding of content at the given
// chunk_group_log and returns it alongside the root hash. The root hash is
// identical to bao.Encode's (and therefore to BLAKE3(content)) for every
// value of g — the central correctness requirement of this variant.
func Encode(content []byte, outboard bool, g uint8) (encoded []byte, rootHash [32]byte, err error) {
	if g > MaxChunkGroupLog {
		return nil, [32]byte{}, ErrConfig
	}
	header := bao.PutLength(uint64(len(content)))

	if len(content) == 0 {
		out, _ := bao.EncodeGroup(nil, 0, true)
		return header[:], out.RootChainingValue(), nil
	}

	groupLen := GroupLen(g)
	out, body := encodeSubtree(content, 0, groupLen, outboard)
	encoded = make([]byte, 0, bao.HeaderSize+len(body))
	encoded = append(encoded, header[:]...)
	encoded = append(encoded, body...)
	return encoded, out.RootChainingValue(), nil
}

// encodeSubtree mirrors bao's own encodeSubtree, but treats a groupLen-sized
// span of content as the leaf unit, delegating the leaf's own internal
// BLAKE3 subtree computation to bao.EncodeGroup.
func encodeSubtree(content []byte, counterBase, groupLen uint64, outboard bool) (out chunk.Output, body []byte) {
	if uint64(len(content)) <= groupLen {
		// Only the group's chaining value is needed here: the group's inner
		// parent nodes are not part of the chunk-group encoding.
		out, _ = bao.EncodeGroup(content, counterBase, true)
		if !outboard {
			body = append(body, content...)
		}
		return out, body
	}

	split := bao.LeftLenUnit(uint64(len(content)), groupLen)
	leftOut, leftBody := encodeSubtree(content[:split], counterBase, groupLen, outboard)
	rightCounterBase := counterBase + bao.CountUnits(split, bao.ChunkLen)
	rightOut, rightBody := encodeSubtree(content[split:], rightCounterBase, groupLen, outboard)

	leftCV := leftOut.ChainingValue()
	rightCV := rightOut.ChainingValue()

	left32 := chainingValueBytes(leftCV)
	right32 := chainingValueBytes(rightCV)

	body = make([]byte, 0, bao.ParentLen+len(leftBody)+len(rightBody))
	body = append(body, left32[:]...)
	body = append(body, right32[:]...)
	body = append(body, leftBody...)
	body = append(body, rightBody...)

	return bao.ParentOutput(leftCV, rightCV), body
}

// Decode verifies and reassembles content from a chunk-group encoding.
// outboardData has the same meaning as bao.Decode's.
func Decode(encoded []byte, rootHash [32]byte, outboardData []byte, g uint8) ([]byte, error) {
	if g > MaxChunkGroupLog {
		return nil, ErrConfig
	}
	if len(encoded) < bao.HeaderSize {
		return nil, bao.ErrMalformedInput
	}
	contentLen := bao.GetLength(encoded)
	nodeBytes := encoded[bao.HeaderSize:]

	outboard := outboardData != nil
	dataBytes := nodeBytes
	if outboard {
		if uint64(len(outboardData)) != contentLen {
			return nil, bao.ErrMalformedInput
		}
		dataBytes = outboardData
	}

	if contentLen == 0 {
		out, _ := bao.EncodeGroup(nil, 0, true)
		actual := out.RootChainingValue()
		if !constantTimeEqual(actual[:], rootHash[:]) {
			return nil, bao.ErrVerificationFailed
		}
		return []byte{}, nil
	}

	nodeCur := &cursor{b: nodeBytes}
	dataCur := nodeCur
	if outboard {
		dataCur = &cursor{b: dataBytes}
	}

	groupLen := GroupLen(g)
	out := make([]byte, 0, contentLen)
	if err := decodeSubtree(contentLen, 0, groupLen, rootHash, true, nodeCur, dataCur, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeSubtree(contentLen, counterBase, groupLen uint64, expected [32]byte, isRoot bool, nodeCur, dataCur *cursor, out *[]byte) error {
	if contentLen <= groupLen {
		groupBytes, err := dataCur.take(int(contentLen))
		if err != nil {
			return err
		}
		leafOut, _ := bao.EncodeGroup(groupBytes, counterBase, true)
		var actual [32]byte
		if isRoot {
			actual = leafOut.RootChainingValue()
		} else {
			actual = chainingValueBytes(leafOut.ChainingValue())
		}
		if !constantTimeEqual(actual[:], expected[:]) {
			return bao.ErrVerificationFailed
		}
		*out = append(*out, groupBytes...)
		return nil
	}

	node, err := nodeCur.take(bao.ParentLen)
	if err != nil {
		return err
	}
	leftCV := cvFromBytes(node[:32])
	rightCV := cvFromBytes(node[32:64])
	po := bao.ParentOutput(leftCV, rightCV)
	var actual [32]byte
	if isRoot {
		actual = po.RootChainingValue()
	} else {
		actual = chainingValueBytes(po.ChainingValue())
	}
	if !constantTimeEqual(actual[:], expected[:]) {
		return bao.ErrVerificationFailed
	}

	split := bao.LeftLenUnit(contentLen, groupLen)
	if err := decodeSubtree(split, counterBase, groupLen, chainingValueBytes(leftCV), false, nodeCur, dataCur, out); err != nil {
		return err
	}
	rightCounterBase := counterBase + bao.CountUnits(split, bao.ChunkLen)
	return decodeSubtree(contentLen-split, rightCounterBase, groupLen, chainingValueBytes(rightCV), false, nodeCur, dataCur, out)
}
