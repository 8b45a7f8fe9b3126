// Package partial implements the partial Bao receiver: an
// order-independent, bitfield-tracked accumulator of chunk groups that
// verifies each group against a root hash either immediately (when a
// sibling-CV proof accompanies it) or not at all (when the caller already
// trusts the source), and reassembles the original content once enough
// groups have arrived.
//
// Verification reuses bao.EncodeGroup (to recompute a group's own leaf CV
// from its bytes) and bao.ParentOutput (to fold that CV up through the
// supplied proof), the same primitives bao/iroh uses for its own tree
// walk — a receiver's proof check is exactly one root-to-leaf path of
// bao/iroh's decode recursion, taken in isolation.
package partial

import (
	"errors"

	"github.com/lamb356/blake3-optimized-sub001/bao"
	"github.com/lamb356/blake3-optimized-sub001/bao/iroh"
	"github.com/lamb356/blake3-optimized-sub001/hazmat/compress"
)

// ErrIncomplete is returned by Finalize(true) when not all groups are
// present yet.
var ErrIncomplete = errors.New("partial: not all groups present")

// Receiver accumulates chunk groups for a content stream of known length
// and chunk_group_log, tracking which groups have arrived in a bitfield.
//
// Unlike hazmat/tree's fixed-capacity subtree stack, Receiver's internal
// storage is map/slice based rather than a bounded array: a receiver is
// long-lived and sized by num_groups, a runtime value derived from the
// stream's content length, not bounded at compile time the way a BLAKE3
// tree's subtree stack is.
type Receiver struct {
	rootHash   [32]byte
	contentLen uint64
	groupLog   uint8
	groupLen   uint64
	numGroups  uint64

	bitfield []bool
	groups   map[uint64][]byte
	proofs   map[uint64][][32]byte
}

// New returns a Receiver expecting content of contentLen bytes, grouped at
// the given chunk_group_log, verified against rootHash.
func New(rootHash [32]byte, contentLen uint64, groupLog uint8) (*Receiver, error) {
	if groupLog > iroh.MaxChunkGroupLog {
		return nil, iroh.ErrConfig
	}
	numGroups := iroh.CountGroups(contentLen, groupLog)
	return &Receiver{
		rootHash:   rootHash,
		contentLen: contentLen,
		groupLog:   groupLog,
		groupLen:   iroh.GroupLen(groupLog),
		numGroups:  numGroups,
		bitfield:   make([]bool, numGroups),
		groups:     make(map[uint64][]byte),
		proofs:     make(map[uint64][][32]byte),
	}, nil
}

// NumGroups reports the total number of groups this receiver expects.
func (r *Receiver) NumGroups() uint64 { return r.numGroups }

func (r *Receiver) groupByteLen(index uint64) uint64 {
	start := index * r.groupLen
	if start >= r.contentLen {
		return 0
	}
	remaining := r.contentLen - start
	if remaining > r.groupLen {
		return r.groupLen
	}
	return remaining
}

// AddGroupTrusted stores bytes as group_index without verification. It is
// intended for producers that already trust the source (e.g. re-importing
// one's own encoded data). Re-adding an already-present group is a no-op.
func (r *Receiver) AddGroupTrusted(groupIndex uint64, data []byte) error {
	if groupIndex >= r.numGroups {
		return bao.ErrInvalidRange
	}
	if uint64(len(data)) != r.groupByteLen(groupIndex) {
		return bao.ErrMalformedInput
	}
	if r.bitfield[groupIndex] {
		return nil
	}
	r.groups[groupIndex] = append([]byte(nil), data...)
	r.bitfield[groupIndex] = true
	return nil
}

// AddGroupWithProof verifies data against rootHash using proof — the
// ordered list of sibling chaining values from the group's immediate
// sibling up to (but not including) the root — before storing it. On
// failure the receiver's state is unchanged. Re-adding an already-present
// group is a no-op (the new proof is not re-verified).
func (r *Receiver) AddGroupWithProof(groupIndex uint64, data []byte, proof [][32]byte) error {
	if groupIndex >= r.numGroups {
		return bao.ErrInvalidRange
	}
	if uint64(len(data)) != r.groupByteLen(groupIndex) {
		return bao.ErrMalformedInput
	}
	if r.bitfield[groupIndex] {
		return nil
	}

	counterBase := groupIndex << r.groupLog
	leafOut, _ := bao.EncodeGroup(data, counterBase, true)

	orientations := pathOrientationsBottomUp(r.contentLen, r.groupLen, groupIndex)
	if len(orientations) != len(proof) {
		return bao.ErrMalformedInput
	}

	var actual [32]byte
	if len(orientations) == 0 {
		actual = leafOut.RootChainingValue()
	} else {
		cur := leafOut.ChainingValue()
		for i, wentRight := range orientations {
			sibling := compress.CVFromBytes(proof[i])
			left, right := cur, sibling
			if wentRight {
				left, right = sibling, cur
			}
			po := bao.ParentOutput(left, right)
			if i == len(orientations)-1 {
				actual = po.RootChainingValue()
			} else {
				cur = po.ChainingValue()
			}
		}
	}

	if !constantTimeEqual(actual[:], r.rootHash[:]) {
		return bao.ErrVerificationFailed
	}

	r.groups[groupIndex] = append([]byte(nil), data...)
	r.proofs[groupIndex] = append([][32]byte(nil), proof...)
	r.bitfield[groupIndex] = true
	return nil
}

// CreateProof returns the proof stored for an already-present group. It
// fails if the group has not been added with a proof (groups added via
// AddGroupTrusted have no stored proof).
func (r *Receiver) CreateProof(groupIndex uint64) ([][32]byte, error) {
	if groupIndex >= r.numGroups || !r.bitfield[groupIndex] {
		return nil, bao.ErrInvalidRange
	}
	proof, ok := r.proofs[groupIndex]
	if !ok {
		return nil, bao.ErrInvalidRange
	}
	return append([][32]byte(nil), proof...), nil
}

// MissingGroups returns the indices of groups not yet present, in order.
func (r *Receiver) MissingGroups() []uint64 {
	return r.groupsWhere(false)
}

// PresentGroups returns the indices of groups already present, in order.
func (r *Receiver) PresentGroups() []uint64 {
	return r.groupsWhere(true)
}

func (r *Receiver) groupsWhere(present bool) []uint64 {
	var out []uint64
	for i, v := range r.bitfield {
		if v == present {
			out = append(out, uint64(i))
		}
	}
	return out
}

// byteRange is a half-open [Start, End) span of content bytes.
type byteRange struct {
	Start, End uint64
}

// MissingRanges returns the contiguous byte ranges not yet covered by a
// present group.
func (r *Receiver) MissingRanges() []byteRange {
	return r.rangesWhere(false)
}

// PresentRanges returns the contiguous byte ranges already covered by a
// present group.
func (r *Receiver) PresentRanges() []byteRange {
	return r.rangesWhere(true)
}

func (r *Receiver) rangesWhere(present bool) []byteRange {
	var out []byteRange
	var open bool
	var start uint64
	flush := func(end uint64) {
		if open {
			out = append(out, byteRange{Start: start, End: end})
			open = false
		}
	}
	for i := uint64(0); i < r.numGroups; i++ {
		groupStart := i * r.groupLen
		if r.bitfield[i] == present {
			if !open {
				start = groupStart
				open = true
			}
		} else {
			flush(groupStart)
		}
	}
	flush(r.contentLen)
	return out
}

// Progress returns the fraction of groups present, in [0,1].
func (r *Receiver) Progress() float64 {
	if r.numGroups == 0 {
		return 1
	}
	present := 0
	for _, v := range r.bitfield {
		if v {
			present++
		}
	}
	return float64(present) / float64(r.numGroups)
}

// Finalize concatenates stored groups in order. If requireComplete is true
// and any group is missing, it returns ErrIncomplete instead. If false and
// groups are missing, their span is filled with zero bytes so the result
// always has length contentLen.
func (r *Receiver) Finalize(requireComplete bool) ([]byte, error) {
	if requireComplete {
		for _, v := range r.bitfield {
			if !v {
				return nil, ErrIncomplete
			}
		}
	}
	out := make([]byte, 0, r.contentLen)
	for i := uint64(0); i < r.numGroups; i++ {
		if r.bitfield[i] {
			out = append(out, r.groups[i]...)
		} else {
			out = append(out, make([]byte, r.groupByteLen(i))...)
		}
	}
	return out, nil
}

// State is the exported, serializable snapshot of a Receiver.
type State struct {
	RootHash      [32]byte
	ContentLen    uint64
	ChunkGroupLog uint8
	Bitfield      []bool
	Groups        map[uint64]GroupRecord
}

// GroupRecord is one present group's stored bytes and (if verified via a
// proof) the proof used to verify it.
type GroupRecord struct {
	Bytes []byte
	Proof [][32]byte
}

// ExportState returns a deep copy of the receiver's state.
func (r *Receiver) ExportState() State {
	groups := make(map[uint64]GroupRecord, len(r.groups))
	for idx, data := range r.groups {
		groups[idx] = GroupRecord{
			Bytes: append([]byte(nil), data...),
			Proof: append([][32]byte(nil), r.proofs[idx]...),
		}
	}
	return State{
		RootHash:      r.rootHash,
		ContentLen:    r.contentLen,
		ChunkGroupLog: r.groupLog,
		Bitfield:      append([]bool(nil), r.bitfield...),
		Groups:        groups,
	}
}

// ImportState rebuilds a Receiver from an exported State, re-validating
// its internal invariants: the bitfield length must match the expected
// group count, and every present group's stored bytes must match its
// expected size.
func ImportState(s State) (*Receiver, error) {
	if s.ChunkGroupLog > iroh.MaxChunkGroupLog {
		return nil, iroh.ErrConfig
	}
	numGroups := iroh.CountGroups(s.ContentLen, s.ChunkGroupLog)
	if uint64(len(s.Bitfield)) != numGroups {
		return nil, bao.ErrMalformedInput
	}

	r := &Receiver{
		rootHash:   s.RootHash,
		contentLen: s.ContentLen,
		groupLog:   s.ChunkGroupLog,
		groupLen:   iroh.GroupLen(s.ChunkGroupLog),
		numGroups:  numGroups,
		bitfield:   append([]bool(nil), s.Bitfield...),
		groups:     make(map[uint64][]byte),
		proofs:     make(map[uint64][][32]byte),
	}
	for idx, rec := range s.Groups {
		if idx >= numGroups || !r.bitfield[idx] {
			return nil, bao.ErrMalformedInput
		}
		if uint64(len(rec.Bytes)) != r.groupByteLen(idx) {
			return nil, bao.ErrMalformedInput
		}
		r.groups[idx] = append([]byte(nil), rec.Bytes...)
		r.proofs[idx] = append([][32]byte(nil), rec.Proof...)
	}
	for i, present := range r.bitfield {
		if _, ok := r.groups[uint64(i)]; present && !ok {
			return nil, bao.ErrMalformedInput
		}
	}
	return r, nil
}

// pathOrientationsBottomUp returns, for groupIndex within a tree of
// contentLen bytes split at groupLen-sized leaves, whether the subtree
// containing that group is the right child at each level of its
// root-to-leaf path — ordered from the level nearest the leaf (index 0) up
// to immediately below the root, the order proof lists are defined in.
func pathOrientationsBottomUp(contentLen, groupLen, groupIndex uint64) []bool {
	var topDown []bool
	start, length := uint64(0), contentLen
	target := groupIndex * groupLen
	for length > groupLen {
		split := bao.LeftLenUnit(length, groupLen)
		if target < start+split {
			topDown = append(topDown, false)
			length = split
		} else {
			topDown = append(topDown, true)
			start += split
			length -= split
		}
	}
	for i, j := 0, len(topDown)-1; i < j; i, j = i+1, j-1 {
		topDown[i], topDown[j] = topDown[j], topDown[i]
	}
	return topDown
}
