// Package chunk implements the BLAKE3 chunk hasher: the state machine that
// streams up to 1024 bytes through the compression function block by block
// and finalizes to either a 32-byte chaining value or a root XOF stream.
package chunk

import "github.com/lamb356/blake3-optimized-sub001/hazmat/compress"

// Len is the maximum number of bytes absorbed by a single chunk.
const Len = 1024

// State is an incremental chunk hasher: a fixed-size block buffer, a
// position cursor, and a one-shot finalization guard, driving the BLAKE3
// block-chaining schedule one compression call per 64-byte block.
type State struct {
	cv               [8]uint32
	chunkCounter     uint64
	block            [compress.BlockLen]byte
	blockLen         int
	blocksCompressed int
	flags            uint32 // base mode flags, constant for the chunk's lifetime
	finalized        bool
}

// New returns a chunk state seeded with key (the IV for unkeyed hashing, or
// the caller's key/context-derived key for keyed/derive-key modes), the
// chunk's index among its siblings, and the mode's base flags.
func New(key [8]uint32, chunkCounter uint64, flags uint32) *State {
	return &State{cv: key, chunkCounter: chunkCounter, flags: flags}
}

// Len reports the number of bytes absorbed so far (0..=Len).
func (s *State) Len() int {
	return compress.BlockLen*s.blocksCompressed + s.blockLen
}

// ChunkCounter returns the chunk's index.
func (s *State) ChunkCounter() uint64 {
	return s.chunkCounter
}

func (s *State) startFlag() uint32 {
	if s.blocksCompressed == 0 {
		return compress.ChunkStart
	}
	return 0
}

// Update absorbs input into the chunk. It must not be called after
// Output, and the caller must never feed more than Len-s.Len() bytes in
// total.
func (s *State) Update(input []byte) {
	if s.finalized {
		panic("chunk: Update called after Output")
	}
	for len(input) > 0 {
		if s.blockLen == compress.BlockLen {
			words := compress.WordsFromBytes(s.block[:])
			s.cv = compress.ChainingValue(&s.cv, &words, s.chunkCounter, compress.BlockLen, s.flags|s.startFlag())
			s.blocksCompressed++
			s.block = [compress.BlockLen]byte{}
			s.blockLen = 0
		}
		take := compress.BlockLen - s.blockLen
		if take > len(input) {
			take = len(input)
		}
		copy(s.block[s.blockLen:], input[:take])
		s.blockLen += take
		input = input[take:]
	}
}

// Output finalizes the chunk (without yet deciding whether it is the root)
// and returns the deferred compression state needed to produce either a
// non-root chaining value or root XOF bytes. It consumes the chunk state:
// Update must not be called again afterward.
func (s *State) Output() Output {
	s.finalized = true
	words := compress.WordsFromBytes(s.block[:s.blockLen])
	return Output{
		InputCV:  s.cv,
		Block:    words,
		Counter:  s.chunkCounter,
		BlockLen: uint32(s.blockLen),
		Flags:    s.flags | s.startFlag() | compress.ChunkEnd,
	}
}

// Output is a deferred compression: everything needed to produce either a
// non-root chaining value (ChainingValue) or a root XOF stream
// (RootBytes), with the ROOT flag applied only at the point of use. This
// matches the BLAKE3 reference construction: intermediate nodes only ever
// need ChainingValue, so ROOT is never baked in until a node is known to be
// the root.
type Output struct {
	InputCV  [8]uint32
	Block    [16]uint32
	Counter  uint64
	BlockLen uint32
	Flags    uint32
}

// ChainingValue returns the non-root 32-byte chaining value for this node.
func (o Output) ChainingValue() [8]uint32 {
	return compress.ChainingValue(&o.InputCV, &o.Block, o.Counter, o.BlockLen, o.Flags)
}

// RootBytes fills out with XOF output, applying the ROOT flag and
// re-compressing with an incrementing output-block counter (0, 1, 2, …)
// independent of o.Counter.
func (o Output) RootBytes(out []byte) {
	outputBlockCounter := uint64(0)
	for len(out) > 0 {
		full := compress.Compress(&o.InputCV, &o.Block, outputBlockCounter, o.BlockLen, o.Flags|compress.Root)
		var block [64]byte
		compress.BytesFromWords(full[:], block[:])
		n := copy(out, block[:])
		out = out[n:]
		outputBlockCounter++
	}
}

// RootChainingValue returns the 32-byte root chaining value (the first 32
// bytes of RootBytes, which is also what Sum256/Finalize with outLen=32
// returns).
func (o Output) RootChainingValue() [32]byte {
	var out [32]byte
	o.RootBytes(out[:])
	return out
}

// OutputReader incrementally squeezes XOF bytes from a root Output, one
// 64-byte compression block at a time, refilling via a position cursor
// whenever the current block is exhausted.
type OutputReader struct {
	out     Output
	counter uint64
	buf     [64]byte
	pos     int // bytes of buf already consumed; pos == 64 means "needs refill"
}

// NewOutputReader returns an OutputReader over out, ready to squeeze from
// output-block 0.
func NewOutputReader(out Output) *OutputReader {
	return &OutputReader{out: out, pos: 64}
}

// Read fills p with the next len(p) bytes of XOF output. It never returns
// an error.
func (r *OutputReader) Read(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		if r.pos == 64 {
			full := compress.Compress(&r.out.InputCV, &r.out.Block, r.counter, r.out.BlockLen, r.out.Flags|compress.Root)
			compress.BytesFromWords(full[:], r.buf[:])
			r.counter++
			r.pos = 0
		}
		c := copy(p, r.buf[r.pos:])
		r.pos += c
		p = p[c:]
	}
	return n, nil
}
