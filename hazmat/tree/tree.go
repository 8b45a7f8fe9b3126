// Package tree implements the BLAKE3 tree hasher: it streams bytes into
// chunks, maintains a subtree stack of chaining values, merges
// power-of-two-aligned siblings as chunks complete, and finalizes to a root
// chaining value or XOF stream. It supports hash, keyed, and
// key-derivation modes.
package tree

import (
	"errors"
	"math/bits"

	"github.com/lamb356/blake3-optimized-sub001/hazmat/chunk"
	"github.com/lamb356/blake3-optimized-sub001/hazmat/compress"
)

// KeySize is the size in bytes of a keyed-mode key or a derived key.
const KeySize = 32

// maxStackDepth bounds the subtree stack: a content length up to 2^64-1
// bytes spans at most 54 chunk-tree levels, so the stack never grows
// beyond this, and is mutated in place rather than reallocated per chunk.
const maxStackDepth = 54

// Mode selects how a Hasher's base key and flags are derived.
type Mode int

const (
	// ModeHash is the default unkeyed hash mode.
	ModeHash Mode = iota
	// ModeKeyed is the keyed MAC mode.
	ModeKeyed
	// ModeDeriveKey is the KDF mode.
	ModeDeriveKey
)

// ErrInvalidOutputLength is returned by Finalize when outputLen is <= 0.
var ErrInvalidOutputLength = errors.New("tree: output length must be greater than zero")

// Hasher is an incremental BLAKE3 tree hasher.
type Hasher struct {
	mode        Mode
	key         [8]uint32
	flags       uint32
	chunkState  *chunk.State
	cvStack     [maxStackDepth][8]uint32
	cvStackLen  int
	totalChunks uint64 // chunks completed, not counting the open chunkState
}

// New returns a Hasher in unkeyed hash mode.
func New() *Hasher {
	return newInternal(compress.IV, 0)
}

// NewKeyed returns a Hasher in keyed MAC mode using the given 32-byte key.
func NewKeyed(key *[KeySize]byte) *Hasher {
	return newInternal(compress.CVFromBytes(*key), compress.KeyedHash)
}

// NewDeriveKey returns a Hasher in key-derivation mode for the given
// context string. The returned Hasher absorbs key material (via Write) and
// finalizes to the derived key; it implements the two-hasher
// context-then-material construction.
func NewDeriveKey(context string) *Hasher {
	contextHasher := newInternal(compress.IV, compress.DeriveKeyContext)
	_, _ = contextHasher.Write([]byte(context))
	contextKey, _ := contextHasher.Finalize(nil, KeySize)
	var key [KeySize]byte
	copy(key[:], contextKey)
	return newInternal(compress.CVFromBytes(key), compress.DeriveKeyMaterial)
}

func newInternal(key [8]uint32, flags uint32) *Hasher {
	mode := ModeHash
	switch flags {
	case compress.KeyedHash:
		mode = ModeKeyed
	case compress.DeriveKeyContext, compress.DeriveKeyMaterial:
		mode = ModeDeriveKey
	}
	return &Hasher{
		mode:       mode,
		key:        key,
		flags:      flags,
		chunkState: chunk.New(key, 0, flags),
	}
}

// Write absorbs p into the tree. It never returns an error.
func (h *Hasher) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		if h.chunkState.Len() == chunk.Len {
			chunkCV := h.chunkState.Output().ChainingValue()
			h.totalChunks++
			h.addChunkChainingValue(chunkCV)
			h.chunkState = chunk.New(h.key, h.totalChunks, h.flags)
		}
		want := chunk.Len - h.chunkState.Len()
		take := want
		if take > len(p) {
			take = len(p)
		}
		h.chunkState.Update(p[:take])
		p = p[take:]
	}
	return n, nil
}

// addChunkChainingValue folds a newly completed chunk's CV into the
// subtree stack, merging one level for every trailing zero bit in the new
// total chunk count.
func (h *Hasher) addChunkChainingValue(newCV [8]uint32) {
	// h.totalChunks was just incremented past the chunk that produced newCV,
	// so it is always >= 1 here.
	merges := bits.TrailingZeros64(h.totalChunks)
	for i := 0; i < merges; i++ {
		h.cvStackLen--
		left := h.cvStack[h.cvStackLen]
		newCV = h.parentChainingValue(left, newCV)
	}
	h.cvStack[h.cvStackLen] = newCV
	h.cvStackLen++
}

func (h *Hasher) parentChainingValue(left, right [8]uint32) [8]uint32 {
	block := parentBlockWords(left, right)
	return compress.ChainingValue(&h.key, &block, 0, compress.BlockLen, h.flags|compress.Parent)
}

func parentBlockWords(left, right [8]uint32) [16]uint32 {
	var block [16]uint32
	copy(block[:8], left[:])
	copy(block[8:], right[:])
	return block
}

// Finalize returns outputLen bytes of XOF output appended to dst. The
// Hasher is left in its pre-finalize state and may continue to be
// written to and finalized again; finalization never mutates the absorbed
// transcript.
func (h *Hasher) Finalize(dst []byte, outputLen int) ([]byte, error) {
	if outputLen <= 0 {
		return nil, ErrInvalidOutputLength
	}

	out := h.rootOutput()
	ret := append(dst, make([]byte, outputLen)...)
	out.RootBytes(ret[len(dst):])
	return ret, nil
}

// Digest returns the 32-byte root chaining value.
func (h *Hasher) Digest() [32]byte {
	return h.rootOutput().RootChainingValue()
}

// RootOutput returns the deferred root Output for this transcript, for
// building an arbitrary-length XOF reader (see chunk.OutputReader).
func (h *Hasher) RootOutput() chunk.Output {
	return h.rootOutput()
}

// rootOutput folds the open chunk and the remaining stack down to a single
// deferred Output: a copy of the partial chunk finalizes first (so the open
// chunk itself stays writable), then stack entries merge pairwise, with the
// ROOT flag applied lazily by Output.RootBytes/RootChainingValue rather than
// stored on any intermediate merge.
func (h *Hasher) rootOutput() chunk.Output {
	cs := *h.chunkState
	output := cs.Output()

	stackLen := h.cvStackLen
	for stackLen > 0 {
		stackLen--
		output = parentOutput(h.cvStack[stackLen], output.ChainingValue(), h.key, h.flags)
	}
	return output
}

func parentOutput(left, right [8]uint32, key [8]uint32, flags uint32) chunk.Output {
	return chunk.Output{
		InputCV:  key,
		Block:    parentBlockWords(left, right),
		Counter:  0,
		BlockLen: compress.BlockLen,
		Flags:    flags | compress.Parent,
	}
}

// Clone returns an independent copy of the hasher's state.
func (h *Hasher) Clone() *Hasher {
	clone := *h
	cs := *h.chunkState
	clone.chunkState = &cs
	return &clone
}

// Reset restores the hasher to its freshly constructed state, retaining
// its mode, key, and flags.
func (h *Hasher) Reset() {
	h.chunkState = chunk.New(h.key, 0, h.flags)
	h.cvStackLen = 0
	h.totalChunks = 0
}
