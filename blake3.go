// Package blake3 implements BLAKE3, a cryptographic hash function offering
// 32-byte (or arbitrary-length XOF) digests with streaming, keyed, and
// key-derivation modes.
//
// The tree-hash construction, compression primitive, and chunk state
// machine live in hazmat/compress, hazmat/chunk, and hazmat/tree; this
// package is the thin hash.Hash-shaped wrapper over hazmat/tree.
package blake3

import (
	"hash"
	"io"

	"github.com/lamb356/blake3-optimized-sub001/hazmat/chunk"
	"github.com/lamb356/blake3-optimized-sub001/hazmat/tree"
	"github.com/lamb356/blake3-optimized-sub001/internal/mem"
)

// Size is the default digest size in bytes.
const Size = 32

// KeySize is the size in bytes of a keyed-mode key.
const KeySize = tree.KeySize

// BlockSize is the chunk size BLAKE3 absorbs in full before any tree
// merging can occur; reported for hash.Hash compatibility.
const BlockSize = 1024

// Hasher is an incremental BLAKE3 instance. It implements hash.Hash (fixed
// 32-byte Sum) and exposes Digest/XOFReader for arbitrary-length output.
type Hasher struct {
	h *tree.Hasher
}

// New returns a Hasher in unkeyed hash mode.
func New() *Hasher {
	return &Hasher{h: tree.New()}
}

// NewKeyed returns a Hasher in keyed MAC mode using the given 32-byte key.
func NewKeyed(key *[KeySize]byte) *Hasher {
	return &Hasher{h: tree.NewKeyed(key)}
}

// NewDeriveKey returns a Hasher in key-derivation mode for the given
// context string. Absorb key material with Write, then read the derived
// key with Digest or an XOFReader.
func NewDeriveKey(context string) *Hasher {
	return &Hasher{h: tree.NewDeriveKey(context)}
}

// Write absorbs p. It never returns an error.
func (h *Hasher) Write(p []byte) (int, error) {
	return h.h.Write(p)
}

// Sum appends the 32-byte digest to b and returns the resulting slice. It
// does not modify the Hasher's state.
func (h *Hasher) Sum(b []byte) []byte {
	digest := h.h.Digest()
	head, tail := mem.SliceForAppend(b, len(digest))
	copy(tail, digest[:])
	return head
}

// Digest returns the 32-byte digest.
func (h *Hasher) Digest() [32]byte {
	return h.h.Digest()
}

// Reset restores the Hasher to its freshly constructed state.
func (h *Hasher) Reset() {
	h.h.Reset()
}

// Size returns the default output size in bytes.
func (h *Hasher) Size() int { return Size }

// BlockSize returns the chunk size in bytes.
func (h *Hasher) BlockSize() int { return BlockSize }

// Clone returns an independent copy of the Hasher.
func (h *Hasher) Clone() *Hasher {
	return &Hasher{h: h.h.Clone()}
}

// XOFReader returns an io.Reader that squeezes arbitrary-length output from
// the current transcript. It does not consume or modify the Hasher's
// absorbed state, so the same Hasher may still be written to and finalized
// again afterward.
func (h *Hasher) XOFReader() *OutputReader {
	return &OutputReader{r: chunk.NewOutputReader(h.h.RootOutput())}
}

// OutputReader streams XOF output of any requested length and offset
// pattern. It wraps hazmat/chunk.OutputReader, which squeezes one 64-byte
// compression block at a time.
type OutputReader struct {
	r *chunk.OutputReader
}

// Read fills p with the next len(p) bytes of XOF output. It never returns
// an error.
func (r *OutputReader) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

// Sum256 returns the 32-byte BLAKE3 digest of data, appended to dst.
func Sum256(dst, data []byte) []byte {
	h := New()
	_, _ = h.Write(data)
	return h.Sum(dst)
}

var (
	_ hash.Hash = (*Hasher)(nil)
	_ io.Reader = (*OutputReader)(nil)
)
