// Package hashseq implements an ordered, mutable sequence of 32-byte BLAKE3
// digests with a single combined digest of its own (the BLAKE3 hash of the
// concatenated member digests) and stable serialization to bytes, hex, and
// JSON.
package hashseq

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	blake3 "github.com/lamb356/blake3-optimized-sub001"
)

// Size is the byte length of one digest.
const Size = 32

// Digest is one 32-byte member of a Sequence.
type Digest [Size]byte

// Sequence is an ordered list of digests. The zero value is an empty,
// ready-to-use sequence.
type Sequence struct {
	items []Digest
}

// New returns a Sequence containing the given digests, in order.
func New(digests ...Digest) *Sequence {
	s := &Sequence{items: make([]Digest, len(digests))}
	copy(s.items, digests)
	return s
}

// Len returns the number of digests in the sequence.
func (s *Sequence) Len() int { return len(s.items) }

// Add appends d to the end of the sequence.
func (s *Sequence) Add(d Digest) {
	s.items = append(s.items, d)
}

// InsertAt inserts d at index i, shifting subsequent entries right. It
// panics if i is out of [0, Len()] range.
func (s *Sequence) InsertAt(i int, d Digest) {
	if i < 0 || i > len(s.items) {
		panic("hashseq: InsertAt index out of range")
	}
	s.items = append(s.items, Digest{})
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = d
}

// RemoveAt removes and returns the digest at index i. It panics if i is out
// of [0, Len()) range.
func (s *Sequence) RemoveAt(i int) Digest {
	if i < 0 || i >= len(s.items) {
		panic("hashseq: RemoveAt index out of range")
	}
	d := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return d
}

// Clear empties the sequence.
func (s *Sequence) Clear() {
	s.items = s.items[:0]
}

// At returns the digest at index i. It panics if i is out of range.
func (s *Sequence) At(i int) Digest {
	return s.items[i]
}

// Slice returns a new Sequence holding a copy of items[lo:hi].
func (s *Sequence) Slice(lo, hi int) *Sequence {
	out := &Sequence{items: make([]Digest, hi-lo)}
	copy(out.items, s.items[lo:hi])
	return out
}

// Concat returns a new Sequence holding s's digests followed by other's.
func (s *Sequence) Concat(other *Sequence) *Sequence {
	out := &Sequence{items: make([]Digest, 0, len(s.items)+len(other.items))}
	out.items = append(out.items, s.items...)
	out.items = append(out.items, other.items...)
	return out
}

// Equal reports whether s and other hold the same digests in the same
// order.
func (s *Sequence) Equal(other *Sequence) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for i, d := range s.items {
		if d != other.items[i] {
			return false
		}
	}
	return true
}

// IndexOf returns the index of the first occurrence of d, or -1 if absent.
func (s *Sequence) IndexOf(d Digest) int {
	for i, item := range s.items {
		if item == d {
			return i
		}
	}
	return -1
}

// Has reports whether d appears in the sequence.
func (s *Sequence) Has(d Digest) bool {
	return s.IndexOf(d) >= 0
}

// All returns an iterator over the sequence's digests in order, for
// range-over-func iteration (for d := range seq.All() { ... }).
func (s *Sequence) All() func(func(Digest) bool) {
	return func(yield func(Digest) bool) {
		for _, d := range s.items {
			if !yield(d) {
				return
			}
		}
	}
}

// Finalize returns BLAKE3 of the sequence's digests concatenated in order.
func (s *Sequence) Finalize() Digest {
	h := blake3.New()
	for _, d := range s.items {
		_, _ = h.Write(d[:])
	}
	return h.Digest()
}

// Bytes returns the sequence's stable byte serialization:
// [4-byte LE count][count * 32-byte digests].
func (s *Sequence) Bytes() []byte {
	out := make([]byte, 4+Size*len(s.items))
	n := uint32(len(s.items))
	out[0] = byte(n)
	out[1] = byte(n >> 8)
	out[2] = byte(n >> 16)
	out[3] = byte(n >> 24)
	for i, d := range s.items {
		copy(out[4+i*Size:], d[:])
	}
	return out
}

// ErrMalformed is returned by FromBytes when b is not a well-formed
// hashseq byte serialization.
var ErrMalformed = errors.New("hashseq: malformed byte serialization")

// FromBytes parses a sequence from its Bytes serialization.
func FromBytes(b []byte) (*Sequence, error) {
	if len(b) < 4 {
		return nil, ErrMalformed
	}
	n := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	want := 4 + int(n)*Size
	if len(b) != want {
		return nil, ErrMalformed
	}
	s := &Sequence{items: make([]Digest, n)}
	for i := range s.items {
		copy(s.items[i][:], b[4+i*Size:])
	}
	return s, nil
}

// Hex returns the sequence's hex form: one lowercase-hex-encoded digest per
// line, joined by '\n', with no trailing newline.
func (s *Sequence) Hex() string {
	out := make([]byte, 0, len(s.items)*(2*Size+1))
	for i, d := range s.items {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, []byte(hex.EncodeToString(d[:]))...)
	}
	return string(out)
}

// FromHex parses a sequence from its Hex serialization.
func FromHex(s string) (*Sequence, error) {
	if s == "" {
		return &Sequence{}, nil
	}
	lines := splitLines(s)
	seq := &Sequence{items: make([]Digest, len(lines))}
	for i, line := range lines {
		b, err := hex.DecodeString(line)
		if err != nil || len(b) != Size {
			return nil, ErrMalformed
		}
		copy(seq.items[i][:], b)
	}
	return seq, nil
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// jsonForm is the wire shape of the JSON serialization:
// {"hashes": ["<hex>", ...]}.
type jsonForm struct {
	Hashes []string `json:"hashes"`
}

// MarshalJSON implements json.Marshaler.
func (s *Sequence) MarshalJSON() ([]byte, error) {
	form := jsonForm{Hashes: make([]string, len(s.items))}
	for i, d := range s.items {
		form.Hashes[i] = hex.EncodeToString(d[:])
	}
	return json.Marshal(form)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Sequence) UnmarshalJSON(b []byte) error {
	var form jsonForm
	if err := json.Unmarshal(b, &form); err != nil {
		return fmt.Errorf("hashseq: %w", err)
	}
	items := make([]Digest, len(form.Hashes))
	for i, h := range form.Hashes {
		raw, err := hex.DecodeString(h)
		if err != nil || len(raw) != Size {
			return ErrMalformed
		}
		copy(items[i][:], raw)
	}
	s.items = items
	return nil
}
