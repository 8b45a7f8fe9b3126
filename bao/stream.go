package bao

import (
	"errors"

	"github.com/lamb356/blake3-optimized-sub001/hazmat/chunk"
	"github.com/lamb356/blake3-optimized-sub001/hazmat/compress"
)

// Encoder buffers written content and computes its Bao encoding on
// Finalize: the tree cannot be known until every byte has arrived, so —
// unlike Decoder below — there is nothing to verify or release
// incrementally.
type Encoder struct {
	outboard bool
	buf      []byte
	done     bool
}

// NewEncoder returns an Encoder that will produce an outboard or combined
// encoding, selected by outboard, once Finalize is called.
func NewEncoder(outboard bool) *Encoder {
	return &Encoder{outboard: outboard}
}

// Write buffers p for later encoding. It never fails except after Finalize.
func (e *Encoder) Write(p []byte) (int, error) {
	if e.done {
		return 0, errErrEncoderFinalized
	}
	e.buf = append(e.buf, p...)
	return len(p), nil
}

// Finalize computes the Bao encoding of everything written so far and
// returns it along with the root hash. It may only be called once.
func (e *Encoder) Finalize() (encoded []byte, rootHash [32]byte, err error) {
	if e.done {
		return nil, [32]byte{}, errErrEncoderFinalized
	}
	e.done = true
	encoded, rootHash = Encode(e.buf, e.outboard)
	return encoded, rootHash, nil
}

var errErrEncoderFinalized = errors.New("bao: Encoder already finalized")

// Decoder accepts a combined Bao stream's bytes in order via Write and
// verifies and releases each chunk as soon as its chaining value is
// confirmed against an ancestor chain terminating at rootHash — it never
// buffers an unverified chunk's bytes past the call that completes its
// verification.
//
// Internally it replaces the recursive pre-order walk Decode performs over
// a complete byte slice with an explicit stack of pending subtrees, each
// describing the next node or chunk expected and the chaining value it
// must match; Write drains as much of that stack as the currently buffered
// bytes allow and leaves the rest for the next call.
type Decoder struct {
	rootHash     [32]byte
	contentLen   uint64
	headerParsed bool
	inbuf        []byte
	stack        []pendingSubtree
	verified     []byte
	err          error
	done         bool
}

type pendingSubtree struct {
	subtreeStart uint64
	contentLen   uint64
	counterBase  uint64
	expected     [32]byte
	isRoot       bool
}

// NewDecoder returns a Decoder that will verify an incoming combined Bao
// stream against rootHash.
func NewDecoder(rootHash [32]byte) *Decoder {
	return &Decoder{rootHash: rootHash}
}

// Write feeds the next p bytes of the combined stream. It returns
// ErrVerificationFailed (sticky: further Write calls keep returning it) the
// first time a recomputed chaining value disagrees with its expected
// value.
func (d *Decoder) Write(p []byte) (int, error) {
	n := len(p)
	if d.err != nil {
		return 0, d.err
	}
	d.inbuf = append(d.inbuf, p...)

	if !d.headerParsed {
		if len(d.inbuf) < HeaderSize {
			return n, nil
		}
		d.contentLen = getLength(d.inbuf)
		d.inbuf = d.inbuf[HeaderSize:]
		d.headerParsed = true

		if d.contentLen == 0 {
			cs := chunk.New(compress.IV, 0, 0)
			actual := cs.Output().RootChainingValue()
			if !constantTimeEqual(actual[:], d.rootHash[:]) {
				d.err = ErrVerificationFailed
				return n, d.err
			}
			d.done = true
			return n, nil
		}
		d.stack = append(d.stack, pendingSubtree{
			contentLen: d.contentLen,
			expected:   d.rootHash,
			isRoot:     true,
		})
	}

	for len(d.stack) > 0 {
		top := d.stack[len(d.stack)-1]
		need := ParentLen
		if top.contentLen <= ChunkLen {
			need = int(top.contentLen)
		}
		if len(d.inbuf) < need {
			break
		}
		d.stack = d.stack[:len(d.stack)-1]
		raw := d.inbuf[:need]
		d.inbuf = d.inbuf[need:]

		if top.contentLen <= ChunkLen {
			cs := chunk.New(compress.IV, top.counterBase, 0)
			cs.Update(raw)
			o := cs.Output()
			var actual [32]byte
			if top.isRoot {
				actual = o.RootChainingValue()
			} else {
				actual = cvBytes(o.ChainingValue())
			}
			if !constantTimeEqual(actual[:], top.expected[:]) {
				d.err = ErrVerificationFailed
				return n, d.err
			}
			d.verified = append(d.verified, raw...)
			continue
		}

		leftCV := cvFromBytes(raw[:32])
		rightCV := cvFromBytes(raw[32:64])
		po := parentOutput(leftCV, rightCV)
		var actual [32]byte
		if top.isRoot {
			actual = po.RootChainingValue()
		} else {
			actual = cvBytes(po.ChainingValue())
		}
		if !constantTimeEqual(actual[:], top.expected[:]) {
			d.err = ErrVerificationFailed
			return n, d.err
		}

		split := leftLen(top.contentLen)
		right := pendingSubtree{
			subtreeStart: top.subtreeStart + split,
			contentLen:   top.contentLen - split,
			counterBase:  top.counterBase + countChunks(split),
			expected:     cvBytes(rightCV),
		}
		left := pendingSubtree{
			subtreeStart: top.subtreeStart,
			contentLen:   split,
			counterBase:  top.counterBase,
			expected:     cvBytes(leftCV),
		}
		// Push right first so left is processed next, preserving pre-order.
		d.stack = append(d.stack, right, left)
	}

	if d.headerParsed && len(d.stack) == 0 {
		d.done = true
	}
	return n, nil
}

// Verified returns and clears the bytes verified since the last call. It is
// safe to call between Write calls to drain content incrementally.
func (d *Decoder) Verified() []byte {
	v := d.verified
	d.verified = nil
	return v
}

// Done reports whether every chunk has been received and verified.
func (d *Decoder) Done() bool {
	return d.done
}

// Err returns the sticky verification error, if any.
func (d *Decoder) Err() error {
	return d.err
}
