package bao

import "errors"

// ErrVerificationFailed is returned when a chaining value recomputed from
// received bytes does not match the value its parent (or the root hash)
// claims for that subtree. It is terminal for the call: no partial output
// is delivered once it occurs.
var ErrVerificationFailed = errors.New("bao: verification failed")

// ErrMalformedInput is returned when an encoded or sliced stream is
// structurally broken: a truncated header, a stream that ends mid-node or
// mid-chunk, or outboard data whose length disagrees with the header.
var ErrMalformedInput = errors.New("bao: malformed input")

// ErrInvalidRange is returned by Slice when start exceeds the content
// length and the content length is zero, or by callers that pass an
// out-of-range chunk or group index.
var ErrInvalidRange = errors.New("bao: invalid range")
