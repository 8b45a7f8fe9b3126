package iroh

import (
	"crypto/subtle"

	"github.com/lamb356/blake3-optimized-sub001/bao"
	"github.com/lamb356/blake3-optimized-sub001/hazmat/compress"
)

// cursor is a forward-only read position over a byte slice; see
// bao.cursor, which this mirrors for the same reason (walking the node
// stream and the data stream independently in outboard mode).
type cursor struct {
	b   []byte
	pos int
}

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.b) {
		return nil, bao.ErrMalformedInput
	}
	out := c.b[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

func constantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

func chainingValueBytes(cv [8]uint32) [32]byte {
	return compress.CVBytes(cv)
}

func cvFromBytes(b []byte) [8]uint32 {
	var arr [32]byte
	copy(arr[:], b)
	return compress.CVFromBytes(arr)
}
