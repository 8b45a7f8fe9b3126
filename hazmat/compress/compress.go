// Package compress implements the BLAKE3 compression function: a single
// invocation of the 7-round permutation network over a 16-word state,
// parameterized by a chaining value, message block, counter, block length,
// and flag set.
//
// Compress is a pure function with no internal state and no side effects.
package compress

import "github.com/lamb356/blake3-optimized-sub001/internal/mem"

// BlockLen is the number of bytes in a compression input block.
const BlockLen = 64

// OutLen is the number of bytes in a non-root chaining value.
const OutLen = 32

// Flag bits, OR'd together to parameterize a single Compress call.
const (
	ChunkStart        uint32 = 1 << 0
	ChunkEnd          uint32 = 1 << 1
	Parent            uint32 = 1 << 2
	Root              uint32 = 1 << 3
	KeyedHash         uint32 = 1 << 4
	DeriveKeyContext  uint32 = 1 << 5
	DeriveKeyMaterial uint32 = 1 << 6
)

// IV holds the eight 32-bit BLAKE3 initialization constants (= the SHA-256
// IV).
var IV = [8]uint32{
	0x6A09E667, 0xBB67AE85, 0x3C6EF372, 0xA54FF53A,
	0x510E527F, 0x9B05688C, 0x1F83D9AB, 0x5BE0CD19,
}

// msgPermutation is the BLAKE3 message schedule applied between rounds.
var msgPermutation = [16]int{2, 6, 3, 10, 7, 0, 4, 13, 1, 11, 12, 5, 9, 14, 15, 8}

func rotr32(x uint32, n int) uint32 {
	return x>>n | x<<(32-n)
}

// g is a single quarter-round mix on four state words using two message
// words.
func g(state *[16]uint32, a, b, c, d int, mx, my uint32) {
	state[a] = state[a] + state[b] + mx
	state[d] = rotr32(state[d]^state[a], 16)
	state[c] = state[c] + state[d]
	state[b] = rotr32(state[b]^state[c], 12)
	state[a] = state[a] + state[b] + my
	state[d] = rotr32(state[d]^state[a], 8)
	state[c] = state[c] + state[d]
	state[b] = rotr32(state[b]^state[c], 7)
}

// round applies the four column mixes followed by the four diagonal mixes.
func round(state *[16]uint32, msg *[16]uint32) {
	// Columns.
	g(state, 0, 4, 8, 12, msg[0], msg[1])
	g(state, 1, 5, 9, 13, msg[2], msg[3])
	g(state, 2, 6, 10, 14, msg[4], msg[5])
	g(state, 3, 7, 11, 15, msg[6], msg[7])
	// Diagonals.
	g(state, 0, 5, 10, 15, msg[8], msg[9])
	g(state, 1, 6, 11, 12, msg[10], msg[11])
	g(state, 2, 7, 8, 13, msg[12], msg[13])
	g(state, 3, 4, 9, 14, msg[14], msg[15])
}

func permute(msg *[16]uint32) {
	var permuted [16]uint32
	for i, src := range msgPermutation {
		permuted[i] = msg[src]
	}
	*msg = permuted
}

// Compress runs the BLAKE3 compression function and returns the full
// 16-word post-mix state. Callers that only need a non-root chaining value
// use the first 8 words; root XOF extraction needs all 16.
//
// Compress performs no data-dependent branching; its control flow and memory
// accesses depend only on the fixed iteration counts below, never on the
// content of cv, block, counter, blockLen, or flags.
func Compress(cv *[8]uint32, block *[16]uint32, counter uint64, blockLen uint32, flags uint32) [16]uint32 {
	state := [16]uint32{
		cv[0], cv[1], cv[2], cv[3],
		cv[4], cv[5], cv[6], cv[7],
		IV[0], IV[1], IV[2], IV[3],
		uint32(counter), uint32(counter >> 32),
		blockLen, flags,
	}

	msg := *block
	for i := 0; i < 7; i++ {
		round(&state, &msg)
		if i < 6 {
			permute(&msg)
		}
	}

	mem.XORWordsInPlace(state[:8], state[8:16], 8)
	mem.XORWordsInPlace(state[8:16], cv[:], 8)

	return state
}

// ChainingValue runs Compress and returns only the first 8 words of the
// result — the non-root chaining value used by chunk and parent nodes.
func ChainingValue(cv *[8]uint32, block *[16]uint32, counter uint64, blockLen uint32, flags uint32) [8]uint32 {
	full := Compress(cv, block, counter, blockLen, flags)
	return [8]uint32{full[0], full[1], full[2], full[3], full[4], full[5], full[6], full[7]}
}

// WordsFromBytes decodes a 64-byte block into 16 little-endian 32-bit words,
// zero-padding if block is shorter than BlockLen.
func WordsFromBytes(block []byte) [16]uint32 {
	var words [16]uint32
	var padded [BlockLen]byte
	copy(padded[:], block)
	for i := range words {
		words[i] = uint32(padded[4*i]) | uint32(padded[4*i+1])<<8 |
			uint32(padded[4*i+2])<<16 | uint32(padded[4*i+3])<<24
	}
	return words
}

// BytesFromWords encodes words as little-endian bytes into out, which must
// have length >= 4*len(words).
func BytesFromWords(words []uint32, out []byte) {
	for i, w := range words {
		out[4*i] = byte(w)
		out[4*i+1] = byte(w >> 8)
		out[4*i+2] = byte(w >> 16)
		out[4*i+3] = byte(w >> 24)
	}
}

// CVBytes encodes an 8-word chaining value as 32 little-endian bytes.
func CVBytes(cv [8]uint32) [32]byte {
	var out [32]byte
	BytesFromWords(cv[:], out[:])
	return out
}

// CVFromBytes decodes a 32-byte chaining value (or key) into 8 words.
func CVFromBytes(b [32]byte) [8]uint32 {
	var words [8]uint32
	for i := range words {
		words[i] = uint32(b[4*i]) | uint32(b[4*i+1])<<8 |
			uint32(b[4*i+2])<<16 | uint32(b[4*i+3])<<24
	}
	return words
}
