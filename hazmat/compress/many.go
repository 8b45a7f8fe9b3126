package compress

import "github.com/klauspost/cpuid/v2"

// Lanes reports how many compressions could run per SIMD permutation call
// on this machine, detected via github.com/klauspost/cpuid/v2. It is
// informational only: CompressMany below has no vectorized backend yet and
// always runs the scalar loop K times regardless of Lanes, so it remains
// observationally equivalent to K independent calls to Compress.
var Lanes = 1

func init() {
	switch {
	case cpuid.CPU.Has(cpuid.AVX512F):
		Lanes = 16
	case cpuid.CPU.Has(cpuid.AVX2):
		Lanes = 8
	case cpuid.CPU.Has(cpuid.SSE2):
		Lanes = 4
	}
}

// CompressInput bundles one lane's worth of Compress arguments for
// CompressMany.
type CompressInput struct {
	CV       [8]uint32
	Block    [16]uint32
	Counter  uint64
	BlockLen uint32
	Flags    uint32
}

// CompressMany evaluates Compress independently for each input and writes
// the 16-word results to out, which must have length >= len(inputs).
//
// CompressMany is observationally equivalent to calling Compress once per
// input in order; a SIMD implementation may process several inputs per
// underlying permutation call but MUST NOT change this result.
func CompressMany(inputs []CompressInput, out [][16]uint32) {
	for i, in := range inputs {
		out[i] = Compress(&in.CV, &in.Block, in.Counter, in.BlockLen, in.Flags)
	}
}
