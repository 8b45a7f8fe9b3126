// Package parallel implements the optional parallel Bao encoder: content is
// partitioned at left_len-aligned chunk boundaries, each large enough
// subtree (its chunk CVs and its own parent nodes) is computed through a
// worker pool, and the two halves of every forked node are merged by the
// goroutine that forked them, using the same recursion bao.Encode itself
// uses — always merging via left_len-directed recursion, never by splitting
// into equal shares and hoping they land on subtree boundaries.
//
// A bounded number of goroutines fan independent leaf work out across a
// worker pool and fold the results back together in the same order a
// purely sequential implementation would.
package parallel

import (
	"runtime"
	"sync"

	"github.com/lamb356/blake3-optimized-sub001/bao"
	"github.com/lamb356/blake3-optimized-sub001/hazmat/chunk"
	"github.com/lamb356/blake3-optimized-sub001/hazmat/compress"
)

// Options configures the parallel encoder.
type Options struct {
	// WorkerCount is the concurrency bound to pass to NewPool. Encode itself
	// does not read it: concurrency is bounded by the Pool Encode is given.
	WorkerCount int
	// ParallelThresholdBytes is the content size below which Encode falls
	// back to bao.Encode directly — not worth forking goroutines for.
	ParallelThresholdBytes uint64
	// MinChunksPerWorker is the smallest subtree (in chunks) worth handing
	// to its own goroutine rather than computing inline.
	MinChunksPerWorker uint32
}

// DefaultOptions returns the default tuning: worker_count = CPU count - 1
// (never less than 1), parallel_threshold_bytes = 10 MiB,
// min_chunks_per_worker = 256.
func DefaultOptions() Options {
	workers := runtime.NumCPU() - 1
	if workers < 1 {
		workers = 1
	}
	return Options{
		WorkerCount:            workers,
		ParallelThresholdBytes: 10 << 20,
		MinChunksPerWorker:     256,
	}
}

// Pool is an explicit worker-pool lifecycle object: a bounded number of
// goroutines may run concurrently through it, and it must be torn down
// with Close once the caller is done.
type Pool struct {
	sem    chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// NewPool returns a Pool that runs at most workers goroutines concurrently.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{sem: make(chan struct{}, workers)}
}

// Go runs fn on a pooled goroutine if a slot is free, or inline on the
// calling goroutine if the pool is saturated. Falling back to inline
// execution (rather than blocking for a slot) is what makes it safe to
// call Go recursively from within fn itself without deadlocking a
// fork-join recursion once every worker is busy.
func (p *Pool) Go(fn func()) {
	select {
	case p.sem <- struct{}{}:
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			defer func() { <-p.sem }()
			fn()
		}()
	default:
		fn()
	}
}

// Close waits for any goroutines still running through the pool to finish.
// After Close, the Pool must not be reused.
func (p *Pool) Close() {
	p.wg.Wait()
	p.closed = true
}

// Encode produces the same (encoded, rootHash) pair as bao.Encode(content,
// outboard), computing independent subtrees' chaining values concurrently
// through pool once content exceeds opts.ParallelThresholdBytes.
func Encode(content []byte, outboard bool, opts Options, pool *Pool) (encoded []byte, rootHash [32]byte) {
	header := bao.PutLength(uint64(len(content)))

	if uint64(len(content)) <= opts.ParallelThresholdBytes {
		return bao.Encode(content, outboard)
	}

	out, body := parallelSubtree(content, 0, outboard, opts, pool)
	encoded = make([]byte, 0, bao.HeaderSize+len(body))
	encoded = append(encoded, header[:]...)
	encoded = append(encoded, body...)
	return encoded, out.RootChainingValue()
}

// parallelSubtree mirrors bao's own internal recursion exactly — same
// left_len split, same parent merge — except that once a subtree is both
// above the byte threshold and has more than 2*MinChunksPerWorker chunks,
// its two halves are computed via pool.Go instead of directly, so the
// result is byte-identical to the sequential path regardless of where the
// parallel/sequential boundary falls.
func parallelSubtree(content []byte, counterBase uint64, outboard bool, opts Options, pool *Pool) (chunk.Output, []byte) {
	chunks := bao.CountChunks(uint64(len(content)))
	if uint64(len(content)) <= opts.ParallelThresholdBytes || chunks <= uint64(opts.MinChunksPerWorker)*2 {
		return bao.EncodeGroup(content, counterBase, outboard)
	}

	split := bao.LeftLen(uint64(len(content)))
	rightCounterBase := counterBase + bao.CountChunks(split)

	var leftOut, rightOut chunk.Output
	var leftBody, rightBody []byte
	var wg sync.WaitGroup
	wg.Add(2)
	pool.Go(func() {
		defer wg.Done()
		leftOut, leftBody = parallelSubtree(content[:split], counterBase, outboard, opts, pool)
	})
	pool.Go(func() {
		defer wg.Done()
		rightOut, rightBody = parallelSubtree(content[split:], rightCounterBase, outboard, opts, pool)
	})
	wg.Wait()

	leftCV := leftOut.ChainingValue()
	rightCV := rightOut.ChainingValue()
	leftNode := compress.CVBytes(leftCV)
	rightNode := compress.CVBytes(rightCV)

	body := make([]byte, 0, bao.ParentLen+len(leftBody)+len(rightBody))
	body = append(body, leftNode[:]...)
	body = append(body, rightNode[:]...)
	body = append(body, leftBody...)
	body = append(body, rightBody...)

	return bao.ParentOutput(leftCV, rightCV), body
}
