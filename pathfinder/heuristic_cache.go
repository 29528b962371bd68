package pathfinder

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"transitcore/typedef"
)

// chunkSize is the Precomputation partition size of spec §4.3: positions
// are dispatched to the worker pool in chunks of this many cells.
const chunkSize = 1_000_000

// ProgressFunc is invoked after every chunk completes with the running
// completed/total cell counts. It must not block substantially (spec §5).
type ProgressFunc func(completed, total int64)

// BuildCache precomputes the Heuristic Oracle's value for every cell in
// rect against the full Location set (not the sampled 1/8th), and merges
// the results into cache sequentially on the calling goroutine so the cache
// is never concurrently mutated (spec §4.3, §5). workerCount is clamped to
// [1, runtime.NumCPU()].
func BuildCache(ctx context.Context, oracle *Oracle, cache *Cache, rect typedef.Rect, workerCount int, progress ProgressFunc) error {
	if workerCount < 1 {
		workerCount = 1
	}
	if max := runtime.NumCPU(); workerCount > max {
		workerCount = max
	}

	positions := enumerate(rect)
	total := int64(len(positions))
	var completed int64

	sem := semaphore.NewWeighted(int64(workerCount))
	for start := 0; start < len(positions); start += chunkSize {
		end := start + chunkSize
		if end > len(positions) {
			end = len(positions)
		}
		chunk := positions[start:end]

		values, err := computeChunk(ctx, sem, workerCount, oracle, chunk)
		if err != nil {
			return typedef.WrapRouteError(typedef.ErrFatal, "cache build chunk failed", err)
		}
		for i, pos := range chunk {
			cache.Set(pos, values[i])
		}

		completed += int64(len(chunk))
		reclaimMemoryHint()
		if progress != nil {
			progress(completed, total)
		}
	}
	return nil
}

// computeChunk fans one chunk out across workerCount goroutines, each
// owning a disjoint slice so no synchronization is needed on the results
// themselves; the semaphore just bounds in-flight goroutines (spec §5:
// "Workers have read-only access to the Location list; they produce
// independent (pos, heuristic) tuples").
func computeChunk(ctx context.Context, sem *semaphore.Weighted, workerCount int, oracle *Oracle, chunk []typedef.Position) ([]*int, error) {
	results := make([]*int, len(chunk))

	g, gctx := errgroup.WithContext(ctx)
	step := (len(chunk) + workerCount - 1) / workerCount
	if step < 1 {
		step = 1
	}

	for lo := 0; lo < len(chunk); lo += step {
		hi := lo + step
		if hi > len(chunk) {
			hi = len(chunk)
		}
		lo, hi := lo, hi

		if err := sem.Acquire(gctx, 1); err != nil {
			return nil, err
		}
		g.Go(func() error {
			defer sem.Release(1)
			for i := lo; i < hi; i++ {
				if dist, ok := oracle.EstimateExact(chunk[i]); ok {
					v := dist
					results[i] = &v
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// enumerate lists every grid cell in rect in row-major order.
func enumerate(rect typedef.Rect) []typedef.Position {
	out := make([]typedef.Position, 0, rect.Count())
	for y := rect.MinY; y <= rect.MaxY; y++ {
		for x := rect.MinX; x <= rect.MaxX; x++ {
			out = append(out, typedef.Position{X: x, Y: y})
		}
	}
	return out
}

// reclaimMemoryHint is invoked between chunks per spec §4.3's
// memory-reclamation hint; gopsutil's memory stats decide whether a GC pass
// is worth forcing rather than doing so unconditionally every chunk.
func reclaimMemoryHint() {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return
	}
	if vm.UsedPercent > 80 {
		runtime.GC()
	}
}
