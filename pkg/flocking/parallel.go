package flocking

import (
	"golang.org/x/sync/errgroup"
)

// minChunk is the smallest slice of agents worth handing to a goroutine.
const minChunk = 64

// pool splits one pipeline phase into contiguous agent ranges.
// Each range is touched by exactly one goroutine and run waits for all of
// them, which is the barrier between phases. The zero value runs serially.
type pool struct {
	workers int
}

func newPool(workers int) pool {
	if workers < 1 {
		workers = 1
	}
	return pool{workers: workers}
}

func (p pool) run(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if p.workers <= 1 || n <= minChunk {
		fn(0, n)
		return
	}
	chunk := (n + p.workers - 1) / p.workers
	if chunk < minChunk {
		chunk = minChunk
	}

	var g errgroup.Group
	g.SetLimit(p.workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait() // phases never fail
}
