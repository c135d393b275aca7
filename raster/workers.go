package raster

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Strip is a contiguous, non-overlapping scanline range within one
// primitive. Partitioning work into strips is what lets the worker pool
// process a draw's primitives in parallel while still writing the
// framebuffer in a deterministic, primitive-order-respecting way:
// strips never overlap, so two workers never race on the same pixel.
type Strip struct {
	YMin, YMax int
}

// WorkerPool partitions a primitive's scanline range across goroutines
// using errgroup's WithContext/SetLimit pattern for bounded fan-out.
// Concurrency <= 0 defaults to GOMAXPROCS.
type WorkerPool struct {
	Concurrency int
}

// Strips splits [yMin, yMax] into up to Concurrency contiguous ranges.
func (p *WorkerPool) Strips(yMin, yMax int) []Strip {
	if yMin > yMax {
		return nil
	}
	n := p.limit()
	rows := yMax - yMin + 1
	if n > rows {
		n = rows
	}
	if n <= 0 {
		n = 1
	}
	strips := make([]Strip, 0, n)
	base := rows / n
	rem := rows % n
	y := yMin
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		strips = append(strips, Strip{YMin: y, YMax: y + size - 1})
		y += size
	}
	return strips
}

func (p *WorkerPool) limit() int {
	if p.Concurrency > 0 {
		return p.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

// Run fans fn out across strips with bounded concurrency, returning the
// first error encountered (if any); other in-flight strips are allowed
// to finish per errgroup's normal semantics.
func (p *WorkerPool) Run(ctx context.Context, strips []Strip, fn func(context.Context, Strip) error) error {
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.limit())
	for _, s := range strips {
		s := s
		eg.Go(func() error { return fn(egctx, s) })
	}
	return eg.Wait()
}
