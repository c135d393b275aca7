package raster

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestWorkerPoolStripsCoverRangeWithoutGapsOrOverlap(t *testing.T) {
	pool := &WorkerPool{Concurrency: 4}
	strips := pool.Strips(0, 9)
	if len(strips) != 4 {
		t.Fatalf("expected 4 strips, got %d", len(strips))
	}
	covered := make([]bool, 10)
	for _, s := range strips {
		for y := s.YMin; y <= s.YMax; y++ {
			if covered[y] {
				t.Fatalf("row %d covered by more than one strip", y)
			}
			covered[y] = true
		}
	}
	for y, ok := range covered {
		if !ok {
			t.Fatalf("row %d not covered by any strip", y)
		}
	}
}

func TestWorkerPoolStripsClampsToRowCount(t *testing.T) {
	pool := &WorkerPool{Concurrency: 16}
	strips := pool.Strips(0, 2)
	if len(strips) != 3 {
		t.Fatalf("expected at most one strip per row when concurrency exceeds row count, got %d strips", len(strips))
	}
}

func TestWorkerPoolStripsEmptyRange(t *testing.T) {
	pool := &WorkerPool{Concurrency: 4}
	if strips := pool.Strips(5, 2); strips != nil {
		t.Fatalf("expected nil strips for an empty range, got %v", strips)
	}
}

func TestWorkerPoolRunPropagatesError(t *testing.T) {
	pool := &WorkerPool{Concurrency: 2}
	strips := pool.Strips(0, 3)
	sentinel := errors.New("boom")
	err := pool.Run(context.Background(), strips, func(ctx context.Context, s Strip) error {
		if s.YMin == 0 {
			return sentinel
		}
		return nil
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error to propagate, got %v", err)
	}
}

func TestWorkerPoolRunVisitsEveryStrip(t *testing.T) {
	pool := &WorkerPool{Concurrency: 4}
	strips := pool.Strips(0, 19)
	var mu sync.Mutex
	seen := 0
	err := pool.Run(context.Background(), strips, func(ctx context.Context, s Strip) error {
		mu.Lock()
		seen++
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if seen != len(strips) {
		t.Fatalf("visited %d strips, want %d", seen, len(strips))
	}
}
