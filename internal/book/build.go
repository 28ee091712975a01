package book

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/connect4/internal/engine"
)

// Solver computes the exact score of a position.
type Solver interface {
	Solve(ctx context.Context, p engine.Position) (int, error)
}

// Enumerate returns the undecided positions reachable in at most depth plies,
// grouped by ply. Mirror images are reduced to one representative, and
// positions where the side to move wins at once are left out because the
// search never looks them up.
func Enumerate(depth int) [][]engine.Position {
	if depth < 0 {
		return nil
	}
	if depth > engine.Size {
		depth = engine.Size
	}
	layers := make([][]engine.Position, 0, depth+1)
	layers = append(layers, []engine.Position{engine.NewPosition()})

	for ply := 1; ply <= depth; ply++ {
		seen := make(map[uint64]struct{})
		var next []engine.Position
		for _, p := range layers[ply-1] {
			for col := 0; col < engine.Width; col++ {
				if p.IsWinningMove(col) {
					continue
				}
				child, ok := p.Played(col)
				if !ok || child.CanWinNext() {
					continue
				}
				key := child.BookKey()
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				next = append(next, child)
			}
		}
		layers = append(layers, next)
	}
	return layers
}

// BuildConfig controls Build.
type BuildConfig struct {
	Workers       int           // concurrent solves, 0 = 1
	ProgressEvery time.Duration // 0 disables progress lines
	Logger        zerolog.Logger
}

// Build solves every position and returns the book entries in input order.
// The first failing solve cancels the rest.
func Build(ctx context.Context, s Solver, positions []engine.Position, cfg BuildConfig) ([]Entry, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	entries := make([]Entry, len(positions))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	stopProgress := make(chan struct{})
	if cfg.ProgressEvery > 0 {
		start := time.Now()
		go func() {
			tick := time.NewTicker(cfg.ProgressEvery)
			defer tick.Stop()
			for {
				select {
				case <-stopProgress:
					return
				case <-tick.C:
					cfg.Logger.Info().
						Int64("done", done.Load()).
						Int("total", len(positions)).
						Dur("elapsed", time.Since(start)).
						Msg("book progress")
				}
			}
		}()
	}
	defer close(stopProgress)

	for i, p := range positions {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			v, err := s.Solve(gctx, p)
			if err != nil {
				return err
			}
			entries[i] = Entry{Key: p.BookKey(), Ply: p.Ply(), Score: v}
			done.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
