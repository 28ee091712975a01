package book

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/freeeve/connect4/internal/engine"
)

func TestEnumerateCounts(t *testing.T) {
	layers := Enumerate(2)
	want := []int{1, 4, 25}
	if len(layers) != len(want) {
		t.Fatalf("layers = %d, want %d", len(layers), len(want))
	}
	for ply, n := range want {
		if len(layers[ply]) != n {
			t.Errorf("ply %d: %d positions, want %d", ply, len(layers[ply]), n)
		}
		for _, p := range layers[ply] {
			if p.Ply() != ply {
				t.Errorf("ply %d layer holds a position with %d stones", ply, p.Ply())
			}
		}
	}
}

func TestEnumerateSkipsDecided(t *testing.T) {
	for ply, layer := range Enumerate(7) {
		seen := make(map[uint64]bool)
		for _, p := range layer {
			if p.CanWinNext() {
				t.Fatalf("ply %d: enumerated a position with an immediate win", ply)
			}
			if seen[p.BookKey()] {
				t.Fatalf("ply %d: duplicate book key %d", ply, p.BookKey())
			}
			seen[p.BookKey()] = true
		}
	}
}

type plySolver struct {
	failAt int
}

func (s plySolver) Solve(ctx context.Context, p engine.Position) (int, error) {
	if p.Ply() == s.failAt {
		return 0, errors.New("solver broke")
	}
	return p.Ply() - 1, nil
}

func TestBuild(t *testing.T) {
	positions := Enumerate(2)[2]
	entries, err := Build(context.Background(), plySolver{failAt: -1}, positions, BuildConfig{
		Workers: 4,
		Logger:  zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(entries) != len(positions) {
		t.Fatalf("entries = %d, want %d", len(entries), len(positions))
	}
	for i, e := range entries {
		if e.Key != positions[i].BookKey() || e.Ply != 2 || e.Score != 1 {
			t.Errorf("entry %d = %+v", i, e)
		}
	}
}

func TestBuildStopsOnError(t *testing.T) {
	positions := Enumerate(1)[1]
	_, err := Build(context.Background(), plySolver{failAt: 1}, positions, BuildConfig{Workers: 2})
	if err == nil || err.Error() != "solver broke" {
		t.Errorf("err = %v", err)
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, plySolver{failAt: -1}, Enumerate(1)[1], BuildConfig{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
