package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Book supplies exact scores for early positions, keyed by Position.BookKey.
type Book interface {
	Get(key uint64) (int, bool)
	Depth() int
}

// Score is one column's evaluation. Valid is false for a full column.
type Score struct {
	Value int
	Valid bool
}

// Scores holds the evaluation of each column for the side to move.
type Scores [Width]Score

// Available returns a valid Score.
func Available(v int) Score {
	return Score{Value: v, Valid: true}
}

// SolverConfig configures a Solver.
type SolverConfig struct {
	Book      Book // optional
	TableSize int  // transposition table entries per search, 0 = DefaultTableSize
	Logger    zerolog.Logger
}

// Solver evaluates positions exactly. It is safe for concurrent use; each
// search borrows its own transposition table.
type Solver struct {
	book      Book
	tableSize int
	tables    sync.Pool
	log       zerolog.Logger

	nodes    atomic.Uint64
	analyses atomic.Uint64
}

// NewSolver creates a solver.
func NewSolver(cfg SolverConfig) *Solver {
	s := &Solver{
		book:      cfg.Book,
		tableSize: cfg.TableSize,
		log:       cfg.Logger,
	}
	s.tables.New = func() any { return newTable(s.tableSize) }
	return s
}

// Parse decodes a move log into a position.
func (s *Solver) Parse(moves string) (Position, error) {
	return Parse(moves)
}

// Analyze scores every column for the side to move. An immediate win scores
// (Size+1-ply)/2; other playable columns score the negated value of the
// resulting position. Columns are solved concurrently.
func (s *Solver) Analyze(ctx context.Context, p Position) (Scores, error) {
	start := time.Now()
	before := s.nodes.Load()

	var scores Scores
	g, gctx := errgroup.WithContext(ctx)
	for col := 0; col < Width; col++ {
		if !p.CanPlay(col) {
			continue
		}
		if p.IsWinningMove(col) {
			scores[col] = Available((Size + 1 - p.moves) / 2)
			continue
		}
		child, _ := p.Played(col)
		g.Go(func() error {
			v, err := s.Solve(gctx, child)
			if err != nil {
				return err
			}
			scores[col] = Available(-v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Scores{}, err
	}
	s.analyses.Add(1)

	s.log.Debug().
		Int("ply", p.moves).
		Uint64("nodes", s.nodes.Load()-before).
		Dur("elapsed", time.Since(start)).
		Msg("analyzed position")
	return scores, nil
}

// Solve returns the exact score of p for the side to move.
func (s *Solver) Solve(ctx context.Context, p Position) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	tt := s.tables.Get().(*table)
	sr := &search{ctx: ctx, tt: tt, book: s.book}
	if s.book != nil {
		sr.bookDepth = s.book.Depth()
	}
	v := sr.solve(p)
	s.nodes.Add(sr.nodes)
	if sr.err != nil {
		// values written during an aborted search cannot be trusted
		tt.reset()
		s.tables.Put(tt)
		return 0, sr.err
	}
	s.tables.Put(tt)
	return v, nil
}

// SolverStats reports cumulative work.
type SolverStats struct {
	Nodes    uint64
	Analyses uint64
	BookSize int
}

// Stats returns cumulative solver counters.
func (s *Solver) Stats() SolverStats {
	st := SolverStats{
		Nodes:    s.nodes.Load(),
		Analyses: s.analyses.Load(),
	}
	if l, ok := s.book.(interface{ Len() int }); ok {
		st.BookSize = l.Len()
	}
	return st
}

// columnOrder explores centre columns first.
var columnOrder = [Width]int{3, 2, 4, 1, 5, 0, 6}

const cancelCheckMask = 1<<16 - 1

type search struct {
	ctx       context.Context
	tt        *table
	book      Book
	bookDepth int
	nodes     uint64
	err       error
}

// solve narrows [min, max] with null-window searches.
func (s *search) solve(p Position) int {
	if p.CanWinNext() {
		return (Size + 1 - p.moves) / 2
	}
	lo := -(Size - p.moves) / 2
	hi := (Size + 1 - p.moves) / 2
	for lo < hi {
		med := lo + (hi-lo)/2
		if med <= 0 && lo/2 < med {
			med = lo / 2
		} else if med >= 0 && hi/2 > med {
			med = hi / 2
		}
		r := s.negamax(p, med, med+1)
		if s.err != nil {
			return 0
		}
		if r <= med {
			hi = r
		} else {
			lo = r
		}
	}
	return lo
}

// negamax requires that the side to move cannot win immediately.
func (s *search) negamax(p Position, alpha, beta int) int {
	s.nodes++
	if s.nodes&cancelCheckMask == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
		}
	}
	if s.err != nil {
		return 0
	}

	next := p.possibleNonLosingMoves()
	if next == 0 {
		return -(Size - p.moves) / 2
	}
	if p.moves >= Size-2 {
		return 0
	}

	lo := -(Size - 2 - p.moves) / 2
	if alpha < lo {
		alpha = lo
		if alpha >= beta {
			return alpha
		}
	}

	key := p.Key()
	hi := (Size - 1 - p.moves) / 2
	if v := s.tt.get(key); v != 0 {
		hi = int(v) + MinScore - 1
	}
	if beta > hi {
		beta = hi
		if alpha >= beta {
			return beta
		}
	}

	if s.book != nil && p.moves <= s.bookDepth {
		if v, ok := s.book.Get(p.BookKey()); ok {
			return v
		}
	}

	var sorter moveSorter
	for i := Width - 1; i >= 0; i-- {
		if move := next & columnMask(columnOrder[i]); move != 0 {
			sorter.add(move, p.moveScore(move))
		}
	}

	for move := sorter.next(); move != 0; move = sorter.next() {
		child := p
		child.playMove(move)
		score := -s.negamax(child, -beta, -alpha)
		if s.err != nil {
			return 0
		}
		if score >= beta {
			return score
		}
		if score > alpha {
			alpha = score
		}
	}

	s.tt.put(key, int8(alpha-MinScore+1))
	return alpha
}

// moveSorter yields moves by descending score; among equal scores the most
// recently added comes first.
type moveSorter struct {
	size    int
	entries [Width]struct {
		move  uint64
		score int
	}
}

func (m *moveSorter) add(move uint64, score int) {
	pos := m.size
	m.size++
	for ; pos > 0 && m.entries[pos-1].score > score; pos-- {
		m.entries[pos] = m.entries[pos-1]
	}
	m.entries[pos].move = move
	m.entries[pos].score = score
}

func (m *moveSorter) next() uint64 {
	if m.size == 0 {
		return 0
	}
	m.size--
	return m.entries[m.size].move
}
