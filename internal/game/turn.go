package game

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/freeeve/connect4/internal/engine"
)

// Engine is the move-search collaborator.
type Engine interface {
	// Parse decodes a move log, rejecting full columns and finished games.
	Parse(moves string) (engine.Position, error)
	// Analyze scores each column for the side to move.
	Analyze(ctx context.Context, p engine.Position) (engine.Scores, error)
}

// Orchestrator plays the human's move and the advisor's reply. It keeps no
// state between calls; the move log carries the whole game.
type Orchestrator struct {
	eng Engine
	log zerolog.Logger
}

// NewOrchestrator creates an orchestrator backed by eng.
func NewOrchestrator(eng Engine, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{eng: eng, log: log}
}

// Start returns the empty board.
func (o *Orchestrator) Start(show bool) *View {
	return &View{
		Board:      Project(nil),
		Message:    "Your move",
		Moves:      MoveLog{},
		Path:       NewGamePath,
		ShowScores: show,
	}
}

// NewGame starts a game with the human playing side. Playing second begins
// with the advisor's stone in the centre column.
func (o *Orchestrator) NewGame(ctx context.Context, side Side, show bool) (*View, error) {
	if side == SideFirst {
		return o.Start(show), nil
	}
	return o.Show(ctx, MoveLog{OpeningColumn}, show)
}

// Show renders the position of m with the human to move, without playing.
func (o *Orchestrator) Show(ctx context.Context, m MoveLog, show bool) (*View, error) {
	if m.Len() == 0 {
		return o.Start(show), nil
	}
	pos, err := o.position(m)
	if err != nil {
		return nil, err
	}
	scores, err := o.eng.Analyze(ctx, pos)
	if err != nil {
		return nil, err
	}
	best, ok := BestMove(scores)
	if !ok {
		return o.finish(m, Status{Outcome: Drawing}, show), nil
	}
	st, err := o.classify(scores[best].Value, m.Len())
	if err != nil {
		return nil, err
	}
	return o.running(m, scores, st, show), nil
}

// Play applies the human's move in col to m and, unless the game ends, the
// advisor's best reply.
func (o *Orchestrator) Play(ctx context.Context, m MoveLog, col int, show bool) (*View, error) {
	pos, err := o.position(m)
	if err != nil {
		return nil, err
	}
	if !pos.CanPlay(col) {
		return nil, fmt.Errorf("%w: column %d cannot be played", ErrIllegalMove, col)
	}
	played, err := m.Extend(col)
	if err != nil {
		return nil, err
	}

	if pos.IsWinningMove(col) {
		o.log.Debug().Str("moves", played.String()).Msg("human wins")
		return o.finish(played, Status{Outcome: Winning}, show), nil
	}
	if m.Len() == MaxPlies-1 {
		return o.finish(played, Status{Outcome: Drawing}, show), nil
	}

	pos.Play(col)
	scores, err := o.eng.Analyze(ctx, pos)
	if err != nil {
		return nil, err
	}
	reply, ok := BestMove(scores)
	if !ok {
		return o.finish(played, Status{Outcome: Drawing}, show), nil
	}
	advisor, err := o.classify(scores[reply].Value, played.Len())
	if err != nil {
		return nil, err
	}
	replied, err := played.Extend(reply)
	if err != nil {
		return nil, err
	}

	if advisor.IsReset() && advisor.Outcome != Losing {
		o.log.Debug().Str("moves", replied.String()).Stringer("advisor", advisor).Msg("advisor ends the game")
		return o.finish(replied, advisor.Reverse(), show), nil
	}

	pos.Play(reply)
	if replied.Len() == MaxPlies {
		return o.finish(replied, Status{Outcome: Drawing}, show), nil
	}
	next, err := o.eng.Analyze(ctx, pos)
	if err != nil {
		return nil, err
	}
	best, ok := BestMove(next)
	if !ok {
		return o.finish(replied, Status{Outcome: Drawing}, show), nil
	}
	human, err := o.classify(next[best].Value, replied.Len())
	if err != nil {
		return nil, err
	}
	o.log.Debug().
		Str("moves", replied.String()).
		Int("reply", reply).
		Stringer("advisor", advisor).
		Stringer("human", human).
		Msg("advisor replied")
	return o.running(replied, next, human, show), nil
}

func (o *Orchestrator) position(m MoveLog) (engine.Position, error) {
	pos, err := o.eng.Parse(m.String())
	if err != nil {
		return engine.Position{}, fmt.Errorf("%w: %v", ErrInvalidLog, err)
	}
	return pos, nil
}

func (o *Orchestrator) classify(score, ply int) (Status, error) {
	st, err := Classify(score, ply)
	if err != nil {
		o.log.Error().Err(err).Int("score", score).Int("ply", ply).Msg("engine score out of range")
	}
	return st, err
}

// finish builds the view of a game that just ended.
func (o *Orchestrator) finish(m MoveLog, st Status, show bool) *View {
	return &View{
		Board:      Project(m),
		Status:     st,
		Message:    st.Message(),
		Moves:      m,
		Path:       NextPath(m, st),
		ShowScores: show,
		Final:      true,
	}
}

// running builds the view of a game waiting for the human's move. A running
// game always resumes from its log, even when the human can win at once.
func (o *Orchestrator) running(m MoveLog, scores engine.Scores, st Status, show bool) *View {
	return &View{
		Board:      Project(m),
		Scores:     scores,
		Status:     st,
		Message:    st.Prompt(),
		Moves:      m,
		Path:       GamePath(m),
		ShowScores: show,
	}
}
