package game

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/freeeve/connect4/internal/engine"
)

// scriptedEngine parses with the real engine and answers Analyze from a table
// of positions, so tests control every score the orchestrator sees.
type scriptedEngine struct {
	scores map[uint64]engine.Scores
	calls  int
	err    error
}

func newScripted() *scriptedEngine {
	return &scriptedEngine{scores: make(map[uint64]engine.Scores)}
}

func (e *scriptedEngine) set(t *testing.T, moves string, s engine.Scores) {
	t.Helper()
	p, err := engine.Parse(moves)
	if err != nil {
		t.Fatalf("engine.Parse(%q): %v", moves, err)
	}
	e.scores[p.Key()] = s
}

func (e *scriptedEngine) Parse(moves string) (engine.Position, error) {
	return engine.Parse(moves)
}

func (e *scriptedEngine) Analyze(ctx context.Context, p engine.Position) (engine.Scores, error) {
	e.calls++
	if e.err != nil {
		return engine.Scores{}, e.err
	}
	s, ok := e.scores[p.Key()]
	if !ok {
		return engine.Scores{}, fmt.Errorf("unscripted position at ply %d", p.Ply())
	}
	return s, nil
}

func newTestOrchestrator(eng Engine) *Orchestrator {
	return NewOrchestrator(eng, zerolog.Nop())
}

func TestPlayImmediateWin(t *testing.T) {
	eng := newScripted()
	o := newTestOrchestrator(eng)

	v, err := o.Play(context.Background(), mustDecode(t, "010101"), 0, true)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !v.Final || v.Status != (Status{Winning, 0}) {
		t.Errorf("status = %v final=%v, want Winning(0) final", v.Status, v.Final)
	}
	if v.Message != "You Won" {
		t.Errorf("message = %q", v.Message)
	}
	if v.Path != NewGamePath {
		t.Errorf("path = %q, want %q", v.Path, NewGamePath)
	}
	if v.Moves.String() != "0101010" {
		t.Errorf("moves = %q, want the winning move without a reply", v.Moves)
	}
	if got := v.Board.Stack(0); len(got) != 4 {
		t.Errorf("column 0 holds %d stones, want 4", len(got))
	}
	if eng.calls != 0 {
		t.Errorf("engine analyzed %d positions after an immediate win", eng.calls)
	}
	if v.ScoreText() != [Columns]string{"None", "None", "None", "None", "None", "None", "None"} {
		t.Errorf("final view scores = %v", v.ScoreText())
	}
}

func TestPlayFillsBoard(t *testing.T) {
	eng := newScripted()
	o := newTestOrchestrator(eng)

	prior := mustDecode(t, drawnGame[:MaxPlies-1])
	last := int(drawnGame[MaxPlies-1] - '0')
	v, err := o.Play(context.Background(), prior, last, false)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !v.Final || v.Status != (Status{Drawing, 0}) {
		t.Errorf("status = %v final=%v, want Drawing(0) final", v.Status, v.Final)
	}
	if v.Message != "You Drew" || v.Path != NewGamePath {
		t.Errorf("message=%q path=%q", v.Message, v.Path)
	}
	if v.Moves.Len() != MaxPlies {
		t.Errorf("moves has %d plies, want %d", v.Moves.Len(), MaxPlies)
	}
	if eng.calls != 0 {
		t.Errorf("engine called %d times on a full board", eng.calls)
	}
}

func TestPlayAdvisorFillsBoard(t *testing.T) {
	eng := newScripted()
	o := newTestOrchestrator(eng)

	prior := mustDecode(t, drawnGame[:MaxPlies-2])
	human := int(drawnGame[MaxPlies-2] - '0')
	eng.set(t, drawnGame[:MaxPlies-1], scoresOf(none, none, none, none, none, none, 0))

	v, err := o.Play(context.Background(), prior, human, false)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !v.Final || v.Status != (Status{Drawing, 0}) {
		t.Errorf("status = %v final=%v, want Drawing(0) final", v.Status, v.Final)
	}
	if v.Moves.String() != drawnGame {
		t.Errorf("moves = %q, want the full game", v.Moves)
	}
	if eng.calls != 1 {
		t.Errorf("engine called %d times, want 1", eng.calls)
	}
}

func TestPlayAdvisorWins(t *testing.T) {
	eng := newScripted()
	o := newTestOrchestrator(eng)

	// the advisor holds three in column 6 and the human ignores it
	eng.set(t, "0616062", scoresOf(-17, -17, -17, -17, -17, -17, 18))

	v, err := o.Play(context.Background(), mustDecode(t, "061606"), 2, true)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !v.Final || v.Status != (Status{Losing, 0}) {
		t.Errorf("status = %v final=%v, want Losing(0) final", v.Status, v.Final)
	}
	if v.Message != "You Lost" {
		t.Errorf("message = %q", v.Message)
	}
	if v.Moves.String() != "06160626" {
		t.Errorf("moves = %q, want the advisor's winning reply included", v.Moves)
	}
	if v.Path != NewGamePath {
		t.Errorf("path = %q", v.Path)
	}
	if got := v.Board.Stack(6); len(got) != 4 || got[3] != Yellow {
		t.Errorf("column 6 = %v, want four yellow stones", got)
	}
}

func TestPlayContinues(t *testing.T) {
	eng := newScripted()
	o := newTestOrchestrator(eng)

	eng.set(t, "3", scoresOf(-1, -2, 0, 0, 0, -2, -1))
	eng.set(t, "34", scoresOf(0, 1, 2, 2, 1, 0, none))

	v, err := o.Play(context.Background(), MoveLog{}, 3, true)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if v.Final {
		t.Fatal("view is final")
	}
	if v.Moves.String() != "34" {
		t.Errorf("moves = %q, want advisor reply in column 4", v.Moves)
	}
	if v.Path != "/game/34" {
		t.Errorf("path = %q", v.Path)
	}
	if v.Status != (Status{Winning, 18}) {
		t.Errorf("status = %v, want Winning(18)", v.Status)
	}
	if v.Message != "You can win in 18 turns" {
		t.Errorf("message = %q", v.Message)
	}
	want := [Columns]string{"0", "1", "2", "2", "1", "0", "None"}
	if v.ScoreText() != want {
		t.Errorf("scores = %v, want %v", v.ScoreText(), want)
	}
	if !v.ShowScores {
		t.Error("visibility flag dropped")
	}
	if got := v.Board.Stack(3); len(got) != 1 || got[0] != Red {
		t.Errorf("column 3 = %v", got)
	}
	if got := v.Board.Stack(4); len(got) != 1 || got[0] != Yellow {
		t.Errorf("column 4 = %v", got)
	}
	if v.ToMove() != SideFirst {
		t.Errorf("ToMove = %v", v.ToMove())
	}
}

func TestPlayAdvisorLostKeepsSession(t *testing.T) {
	eng := newScripted()
	o := newTestOrchestrator(eng)

	// every advisor reply loses to the human's next stone
	eng.set(t, "3", scoresOf(-21, -21, -21, -21, -21, -21, -21))
	eng.set(t, "36", scoresOf(20, 0, 0, 0, 0, 0, 0))

	v, err := o.Play(context.Background(), MoveLog{}, 3, false)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if v.Final {
		t.Fatal("game ended before the human played the winning move")
	}
	if v.Status != (Status{Winning, 0}) {
		t.Errorf("status = %v, want Winning(0)", v.Status)
	}
	if v.Message != "You can win this turn" {
		t.Errorf("message = %q", v.Message)
	}
	if v.Path != "/game/36" {
		t.Errorf("path = %q, want /game/36", v.Path)
	}
}

func TestPlayNoAdvisorReply(t *testing.T) {
	eng := newScripted()
	o := newTestOrchestrator(eng)
	eng.set(t, "3", scoresOf())

	v, err := o.Play(context.Background(), MoveLog{}, 3, false)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !v.Final || v.Status != (Status{Drawing, 0}) || v.Moves.String() != "3" {
		t.Errorf("view = %+v, want final Drawing(0) on log 3", v)
	}
}

func TestPlayInconsistentScore(t *testing.T) {
	eng := newScripted()
	o := newTestOrchestrator(eng)
	eng.set(t, "3", scoresOf(22, 0, 0, 0, 0, 0, 0))

	_, err := o.Play(context.Background(), MoveLog{}, 3, false)
	if !errors.Is(err, ErrInconsistentClassification) {
		t.Fatalf("Play = %v, want ErrInconsistentClassification", err)
	}
	if errors.Is(err, ErrInvalidLog) || errors.Is(err, ErrIllegalMove) {
		t.Errorf("contract violation reported as bad input: %v", err)
	}
}

func TestPlayRejectsBadInput(t *testing.T) {
	o := newTestOrchestrator(newScripted())
	ctx := context.Background()

	tests := []struct {
		name  string
		moves MoveLog
		col   int
		want  error
	}{
		{"finished game", MoveLog{0, 1, 0, 1, 0, 1, 0}, 2, ErrInvalidLog},
		{"full column", MoveLog{0, 0, 0, 0, 0, 0}, 0, ErrIllegalMove},
		{"column too large", MoveLog{}, Columns, ErrIllegalMove},
		{"negative column", MoveLog{}, -1, ErrIllegalMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := o.Play(ctx, tt.moves, tt.col, false); !errors.Is(err, tt.want) {
				t.Errorf("Play = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPlayEngineError(t *testing.T) {
	eng := newScripted()
	eng.err = context.DeadlineExceeded
	o := newTestOrchestrator(eng)

	_, err := o.Play(context.Background(), MoveLog{}, 3, false)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Play = %v, want context.DeadlineExceeded", err)
	}
}

func TestShow(t *testing.T) {
	eng := newScripted()
	o := newTestOrchestrator(eng)
	eng.set(t, "34", scoresOf(0, 1, 2, 2, 1, 0, none))

	v, err := o.Show(context.Background(), MoveLog{3, 4}, false)
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if v.Final || v.Path != "/game/34" || v.ShowScores {
		t.Errorf("view = %+v", v)
	}
	if v.Status != (Status{Winning, 18}) {
		t.Errorf("status = %v", v.Status)
	}

	start, err := o.Show(context.Background(), MoveLog{}, true)
	if err != nil {
		t.Fatalf("Show(empty): %v", err)
	}
	if start.Path != NewGamePath || start.Moves.Len() != 0 || !start.ShowScores {
		t.Errorf("start view = %+v", start)
	}
}

func TestNewGame(t *testing.T) {
	eng := newScripted()
	o := newTestOrchestrator(eng)
	eng.set(t, "3", scoresOf(-1, -2, 0, 0, 0, -2, -1))

	first, err := o.NewGame(context.Background(), SideFirst, false)
	if err != nil {
		t.Fatalf("NewGame(first): %v", err)
	}
	if first.Moves.Len() != 0 || eng.calls != 0 {
		t.Errorf("first-side game = %+v, engine calls %d", first, eng.calls)
	}

	second, err := o.NewGame(context.Background(), SideSecond, false)
	if err != nil {
		t.Fatalf("NewGame(second): %v", err)
	}
	if second.Moves.String() != "3" || second.Path != "/game/3" {
		t.Errorf("second-side game moves=%q path=%q", second.Moves, second.Path)
	}
	if second.ToMove() != SideSecond {
		t.Errorf("human should move second, got %v", second.ToMove())
	}
	if got := second.Board.Stack(OpeningColumn); len(got) != 1 || got[0] != Red {
		t.Errorf("opening column = %v", got)
	}
}
