// c4term plays connect four against the solver in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"github.com/freeeve/connect4/internal/book"
	"github.com/freeeve/connect4/internal/engine"
	"github.com/freeeve/connect4/internal/game"
	"github.com/freeeve/connect4/internal/logx"
)

var (
	flagBook    = flag.String("book", os.Getenv("C4_BOOK"), "opening book file (env C4_BOOK, default: XDG data dirs)")
	flagSecond  = flag.Bool("second", false, "let the computer open in the centre column")
	flagScores  = flag.Bool("scores", false, "show column scores")
	flagTimeout = flag.Duration("search-timeout", time.Minute, "engine time budget per move")
	flagLog     = flag.String("log", "", "write logs to this file")
)

const helpText = "[::b]1-7[::-] play  [::b]s[::-] scores  [::b]n[::-]/[::b]N[::-] new game first/second  [::b]q[::-] quit"

type session struct {
	app     *tview.Application
	orch    *game.Orchestrator
	board   *boardView
	status  *tview.TextView
	log     zerolog.Logger
	timeout time.Duration

	view *game.View
	busy bool
}

func main() {
	flag.Parse()

	var out io.Writer = io.Discard
	if *flagLog != "" {
		f, err := os.OpenFile(*flagLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	logger, err := logx.NewLogger(logx.Options{Level: "debug", JSON: true, Out: out})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := engine.SolverConfig{Logger: logger}
	if path, err := book.Resolve(*flagBook); err == nil {
		b, err := book.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load opening book: %v\n", err)
			os.Exit(1)
		}
		cfg.Book = b
	} else if *flagBook != "" {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	s := &session{
		app:     tview.NewApplication(),
		orch:    game.NewOrchestrator(engine.NewSolver(cfg), logger),
		board:   newBoardView(),
		status:  tview.NewTextView().SetDynamicColors(true),
		log:     logger,
		timeout: *flagTimeout,
	}
	s.status.SetBorder(true).SetBorderPadding(0, 0, 1, 1).SetTitle(" Status ").SetTitleAlign(tview.AlignLeft)

	help := tview.NewTextView().SetDynamicColors(true).SetText(helpText)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.board, game.Rows+4, 0, true).
		AddItem(s.status, 4, 0, false).
		AddItem(help, 1, 0, false)
	layout.SetInputCapture(s.handleKey)

	side := game.SideFirst
	if *flagSecond {
		side = game.SideSecond
	}
	s.newGame(side, *flagScores)

	if err := s.app.SetRoot(layout, true).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (s *session) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() != tcell.KeyRune {
		if event.Key() == tcell.KeyEsc {
			s.app.Stop()
			return nil
		}
		return event
	}
	r := event.Rune()
	switch {
	case r == 'q':
		s.app.Stop()
	case s.busy:
		// ignore input while the solver runs
	case r >= '1' && r < '1'+game.Columns && s.view != nil:
		s.play(int(r - '1'))
	case r == 's' && s.view != nil:
		s.view.ShowScores = !s.view.ShowScores
		s.show(s.view)
	case r == 'n':
		s.newGame(game.SideFirst, s.showScores())
	case r == 'N':
		s.newGame(game.SideSecond, s.showScores())
	default:
		return event
	}
	return nil
}

func (s *session) showScores() bool {
	return s.view != nil && s.view.ShowScores
}

func (s *session) newGame(side game.Side, show bool) {
	s.run("Thinking...", func(ctx context.Context) (*game.View, error) {
		return s.orch.NewGame(ctx, side, show)
	})
}

func (s *session) play(col int) {
	if s.view.Final {
		s.newGame(game.SideFirst, s.view.ShowScores)
		return
	}
	moves, show := s.view.Moves, s.view.ShowScores
	s.run("Thinking...", func(ctx context.Context) (*game.View, error) {
		return s.orch.Play(ctx, moves, col, show)
	})
}

// run calls the orchestrator off the UI goroutine and shows its result.
func (s *session) run(msg string, fn func(ctx context.Context) (*game.View, error)) {
	s.busy = true
	s.status.SetText(msg)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		v, err := fn(ctx)
		s.app.QueueUpdateDraw(func() {
			s.busy = false
			if err != nil {
				s.fail(err)
				return
			}
			s.show(v)
		})
	}()
}

func (s *session) show(v *game.View) {
	s.view = v
	s.board.view = v
	text := v.Message
	if v.Notice != "" {
		text += "\n[red]" + v.Notice
	}
	if v.Final {
		text += "\n[::d]press a column key or n for a new game"
	}
	s.status.SetText(text)
}

func (s *session) fail(err error) {
	switch {
	case errors.Is(err, game.ErrIllegalMove):
		if s.view != nil {
			s.view.Notice = "That column cannot be played, pick another one"
			s.show(s.view)
			s.view.Notice = ""
		}
	case errors.Is(err, context.DeadlineExceeded):
		s.status.SetText("[red]The engine ran out of time, try again")
	default:
		s.log.Error().Err(err).Msg("turn failed")
		s.status.SetText("[red]" + err.Error())
	}
}
