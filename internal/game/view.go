package game

import (
	"strconv"

	"github.com/freeeve/connect4/internal/engine"
)

// View is everything needed to render one response.
type View struct {
	Board      Board
	Scores     engine.Scores
	Status     Status
	Message    string
	Notice     string // recoverable problem with the submitted move
	Moves      MoveLog
	Path       string // where the next request continues
	ShowScores bool
	Final      bool
}

// ScoreText renders each column's score; unavailable columns read "None".
func (v *View) ScoreText() [Columns]string {
	return DisplayScores(v.Scores)
}

// ToMove returns the side expected to play next.
func (v *View) ToMove() Side {
	return v.Moves.ToMove()
}

// DisplayScores renders a score vector for display.
func DisplayScores(scores engine.Scores) [Columns]string {
	var out [Columns]string
	for i, s := range scores {
		if s.Valid {
			out[i] = strconv.Itoa(s.Value)
		} else {
			out[i] = "None"
		}
	}
	return out
}
