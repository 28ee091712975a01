package game

import "fmt"

// Outcome is the forced result for the side a Status describes.
type Outcome uint8

const (
	Drawing Outcome = iota
	Winning
	Losing
)

func (o Outcome) String() string {
	switch o {
	case Winning:
		return "winning"
	case Losing:
		return "losing"
	default:
		return "drawing"
	}
}

// Status is the forced outcome for one side and the number of that side's
// turns left until it happens. MovesLeft 0 means it already happened.
type Status struct {
	Outcome   Outcome
	MovesLeft int
}

// Classify interprets an engine score for the side to move at ply.
// Positive scores win, negative scores lose and zero draws.
func Classify(score, ply int) (Status, error) {
	if ply < 0 || ply > MaxPlies {
		return Status{}, fmt.Errorf("%w: ply %d out of range", ErrInconsistentClassification, ply)
	}
	abs, outcome := score, Drawing
	switch {
	case score > 0:
		outcome = Winning
	case score < 0:
		abs, outcome = -score, Losing
	}
	left := (MaxPlies+1)/2 - ply/2 - abs
	if left < 0 {
		return Status{}, fmt.Errorf("%w: score %d at ply %d leaves %d moves",
			ErrInconsistentClassification, score, ply, left)
	}
	return Status{Outcome: outcome, MovesLeft: left}, nil
}

// Reverse returns the same status seen by the other side.
func (s Status) Reverse() Status {
	switch s.Outcome {
	case Winning:
		s.Outcome = Losing
	case Losing:
		s.Outcome = Winning
	}
	return s
}

// IsReset reports whether the outcome has already happened, which ends the session.
func (s Status) IsReset() bool {
	return s.MovesLeft == 0
}

// Message phrases the status for the human it describes.
func (s Status) Message() string {
	if s.MovesLeft == 0 {
		switch s.Outcome {
		case Winning:
			return "You Won"
		case Losing:
			return "You Lost"
		default:
			return "You Drew"
		}
	}
	switch s.Outcome {
	case Winning:
		return fmt.Sprintf("You can win in %s", turns(s.MovesLeft))
	case Losing:
		return fmt.Sprintf("You will lose in %s", turns(s.MovesLeft))
	default:
		return fmt.Sprintf("You can draw in %s", turns(s.MovesLeft))
	}
}

// Prompt is Message for a game that is still running, where a zero-move win
// is one the human has yet to play.
func (s Status) Prompt() string {
	if s.MovesLeft == 0 && s.Outcome == Winning {
		return "You can win this turn"
	}
	return s.Message()
}

func (s Status) String() string {
	return fmt.Sprintf("%s(%d)", s.Outcome, s.MovesLeft)
}

func turns(n int) string {
	if n == 1 {
		return "1 turn"
	}
	return fmt.Sprintf("%d turns", n)
}
