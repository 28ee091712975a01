// Package game holds the session logic of a connect-four game played against
// an automated advisor: the move log, board projection, outcome
// classification and the per-request turn state machine.
package game

import (
	"fmt"
	"strings"

	"github.com/freeeve/connect4/internal/engine"
)

// Board geometry.
const (
	Columns  = engine.Width
	Rows     = engine.Height
	MaxPlies = engine.Size
)

// OpeningColumn is the advisor's pre-placed stone when the human plays second.
const OpeningColumn = Columns / 2

// MoveLog is a game history: one column index per ply, oldest first.
// It is the whole persisted state of a game.
type MoveLog []int

// Decode parses a log of column digits. It rejects characters outside 0-6,
// a seventh stone in any column and logs longer than MaxPlies.
func Decode(text string) (MoveLog, error) {
	if len(text) > MaxPlies {
		return nil, fmt.Errorf("%w: %d plies, at most %d", ErrInvalidLog, len(text), MaxPlies)
	}
	var heights [Columns]int
	log := make(MoveLog, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c < '0' || c >= '0'+Columns {
			return nil, fmt.Errorf("%w: bad column %q at ply %d", ErrInvalidLog, c, i)
		}
		col := int(c - '0')
		heights[col]++
		if heights[col] > Rows {
			return nil, fmt.Errorf("%w: column %d overfilled at ply %d", ErrInvalidLog, col, i)
		}
		log = append(log, col)
	}
	return log, nil
}

// String encodes the log; Decode(m.String()) reproduces m.
func (m MoveLog) String() string {
	var sb strings.Builder
	sb.Grow(len(m))
	for _, col := range m {
		sb.WriteByte(byte('0' + col))
	}
	return sb.String()
}

// Len returns the number of plies played.
func (m MoveLog) Len() int {
	return len(m)
}

// Extend returns a new log with col appended. Only the column range is
// checked; whether the column has room is the engine's concern.
func (m MoveLog) Extend(col int) (MoveLog, error) {
	if col < 0 || col >= Columns {
		return nil, fmt.Errorf("%w: column %d out of range", ErrIllegalMove, col)
	}
	out := make(MoveLog, len(m), len(m)+1)
	copy(out, m)
	return append(out, col), nil
}

// Side identifies one of the two players.
type Side uint8

const (
	SideFirst  Side = iota // moves on even plies, colorA
	SideSecond             // moves on odd plies, colorB
)

// ToMove returns the side whose turn it is.
func (m MoveLog) ToMove() Side {
	if len(m)%2 == 0 {
		return SideFirst
	}
	return SideSecond
}

// ParseSide parses "first" or "second".
func ParseSide(s string) (Side, error) {
	switch s {
	case "first":
		return SideFirst, nil
	case "second":
		return SideSecond, nil
	default:
		return SideFirst, fmt.Errorf("unknown side %q", s)
	}
}

func (s Side) String() string {
	if s == SideSecond {
		return "second"
	}
	return "first"
}
