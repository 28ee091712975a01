// Package engine is the connect-four move-search collaborator: a bitboard
// position, an exact negamax solver and opening-book lookup.
package engine

import (
	"errors"
	"fmt"
	"math/bits"
)

// Board geometry.
const (
	Width    = 7
	Height   = 6
	Size     = Width * Height
	MinScore = -Size/2 + 3
	MaxScore = (Size+1)/2 - 3
)

// Bitboard layout: column c uses bits c*(Height+1) .. c*(Height+1)+Height-1
// (bottom to top) plus one sentinel bit on top that is never set.
//
//	 6 13 20 27 34 41 48
//	 5 12 19 26 33 40 47
//	 4 11 18 25 32 39 46
//	 3 10 17 24 31 38 45
//	 2  9 16 23 30 37 44
//	 1  8 15 22 29 36 43
//	 0  7 14 21 28 35 42
var (
	bottomMask = makeBottomMask()
	boardMask  = bottomMask * ((1 << Height) - 1)
)

// Position errors.
var (
	ErrBadColumn  = errors.New("column out of range")
	ErrFullColumn = errors.New("column is full")
	ErrDecided    = errors.New("game already decided")
)

// MoveError reports the ply at which a move sequence became invalid.
type MoveError struct {
	Index  int
	Column int
	Err    error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %d (column %d): %v", e.Index, e.Column, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

// Position is a connect-four position. current holds the stones of the side
// to move, mask holds every stone.
type Position struct {
	current uint64
	mask    uint64
	moves   int
}

// NewPosition returns the empty board.
func NewPosition() Position {
	return Position{}
}

// Parse plays a sequence of column digits ('0'-'6') from the empty board.
// It rejects full columns and any move that ends the game, so a parsed
// position is always undecided.
func Parse(moves string) (Position, error) {
	var p Position
	for i := 0; i < len(moves); i++ {
		c := moves[i]
		if c < '0' || c > '0'+Width-1 {
			return Position{}, &MoveError{Index: i, Column: int(c) - '0', Err: ErrBadColumn}
		}
		col := int(c - '0')
		if !p.CanPlay(col) {
			return Position{}, &MoveError{Index: i, Column: col, Err: ErrFullColumn}
		}
		if p.IsWinningMove(col) {
			return Position{}, &MoveError{Index: i, Column: col, Err: ErrDecided}
		}
		p.Play(col)
	}
	return p, nil
}

// Ply returns the number of stones on the board.
func (p Position) Ply() int {
	return p.moves
}

// CanPlay reports whether col is on the board and not full.
func (p Position) CanPlay(col int) bool {
	if col < 0 || col >= Width {
		return false
	}
	return p.mask&topMaskCol(col) == 0
}

// IsWinningMove reports whether the side to move completes four by playing col.
// col must be playable.
func (p Position) IsWinningMove(col int) bool {
	if col < 0 || col >= Width {
		return false
	}
	return p.winningPositions()&p.possible()&columnMask(col) != 0
}

// CanWinNext reports whether the side to move has any immediately winning move.
func (p Position) CanWinNext() bool {
	return p.winningPositions()&p.possible() != 0
}

// Play drops a stone for the side to move into col. col must be playable.
func (p *Position) Play(col int) {
	p.playMove((p.mask + bottomMaskCol(col)) & columnMask(col))
}

// Played returns a copy of p with a stone in col, or false if col cannot be played.
func (p Position) Played(col int) (Position, bool) {
	if !p.CanPlay(col) {
		return p, false
	}
	p.Play(col)
	return p, true
}

func (p *Position) playMove(move uint64) {
	p.current ^= p.mask
	p.mask |= move
	p.moves++
}

// Key uniquely identifies the position.
func (p Position) Key() uint64 {
	return p.current + p.mask
}

// BookKey identifies the position up to left-right mirroring.
func (p Position) BookKey() uint64 {
	key := p.Key()
	var current, mask uint64
	for col := 0; col < Width; col++ {
		mirror := Width - 1 - col
		shift := (Height + 1) * col
		mshift := (Height + 1) * mirror
		current |= ((p.current >> shift) & colBits) << mshift
		mask |= ((p.mask >> shift) & colBits) << mshift
	}
	if mirrored := current + mask; mirrored < key {
		return mirrored
	}
	return key
}

const colBits = (1 << (Height + 1)) - 1

func (p Position) possible() uint64 {
	return (p.mask + bottomMask) & boardMask
}

// possibleNonLosingMoves excludes moves that hand the opponent an immediate
// win. It returns 0 when the opponent has two open threats.
func (p Position) possibleNonLosingMoves() uint64 {
	possible := p.possible()
	opponentWin := p.opponentWinningPositions()
	forced := possible & opponentWin
	if forced != 0 {
		if forced&(forced-1) != 0 {
			return 0
		}
		possible = forced
	}
	return possible &^ (opponentWin >> 1)
}

func (p Position) winningPositions() uint64 {
	return computeWinningPositions(p.current, p.mask)
}

func (p Position) opponentWinningPositions() uint64 {
	return computeWinningPositions(p.current^p.mask, p.mask)
}

// moveScore counts the open threats the side to move would hold after move.
func (p Position) moveScore(move uint64) int {
	return bits.OnesCount64(computeWinningPositions(p.current|move, p.mask))
}

// computeWinningPositions returns every empty cell that would complete four
// for the stones in position, reachable or not.
func computeWinningPositions(position, mask uint64) uint64 {
	// vertical
	r := (position << 1) & (position << 2) & (position << 3)

	// horizontal and both diagonals
	for _, d := range [3]uint{Height + 1, Height, Height + 2} {
		p := (position << d) & (position << (2 * d))
		r |= p & (position << (3 * d))
		r |= p & (position >> d)
		p = (position >> d) & (position >> (2 * d))
		r |= p & (position << d)
		r |= p & (position >> (3 * d))
	}

	return r & (boardMask ^ mask)
}

func makeBottomMask() uint64 {
	var m uint64
	for col := 0; col < Width; col++ {
		m |= bottomMaskCol(col)
	}
	return m
}

func topMaskCol(col int) uint64 {
	return uint64(1) << (Height - 1 + col*(Height+1))
}

func bottomMaskCol(col int) uint64 {
	return uint64(1) << (col * (Height + 1))
}

func columnMask(col int) uint64 {
	return ((uint64(1) << Height) - 1) << (col * (Height + 1))
}
