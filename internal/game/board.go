package game

// Cell is the content of one board square.
type Cell uint8

const (
	Empty Cell = iota
	Red        // colorA, stones played on even plies
	Yellow     // colorB, stones played on odd plies
)

// Class returns the CSS class used to render the cell.
func (c Cell) Class() string {
	switch c {
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	default:
		return "empty"
	}
}

func (c Cell) String() string {
	switch c {
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	default:
		return "empty"
	}
}

// Color returns the stone color of a side.
func (s Side) Color() Cell {
	if s == SideSecond {
		return Yellow
	}
	return Red
}

// Board is a render-ready grid indexed [column][row]. Row 0 is the top row
// and row Rows-1 the bottom one.
type Board [Columns][Rows]Cell

// Project builds the board for a move log. Stone colors follow the global
// ply parity; each column stacks from the bottom in play order.
func Project(m MoveLog) Board {
	var b Board
	for c := 0; c < Columns; c++ {
		stack := make([]Cell, 0, Rows)
		for ply, col := range m {
			if col != c {
				continue
			}
			if ply%2 == 0 {
				stack = append(stack, Red)
			} else {
				stack = append(stack, Yellow)
			}
		}
		// earliest stone at the bottom, empties above
		for i, cell := range stack {
			if i >= Rows {
				break
			}
			b[c][Rows-1-i] = cell
		}
	}
	return b
}

// Stack returns the stones of a column from bottom to top.
func (b Board) Stack(col int) []Cell {
	var out []Cell
	for row := Rows - 1; row >= 0; row-- {
		if b[col][row] == Empty {
			break
		}
		out = append(out, b[col][row])
	}
	return out
}
