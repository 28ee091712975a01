package httpapi

import (
	"strconv"

	"github.com/freeeve/connect4/internal/game"
)

// GameResponse is the JSON rendition of a game view.
type GameResponse struct {
	Moves      string                          `json:"moves"`             // encoded move log
	Board      [game.Columns][game.Rows]string `json:"board"`             // [column][row], row 0 on top
	Scores     [game.Columns]*int              `json:"scores"`            // null for unplayable columns
	ScoreText  [game.Columns]string            `json:"score_text"`        // "None" for unplayable columns
	Status     string                          `json:"status,omitempty"`  // winning, losing, drawing
	MovesLeft  int                             `json:"moves_left"`        // turns until the outcome
	Message    string                          `json:"message"`
	Notice     string                          `json:"notice,omitempty"`
	Next       string                          `json:"next"`              // path that continues the session
	ToMove     string                          `json:"to_move,omitempty"` // first or second, empty when final
	ShowScores bool                            `json:"show_scores"`
	Final      bool                            `json:"final"`
}

// ToGameResponse converts a view to its JSON form.
func ToGameResponse(v *game.View) *GameResponse {
	if v == nil {
		return nil
	}
	resp := &GameResponse{
		Moves:      v.Moves.String(),
		ScoreText:  v.ScoreText(),
		MovesLeft:  v.Status.MovesLeft,
		Message:    v.Message,
		Notice:     v.Notice,
		Next:       v.Path,
		ShowScores: v.ShowScores,
		Final:      v.Final,
	}
	for col := range v.Board {
		for row, cell := range v.Board[col] {
			resp.Board[col][row] = cell.Class()
		}
	}
	for col, s := range v.Scores {
		if s.Valid {
			val := s.Value
			resp.Scores[col] = &val
		}
	}
	if v.Final || v.Moves.Len() > 0 {
		resp.Status = v.Status.Outcome.String()
	}
	if !v.Final {
		resp.ToMove = v.ToMove().String()
	}
	return resp
}

// column is one board column prepared for the HTML template.
type column struct {
	Number int      // 1-based, for labels
	Href   string   // empty when the column cannot be played
	Cells  []string // CSS classes, top row first
	Score  string
}

// pageData feeds the page and board templates.
type pageData struct {
	*game.View
	Columns    []column
	ToggleHref string
}

func newPageData(v *game.View) pageData {
	text := v.ScoreText()
	base := game.GamePath(v.Moves)
	show := showParam(v.ShowScores)

	cols := make([]column, game.Columns)
	for c := range cols {
		cells := make([]string, game.Rows)
		for row, cell := range v.Board[c] {
			cells[row] = cell.Class()
		}
		cols[c] = column{
			Number: c + 1,
			Cells:  cells,
			Score:  text[c],
		}
		if !v.Final && v.Board[c][0] == game.Empty {
			cols[c].Href = base + "?col=" + strconv.Itoa(c) + "&show=" + show
		}
	}
	return pageData{
		View:       v,
		Columns:    cols,
		ToggleHref: base + "?show=" + showParam(!v.ShowScores),
	}
}

func showParam(show bool) string {
	if show {
		return "1"
	}
	return "0"
}
