package game

import "github.com/freeeve/connect4/internal/engine"

// BestMove returns the column with the highest score, or false when no column
// is playable. Ties go to the rightmost column.
func BestMove(scores engine.Scores) (int, bool) {
	best, found := 0, false
	for col, s := range scores {
		if !s.Valid {
			continue
		}
		if !found || s.Value >= scores[best].Value {
			best, found = col, true
		}
	}
	return best, found
}
