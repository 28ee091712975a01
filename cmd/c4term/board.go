package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/freeeve/connect4/internal/game"
)

// boardView draws a game view as a grid of discs with the column keys under it.
type boardView struct {
	*tview.Box
	view *game.View
}

func newBoardView() *boardView {
	b := &boardView{Box: tview.NewBox()}
	b.SetBorder(true).SetTitle(" Connect Four ").SetTitleAlign(tview.AlignLeft)
	b.SetDrawFunc(b.draw)
	return b
}

var (
	frameStyle  = tcell.StyleDefault.Background(tcell.ColorNavy)
	redStyle    = frameStyle.Foreground(tcell.ColorRed)
	yellowStyle = frameStyle.Foreground(tcell.ColorYellow)
	emptyStyle  = frameStyle.Foreground(tcell.ColorWhite)
	labelStyle  = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)

// Each cell is three characters wide so the discs look round.
const cellWidth = 3

func (b *boardView) draw(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	ix, iy, iw, ih := b.GetInnerRect()
	if b.view == nil {
		return ix, iy, iw, ih
	}
	boardW := game.Columns*cellWidth + 1
	left := ix + (iw-boardW)/2
	if left < ix {
		left = ix
	}
	top := iy

	for row := 0; row < game.Rows; row++ {
		for col := 0; col < game.Columns; col++ {
			cx := left + col*cellWidth
			screen.SetContent(cx, top+row, ' ', nil, frameStyle)
			disc, style := '○', emptyStyle
			switch b.view.Board[col][row] {
			case game.Red:
				disc, style = '●', redStyle
			case game.Yellow:
				disc, style = '●', yellowStyle
			}
			screen.SetContent(cx+1, top+row, disc, nil, style)
			screen.SetContent(cx+2, top+row, ' ', nil, frameStyle)
		}
		screen.SetContent(left+boardW-1, top+row, ' ', nil, frameStyle)
	}

	labels := top + game.Rows
	for col := 0; col < game.Columns; col++ {
		screen.SetContent(left+col*cellWidth+1, labels, rune('1'+col), nil, labelStyle)
	}
	if b.view.ShowScores {
		for col, s := range b.view.ScoreText() {
			if s == "None" {
				s = "-"
			}
			tview.Print(screen, s, left+col*cellWidth, labels+1, cellWidth, tview.AlignCenter, tcell.ColorSilver)
		}
	}
	return ix, iy, iw, ih
}
