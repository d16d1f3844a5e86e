package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gookit/color"

	"github.com/wricardo/wordweeper/game/engine"
)

var (
	ColorHidden  = color.Style{color.FgGray}
	ColorFlag    = color.Style{color.FgYellow, color.OpBold}
	ColorMine    = color.Style{color.FgRed, color.OpBold}
	ColorLetter  = color.Style{color.FgGreen, color.OpBold}
	ColorEmpty   = color.Style{color.FgDefault}
	ColorIndex   = color.Style{color.FgCyan}
	ColorTitle   = color.Style{color.FgMagenta, color.OpBold}
	ColorDenied  = color.Style{color.FgRed, color.OpBold}
	ColorSuccess = color.Style{color.FgGreen, color.OpBold}

	numberColors = []color.Style{
		{color.FgBlue},
		{color.FgGreen},
		{color.FgRed},
		{color.FgMagenta},
		{color.FgYellow},
		{color.FgCyan},
		{color.FgWhite},
		{color.FgGray},
	}
)

// cellStyle picks the colour for one cell view
func cellStyle(v engine.CellView) color.Style {
	switch {
	case v.State == engine.Hidden:
		return ColorHidden
	case v.State == engine.Flagged:
		return ColorFlag
	case v.Mine:
		return ColorMine
	case v.Letter != "":
		return ColorLetter
	case v.AdjacentMines > 0 && v.AdjacentMines <= len(numberColors):
		return numberColors[v.AdjacentMines-1]
	}
	return ColorEmpty
}

func paint(style color.Style, s string, colour bool) string {
	if !colour {
		return s
	}
	return style.Sprint(s)
}

func cellText(s string) string {
	if len(s) >= 2 {
		return s + " "
	}
	return " " + s + " "
}

// RenderBoard draws the grid with row and column indices. Without colour the
// output matches BoardView.Text.
func RenderBoard(v engine.BoardView, colour bool) string {
	var sb strings.Builder
	sb.WriteString("    ")
	for c := 0; c < v.Cols; c++ {
		sb.WriteString(paint(ColorIndex, cellText(strconv.Itoa(c)), colour))
	}
	sb.WriteString("\n")
	for r, row := range v.Cells {
		sb.WriteString(paint(ColorIndex, cellText(strconv.Itoa(r)), colour))
		sb.WriteString(" ")
		for _, cell := range row {
			sb.WriteString(paint(cellStyle(cell), cellText(cell.Symbol()), colour))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderStatus summarises score, mines, steps and word progress
func RenderStatus(v engine.BoardView, colour bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s | Score %d | Mines %d/%d | Steps %d",
		paint(ColorTitle, strings.ToUpper(v.Difficulty.String()), colour), v.Mode,
		v.Score, v.MinesStepped, v.AllowedMineSteps, v.StepsUsed)
	if v.RemainingSeconds != nil {
		fmt.Fprintf(&sb, " | %.0fs left", *v.RemainingSeconds)
	}
	sb.WriteString("\nWords: ")
	for i, w := range v.Words {
		if i > 0 {
			sb.WriteString(" ")
		}
		if w.Completed {
			sb.WriteString(paint(ColorLetter, w.Text, colour))
		} else {
			sb.WriteString(strings.Repeat("_", w.Length))
		}
	}
	fmt.Fprintf(&sb, " (%d/%d)\n", v.WordsCompleted, len(v.Words))
	return sb.String()
}

// RenderResult describes a finished game
func RenderResult(r *engine.SessionResult, colour bool) string {
	var headline string
	switch {
	case r.Won:
		headline = paint(ColorSuccess, "You won!", colour)
	case r.Abandoned:
		headline = paint(ColorDenied, "Game abandoned.", colour)
	case r.TimedOut:
		headline = paint(ColorDenied, "Time is up. Game over.", colour)
	default:
		headline = paint(ColorDenied, "Boom. Game over.", colour)
	}

	var sb strings.Builder
	sb.WriteString(headline)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Final score: %d\n", r.Score)
	fmt.Fprintf(&sb, "Words revealed: %d", r.WordsRevealed)
	if r.LongestWordRevealed != "" {
		fmt.Fprintf(&sb, " (longest %s)", r.LongestWordRevealed)
	}
	fmt.Fprintf(&sb, "\nMines stepped: %d\nSteps used: %d\n", r.MinesStepped, r.StepsUsed)
	return sb.String()
}
