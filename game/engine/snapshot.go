package engine

import (
	"strconv"
	"strings"
)

// CellView is what a player may see of a cell. Hidden cells expose only
// their state.
type CellView struct {
	State         CellState `json:"state"`
	Letter        string    `json:"letter,omitempty"`
	AdjacentMines int       `json:"adjacent_mines,omitempty"`
	Mine          bool      `json:"mine,omitempty"`
}

// WordView exposes a word's length, and its text once completed
type WordView struct {
	Length    int        `json:"length"`
	Completed bool       `json:"completed"`
	Text      string     `json:"text,omitempty"`
	Positions []Position `json:"positions,omitempty"`
}

// BoardView is a rendering snapshot that never leaks hidden content
type BoardView struct {
	Rows             int          `json:"rows"`
	Cols             int          `json:"cols"`
	Cells            [][]CellView `json:"cells"`
	Words            []WordView   `json:"words"`
	WordsCompleted   int          `json:"words_completed"`
	State            State        `json:"state"`
	Mode             Mode         `json:"mode"`
	Difficulty       Difficulty   `json:"difficulty"`
	Score            int          `json:"score"`
	MinesStepped     int          `json:"mines_stepped"`
	AllowedMineSteps int          `json:"allowed_mine_steps"`
	StepsUsed        int          `json:"steps_used"`
	RemainingSeconds *float64     `json:"remaining_seconds,omitempty"`
}

// View returns the player-visible snapshot of the game
func (g *Game) View() BoardView {
	b := g.Board
	cells := make([][]CellView, b.Rows)
	for r := range cells {
		cells[r] = make([]CellView, b.Cols)
		for c := range cells[r] {
			cells[r][c] = viewCell(&b.Grid[r][c])
		}
	}

	words := make([]WordView, 0, len(b.Words))
	for _, w := range b.Words {
		wv := WordView{Length: len(w.Text), Completed: w.Completed}
		if w.Completed {
			wv.Text = w.Text
			wv.Positions = w.Positions
		}
		words = append(words, wv)
	}

	score := g.Totals.Score
	if g.Result != nil {
		score = g.Result.Score
	}
	view := BoardView{
		Rows:             b.Rows,
		Cols:             b.Cols,
		Cells:            cells,
		Words:            words,
		WordsCompleted:   b.CompletedWords(),
		State:            g.State,
		Mode:             g.Mode,
		Difficulty:       g.Difficulty,
		Score:            score,
		MinesStepped:     g.Totals.MinesStepped,
		AllowedMineSteps: g.AllowedMineSteps,
		StepsUsed:        g.Totals.StepsUsed,
	}
	if g.Mode == ModeTimed {
		remaining := g.RemainingTime().Seconds()
		view.RemainingSeconds = &remaining
	}
	return view
}

func viewCell(cell *Cell) CellView {
	view := CellView{State: cell.State}
	if cell.State != Revealed {
		return view
	}
	switch {
	case cell.Mine:
		view.Mine = true
	case cell.HasLetter():
		view.Letter = cell.Letter
	default:
		view.AdjacentMines = cell.AdjacentMines
	}
	return view
}

// Symbol returns the one-character rendering of a cell view
func (v CellView) Symbol() string {
	switch {
	case v.State == Hidden:
		return "#"
	case v.State == Flagged:
		return "F"
	case v.Mine:
		return "*"
	case v.Letter != "":
		return v.Letter
	case v.AdjacentMines > 0:
		return strconv.Itoa(v.AdjacentMines)
	}
	return "."
}

// Text renders the grid as plain text with row and column indices
func (v BoardView) Text() string {
	var sb strings.Builder
	sb.WriteString("    ")
	for c := 0; c < v.Cols; c++ {
		sb.WriteString(pad(strconv.Itoa(c)))
	}
	sb.WriteString("\n")
	for r, row := range v.Cells {
		sb.WriteString(pad(strconv.Itoa(r)) + " ")
		for _, cell := range row {
			sb.WriteString(pad(cell.Symbol()))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func pad(s string) string {
	if len(s) >= 2 {
		return s + " "
	}
	return " " + s + " "
}
