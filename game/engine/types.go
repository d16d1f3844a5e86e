package engine

import (
	"fmt"
	"strings"
)

// CellState represents the visibility of a grid cell
type CellState string

const (
	Hidden   CellState = "hidden"
	Revealed CellState = "revealed"
	Flagged  CellState = "flagged"

	// Validation constants
	MinGridSize = 3
	MaxGridSize = 32
)

// Position represents row,col coordinates (zero-based)
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Cell represents a single grid cell. A cell is either a mine or may carry
// one letter of a placed word, never both.
type Cell struct {
	Position      Position  `json:"position"`
	Mine          bool      `json:"mine,omitempty"`
	Letter        string    `json:"letter,omitempty"`
	AdjacentMines int       `json:"adjacent_mines"`
	State         CellState `json:"state"`
}

// HasLetter reports whether the cell belongs to a placed word
func (c *Cell) HasLetter() bool {
	return c.Letter != ""
}

// Direction is one of the 8 straight lines a word can follow
type Direction string

const (
	Right     Direction = "right"
	Left      Direction = "left"
	Down      Direction = "down"
	Up        Direction = "up"
	DownRight Direction = "down_right"
	DownLeft  Direction = "down_left"
	UpRight   Direction = "up_right"
	UpLeft    Direction = "up_left"
)

// Directions lists every placement direction
var Directions = []Direction{Right, Left, Down, Up, DownRight, DownLeft, UpRight, UpLeft}

// Delta returns the row and column step for the direction
func (d Direction) Delta() (int, int) {
	switch d {
	case Right:
		return 0, 1
	case Left:
		return 0, -1
	case Down:
		return 1, 0
	case Up:
		return -1, 0
	case DownRight:
		return 1, 1
	case DownLeft:
		return 1, -1
	case UpRight:
		return -1, 1
	case UpLeft:
		return -1, -1
	}
	return 0, 0
}

// Valid reports whether d is one of Directions
func (d Direction) Valid() bool {
	dr, dc := d.Delta()
	return dr != 0 || dc != 0
}

// Word is a placed target word
type Word struct {
	Text      string     `json:"text"`
	Positions []Position `json:"positions"`
	Direction Direction  `json:"direction"`
	Completed bool       `json:"completed"`
}

// Board is the grid of cells plus the words placed on it
type Board struct {
	Rows      int      `json:"rows"`
	Cols      int      `json:"cols"`
	Grid      [][]Cell `json:"grid"`
	Words     []*Word  `json:"words"`
	MineCount int      `json:"mine_count"`
}

// NewBoard allocates an empty board with every cell hidden
func NewBoard(rows, cols int) *Board {
	grid := make([][]Cell, rows)
	for r := range grid {
		grid[r] = make([]Cell, cols)
		for c := range grid[r] {
			grid[r][c] = Cell{Position: Position{Row: r, Col: c}, State: Hidden}
		}
	}
	return &Board{Rows: rows, Cols: cols, Grid: grid}
}

// InBounds reports whether p lies on the board
func (b *Board) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < b.Rows && p.Col >= 0 && p.Col < b.Cols
}

// Cell returns the cell at p, or nil when p is out of bounds
func (b *Board) Cell(p Position) *Cell {
	if !b.InBounds(p) {
		return nil
	}
	return &b.Grid[p.Row][p.Col]
}

// Neighbors returns the in-bounds positions of the 8-neighbourhood of p
func (b *Board) Neighbors(p Position) []Position {
	neighbors := make([]Position, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Position{Row: p.Row + dr, Col: p.Col + dc}
			if b.InBounds(n) {
				neighbors = append(neighbors, n)
			}
		}
	}
	return neighbors
}

// wordPositions lays text out from start along dir
func wordPositions(text string, start Position, dir Direction) []Position {
	dr, dc := dir.Delta()
	positions := make([]Position, len(text))
	for i := range text {
		positions[i] = Position{Row: start.Row + i*dr, Col: start.Col + i*dc}
	}
	return positions
}

// CanPlaceWord checks whether text fits from start along dir: every cell must
// be in bounds and not a mine, any existing letter must match, and at least
// one cell must be new so the word is not swallowed by another one.
func (b *Board) CanPlaceWord(text string, start Position, dir Direction) bool {
	if text == "" || !dir.Valid() {
		return false
	}
	fresh := false
	for i, p := range wordPositions(text, start, dir) {
		cell := b.Cell(p)
		if cell == nil || cell.Mine {
			return false
		}
		if cell.HasLetter() {
			if cell.Letter != text[i:i+1] {
				return false
			}
			continue
		}
		fresh = true
	}
	return fresh
}

// PlaceWord writes text onto the board and records it as a Word
func (b *Board) PlaceWord(text string, start Position, dir Direction) (*Word, error) {
	text = strings.ToUpper(text)
	if !b.CanPlaceWord(text, start, dir) {
		return nil, fmt.Errorf("%w: word %q at %s going %s", ErrInvalidPlacement, text, start, dir)
	}
	positions := wordPositions(text, start, dir)
	for i, p := range positions {
		b.Grid[p.Row][p.Col].Letter = text[i : i+1]
	}
	word := &Word{Text: text, Positions: positions, Direction: dir}
	b.Words = append(b.Words, word)
	return word, nil
}

// PlaceMine puts a mine on an empty cell
func (b *Board) PlaceMine(p Position) error {
	cell := b.Cell(p)
	if cell == nil {
		return fmt.Errorf("%w: mine at %s is out of bounds", ErrInvalidPlacement, p)
	}
	if cell.Mine || cell.HasLetter() {
		return fmt.Errorf("%w: cell %s is occupied", ErrInvalidPlacement, p)
	}
	cell.Mine = true
	b.MineCount++
	return nil
}

// ComputeAdjacency fills AdjacentMines for every cell
func (b *Board) ComputeAdjacency() {
	for r := range b.Grid {
		for c := range b.Grid[r] {
			count := 0
			for _, n := range b.Neighbors(Position{Row: r, Col: c}) {
				if b.Grid[n.Row][n.Col].Mine {
					count++
				}
			}
			b.Grid[r][c].AdjacentMines = count
		}
	}
}

// LetterCells counts cells that belong to at least one word
func (b *Board) LetterCells() int {
	count := 0
	for r := range b.Grid {
		for c := range b.Grid[r] {
			if b.Grid[r][c].HasLetter() {
				count++
			}
		}
	}
	return count
}

// RemainingSafeCells counts non-mine cells that are not yet revealed
func (b *Board) RemainingSafeCells() int {
	count := 0
	for r := range b.Grid {
		for c := range b.Grid[r] {
			cell := &b.Grid[r][c]
			if !cell.Mine && cell.State != Revealed {
				count++
			}
		}
	}
	return count
}

// CompletedWords counts words whose cells are all revealed
func (b *Board) CompletedWords() int {
	count := 0
	for _, w := range b.Words {
		if w.Completed {
			count++
		}
	}
	return count
}
