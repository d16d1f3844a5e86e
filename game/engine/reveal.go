package engine

import "github.com/zyedidia/generic/mapset"

// RevealOutcome lists the cells a single reveal uncovered, in reveal order.
// Positions are unique.
type RevealOutcome struct {
	Revealed []Position `json:"revealed"`
	HitMine  bool       `json:"hit_mine"`
}

// Empty reports whether the reveal was a no-op
func (o RevealOutcome) Empty() bool {
	return len(o.Revealed) == 0
}

// Reveal uncovers the cell at pos and cascades through zero-count cells.
//
// Out-of-bounds, flagged and already revealed targets are no-ops. A mine is
// revealed without cascade. The cascade uses an explicit stack; numbered
// cells are revealed but do not propagate, and letter cells are never
// uncovered by a cascade, only by revealing them directly.
func Reveal(board *Board, pos Position) RevealOutcome {
	var outcome RevealOutcome
	cell := board.Cell(pos)
	if cell == nil || cell.State != Hidden {
		return outcome
	}

	cell.State = Revealed
	outcome.Revealed = append(outcome.Revealed, pos)
	if cell.Mine {
		outcome.HitMine = true
		return outcome
	}
	if cell.AdjacentMines > 0 {
		return outcome
	}

	visited := mapset.New[Position]()
	visited.Put(pos)
	stack := []Position{pos}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, n := range board.Neighbors(current) {
			if visited.Has(n) {
				continue
			}
			visited.Put(n)

			next := board.Cell(n)
			if next.State != Hidden || next.Mine || next.HasLetter() {
				continue
			}
			next.State = Revealed
			outcome.Revealed = append(outcome.Revealed, n)
			if next.AdjacentMines == 0 {
				stack = append(stack, n)
			}
		}
	}
	return outcome
}
