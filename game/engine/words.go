package engine

import "github.com/zyedidia/generic/mapset"

// UpdateWords marks words complete once all of their cells are revealed and
// returns the ones completed by this call. Only words touching a newly
// revealed position are checked; a nil slice checks every word.
func UpdateWords(board *Board, newlyRevealed []Position) []*Word {
	var touched mapset.Set[Position]
	if newlyRevealed != nil {
		touched = mapset.New[Position]()
		for _, p := range newlyRevealed {
			touched.Put(p)
		}
	}

	var completed []*Word
	for _, word := range board.Words {
		if word.Completed {
			continue
		}
		if newlyRevealed != nil && !touchesAny(word, touched) {
			continue
		}
		if allRevealed(board, word) {
			word.Completed = true
			completed = append(completed, word)
		}
	}
	return completed
}

func touchesAny(word *Word, set mapset.Set[Position]) bool {
	for _, p := range word.Positions {
		if set.Has(p) {
			return true
		}
	}
	return false
}

func allRevealed(board *Board, word *Word) bool {
	for _, p := range word.Positions {
		cell := board.Cell(p)
		if cell == nil || cell.State != Revealed {
			return false
		}
	}
	return true
}
