package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevealMine(t *testing.T) {
	board := catBoard(t)
	outcome := Reveal(board, Position{Row: 0, Col: 0})
	assert.True(t, outcome.HitMine)
	assert.Equal(t, []Position{{Row: 0, Col: 0}}, outcome.Revealed)
	assert.Equal(t, Hidden, board.Cell(Position{Row: 0, Col: 1}).State, "mines never cascade")
}

func TestRevealNumberedCellDoesNotPropagate(t *testing.T) {
	board := catBoard(t)
	outcome := Reveal(board, Position{Row: 1, Col: 1})
	assert.False(t, outcome.HitMine)
	assert.Equal(t, []Position{{Row: 1, Col: 1}}, outcome.Revealed)
}

func TestRevealIsIdempotent(t *testing.T) {
	board := catBoard(t)
	first := Reveal(board, Position{Row: 4, Col: 4})
	assert.NotEmpty(t, first.Revealed)

	second := Reveal(board, Position{Row: 4, Col: 4})
	assert.True(t, second.Empty())
	assert.False(t, second.HitMine)
}

func TestRevealCascadeStopsAtMinesAndLetters(t *testing.T) {
	board := catBoard(t)
	outcome := Reveal(board, Position{Row: 4, Col: 4})

	seen := map[Position]bool{}
	for _, p := range outcome.Revealed {
		assert.False(t, seen[p], "position %s revealed twice", p)
		seen[p] = true
		cell := board.Cell(p)
		assert.False(t, cell.Mine, "cascade revealed mine at %s", p)
		assert.False(t, cell.HasLetter(), "cascade revealed letter at %s", p)
	}

	// 25 cells minus one mine and three letters
	assert.Len(t, outcome.Revealed, 21)
	assert.Equal(t, Hidden, board.Cell(Position{Row: 0, Col: 0}).State)
	assert.Equal(t, 3, board.RemainingSafeCells())
}

func TestRevealLetterWithZeroCountPropagates(t *testing.T) {
	board := catBoard(t)
	outcome := Reveal(board, Position{Row: 2, Col: 0})
	assert.Equal(t, Position{Row: 2, Col: 0}, outcome.Revealed[0])
	assert.Len(t, outcome.Revealed, 22)
	assert.Equal(t, Hidden, board.Cell(Position{Row: 2, Col: 1}).State)
}

func TestRevealSkipsFlaggedAndOutOfBounds(t *testing.T) {
	board := catBoard(t)
	board.Cell(Position{Row: 3, Col: 3}).State = Flagged

	assert.True(t, Reveal(board, Position{Row: 3, Col: 3}).Empty())
	assert.True(t, Reveal(board, Position{Row: -1, Col: 0}).Empty())
	assert.True(t, Reveal(board, Position{Row: 0, Col: 5}).Empty())

	Reveal(board, Position{Row: 4, Col: 4})
	assert.Equal(t, Flagged, board.Cell(Position{Row: 3, Col: 3}).State, "cascade leaves flags alone")
}

func TestRevealLargeOpenBoard(t *testing.T) {
	board := NewBoard(MaxGridSize, MaxGridSize)
	_, err := board.PlaceWord("END", Position{Row: 0, Col: 0}, Right)
	require.NoError(t, err)
	board.ComputeAdjacency()

	outcome := Reveal(board, Position{Row: MaxGridSize - 1, Col: MaxGridSize - 1})
	assert.Len(t, outcome.Revealed, MaxGridSize*MaxGridSize-3)
}

func TestUpdateWords(t *testing.T) {
	board := NewBoard(5, 5)
	cat, err := board.PlaceWord("CAT", Position{Row: 0, Col: 0}, Right)
	require.NoError(t, err)
	arm, err := board.PlaceWord("ARM", Position{Row: 0, Col: 1}, Down)
	require.NoError(t, err)

	reveal := func(ps ...Position) []Position {
		for _, p := range ps {
			board.Cell(p).State = Revealed
		}
		return ps
	}

	assert.Empty(t, UpdateWords(board, reveal(Position{Row: 0, Col: 0}, Position{Row: 0, Col: 1})))

	completed := UpdateWords(board, reveal(Position{Row: 0, Col: 2}))
	require.Len(t, completed, 1)
	assert.Same(t, cat, completed[0])
	assert.False(t, arm.Completed, "crossing word needs its own cells")

	// no re-completion
	assert.Empty(t, UpdateWords(board, []Position{{Row: 0, Col: 2}}))

	completed = UpdateWords(board, reveal(Position{Row: 1, Col: 1}, Position{Row: 2, Col: 1}))
	require.Len(t, completed, 1)
	assert.Equal(t, "ARM", completed[0].Text)
	assert.Equal(t, 2, board.CompletedWords())
}

func TestScoreKeeper(t *testing.T) {
	var s ScoreKeeper
	s.OnReveal(RevealOutcome{}, nil)
	assert.Equal(t, 0, s.StepsUsed)

	s.OnReveal(RevealOutcome{Revealed: []Position{{}}, HitMine: true}, nil)
	assert.Equal(t, -MinePenalty, s.Score)
	assert.Equal(t, 1, s.MinesStepped)

	s.OnReveal(RevealOutcome{Revealed: []Position{{Row: 1}}}, []*Word{{Text: "TREE"}, {Text: "SUN"}})
	assert.Equal(t, 70-MinePenalty, s.Score)
	assert.Equal(t, "TREE", s.LongestWord)
	assert.Equal(t, 2, s.WordsRevealed)
	assert.Equal(t, 2, s.StepsUsed)

	assert.Equal(t, 65, s.Finalize(ModeClassic, 0.5))
	assert.Equal(t, 97, s.Finalize(ModeTimed, 0.5))
	assert.Equal(t, 130, s.Finalize(ModeTimed, 4))
	assert.Equal(t, 65, s.Finalize(ModeTimed, -1))

	negative := ScoreKeeper{Score: -10}
	assert.Equal(t, 0, negative.Finalize(ModeTimed, 1))
}

func TestValidatePreset(t *testing.T) {
	valid := &Preset{Name: "quick", Difficulty: Easy, Mode: ModeTimed, TimeLimitSeconds: 60}
	assert.NoError(t, ValidatePreset(valid))
	assert.Equal(t, int64(60), int64(valid.Options(nil).TimeBudget.Seconds()))

	tests := []struct {
		name   string
		preset *Preset
	}{
		{"nil", nil},
		{"no name", &Preset{Difficulty: Easy}},
		{"bad mode", &Preset{Name: "x", Mode: "sprint"}},
		{"bad difficulty", &Preset{Name: "x", Difficulty: Difficulty(7)}},
		{"negative limit", &Preset{Name: "x", Mode: ModeTimed, TimeLimitSeconds: -1}},
		{"limit on classic", &Preset{Name: "x", Mode: ModeClassic, TimeLimitSeconds: 30}},
		{"escaping word list", &Preset{Name: "x", WordList: "../secrets.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidatePreset(tt.preset), ErrConfiguration)
		})
	}
}
