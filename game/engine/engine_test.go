package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catBoard builds a 5x5 board with CAT on row 2 cols 0-2 and a mine at (0,0)
func catBoard(t *testing.T) *Board {
	t.Helper()
	board := NewBoard(5, 5)
	_, err := board.PlaceWord("CAT", Position{Row: 2, Col: 0}, Right)
	require.NoError(t, err)
	require.NoError(t, board.PlaceMine(Position{Row: 0, Col: 0}))
	board.ComputeAdjacency()
	return board
}

func newCatGame(t *testing.T, mode Mode, clock Clock) *Game {
	t.Helper()
	game, err := NewGame(catBoard(t), GameOptions{
		Difficulty:       Easy,
		Mode:             mode,
		AllowedMineSteps: 1,
		TimeBudget:       100 * time.Second,
		Clock:            clock,
	})
	require.NoError(t, err)
	return game
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestCatWordCompletesOnThirdReveal(t *testing.T) {
	game := newCatGame(t, ModeClassic, nil)

	first, err := game.ApplyReveal(Position{Row: 2, Col: 0})
	require.NoError(t, err)
	assert.Empty(t, first.CompletedWords)
	assert.Equal(t, StateInProgress, first.State)

	second, err := game.ApplyReveal(Position{Row: 2, Col: 1})
	require.NoError(t, err)
	assert.Empty(t, second.CompletedWords)

	third, err := game.ApplyReveal(Position{Row: 2, Col: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"CAT"}, third.CompletedWords)
	assert.GreaterOrEqual(t, third.Score, 30)

	// every safe cell is now revealed
	assert.Equal(t, StateWon, third.State)
	require.NotNil(t, third.Result)
	assert.True(t, third.Result.Won)
	assert.Equal(t, 1, third.Result.WordsRevealed)
	assert.Equal(t, "CAT", third.Result.LongestWordRevealed)
	assert.Equal(t, 3, third.Result.StepsUsed)
	assert.Equal(t, 1, third.Result.GamesPlayed)
	assert.NotEmpty(t, third.Result.ID)
}

func TestCatMineHitLoses(t *testing.T) {
	game := newCatGame(t, ModeClassic, nil)

	report, err := game.ApplyReveal(Position{Row: 0, Col: 0})
	require.NoError(t, err)
	assert.True(t, report.Outcome.HitMine)
	assert.Equal(t, 1, report.MinesStepped)
	assert.Equal(t, StateLost, report.State)
	require.NotNil(t, report.Result)
	assert.False(t, report.Result.Won)
	assert.Equal(t, 0, report.Result.Score, "final score is clamped at zero")

	_, err = game.ApplyReveal(Position{Row: 4, Col: 4})
	assert.True(t, errors.Is(err, ErrSessionClosed))
}

func TestLossNeedsAllAllowedSteps(t *testing.T) {
	board := NewBoard(5, 5)
	_, err := board.PlaceWord("DOG", Position{Row: 4, Col: 0}, Right)
	require.NoError(t, err)
	require.NoError(t, board.PlaceMine(Position{Row: 0, Col: 0}))
	require.NoError(t, board.PlaceMine(Position{Row: 0, Col: 4}))
	board.ComputeAdjacency()

	game, err := NewGame(board, GameOptions{Difficulty: Easy, Mode: ModeClassic, AllowedMineSteps: 2})
	require.NoError(t, err)

	report, err := game.ApplyReveal(Position{Row: 0, Col: 0})
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, report.State)
	assert.Equal(t, -MinePenalty, report.Score)

	report, err = game.ApplyReveal(Position{Row: 0, Col: 4})
	require.NoError(t, err)
	assert.Equal(t, StateLost, report.State)
	assert.Equal(t, 2, report.Result.MinesStepped)
}

func TestWonExactlyOnce(t *testing.T) {
	game := newCatGame(t, ModeClassic, nil)
	var results int
	for _, p := range []Position{{Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}} {
		report, err := game.ApplyReveal(p)
		require.NoError(t, err)
		if report.Result != nil {
			results++
		}
	}
	assert.Equal(t, 1, results)
	assert.Equal(t, StateWon, game.State)

	_, err := game.ApplyReveal(Position{Row: 0, Col: 0})
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = game.Abandon()
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestNoOpRevealsDoNotCountSteps(t *testing.T) {
	game := newCatGame(t, ModeClassic, nil)

	report, err := game.ApplyReveal(Position{Row: 9, Col: 9})
	require.NoError(t, err)
	assert.True(t, report.Outcome.Empty())
	assert.Equal(t, StateIdle, game.State)

	_, err = game.ApplyReveal(Position{Row: 4, Col: 4})
	require.NoError(t, err)
	steps := game.Totals.StepsUsed

	report, err = game.ApplyReveal(Position{Row: 4, Col: 4})
	require.NoError(t, err)
	assert.True(t, report.Outcome.Empty())
	assert.Equal(t, steps, game.Totals.StepsUsed)
	assert.Len(t, game.History(), 1)
}

func TestToggleFlag(t *testing.T) {
	game := newCatGame(t, ModeClassic, nil)
	pos := Position{Row: 2, Col: 0}

	flagged, err := game.ToggleFlag(pos)
	require.NoError(t, err)
	assert.True(t, flagged)

	report, err := game.ApplyReveal(pos)
	require.NoError(t, err)
	assert.True(t, report.Outcome.Empty(), "flagged cells cannot be revealed")

	flagged, err = game.ToggleFlag(pos)
	require.NoError(t, err)
	assert.False(t, flagged)
	assert.Equal(t, Hidden, game.Board.Cell(pos).State)
	assert.Equal(t, 0, game.Totals.StepsUsed)
}

func TestFlaggedSafeCellBlocksWin(t *testing.T) {
	game := newCatGame(t, ModeClassic, nil)
	_, err := game.ApplyReveal(Position{Row: 2, Col: 0})
	require.NoError(t, err)
	_, err = game.ToggleFlag(Position{Row: 2, Col: 2})
	require.NoError(t, err)
	report, err := game.ApplyReveal(Position{Row: 2, Col: 1})
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, report.State)
}

func TestAbandon(t *testing.T) {
	game := newCatGame(t, ModeClassic, nil)
	_, err := game.ApplyReveal(Position{Row: 2, Col: 0})
	require.NoError(t, err)

	result, err := game.Abandon()
	require.NoError(t, err)
	assert.True(t, result.Abandoned)
	assert.False(t, result.Won)
	assert.Equal(t, StateLost, game.State)
	assert.Equal(t, 1, result.StepsUsed)
}

func TestTimedRevealAfterDeadlineIsRejected(t *testing.T) {
	clock := newFakeClock()
	game := newCatGame(t, ModeTimed, clock)

	_, err := game.ApplyReveal(Position{Row: 2, Col: 0})
	require.NoError(t, err)
	require.NotNil(t, game.Deadline)

	clock.Advance(101 * time.Second)
	report, err := game.ApplyReveal(Position{Row: 2, Col: 1})
	require.NoError(t, err)
	assert.True(t, report.TimedOut)
	assert.Equal(t, StateLost, report.State)
	assert.True(t, report.Outcome.Empty())
	assert.Equal(t, Hidden, game.Board.Cell(Position{Row: 2, Col: 1}).State)
	require.NotNil(t, report.Result)
	assert.True(t, report.Result.TimedOut)
	assert.Equal(t, report.Result.Score, report.Score)

	_, err = game.ApplyReveal(Position{Row: 2, Col: 2})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestTimedOutReportCarriesFinalScore(t *testing.T) {
	clock := newFakeClock()
	game, err := NewGame(catBoard(t), GameOptions{
		Difficulty:       Easy,
		Mode:             ModeTimed,
		AllowedMineSteps: 3,
		TimeBudget:       30 * time.Second,
		Clock:            clock,
	})
	require.NoError(t, err)

	report, err := game.ApplyReveal(Position{Row: 0, Col: 0})
	require.NoError(t, err)
	require.True(t, report.Outcome.HitMine)
	assert.Equal(t, -MinePenalty, report.Score)
	assert.Equal(t, StateInProgress, report.State)

	clock.Advance(time.Minute)
	report, err = game.ApplyReveal(Position{Row: 4, Col: 4})
	require.NoError(t, err)
	require.True(t, report.TimedOut)
	require.NotNil(t, report.Result)
	assert.Equal(t, 0, report.Result.Score)
	assert.Equal(t, report.Result.Score, report.Score)
	assert.Equal(t, report.Score, game.View().Score)
}

func TestCheckTimeout(t *testing.T) {
	clock := newFakeClock()
	game := newCatGame(t, ModeTimed, clock)

	_, expired := game.CheckTimeout()
	assert.False(t, expired, "idle games have no deadline")

	_, err := game.ApplyReveal(Position{Row: 2, Col: 0})
	require.NoError(t, err)
	clock.Advance(50 * time.Second)
	assert.Equal(t, 50*time.Second, game.RemainingTime())

	_, expired = game.CheckTimeout()
	assert.False(t, expired)

	clock.Advance(50 * time.Second)
	result, expired := game.CheckTimeout()
	assert.True(t, expired)
	require.NotNil(t, result)
	assert.True(t, result.TimedOut)
	assert.Equal(t, StateLost, game.State)
}

func TestTimedScoreGrowsWithRemainingTime(t *testing.T) {
	play := func(elapsed time.Duration) int {
		clock := newFakeClock()
		game := newCatGame(t, ModeTimed, clock)
		_, err := game.ApplyReveal(Position{Row: 2, Col: 0})
		require.NoError(t, err)
		_, err = game.ApplyReveal(Position{Row: 2, Col: 1})
		require.NoError(t, err)
		clock.Advance(elapsed)
		report, err := game.ApplyReveal(Position{Row: 2, Col: 2})
		require.NoError(t, err)
		require.NotNil(t, report.Result)
		require.True(t, report.Result.Won)
		return report.Result.Score
	}

	fast := play(10 * time.Second)
	medium := play(50 * time.Second)
	slow := play(90 * time.Second)

	assert.Greater(t, fast, medium)
	assert.Greater(t, medium, slow)
	assert.Equal(t, 57, fast)
	assert.Equal(t, 45, medium)
	assert.Equal(t, 33, slow)
}

func TestNewGameDefaults(t *testing.T) {
	board := NewBoard(9, 9)
	game, err := NewGame(board, GameOptions{Difficulty: Hard, Mode: ModeTimed})
	require.NoError(t, err)
	assert.Equal(t, Hard.Config().AllowedMineSteps, game.AllowedMineSteps)
	assert.Equal(t, Hard.Config().TimeBudget, game.TimeBudget)
	assert.Equal(t, Hard.Config().TimeBudget, game.RemainingTime())

	_, err = NewGame(nil, GameOptions{})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewGame(board, GameOptions{Mode: "sprint"})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestViewHidesContent(t *testing.T) {
	game := newCatGame(t, ModeClassic, nil)

	view := game.View()
	for _, row := range view.Cells {
		for _, cell := range row {
			assert.Equal(t, Hidden, cell.State)
			assert.Empty(t, cell.Letter)
			assert.False(t, cell.Mine)
		}
	}
	require.Len(t, view.Words, 1)
	assert.Equal(t, 3, view.Words[0].Length)
	assert.Empty(t, view.Words[0].Text)

	_, err := game.ApplyReveal(Position{Row: 2, Col: 0})
	require.NoError(t, err)
	view = game.View()
	assert.Equal(t, "C", view.Cells[2][0].Letter)
	assert.Empty(t, view.Cells[2][1].Letter)
	assert.Equal(t, 1, view.Cells[1][1].AdjacentMines)
	assert.Equal(t, Hidden, view.Cells[0][0].State)
	assert.Nil(t, view.RemainingSeconds)

	text := view.Text()
	assert.Contains(t, text, " C ")
	assert.Contains(t, text, " # ")
}
