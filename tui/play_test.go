package tui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/wordweeper/game/config"
	"github.com/wricardo/wordweeper/game/engine"
	"github.com/wricardo/wordweeper/game/service"
	"github.com/wricardo/wordweeper/game/session"
	"github.com/wricardo/wordweeper/game/stats"
	"github.com/wricardo/wordweeper/game/words"
)

const testSeed uint64 = 99

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want command
	}{
		{"r 1 2", command{kind: cmdReveal, pos: engine.Position{Row: 1, Col: 2}}},
		{"REVEAL 0 0", command{kind: cmdReveal, pos: engine.Position{}}},
		{"  3   4 ", command{kind: cmdReveal, pos: engine.Position{Row: 3, Col: 4}}},
		{"f 5 6", command{kind: cmdFlag, pos: engine.Position{Row: 5, Col: 6}}},
		{"q", command{kind: cmdQuit}},
		{"help", command{kind: cmdHelp}},
		{"b", command{kind: cmdBoard}},
	}
	for _, tt := range tests {
		got, err := parseCommand(tt.line)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}

	for _, bad := range []string{"", "r 1", "f a 2", "r 1 b", "dance", "1 2 3"} {
		_, err := parseCommand(bad)
		assert.Error(t, err, bad)
	}
}

func TestRenderBoardPlainMatchesText(t *testing.T) {
	board := engine.NewBoard(5, 5)
	_, err := board.PlaceWord("DOG", engine.Position{Row: 4, Col: 0}, engine.Right)
	require.NoError(t, err)
	require.NoError(t, board.PlaceMine(engine.Position{Row: 0, Col: 0}))
	board.ComputeAdjacency()

	game, err := engine.NewGame(board, engine.GameOptions{Difficulty: engine.Easy, Mode: engine.ModeClassic})
	require.NoError(t, err)
	_, err = game.ApplyReveal(engine.Position{Row: 2, Col: 2})
	require.NoError(t, err)
	_, err = game.ToggleFlag(engine.Position{Row: 0, Col: 0})
	require.NoError(t, err)

	view := game.View()
	assert.Equal(t, view.Text(), RenderBoard(view, false))

	status := RenderStatus(view, false)
	assert.Contains(t, status, "EASY classic")
	assert.Contains(t, status, "Words: ___ (0/1)")
}

func TestRenderResult(t *testing.T) {
	won := RenderResult(&engine.SessionResult{Won: true, Score: 30, WordsRevealed: 1, LongestWordRevealed: "CAT"}, false)
	assert.Contains(t, won, "You won!")
	assert.Contains(t, won, "Final score: 30")
	assert.Contains(t, won, "(longest CAT)")

	assert.Contains(t, RenderResult(&engine.SessionResult{Abandoned: true}, false), "abandoned")
	assert.Contains(t, RenderResult(&engine.SessionResult{TimedOut: true}, false), "Time is up")
	assert.Contains(t, RenderResult(&engine.SessionResult{}, false), "Boom")
}

type testEnv struct {
	svc   service.GameService
	store stats.Store
	board *engine.Board
}

// newTestEnv builds a service and regenerates the board a testSeed game will
// be dealt so scripts can target known cells.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv(words.EnvWordsFile, "")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classic.json"),
		[]byte(`{"name":"Classic","difficulty":"easy","mode":"classic"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hard.json"),
		[]byte(`{"name":"Hard","difficulty":"hard","mode":"classic"}`), 0644))

	configs, err := config.NewManager(dir)
	require.NoError(t, err)
	store, err := stats.NewFileStore(t.TempDir())
	require.NoError(t, err)

	board, err := engine.NewGenerator(words.Default(), engine.NewRandom(testSeed)).GenerateWithRetry(engine.Easy.Config())
	require.NoError(t, err)

	return &testEnv{
		svc:   service.NewGameService(session.NewManager(), configs, store),
		store: store,
		board: board,
	}
}

func (e *testEnv) play(t *testing.T, script string, userID string) (*engine.SessionResult, string) {
	t.Helper()
	var out bytes.Buffer
	seed := testSeed
	player := NewPlayer(e.svc, strings.NewReader(script), &out, WithColour(false))
	result, err := player.Play(context.Background(), service.CreateSessionRequest{
		PresetID: "classic",
		UserID:   userID,
		Seed:     &seed,
	})
	require.NoError(t, err, out.String())
	return result, out.String()
}

func (e *testEnv) cells(mines bool) []engine.Position {
	var positions []engine.Position
	for r := range e.board.Rows {
		for c := range e.board.Cols {
			if e.board.Grid[r][c].Mine == mines {
				positions = append(positions, engine.Position{Row: r, Col: c})
			}
		}
	}
	return positions
}

func TestPlayLoseOnMines(t *testing.T) {
	env := newTestEnv(t)

	var script strings.Builder
	script.WriteString("dance\n\nh\n")
	for _, pos := range env.cells(true) {
		fmt.Fprintf(&script, "r %d %d\n", pos.Row, pos.Col)
	}

	result, out := env.play(t, script.String(), "terminal_player")
	require.NotNil(t, result)
	assert.False(t, result.Won)
	assert.Equal(t, engine.Easy.Config().AllowedMineSteps, result.MinesStepped)
	assert.Contains(t, out, `unknown command "dance"`)
	assert.Contains(t, out, "Boom. Game over.")

	user, err := env.store.Get(context.Background(), "terminal_player")
	require.NoError(t, err)
	assert.Equal(t, 1, user.GamesPlayed)
	assert.Equal(t, 0, user.GamesWon)
}

func TestPlayWinRevealingEverySafeCell(t *testing.T) {
	env := newTestEnv(t)

	var script strings.Builder
	for _, pos := range env.cells(false) {
		fmt.Fprintf(&script, "%d %d\n", pos.Row, pos.Col)
	}

	result, out := env.play(t, script.String(), "")
	require.NotNil(t, result)
	assert.True(t, result.Won)
	assert.Equal(t, len(env.board.Words), result.WordsRevealed)
	assert.Contains(t, out, "You won!")
}

func TestPlayFlagAndQuit(t *testing.T) {
	env := newTestEnv(t)
	mine := env.cells(true)[0]

	script := fmt.Sprintf("f %d %d\nr %d %d\nb\nq\n", mine.Row, mine.Col, mine.Row, mine.Col)
	result, out := env.play(t, script, "")
	require.NotNil(t, result)
	assert.True(t, result.Abandoned)
	assert.Equal(t, 0, result.MinesStepped, "flagged cells cannot be revealed")
	assert.Contains(t, out, " F ")
	assert.Contains(t, out, "Game abandoned.")

	sessions, err := env.svc.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestPlayEOFAbandons(t *testing.T) {
	env := newTestEnv(t)
	result, _ := env.play(t, "", "")
	require.NotNil(t, result)
	assert.True(t, result.Abandoned)
}

func TestSelectPreset(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		input string
		want  string
	}{
		{"\n", "classic"},
		{"2\n", "hard"},
		{"9\nHARD\n", "hard"},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		player := NewPlayer(env.svc, strings.NewReader(tt.input), &out, WithColour(false))
		got, err := player.SelectPreset(context.Background())
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	var out bytes.Buffer
	_, err := NewPlayer(env.svc, strings.NewReader(""), &out).SelectPreset(context.Background())
	assert.Error(t, err)
}
