package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a game
type State string

const (
	StateIdle       State = "idle"
	StateInProgress State = "in_progress"
	StateWon        State = "won"
	StateLost       State = "lost"
)

// Terminal reports whether the state accepts no further input
func (s State) Terminal() bool {
	return s == StateWon || s == StateLost
}

// GameOptions configures a new game. Zero AllowedMineSteps and TimeBudget
// fall back to the difficulty table.
type GameOptions struct {
	Difficulty       Difficulty
	Mode             Mode
	AllowedMineSteps int
	TimeBudget       time.Duration
	Clock            Clock
}

// SessionResult is the terminal snapshot handed to the statistics layer
type SessionResult struct {
	ID                  string     `json:"id"`
	GamesPlayed         int        `json:"games_played"`
	Won                 bool       `json:"won"`
	Abandoned           bool       `json:"abandoned,omitempty"`
	TimedOut            bool       `json:"timed_out,omitempty"`
	WordsRevealed       int        `json:"words_revealed"`
	LongestWordRevealed string     `json:"longest_word_revealed,omitempty"`
	MinesStepped        int        `json:"mines_stepped"`
	Score               int        `json:"score"`
	Mode                Mode       `json:"mode"`
	Difficulty          Difficulty `json:"difficulty"`
	StepsUsed           int        `json:"steps_used"`
	FinishedAt          time.Time  `json:"finished_at"`
}

// RevealRecord is one accepted reveal in the game history
type RevealRecord struct {
	Step           int      `json:"step"`
	Position       Position `json:"position"`
	HitMine        bool     `json:"hit_mine"`
	CellsRevealed  int      `json:"cells_revealed"`
	CompletedWords []string `json:"completed_words,omitempty"`
	Timestamp      int64    `json:"timestamp"`
}

// RevealReport describes the effect of one ApplyReveal call
type RevealReport struct {
	Position       Position       `json:"position"`
	Outcome        RevealOutcome  `json:"outcome"`
	CompletedWords []string       `json:"completed_words"`
	Score          int            `json:"score"`
	MinesStepped   int            `json:"mines_stepped"`
	StepsUsed      int            `json:"steps_used"`
	State          State          `json:"state"`
	TimedOut       bool           `json:"timed_out,omitempty"`
	Result         *SessionResult `json:"result,omitempty"`
}

// Game is one play-through on one board. It is not safe for concurrent use;
// callers serialise access.
type Game struct {
	Board            *Board         `json:"board"`
	Difficulty       Difficulty     `json:"difficulty"`
	Mode             Mode           `json:"mode"`
	AllowedMineSteps int            `json:"allowed_mine_steps"`
	TimeBudget       time.Duration  `json:"time_budget"`
	State            State          `json:"state"`
	Totals           ScoreKeeper    `json:"totals"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	Deadline         *time.Time     `json:"deadline,omitempty"`
	Reveals          []RevealRecord `json:"reveals"`
	Result           *SessionResult `json:"result,omitempty"`

	clock Clock
}

// NewGame wraps a board in a fresh idle game
func NewGame(board *Board, opts GameOptions) (*Game, error) {
	if board == nil {
		return nil, fmt.Errorf("%w: board cannot be nil", ErrConfiguration)
	}
	if !opts.Difficulty.Valid() {
		return nil, fmt.Errorf("%w: unknown difficulty %d", ErrConfiguration, int(opts.Difficulty))
	}
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}

	cfg := opts.Difficulty.Config()
	allowed := opts.AllowedMineSteps
	if allowed <= 0 {
		allowed = cfg.AllowedMineSteps
	}
	var budget time.Duration
	if mode == ModeTimed {
		budget = opts.TimeBudget
		if budget <= 0 {
			budget = cfg.TimeBudget
		}
	}

	return &Game{
		Board:            board,
		Difficulty:       opts.Difficulty,
		Mode:             mode,
		AllowedMineSteps: allowed,
		TimeBudget:       budget,
		State:            StateIdle,
		Reveals:          []RevealRecord{},
		clock:            opts.Clock,
	}, nil
}

// SetClock replaces the time source, e.g. after loading a persisted game
func (g *Game) SetClock(clock Clock) {
	g.clock = clock
}

func (g *Game) now() time.Time {
	if g.clock == nil {
		return time.Now()
	}
	return g.clock.Now()
}

// Finished reports whether the game reached a terminal state
func (g *Game) Finished() bool {
	return g.State.Terminal()
}

// RemainingTime returns the time left in a timed game; the full budget before
// the first reveal and zero for classic games.
func (g *Game) RemainingTime() time.Duration {
	if g.Mode != ModeTimed {
		return 0
	}
	if g.Deadline == nil {
		return g.TimeBudget
	}
	if g.Finished() && g.Result != nil {
		return max(0, g.Deadline.Sub(g.Result.FinishedAt))
	}
	return max(0, g.Deadline.Sub(g.now()))
}

func (g *Game) expired(now time.Time) bool {
	return g.Mode == ModeTimed && g.State == StateInProgress && g.Deadline != nil && !now.Before(*g.Deadline)
}

// ApplyReveal reveals pos and advances the state machine.
//
// A reveal arriving after a timed game's deadline is not applied: the game is
// lost and the report carries TimedOut together with the SessionResult.
// Out-of-bounds, flagged and already revealed cells yield an empty report.
func (g *Game) ApplyReveal(pos Position) (*RevealReport, error) {
	if g.Finished() {
		return nil, fmt.Errorf("%w: game already %s", ErrSessionClosed, g.State)
	}

	now := g.now()
	if g.expired(now) {
		result := g.finish(StateLost, now, false, true)
		report := g.report(pos, RevealOutcome{}, nil)
		report.TimedOut = true
		report.Result = result
		report.Score = result.Score
		return report, nil
	}

	outcome := Reveal(g.Board, pos)
	if outcome.Empty() {
		return g.report(pos, outcome, nil), nil
	}

	if g.State == StateIdle {
		g.State = StateInProgress
		started := now
		g.StartedAt = &started
		if g.Mode == ModeTimed {
			deadline := now.Add(g.TimeBudget)
			g.Deadline = &deadline
		}
	}

	completed := UpdateWords(g.Board, outcome.Revealed)
	g.Totals.OnReveal(outcome, completed)

	names := make([]string, 0, len(completed))
	for _, w := range completed {
		names = append(names, w.Text)
	}
	g.Reveals = append(g.Reveals, RevealRecord{
		Step:           g.Totals.StepsUsed,
		Position:       pos,
		HitMine:        outcome.HitMine,
		CellsRevealed:  len(outcome.Revealed),
		CompletedWords: names,
		Timestamp:      now.Unix(),
	})

	report := g.report(pos, outcome, names)
	switch {
	case g.Board.RemainingSafeCells() == 0:
		report.Result = g.finish(StateWon, now, false, false)
	case g.Totals.MinesStepped >= g.AllowedMineSteps:
		report.Result = g.finish(StateLost, now, false, false)
	}
	report.State = g.State
	report.Score = g.Totals.Score
	if report.Result != nil {
		report.Score = report.Result.Score
	}
	return report, nil
}

func (g *Game) report(pos Position, outcome RevealOutcome, completed []string) *RevealReport {
	if completed == nil {
		completed = []string{}
	}
	return &RevealReport{
		Position:       pos,
		Outcome:        outcome,
		CompletedWords: completed,
		Score:          g.Totals.Score,
		MinesStepped:   g.Totals.MinesStepped,
		StepsUsed:      g.Totals.StepsUsed,
		State:          g.State,
	}
}

// ToggleFlag flips a hidden cell to flagged and back. It returns the new
// flagged state; revealed and out-of-bounds cells are left untouched.
func (g *Game) ToggleFlag(pos Position) (bool, error) {
	if g.Finished() {
		return false, fmt.Errorf("%w: game already %s", ErrSessionClosed, g.State)
	}
	now := g.now()
	if g.expired(now) {
		g.finish(StateLost, now, false, true)
		return false, fmt.Errorf("%w: time budget exhausted", ErrSessionClosed)
	}

	cell := g.Board.Cell(pos)
	if cell == nil {
		return false, nil
	}
	switch cell.State {
	case Hidden:
		cell.State = Flagged
		return true, nil
	case Flagged:
		cell.State = Hidden
	}
	return false, nil
}

// CheckTimeout ends a timed game whose deadline passed while waiting for input
func (g *Game) CheckTimeout() (*SessionResult, bool) {
	now := g.now()
	if !g.expired(now) {
		return nil, false
	}
	return g.finish(StateLost, now, false, true), true
}

// Abandon ends an unfinished game as lost
func (g *Game) Abandon() (*SessionResult, error) {
	if g.Finished() {
		return nil, fmt.Errorf("%w: game already %s", ErrSessionClosed, g.State)
	}
	return g.finish(StateLost, g.now(), true, false), nil
}

// History returns the accepted reveals in order
func (g *Game) History() []RevealRecord {
	history := make([]RevealRecord, len(g.Reveals))
	copy(history, g.Reveals)
	return history
}

// finish freezes the game and builds its SessionResult exactly once
func (g *Game) finish(state State, now time.Time, abandoned, timedOut bool) *SessionResult {
	if g.Result != nil {
		return g.Result
	}
	g.State = state

	remaining := 0.0
	if state == StateWon && g.Mode == ModeTimed && g.Deadline != nil && g.TimeBudget > 0 {
		remaining = float64(g.Deadline.Sub(now)) / float64(g.TimeBudget)
	}

	g.Result = &SessionResult{
		ID:                  uuid.NewString(),
		GamesPlayed:         1,
		Won:                 state == StateWon,
		Abandoned:           abandoned,
		TimedOut:            timedOut,
		WordsRevealed:       g.Totals.WordsRevealed,
		LongestWordRevealed: g.Totals.LongestWord,
		MinesStepped:        g.Totals.MinesStepped,
		Score:               g.Totals.Finalize(g.Mode, remaining),
		Mode:                g.Mode,
		Difficulty:          g.Difficulty,
		StepsUsed:           g.Totals.StepsUsed,
		FinishedAt:          now,
	}
	return g.Result
}
