package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/wordweeper/game/engine"
	"github.com/wricardo/wordweeper/game/stats"
	"github.com/wricardo/wordweeper/logging"
	"github.com/wricardo/wordweeper/metrics"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	store    stats.Store
	clock    engine.Clock
	seeds    func() uint64
	mu       sync.RWMutex
}

// Option customises a GameService
type Option func(*gameServiceImpl)

// WithClock sets the time source handed to new games
func WithClock(clock engine.Clock) Option {
	return func(s *gameServiceImpl) { s.clock = clock }
}

// WithSeedSource sets how board seeds are drawn when a request has none
func WithSeedSource(seeds func() uint64) Option {
	return func(s *gameServiceImpl) { s.seeds = seeds }
}

// NewGameService creates a new game service instance. store may be nil, in
// which case results are not recorded and user operations fail.
func NewGameService(sessions SessionManager, configs ConfigManager, store stats.Store, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		store:    store,
		clock:    engine.SystemClock{},
		seeds:    rand.Uint64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolvePreset picks the preset for a request: a named preset, an ad hoc
// difficulty/mode pair, or the default preset.
func (s *gameServiceImpl) resolvePreset(req CreateSessionRequest) (*engine.Preset, string, error) {
	if req.PresetID != "" {
		preset, err := s.configs.LoadConfig(req.PresetID)
		if err != nil {
			availableConfigs, listErr := s.configs.ListConfigs()
			if listErr == nil && len(availableConfigs) > 0 {
				var configIDs []string
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return nil, "", fmt.Errorf("%w: preset '%s' not found. Available presets: %v", ErrInvalidRequest, req.PresetID, configIDs)
			}
			return nil, "", fmt.Errorf("failed to load preset %s: %w", req.PresetID, err)
		}
		return preset, req.PresetID, nil
	}

	if req.Difficulty == "" && req.Mode == "" {
		return s.configs.GetDefault(), "default", nil
	}

	base := s.configs.GetDefault()
	difficulty := base.Difficulty
	if req.Difficulty != "" {
		d, err := engine.ParseDifficulty(req.Difficulty)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		difficulty = d
	}
	mode, err := engine.ParseMode(req.Mode)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	preset := &engine.Preset{
		Name:        fmt.Sprintf("%s %s", difficulty, mode),
		Description: "Ad hoc game",
		Difficulty:  difficulty,
		Mode:        mode,
	}
	return preset, "custom", nil
}

// ensureUser registers userID on first use
func (s *gameServiceImpl) ensureUser(ctx context.Context, userID string) error {
	if err := stats.ValidateUserID(userID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if s.store == nil {
		return nil
	}
	_, err := s.store.Register(ctx, userID)
	if err == nil {
		logging.Log.WithField("user_id", userID).Info("registered new user")
		return nil
	}
	if errors.Is(err, stats.ErrUserExists) {
		return nil
	}
	metrics.StatsErrors.WithLabelValues("register").Inc()
	return fmt.Errorf("failed to register user: %w", err)
}

// CreateSession generates a board and starts a new idle session
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	preset, presetID, err := s.resolvePreset(req)
	if err != nil {
		return nil, err
	}
	if req.UserID != "" {
		if err := s.ensureUser(ctx, req.UserID); err != nil {
			return nil, err
		}
	}

	words, err := s.configs.WordSource(preset)
	if err != nil {
		return nil, fmt.Errorf("failed to load word list: %w", err)
	}

	seed := s.seeds()
	if req.Seed != nil {
		seed = *req.Seed
	}
	gen := engine.NewGenerator(words, engine.NewRandom(seed))
	board, err := gen.GenerateWithRetry(preset.Difficulty.Config())
	if err != nil {
		return nil, fmt.Errorf("failed to generate board: %w", err)
	}
	game, err := engine.NewGame(board, preset.Options(s.clock))
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	session, err := s.sessions.Create("", SessionInit{
		UserID:   req.UserID,
		PresetID: presetID,
		Preset:   preset,
		Game:     game,
		Seed:     seed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	metrics.SessionsCreated.WithLabelValues(game.Difficulty.String(), string(game.Mode)).Inc()
	metrics.ActiveSessions.Set(float64(s.sessions.Count()))
	logging.Session(session.ID).WithFields(logrus.Fields{
		"preset":     presetID,
		"difficulty": game.Difficulty.String(),
		"mode":       game.Mode,
		"user_id":    req.UserID,
		"words":      len(board.Words),
		"mines":      board.MineCount,
	}).Info("session created")

	return s.sessionInfo(session, true), nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session, withBoard bool) *SessionInfo {
	game := sess.Game
	info := &SessionInfo{
		ID:             sess.ID,
		PresetID:       sess.PresetID,
		UserID:         sess.UserID,
		Difficulty:     game.Difficulty,
		Mode:           game.Mode,
		State:          game.State,
		Score:          game.Totals.Score,
		Seed:           sess.Seed,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Result:         game.Result,
		Preset:         sess.Preset,
	}
	if game.Result != nil {
		info.Score = game.Result.Score
	}
	if game.Mode == engine.ModeTimed {
		remaining := game.RemainingTime().Seconds()
		info.RemainingSeconds = &remaining
	}
	if withBoard {
		view := game.View()
		info.Board = &view
	}
	return info
}

// lookup fetches a session and touches its access time
func (s *gameServiceImpl) lookup(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// expire ends a timed game whose deadline passed while idle
func (s *gameServiceImpl) expire(ctx context.Context, sess *Session) bool {
	if _, expired := sess.Game.CheckTimeout(); !expired {
		return false
	}
	logging.Session(sess.ID).Info("time budget exhausted")
	s.finishSession(ctx, sess)
	s.save(sess)
	return true
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	s.expire(ctx, sess)
	return s.sessionInfo(sess, true), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, false))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// DeleteSession abandons an unfinished game, records it and removes the session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) (*engine.SessionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if !sess.Game.Finished() {
		if _, err := sess.Game.Abandon(); err != nil {
			return nil, err
		}
		logging.Session(sess.ID).Info("session abandoned")
	}
	s.finishSession(ctx, sess)

	if err := s.sessions.Delete(sessionID); err != nil {
		return nil, err
	}
	metrics.ActiveSessions.Set(float64(s.sessions.Count()))
	return sess.Game.Result, nil
}

// CheckTimeouts finishes every timed game whose deadline has passed
func (s *gameServiceImpl) CheckTimeouts(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for _, sess := range s.sessions.List() {
		if s.expire(ctx, sess) {
			expired++
		}
	}
	return expired
}

// Reveal applies one reveal to a session
func (s *gameServiceImpl) Reveal(ctx context.Context, sessionID string, pos engine.Position) (*RevealResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	report, err := sess.Game.ApplyReveal(pos)
	if err != nil {
		if errors.Is(err, engine.ErrSessionClosed) {
			metrics.Reveals.WithLabelValues("rejected").Inc()
			logging.Session(sess.ID).WithFields(logrus.Fields{
				"row": pos.Row, "col": pos.Col, "state": sess.Game.State,
			}).Warn("reveal after game ended")
		}
		return nil, err
	}

	result := &RevealResult{
		Report: report,
		Events: revealEvents(report, time.Now()),
	}
	result.Message = revealMessage(report)
	recordRevealMetrics(report)

	if report.Result != nil {
		result.Stats, err = s.finishSession(ctx, sess)
		if err != nil {
			result.StatsError = err.Error()
		}
	}
	result.Board = sess.Game.View()

	logging.Session(sess.ID).WithFields(logrus.Fields{
		"row":       pos.Row,
		"col":       pos.Col,
		"revealed":  len(report.Outcome.Revealed),
		"hit_mine":  report.Outcome.HitMine,
		"completed": report.CompletedWords,
		"state":     report.State,
	}).Debug("reveal")

	s.save(sess)
	return result, nil
}

// Flag toggles a flag on a hidden cell
func (s *gameServiceImpl) Flag(ctx context.Context, sessionID string, pos engine.Position) (*FlagResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	flagged, err := sess.Game.ToggleFlag(pos)
	if err != nil {
		if errors.Is(err, engine.ErrSessionClosed) {
			if sess.Game.Finished() && !sess.Recorded {
				s.finishSession(ctx, sess)
				s.save(sess)
			}
			logging.Session(sess.ID).Warn("flag after game ended")
		}
		return nil, err
	}

	s.save(sess)
	return &FlagResult{
		Position: pos,
		Flagged:  flagged,
		Board:    sess.Game.View(),
		Result:   sess.Game.Result,
	}, nil
}

// finishSession hands a finished game's result to the statistics store once
func (s *gameServiceImpl) finishSession(ctx context.Context, sess *Session) (*stats.UserStats, error) {
	result := sess.Game.Result
	if result == nil || sess.Recorded {
		return nil, nil
	}
	sess.Recorded = true

	metrics.SessionsFinished.WithLabelValues(outcomeLabel(result)).Inc()
	metrics.FinalScores.WithLabelValues(string(result.Mode)).Observe(float64(result.Score))

	entry := logging.Session(sess.ID).WithFields(logrus.Fields{
		"won":   result.Won,
		"score": result.Score,
		"steps": result.StepsUsed,
		"words": result.WordsRevealed,
	})
	entry.Info("game finished")

	if sess.UserID == "" || s.store == nil {
		return nil, nil
	}
	updated, err := s.store.Record(ctx, sess.UserID, *result)
	if err != nil {
		metrics.StatsErrors.WithLabelValues("record").Inc()
		entry.WithError(err).Warn("failed to record statistics")
		return nil, fmt.Errorf("failed to record statistics: %w", err)
	}
	return updated, nil
}

// save persists a session; failures are logged, never returned
func (s *gameServiceImpl) save(sess *Session) {
	if err := s.sessions.Save(sess.ID); err != nil {
		logging.Session(sess.ID).WithError(err).Warn("failed to persist session")
	}
}

// GetBoard returns the player-visible board
func (s *gameServiceImpl) GetBoard(ctx context.Context, sessionID string) (*engine.BoardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	s.expire(ctx, sess)
	view := sess.Game.View()
	return &view, nil
}

// GetRevealHistory returns paginated reveal history for a session
func (s *gameServiceImpl) GetRevealHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	s.expire(ctx, sess)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}

	history := sess.Game.History()
	total := len(history)
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	var reveals []engine.RevealRecord
	if opts.Order == "desc" {
		// Reverse order (most recent first)
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			reveals = append(reveals, history[i])
		}
	} else if start < total {
		reveals = history[start:end]
	}
	if reveals == nil {
		reveals = []engine.RevealRecord{}
	}

	return &HistoryResponse{
		Reveals:      reveals,
		TotalReveals: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// ListConfigs returns available presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.Preset, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a preset to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, preset *engine.Preset) error {
	return s.configs.SaveConfig(configName, preset)
}

// ListDifficulties returns the fixed difficulty table
func (s *gameServiceImpl) ListDifficulties(ctx context.Context) []DifficultyInfo {
	out := make([]DifficultyInfo, 0, len(engine.Difficulties()))
	for _, d := range engine.Difficulties() {
		out = append(out, NewDifficultyInfo(d))
	}
	return out
}

// RegisterUser creates empty statistics for a new user
func (s *gameServiceImpl) RegisterUser(ctx context.Context, userID string) (*stats.UserStats, error) {
	if s.store == nil {
		return nil, ErrStatsUnavailable
	}
	u, err := s.store.Register(ctx, userID)
	if err != nil {
		if !errors.Is(err, stats.ErrUserExists) && !errors.Is(err, stats.ErrInvalidUserID) {
			metrics.StatsErrors.WithLabelValues("register").Inc()
		}
		return nil, err
	}
	logging.Log.WithField("user_id", userID).Info("registered new user")
	return u, nil
}

// GetUserStats returns a user's statistics with derived figures
func (s *gameServiceImpl) GetUserStats(ctx context.Context, userID string) (*UserStatsInfo, error) {
	if s.store == nil {
		return nil, ErrStatsUnavailable
	}
	u, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newUserStatsInfo(u), nil
}

// ListUsers returns every registered user
func (s *gameServiceImpl) ListUsers(ctx context.Context) ([]*UserStatsInfo, error) {
	if s.store == nil {
		return nil, ErrStatsUnavailable
	}
	users, err := s.store.List(ctx)
	if err != nil {
		metrics.StatsErrors.WithLabelValues("list").Inc()
		return nil, err
	}
	out := make([]*UserStatsInfo, 0, len(users))
	for _, u := range users {
		out = append(out, newUserStatsInfo(u))
	}
	return out, nil
}

func outcomeLabel(r *engine.SessionResult) string {
	switch {
	case r.Won:
		return "won"
	case r.Abandoned:
		return "abandoned"
	case r.TimedOut:
		return "timed_out"
	}
	return "lost"
}

func recordRevealMetrics(report *engine.RevealReport) {
	switch {
	case report.TimedOut:
		metrics.Reveals.WithLabelValues("timed_out").Inc()
	case report.Outcome.Empty():
		metrics.Reveals.WithLabelValues("noop").Inc()
	case report.Outcome.HitMine:
		metrics.Reveals.WithLabelValues("mine").Inc()
	default:
		metrics.Reveals.WithLabelValues("safe").Inc()
		metrics.CascadeSize.Observe(float64(len(report.Outcome.Revealed)))
	}
	metrics.WordsCompleted.Add(float64(len(report.CompletedWords)))
}

// revealEvents describes a reveal as a list of events
func revealEvents(report *engine.RevealReport, now time.Time) []GameEvent {
	events := []GameEvent{}
	pos := report.Position

	switch {
	case report.TimedOut:
		events = append(events, GameEvent{Type: "timeout", Message: "Time is up, the reveal was not applied", Timestamp: now, Position: pos})
	case report.Outcome.Empty():
		events = append(events, GameEvent{Type: "reveal", Message: fmt.Sprintf("Nothing to reveal at %s", pos), Timestamp: now, Position: pos})
	case report.Outcome.HitMine:
		events = append(events, GameEvent{
			Type:      "mine",
			Message:   fmt.Sprintf("Stepped on a mine at %s (-%d points)", pos, engine.MinePenalty),
			Timestamp: now,
			Position:  pos,
		})
	case len(report.Outcome.Revealed) > 1:
		events = append(events, GameEvent{
			Type:      "cascade",
			Message:   fmt.Sprintf("Revealed %d cells from %s", len(report.Outcome.Revealed), pos),
			Timestamp: now,
			Position:  pos,
		})
	default:
		events = append(events, GameEvent{Type: "reveal", Message: fmt.Sprintf("Revealed %s", pos), Timestamp: now, Position: pos})
	}

	for _, w := range report.CompletedWords {
		events = append(events, GameEvent{
			Type:      "word_completed",
			Message:   fmt.Sprintf("Completed %s (+%d points)", w, engine.PointsPerLetter*len(w)),
			Timestamp: now,
			Position:  pos,
		})
	}

	if report.Result != nil && !report.TimedOut {
		if report.Result.Won {
			events = append(events, GameEvent{
				Type:      "victory",
				Message:   fmt.Sprintf("Board cleared! Final score: %d", report.Result.Score),
				Timestamp: now,
			})
		} else {
			events = append(events, GameEvent{
				Type:      "game_over",
				Message:   fmt.Sprintf("Out of mine steps. Final score: %d", report.Result.Score),
				Timestamp: now,
			})
		}
	}
	return events
}

func revealMessage(report *engine.RevealReport) string {
	var parts []string
	switch {
	case report.TimedOut:
		return fmt.Sprintf("Time is up. Final score: %d", report.Score)
	case report.Outcome.Empty():
		return "Nothing happened: the cell is flagged, already revealed or off the board"
	case report.Outcome.HitMine:
		parts = append(parts, fmt.Sprintf("Boom! Mines stepped: %d", report.MinesStepped))
	default:
		parts = append(parts, fmt.Sprintf("Revealed %d cell(s)", len(report.Outcome.Revealed)))
	}
	if len(report.CompletedWords) > 0 {
		parts = append(parts, "completed "+strings.Join(report.CompletedWords, ", "))
	}
	switch report.State {
	case engine.StateWon:
		parts = append(parts, "you won")
	case engine.StateLost:
		parts = append(parts, "game over")
	}
	parts = append(parts, fmt.Sprintf("score %d", report.Score))
	return strings.Join(parts, "; ")
}
