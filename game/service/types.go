package service

import (
	"time"

	"github.com/wricardo/wordweeper/game/engine"
	"github.com/wricardo/wordweeper/game/stats"
)

// CreateSessionRequest selects a preset, or an ad hoc difficulty and mode
type CreateSessionRequest struct {
	PresetID   string  `json:"preset_id,omitempty"`
	Difficulty string  `json:"difficulty,omitempty"`
	Mode       string  `json:"mode,omitempty"`
	UserID     string  `json:"user_id,omitempty"`
	Seed       *uint64 `json:"seed,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID               string                `json:"id"`
	PresetID         string                `json:"preset_id"`
	UserID           string                `json:"user_id,omitempty"`
	Difficulty       engine.Difficulty     `json:"difficulty"`
	Mode             engine.Mode           `json:"mode"`
	State            engine.State          `json:"state"`
	Score            int                   `json:"score"`
	Seed             uint64                `json:"seed"`
	CreatedAt        time.Time             `json:"created_at"`
	LastAccessedAt   time.Time             `json:"last_accessed_at"`
	Board            *engine.BoardView     `json:"board,omitempty"`
	Result           *engine.SessionResult `json:"result,omitempty"`
	Preset           *engine.Preset        `json:"preset,omitempty"`
	RemainingSeconds *float64              `json:"remaining_seconds,omitempty"`
}

// RevealResult contains the result of a reveal operation
type RevealResult struct {
	Report     *engine.RevealReport `json:"report"`
	Board      engine.BoardView     `json:"board"`
	Message    string               `json:"message"`
	Events     []GameEvent          `json:"events,omitempty"`
	Stats      *stats.UserStats     `json:"stats,omitempty"`
	StatsError string               `json:"stats_error,omitempty"`
}

// FlagResult contains the result of a flag toggle
type FlagResult struct {
	Position engine.Position       `json:"position"`
	Flagged  bool                  `json:"flagged"`
	Board    engine.BoardView      `json:"board"`
	Result   *engine.SessionResult `json:"result,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "reveal", "cascade", "mine", "word_completed", "victory", "game_over", "timeout", "abandoned"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures reveal history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated reveal history
type HistoryResponse struct {
	Reveals      []engine.RevealRecord `json:"reveals"`
	TotalReveals int                   `json:"total_reveals"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"page_size"`
	TotalPages   int                   `json:"total_pages"`
	HasNext      bool                  `json:"has_next"`
	HasPrevious  bool                  `json:"has_previous"`
}

// ConfigInfo provides information about a preset
type ConfigInfo struct {
	Filename         string            `json:"filename"`
	ConfigID         string            `json:"config_id"` // The identifier to use for session creation
	Name             string            `json:"name"`      // Display name
	Description      string            `json:"description"`
	Difficulty       engine.Difficulty `json:"difficulty"`
	Mode             engine.Mode       `json:"mode"`
	TimeLimitSeconds int               `json:"time_limit_seconds,omitempty"`
	WordList         string            `json:"word_list,omitempty"`
	Rows             int               `json:"rows"`
	Cols             int               `json:"cols"`
	Mines            int               `json:"mines"`
	AllowedMineSteps int               `json:"allowed_mine_steps"`
}

// DifficultyInfo describes one row of the difficulty table
type DifficultyInfo struct {
	Name              string  `json:"name"`
	Rows              int     `json:"rows"`
	Cols              int     `json:"cols"`
	MineDensity       float64 `json:"mine_density"`
	Mines             int     `json:"mines"`
	MinWords          int     `json:"min_words"`
	MaxWords          int     `json:"max_words"`
	MinWordLength     int     `json:"min_word_length"`
	MaxWordLength     int     `json:"max_word_length"`
	AllowedMineSteps  int     `json:"allowed_mine_steps"`
	TimeBudgetSeconds int     `json:"time_budget_seconds"`
}

// NewDifficultyInfo flattens a difficulty's configuration
func NewDifficultyInfo(d engine.Difficulty) DifficultyInfo {
	cfg := d.Config()
	return DifficultyInfo{
		Name:              d.String(),
		Rows:              cfg.Rows,
		Cols:              cfg.Cols,
		MineDensity:       cfg.MineDensity,
		Mines:             cfg.MineCount(),
		MinWords:          cfg.MinWords,
		MaxWords:          cfg.MaxWords,
		MinWordLength:     cfg.MinWordLength,
		MaxWordLength:     cfg.MaxWordLength,
		AllowedMineSteps:  cfg.AllowedMineSteps,
		TimeBudgetSeconds: int(cfg.TimeBudget.Seconds()),
	}
}

// NewConfigInfo summarises a preset stored under configID
func NewConfigInfo(filename, configID string, p *engine.Preset) *ConfigInfo {
	cfg := p.Difficulty.Config()
	return &ConfigInfo{
		Filename:         filename,
		ConfigID:         configID,
		Name:             p.Name,
		Description:      p.Description,
		Difficulty:       p.Difficulty,
		Mode:             p.Mode,
		TimeLimitSeconds: p.TimeLimitSeconds,
		WordList:         p.WordList,
		Rows:             cfg.Rows,
		Cols:             cfg.Cols,
		Mines:            cfg.MineCount(),
		AllowedMineSteps: cfg.AllowedMineSteps,
	}
}

// UserStatsInfo adds derived figures to stored statistics
type UserStatsInfo struct {
	*stats.UserStats
	AverageStepsUsed float64 `json:"average_steps_used"`
	WinRate          float64 `json:"win_rate"`
}

func newUserStatsInfo(u *stats.UserStats) *UserStatsInfo {
	return &UserStatsInfo{UserStats: u, AverageStepsUsed: u.AverageStepsUsed(), WinRate: u.WinRate()}
}
