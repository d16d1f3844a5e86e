package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/wordweeper/game/engine"
	"github.com/wricardo/wordweeper/game/stats"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrStatsUnavailable = errors.New("statistics store not configured")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) (*engine.SessionResult, error)
	CheckTimeouts(ctx context.Context) int

	// Game Operations
	Reveal(ctx context.Context, sessionID string, pos engine.Position) (*RevealResult, error)
	Flag(ctx context.Context, sessionID string, pos engine.Position) (*FlagResult, error)

	// Game State
	GetBoard(ctx context.Context, sessionID string) (*engine.BoardView, error)
	GetRevealHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.Preset, error)
	SaveConfig(ctx context.Context, configName string, preset *engine.Preset) error
	ListDifficulties(ctx context.Context) []DifficultyInfo

	// Users
	RegisterUser(ctx context.Context, userID string) (*stats.UserStats, error)
	GetUserStats(ctx context.Context, userID string) (*UserStatsInfo, error)
	ListUsers(ctx context.Context) ([]*UserStatsInfo, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, init SessionInit) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
	Count() int
}

// ConfigManager handles preset loading and word list resolution
type ConfigManager interface {
	LoadConfig(name string) (*engine.Preset, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.Preset
	SaveConfig(name string, preset *engine.Preset) error
	WordSource(preset *engine.Preset) (engine.WordSource, error)
}

// SessionInit carries everything needed to register a new session
type SessionInit struct {
	UserID   string
	PresetID string
	Preset   *engine.Preset
	Game     *engine.Game
	Seed     uint64
}

// Session represents an active game session
type Session struct {
	ID             string
	UserID         string
	PresetID       string
	Preset         *engine.Preset
	Game           *engine.Game
	Seed           uint64
	Recorded       bool
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
