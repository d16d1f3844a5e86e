package stats

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/wricardo/wordweeper/game/engine"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("user already exists")
	ErrInvalidUserID = errors.New("invalid user ID")
)

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)

// ValidateUserID checks that id is 3-32 letters, digits, '_' or '-'
func ValidateUserID(id string) error {
	if !userIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q must be 3-32 letters, digits, '_' or '-'", ErrInvalidUserID, id)
	}
	return nil
}

// UserStats is the persisted aggregate of every game a user finished
type UserStats struct {
	UserID              string    `json:"user_id"`
	GamesPlayed         int       `json:"games_played"`
	GamesWon            int       `json:"games_won"`
	WordsRevealed       int       `json:"words_revealed"`
	LongestWordRevealed string    `json:"longest_word_revealed"`
	MinesStepped        int       `json:"mines_stepped"`
	HighestScoreClassic int       `json:"highest_score_classic"`
	HighestScoreTimed   int       `json:"highest_score_timed"`
	MinStepsUsed        int       `json:"min_steps_used"`
	TotalStepsUsed      int       `json:"total_steps_used"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewUserStats returns empty statistics for a new user
func NewUserStats(userID string) *UserStats {
	now := time.Now().UTC()
	return &UserStats{UserID: userID, CreatedAt: now, UpdatedAt: now}
}

// Merge folds one finished game into the aggregate. Counters accumulate,
// highest scores and the longest word keep the maximum, and MinStepsUsed
// keeps the minimum over games that used at least one step (0 means none yet).
func (u *UserStats) Merge(r engine.SessionResult) {
	u.GamesPlayed += max(r.GamesPlayed, 1)
	if r.Won {
		u.GamesWon++
	}
	u.WordsRevealed += r.WordsRevealed
	if len(r.LongestWordRevealed) > len(u.LongestWordRevealed) {
		u.LongestWordRevealed = r.LongestWordRevealed
	}
	u.MinesStepped += r.MinesStepped

	switch r.Mode {
	case engine.ModeTimed:
		u.HighestScoreTimed = max(u.HighestScoreTimed, r.Score)
	default:
		u.HighestScoreClassic = max(u.HighestScoreClassic, r.Score)
	}

	if r.StepsUsed > 0 && (u.MinStepsUsed == 0 || r.StepsUsed < u.MinStepsUsed) {
		u.MinStepsUsed = r.StepsUsed
	}
	u.TotalStepsUsed += r.StepsUsed

	if !r.FinishedAt.IsZero() {
		u.UpdatedAt = r.FinishedAt.UTC()
	} else {
		u.UpdatedAt = time.Now().UTC()
	}
}

// AverageStepsUsed returns TotalStepsUsed / GamesPlayed, or 0 with no games
func (u *UserStats) AverageStepsUsed() float64 {
	if u.GamesPlayed == 0 {
		return 0
	}
	return float64(u.TotalStepsUsed) / float64(u.GamesPlayed)
}

// WinRate returns the fraction of games won
func (u *UserStats) WinRate() float64 {
	if u.GamesPlayed == 0 {
		return 0
	}
	return float64(u.GamesWon) / float64(u.GamesPlayed)
}

// Store persists per-user statistics
type Store interface {
	// Register creates empty statistics; ErrUserExists if already present
	Register(ctx context.Context, userID string) (*UserStats, error)

	// Get returns a user's statistics or ErrUserNotFound
	Get(ctx context.Context, userID string) (*UserStats, error)

	// List returns every user ordered by user ID
	List(ctx context.Context) ([]*UserStats, error)

	// Record merges a finished game into a registered user's statistics
	Record(ctx context.Context, userID string, result engine.SessionResult) (*UserStats, error)

	// Close releases backend resources
	Close() error
}
