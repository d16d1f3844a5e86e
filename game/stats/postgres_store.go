package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wricardo/wordweeper/game/engine"
)

const userStatsSchema = `
CREATE TABLE IF NOT EXISTS user_stats (
	user_key              TEXT PRIMARY KEY,
	user_id               TEXT NOT NULL,
	games_played          INTEGER NOT NULL DEFAULT 0,
	games_won             INTEGER NOT NULL DEFAULT 0,
	words_revealed        INTEGER NOT NULL DEFAULT 0,
	longest_word_revealed TEXT NOT NULL DEFAULT '',
	mines_stepped         INTEGER NOT NULL DEFAULT 0,
	highest_score_classic INTEGER NOT NULL DEFAULT 0,
	highest_score_timed   INTEGER NOT NULL DEFAULT 0,
	min_steps_used        INTEGER NOT NULL DEFAULT 0,
	total_steps_used      INTEGER NOT NULL DEFAULT 0,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const userStatsColumns = `user_id, games_played, games_won, words_revealed, longest_word_revealed,
	mines_stepped, highest_score_classic, highest_score_timed, min_steps_used, total_steps_used,
	created_at, updated_at`

// PostgresStore keeps statistics in a user_stats table
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore connects to dsn and creates the table if missing
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	store := &PostgresStore{db: db}
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Migrate creates the user_stats table
func (ps *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := ps.db.Exec(ctx, userStatsSchema); err != nil {
		return fmt.Errorf("failed to create user_stats table: %w", err)
	}
	return nil
}

func scanUserStats(row pgx.Row) (*UserStats, error) {
	var u UserStats
	err := row.Scan(
		&u.UserID,
		&u.GamesPlayed,
		&u.GamesWon,
		&u.WordsRevealed,
		&u.LongestWordRevealed,
		&u.MinesStepped,
		&u.HighestScoreClassic,
		&u.HighestScoreTimed,
		&u.MinStepsUsed,
		&u.TotalStepsUsed,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan stats: %w", err)
	}
	return &u, nil
}

func (ps *PostgresStore) Register(ctx context.Context, userID string) (*UserStats, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	u := NewUserStats(userID)
	tag, err := ps.db.Exec(ctx,
		`INSERT INTO user_stats (user_key, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_key) DO NOTHING`,
		strings.ToLower(userID), userID, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrUserExists
	}
	return u, nil
}

func (ps *PostgresStore) Get(ctx context.Context, userID string) (*UserStats, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	row := ps.db.QueryRow(ctx,
		`SELECT `+userStatsColumns+` FROM user_stats WHERE user_key = $1`,
		strings.ToLower(userID),
	)
	return scanUserStats(row)
}

func (ps *PostgresStore) List(ctx context.Context) ([]*UserStats, error) {
	rows, err := ps.db.Query(ctx, `SELECT `+userStatsColumns+` FROM user_stats ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*UserStats{}
	for rows.Next() {
		u, err := scanUserStats(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Record locks the user's row, merges the result and writes it back
func (ps *PostgresStore) Record(ctx context.Context, userID string, result engine.SessionResult) (*UserStats, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}

	tx, err := ps.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	key := strings.ToLower(userID)
	u, err := scanUserStats(tx.QueryRow(ctx,
		`SELECT `+userStatsColumns+` FROM user_stats WHERE user_key = $1 FOR UPDATE`, key))
	if err != nil {
		return nil, err
	}
	u.Merge(result)

	_, err = tx.Exec(ctx,
		`UPDATE user_stats SET
			games_played = $2, games_won = $3, words_revealed = $4, longest_word_revealed = $5,
			mines_stepped = $6, highest_score_classic = $7, highest_score_timed = $8,
			min_steps_used = $9, total_steps_used = $10, updated_at = $11
		 WHERE user_key = $1`,
		key, u.GamesPlayed, u.GamesWon, u.WordsRevealed, u.LongestWordRevealed,
		u.MinesStepped, u.HighestScoreClassic, u.HighestScoreTimed,
		u.MinStepsUsed, u.TotalStepsUsed, u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stats: %w", err)
	}
	return u, nil
}

func (ps *PostgresStore) Close() error {
	ps.db.Close()
	return nil
}
