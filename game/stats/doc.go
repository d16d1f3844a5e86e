// Package stats keeps per-user Wordweeper statistics.
//
// Every finished game produces an engine.SessionResult. Store.Record merges it
// into the user's UserStats: games, wins, words and mines accumulate, the
// highest score per mode and the longest word keep their maximum, and
// min_steps_used keeps the minimum. The average steps per game is derived.
//
// Three backends implement Store:
//   - FileStore: one JSON file per user (default, STATS_DIR)
//   - RedisStore: JSON values updated inside WATCH transactions (REDIS_ADDR)
//   - PostgresStore: a user_stats table updated with SELECT ... FOR UPDATE (DATABASE_URL)
//
// Open picks one from a Config, usually filled from STATS_BACKEND.
package stats
