package stats

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by Open
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config selects and configures a statistics backend
type Config struct {
	Backend       string
	Dir           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string
}

// Open returns the Store named by cfg.Backend; empty means file
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		dir := cfg.Dir
		if dir == "" {
			dir = "data/users"
		}
		return NewFileStore(dir)
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis backend requires REDIS_ADDR")
		}
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres backend requires DATABASE_URL")
		}
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	}
	return nil, fmt.Errorf("unknown stats backend %q (want file, redis or postgres)", cfg.Backend)
}
