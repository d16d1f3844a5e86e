package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/wricardo/wordweeper/game/engine"
)

const (
	redisKeyPrefix   = "wordweeper:user:"
	redisUsersSet    = "wordweeper:users"
	redisMaxTxRetry  = 10
	redisPingTimeout = 2 * time.Second
)

// RedisStore keeps each user's statistics as a JSON string
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects and pings the server
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

func redisKey(userID string) string {
	return redisKeyPrefix + strings.ToLower(userID)
}

func (rs *RedisStore) Register(ctx context.Context, userID string) (*UserStats, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	u := NewUserStats(userID)
	data, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stats: %w", err)
	}

	created, err := rs.client.SetNX(ctx, redisKey(userID), data, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	if !created {
		return nil, ErrUserExists
	}
	if err := rs.client.SAdd(ctx, redisUsersSet, strings.ToLower(userID)).Err(); err != nil {
		return nil, fmt.Errorf("failed to index user: %w", err)
	}
	return u, nil
}

func (rs *RedisStore) Get(ctx context.Context, userID string) (*UserStats, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	return rs.get(ctx, rs.client, userID)
}

type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (rs *RedisStore) get(ctx context.Context, c redisGetter, userID string) (*UserStats, error) {
	data, err := c.Get(ctx, redisKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	var u UserStats
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats for %s: %w", userID, err)
	}
	return &u, nil
}

func (rs *RedisStore) List(ctx context.Context) ([]*UserStats, error) {
	ids, err := rs.client.SMembers(ctx, redisUsersSet).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := []*UserStats{}
	for _, id := range ids {
		u, err := rs.get(ctx, rs.client, id)
		if err != nil {
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users, nil
}

// Record merges the result inside an optimistic WATCH transaction, retrying
// when another writer touched the key first.
func (rs *RedisStore) Record(ctx context.Context, userID string, result engine.SessionResult) (*UserStats, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}

	key := redisKey(userID)
	var merged *UserStats
	txf := func(tx *redis.Tx) error {
		u, err := rs.get(ctx, tx, userID)
		if err != nil {
			return err
		}
		u.Merge(result)
		data, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err == nil {
			merged = u
		}
		return err
	}

	for attempt := 0; attempt < redisMaxTxRetry; attempt++ {
		err := rs.client.Watch(ctx, txf, key)
		if err == nil {
			return merged, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("failed to record result for %s: too much contention", userID)
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
