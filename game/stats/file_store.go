package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/wordweeper/game/engine"
)

// FileStore keeps one JSON file per user in a directory
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) Register(ctx context.Context, userID string) (*UserStats, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, err := os.Stat(fs.path(userID)); err == nil {
		return nil, ErrUserExists
	}
	u := NewUserStats(userID)
	if err := fs.write(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (fs *FileStore) Get(ctx context.Context, userID string) (*UserStats, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.read(userID)
}

func (fs *FileStore) List(ctx context.Context) ([]*UserStats, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats directory: %w", err)
	}

	users := []*UserStats{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		u, err := fs.read(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			// Skip unreadable files
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users, nil
}

func (fs *FileStore) Record(ctx context.Context, userID string, result engine.SessionResult) (*UserStats, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	u, err := fs.read(userID)
	if err != nil {
		return nil, err
	}
	u.Merge(result)
	if err := fs.write(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (fs *FileStore) Close() error { return nil }

func (fs *FileStore) path(userID string) string {
	return filepath.Join(fs.dir, fmt.Sprintf("%s.json", strings.ToLower(userID)))
}

func (fs *FileStore) read(userID string) (*UserStats, error) {
	data, err := os.ReadFile(fs.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to read stats file: %w", err)
	}
	var u UserStats
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats for %s: %w", userID, err)
	}
	return &u, nil
}

// write replaces the user's file through a temp file and rename
func (fs *FileStore) write(u *UserStats) error {
	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	tmp := fs.path(u.UserID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write stats file: %w", err)
	}
	if err := os.Rename(tmp, fs.path(u.UserID)); err != nil {
		return fmt.Errorf("failed to replace stats file: %w", err)
	}
	return nil
}
