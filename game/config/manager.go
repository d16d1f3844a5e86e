package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/wordweeper/game/engine"
	"github.com/wricardo/wordweeper/game/service"
	"github.com/wricardo/wordweeper/game/words"
	"github.com/wricardo/wordweeper/logging"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Manager handles preset loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.Preset
	configs       map[string]*engine.Preset
	wordLists     map[string]*words.List
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.Preset),
		wordLists: make(map[string]*words.List),
	}

	// Load default config
	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// validName rejects names that would escape the config directory
func validName(name string) error {
	base := strings.TrimSuffix(name, ".json")
	if base == "" || strings.ContainsAny(base, `/\`) || strings.Contains(base, "..") {
		return fmt.Errorf("%w: invalid preset name %q", ErrInvalidConfig, name)
	}
	return nil
}

// LoadConfig loads a preset by name
func (m *Manager) LoadConfig(name string) (*engine.Preset, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	name = strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	configPath := filepath.Join(m.configDir, name+".json")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var preset engine.Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, name, err)
	}
	if err := engine.ValidatePreset(&preset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	preset.Mode, _ = engine.ParseMode(string(preset.Mode))

	m.configs[name] = &preset
	return &preset, nil
}

// ListConfigs returns information about all available presets
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")

		preset, err := m.LoadConfig(name)
		if err != nil {
			logging.Log.WithError(err).WithField("preset", name).Warn("skipping invalid preset")
			continue
		}

		configs = append(configs, service.NewConfigInfo(entry.Name(), name, preset))
	}

	return configs, nil
}

// GetDefault returns the default preset
func (m *Manager) GetDefault() *engine.Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default preset by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached presets and word lists and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.Preset)
	m.wordLists = make(map[string]*words.List)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig loads the default preset
func (m *Manager) loadDefaultConfig() error {
	// Try to load classic.json as default
	config, err := m.LoadConfig("classic")
	if err != nil {
		// Try to load the first available config
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			m.setDefault(m.createMinimalConfig())
			return nil
		}

		config, err = m.LoadConfig(configs[0].ConfigID)
		if err != nil {
			m.setDefault(m.createMinimalConfig())
			return nil
		}
	}

	m.setDefault(config)
	return nil
}

func (m *Manager) setDefault(p *engine.Preset) {
	m.mu.Lock()
	m.defaultConfig = p
	m.mu.Unlock()
}

// SaveConfig saves a preset to disk
func (m *Manager) SaveConfig(name string, preset *engine.Preset) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := engine.ValidatePreset(preset); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	name = strings.TrimSuffix(name, ".json")

	configPath := filepath.Join(m.configDir, name+".json")

	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = preset
	m.mu.Unlock()

	return nil
}

// envWordListKey prefixes the cache key of the process-wide word list file
const envWordListKey = "env:"

// WordSource returns the word list a preset draws from: its own file,
// resolved under the config directory, or the process-wide list. Loaded
// files are cached until RefreshCache.
func (m *Manager) WordSource(preset *engine.Preset) (engine.WordSource, error) {
	if preset == nil || preset.WordList == "" {
		path := os.Getenv(words.EnvWordsFile)
		if path == "" {
			return words.Default(), nil
		}
		return m.cachedWordList(envWordListKey+path, path)
	}
	return m.cachedWordList(preset.WordList, filepath.Join(m.configDir, preset.WordList))
}

func (m *Manager) cachedWordList(key, path string) (*words.List, error) {
	m.mu.RLock()
	list, ok := m.wordLists[key]
	m.mu.RUnlock()
	if ok {
		return list, nil
	}

	list, err := words.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.mu.Lock()
	m.wordLists[key] = list
	m.mu.Unlock()
	return list, nil
}

// createMinimalConfig creates the built-in classic preset
func (m *Manager) createMinimalConfig() *engine.Preset {
	return &engine.Preset{
		Name:        "default",
		Description: "Classic easy board",
		Difficulty:  engine.Easy,
		Mode:        engine.ModeClassic,
	}
}
