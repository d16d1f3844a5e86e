package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/wordweeper/game/engine"
	"github.com/wricardo/wordweeper/game/words"
)

func createValidConfig() *engine.Preset {
	return &engine.Preset{
		Name:        "Test Config",
		Description: "Test configuration",
		Difficulty:  engine.Hard,
		Mode:        engine.ModeTimed,
	}
}

func writeConfigFile(t *testing.T, dir, name string, preset *engine.Preset) {
	t.Helper()
	data, err := json.MarshalIndent(preset, "", "  ")
	require.NoError(t, err)

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), data, 0644))
}

func TestNewManager(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := NewManager(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("empty directory uses built-in default", func(t *testing.T) {
		m, err := NewManager(t.TempDir())
		require.NoError(t, err)
		def := m.GetDefault()
		require.NotNil(t, def)
		assert.Equal(t, engine.Easy, def.Difficulty)
		assert.Equal(t, engine.ModeClassic, def.Mode)
	})

	t.Run("classic preferred as default", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "aaa", createValidConfig())
		classic := createValidConfig()
		classic.Name = "Classic"
		classic.Difficulty = engine.Expert
		classic.Mode = engine.ModeClassic
		writeConfigFile(t, dir, "classic", classic)

		m, err := NewManager(dir)
		require.NoError(t, err)
		assert.Equal(t, "Classic", m.GetDefault().Name)
	})

	t.Run("first valid preset without classic", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "hard", createValidConfig())
		m, err := NewManager(dir)
		require.NoError(t, err)
		assert.Equal(t, "Test Config", m.GetDefault().Name)
	})
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "valid", createValidConfig())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad_difficulty.json"),
		[]byte(`{"name":"x","difficulty":"legendary"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "limit_on_classic.json"),
		[]byte(`{"name":"x","difficulty":"easy","mode":"classic","time_limit_seconds":30}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "no_mode.json"),
		[]byte(`{"name":"x","difficulty":"expert"}`), 0644))

	m, err := NewManager(dir)
	require.NoError(t, err)

	preset, err := m.LoadConfig("valid")
	require.NoError(t, err)
	assert.Equal(t, engine.Hard, preset.Difficulty)
	assert.Equal(t, engine.ModeTimed, preset.Mode)

	again, err := m.LoadConfig("valid.json")
	require.NoError(t, err)
	assert.Same(t, preset, again, "cached preset is reused")

	preset, err = m.LoadConfig("no_mode")
	require.NoError(t, err)
	assert.Equal(t, engine.ModeClassic, preset.Mode)

	_, err = m.LoadConfig("missing")
	assert.ErrorIs(t, err, ErrConfigNotFound)

	for _, name := range []string{"broken", "bad_difficulty", "limit_on_classic", "../etc/passwd", "a/b", ""} {
		_, err = m.LoadConfig(name)
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
	}
}

func TestListConfigsSkipsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "one", createValidConfig())
	writeConfigFile(t, dir, "two", createValidConfig())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	m, err := NewManager(dir)
	require.NoError(t, err)

	configs, err := m.ListConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "one", configs[0].ConfigID)
	assert.Equal(t, "one.json", configs[0].Filename)
	assert.Equal(t, 12, configs[0].Rows)
	assert.Equal(t, 22, configs[0].Mines)
	assert.Equal(t, 2, configs[0].AllowedMineSteps)
}

func TestSaveConfig(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	require.NoError(t, err)

	require.NoError(t, m.SaveConfig("mine", createValidConfig()))
	_, err = os.Stat(filepath.Join(dir, "mine.json"))
	require.NoError(t, err)

	loaded, err := m.LoadConfig("mine")
	require.NoError(t, err)
	assert.Equal(t, "Test Config", loaded.Name)

	bad := createValidConfig()
	bad.Name = ""
	assert.ErrorIs(t, m.SaveConfig("bad", bad), ErrInvalidConfig)
	assert.ErrorIs(t, m.SaveConfig("../escape", createValidConfig()), ErrInvalidConfig)
}

func TestSetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "other", createValidConfig())
	m, err := NewManager(dir)
	require.NoError(t, err)

	require.NoError(t, m.SetDefault("other"))
	assert.Equal(t, engine.Hard, m.GetDefault().Difficulty)
	assert.Error(t, m.SetDefault("missing"))

	updated := createValidConfig()
	updated.Difficulty = engine.Expert
	writeConfigFile(t, dir, "other", updated)
	require.NoError(t, m.RefreshCache())

	reloaded, err := m.LoadConfig("other")
	require.NoError(t, err)
	assert.Equal(t, engine.Expert, reloaded.Difficulty)
}

func TestWordSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lists"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lists", "tiny.txt"), []byte("cat\ndog\nowl\n"), 0644))

	m, err := NewManager(dir)
	require.NoError(t, err)

	t.Setenv(words.EnvWordsFile, "")
	src, err := m.WordSource(m.GetDefault())
	require.NoError(t, err)
	assert.Same(t, words.Default(), src)

	preset := createValidConfig()
	preset.WordList = "lists/tiny.txt"
	src, err = m.WordSource(preset)
	require.NoError(t, err)
	candidates, err := src.Candidates(3, 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"CAT", "DOG", "OWL"}, candidates)

	again, err := m.WordSource(preset)
	require.NoError(t, err)
	assert.Same(t, src, again)

	preset.WordList = "lists/missing.txt"
	_, err = m.WordSource(preset)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestWordSourceCachesEnvList(t *testing.T) {
	listPath := filepath.Join(t.TempDir(), "env.txt")
	require.NoError(t, os.WriteFile(listPath, []byte("apple\ngrape\nlemon\n"), 0644))
	t.Setenv(words.EnvWordsFile, listPath)

	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	src, err := m.WordSource(m.GetDefault())
	require.NoError(t, err)
	candidates, err := src.Candidates(5, 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"APPLE", "GRAPE", "LEMON"}, candidates)

	// later sessions reuse the parsed list without touching the file
	require.NoError(t, os.Remove(listPath))
	again, err := m.WordSource(nil)
	require.NoError(t, err)
	assert.Same(t, src, again)

	require.NoError(t, m.RefreshCache())
	_, err = m.WordSource(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestShippedPresets(t *testing.T) {
	m, err := NewManager(filepath.Join("..", "..", "configs"))
	require.NoError(t, err)

	configs, err := m.ListConfigs()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(configs), 7)
	assert.Equal(t, "Classic", m.GetDefault().Name)

	for _, info := range configs {
		preset, err := m.LoadConfig(info.ConfigID)
		require.NoError(t, err, info.ConfigID)
		src, err := m.WordSource(preset)
		require.NoError(t, err, info.ConfigID)

		board, err := engine.NewGenerator(src, engine.NewRandom(7)).GenerateWithRetry(preset.Difficulty.Config())
		require.NoError(t, err, info.ConfigID)
		assert.NotEmpty(t, board.Words)
	}
}

func TestConcurrentLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "shared", createValidConfig())
	m, err := NewManager(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.LoadConfig("shared"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.False(t, errors.Is(err, ErrConfigNotFound))
		t.Error(err)
	}
}
