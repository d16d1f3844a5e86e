package engine

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	// MaxTimeLimitSeconds caps preset time limit overrides
	MaxTimeLimitSeconds = 3600
)

// Preset is a named, saved game setup loaded from a JSON file
type Preset struct {
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Difficulty       Difficulty `json:"difficulty"`
	Mode             Mode       `json:"mode"`
	TimeLimitSeconds int        `json:"time_limit_seconds,omitempty"`
	WordList         string     `json:"word_list,omitempty"`
}

// ValidatePreset checks a preset's fields
func ValidatePreset(p *Preset) error {
	if p == nil {
		return fmt.Errorf("%w: preset cannot be nil", ErrConfiguration)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: preset name cannot be empty", ErrConfiguration)
	}
	if !p.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %d", ErrConfiguration, int(p.Difficulty))
	}
	mode, err := ParseMode(string(p.Mode))
	if err != nil {
		return err
	}
	if p.TimeLimitSeconds < 0 || p.TimeLimitSeconds > MaxTimeLimitSeconds {
		return fmt.Errorf("%w: time limit %ds must be within 0-%d", ErrConfiguration, p.TimeLimitSeconds, MaxTimeLimitSeconds)
	}
	if p.TimeLimitSeconds > 0 && mode != ModeTimed {
		return fmt.Errorf("%w: time limit only applies to timed mode", ErrConfiguration)
	}
	if p.WordList != "" && (filepath.IsAbs(p.WordList) || strings.Contains(p.WordList, "..")) {
		return fmt.Errorf("%w: word list %q must be a relative file name", ErrConfiguration, p.WordList)
	}
	return p.Difficulty.Config().Validate()
}

// Options converts the preset into GameOptions
func (p *Preset) Options(clock Clock) GameOptions {
	mode, _ := ParseMode(string(p.Mode))
	return GameOptions{
		Difficulty: p.Difficulty,
		Mode:       mode,
		TimeBudget: time.Duration(p.TimeLimitSeconds) * time.Second,
		Clock:      clock,
	}
}
