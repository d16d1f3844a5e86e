package engine

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Difficulty is the closed set of board parameter bundles
type Difficulty int

const (
	Easy Difficulty = iota
	Hard
	Expert
)

// DifficultyConfig is the fixed parameter record for a difficulty
type DifficultyConfig struct {
	Rows             int           `json:"rows"`
	Cols             int           `json:"cols"`
	MineDensity      float64       `json:"mine_density"`
	MinWords         int           `json:"min_words"`
	MaxWords         int           `json:"max_words"`
	MinWordLength    int           `json:"min_word_length"`
	MaxWordLength    int           `json:"max_word_length"`
	AllowedMineSteps int           `json:"allowed_mine_steps"`
	TimeBudget       time.Duration `json:"-"`
}

var difficultyTable = map[Difficulty]DifficultyConfig{
	Easy: {
		Rows: 9, Cols: 9, MineDensity: 0.10,
		MinWords: 2, MaxWords: 3, MinWordLength: 3, MaxWordLength: 5,
		AllowedMineSteps: 3, TimeBudget: 3 * time.Minute,
	},
	Hard: {
		Rows: 12, Cols: 12, MineDensity: 0.15,
		MinWords: 3, MaxWords: 5, MinWordLength: 4, MaxWordLength: 7,
		AllowedMineSteps: 2, TimeBudget: 5 * time.Minute,
	},
	Expert: {
		Rows: 16, Cols: 16, MineDensity: 0.18,
		MinWords: 4, MaxWords: 6, MinWordLength: 5, MaxWordLength: 8,
		AllowedMineSteps: 1, TimeBudget: 7 * time.Minute,
	},
}

// Difficulties lists every difficulty in ascending order
func Difficulties() []Difficulty {
	return []Difficulty{Easy, Hard, Expert}
}

// Config returns the parameter record for d
func (d Difficulty) Config() DifficultyConfig {
	return difficultyTable[d]
}

// Valid reports whether d is a known difficulty
func (d Difficulty) Valid() bool {
	_, ok := difficultyTable[d]
	return ok
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Hard:
		return "hard"
	case Expert:
		return "expert"
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

// ParseDifficulty parses a case-insensitive difficulty name
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "hard":
		return Hard, nil
	case "expert":
		return Expert, nil
	}
	return Easy, fmt.Errorf("%w: unknown difficulty %q", ErrConfiguration, s)
}

func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: unknown difficulty %d", ErrConfiguration, int(d))
	}
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Cells returns the total number of cells on the board
func (c DifficultyConfig) Cells() int {
	return c.Rows * c.Cols
}

// MineCount returns round(density * cells)
func (c DifficultyConfig) MineCount() int {
	return int(math.Round(c.MineDensity * float64(c.Cells())))
}

// Validate checks that the parameters can produce a board
func (c DifficultyConfig) Validate() error {
	if c.Rows < MinGridSize || c.Rows > MaxGridSize || c.Cols < MinGridSize || c.Cols > MaxGridSize {
		return fmt.Errorf("%w: grid %dx%d must be within %d-%d", ErrConfiguration, c.Rows, c.Cols, MinGridSize, MaxGridSize)
	}
	if c.MineDensity < 0 || c.MineDensity >= 1 {
		return fmt.Errorf("%w: mine density %.2f must be in [0,1)", ErrConfiguration, c.MineDensity)
	}
	if c.MinWords < 1 || c.MaxWords < c.MinWords {
		return fmt.Errorf("%w: word count range %d-%d is empty", ErrConfiguration, c.MinWords, c.MaxWords)
	}
	if c.MinWordLength < 2 || c.MaxWordLength < c.MinWordLength {
		return fmt.Errorf("%w: word length range %d-%d is empty", ErrConfiguration, c.MinWordLength, c.MaxWordLength)
	}
	if c.MaxWordLength > c.Rows && c.MaxWordLength > c.Cols {
		return fmt.Errorf("%w: words of length %d do not fit a %dx%d grid", ErrConfiguration, c.MaxWordLength, c.Rows, c.Cols)
	}
	if c.AllowedMineSteps < 1 {
		return fmt.Errorf("%w: allowed mine steps must be positive", ErrConfiguration)
	}
	if c.MineCount()+c.MaxWords*c.MaxWordLength > c.Cells() {
		return fmt.Errorf("%w: %d mines plus up to %d letter cells exceed %d cells",
			ErrConfiguration, c.MineCount(), c.MaxWords*c.MaxWordLength, c.Cells())
	}
	return nil
}

// Mode selects how the final score is computed
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeTimed   Mode = "timed"
)

// ParseMode parses a case-insensitive mode name; empty means classic
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeClassic:
		return ModeClassic, nil
	case ModeTimed:
		return ModeTimed, nil
	}
	return ModeClassic, fmt.Errorf("%w: unknown mode %q", ErrConfiguration, s)
}
