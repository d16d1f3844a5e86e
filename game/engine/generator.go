package engine

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

const (
	// MaxPlacementAttempts bounds the random start/direction draws per word
	MaxPlacementAttempts = 50
	// MaxGenerationAttempts bounds full regenerations in GenerateWithRetry
	MaxGenerationAttempts = 3
)

// WordSource supplies uppercase candidate words within a length range
type WordSource interface {
	Candidates(minLen, maxLen int) ([]string, error)
}

// Generator builds boards from a word source and a random source
type Generator struct {
	words WordSource
	rng   Random
}

// NewGenerator creates a generator; a nil rng is replaced by a time-seeded one
func NewGenerator(words WordSource, rng Random) *Generator {
	if rng == nil {
		rng = NewTimeSeededRandom()
	}
	return &Generator{words: words, rng: rng}
}

// Generate builds a board for a difficulty from the fixed table
func (g *Generator) Generate(d Difficulty) (*Board, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: unknown difficulty %d", ErrConfiguration, int(d))
	}
	return g.GenerateConfig(d.Config())
}

// GenerateConfig builds a board: words first, then mines on the remaining
// cells, then adjacency counts.
func (g *Generator) GenerateConfig(cfg DifficultyConfig) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if g.words == nil {
		return nil, fmt.Errorf("%w: no word source", ErrConfiguration)
	}

	candidates, err := g.words.Candidates(cfg.MinWordLength, cfg.MaxWordLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	pool := make([]string, len(candidates))
	copy(pool, candidates)
	g.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	board := NewBoard(cfg.Rows, cfg.Cols)
	target := cfg.MinWords + g.rng.IntN(cfg.MaxWords-cfg.MinWords+1)
	used := mapset.New[string]()

	for _, text := range pool {
		if len(board.Words) >= target {
			break
		}
		if used.Has(text) {
			continue
		}
		if g.placeWord(board, text) {
			used.Put(text)
		}
	}
	if len(board.Words) == 0 {
		return nil, fmt.Errorf("%w: no word from %d candidates fit a %dx%d grid",
			ErrGeneration, len(pool), cfg.Rows, cfg.Cols)
	}

	if err := g.scatterMines(board, cfg.MineCount()); err != nil {
		return nil, err
	}
	board.ComputeAdjacency()
	return board, nil
}

// placeWord tries random starts and directions for one word
func (g *Generator) placeWord(board *Board, text string) bool {
	for attempt := 0; attempt < MaxPlacementAttempts; attempt++ {
		start := Position{Row: g.rng.IntN(board.Rows), Col: g.rng.IntN(board.Cols)}
		dir := Directions[g.rng.IntN(len(Directions))]
		if !board.CanPlaceWord(text, start, dir) {
			continue
		}
		if _, err := board.PlaceWord(text, start, dir); err == nil {
			return true
		}
	}
	return false
}

func (g *Generator) scatterMines(board *Board, count int) error {
	free := make([]Position, 0, board.Rows*board.Cols)
	for r := range board.Grid {
		for c := range board.Grid[r] {
			if !board.Grid[r][c].HasLetter() {
				free = append(free, Position{Row: r, Col: c})
			}
		}
	}
	if count > len(free) {
		return fmt.Errorf("%w: %d mines do not fit %d free cells", ErrGeneration, count, len(free))
	}
	g.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	for _, p := range free[:count] {
		if err := board.PlaceMine(p); err != nil {
			return fmt.Errorf("%w: %v", ErrGeneration, err)
		}
	}
	return nil
}

// GenerateWithRetry regenerates with fresh randomness on ErrGeneration, up to
// MaxGenerationAttempts times. Configuration errors are returned immediately.
func (g *Generator) GenerateWithRetry(cfg DifficultyConfig) (*Board, error) {
	var lastErr error
	for attempt := 0; attempt < MaxGenerationAttempts; attempt++ {
		board, err := g.GenerateConfig(cfg)
		if err == nil {
			return board, nil
		}
		if !errors.Is(err, ErrGeneration) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d attempts: %w", MaxGenerationAttempts, lastErr)
}
