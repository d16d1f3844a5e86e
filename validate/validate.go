// Command validate checks the game preset JSON files in a configs directory
// (../configs by default). It checks:
//   - JSON structure and required fields
//   - Difficulty, mode and time limit consistency
//   - The word list: it must load and offer words in the difficulty's length range
//   - Generation: sample boards must build, with words and mines never overlapping
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/wordweeper/game/engine"
	"github.com/wricardo/wordweeper/game/words"
)

// generationSamples is the number of seeded boards built per preset
const generationSamples = 20

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file. Word lists are
// resolved relative to the file's directory.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var preset engine.Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}
	if preset.Mode == "" {
		preset.Mode = engine.ModeClassic
	}

	if err := engine.ValidatePreset(&preset); err != nil {
		result.fail("%v", err)
		return result
	}

	cfg := preset.Difficulty.Config()
	source := words.Default()
	if preset.WordList != "" {
		source, err = words.Load(filepath.Join(filepath.Dir(filePath), preset.WordList))
		if err != nil {
			result.fail("Word list: %v", err)
			return result
		}
	}

	candidates, err := source.Candidates(cfg.MinWordLength, cfg.MaxWordLength)
	if err != nil {
		result.fail("Word list has no words of %d-%d letters", cfg.MinWordLength, cfg.MaxWordLength)
		return result
	}
	if len(candidates) < cfg.MaxWords {
		result.fail("Word list has %d words of %d-%d letters, need at least %d",
			len(candidates), cfg.MinWordLength, cfg.MaxWordLength, cfg.MaxWords)
		return result
	}

	generation := validateGeneration(cfg, source)
	if !generation.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, generation.Errors...)

	if result.Valid {
		result.info("Name: %s", preset.Name)
		result.info("Difficulty: %s (%dx%d, %d mines, %d mine steps)",
			preset.Difficulty, cfg.Rows, cfg.Cols, cfg.MineCount(), cfg.AllowedMineSteps)
		result.info("Mode: %s", preset.Mode)
		if preset.Mode == engine.ModeTimed {
			limit := preset.TimeLimitSeconds
			if limit == 0 {
				limit = int(cfg.TimeBudget.Seconds())
			}
			result.info("Time limit: %ds", limit)
		}
		result.info("Candidate words: %d", len(candidates))
	}

	return result
}

// validateGeneration builds seeded boards and checks the placement invariants:
// at least one word, the exact mine count, and no cell that is both a mine
// and a letter.
func validateGeneration(cfg engine.DifficultyConfig, source engine.WordSource) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	totalWords := 0
	for seed := uint64(1); seed <= generationSamples; seed++ {
		board, err := engine.NewGenerator(source, engine.NewRandom(seed)).GenerateWithRetry(cfg)
		if err != nil {
			if errors.Is(err, engine.ErrGeneration) {
				result.fail("Generation failed for seed %d: %v", seed, err)
				continue
			}
			result.fail("Configuration error: %v", err)
			return result
		}

		mines := 0
		for r := range board.Grid {
			for c := range board.Grid[r] {
				cell := board.Grid[r][c]
				if cell.Mine {
					mines++
					if cell.HasLetter() {
						result.fail("Seed %d: mine and letter share (%d,%d)", seed, r, c)
					}
				}
			}
		}
		if mines != cfg.MineCount() {
			result.fail("Seed %d: %d mines placed, want %d", seed, mines, cfg.MineCount())
		}
		if len(board.Words) == 0 {
			result.fail("Seed %d: no words placed", seed)
		}
		totalWords += len(board.Words)
	}

	if result.Valid {
		result.info("Generation: %d boards, %.1f words per board",
			generationSamples, float64(totalWords)/generationSamples)
	}
	return result
}

// main scans the configs directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are
// invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No presets found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All presets are valid!")
	} else {
		fmt.Println("❌ Some presets have errors")
		os.Exit(1)
	}
}
