// Command analyze prints quick, human-readable statistics about generated
// boards for every difficulty. For a batch of seeded boards it summarizes
// words placed, letter and mine cells, and how much of the board a first
// reveal in the centre uncovers.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/wricardo/wordweeper/game/engine"
	"github.com/wricardo/wordweeper/game/words"
)

// Analysis aggregates statistics over a batch of generated boards
type Analysis struct {
	Difficulty      engine.Difficulty
	Boards          int
	Failures        int
	TotalWords      int
	MinWords        int
	MaxWords        int
	TotalLetters    int
	TotalMines      int
	CenterMineHits  int
	TotalOpening    int
	LargestOpening  int
	WordLengthCount map[int]int
}

// AverageWords returns the mean number of words per board
func (a *Analysis) AverageWords() float64 {
	if a.Boards == 0 {
		return 0
	}
	return float64(a.TotalWords) / float64(a.Boards)
}

// AverageOpening returns the mean cells uncovered by a first centre reveal
func (a *Analysis) AverageOpening() float64 {
	if a.Boards == 0 {
		return 0
	}
	return float64(a.TotalOpening) / float64(a.Boards)
}

func analyzeDifficulty(d engine.Difficulty, source engine.WordSource, samples int) *Analysis {
	cfg := d.Config()
	a := &Analysis{
		Difficulty:      d,
		MinWords:        -1,
		WordLengthCount: make(map[int]int),
	}

	for seed := uint64(1); seed <= uint64(samples); seed++ {
		board, err := engine.NewGenerator(source, engine.NewRandom(seed)).GenerateWithRetry(cfg)
		if err != nil {
			a.Failures++
			continue
		}
		a.Boards++

		n := len(board.Words)
		a.TotalWords += n
		if a.MinWords == -1 || n < a.MinWords {
			a.MinWords = n
		}
		a.MaxWords = max(a.MaxWords, n)
		for _, w := range board.Words {
			a.WordLengthCount[len(w.Text)]++
		}
		a.TotalLetters += board.LetterCells()

		for r := range board.Grid {
			for c := range board.Grid[r] {
				if board.Grid[r][c].Mine {
					a.TotalMines++
				}
			}
		}

		center := engine.Position{Row: cfg.Rows / 2, Col: cfg.Cols / 2}
		outcome := engine.Reveal(board, center)
		if outcome.HitMine {
			a.CenterMineHits++
		}
		a.TotalOpening += len(outcome.Revealed)
		a.LargestOpening = max(a.LargestOpening, len(outcome.Revealed))
	}
	if a.MinWords == -1 {
		a.MinWords = 0
	}
	return a
}

func printAnalysis(w io.Writer, a *Analysis) {
	cfg := a.Difficulty.Config()
	fmt.Fprintf(w, "Grid: %d x %d, %d mines (%.0f%%), %d mine steps allowed\n",
		cfg.Rows, cfg.Cols, cfg.MineCount(), cfg.MineDensity*100, cfg.AllowedMineSteps)
	fmt.Fprintf(w, "Boards: %d generated, %d failed\n", a.Boards, a.Failures)
	if a.Boards == 0 {
		fmt.Fprintf(w, "⚠️  CRITICAL: no board could be generated\n")
		return
	}

	fmt.Fprintf(w, "Words per board: %.1f (min %d, max %d, target %d-%d)\n",
		a.AverageWords(), a.MinWords, a.MaxWords, cfg.MinWords, cfg.MaxWords)
	fmt.Fprintf(w, "Word lengths:")
	for n := cfg.MinWordLength; n <= cfg.MaxWordLength; n++ {
		fmt.Fprintf(w, " %d:%d", n, a.WordLengthCount[n])
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Letter cells per board: %.1f\n", float64(a.TotalLetters)/float64(a.Boards))
	fmt.Fprintf(w, "Mines per board: %.1f\n", float64(a.TotalMines)/float64(a.Boards))
	fmt.Fprintf(w, "Centre opening: %.1f cells on average, largest %d\n", a.AverageOpening(), a.LargestOpening)

	if a.MinWords < cfg.MinWords {
		fmt.Fprintf(w, "⚠️  WARNING: some boards placed fewer than %d words\n", cfg.MinWords)
	} else {
		fmt.Fprintf(w, "✅ Every board reached the minimum word count\n")
	}
	if a.CenterMineHits > 0 {
		fmt.Fprintf(w, "⚠️  The centre cell was a mine on %d/%d boards\n", a.CenterMineHits, a.Boards)
	}
}

func main() {
	samples := flag.Int("samples", 200, "boards generated per difficulty")
	flag.Parse()

	source, err := words.FromEnv()
	if err != nil {
		fmt.Printf("Error loading word list: %v\n", err)
		os.Exit(1)
	}

	for _, d := range engine.Difficulties() {
		fmt.Printf("\n=== Analyzing %s ===\n", d)
		printAnalysis(os.Stdout, analyzeDifficulty(d, source, *samples))
	}
}
