package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wricardo/wordweeper/game/engine"
	"github.com/wricardo/wordweeper/game/words"
)

func TestAnalyzeDifficulty(t *testing.T) {
	for _, d := range engine.Difficulties() {
		cfg := d.Config()
		a := analyzeDifficulty(d, words.Default(), 25)

		if a.Boards+a.Failures != 25 {
			t.Errorf("%s: expected 25 boards attempted, got %d", d, a.Boards+a.Failures)
		}
		if a.Boards == 0 {
			t.Fatalf("%s: no boards generated", d)
		}
		if a.MaxWords > cfg.MaxWords {
			t.Errorf("%s: %d words exceeds max %d", d, a.MaxWords, cfg.MaxWords)
		}
		if a.MinWords < 1 {
			t.Errorf("%s: a board had no words", d)
		}
		if got := a.TotalMines / a.Boards; got != cfg.MineCount() {
			t.Errorf("%s: expected %d mines per board, got %d", d, cfg.MineCount(), got)
		}
		if a.AverageOpening() < 1 {
			t.Errorf("%s: centre reveal should uncover at least one cell", d)
		}

		lengths := 0
		for n, count := range a.WordLengthCount {
			if n < cfg.MinWordLength || n > cfg.MaxWordLength {
				t.Errorf("%s: word of length %d outside %d-%d", d, n, cfg.MinWordLength, cfg.MaxWordLength)
			}
			lengths += count
		}
		if lengths != a.TotalWords {
			t.Errorf("%s: length histogram covers %d words, want %d", d, lengths, a.TotalWords)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	first := analyzeDifficulty(engine.Hard, words.Default(), 10)
	second := analyzeDifficulty(engine.Hard, words.Default(), 10)

	if first.TotalWords != second.TotalWords || first.TotalOpening != second.TotalOpening {
		t.Error("Expected identical analyses for identical seeds")
	}
}

func TestAnalysisAverages(t *testing.T) {
	empty := &Analysis{}
	if empty.AverageWords() != 0 || empty.AverageOpening() != 0 {
		t.Error("Expected zero averages without boards")
	}

	a := &Analysis{Boards: 4, TotalWords: 10, TotalOpening: 6}
	if a.AverageWords() != 2.5 {
		t.Errorf("Expected 2.5 words, got %f", a.AverageWords())
	}
	if a.AverageOpening() != 1.5 {
		t.Errorf("Expected 1.5 cells, got %f", a.AverageOpening())
	}
}

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	printAnalysis(&buf, analyzeDifficulty(engine.Easy, words.Default(), 10))
	out := buf.String()

	for _, want := range []string{"Grid: 9 x 9, 8 mines", "Boards: 10 generated", "Words per board:", "Centre opening:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	printAnalysis(&buf, &Analysis{Difficulty: engine.Expert, Failures: 3})
	if !strings.Contains(buf.String(), "CRITICAL") {
		t.Errorf("Expected critical warning, got %s", buf.String())
	}
}
