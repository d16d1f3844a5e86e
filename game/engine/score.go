package engine

import "math"

const (
	// PointsPerLetter is awarded for each letter of a completed word
	PointsPerLetter = 10
	// MinePenalty is subtracted for every mine stepped on
	MinePenalty = 5
)

// ScoreKeeper holds the running totals of one game
type ScoreKeeper struct {
	Score         int    `json:"score"`
	MinesStepped  int    `json:"mines_stepped"`
	StepsUsed     int    `json:"steps_used"`
	WordsRevealed int    `json:"words_revealed"`
	LongestWord   string `json:"longest_word,omitempty"`
}

// OnReveal applies one reveal. No-op reveals do not count as a step.
func (s *ScoreKeeper) OnReveal(outcome RevealOutcome, completed []*Word) {
	if outcome.Empty() {
		return
	}
	s.StepsUsed++
	if outcome.HitMine {
		s.Score -= MinePenalty
		s.MinesStepped++
	}
	for _, w := range completed {
		s.Score += PointsPerLetter * len(w.Text)
		s.WordsRevealed++
		if len(w.Text) > len(s.LongestWord) {
			s.LongestWord = w.Text
		}
	}
}

// Finalize returns the final score. Timed games multiply the running score by
// 1 + remaining, with remaining clamped to [0,1]. The result is never negative.
func (s *ScoreKeeper) Finalize(mode Mode, remaining float64) int {
	score := s.Score
	if mode == ModeTimed {
		remaining = math.Max(0, math.Min(1, remaining))
		score = int(math.Floor(float64(score) * (1 + remaining)))
	}
	if score < 0 {
		return 0
	}
	return score
}
