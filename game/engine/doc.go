// Package engine provides the core game logic for Wordweeper.
//
// Wordweeper is a word-search variant of Minesweeper: a grid hides mines and
// letters that spell words. Players reveal cells, avoid mines and uncover
// words to score points. The engine package implements:
//   - Board generation (word placement in 8 directions, mine scattering)
//   - Reveal with iterative flood fill
//   - Word completion tracking
//   - Scoring for Classic and Timed modes
//   - The per-game state machine (idle, in progress, won, lost)
//
// Core Types:
//
// Board holds the grid of Cells and the placed Words. Generator builds boards
// for a Difficulty using an injected WordSource and Random. Game owns one
// Board for a single play-through and produces exactly one SessionResult when
// it ends.
//
// Usage:
//
//	gen := engine.NewGenerator(words.Default(), engine.NewRandom(42))
//	board, err := gen.GenerateWithRetry(engine.Easy.Config())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := engine.NewGame(board, engine.GameOptions{
//		Difficulty: engine.Easy,
//		Mode:       engine.ModeClassic,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	report, err := game.ApplyReveal(engine.Position{Row: 4, Col: 4})
//
// Game Rules:
//
// Revealing a mine costs MinePenalty points and one of the difficulty's
// allowed mine steps; running out of steps loses the game. Completing a word
// scores PointsPerLetter per letter. The game is won once every non-mine cell
// has been revealed. In Timed mode the final score is boosted by the fraction
// of the time budget left, and a reveal after the deadline loses the game.
package engine
