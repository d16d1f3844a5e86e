// Package config provides preset management for Wordweeper.
//
// The config package handles:
//   - Loading presets from JSON files
//   - Preset validation
//   - Default preset management
//   - Resolving the word list a preset draws from
//
// Preset Format:
//
// Presets are stored as JSON files in the configs directory:
//
//	{
//	  "name": "Hard Timed",
//	  "description": "The hard board with a four minute limit",
//	  "difficulty": "hard",
//	  "mode": "timed",
//	  "time_limit_seconds": 240,
//	  "word_list": "wordlists/animals.txt"
//	}
//
// difficulty is one of easy, hard or expert and selects a row of the fixed
// difficulty table. mode defaults to classic. time_limit_seconds overrides
// the difficulty's time budget and only applies to timed presets. word_list
// is resolved relative to the configs directory; without it the list named
// by WORDWEEPER_WORDS_FILE, or the embedded list, is used.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	preset, err := manager.LoadConfig("hard_timed")
//	source, err := manager.WordSource(preset)
//
// When the directory holds no classic.json, the first valid preset becomes
// the default, falling back to a built-in easy classic preset.
package config
