// Package service provides the business logic layer for Wordweeper.
//
// The service package implements:
//   - Multi-session game management
//   - Preset resolution and board generation
//   - Reveal and flag processing
//   - Recording finished games into per-user statistics
//   - Reveal history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads presets and resolves their word lists.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP and
// the terminal client) and the game engine. Each session owns one
// engine.Game; a service-wide mutex serialises every mutation so concurrent
// requests never touch one board at the same time. When a game ends its
// SessionResult is recorded exactly once in the stats.Store of the user
// who started it.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	store, _ := stats.NewFileStore("data/users")
//	gameService := service.NewGameService(sessionMgr, configMgr, store)
//
//	// Create a new session
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{
//		PresetID: "hard",
//		UserID:   "alice",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Reveal a cell
//	result, err := gameService.Reveal(ctx, info.ID, engine.Position{Row: 3, Col: 4})
//
// Session Management:
//
// Sessions are identified by short 4-character IDs. A session without a
// user ID is anonymous and its result is not recorded. Unknown user IDs are
// registered on first use.
package service
