// Package mcp exposes Wordweeper to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API and the JSON response is rendered as text for the
// agent. It holds no game state of its own.
//
// Tools:
//   - create_session, get_session, list_sessions, end_session
//   - board, reveal, flag, reveal_history
//   - list_configs, list_difficulties
//   - register_user, user_stats
//   - game_instructions
//
// Transport Modes:
//   - Stdio: ServeStdio for local MCP clients
//   - HTTP: GetMCPServer wrapped in a streamable HTTP server at /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
package mcp
