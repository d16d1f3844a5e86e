// Package api provides the HTTP REST API for Wordweeper.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session {preset_id | difficulty, mode, user_id, seed}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N&user_id=)
//   - GET /api/sessions/{id} - Session details including the board
//   - DELETE /api/sessions/{id} - Abandon, record and remove a session
//
// Play:
//   - GET /api/sessions/{id}/board - Board view (?format=text for a plain grid)
//   - POST /api/sessions/{id}/reveal - Reveal a cell {row, col}
//   - POST /api/sessions/{id}/flag - Toggle a flag {row, col}
//   - GET /api/sessions/{id}/history - Reveal history (?page&limit&order)
//
// Presets and difficulties:
//   - GET /api/configs, GET /api/configs/{name}, POST /api/configs
//   - GET /api/difficulties
//
// Users:
//   - POST /api/users {user_id}, GET /api/users, GET /api/users/{id}/stats
//
// Other:
//   - GET /ws?session={id} - WebSocket board updates
//   - GET /metrics - Prometheus metrics
//   - GET /api/health
//
// Errors are returned as JSON with a status derived from the error kind:
// 404 for unknown sessions, presets and users, 409 when a game is already
// over or a user exists, 400 for invalid input.
//
//	{"error": "session is closed: game already lost"}
package api
