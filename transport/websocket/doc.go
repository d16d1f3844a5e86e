// Package websocket pushes live board updates to browser and tool clients.
//
// A central Hub tracks the clients subscribed to each session. Clients
// connect to /ws?session=<id>; the first frame carries the current board
// (event "connected") and every accepted reveal or flag afterwards pushes a
// "board_update" frame holding the new engine.BoardView. Each frame is one
// JSON document:
//
//	{"session_id": "ab12", "event": "board_update", "board": {...}}
//
// Board views never contain hidden content, so the same frame is safe to
// send to every spectator of a session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"), nil)
//	})
//
// Each client has a read goroutine that only keeps the connection alive and
// a write goroutine that drains its buffered send channel. A client whose
// buffer is full is dropped.
package websocket
