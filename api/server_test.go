package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/wordweeper/game/config"
	"github.com/wricardo/wordweeper/game/engine"
	"github.com/wricardo/wordweeper/game/service"
	"github.com/wricardo/wordweeper/game/session"
	"github.com/wricardo/wordweeper/game/stats"
	"github.com/wricardo/wordweeper/transport/websocket"
)

type testServer struct {
	server   *Server
	sessions *session.Manager
	hub      *websocket.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "classic.json"),
		[]byte(`{"name":"Classic","description":"easy board","difficulty":"easy","mode":"classic"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "hard_timed.json"),
		[]byte(`{"name":"Hard Timed","difficulty":"hard","mode":"timed","time_limit_seconds":120}`), 0644))

	configs, err := config.NewManager(configDir)
	require.NoError(t, err)
	store, err := stats.NewFileStore(t.TempDir())
	require.NoError(t, err)

	sessions := session.NewManager()
	hub := websocket.NewHub()
	go hub.Run()

	svc := service.NewGameService(sessions, configs, store)
	return &testServer{server: NewServer(svc, hub), sessions: sessions, hub: hub}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.server.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (ts *testServer) createSession(t *testing.T, req map[string]interface{}) *service.SessionInfo {
	t.Helper()
	w := ts.do(t, "POST", "/api/sessions", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[*service.SessionInfo](t, w)
}

func (ts *testServer) game(t *testing.T, id string) *engine.Game {
	t.Helper()
	sess, err := ts.sessions.Get(id)
	require.NoError(t, err)
	return sess.Game
}

func firstMine(game *engine.Game) engine.Position {
	for r := range game.Board.Rows {
		for c := range game.Board.Cols {
			if game.Board.Grid[r][c].Mine {
				return engine.Position{Row: r, Col: c}
			}
		}
	}
	return engine.Position{}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, "GET", "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t)

	info := ts.createSession(t, nil)
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, engine.Easy, info.Difficulty)
	require.NotNil(t, info.Board)
	assert.Equal(t, 9, info.Board.Rows)

	info = ts.createSession(t, map[string]interface{}{"preset_id": "hard_timed", "user_id": "alice", "seed": 7})
	assert.Equal(t, engine.Hard, info.Difficulty)
	assert.Equal(t, engine.ModeTimed, info.Mode)
	assert.Equal(t, uint64(7), info.Seed)
	require.NotNil(t, info.RemainingSeconds)
	assert.Equal(t, 120.0, *info.RemainingSeconds)

	info = ts.createSession(t, map[string]interface{}{"difficulty": "expert"})
	assert.Equal(t, engine.Expert, info.Difficulty)
}

func TestCreateSessionBadRequests(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []map[string]interface{}{
		{"preset_id": "nope"},
		{"difficulty": "legendary"},
		{"mode": "blitz"},
		{"user_id": "x"},
	} {
		w := ts.do(t, "POST", "/api/sessions", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v: %s", body, w.Body.String())
	}

	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader("{broken"))
	w := httptest.NewRecorder()
	ts.server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAndGetSessions(t *testing.T) {
	ts := newTestServer(t)
	a := ts.createSession(t, map[string]interface{}{"user_id": "alice"})
	ts.createSession(t, map[string]interface{}{"user_id": "bob"})
	ts.createSession(t, nil)

	w := ts.do(t, "GET", "/api/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[map[string]interface{}](t, w)
	assert.EqualValues(t, 3, list["count"])

	w = ts.do(t, "GET", "/api/sessions?user_id=alice", nil)
	list = decode[map[string]interface{}](t, w)
	assert.EqualValues(t, 1, list["count"])

	w = ts.do(t, "GET", "/api/sessions?limit=2&sort=created&order=asc", nil)
	list = decode[map[string]interface{}](t, w)
	assert.EqualValues(t, 2, list["count"])
	assert.EqualValues(t, 3, list["total"])

	w = ts.do(t, "GET", "/api/sessions/"+a.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[*service.SessionInfo](t, w)
	assert.Equal(t, "alice", got.UserID)

	w = ts.do(t, "GET", "/api/sessions/zzzz", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRevealAndBoard(t *testing.T) {
	ts := newTestServer(t)
	info := ts.createSession(t, map[string]interface{}{"user_id": "carol"})
	mine := firstMine(ts.game(t, info.ID))

	w := ts.do(t, "POST", fmt.Sprintf("/api/sessions/%s/reveal", info.ID), map[string]int{"row": mine.Row, "col": mine.Col})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[*service.RevealResult](t, w)
	assert.True(t, result.Report.Outcome.HitMine)
	assert.Equal(t, 1, result.Report.MinesStepped)
	assert.Equal(t, -engine.MinePenalty, result.Report.Score)
	assert.True(t, result.Board.Cells[mine.Row][mine.Col].Mine)

	w = ts.do(t, "GET", fmt.Sprintf("/api/sessions/%s/board", info.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := decode[engine.BoardView](t, w)
	assert.Equal(t, engine.StateInProgress, board.State)
	assert.Equal(t, 1, board.StepsUsed)

	w = ts.do(t, "GET", fmt.Sprintf("/api/sessions/%s/board?format=text", info.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "*")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	w = ts.do(t, "GET", fmt.Sprintf("/api/sessions/%s/history?order=asc", info.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[*service.HistoryResponse](t, w)
	require.Len(t, history.Reveals, 1)
	assert.True(t, history.Reveals[0].HitMine)
}

func TestRevealValidation(t *testing.T) {
	ts := newTestServer(t)
	info := ts.createSession(t, nil)

	w := ts.do(t, "POST", fmt.Sprintf("/api/sessions/%s/reveal", info.ID), map[string]int{"row": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "POST", "/api/sessions/zzzz/reveal", map[string]int{"row": 1, "col": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRevealAfterGameOverConflicts(t *testing.T) {
	ts := newTestServer(t)
	info := ts.createSession(t, map[string]interface{}{"user_id": "dave"})
	game := ts.game(t, info.ID)
	require.NoError(t, func() error { _, err := game.Abandon(); return err }())

	w := ts.do(t, "POST", fmt.Sprintf("/api/sessions/%s/reveal", info.ID), map[string]int{"row": 0, "col": 0})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, "POST", fmt.Sprintf("/api/sessions/%s/flag", info.ID), map[string]int{"row": 0, "col": 0})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFlag(t *testing.T) {
	ts := newTestServer(t)
	info := ts.createSession(t, nil)

	w := ts.do(t, "POST", fmt.Sprintf("/api/sessions/%s/flag", info.ID), map[string]int{"row": 2, "col": 3})
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[*service.FlagResult](t, w)
	assert.True(t, result.Flagged)
	assert.Equal(t, engine.Flagged, result.Board.Cells[2][3].State)
}

func TestDeleteSessionRecordsAbandon(t *testing.T) {
	ts := newTestServer(t)
	info := ts.createSession(t, map[string]interface{}{"user_id": "erin"})

	w := ts.do(t, "DELETE", "/api/sessions/"+info.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]json.RawMessage](t, w)
	var result engine.SessionResult
	require.NoError(t, json.Unmarshal(body["result"], &result))
	assert.True(t, result.Abandoned)

	w = ts.do(t, "GET", "/api/users/erin/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	u := decode[map[string]interface{}](t, w)
	assert.EqualValues(t, 1, u["games_played"])
	assert.EqualValues(t, 0, u["win_rate"])

	w = ts.do(t, "DELETE", "/api/sessions/"+info.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUsersEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/users", map[string]string{"user_id": "frank"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, "POST", "/api/users", map[string]string{"user_id": "FRANK"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, "POST", "/api/users", map[string]string{"user_id": "a b"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "GET", "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[map[string]interface{}](t, w)
	assert.EqualValues(t, 1, list["count"])

	w = ts.do(t, "GET", "/api/users/ghost/stats", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfigEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "GET", "/api/configs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	configs := decode[[]*service.ConfigInfo](t, w)
	require.Len(t, configs, 2)
	assert.Equal(t, "classic", configs[0].ConfigID)

	w = ts.do(t, "GET", "/api/configs/hard_timed.json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	preset := decode[engine.Preset](t, w)
	assert.Equal(t, 120, preset.TimeLimitSeconds)

	w = ts.do(t, "GET", "/api/configs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, "POST", "/api/configs", map[string]interface{}{
		"name": "Quick Expert", "difficulty": "expert", "mode": "timed", "time_limit_seconds": 90,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]string](t, w)
	assert.Equal(t, "quick_expert", created["config_id"])

	info := ts.createSession(t, map[string]interface{}{"preset_id": "quick_expert"})
	assert.Equal(t, engine.Expert, info.Difficulty)

	w = ts.do(t, "POST", "/api/configs", map[string]interface{}{"name": "Bad", "difficulty": "easy", "time_limit_seconds": 90})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "POST", "/api/configs", map[string]interface{}{"difficulty": "easy"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDifficulties(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, "GET", "/api/difficulties", nil)
	require.Equal(t, http.StatusOK, w.Code)
	diffs := decode[[]service.DifficultyInfo](t, w)
	require.Len(t, diffs, 3)
	assert.Equal(t, "hard", diffs[1].Name)
	assert.Equal(t, 12, diffs[1].Rows)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.createSession(t, nil)

	w := ts.do(t, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "wordweeper_sessions_created_total")
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("wrap: %w", service.ErrSessionNotFound): http.StatusNotFound,
		config.ErrConfigNotFound:                            http.StatusNotFound,
		stats.ErrUserNotFound:                               http.StatusNotFound,
		engine.ErrSessionClosed:                             http.StatusConflict,
		stats.ErrUserExists:                                 http.StatusConflict,
		service.ErrInvalidRequest:                           http.StatusBadRequest,
		engine.ErrConfiguration:                             http.StatusBadRequest,
		stats.ErrInvalidUserID:                              http.StatusBadRequest,
		service.ErrStatsUnavailable:                         http.StatusServiceUnavailable,
		errors.New("boom"):                                  http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}

func TestWebSocketReceivesRevealBroadcast(t *testing.T) {
	ts := newTestServer(t)
	info := ts.createSession(t, nil)

	server := httptest.NewServer(ts.server)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session=" + strings.ToUpper(info.ID)
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() websocket.Message {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg websocket.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	first := read()
	assert.Equal(t, websocket.EventConnected, first.Event)
	require.Eventually(t, func() bool { return ts.hub.ClientCount(info.ID) == 1 }, time.Second, 10*time.Millisecond)

	mine := firstMine(ts.game(t, info.ID))
	body, _ := json.Marshal(map[string]int{"row": mine.Row, "col": mine.Col})
	resp, err := http.Post(server.URL+"/api/sessions/"+info.ID+"/reveal", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	update := read()
	assert.Equal(t, websocket.EventBoardUpdate, update.Event)
	require.NotNil(t, update.Board)
	assert.Equal(t, 1, update.Board.MinesStepped)
	assert.Equal(t, strings.ToLower(info.ID), update.SessionID)

	event := read()
	assert.Equal(t, "mine", event.Event)
	data, ok := event.Data.(map[string]interface{})
	require.True(t, ok, "event data is the game event")
	assert.Contains(t, data["message"], "Stepped on a mine")

	resp, err = http.Get(server.URL + "/ws?session=zzzz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
