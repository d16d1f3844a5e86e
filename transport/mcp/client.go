package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/wordweeper/game/engine"
	"github.com/wricardo/wordweeper/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Wordweeper",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Wordweeper - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Reveal every safe cell of a Minesweeper board. Some safe cells hold the
letters of hidden words; uncovering all letters of a word completes it and
scores 10 points per letter. Each mine stepped on costs 5 points, and the
game is lost once you step on as many mines as the difficulty allows.

AVAILABLE TOOLS:
- create_session: Start a game (preset or difficulty/mode, optional user)
- board: Show the board of a session
- reveal: Reveal a cell (row, col) - requires intent explanation
- flag: Toggle a flag on a hidden cell
- reveal_history: View past reveals
- end_session: Abandon a game and record it
- get_session / list_sessions: Inspect sessions
- list_configs / list_difficulties: Presets and difficulty table
- register_user / user_stats: Player statistics
- game_instructions: Full rules and board legend

NOTE: The 'intent' parameter on reveal serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func positionProperties() map[string]interface{} {
	return map[string]interface{}{
		"session_id": map[string]interface{}{
			"type":        "string",
			"description": "Session ID",
		},
		"row": map[string]interface{}{
			"type":        "integer",
			"description": "Zero-based row",
		},
		"col": map[string]interface{}{
			"type":        "integer",
			"description": "Zero-based column",
		},
	}
}

func sessionOnly(description string) mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": description,
			},
		},
		Required: []string{"session_id"},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session from a preset, or from a difficulty and mode",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"preset_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use (see list_configs)",
				},
				"difficulty": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"easy", "hard", "expert"},
					"description": "Difficulty when no preset is given",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"classic", "timed"},
					"description": "Game mode when no preset is given",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Player whose statistics record this game (optional)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Board seed for a reproducible game (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionOnly("Session ID to retrieve"),
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "end_session",
		Description: "Abandon a session; unfinished games count as lost",
		InputSchema: sessionOnly("Session ID to end"),
	}, c.handleEndSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board",
		Description: "Show the current board of a session",
		InputSchema: sessionOnly("Session ID"),
	}, c.handleBoard)

	revealProps := positionProperties()
	revealProps["intent"] = map[string]interface{}{
		"type":        "string",
		"description": "Brief explanation of why this cell is safe or worth the risk (serves as a rubber duck to help explain your reasoning)",
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reveal",
		Description: "Reveal a cell. Zero cells cascade to their neighbours; letter cells stop the cascade",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: revealProps,
			Required:   []string{"session_id", "row", "col"},
		},
	}, c.handleReveal)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "flag",
		Description: "Toggle a flag on a hidden cell. Flagged cells cannot be revealed",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: positionProperties(),
			Required:   []string{"session_id", "row", "col"},
		},
	}, c.handleFlag)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reveal_history",
		Description: "Get the reveal history of a session with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Reveals per page (default 20)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRevealHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_difficulties",
		Description: "Show the difficulty table",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListDifficulties)

	// Users
	userSchema := mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"user_id": map[string]interface{}{
				"type":        "string",
				"description": "User ID: 3-32 letters, digits, '-' or '_'",
			},
		},
		Required: []string{"user_id"},
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "register_user",
		Description: "Register a new player",
		InputSchema: userSchema,
	}, c.handleRegisterUser)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "user_stats",
		Description: "Show a player's statistics",
		InputSchema: userSchema,
	}, c.handleUserStats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the full rules, scoring and board legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves the tools over stdin/stdout
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		args = map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// intArg reads a JSON number argument; JSON numbers decode as float64
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func requireSession(args map[string]interface{}) (string, *mcp.CallToolResult) {
	id := stringArg(args, "session_id")
	if id == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return id, nil
}

func requirePosition(args map[string]interface{}) (engine.Position, *mcp.CallToolResult) {
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return engine.Position{}, mcp.NewToolResultError("row and col are required integers")
	}
	return engine.Position{Row: row, Col: col}, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	for _, key := range []string{"preset_id", "difficulty", "mode", "user_id"} {
		if v := stringArg(args, key); v != "" {
			body[key] = v
		}
	}
	if seed, ok := intArg(args, "seed"); ok && seed >= 0 {
		body["seed"] = uint64(seed)
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(formatSessionInfo(&session))
	if session.Board != nil {
		b.WriteString("\n")
		b.WriteString(formatBoard(session.Board))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if resp.Count == 0 {
		return mcp.NewToolResultText("No active sessions"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active sessions (%d):\n", resp.Count)
	for _, s := range resp.Sessions {
		user := s.UserID
		if user == "" {
			user = "anonymous"
		}
		fmt.Fprintf(&b, "- %s: %s %s, %s, score %d, player %s\n", s.ID, s.Difficulty, s.Mode, s.State, s.Score, user)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+url.PathEscape(sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := formatSessionInfo(&session)
	if session.Result != nil {
		text += "\n" + formatResult(session.Result)
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleEndSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var resp struct {
		Message string                `json:"message"`
		Result  *engine.SessionResult `json:"result"`
	}
	if err := c.apiCall(ctx, "DELETE", "/api/sessions/"+url.PathEscape(sessionID), nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := resp.Message
	if resp.Result != nil {
		text += "\n" + formatResult(resp.Result)
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var board engine.BoardView
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+url.PathEscape(sessionID)+"/board", nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBoard(&board)), nil
}

func (c *Client) handleReveal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	pos, errResult := requirePosition(args)
	if errResult != nil {
		return errResult, nil
	}

	var result service.RevealResult
	body := map[string]int{"row": pos.Row, "col": pos.Col}
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+url.PathEscape(sessionID)+"/reveal", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRevealResult(&result)), nil
}

func (c *Client) handleFlag(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	pos, errResult := requirePosition(args)
	if errResult != nil {
		return errResult, nil
	}

	var result service.FlagResult
	body := map[string]int{"row": pos.Row, "col": pos.Col}
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+url.PathEscape(sessionID)+"/flag", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	action := "Removed flag from"
	if result.Flagged {
		action = "Flagged"
	}
	text := fmt.Sprintf("%s %s\n\n%s", action, result.Position, formatBoard(&result.Board))
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleRevealHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	if order := stringArg(args, "order"); order != "" {
		query.Set("order", order)
	}

	path := "/api/sessions/" + url.PathEscape(sessionID) + "/history"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []*service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available presets:\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "- %s: %s (%s %s, %dx%d, %d mines, %d mine steps allowed)",
			cfg.ConfigID, cfg.Name, cfg.Difficulty, cfg.Mode, cfg.Rows, cfg.Cols, cfg.Mines, cfg.AllowedMineSteps)
		if cfg.TimeLimitSeconds > 0 {
			fmt.Fprintf(&b, " %ds limit", cfg.TimeLimitSeconds)
		}
		if cfg.Description != "" {
			fmt.Fprintf(&b, " - %s", cfg.Description)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListDifficulties(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var diffs []service.DifficultyInfo
	if err := c.apiCall(ctx, "GET", "/api/difficulties", nil, &diffs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Difficulty table:\n")
	for _, d := range diffs {
		fmt.Fprintf(&b, "- %s: %dx%d, %d mines, %d-%d words of %d-%d letters, %d mine steps, %ds timed budget\n",
			d.Name, d.Rows, d.Cols, d.Mines, d.MinWords, d.MaxWords, d.MinWordLength, d.MaxWordLength, d.AllowedMineSteps, d.TimeBudgetSeconds)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleRegisterUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := stringArg(arguments(request), "user_id")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	var user map[string]interface{}
	if err := c.apiCall(ctx, "POST", "/api/users", map[string]string{"user_id": userID}, &user); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Registered user %s", userID)), nil
}

func (c *Client) handleUserStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := stringArg(arguments(request), "user_id")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	var info service.UserStatsInfo
	if err := c.apiCall(ctx, "GET", "/api/users/"+url.PathEscape(userID)+"/stats", nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatUserStats(&info)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

const gameInstructions = `Wordweeper - Complete Instructions

GAME OBJECTIVE:
Clear a Minesweeper board in which some safe cells carry letters of hidden
words. You win when every safe cell is revealed; every word is then complete.

BOARD LEGEND:
  #      hidden cell
  F      flagged cell (cannot be revealed until unflagged)
  A-Z    revealed letter cell
  1-8    revealed cell with that many neighbouring mines
  .      revealed cell with no neighbouring mines
  *      a mine you stepped on
Rows and columns are zero-based; (row, col) = (0, 0) is the top-left cell.

REVEALING:
- Revealing a cell with no neighbouring mines opens its neighbours too, and
  the cascade keeps going through other zero cells.
- Letter cells stop a cascade: they are only opened by revealing them
  directly.
- Revealing a flagged, already revealed or off-board cell does nothing and
  does not count as a step.

SCORING:
- Completing a word scores 10 points per letter.
- Each mine stepped on costs 5 points and uses one of your mine steps.
- Easy allows 3 mine steps, Hard 2, Expert 1. Using the last one loses.
- Final scores never go below zero.

TIMED MODE:
- The clock starts with your first reveal.
- A reveal after the deadline is not applied and the game is lost.
- Winning adds a bonus proportional to the time left, up to doubling your
  score.

STRATEGY:
1. Start in the middle of the board; zero cells open large areas.
2. Number cells tell you exactly how many mines touch them: use them to
   deduce safe cells before guessing.
3. Words run in any of eight directions. When a few letters of a word are
   visible, the remaining letters lie on the same line.
4. Flag cells you are sure are mines so you do not reveal them by mistake.

Good luck clearing the board!`

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", session.ID)
	fmt.Fprintf(&b, "Preset: %s (%s, %s)\n", session.PresetID, session.Difficulty, session.Mode)
	if session.UserID != "" {
		fmt.Fprintf(&b, "Player: %s\n", session.UserID)
	}
	fmt.Fprintf(&b, "State: %s\n", session.State)
	fmt.Fprintf(&b, "Score: %d\n", session.Score)
	if session.RemainingSeconds != nil {
		fmt.Fprintf(&b, "Time left: %.0fs\n", *session.RemainingSeconds)
	}
	return b.String()
}

func formatBoard(board *engine.BoardView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "State: %s | Score: %d | Mines stepped: %d/%d | Steps: %d",
		board.State, board.Score, board.MinesStepped, board.AllowedMineSteps, board.StepsUsed)
	if board.RemainingSeconds != nil {
		fmt.Fprintf(&b, " | Time left: %.0fs", *board.RemainingSeconds)
	}
	b.WriteString("\n")

	words := make([]string, 0, len(board.Words))
	for _, w := range board.Words {
		if w.Completed {
			words = append(words, w.Text)
		} else {
			words = append(words, strings.Repeat("_", w.Length))
		}
	}
	fmt.Fprintf(&b, "Words (%d/%d): %s\n\n", board.WordsCompleted, len(board.Words), strings.Join(words, " "))
	b.WriteString(board.Text())
	return b.String()
}

func formatRevealResult(result *service.RevealResult) string {
	var b strings.Builder
	b.WriteString(result.Message)
	b.WriteString("\n")
	for _, ev := range result.Events {
		fmt.Fprintf(&b, "- %s\n", ev.Message)
	}
	if result.StatsError != "" {
		fmt.Fprintf(&b, "Warning: %s\n", result.StatsError)
	}
	if result.Report != nil && result.Report.Result != nil {
		b.WriteString(formatResult(result.Report.Result))
	}
	b.WriteString("\n")
	b.WriteString(formatBoard(&result.Board))
	return b.String()
}

func formatResult(r *engine.SessionResult) string {
	outcome := "LOST"
	switch {
	case r.Won:
		outcome = "WON"
	case r.Abandoned:
		outcome = "ABANDONED"
	case r.TimedOut:
		outcome = "TIMED OUT"
	}
	return fmt.Sprintf("Result: %s | Final score: %d | Words: %d | Mines stepped: %d | Steps: %d\n",
		outcome, r.Score, r.WordsRevealed, r.MinesStepped, r.StepsUsed)
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reveal history (page %d/%d, %d total):\n", history.Page, history.TotalPages, history.TotalReveals)
	for _, r := range history.Reveals {
		kind := fmt.Sprintf("%d cell(s)", r.CellsRevealed)
		if r.HitMine {
			kind = "MINE"
		}
		fmt.Fprintf(&b, "#%d %s %s", r.Step, r.Position, kind)
		if len(r.CompletedWords) > 0 {
			fmt.Fprintf(&b, " completed %s", strings.Join(r.CompletedWords, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatUserStats(info *service.UserStatsInfo) string {
	if info.UserStats == nil {
		return "No statistics"
	}
	u := info.UserStats
	var b strings.Builder
	fmt.Fprintf(&b, "Player: %s\n", u.UserID)
	fmt.Fprintf(&b, "Games played: %d (won %d, %.0f%%)\n", u.GamesPlayed, u.GamesWon, info.WinRate*100)
	fmt.Fprintf(&b, "Words revealed: %d\n", u.WordsRevealed)
	if u.LongestWordRevealed != "" {
		fmt.Fprintf(&b, "Longest word: %s\n", u.LongestWordRevealed)
	}
	fmt.Fprintf(&b, "Mines stepped: %d\n", u.MinesStepped)
	fmt.Fprintf(&b, "Best score: classic %d, timed %d\n", u.HighestScoreClassic, u.HighestScoreTimed)
	fmt.Fprintf(&b, "Fewest steps in a game: %d\n", u.MinStepsUsed)
	fmt.Fprintf(&b, "Average steps per game: %.1f\n", info.AverageStepsUsed)
	return b.String()
}
