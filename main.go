// Command wordweeper runs the Wordweeper game.
//
// Commands:
//  1. "serve" – runs the HTTP server exposing REST API, WebSocket, metrics and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – plays a game in the terminal
//  4. "register", "stats", "difficulties" – player and difficulty tables
//
// Flags and environment variables control the preset directory, the
// statistics backend, logging and optional ngrok tunneling.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/term"

	"github.com/wricardo/wordweeper/api"
	"github.com/wricardo/wordweeper/game/config"
	"github.com/wricardo/wordweeper/game/engine"
	"github.com/wricardo/wordweeper/game/service"
	"github.com/wricardo/wordweeper/game/session"
	"github.com/wricardo/wordweeper/game/stats"
	"github.com/wricardo/wordweeper/logging"
	"github.com/wricardo/wordweeper/transport/mcp"
	"github.com/wricardo/wordweeper/transport/websocket"
	"github.com/wricardo/wordweeper/tui"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Wordweeper"
)

const (
	sessionMaxAge   = 24 * time.Hour
	cleanupInterval = time.Hour
	timeoutInterval = time.Second
	syncInterval    = 5 * time.Second
)

// serviceOptions selects storage for initializeServices
type serviceOptions struct {
	ConfigDir   string
	SessionsDir string // empty keeps sessions in memory only
	Stats       stats.Config
}

// services holds everything initializeServices wires together
type services struct {
	Game        service.GameService
	Sessions    *session.Manager
	Persistence session.SessionPersistence
	Store       stats.Store
}

// Close flushes sessions and releases the statistics backend
func (s *services) Close() {
	if err := s.Sessions.SaveAllSessions(); err != nil {
		logging.Log.WithError(err).Warn("Failed to save sessions")
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			logging.Log.WithError(err).Warn("Failed to close statistics store")
		}
	}
}

func main() {
	loadEnv()

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		logging.Log.Fatal(err)
	}
}

// loadEnv loads a .env file if one exists
func loadEnv() {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Log.Warnf("Error loading .env file: %v", err)
		}
		return
	}
	logging.Log.Debug("Loaded environment variables from .env file")
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "wordweeper",
		Usage:   "word-search Minesweeper",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing game presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "stats-backend",
				Value:   stats.BackendFile,
				Usage:   "statistics backend: file, redis or postgres",
				Sources: cli.EnvVars("STATS_BACKEND"),
			},
			&cli.StringFlag{
				Name:    "stats-dir",
				Value:   "data/users",
				Usage:   "directory for the file statistics backend",
				Sources: cli.EnvVars("STATS_DIR"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for the redis backend",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Sources: cli.EnvVars("REDIS_PASSWORD"),
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Sources: cli.EnvVars("REDIS_DB"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "PostgreSQL URL for the postgres backend",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "log as JSON",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := "info"
			if cmd.Bool("debug") {
				level = "debug"
			}
			logging.Configure(level, cmd.Bool("log-json"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			playCommand(),
			registerCommand(),
			statsCommand(),
			difficultiesCommand(),
		},
	}
}

// optionsFromCommand reads the storage flags shared by every command
func optionsFromCommand(cmd *cli.Command) serviceOptions {
	return serviceOptions{
		ConfigDir: cmd.String("config-dir"),
		Stats: stats.Config{
			Backend:       cmd.String("stats-backend"),
			Dir:           cmd.String("stats-dir"),
			RedisAddr:     cmd.String("redis-addr"),
			RedisPassword: cmd.String("redis-password"),
			RedisDB:       int(cmd.Int("redis-db")),
			DatabaseURL:   cmd.String("database-url"),
		},
	}
}

func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with API, WebSocket, metrics and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "directory for persisted sessions", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := optionsFromCommand(cmd)
			opts.SessionsDir = cmd.String("sessions-dir")

			svcs, err := initializeServices(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			defer svcs.Close()

			return runHTTPServer(ctx, svcs, httpOptions{
				Addr:        fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port")),
				Ngrok:       cmd.Bool("ngrok"),
				NgrokAuth:   cmd.String("ngrok-auth"),
				NgrokDomain: cmd.String("ngrok-domain"),
			})
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "run an MCP stdio server backed by the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "REST API to reuse when it is running", Sources: cli.EnvVars("WORDWEEPER_API_URL")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// stdout carries the MCP protocol
			logging.SetOutput(os.Stderr)

			svcs, err := initializeServices(ctx, optionsFromCommand(cmd))
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			defer svcs.Close()

			return runStdioMCPWithInternalServer(svcs.Game, cmd.String("api-url"))
		},
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play a game in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: "preset ID (see difficulties and the config dir)"},
			&cli.StringFlag{Name: "difficulty", Aliases: []string{"d"}, Usage: "easy, hard or expert"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "classic or timed"},
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "record the game for this player", Sources: cli.EnvVars("WORDWEEPER_USER")},
			&cli.Uint64Flag{Name: "seed", Usage: "board seed for a reproducible game"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svcs, err := initializeServices(ctx, optionsFromCommand(cmd))
			if err != nil {
				return err
			}
			defer svcs.Close()

			player := tui.NewPlayer(svcs.Game, os.Stdin, output(cmd))
			req := service.CreateSessionRequest{
				PresetID:   cmd.String("preset"),
				Difficulty: cmd.String("difficulty"),
				Mode:       cmd.String("mode"),
				UserID:     cmd.String("user"),
			}
			if cmd.IsSet("seed") {
				seed := cmd.Uint64("seed")
				req.Seed = &seed
			}
			if req.PresetID == "" && req.Difficulty == "" && req.Mode == "" && term.IsTerminal(int(os.Stdin.Fd())) {
				if req.PresetID, err = player.SelectPreset(ctx); err != nil {
					return err
				}
			}

			_, err = player.Play(ctx, req)
			return err
		},
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "register a player",
		ArgsUsage: "USER_ID",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			userID := cmd.Args().First()
			if userID == "" {
				return errors.New("USER_ID is required")
			}
			svcs, err := initializeServices(ctx, optionsFromCommand(cmd))
			if err != nil {
				return err
			}
			defer svcs.Close()

			if _, err := svcs.Game.RegisterUser(ctx, userID); err != nil {
				return err
			}
			fmt.Fprintf(output(cmd), "Registered %s\n", userID)
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "show statistics for one player, or all players",
		ArgsUsage: "[USER_ID]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svcs, err := initializeServices(ctx, optionsFromCommand(cmd))
			if err != nil {
				return err
			}
			defer svcs.Close()

			var users []*service.UserStatsInfo
			if userID := cmd.Args().First(); userID != "" {
				info, err := svcs.Game.GetUserStats(ctx, userID)
				if err != nil {
					return err
				}
				users = append(users, info)
			} else if users, err = svcs.Game.ListUsers(ctx); err != nil {
				return err
			}

			w := tabwriter.NewWriter(output(cmd), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "USER\tPLAYED\tWON\tWORDS\tLONGEST\tMINES\tBEST CLASSIC\tBEST TIMED\tMIN STEPS\tAVG STEPS")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%d\t%d\t%d\t%d\t%.1f\n",
					u.UserID, u.GamesPlayed, u.GamesWon, u.WordsRevealed, u.LongestWordRevealed,
					u.MinesStepped, u.HighestScoreClassic, u.HighestScoreTimed, u.MinStepsUsed, u.AverageStepsUsed)
			}
			return w.Flush()
		},
	}
}

func difficultiesCommand() *cli.Command {
	return &cli.Command{
		Name:  "difficulties",
		Usage: "show the difficulty table",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := tabwriter.NewWriter(output(cmd), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGRID\tMINES\tWORDS\tLENGTHS\tMINE STEPS\tTIME")
			for _, d := range engine.Difficulties() {
				info := service.NewDifficultyInfo(d)
				fmt.Fprintf(w, "%s\t%dx%d\t%d\t%d-%d\t%d-%d\t%d\t%ds\n",
					info.Name, info.Rows, info.Cols, info.Mines, info.MinWords, info.MaxWords,
					info.MinWordLength, info.MaxWordLength, info.AllowedMineSteps, info.TimeBudgetSeconds)
			}
			return w.Flush()
		},
	}
}

// httpOptions configures runHTTPServer
type httpOptions struct {
	Addr        string
	Ngrok       bool
	NgrokAuth   string
	NgrokDomain string
}

// newMainRouter combines the API server with the /mcp proxy endpoint
func newMainRouter(apiServer *api.Server, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return mainRouter
}

// runHTTPServer serves until SIGINT/SIGTERM. If ngrok is enabled it also
// provisions a public tunnel.
func runHTTPServer(ctx context.Context, svcs *services, opts httpOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub()
	go hub.Run()

	apiServer := api.NewServer(svcs.Game, hub)
	mcpClient := mcp.NewClient("http://" + opts.Addr)
	mainRouter := newMainRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         opts.Addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go sessionCleanupRoutine(ctx, svcs.Sessions)
	go timeoutRoutine(ctx, svcs.Game)
	if svcs.Persistence != nil {
		go filesystemSyncRoutine(ctx, svcs.Sessions, svcs.Persistence)
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log := logging.Log.WithField("addr", opts.Addr)
		log.Info("HTTP server listening")
		log.Infof("REST API: http://%s/api", opts.Addr)
		log.Infof("WebSocket: ws://%s/ws?session=<session_id>", opts.Addr)
		log.Infof("MCP endpoint: http://%s/mcp", opts.Addr)
		log.Infof("Metrics: http://%s/metrics", opts.Addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	if opts.Ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, mainRouter, opts)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		logging.Log.Info("Shutting down...")
	case err = <-serveErr:
		logging.Log.WithError(err).Error("HTTP server failed")
		stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logging.Log.WithError(shutdownErr).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	logging.Log.Info("Server stopped")
	return err
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx ends
func runNgrokTunnel(ctx context.Context, handler http.Handler, opts httpOptions) {
	if opts.NgrokAuth == "" {
		logging.Log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	logging.Log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if opts.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.NgrokDomain))
		logging.Log.Infof("Using custom ngrok domain: %s", opts.NgrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.NgrokAuth))
	if err != nil {
		logging.Log.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logging.Log.WithError(err).Warn("Failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	logging.Log.WithFields(logrus.Fields{
		"api":       ngrokURL + "/api",
		"websocket": ngrokURL + "/ws?session=<session_id>",
		"mcp":       ngrokURL + "/mcp",
	}).Infof("Ngrok tunnel established: %s", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		logging.Log.WithError(err).Warn("Ngrok server error")
	}
	logging.Log.Info("Ngrok tunnel closed")
}

// initializeServices wires session/config managers, the statistics store and
// the game service.
func initializeServices(ctx context.Context, opts serviceOptions) (*services, error) {
	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	store, err := stats.Open(ctx, opts.Stats)
	if err != nil {
		return nil, fmt.Errorf("failed to open statistics store: %w", err)
	}

	svcs := &services{Store: store}
	if opts.SessionsDir != "" {
		persistence, err := session.NewFilePersistence(opts.SessionsDir, nil)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		svcs.Persistence = persistence
		svcs.Sessions = session.NewManagerWithPersistence(persistence)

		if err := svcs.Sessions.LoadPersistedSessions(); err != nil {
			logging.Log.WithError(err).Warn("Failed to load persisted sessions")
		}
	} else {
		svcs.Sessions = session.NewManager()
	}

	svcs.Game = service.NewGameService(svcs.Sessions, configManager, store)
	return svcs, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within sessionMaxAge.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				logging.Log.Infof("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// timeoutRoutine ends timed games whose deadline passed while no input arrived
func timeoutRoutine(ctx context.Context, svc service.GameService) {
	ticker := time.NewTicker(timeoutInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if expired := svc.CheckTimeouts(ctx); expired > 0 {
				logging.Log.Debugf("Timed out %d sessions", expired)
			}
		}
	}
}

// filesystemSyncRoutine drops in-memory sessions whose files were deleted
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneOrphanedSessions(manager, persistence)
		}
	}
}

func pruneOrphanedSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logging.Session(sess.ID).Info("Pruned session from memory (file deleted)")
		}
	}
	return pruned
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses the API
// at externalURL when it answers; otherwise it starts an internal HTTP API
// on a random loopback port and targets that.
func runStdioMCPWithInternalServer(gameService service.GameService, externalURL string) error {
	var baseURL string

	logging.Log.Infof("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		logging.Log.Infof("External API server found at %s, using it for MCP", externalURL)
		baseURL = externalURL
	} else {
		logging.Log.Info("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		logging.Log.Infof("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run()

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				logging.Log.WithError(err).Error("Internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + internalAddr
	}

	mcpClient := mcp.NewClient(baseURL)
	logging.Log.WithField("api", baseURL).Info("MCP stdio server ready")

	if err := mcpClient.ServeStdio(); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
