package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/wricardo/wordweeper/game/engine"
	"github.com/wricardo/wordweeper/game/service"
	"github.com/wricardo/wordweeper/logging"
)

const (
	DefaultWidth = 80
	helpText     = `Commands:
  r ROW COL   reveal a cell (or just: ROW COL)
  f ROW COL   toggle a flag
  b           redraw the board
  h           show this help
  q           give up
`
)

type commandKind int

const (
	cmdReveal commandKind = iota
	cmdFlag
	cmdBoard
	cmdHelp
	cmdQuit
)

type command struct {
	kind commandKind
	pos  engine.Position
}

// parseCommand reads one input line. A bare "ROW COL" pair is a reveal.
func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return command{}, errors.New("empty command")
	}

	switch fields[0] {
	case "q", "quit", "exit":
		return command{kind: cmdQuit}, nil
	case "h", "help", "?":
		return command{kind: cmdHelp}, nil
	case "b", "board":
		return command{kind: cmdBoard}, nil
	case "r", "reveal":
		pos, err := parsePosition(fields[1:])
		return command{kind: cmdReveal, pos: pos}, err
	case "f", "flag":
		pos, err := parsePosition(fields[1:])
		return command{kind: cmdFlag, pos: pos}, err
	}

	pos, err := parsePosition(fields)
	if err != nil {
		return command{}, fmt.Errorf("unknown command %q", fields[0])
	}
	return command{kind: cmdReveal, pos: pos}, nil
}

func parsePosition(fields []string) (engine.Position, error) {
	if len(fields) != 2 {
		return engine.Position{}, errors.New("expected ROW COL")
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return engine.Position{}, fmt.Errorf("invalid row %q", fields[0])
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return engine.Position{}, fmt.Errorf("invalid column %q", fields[1])
	}
	return engine.Position{Row: row, Col: col}, nil
}

// Player runs an interactive game on a line-oriented terminal
type Player struct {
	svc    service.GameService
	in     *bufio.Scanner
	out    io.Writer
	colour bool
	width  int
}

// Option configures a Player
type Option func(*Player)

// WithColour forces colour output on or off
func WithColour(enabled bool) Option {
	return func(p *Player) {
		p.colour = enabled
	}
}

// NewPlayer reads commands from in and writes to out. Colour is enabled when
// out is a terminal.
func NewPlayer(svc service.GameService, in io.Reader, out io.Writer, opts ...Option) *Player {
	p := &Player{
		svc:   svc,
		in:    bufio.NewScanner(in),
		out:   out,
		width: DefaultWidth,
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.colour = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			p.width = w
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Player) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *Player) readLine() (string, bool) {
	p.printf("> ")
	if !p.in.Scan() {
		return "", false
	}
	return p.in.Text(), true
}

// SelectPreset lists the presets and reads a choice by number or ID. An empty
// answer picks the first preset.
func (p *Player) SelectPreset(ctx context.Context) (string, error) {
	configs, err := p.svc.ListConfigs(ctx)
	if err != nil {
		return "", err
	}
	if len(configs) == 0 {
		return "", errors.New("no presets available")
	}

	p.printf("%s\n", paint(ColorTitle, "Choose a game:", p.colour))
	for i, cfg := range configs {
		p.printf("  %d) %s - %s %s, %dx%d\n", i+1, cfg.Name, cfg.Difficulty, cfg.Mode, cfg.Rows, cfg.Cols)
	}

	for {
		line, ok := p.readLine()
		if !ok {
			return "", io.EOF
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return configs[0].ConfigID, nil
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(configs) {
			return configs[n-1].ConfigID, nil
		}
		for _, cfg := range configs {
			if strings.EqualFold(cfg.ConfigID, line) {
				return cfg.ConfigID, nil
			}
		}
		p.printf("Pick 1-%d\n", len(configs))
	}
}

// Play runs one game to completion. Closing the input abandons the game.
func (p *Player) Play(ctx context.Context, req service.CreateSessionRequest) (*engine.SessionResult, error) {
	info, err := p.svc.CreateSession(ctx, req)
	if err != nil {
		return nil, err
	}
	sessionID := info.ID
	log := logging.Log.WithFields(logrus.Fields{"session_id": sessionID, "preset": info.PresetID})
	log.Debug("Terminal game started")

	board := *info.Board
	if need := (board.Cols + 1) * 3; need > p.width {
		p.printf("Warning: the board needs %d columns, the terminal has %d\n", need, p.width)
	}
	p.printf("%s", helpText)
	p.draw(board)

	for !board.State.Terminal() {
		if err := ctx.Err(); err != nil {
			return p.quit(ctx, sessionID)
		}

		line, ok := p.readLine()
		if !ok {
			return p.quit(ctx, sessionID)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		cmd, err := parseCommand(line)
		if err != nil {
			p.printf("%s\n", paint(ColorDenied, err.Error(), p.colour))
			continue
		}

		switch cmd.kind {
		case cmdQuit:
			return p.quit(ctx, sessionID)
		case cmdHelp:
			p.printf("%s", helpText)
		case cmdBoard:
			view, err := p.svc.GetBoard(ctx, sessionID)
			if err != nil {
				return nil, err
			}
			board = *view
			p.draw(board)
		case cmdFlag:
			result, err := p.svc.Flag(ctx, sessionID, cmd.pos)
			if err != nil && !errors.Is(err, engine.ErrSessionClosed) {
				return nil, err
			}
			if result != nil {
				board = result.Board
			} else if view, verr := p.svc.GetBoard(ctx, sessionID); verr == nil {
				board = *view
			}
			p.draw(board)
		case cmdReveal:
			result, err := p.svc.Reveal(ctx, sessionID, cmd.pos)
			if err != nil {
				return nil, err
			}
			board = result.Board
			p.printf("%s\n", result.Message)
			if result.StatsError != "" {
				p.printf("Warning: %s\n", result.StatsError)
			}
			p.draw(board)
		}
	}

	return p.finish(ctx, sessionID)
}

func (p *Player) draw(v engine.BoardView) {
	p.printf("\n%s%s", RenderStatus(v, p.colour), RenderBoard(v, p.colour))
}

// quit abandons the game, which records it as lost
func (p *Player) quit(ctx context.Context, sessionID string) (*engine.SessionResult, error) {
	return p.finish(context.WithoutCancel(ctx), sessionID)
}

func (p *Player) finish(ctx context.Context, sessionID string) (*engine.SessionResult, error) {
	result, err := p.svc.DeleteSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if result != nil {
		p.printf("\n%s", RenderResult(result, p.colour))
	}
	return result, nil
}
