// Package console hosts an orchestrator on a terminal or a pipe.
//
// Three input modes are supported. Raw mode puts the terminal in raw mode
// and feeds every keystroke to the orchestrator's line buffer. Line mode lets
// readline edit each input line and submits it whole. Pipe mode reads lines
// from a non-interactive stdin whenever the program asks for input.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/term"

	"github.com/leapstack-labs/portugo/internal/orchestrator"
	"github.com/leapstack-labs/portugo/internal/stream"
	"github.com/leapstack-labs/portugo/pkg/event"
)

// Mode selects how user input reaches the program.
type Mode string

// Input modes.
const (
	ModeAuto Mode = "auto"
	ModeRaw  Mode = "raw"
	ModeLine Mode = "line"
	ModePipe Mode = "pipe"
)

// Modes lists the accepted mode names.
var Modes = []string{string(ModeAuto), string(ModeRaw), string(ModeLine), string(ModePipe)}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeAuto, ModeRaw, ModeLine, ModePipe:
		return m, nil
	case "":
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("unknown console mode %q (want one of %s)", s, strings.Join(Modes, ", "))
	}
}

const ctrlC = 0x03

// Errors returned by Run.
var (
	ErrSyntax      = errors.New("o programa não pôde ser executado")
	ErrInterrupted = errors.New("execução interrompida")
	ErrInputClosed = errors.New("a entrada terminou enquanto o programa aguardava dados")
)

// RuntimeError reports a program that stopped with an error.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

// Config configures a Host.
type Config struct {
	In          io.Reader
	Out         io.Writer
	Mode        Mode
	HistoryFile string
	Logger      *slog.Logger
}

// Host connects an orchestrator to a terminal.
type Host struct {
	orch   *orchestrator.Orchestrator
	screen *Screen
	mode   Mode
	logger *slog.Logger

	lines lineSource

	// raw mode
	restore   func()
	active    atomic.Bool
	interrupt chan struct{}
	pumpOnce  sync.Once
	in        io.Reader
}

// New creates a host for orch. Auto mode picks raw mode when In is a
// terminal and pipe mode otherwise.
func New(orch *orchestrator.Orchestrator, cfg Config) (*Host, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	fd, isTerm := terminalFd(cfg.In)
	mode := cfg.Mode
	if mode == ModeAuto || mode == "" {
		mode = ModePipe
		if isTerm {
			mode = ModeRaw
		}
	}

	h := &Host{
		orch:      orch,
		screen:    NewScreen(cfg.Out),
		mode:      mode,
		logger:    logger,
		interrupt: make(chan struct{}, 1),
		in:        cfg.In,
	}

	switch mode {
	case ModeRaw:
		if !isTerm {
			return nil, errors.New("raw mode needs a terminal on stdin")
		}
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("failed to enter raw mode: %w", err)
		}
		h.restore = func() { _ = term.Restore(fd, state) }
		h.screen.SetRaw(true)
	case ModeLine:
		src, err := newReadlineSource(cfg.In, cfg.Out, cfg.HistoryFile)
		if err != nil {
			return nil, err
		}
		h.lines = src
	case ModePipe:
		h.lines = newPipeSource(cfg.In)
	}

	logger.Debug("console ready", "mode", mode)
	return h, nil
}

func terminalFd(r io.Reader) (int, bool) {
	f, ok := r.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

// Mode returns the resolved input mode.
func (h *Host) Mode() Mode { return h.mode }

// Close restores the terminal and releases the line editor.
func (h *Host) Close() error {
	if h.restore != nil {
		h.restore()
		h.restore = nil
	}
	if h.lines != nil {
		return h.lines.Close()
	}
	return nil
}

type lineReply struct {
	line string
	err  error
}

// Run compiles and runs code, mirroring the transcript on the screen until
// the program finishes, fails or ctx is cancelled. Code received on reload
// replaces the running program in place.
func (h *Host) Run(ctx context.Context, code string, reload <-chan string) error {
	return h.run(ctx, func() { h.orch.Run(code) }, reload)
}

// RunTranspiled is Run for a request that has already been compiled.
func (h *Host) RunTranspiled(ctx context.Context, req orchestrator.Request) error {
	return h.run(ctx, func() { h.orch.RunTranspiled(req) }, nil)
}

func (h *Host) run(ctx context.Context, launch func(), reload <-chan string) error {
	done := make(chan error, 1)
	finish := func(err error) {
		select {
		case done <- err:
		default:
		}
	}
	pending := make(chan struct{}, 1)

	var subs stream.Set
	defer subs.Release()
	subs.Add(
		h.orch.Output().Subscribe(h.screen.Update),
		h.orch.PendingInput().Subscribe(func(waiting bool) {
			if waiting {
				select {
				case pending <- struct{}{}:
				default:
				}
			}
		}),
		h.orch.Events().Subscribe(func(e event.Event) {
			e.Accept(event.Funcs{
				OnFinish:     func(event.Finish) { finish(nil) },
				OnError:      func(e event.Error) { finish(&RuntimeError{Message: e.Message}) },
				OnParseError: func(event.ParseError) { finish(ErrSyntax) },
			})
		}),
	)

	h.active.Store(true)
	defer h.active.Store(false)
	if h.mode == ModeRaw {
		h.pumpOnce.Do(func() { go h.pumpKeys() })
	}

	// stop keeps the transcript on screen.
	stop := func() {
		subs.Release()
		h.orch.Stop()
	}

	launch()

	var replies chan lineReply
	for {
		select {
		case err := <-done:
			return err
		case <-pending:
			if h.lines == nil || replies != nil {
				continue
			}
			replies = make(chan lineReply, 1)
			go h.readLine(replies)
		case r := <-replies:
			replies = nil
			if r.err != nil {
				stop()
				if errors.Is(r.err, io.EOF) {
					return ErrInputClosed
				}
				if errors.Is(r.err, ErrInterrupted) {
					return ErrInterrupted
				}
				return r.err
			}
			if h.lines.Echoes() {
				h.screen.SkipEcho(r.line + "\n")
			}
			h.orch.Keys(r.line + string(orchestrator.KeyEnter))
		case next, ok := <-reload:
			if !ok {
				reload = nil
				continue
			}
			h.logger.Debug("reloading program")
			h.orch.Run(next)
		case <-h.interrupt:
			stop()
			return ErrInterrupted
		case <-ctx.Done():
			stop()
			return ctx.Err()
		}
	}
}

func (h *Host) readLine(replies chan<- lineReply) {
	prompt := ""
	if h.lines.Echoes() {
		prompt = h.screen.PrepareInput()
	}
	line, err := h.lines.ReadLine(prompt)
	replies <- lineReply{line: line, err: err}
}

// pumpKeys forwards keystrokes while a program runs. It lives as long as
// the input does.
func (h *Host) pumpKeys() {
	r := bufio.NewReader(h.in)
	for {
		c, _, err := r.ReadRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				h.logger.Warn("keyboard read failed", "error", err)
			}
			return
		}
		if !h.active.Load() {
			continue
		}
		if c == ctrlC {
			select {
			case h.interrupt <- struct{}{}:
			default:
			}
			continue
		}
		h.orch.Key(c)
	}
}
