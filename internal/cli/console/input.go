package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
)

// lineSource reads one line of user input on demand.
type lineSource interface {
	ReadLine(prompt string) (string, error)
	// Echoes reports whether the source already drew the line it returned.
	Echoes() bool
	Close() error
}

// pipeSource reads lines from a non-interactive reader.
type pipeSource struct {
	scanner *bufio.Scanner
}

func newPipeSource(r io.Reader) *pipeSource {
	return &pipeSource{scanner: bufio.NewScanner(r)}
}

func (p *pipeSource) ReadLine(string) (string, error) {
	if p.scanner.Scan() {
		return p.scanner.Text(), nil
	}
	if err := p.scanner.Err(); err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return "", io.EOF
}

func (p *pipeSource) Echoes() bool { return false }
func (p *pipeSource) Close() error { return nil }

// readlineSource edits lines with readline, keeping a history file.
type readlineSource struct {
	rl *readline.Instance
}

func newReadlineSource(in io.Reader, out io.Writer, historyFile string) (*readlineSource, error) {
	rl, err := readline.NewEx(&readline.Config{
		HistoryFile:     historyFile,
		Stdin:           io.NopCloser(in),
		Stdout:          out,
		InterruptPrompt: "^C",
		EOFPrompt:       "^D",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize line editor: %w", err)
	}
	return &readlineSource{rl: rl}, nil
}

func (s *readlineSource) ReadLine(prompt string) (string, error) {
	s.rl.SetPrompt(prompt)
	line, err := s.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupted
	}
	return line, err
}

func (s *readlineSource) Echoes() bool { return true }
func (s *readlineSource) Close() error { return s.rl.Close() }
