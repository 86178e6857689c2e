package console

import (
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/muesli/termenv"
)

// Screen mirrors an orchestrator transcript on a terminal. Updates that
// extend what is shown are written incrementally; anything else redraws.
type Screen struct {
	mu    sync.Mutex
	out   *termenv.Output
	raw   bool
	shown string
	echo  string
}

// NewScreen returns a screen writing to w.
func NewScreen(w io.Writer) *Screen {
	return &Screen{out: termenv.NewOutput(w)}
}

// SetRaw switches newline translation for terminals in raw mode.
func (s *Screen) SetRaw(raw bool) {
	s.mu.Lock()
	s.raw = raw
	s.mu.Unlock()
}

// SkipEcho marks text as already drawn by someone else. The next transcript
// growth that matches it is not written again.
func (s *Screen) SkipEcho(text string) {
	s.mu.Lock()
	s.echo += text
	s.mu.Unlock()
}

// Update draws transcript.
func (s *Screen) Update(transcript string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case strings.HasPrefix(transcript, s.shown):
		s.write(s.consumeEcho(transcript[len(s.shown):]))
	case strings.HasPrefix(s.shown, transcript) && !strings.Contains(s.shown[len(transcript):], "\n"):
		// Backspace within the current line.
		n := utf8.RuneCountInString(s.shown[len(transcript):])
		s.write(strings.Repeat("\b \b", n))
	default:
		s.echo = ""
		s.out.ClearScreen()
		s.write(transcript)
	}
	s.shown = transcript
}

// PrepareInput clears the current line so a line editor can redraw it as
// its prompt. It returns the text of that line.
func (s *Screen) PrepareInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompt := s.shown[strings.LastIndexByte(s.shown, '\n')+1:]
	if prompt != "" {
		s.out.ClearLine()
		s.write("\r")
	}
	return prompt
}

func (s *Screen) consumeEcho(text string) string {
	i := 0
	for i < len(text) && i < len(s.echo) && text[i] == s.echo[i] {
		i++
	}
	if i == 0 {
		s.echo = ""
		return text
	}
	s.echo = s.echo[i:]
	return text[i:]
}

func (s *Screen) write(text string) {
	if text == "" {
		return
	}
	if s.raw {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	_, _ = s.out.WriteString(text)
}
