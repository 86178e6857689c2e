package orchestrator

import "unicode/utf8"

// Control codes understood by Key.
const (
	KeyBackspace = '\b'
	KeyDelete    = 0x7f
	KeyEnter     = '\r'
	KeyNewline   = '\n'
)

// Key feeds one keystroke into the line buffer.
//
// Backspace and DEL erase the last buffered rune, and its echo, when there
// is one. Enter commits the buffered line to the active runner and echoes a
// newline; with no runner the line is dropped. Anything else is buffered and
// echoed. The transcript is published after every keystroke.
func (o *Orchestrator) Key(r rune) {
	var (
		commit bool
		line   string
		runner Runner
	)

	o.mu.Lock()
	switch r {
	case KeyBackspace, KeyDelete:
		if n := len(o.inputBuffer); n > 0 {
			o.inputBuffer = o.inputBuffer[:n-1]
			o.output = dropLastRune(o.output)
		}
	case KeyEnter, KeyNewline:
		commit, line, runner = true, string(o.inputBuffer), o.runner
		o.inputBuffer = o.inputBuffer[:0]
		o.output += "\n"
	default:
		o.inputBuffer = append(o.inputBuffer, r)
		o.output += string(r)
	}
	out, seq := o.snapshotLocked()
	o.mu.Unlock()

	o.publishOutput(out, seq)
	if commit && runner != nil {
		runner.Submit(line)
	}
}

// Keys feeds every rune of s through Key, in order.
func (o *Orchestrator) Keys(s string) {
	for _, r := range s {
		o.Key(r)
	}
}

func dropLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
