package console

import "encoding/json"

// Signals is the console state patched into the page.
type Signals struct {
	Output       string          `json:"output"`
	PendingInput bool            `json:"pendingInput"`
	Running      bool            `json:"running"`
	LastEvent    json.RawMessage `json:"lastEvent,omitempty"`
}

// RunSignals carries the program to run.
type RunSignals struct {
	Code string `json:"code"`
}

// KeySignals carries keystrokes for the console line buffer.
type KeySignals struct {
	Keys string `json:"keys"`
}
