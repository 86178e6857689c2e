// Package event defines the lifecycle events published while a program runs.
//
// Event is a closed set: every kind has a method on Handler, so adding a kind
// breaks every handler until it decides what to do with it.
package event

import (
	"encoding/json"
	"strconv"

	"github.com/leapstack-labs/portugo/pkg/diag"
)

// Kind names an event kind on the wire.
type Kind string

// Event kinds.
const (
	KindStart      Kind = "start"
	KindFinish     Kind = "finish"
	KindClear      Kind = "clear"
	KindError      Kind = "error"
	KindParseError Kind = "parseError"
)

// Event is a lifecycle event. Only this package defines events.
type Event interface {
	Kind() Kind
	Accept(h Handler)
	event()
}

// Handler receives one call per event kind.
type Handler interface {
	Start(Start)
	Finish(Finish)
	Clear(Clear)
	Error(Error)
	ParseError(ParseError)
}

// Start is published when a runner begins executing.
type Start struct{}

// Finish is published when execution completes normally.
// Time is the execution time in milliseconds.
type Finish struct {
	Time float64 `json:"time"`
}

// Clear is published when the program asks for the console to be cleared.
type Clear struct{}

// Error is published when execution stops with a runtime error.
type Error struct {
	Message string `json:"message"`
}

// ParseError is published when a program could not be started.
type ParseError struct {
	Errors []diag.Diagnostic `json:"errors"`
}

func (Start) Kind() Kind      { return KindStart }
func (Finish) Kind() Kind     { return KindFinish }
func (Clear) Kind() Kind      { return KindClear }
func (Error) Kind() Kind      { return KindError }
func (ParseError) Kind() Kind { return KindParseError }

func (Start) event()      {}
func (Finish) event()     {}
func (Clear) event()      {}
func (Error) event()      {}
func (ParseError) event() {}

func (e Start) Accept(h Handler)      { h.Start(e) }
func (e Finish) Accept(h Handler)     { h.Finish(e) }
func (e Clear) Accept(h Handler)      { h.Clear(e) }
func (e Error) Accept(h Handler)      { h.Error(e) }
func (e ParseError) Accept(h Handler) { h.ParseError(e) }

// String returns a short description of the event for logs.
func (e Finish) String() string {
	return "finish(" + strconv.FormatFloat(e.Time, 'f', -1, 64) + ")"
}

// Funcs adapts plain functions to a Handler. Nil fields ignore their kind.
type Funcs struct {
	OnStart      func(Start)
	OnFinish     func(Finish)
	OnClear      func(Clear)
	OnError      func(Error)
	OnParseError func(ParseError)
}

func (f Funcs) Start(e Start) {
	if f.OnStart != nil {
		f.OnStart(e)
	}
}

func (f Funcs) Finish(e Finish) {
	if f.OnFinish != nil {
		f.OnFinish(e)
	}
}

func (f Funcs) Clear(e Clear) {
	if f.OnClear != nil {
		f.OnClear(e)
	}
}

func (f Funcs) Error(e Error) {
	if f.OnError != nil {
		f.OnError(e)
	}
}

func (f Funcs) ParseError(e ParseError) {
	if f.OnParseError != nil {
		f.OnParseError(e)
	}
}

// envelope is the JSON form of an event: its kind plus its fields.
type envelope struct {
	Kind    Kind              `json:"kind"`
	Time    *float64          `json:"time,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  []diag.Diagnostic `json:"errors,omitempty"`
}

// Marshal encodes an event as {"kind": ..., <fields>}.
func Marshal(e Event) ([]byte, error) {
	env := envelope{Kind: e.Kind()}
	e.Accept(Funcs{
		OnFinish:     func(f Finish) { env.Time = &f.Time },
		OnError:      func(er Error) { env.Message = er.Message },
		OnParseError: func(p ParseError) { env.Errors = p.Errors },
	})
	return json.Marshal(env)
}
