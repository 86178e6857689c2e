// Package diag defines the diagnostic record shared by the parser, the
// checker and the execution orchestrator.
package diag

import "fmt"

// Diagnostic is a single problem found in program text.
// Line and Column are 1-based.
type Diagnostic struct {
	Message string `json:"message" yaml:"message"`
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
}

// New creates a diagnostic at the given position.
func New(line, column int, format string, args ...any) Diagnostic {
	return Diagnostic{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	}
}

// String formats the diagnostic the way it is shown in the console transcript.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s (linha %d, posição %d)", d.Message, d.Line, d.Column)
}

// Collector accumulates diagnostics reported through Report.
// The zero value is ready to use.
type Collector struct {
	items []Diagnostic
}

// Report appends a diagnostic. It has the signature of a parser error listener.
func (c *Collector) Report(d Diagnostic) {
	c.items = append(c.items, d)
}

// Diagnostics returns the collected diagnostics in report order.
func (c *Collector) Diagnostics() []Diagnostic {
	return c.items
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int {
	return len(c.items)
}
