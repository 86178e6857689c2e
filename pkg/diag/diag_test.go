package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnostic_String(t *testing.T) {
	d := New(3, 14, "variável %q não declarada", "x")
	assert.Equal(t, `variável "x" não declarada (linha 3, posição 14)`, d.String())
}

func TestCollector(t *testing.T) {
	var c Collector
	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.Diagnostics())

	c.Report(New(1, 1, "a"))
	c.Report(New(2, 5, "b"))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []Diagnostic{
		{Message: "a", Line: 1, Column: 1},
		{Message: "b", Line: 2, Column: 5},
	}, c.Diagnostics())
}
