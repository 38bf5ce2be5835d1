package diagnostics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationString(t *testing.T) {
	tests := []struct {
		loc  Location
		want string
	}{
		{At("main"), "@main"},
		{InBlock("main", "entry"), "@main/%entry"},
		{AtInstruction("main", "loop", 3), "@main/%loop#3"},
		{AtInstruction("main", "", 3), "@main"},
		{Location{Index: -1}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.loc.String())
	}
	assert.True(t, Location{Index: -1}.IsZero())
	assert.False(t, At("f").IsZero())
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Severity: SeverityWarning, Message: "block is unreachable", Location: InBlock("f", "dead")}
	assert.Equal(t, "@f/%dead: WARNING: block is unreachable", d.String())

	plain := Diagnostic{Severity: SeverityError, Message: "nil function", Location: Location{Index: -1}}
	assert.Equal(t, "ERROR: nil function", plain.String())
	assert.Equal(t, "SEVERITY(7)", Severity(7).String())
}

func TestDiagnosticEngine(t *testing.T) {
	e := NewDiagnosticEngine()
	assert.False(t, e.HasErrors())
	assert.Empty(t, e.Diagnostics())

	e.Warning("first")
	e.ErrorAt(At("f"), "bad operand %d", 2)
	e.InfoAt(At("f"), "note")
	e.Error("second")
	e.WarningAt(InBlock("f", "b"), "odd")

	assert.True(t, e.HasErrors())
	assert.Equal(t, 2, e.ErrorCount())
	assert.Equal(t, 2, e.WarningCount())
	diags := e.Diagnostics()
	assert.Len(t, diags, 5)
	assert.Equal(t, "bad operand 2", diags[1].Message)

	// Diagnostics returns a copy
	diags[0].Message = "changed"
	assert.Equal(t, "first", e.Diagnostics()[0].Message)

	var buf bytes.Buffer
	e.Print(&buf)
	assert.Equal(t, "WARNING: first\n"+
		"@f: ERROR: bad operand 2\n"+
		"@f: INFO: note\n"+
		"ERROR: second\n"+
		"@f/%b: WARNING: odd\n", buf.String())
}

func TestMerge(t *testing.T) {
	a, b := NewDiagnosticEngine(), NewDiagnosticEngine()
	a.Error("a")
	b.Warning("b")
	b.Error("c")

	a.Merge(b)
	a.Merge(nil)
	assert.Equal(t, 2, a.ErrorCount())
	assert.Equal(t, 1, a.WarningCount())
	assert.Len(t, a.Diagnostics(), 3)
	assert.Equal(t, 1, b.ErrorCount(), "the source is unchanged")
}
