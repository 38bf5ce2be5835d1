package diagnostics

import (
	"fmt"
	"io"
	"strings"
)

// Severity levels for diagnostics
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	}
	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

// Location points into the IR: a function, optionally a block inside it and
// optionally the position of an instruction in that block
type Location struct {
	Function string
	Block    string
	// Index is the instruction's position in Block, or -1
	Index int
}

// At returns a location for a whole function
func At(function string) Location {
	return Location{Function: function, Index: -1}
}

// InBlock returns a location for a block of a function
func InBlock(function, block string) Location {
	return Location{Function: function, Block: block, Index: -1}
}

// AtInstruction returns a location for instruction index of a block
func AtInstruction(function, block string, index int) Location {
	return Location{Function: function, Block: block, Index: index}
}

// IsZero reports whether the location is empty
func (l Location) IsZero() bool { return l.Function == "" && l.Block == "" }

func (l Location) String() string {
	var sb strings.Builder
	if l.Function != "" {
		sb.WriteString("@" + l.Function)
	}
	if l.Block != "" {
		sb.WriteString("/%" + l.Block)
	}
	if l.Index >= 0 && l.Block != "" {
		fmt.Fprintf(&sb, "#%d", l.Index)
	}
	return sb.String()
}

// Diagnostic represents a single reported problem
type Diagnostic struct {
	Severity Severity
	Message  string
	Location Location
}

func (d Diagnostic) String() string {
	if d.Location.IsZero() {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Severity, d.Message)
}

// DiagnosticEngine collects and reports diagnostics
type DiagnosticEngine struct {
	diagnostics []Diagnostic
	errorCount  int
	warnCount   int
}

// NewDiagnosticEngine creates a new diagnostic engine
func NewDiagnosticEngine() *DiagnosticEngine {
	return &DiagnosticEngine{
		diagnostics: make([]Diagnostic, 0),
	}
}

// Report records d and updates the counters
func (d *DiagnosticEngine) Report(diag Diagnostic) {
	d.diagnostics = append(d.diagnostics, diag)
	switch diag.Severity {
	case SeverityError:
		d.errorCount++
	case SeverityWarning:
		d.warnCount++
	}
}

// Error reports an error
func (d *DiagnosticEngine) Error(message string) {
	d.Report(Diagnostic{Severity: SeverityError, Message: message, Location: Location{Index: -1}})
}

// ErrorAt reports an error at a specific location
func (d *DiagnosticEngine) ErrorAt(loc Location, format string, args ...any) {
	d.Report(Diagnostic{Severity: SeverityError, Message: fmt.Sprintf(format, args...), Location: loc})
}

// Warning reports a warning
func (d *DiagnosticEngine) Warning(message string) {
	d.Report(Diagnostic{Severity: SeverityWarning, Message: message, Location: Location{Index: -1}})
}

// WarningAt reports a warning at a specific location
func (d *DiagnosticEngine) WarningAt(loc Location, format string, args ...any) {
	d.Report(Diagnostic{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...), Location: loc})
}

// InfoAt reports a note at a specific location
func (d *DiagnosticEngine) InfoAt(loc Location, format string, args ...any) {
	d.Report(Diagnostic{Severity: SeverityInfo, Message: fmt.Sprintf(format, args...), Location: loc})
}

// Merge appends every diagnostic of other
func (d *DiagnosticEngine) Merge(other *DiagnosticEngine) {
	if other == nil {
		return
	}
	for _, diag := range other.diagnostics {
		d.Report(diag)
	}
}

// Diagnostics returns the collected diagnostics in report order
func (d *DiagnosticEngine) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), d.diagnostics...)
}

// HasErrors returns true if any errors were reported
func (d *DiagnosticEngine) HasErrors() bool {
	return d.errorCount > 0
}

// ErrorCount returns the number of errors
func (d *DiagnosticEngine) ErrorCount() int {
	return d.errorCount
}

// WarningCount returns the number of warnings
func (d *DiagnosticEngine) WarningCount() int {
	return d.warnCount
}

// Print writes all diagnostics to w, one per line
func (d *DiagnosticEngine) Print(w io.Writer) {
	for _, diag := range d.diagnostics {
		fmt.Fprintln(w, diag.String())
	}
}
