package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarning, false},
		{"warning", LevelWarning, false},
		{" error ", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestLoggerCounters(t *testing.T) {
	var buf bytes.Buffer
	l := New("[test]", &buf, LevelDebug, FormatText)

	l.Debug("one %d", 1)
	l.Info("two")
	l.Warning("three")
	l.Error("four")
	l.ErrorAt("@main/entry", "bad %s", "operand")

	assert.True(t, l.HasErrors())
	assert.Equal(t, 2, l.ErrorCount())
	assert.Equal(t, 1, l.WarningCount())
	assert.Equal(t, 1, l.DebugCount())
	assert.Contains(t, buf.String(), "[test] @main/entry: bad operand")

	l.Reset()
	assert.False(t, l.HasErrors())
	assert.Equal(t, 0, l.WarningCount())
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New("", &buf, LevelWarning, FormatText)

	l.Debug("hidden")
	l.Info("hidden too")
	l.Warning("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	// filtered messages are still counted
	assert.Equal(t, 1, l.DebugCount())
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("", &buf, LevelInfo, FormatJSON).With("session", "abc")

	l.Info("built %s", "@main")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "built @main", rec["msg"])
	assert.Equal(t, "abc", rec["session"])
	assert.Equal(t, "INFO", rec["level"])
}

func TestPrintSummary(t *testing.T) {
	l := Discard()
	var out bytes.Buffer

	l.PrintSummary(&out)
	assert.Empty(t, out.String())

	l.Error("x")
	l.Warning("y")
	l.PrintSummary(&out)
	assert.True(t, strings.Contains(out.String(), "Errors: 1"))
	assert.True(t, strings.Contains(out.String(), "Warnings: 1"))
}
