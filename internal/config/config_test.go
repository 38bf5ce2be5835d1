package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.True(t, cfg.Verify)
	assert.False(t, cfg.Fingerprint)
	assert.NoError(t, cfg.Validate())
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
log:
  level: debug
  format: json
output_dir: build/ir
fingerprint: true
samples: [add, max]
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "build/ir", cfg.OutputDir)
	assert.True(t, cfg.Verify, "absent fields keep their default")
	assert.True(t, cfg.Fingerprint)
	assert.Equal(t, []string{"add", "max"}, cfg.Samples)
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "ouput_dir: x\n", "failed to parse YAML"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"empty output", "output_dir: \"\"\n", "output_dir"},
		{"malformed", "log: [\n", "failed to parse YAML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "irbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte("verify: false\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Verify)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "warning"

	var buf bytes.Buffer
	logger := cfg.NewLogger("[irbuild]", &buf)
	logger.Info("hidden")
	logger.Warning("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[irbuild] shown")
}
