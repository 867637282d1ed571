package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		enabled bool
		level   slog.Level
		wantErr bool
	}{
		{in: "", enabled: false},
		{in: "off", enabled: false},
		{in: "OFF", enabled: false},
		{in: "debug", enabled: true, level: slog.LevelDebug},
		{in: "INFO", enabled: true, level: slog.LevelInfo},
		{in: "warn", enabled: true, level: slog.LevelWarn},
		{in: "error", enabled: true, level: slog.LevelError},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			enabled, level, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.enabled, enabled)
			assert.Equal(t, tt.level, level)
		})
	}
}

func TestInit_Disabled(t *testing.T) {
	var out bytes.Buffer
	_, err := Init(Options{Enabled: true, Level: slog.LevelDebug, Output: &out})
	require.NoError(t, err)
	require.True(t, L.Enabled(t.Context(), slog.LevelDebug))

	closeFn, err := Init(Options{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	require.NoError(t, closeFn())
	assert.False(t, L.Enabled(t.Context(), slog.LevelDebug))
	assert.False(t, L.Enabled(t.Context(), slog.LevelError))

	Error("dropped")
	assert.Empty(t, out.String(), "disabled logger must not write to the previous output")
}

func TestInit_Writer(t *testing.T) {
	var out bytes.Buffer
	closeFn, err := Init(Options{Enabled: true, Level: slog.LevelWarn, Output: &out})
	require.NoError(t, err)
	defer closeFn()
	t.Cleanup(func() { Init(Options{}) })

	Info("dropped")
	Warn("kept", "size", 64)

	assert.NotContains(t, out.String(), "dropped")
	assert.Contains(t, out.String(), "kept")
	assert.Contains(t, out.String(), "size=64")
}

func TestInit_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heapctl.log")
	closeFn, err := Init(Options{Enabled: true, Level: slog.LevelDebug, JSON: true, File: path})
	require.NoError(t, err)
	t.Cleanup(func() { Init(Options{}) })

	Debug("alloc", "ptr", 16)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"alloc"`)
	assert.Contains(t, string(data), `"ptr":16`)
}
