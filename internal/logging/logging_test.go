package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/biovalue/internal/config"
)

func TestNewEmptyPathIsNop(t *testing.T) {
	l, err := New(config.LogConfig{Level: "debug"})
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(-1))
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l, err := New(config.LogConfig{Level: "warn", Path: path})
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept")
	_ = l.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), `"msg":"kept"`)
	require.NotContains(t, string(b), "dropped")
	require.Contains(t, string(b), `"logger":"biovalue"`)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud", Path: filepath.Join(t.TempDir(), "x.log")})
	require.Error(t, err)
}
