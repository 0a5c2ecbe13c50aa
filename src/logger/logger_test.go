package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogger_FiltersBelowLevel(t *testing.T) {
	t.Parallel()

	// Arrange
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf, "WARNING", "Test")

	// Act
	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warning("shown %d", 3)
	l.Error("shown %d", 4)

	// Assert
	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "[Test] WARNING: shown 3")
	require.Contains(t, out, "[Test] ERROR: shown 4")
}

func TestLogger_NamedKeepsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	child := NewLoggerWithWriter(&buf, "ERROR", "Parent").Named("Child")

	child.Info("dropped")
	child.Error("kept")

	require.Equal(t, "Child", child.Name())
	require.NotContains(t, buf.String(), "dropped")
	require.Contains(t, buf.String(), "[Child] ERROR: kept")
}

func TestLogger_CriticalExits(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf, "INFO", "Crit")
	code := -1
	l.exit = func(c int) { code = c }

	l.Critical("boom")

	require.Equal(t, 1, code)
	require.Contains(t, buf.String(), "CRITICAL: boom")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, LevelDebug, ParseLevel("debug"))
	require.Equal(t, LevelWarning, ParseLevel(" warn "))
	require.Equal(t, LevelInfo, ParseLevel(""))
	require.Equal(t, LevelInfo, ParseLevel("verbose"))
}
