package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("test", &buf, WARN)

	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	logger.Warn("warn %d", 3)
	logger.Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "[WARN] [test] warn 3")
	assert.Contains(t, out, "[ERROR] [test] error 4")
}

func TestSetLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("lvl", &buf, ERROR)
	logger.Info("hidden")
	logger.SetLevels(TRACE, ERROR+1)
	logger.Trace("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" Warning "))
	assert.Equal(t, INFO, ParseLevel("что-то"))
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Info("не должно паниковать")
	assert.NoError(t, logger.Close())
}

func TestManagerCreatesFileLoggers(t *testing.T) {
	prev := LogDir
	LogDir = t.TempDir()
	defer func() { LogDir = prev }()

	lm := &LoggerManager{loggers: make(map[string]*Logger)}

	first, err := lm.GetLogger("world")
	require.NoError(t, err)
	second, err := lm.GetLogger("world")
	require.NoError(t, err)
	assert.Same(t, first, second)

	first.SetLevels(ERROR+1, TRACE)
	first.Debug("в файл")

	assert.Equal(t, []string{"world"}, lm.ListComponents())
	require.NoError(t, lm.SetLogLevel("world", ERROR, ERROR))
	assert.Error(t, lm.SetLogLevel("missing", ERROR, ERROR))
	require.NoError(t, lm.CloseAll())

	matches, err := filepath.Glob(filepath.Join(LogDir, "world_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "в файл"))
}
