package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLevel(t *testing.T) {
	Init("debug")
	assert.Equal(t, zerolog.DebugLevel, Logger.GetLevel())

	Init("nonsense")
	assert.Equal(t, zerolog.InfoLevel, Logger.GetLevel())
}

func TestAddFileLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	Init("info")
	require.NoError(t, AddFileLogger(dir))
	assert.Equal(t, filepath.Join(dir, logFilename), GetLogFilePath())

	Logger.Info().Str("pkg", "eu.foo").Msg("file logger test")
	Logger.Debug().Msg("filtered out")

	data, err := os.ReadFile(GetLogFilePath())
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "file logger test"))
	assert.False(t, strings.Contains(string(data), "filtered out"))
}
