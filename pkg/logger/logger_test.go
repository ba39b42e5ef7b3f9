package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tripweave/itinerary-engine/pkg/config"
)

func TestParseZapLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseZapLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseZapLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseZapLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseZapLevel("verbose"))
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")
	log, err := New(&config.Config{
		Environment:      "production",
		LoggerLevel:      "WARN",
		LoggerFormat:     "json",
		LoggerOutputPath: path,
	})
	require.NoError(t, err)

	log.Info("dropped below level")
	log.Warn("retrying operation", zap.String("operation", "searchFlights"))
	log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "retrying operation", entry["msg"])
	assert.Equal(t, "searchFlights", entry["operation"])
}

func TestSyncNil(t *testing.T) {
	var log *Logger
	assert.NotPanics(t, log.Sync)
}
