package logging

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
)

func TestJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuneup.log")
	logger, err := New(Options{Level: "warn", Format: "json", Output: path})
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("save assessment", zap.String("key", "talent-assessment-v1"))
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "save assessment", entry["msg"])
	assert.Equal(t, "talent-assessment-v1", entry["key"])
}

func TestLevels(t *testing.T) {
	cases := []struct {
		opts Options
		want zapcore.Level
	}{
		{Options{}, zapcore.InfoLevel},
		{Options{Level: "error"}, zapcore.ErrorLevel},
		{Options{Level: "error", Verbose: true}, zapcore.DebugLevel},
		{Options{Format: "console", Level: "debug"}, zapcore.DebugLevel},
	}
	for _, c := range cases {
		c.opts.Output = filepath.Join(t.TempDir(), "x.log")
		logger, err := New(c.opts)
		require.NoError(t, err)
		if !logger.Core().Enabled(c.want) || (c.want > zapcore.DebugLevel && logger.Core().Enabled(c.want-1)) {
			t.Fatalf("%+v: expected minimum level %s", c.opts, c.want)
		}
	}
}

func TestBadLevelAndDiscard(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	logger, err := New(Options{Output: "discard"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}
