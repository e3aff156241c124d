package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "talent-assessment-v1", cfg.Storage.StateKey)
	assert.Equal(t, 250*time.Millisecond, cfg.Storage.SaveDelay)
	assert.Equal(t, 80, cfg.Scoring.ToneThreshold)
	assert.Equal(t, 75, cfg.Radar.WeakThreshold)
	assert.Equal(t, 150*time.Millisecond, cfg.Radar.Animation)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tuneup.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
addr: ":9000"
log:
  level: debug
storage:
  driver: memory
  save_delay: 1s
radar:
  size: 400
`), 0o644))
	t.Setenv("TUNEUP_LOG_LEVEL", "warn")
	t.Setenv("TUNEUP_CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("TUNEUP_SHARE_SECRET", "s3cret")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", ":8080", "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--addr", ":7000"}))

	cfg, err := Load(file, flags)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr, "changed flag wins")
	assert.Equal(t, "warn", cfg.Log.Level, "env beats file and unchanged flag")
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, time.Second, cfg.Storage.SaveDelay)
	assert.Equal(t, 400, cfg.Radar.Size)
	assert.Equal(t, "s3cret", cfg.Share.Secret)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"TUNEUP_STORAGE_DRIVER":         "postgres",
		"TUNEUP_LOG_FORMAT":             "xml",
		"TUNEUP_RADAR_SIZE":             "50",
		"TUNEUP_SCORING_TONE_THRESHOLD": "101",
		"TUNEUP_SCORING_GAP_THRESHOLD":  "0",
	}
	for env, val := range cases {
		t.Run(env, func(t *testing.T) {
			t.Setenv(env, val)
			_, err := Load("", nil)
			assert.Error(t, err)
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}
