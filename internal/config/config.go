package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. TUNEUP_STORAGE_PATH.
const EnvPrefix = "TUNEUP"

// Config is the merged runtime configuration.
type Config struct {
	Addr           string        `mapstructure:"addr"`
	StaticDir      string        `mapstructure:"static_dir"`
	DevFrontendURL string        `mapstructure:"dev_frontend_url"`
	Commit         string        `mapstructure:"commit"`
	BuildTime      string        `mapstructure:"build_time"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	ShutdownGrace  time.Duration `mapstructure:"shutdown_grace"`

	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Share   ShareConfig   `mapstructure:"share"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	Radar   RadarConfig   `mapstructure:"radar"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type StorageConfig struct {
	// Driver is "sqlite" or "memory".
	Driver        string        `mapstructure:"driver"`
	Path          string        `mapstructure:"path"`
	SnapshotPath  string        `mapstructure:"snapshot_path"`
	MigrationsDir string        `mapstructure:"migrations_dir"`
	StateKey      string        `mapstructure:"state_key"`
	SaveDelay     time.Duration `mapstructure:"save_delay"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type ShareConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Secret enables signed share links when set.
	Secret string `mapstructure:"secret"`
}

type ScoringConfig struct {
	ToneThreshold int `mapstructure:"tone_threshold"`
	GapThreshold  int `mapstructure:"gap_threshold"`
}

type RadarConfig struct {
	Size          int           `mapstructure:"size"`
	WeakThreshold int           `mapstructure:"weak_threshold"`
	Animation     time.Duration `mapstructure:"animation"`
	SVGCacheSize  int           `mapstructure:"svg_cache_size"`
}

var defaults = map[string]any{
	"addr":                   ":8080",
	"static_dir":             "",
	"dev_frontend_url":       "",
	"commit":                 "",
	"build_time":             "",
	"cors_origins":           []string{},
	"shutdown_grace":         5 * time.Second,
	"log.level":              "info",
	"log.format":             "json",
	"log.output":             "stderr",
	"storage.driver":         "sqlite",
	"storage.path":           "data/tuneup.db",
	"storage.snapshot_path":  "",
	"storage.migrations_dir": "",
	"storage.state_key":      "talent-assessment-v1",
	"storage.save_delay":     250 * time.Millisecond,
	"catalog.path":           "",
	"share.base_url":         "",
	"share.secret":           "",
	"scoring.tone_threshold": 80,
	"scoring.gap_threshold":  8,
	"radar.size":             320,
	"radar.weak_threshold":   75,
	"radar.animation":        150 * time.Millisecond,
	"radar.svg_cache_size":   128,
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"addr":           "addr",
	"static-dir":     "static_dir",
	"log-output":     "log.output",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"storage":        "storage.driver",
	"db":             "storage.path",
	"catalog":        "catalog.path",
	"share-base-url": "share.base_url",
	"share-secret":   "share.secret",
}

// Load merges defaults, an optional config file, TUNEUP_* environment
// variables and any changed flags in flags, in increasing priority.
func Load(file string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// splitList flattens comma separated entries, which is how lists arrive from the environment.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate rejects values no command can run with.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case "sqlite", "memory":
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be sqlite or memory, got %q", c.Storage.Driver))
	}
	if c.Storage.Driver == "sqlite" && strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, errors.New("storage.path is required for the sqlite driver"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	if c.Radar.Size < 120 {
		errs = append(errs, fmt.Errorf("radar.size must be at least 120, got %d", c.Radar.Size))
	}
	if c.Scoring.ToneThreshold < 0 || c.Scoring.ToneThreshold > 100 {
		errs = append(errs, fmt.Errorf("scoring.tone_threshold must be in [0,100], got %d", c.Scoring.ToneThreshold))
	}
	if c.Radar.WeakThreshold < 0 || c.Radar.WeakThreshold > 100 {
		errs = append(errs, fmt.Errorf("radar.weak_threshold must be in [0,100], got %d", c.Radar.WeakThreshold))
	}
	if c.Scoring.GapThreshold < 1 || c.Scoring.GapThreshold > 100 {
		errs = append(errs, fmt.Errorf("scoring.gap_threshold must be in [1,100], got %d", c.Scoring.GapThreshold))
	}
	if c.Storage.SaveDelay < 0 || c.Radar.Animation < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	return errors.Join(errs...)
}
