package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the level, encoding and destination of the logger.
type Options struct {
	Level  string
	Format string
	// Output is a path, "stderr", "stdout" or "discard".
	Output  string
	Verbose bool
}

// New builds the process logger. Verbose forces debug level.
func New(opts Options) (*zap.Logger, error) {
	if strings.EqualFold(opts.Output, "discard") {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	if opts.Format == "console" {
		cfg = zap.NewDevelopmentConfig()
		cfg.Development = false
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	if opts.Output != "" {
		cfg.OutputPaths = []string{opts.Output}
		cfg.ErrorOutputPaths = []string{opts.Output}
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
