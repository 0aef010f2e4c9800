package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options selects the minimum level and the encoding of a logger.
type Options struct {
	Level  string
	Format string
}

// NewLogger creates a zap.Logger writing to stderr. An empty level means info
// and an empty format means console.
func NewLogger(options Options) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	switch strings.ToLower(options.Format) {
	case FormatJSON:
	case "", FormatConsole:
		cfg.Encoding = FormatConsole
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.Sampling = nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want %q or %q)", options.Format, FormatJSON, FormatConsole)
	}

	if options.Level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(options.Level)); err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}
