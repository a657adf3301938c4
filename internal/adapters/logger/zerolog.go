package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"featurePrep/internal/ports"
)

// Config selects level, output format and destination of the logger.
type Config struct {
	Level  string    // debug, info, warn, error
	Format string    // "console" or "json"
	Output io.Writer // defaults to os.Stderr
}

// ZeroLogger implements ports.Logger on top of zerolog.
type ZeroLogger struct {
	zl zerolog.Logger
}

// ParseLevel converts a level name to a zerolog level.
// Unknown or empty names fall back to Info.
func ParseLevel(levelStr string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New creates a zerolog-backed logger.
func New(cfg Config) (*ZeroLogger, error) {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	switch cfg.Format {
	case "", "console":
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339, NoColor: cfg.Output != nil}
	case "json":
	default:
		return nil, fmt.Errorf("unsupported log format %q: %w", cfg.Format, ports.ErrConfigurationError)
	}

	zl := zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()

	return &ZeroLogger{zl: zl}, nil
}

func (l *ZeroLogger) log(event *zerolog.Event, msg string, fields ...ports.Fields) {
	if len(fields) > 0 && fields[0] != nil {
		event = event.Fields(map[string]interface{}(fields[0]))
	}
	event.Msg(msg)
}

// Debug logs a message at Debug level.
func (l *ZeroLogger) Debug(ctx context.Context, msg string, fields ...ports.Fields) {
	l.log(l.zl.Debug().Ctx(ctx), msg, fields...)
}

// Info logs a message at Info level.
func (l *ZeroLogger) Info(ctx context.Context, msg string, fields ...ports.Fields) {
	l.log(l.zl.Info().Ctx(ctx), msg, fields...)
}

// Warn logs a message at Warning level.
func (l *ZeroLogger) Warn(ctx context.Context, msg string, fields ...ports.Fields) {
	l.log(l.zl.Warn().Ctx(ctx), msg, fields...)
}

// Error logs an error message at Error level.
func (l *ZeroLogger) Error(ctx context.Context, err error, msg string, fields ...ports.Fields) {
	l.log(l.zl.Error().Ctx(ctx).Err(err), msg, fields...)
}
