// Package observability provides structured logging, metrics collection,
// health checks and request correlation for taskglitch.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LogLevel is a level name as it appears in configuration.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ServiceName is attached to every log entry.
const ServiceName = "taskglitch"

// LogConfig configures NewLogger. A nil Output means stderr; stdout is
// reserved for command output.
type LogConfig struct {
	Level          LogLevel
	Format         LogFormat
	Output         io.Writer
	AddSource      bool
	ServiceName    string
	ServiceVersion string
}

// DefaultLogConfig is the development configuration: text at info.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:          LogLevelInfo,
		Format:         LogFormatText,
		ServiceName:    ServiceName,
		ServiceVersion: "dev",
	}
}

// ProductionLogConfig logs JSON with source locations.
func ProductionLogConfig() LogConfig {
	cfg := DefaultLogConfig()
	cfg.Format = LogFormatJSON
	cfg.AddSource = true
	cfg.ServiceVersion = "unknown"
	return cfg
}

// NewLogger builds a logger that stamps service attributes on every entry
// and copies correlation values out of the record's context.
func NewLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level), AddSource: cfg.AddSource}

	var base slog.Handler = slog.NewTextHandler(out, opts)
	if cfg.Format == LogFormatJSON {
		base = slog.NewJSONHandler(out, opts)
	}

	var attrs []slog.Attr
	if cfg.ServiceName != "" {
		attrs = append(attrs, slog.String("service", cfg.ServiceName))
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, slog.String("version", cfg.ServiceVersion))
	}
	if len(attrs) > 0 {
		base = base.WithAttrs(attrs)
	}
	return slog.New(contextHandler{next: base})
}

// LoggerFromEnv is used before config.Load has run, so it reads the
// TASKGLITCH_ENV, TASKGLITCH_LOG_LEVEL and TASKGLITCH_LOG_FORMAT variables
// directly.
func LoggerFromEnv() *slog.Logger {
	return NewLogger(logConfigFromEnv(os.Getenv))
}

func logConfigFromEnv(getenv func(string) string) LogConfig {
	cfg := DefaultLogConfig()
	if getenv("TASKGLITCH_ENV") == "production" {
		cfg = ProductionLogConfig()
	}
	if v := getenv("TASKGLITCH_LOG_LEVEL"); v != "" {
		cfg.Level = LogLevel(v)
	}
	if v := getenv("TASKGLITCH_LOG_FORMAT"); v != "" {
		cfg.Format = LogFormat(v)
	}
	return cfg
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

var levels = map[LogLevel]slog.Level{
	LogLevelDebug: slog.LevelDebug,
	LogLevelInfo:  slog.LevelInfo,
	LogLevelWarn:  slog.LevelWarn,
	LogLevelError: slog.LevelError,
}

// parseLevel is case-insensitive; unknown names fall back to info.
func parseLevel(level LogLevel) slog.Level {
	if l, ok := levels[LogLevel(strings.ToLower(string(level)))]; ok {
		return l
	}
	return slog.LevelInfo
}

// contextHandler adds the correlation, request and operation ids carried
// by ctx to each record.
type contextHandler struct {
	next slog.Handler
}

func (h contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, kv := range [...][2]string{
		{CorrelationIDKey, CorrelationIDFromContext(ctx)},
		{RequestIDKey, RequestIDFromContext(ctx)},
		{OperationKey, OperationFromContext(ctx)},
	} {
		if kv[1] != "" {
			r.AddAttrs(slog.String(kv[0], kv[1]))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{next: h.next.WithGroup(name)}
}
