package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jrazmi/routegen/sdk/environment"
)

// Logger is a wrapper around the standard slog.Logger.
type Logger struct {
	*slog.Logger
}

// options holds all configurable settings for the logger.
type options struct {
	level      slog.Level
	output     io.Writer
	addSource  bool
	format     string // "json" or "text"
	timeFormat string // "RFC3339", "Unix", "UnixMilli", or custom format
}

// Options is the exportable configuration struct
type Options struct {
	Level      string `yaml:"level" json:"level" env:"LOG_LEVEL" default:"INFO"`
	Output     string `yaml:"output" json:"output" env:"LOG_OUTPUT" default:"STDERR"`
	Format     string `yaml:"format" json:"format" env:"LOG_FORMAT" default:"text"`
	TimeFormat string `yaml:"time_format" json:"time_format" env:"LOG_TIME_FORMAT" default:"RFC3339"`
	Source     bool   `yaml:"source" json:"source" env:"LOG_SOURCE" default:"false"`
}

// Option overrides a single logger setting.
type Option func(*options)

func WithLevel(level string) Option {
	return func(o *options) {
		o.level = parseLevel(level)
	}
}

// WithOutput sends log records to w instead of the configured output.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

func NewDefault(opts ...Option) *Logger {
	options := Options{
		Level:      "INFO",
		Output:     "STDERR",
		Format:     "text",
		TimeFormat: time.RFC3339,
	}
	return newLogger(options, opts...)
}

// NewDiscard returns a logger that drops every record. Handy in tests.
func NewDiscard() *Logger {
	return NewDefault(WithOutput(io.Discard))
}

func NewFromEnv(prefix string, opts ...Option) (*Logger, error) {
	var options Options
	if err := environment.ParseEnvTags(prefix, &options); err != nil {
		return nil, fmt.Errorf("parsing logger config: %w", err)
	}
	return newLogger(options, opts...), nil
}

// With returns a Logger that includes the given attributes in every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func newLogger(cfg Options, opts ...Option) *Logger {
	o := &options{
		level:      parseLevel(cfg.Level),
		output:     parseOutput(cfg.Output),
		timeFormat: cfg.TimeFormat,
		format:     cfg.Format,
		addSource:  cfg.Source,
	}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     o.level,
		AddSource: o.addSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.TimeKey || o.timeFormat == "" {
				return a
			}
			switch o.timeFormat {
			case "Unix":
				return slog.Int64(slog.TimeKey, a.Value.Time().Unix())
			case "UnixMilli":
				return slog.Int64(slog.TimeKey, a.Value.Time().UnixMilli())
			case "RFC3339Nano":
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339Nano))
			case "RFC3339":
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			default:
				return slog.String(slog.TimeKey, a.Value.Time().Format(o.timeFormat))
			}
		},
	}

	var handler slog.Handler
	switch o.format {
	case "json":
		handler = slog.NewJSONHandler(o.output, handlerOpts)
	default:
		handler = slog.NewTextHandler(o.output, handlerOpts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// InfoContextf logs an info message with formatting
func (l *Logger) InfoContextf(ctx context.Context, format string, args ...any) {
	l.InfoContext(ctx, fmt.Sprintf(format, args...))
}

// WarnContextf logs a warning message with formatting
func (l *Logger) WarnContextf(ctx context.Context, format string, args ...any) {
	l.WarnContext(ctx, fmt.Sprintf(format, args...))
}
