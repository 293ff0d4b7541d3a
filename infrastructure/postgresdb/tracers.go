package postgresdb

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
)

// MultiQueryTracer fans query events out to several tracers.
type MultiQueryTracer struct {
	Tracers []pgx.QueryTracer
}

func NewMultiQueryTracer(tracers ...pgx.QueryTracer) *MultiQueryTracer {
	return &MultiQueryTracer{Tracers: tracers}
}

func (m *MultiQueryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, t := range m.Tracers {
		ctx = t.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (m *MultiQueryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, t := range m.Tracers {
		t.TraceQueryEnd(ctx, conn, data)
	}
}

// LoggingQueryTracer logs every query at debug level.
type LoggingQueryTracer struct {
	logger *slog.Logger
}

func NewLoggingQueryTracer(logger *slog.Logger) *LoggingQueryTracer {
	return &LoggingQueryTracer{logger: logger}
}

var (
	replaceSpacesAroundParens = regexp.MustCompile(`\s*([()])\s*`)
	replaceSpaces             = regexp.MustCompile(`\s+`)
)

// compactSQL folds a multi-line statement onto one line.
func compactSQL(sql string) string {
	pretty := replaceSpaces.ReplaceAllString(sql, " ")
	pretty = replaceSpacesAroundParens.ReplaceAllString(pretty, "$1")
	return strings.TrimSpace(pretty)
}

func (l *LoggingQueryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	l.logger.DebugContext(ctx, "query start",
		slog.String("sql", compactSQL(data.SQL)),
		slog.Int("args", len(data.Args)),
	)
	return ctx
}

func (l *LoggingQueryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	if data.Err != nil {
		l.logger.ErrorContext(ctx, "query end",
			slog.String("error", data.Err.Error()),
			slog.String("command_tag", data.CommandTag.String()),
		)
		return
	}
	l.logger.DebugContext(ctx, "query end",
		slog.String("command_tag", data.CommandTag.String()),
	)
}
