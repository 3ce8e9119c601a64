package pg

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// QueryEvent describes one statement sent to postgres
type QueryEvent struct {
	SQL     string
	Args    []any
	Elapsed time.Duration
	Err     error
	Slow    bool
}

// QueryTracer observes statements after they complete
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// TracerFunc adapts a plain function to QueryTracer
type TracerFunc func(ctx context.Context, ev QueryEvent)

// OnQuery calls f
func (f TracerFunc) OnQuery(ctx context.Context, ev QueryEvent) { f(ctx, ev) }

// LogTracer writes every statement to log regardless of the root level
// Arguments are counted, never printed: side payloads can be megabytes of base64
func LogTracer(log zerolog.Logger) QueryTracer {
	l := log.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return TracerFunc(func(_ context.Context, ev QueryEvent) {
		e := l.Debug()
		switch {
		case ev.Err != nil && !errors.Is(ev.Err, pgx.ErrNoRows):
			e = l.Error().Err(ev.Err)
		case ev.Slow:
			e = l.Warn()
		}
		e.Dur("elapsed", ev.Elapsed).
			Bool("slow", ev.Slow).
			Int("args", len(ev.Args)).
			Str("sql", squash(ev.SQL)).
			Msg("pg query")
	})
}

// squash folds whitespace runs so multi line statements log on one line
func squash(sql string) string { return strings.Join(strings.Fields(sql), " ") }
