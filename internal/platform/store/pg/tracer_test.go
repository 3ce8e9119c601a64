package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &m); err != nil {
		t.Fatalf("decode log line %q: %v", lines[len(lines)-1], err)
	}
	return m
}

func TestLogTracer_Levels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		ev    QueryEvent
		level string
	}{
		{name: "plain", ev: QueryEvent{SQL: "SELECT 1"}, level: "debug"},
		{name: "slow", ev: QueryEvent{SQL: "SELECT 1", Slow: true}, level: "warn"},
		{name: "failed", ev: QueryEvent{SQL: "SELECT 1", Err: errors.New("boom")}, level: "error"},
		{name: "no rows is not a failure", ev: QueryEvent{SQL: "SELECT 1", Err: pgx.ErrNoRows}, level: "debug"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			// root above debug must not hide statements
			LogTracer(zerolog.New(&buf).Level(zerolog.ErrorLevel)).OnQuery(context.Background(), c.ev)
			if got := lastLine(t, &buf)["level"]; got != c.level {
				t.Fatalf("level = %v want %s", got, c.level)
			}
		})
	}
}

func TestLogTracer_Fields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	LogTracer(zerolog.New(&buf)).OnQuery(context.Background(), QueryEvent{
		SQL:     "UPDATE diff_comparisons\n\t\tSET result = $4\n\t\tWHERE version = $3",
		Args:    []any{"owner", "id", int64(3), "QUJD"},
		Elapsed: 2 * time.Millisecond,
	})
	m := lastLine(t, &buf)
	if m["sql"] != "UPDATE diff_comparisons SET result = $4 WHERE version = $3" {
		t.Fatalf("sql = %v", m["sql"])
	}
	if m["args"] != float64(4) || m["component"] != "pg" || m["message"] != "pg query" {
		t.Fatalf("fields = %v", m)
	}
	if strings.Contains(buf.String(), "QUJD") {
		t.Fatalf("argument values leaked into the log: %s", buf.String())
	}
}

func TestTracerFunc(t *testing.T) {
	t.Parallel()
	var got QueryEvent
	TracerFunc(func(_ context.Context, ev QueryEvent) { got = ev }).OnQuery(context.Background(), QueryEvent{SQL: "x"})
	if got.SQL != "x" {
		t.Fatalf("TracerFunc did not forward the event")
	}
}
