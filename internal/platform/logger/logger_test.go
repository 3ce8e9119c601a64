package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	kit "wta/internal/platform/testkit"

	"github.com/rs/zerolog"
)

// useRoot installs l as the root logger for the test
func useRoot(t *testing.T, l Logger) {
	t.Helper()
	Get()
	prev := root.Load()
	root.Store(&l)
	t.Cleanup(func() { root.Store(prev) })
}

func decode(t *testing.T, line []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(line), &m); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, line)
	}
	return m
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"debug":    zerolog.DebugLevel,
		" INFO ":   zerolog.InfoLevel,
		"warn":     zerolog.WarnLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"panic":    zerolog.PanicLevel,
		"":         zerolog.DebugLevel,
		"disabled": zerolog.DebugLevel,
		"nonsense": zerolog.DebugLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %s want %s", in, got, want)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "wta-api")
	t.Setenv("LOG_CALLER", "1")
	t.Setenv("LOG_SAMPLE_EVERY", "x")

	o := FromEnv()
	if o.Level != "warn" || o.Format != "json" || o.Service != "wta-api" || !o.WithCaller || o.SampleEvery != 0 {
		t.Fatalf("FromEnv = %+v", o)
	}
}

func TestBuild(t *testing.T) {
	var buf bytes.Buffer
	l := build(Options{Level: "info", Format: "json", Service: "svc", Writer: &buf})
	l.Debug().Msg("hidden")
	l.Info().Msg("shown")

	m := decode(t, buf.Bytes())
	if m["message"] != "shown" || m["service"] != "svc" {
		t.Fatalf("unexpected line %v", m)
	}

	buf.Reset()
	c := build(Options{Level: "debug", Format: "console", Writer: &buf})
	c.Info().Str("k", "v").Msg("pretty")
	kit.MustContain(t, buf.String(), "k=v")
}

func TestContextLogger(t *testing.T) {
	var rootBuf, reqBuf bytes.Buffer
	useRoot(t, zerolog.New(&rootBuf))

	ctx := WithContext(context.Background(), zerolog.New(&reqBuf).With().Str("request_id", "r1").Logger())
	Annotate(ctx, "owner", "u1")
	C(ctx).Info().Msg("scoped")

	m := decode(t, reqBuf.Bytes())
	if m["request_id"] != "r1" || m["owner"] != "u1" {
		t.Fatalf("request logger fields missing: %v", m)
	}
	if rootBuf.Len() != 0 {
		t.Fatalf("root logger should be untouched, got %s", rootBuf.String())
	}
}

func TestCFallsBackToRoot(t *testing.T) {
	var buf bytes.Buffer
	useRoot(t, zerolog.New(&buf))

	Annotate(context.Background(), "owner", "leak")
	C(context.Background()).Info().Msg("bare")

	m := decode(t, buf.Bytes())
	if m["message"] != "bare" {
		t.Fatalf("unexpected line %v", m)
	}
	if _, ok := m["owner"]; ok {
		t.Fatalf("Annotate without a request logger must not touch root")
	}
}

func TestNamed(t *testing.T) {
	var buf bytes.Buffer
	useRoot(t, zerolog.New(&buf))

	Named("diff").Info().Msg("x")
	if m := decode(t, buf.Bytes()); m["component"] != "diff" {
		t.Fatalf("component missing: %v", m)
	}
	if Named("") != Get() {
		t.Fatalf("empty component should return root")
	}
}
