package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type pingTx struct {
	TxRunner
	err    error
	closed bool
}

func (p *pingTx) Ping(context.Context) error { return p.err }
func (p *pingTx) Close() error               { p.closed = true; return nil }

type quietCH struct {
	Clickhouse
	closeErr error
}

func (q quietCH) Close() error { return q.closeErr }

func TestOpen_NothingEnabled(t *testing.T) {
	t.Parallel()
	s, err := Open(context.Background(), Config{}, WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.PG != nil || s.CH != nil || s.KV != nil {
		t.Fatalf("no backend should be open: %+v", s)
	}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("Guard on empty store: %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close on empty store: %v", err)
	}
}

func TestOpen_OptionError(t *testing.T) {
	t.Parallel()
	boom := errors.New("bad option")
	if _, err := Open(context.Background(), Config{}, func(*Store) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("want option error, got %v", err)
	}
}

func TestOpen_BadPGURLNamesBackend(t *testing.T) {
	t.Parallel()
	s, err := Open(context.Background(), Config{PG: PGConfig{Enabled: true, URL: "://bad"}})
	if err == nil || s != nil {
		t.Fatalf("want error and nil store, got %v %v", s, err)
	}
	if !strings.Contains(err.Error(), "open pg") {
		t.Fatalf("error should name the backend: %v", err)
	}
}

func TestOpen_FailureClosesEarlierBackends(t *testing.T) {
	t.Parallel()
	// kv opens after ch, a missing path fails it once ch is already up
	_, err := Open(context.Background(), Config{
		CH: CHConfig{Enabled: true, URL: "clickhouse://localhost:9000/default"},
		KV: KVConfig{Enabled: true},
	})
	if err == nil || !strings.Contains(err.Error(), "open kv") {
		t.Fatalf("want kv error, got %v", err)
	}
}

func TestOpen_KVInMemory(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := context.Background()
	s, err := Open(ctx, Config{KV: KVConfig{Enabled: true, InMemory: true}}, WithLogger(zerolog.New(&buf)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.KV == nil {
		t.Fatalf("KV not opened")
	}
	if !strings.Contains(buf.String(), `"backend":"kv"`) {
		t.Fatalf("missing ready log: %s", buf.String())
	}
	if err := s.Guard(ctx); err != nil {
		t.Fatalf("Guard: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Guard(ctx); err == nil || !strings.Contains(err.Error(), "kv:") {
		t.Fatalf("Guard after Close should fail on kv, got %v", err)
	}
}

func TestGuard_JoinsFailures(t *testing.T) {
	t.Parallel()
	s := &Store{PG: &pingTx{err: errors.New("pg down")}}
	err := s.Guard(context.Background())
	if err == nil || !strings.Contains(err.Error(), "pg: pg down") {
		t.Fatalf("Guard = %v", err)
	}

	var nilStore *Store
	if err := nilStore.Guard(context.Background()); err == nil {
		t.Fatalf("nil store should not guard clean")
	}
}

func TestClose_ClosesEverySeam(t *testing.T) {
	t.Parallel()
	tx := &pingTx{}
	boom := errors.New("ch close")
	s := &Store{PG: tx, CH: quietCH{closeErr: boom}}
	if err := s.Close(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Close = %v", err)
	}
	if !tx.closed {
		t.Fatalf("pg not closed")
	}
}
