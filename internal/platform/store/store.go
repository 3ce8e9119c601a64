// Package store opens the optional storage backends a process needs and hands out narrow seams over them
package store

import (
	"context"
	"errors"
	"fmt"

	"wta/internal/platform/logger"
	"wta/internal/platform/store/kv"
)

// Store holds whichever backends were enabled, the rest stay nil
type Store struct {
	Log logger.Logger

	// PG is the postgres seam
	PG TxRunner

	// CH is the clickhouse seam used by analytics sinks
	CH Clickhouse

	// KV is the embedded badger database
	KV *kv.DB
}

// Row is a single row result
type Row interface {
	Scan(dest ...any) error
}

// Rows is an open result set, callers must Close it
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag reports what a write did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the sql surface repos are written against
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also run fn inside one transaction
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar seam: batched inserts plus DDL
type Clickhouse interface {
	Insert(ctx context.Context, table string, data any) error
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Open brings up every backend enabled in cfg
// a failure closes whatever was already opened
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	steps := []struct {
		on   bool
		name string
		open func() error
	}{
		{cfg.PG.Enabled, "pg", func() (err error) { s.PG, err = openPG(ctx, cfg, s.Log); return err }},
		{cfg.CH.Enabled, "ch", func() (err error) { s.CH, err = openCH(ctx, cfg); return err }},
		{cfg.KV.Enabled, "kv", func() (err error) { s.KV, err = openKV(cfg, s.Log); return err }},
	}
	for _, st := range steps {
		if !st.on {
			continue
		}
		if err := st.open(); err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("store: open %s: %w", st.name, err)
		}
		s.Log.Debug().Str("backend", st.name).Msg("store backend ready")
	}
	return s, nil
}

// Guard pings every open backend and joins the failures
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("store: nil store")
	}
	var errs []error
	for name, seam := range s.seams() {
		if p, ok := seam.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every open backend, nil ones are skipped
func (s *Store) Close(context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.KV != nil {
		errs = append(errs, s.KV.Close())
	}
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// seams lists the open backends by name
func (s *Store) seams() map[string]any {
	out := map[string]any{}
	if s.PG != nil {
		out["pg"] = s.PG
	}
	if s.CH != nil {
		out["ch"] = s.CH
	}
	if s.KV != nil {
		out["kv"] = s.KV
	}
	return out
}
