package store

import (
	"context"
	"time"

	"wta/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is what both the pool and an open transaction offer
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// traced runs statements on q and reports each one to the pool tracer
type traced struct {
	q  pgxQuerier
	pg *pg.PG
}

func (t traced) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := t.q.Exec(ctx, sql, args...)
	t.trace(ctx, sql, args, start, err)
	return ct, err
}

func (t traced) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := t.q.Query(ctx, sql, args...)
	t.trace(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// QueryRow traces once Scan returns so the scan error is part of the event
func (t traced) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	return scanHook{r: t.q.QueryRow(ctx, sql, args...), done: func(err error) { t.trace(ctx, sql, args, start, err) }}
}

func (t traced) trace(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if t.pg == nil || t.pg.Tracer == nil {
		return
	}
	elapsed := time.Since(start)
	t.pg.Tracer.OnQuery(ctx, pg.QueryEvent{SQL: sql, Args: args, Elapsed: elapsed, Err: err, Slow: t.pg.Slow(elapsed)})
}

type scanHook struct {
	r    pgx.Row
	done func(error)
}

func (s scanHook) Scan(dst ...any) error {
	err := s.r.Scan(dst...)
	s.done(err)
	return err
}

// pgAdapter is the TxRunner handed out as Store.PG
type pgAdapter struct {
	traced
	begin func(ctx context.Context) (pgx.Tx, error)
	ping  func(ctx context.Context) error
	close func()
}

func newPGAdapter(p *pg.PG) *pgAdapter {
	return &pgAdapter{
		traced: traced{q: p.Pool, pg: p},
		begin:  p.Pool.Begin,
		ping:   p.Pool.Ping,
		close:  p.Close,
	}
}

// Ping checks the pool can reach postgres
func (a *pgAdapter) Ping(ctx context.Context) error { return a.ping(ctx) }

// Close closes the pool
func (a *pgAdapter) Close() error { a.close(); return nil }

// Tx commits when fn returns nil and rolls back otherwise, including on panic
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op after commit

	if err := fn(traced{q: tx, pg: a.pg}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
