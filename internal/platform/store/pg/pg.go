// Package pg opens the pgx pool behind the platform store
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// DefaultRetries is how many extra pings Open makes before giving up
	DefaultRetries = 6
	// DefaultPingTimeout bounds a single readiness ping
	DefaultPingTimeout = 5 * time.Second

	maxBackoff = 2 * time.Second
)

// Config configures the pool and its boot guard
type Config struct {
	URL      string
	MaxConns int32
	// SlowMs marks statements at or above this many milliseconds as slow, negative disables it
	SlowMs int

	Retries     int
	PingTimeout time.Duration
	Tracer      QueryTracer
}

// PG is a postgres pool with an optional tracer
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// seams
var (
	newPool      = pgxpool.NewWithConfig
	pingPool     = func(ctx context.Context, p *pgxpool.Pool) error { return p.Ping(ctx) }
	closePool    = func(p *pgxpool.Pool) { p.Close() }
	firstBackoff = 150 * time.Millisecond
)

// Open parses cfg, builds the pool and waits until postgres answers a ping
func Open(ctx context.Context, cfg Config) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("pg: parse url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: new pool: %w", err)
	}
	if err := waitReady(ctx, pool, cfg); err != nil {
		closePool(pool)
		return nil, err
	}
	return &PG{Pool: pool, Tracer: cfg.Tracer, SlowMs: cfg.SlowMs}, nil
}

func waitReady(ctx context.Context, pool *pgxpool.Pool, cfg Config) error {
	retries := cfg.Retries
	if retries <= 0 {
		retries = DefaultRetries
	}
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}

	backoff := firstBackoff
	var last error
	for attempt := 0; ; attempt++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		last = pingPool(pctx, pool)
		cancel()
		if last == nil {
			return nil
		}
		if attempt == retries {
			return fmt.Errorf("pg: not reachable after %d attempts: %w", attempt+1, last)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// Slow reports whether a statement that took elapsed crosses the slow threshold
func (p *PG) Slow(elapsed time.Duration) bool {
	return p.SlowMs >= 0 && elapsed >= time.Duration(p.SlowMs)*time.Millisecond
}

// Close closes the pool
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		closePool(p.Pool)
	}
}
