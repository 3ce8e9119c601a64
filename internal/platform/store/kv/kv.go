// Package kv provides an embedded key value store backed by badger
package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// Config configures the embedded badger database
type Config struct {
	Path     string
	InMemory bool

	// SyncWrites fsyncs every commit
	SyncWrites bool

	// GCInterval runs value log gc periodically, zero disables it
	GCInterval     time.Duration
	GCDiscardRatio float64
}

// DefaultConfig returns durable defaults for path
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns a config for tests and throwaway runs
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// DB is a badger handle with a managed gc loop
type DB struct {
	*badger.DB

	log      zerolog.Logger
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// seam for tests
var openBadger = badger.Open

// Open opens badger with cfg, bridging its logs onto log
func Open(cfg Config, log zerolog.Logger) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("kv: path is required unless in memory")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("kv: create dir %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(&bridge{log: log.With().Str("component", "badger").Logger()})

	bdb, err := openBadger(opts)
	if err != nil {
		return nil, fmt.Errorf("kv: open badger: %w", err)
	}

	db := &DB{DB: bdb, log: log, stop: make(chan struct{}), done: make(chan struct{})}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		ratio := cfg.GCDiscardRatio
		if ratio <= 0 || ratio >= 1 {
			ratio = 0.5
		}
		go db.gcLoop(cfg.GCInterval, ratio)
	} else {
		close(db.done)
	}
	return db, nil
}

func (d *DB) gcLoop(every time.Duration, ratio float64) {
	defer close(d.done)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-d.stop:
			return
		case <-t.C:
			// ErrNoRewrite means nothing to collect
			if err := d.RunValueLogGC(ratio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				d.log.Warn().Err(err).Msg("badger value log gc failed")
			}
		}
	}
}

// Ping reports whether the database is open
func (d *DB) Ping(context.Context) error {
	if d == nil || d.DB == nil {
		return errors.New("kv: nil db")
	}
	if d.IsClosed() {
		return errors.New("kv: closed")
	}
	return nil
}

// Close stops the gc loop and closes badger, safe to call twice
func (d *DB) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	var err error
	d.stopOnce.Do(func() {
		close(d.stop)
		<-d.done
		err = d.DB.Close()
	})
	return err
}

// bridge adapts zerolog to badger.Logger
type bridge struct{ log zerolog.Logger }

func (b *bridge) Errorf(f string, a ...any)   { b.log.Error().Msgf(trimNL(f), a...) }
func (b *bridge) Warningf(f string, a ...any) { b.log.Warn().Msgf(trimNL(f), a...) }
func (b *bridge) Infof(f string, a ...any)    { b.log.Debug().Msgf(trimNL(f), a...) }
func (b *bridge) Debugf(f string, a ...any)   { b.log.Trace().Msgf(trimNL(f), a...) }

func trimNL(f string) string {
	for len(f) > 0 && f[len(f)-1] == '\n' {
		f = f[:len(f)-1]
	}
	return f
}
