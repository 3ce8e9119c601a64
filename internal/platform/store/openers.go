package store

import (
	"context"

	"wta/internal/platform/logger"
	chx "wta/internal/platform/store/ch"
	"wta/internal/platform/store/kv"
	"wta/internal/platform/store/pg"
)

func openPG(ctx context.Context, cfg Config, log logger.Logger) (TxRunner, error) {
	pc := pg.Config{
		URL:         cfg.PG.URL,
		MaxConns:    cfg.PG.MaxConns,
		SlowMs:      cfg.PG.SlowQueryMs,
		Retries:     cfg.PG.ConnectRetries,
		PingTimeout: cfg.PG.PingTimeout,
	}
	if cfg.PG.LogSQL {
		pc.Tracer = pg.LogTracer(log)
	}
	p, err := pg.Open(ctx, pc)
	if err != nil {
		return nil, err
	}
	return newPGAdapter(p), nil
}

func openCH(ctx context.Context, cfg Config) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, Role: cfg.CH.Role, Tag: cfg.AppName})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}

func openKV(cfg Config, log logger.Logger) (*kv.DB, error) {
	kc := kv.DefaultConfig(cfg.KV.Path)
	if cfg.KV.InMemory {
		kc = kv.InMemoryConfig()
	}
	return kv.Open(kc, log)
}
