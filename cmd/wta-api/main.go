// @title         wta API
// @version       0.1.0
// @description   Versioned base64 comparisons
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"errors"
	"os"
	"syscall"
	"time"

	"wta/internal/platform/config"
	"wta/internal/platform/logger"
	phttp "wta/internal/platform/net/http"
	"wta/internal/platform/store"

	"wta/internal/services/api"
	diffmod "wta/internal/services/api/diff/module"
	drepo "wta/internal/services/api/diff/repo"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")      // pgCfg lives under SERVICE_PGSQL_*
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // chCfg lives under SERVICE_CLICKHOUSE_*

	// bring up logging early
	l := logger.Get()
	diffOpt := diffmod.FromConfig(root)
	ctx := context.Background()

	cfg := store.Config{AppName: "wta-api"}
	switch diffOpt.Store {
	case "pg":
		cfg.PG = store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 8)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),

			ConnectRetries: pgCfg.MayInt("CONNECT_RETRIES", 6),
			PingTimeout:    pgCfg.MayDuration("PING_TIMEOUT", 5*time.Second),
		}
	case "badger":
		cfg.KV = store.KVConfig{Enabled: true, Path: diffOpt.BadgerPath, InMemory: diffOpt.BadgerInMem}
	}
	if chCfg.MayBool("ENABLED", false) {
		cfg.CH = store.CHConfig{Enabled: true, URL: chCfg.MustString("DBURL"), Role: "api"}
	}

	st, err := store.Open(ctx, cfg, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	gctx, gcancel := context.WithTimeout(ctx, apiCfg.MayDuration("BOOT_GUARD_TIMEOUT", 5*time.Second))
	err = st.Guard(gctx)
	gcancel()
	if err != nil {
		l.Panic().Err(err).Msg("store guard failed")
	}

	if st.PG != nil && diffOpt.Migrate {
		if err := drepo.Migrate(ctx, st.PG); err != nil {
			l.Panic().Err(err).Msg("diff schema migration failed")
		}
	}

	var sink *drepo.CHSink
	if st.CH != nil {
		sink = drepo.NewCHSink(st.CH, drepo.SinkOptions{
			Batch:      chCfg.MayInt("BATCH", 500),
			FlushEvery: chCfg.MayDuration("FLUSH_EVERY", 2*time.Second),
		})
		if err := sink.Migrate(ctx); err != nil {
			// events are best effort, the API still serves without them
			l.Warn().Err(err).Msg("compare events table migration failed")
		}
	}

	// http server (reads CORE_API_API_PORT)
	srv := phttp.NewServer(apiCfg)

	opts := api.Options{
		Config:         root,
		Store:          st,
		Logger:         l,
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
	}
	if apiCfg.MayBool("METRICS", true) {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts.Metrics = reg
	}
	if sink != nil {
		opts.Events = sink
	}

	// mount our API
	api.Mount(srv.Router(), opts)

	shutdown := apiCfg.MayDuration("SHUTDOWN_TIMEOUT", 15*time.Second)

	var g run.Group
	{
		g.Add(func() error {
			return srv.Run(ctx)
		}, func(error) {
			sctx, cancel := context.WithTimeout(context.Background(), shutdown)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				l.Warn().Err(err).Msg("http shutdown")
			}
		})
	}
	if sink != nil {
		sctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			return sink.Run(sctx)
		}, func(error) {
			cancel()
		})
	}
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	var sig run.SignalError
	switch {
	case errors.As(err, &sig):
		l.Info().Str("signal", sig.Signal.String()).Msg("shutting down")
	case err != nil:
		l.Error().Err(err).Msg("http server stopped")
		_ = st.Close(context.Background())
		os.Exit(1)
	}
}
