// Package api assembles the HTTP API: the shared middleware stack, the versioned modules,
// docs, metrics and the profiler
package api

import (
	"time"

	"wta/internal/modkit"
	"wta/internal/modkit/httpkit"
	"wta/internal/modkit/swaggerkit"
	"wta/internal/platform/config"
	"wta/internal/platform/logger"
	phttp "wta/internal/platform/net/http"
	"wta/internal/platform/net/middleware"
	"wta/internal/platform/store"

	"wta/internal/services/api/diff/domain"
	diffmod "wta/internal/services/api/diff/module"
	diffsvc "wta/internal/services/api/diff/service"
	metamod "wta/internal/services/api/meta/module"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool

	// Metrics receives the engine collectors and is served on /metrics when set
	Metrics *prometheus.Registry
	// Events receives compare analytics, optional
	Events domain.EventSink
}

// Mount mounts every module under /api/v1 and the operational endpoints at the root
func Mount(r phttp.Router, opt Options) {
	deps := modkit.DepsFrom(opt.Store, opt.Config, opt.Logger)

	var metrics *diffsvc.Metrics
	if opt.Metrics != nil {
		metrics = diffsvc.NewMetrics(opt.Metrics)
		r.Handle("/metrics", promhttp.HandlerFor(opt.Metrics, promhttp.HandlerOpts{Registry: opt.Metrics}))
	}
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	mods := []modkit.Module{
		metamod.New(deps),
		diffmod.New(deps, modkit.WithPorts(diffmod.Ports{
			Events:  opt.Events,
			Metrics: metrics,
		})),
	}

	httpkit.MountVersion(r, "v1", middleware.Stack(stackOptions(deps)), func(api httpkit.Router) {
		for _, m := range mods {
			deps.Log.Debug().Str("module", m.Name()).Msg("mounting module")
			m.MountRoutes(api)
		}
	})
}

// stackOptions reads CORE_API_TIMEOUT, CORE_API_SLOW_REQUEST and CORE_API_CORS_ORIGINS
func stackOptions(deps modkit.Deps) middleware.StackOptions {
	c := deps.Cfg.Prefix("CORE_API_")
	return middleware.StackOptions{
		Log:         deps.Log,
		Timeout:     c.MayDuration("TIMEOUT", 30*time.Second),
		SlowRequest: c.MayDuration("SLOW_REQUEST", time.Second),
		CORSOrigins: c.MayCSV("CORS_ORIGINS", nil),
	}
}
