// Package module mounts the meta endpoints and checks whichever stores are open
package module

import (
	"time"

	"wta/internal/core/version"
	"wta/internal/modkit"
	"wta/internal/modkit/httpkit"

	metahttp "wta/internal/services/api/meta/http"
)

// New builds the meta module under /meta
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	d := metahttp.Deps{
		ServiceName: version.Info().Service,
		StartedAt:   time.Now(),
		Checks:      readyChecks(deps),
		Timeout:     deps.Cfg.Prefix("CORE_API_").MayDuration("READY_TIMEOUT", 2*time.Second),
	}
	return b.Base(func(r httpkit.Router) { metahttp.Register(r, d) })
}

// readyChecks lists only the stores that are wired, typed nils would report unknown
func readyChecks(deps modkit.Deps) []metahttp.Check {
	var out []metahttp.Check
	if deps.PG != nil {
		out = append(out, metahttp.Check{Name: "pg", Target: deps.PG})
	}
	if deps.CH != nil {
		out = append(out, metahttp.Check{Name: "ch", Target: deps.CH})
	}
	if deps.KV != nil {
		out = append(out, metahttp.Check{Name: "kv", Target: deps.KV})
	}
	return out
}
