// Package module wires comparisons into the API using modkit
package module

import (
	"wta/internal/core/diff"
	"wta/internal/modkit"
	"wta/internal/modkit/httpkit"
	"wta/internal/modkit/repokit"
	"wta/internal/platform/net/middleware"

	"wta/internal/services/api/diff/domain"
	dhttp "wta/internal/services/api/diff/http"
	drepo "wta/internal/services/api/diff/repo"
	dsvc "wta/internal/services/api/diff/service"
)

// Module serves comparisons under /diff, behind bearer auth
type Module struct {
	modkit.Base
	svc dsvc.Service
}

// Ports are the optional collaborators injected with modkit.WithPorts
type Ports struct {
	Auth    middleware.AuthPort // overrides the configured bearer verifier
	Events  domain.EventSink
	Metrics *dsvc.Metrics
	Store   domain.Store // overrides CORE_API_DIFF_STORE
}

// New constructs the comparison module, it panics on invalid configuration
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("diff"),
		modkit.WithPrefix("/diff"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)

	injected := modkit.PortsAs[Ports](b)

	st := injected.Store
	if st == nil {
		st = storeFor(cfg.Store, deps)
	}

	cmp, err := diff.New(diff.Kind(cfg.Comparator), cfg.Charset)
	if err != nil {
		panic(err)
	}

	auth := injected.Auth
	if auth == nil {
		port, err := NewAuth(cfg.Auth)
		if err != nil {
			panic(err)
		}
		auth = port
	}

	svc := dsvc.New(st, cmp, dsvc.Options{
		Workers: cfg.Workers,
		Events:  injected.Events,
		Metrics: injected.Metrics,
	})
	return &Module{
		svc: svc,
		Base: b.Base(func(r httpkit.Router) {
			httpkit.Protected(r, auth, func(pr httpkit.Router) {
				dhttp.Register(pr, svc, dhttp.Options{MaxBytes: cfg.MaxBytes})
			})
		}),
	}
}

func storeFor(kind string, deps modkit.Deps) domain.Store {
	switch kind {
	case "badger":
		if deps.KV == nil {
			panic("diff module: CORE_API_DIFF_STORE=badger requires an open kv store")
		}
		return drepo.NewBadger(deps.KV.DB)
	case "memory":
		return drepo.NewMemory()
	default:
		if deps.PG == nil {
			panic("diff module: CORE_API_DIFF_STORE=pg requires a Postgres connection")
		}
		return repokit.MustBind(drepo.NewPG(), deps.PG)
	}
}

// Service is the comparison engine behind the routes
func (m *Module) Service() dsvc.Service { return m.svc }
