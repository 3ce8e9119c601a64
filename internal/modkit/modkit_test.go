package modkit_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"wta/internal/modkit"
	"wta/internal/modkit/httpkit"
	"wta/internal/platform/config"
	phttp "wta/internal/platform/net/http"
	"wta/internal/platform/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePorts struct{ Label string }

func TestBuild(t *testing.T) {
	t.Parallel()

	mw := func(next http.Handler) http.Handler { return next }
	b := modkit.Build(
		modkit.WithName("diff"),
		modkit.WithPrefix("things/"),
		modkit.WithMiddlewares(mw),
		modkit.WithMiddlewares(mw),
		modkit.WithPorts(fakePorts{Label: "x"}),
		modkit.WithName("renamed"),
	)

	assert.Equal(t, "renamed", b.Name)
	assert.Equal(t, "/things", b.Prefix)
	assert.Len(t, b.Mw, 2)
	assert.Equal(t, fakePorts{Label: "x"}, modkit.PortsAs[fakePorts](b))
	assert.Zero(t, modkit.PortsAs[int](b))
}

func TestBaseMountRoutes(t *testing.T) {
	t.Parallel()

	tag := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", "meta")
			next.ServeHTTP(w, r)
		})
	}
	b := modkit.Build(modkit.WithName("meta"), modkit.WithPrefix("/meta"), modkit.WithMiddlewares(tag))
	base := b.Base(func(r httpkit.Router) {
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "pong") })
	})

	var m modkit.Module = base
	assert.Equal(t, "meta", m.Name())
	assert.Equal(t, "/meta", base.Prefix())

	root := phttp.Chi(chi.NewRouter())
	m.MountRoutes(root)

	rec := httptest.NewRecorder()
	root.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meta/ping", nil))
	assert.Equal(t, "pong", rec.Body.String())
	assert.Equal(t, "meta", rec.Header().Get("X-Module"))

	rec = httptest.NewRecorder()
	root.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDepsFrom(t *testing.T) {
	t.Parallel()

	cfg := config.New()
	d := modkit.DepsFrom(nil, cfg, nil)
	require.NotNil(t, d.Log)
	assert.Nil(t, d.PG)
	assert.Nil(t, d.CH)
	assert.Nil(t, d.KV)

	st, err := store.Open(context.Background(), store.Config{KV: store.KVConfig{Enabled: true, InMemory: true}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	d = modkit.DepsFrom(st, cfg, nil)
	assert.Same(t, st.KV, d.KV)
	assert.Nil(t, d.PG)
}
