package module

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"wta/internal/modkit"
	"wta/internal/platform/config"
	phttp "wta/internal/platform/net/http"
	"wta/internal/platform/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadyChecksSkipsUnwiredStores(t *testing.T) {
	t.Parallel()

	assert.Empty(t, readyChecks(modkit.Deps{}))

	st, err := store.Open(context.Background(), store.Config{KV: store.KVConfig{Enabled: true, InMemory: true}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	checks := readyChecks(modkit.DepsFrom(st, config.New(), nil))
	require.Len(t, checks, 1)
	assert.Equal(t, "kv", checks[0].Name)
}

func TestModuleServesReady(t *testing.T) {
	t.Parallel()

	m := New(modkit.Deps{Cfg: config.New()}, modkit.WithPrefix("/status"))
	assert.Equal(t, "meta", m.Name())

	r := phttp.Chi(chi.NewRouter())
	m.MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "ok", env.Data.Status)
}
