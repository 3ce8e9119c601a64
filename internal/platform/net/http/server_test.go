package http_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"wta/internal/platform/config"
	phttp "wta/internal/platform/net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerDefaults(t *testing.T) {
	srv := phttp.NewServer(config.New().Prefix("SRV_DEFAULTS_"))
	assert.Equal(t, ":4000", srv.Addr())
	assert.NotNil(t, srv.Router())
}

func TestServerRunAndShutdown(t *testing.T) {
	t.Setenv("SRV_RUN_API_PORT", "127.0.0.1:0")
	srv := phttp.NewServer(config.New().Prefix("SRV_RUN_"))
	srv.Router().Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background()) }()

	require.Eventually(t, func() bool { return srv.Addr() != "127.0.0.1:0" }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, <-done)
}

func TestServerRunBadAddr(t *testing.T) {
	t.Setenv("SRV_BAD_API_PORT", "not-an-addr")
	srv := phttp.NewServer(config.New().Prefix("SRV_BAD_"))
	assert.Error(t, srv.Run(context.Background()))
}
