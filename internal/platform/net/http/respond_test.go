package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "wta/internal/platform/errors"
	"wta/internal/platform/logger"
	phttp "wta/internal/platform/net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(rid string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	return r.WithContext(context.WithValue(r.Context(), chimw.RequestIDKey, rid))
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) phttp.Envelope {
	t.Helper()
	var env phttp.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHandleSuccess(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		resp phttp.Response
		code int
	}{
		{"ok", phttp.OK(map[string]int{"version": 2}), http.StatusOK},
		{"created", phttp.Created("x"), http.StatusCreated},
		{"zero status", phttp.Response{Body: "y"}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			phttp.Handle(func(*http.Request) phttp.Response { return tc.resp })(rec, request("rid-1"))

			assert.Equal(t, tc.code, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
			env := envelope(t, rec)
			assert.Equal(t, tc.code, env.StatusCode)
			assert.Equal(t, http.StatusText(tc.code), env.Status)
			assert.Equal(t, "rid-1", env.RequestID)
			assert.NotNil(t, env.Data)
			assert.Empty(t, env.Code)
		})
	}
}

func TestHandleNoContentAndHeaders(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	phttp.Handle(func(*http.Request) phttp.Response {
		r := phttp.NoContent()
		r.Header = http.Header{"Location": {"/api/v1/diff/a"}}
		return r
	})(rec, request(""))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
	assert.Equal(t, "/api/v1/diff/a", rec.Header().Get("Location"))
}

func TestHandleError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		code int
		ec   perr.ErrorCode
	}{
		{"not found", perr.NotFoundf("comparison %s", "a"), http.StatusNotFound, perr.ErrorCodeNotFound},
		{"incomplete", perr.Incompletef("right side missing"), http.StatusBadRequest, perr.ErrorCodeIncomplete},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, perr.ErrorCodeUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			// status on an error response is ignored
			phttp.Handle(func(*http.Request) phttp.Response {
				return phttp.Response{Status: http.StatusOK, Body: tc.err}
			})(rec, request("rid-2"))

			require.Equal(t, tc.code, rec.Code)
			env := envelope(t, rec)
			assert.Equal(t, tc.ec, env.Code)
			assert.NotEmpty(t, env.Error)
			assert.Equal(t, "rid-2", env.RequestID)
			assert.Nil(t, env.Data)
		})
	}
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	phttp.WriteError(rec, request("rid-3"), perr.Unauthorizedf("missing bearer token"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := envelope(t, rec)
	assert.Equal(t, perr.ErrorCodeUnauthorized, env.Code)
	assert.Equal(t, "missing bearer token", env.Error)
}

func TestWriteError_AnnotatesRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := request("rid-4")
	r = r.WithContext(logger.WithContext(r.Context(), zerolog.New(&buf)))

	phttp.WriteError(httptest.NewRecorder(), r, perr.NotFoundf("comparison %s", "a"))
	logger.C(r.Context()).Info().Msg("request")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "comparison a", line["error"])
}
