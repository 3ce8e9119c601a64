// Package httpkit is the handler toolkit modules write routes with. It re-exports the
// transport types so modules only import one package
package httpkit

import (
	"net/http"
	"strings"

	perr "wta/internal/platform/errors"
	pnet "wta/internal/platform/net"
	phttp "wta/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type (
	// Router is the module routing surface
	Router = phttp.Router
	// Handler is a plain net/http handler func
	Handler = phttp.Handler
	// Response is returned by return style handlers
	Response = phttp.Response
	// Envelope is the JSON body shape, exported for API docs
	Envelope = phttp.Envelope
)

func OK(data any) Response      { return phttp.OK(data) }
func Created(data any) Response { return phttp.Created(data) }
func NoContent() Response       { return phttp.NoContent() }
func Error(err error) Response  { return phttp.Error(err) }

// Handle adapts a return style handler
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// Call adapts a handler returning (data, err). data that is already a Response is written as is,
// anything else becomes a 200
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return phttp.Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return phttp.OK(out)
	})
}

// Get registers a GET route backed by Call
func Get(r Router, path string, fn func(*http.Request) (any, error)) { r.Get(path, Call(fn)) }

// Param returns the trimmed chi URL param
func Param(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

// Owner returns the owner resolved by bearer auth, or Unauthorized outside a Protected group
func Owner(r *http.Request) (string, error) {
	if o := pnet.Owner(r.Context()); o != "" {
		return o, nil
	}
	return "", perr.Unauthorizedf("missing bearer token")
}

// MountVersion mounts the routes mount registers under /api/<version>, behind mw
func MountVersion(r Router, version string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route("/api/"+strings.Trim(version, "/"), func(api Router) {
		api.Use(mw...)
		mount(api)
	})
}
