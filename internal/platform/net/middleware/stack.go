// Package middleware holds the http middleware the API runs behind
package middleware

import (
	"compress/flate"
	"net/http"
	"time"

	"wta/internal/platform/logger"
	phttp "wta/internal/platform/net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// StackOptions configures Stack
type StackOptions struct {
	Log         *zerolog.Logger                                 // defaults to the "http" component logger
	OnError     func(http.ResponseWriter, *http.Request, error) // defaults to phttp.WriteError
	Timeout     time.Duration // per request deadline, 0 disables
	SlowRequest time.Duration // access log warn threshold, 0 disables
	CORSOrigins []string      // empty allows any origin
}

// Stack is the middleware chain every API route runs behind
func Stack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Log == nil {
		o.Log = logger.Named("http")
	}
	if o.OnError == nil {
		o.OnError = phttp.WriteError
	}
	origins := o.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mws := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		AccessLog(o.Log, o.SlowRequest),
		RecoverJSON(o.OnError),
		middleware.NoCache,
		cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"Location", "X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes,
	}
	if o.Timeout > 0 {
		mws = append(mws, middleware.Timeout(o.Timeout))
	}
	return mws
}
