package middleware

import (
	"net/http"
	"runtime/debug"

	perr "wta/internal/platform/errors"
	"wta/internal/platform/logger"
)

// RecoverJSON turns a handler panic into a 500 error envelope written by write.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection
func RecoverJSON(write func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.C(r.Context()).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("handler panic")
				write(w, r, perr.PanicErrf("internal server error"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
