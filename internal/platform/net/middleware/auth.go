package middleware

import (
	"net/http"

	"wta/internal/platform/logger"
	pnet "wta/internal/platform/net"
)

// AuthPort resolves the owner a request acts for
type AuthPort interface {
	Parse(r *http.Request) (owner string, err error)
}

// Auth rejects requests the port cannot resolve through onErr. Accepted requests carry
// the owner in their context and in the request logger
func Auth(p AuthPort, onErr func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, err := p.Parse(r)
			if err != nil {
				onErr(w, r, err)
				return
			}
			ctx := pnet.WithOwner(r.Context(), owner)
			logger.Annotate(ctx, "owner", owner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
