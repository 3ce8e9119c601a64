package httpkit

import (
	"net/http"
	"strings"

	perr "wta/internal/platform/errors"
	phttp "wta/internal/platform/net/http"
	"wta/internal/platform/net/middleware"
)

// TokenFunc maps a raw bearer token to an owner id
type TokenFunc func(token string) (owner string, err error)

// Port is a middleware.AuthPort over a TokenFunc
type Port struct{ parse TokenFunc }

// NewPortFunc wraps fn as an auth port
func NewPortFunc(fn TokenFunc) *Port { return &Port{parse: fn} }

// Parse extracts the bearer token and resolves its owner. Every failure is a 401, the
// TokenFunc error is never shown to the client
func (p *Port) Parse(r *http.Request) (string, error) {
	tok, ok := bearer(r.Header.Get("Authorization"))
	if !ok {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	if p == nil || p.parse == nil {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	owner, err := p.parse(tok)
	if err != nil || owner == "" {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	return owner, nil
}

func bearer(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// Protected mounts fn's routes in a group that requires a bearer the port accepts
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(g Router) {
		g.Use(middleware.Auth(p, phttp.WriteError))
		fn(g)
	})
}
