// Package net carries request scoped identity through contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ownerKey struct{}

// WithOwner records the authenticated owner id, empty ids are not recorded
func WithOwner(ctx context.Context, owner string) context.Context {
	if owner == "" {
		return ctx
	}
	return context.WithValue(ctx, ownerKey{}, owner)
}

// Owner returns the authenticated owner id or ""
func Owner(ctx context.Context) string {
	s, _ := ctx.Value(ownerKey{}).(string)
	return s
}

// RequestID returns the id assigned by the request id middleware or ""
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }
