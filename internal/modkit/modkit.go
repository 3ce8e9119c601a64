// Package modkit assembles API modules: options parsed into a Built, shared Deps, and a
// Base that mounts a module under its prefix
package modkit

import (
	"net/http"

	"wta/internal/modkit/httpkit"
)

// Module is a mountable slice of the API
type Module interface {
	Name() string
	MountRoutes(r httpkit.Router)
}

// Base implements Module for a prefix, its middleware and a route registrar.
// Modules embed it
type Base struct {
	name     string
	prefix   string
	mws      []func(http.Handler) http.Handler
	register func(httpkit.Router)
}

// Name is the module name
func (b Base) Name() string { return b.name }

// Prefix is the path the module mounts under
func (b Base) Prefix() string { return b.prefix }

// MountRoutes mounts the module's routes under its prefix
func (b Base) MountRoutes(r httpkit.Router) {
	r.Route(b.prefix, func(sub httpkit.Router) {
		sub.Use(b.mws...)
		if b.register != nil {
			b.register(sub)
		}
	})
}
