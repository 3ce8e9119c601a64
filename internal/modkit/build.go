package modkit

import (
	"net/http"
	"strings"

	"wta/internal/modkit/httpkit"
)

// Option customises a module at construction
type Option func(*Built)

// Built is the resolved option set a module constructor reads
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any
}

// WithName overrides the module name
func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix overrides the mount prefix, a leading slash is added when missing
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithMiddlewares appends module scoped middleware
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts injects the module's collaborators. Each module defines its own Ports type
func WithPorts[T any](p T) Option { return func(b *Built) { b.Ports = p } }

// Build applies opts in order, later options win
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	if b.Prefix != "" && !strings.HasPrefix(b.Prefix, "/") {
		b.Prefix = "/" + b.Prefix
	}
	b.Prefix = strings.TrimSuffix(b.Prefix, "/")
	return b
}

// PortsAs returns the injected ports as T, or the zero T when none of that type were set
func PortsAs[T any](b Built) T {
	p, _ := b.Ports.(T)
	return p
}

// Base binds register to the built name, prefix and middleware
func (b Built) Base(register func(httpkit.Router)) Base {
	return Base{name: b.Name, prefix: b.Prefix, mws: b.Mw, register: register}
}
