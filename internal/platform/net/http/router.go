package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
)

// Handler is the handler shape routes are registered with
type Handler = func(stdhttp.ResponseWriter, *stdhttp.Request)

// Router is the routing surface modules mount against. Only chi implements it
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	Put(path string, h Handler)
	Delete(path string, h Handler)
	Handle(path string, h stdhttp.Handler)
	Use(mw ...func(stdhttp.Handler) stdhttp.Handler)
	Group(fn func(Router))
	Route(pattern string, fn func(Router))
	stdhttp.Handler
}

type chiRouter struct{ r chi.Router }

// Chi wraps a chi router, Mux and sub routers alike
func Chi(r chi.Router) Router { return chiRouter{r: r} }

func (c chiRouter) Get(p string, h Handler)    { c.r.Get(p, h) }
func (c chiRouter) Post(p string, h Handler)   { c.r.Post(p, h) }
func (c chiRouter) Put(p string, h Handler)    { c.r.Put(p, h) }
func (c chiRouter) Delete(p string, h Handler) { c.r.Delete(p, h) }

func (c chiRouter) Handle(p string, h stdhttp.Handler) { c.r.Handle(p, h) }

func (c chiRouter) Use(mw ...func(stdhttp.Handler) stdhttp.Handler) { c.r.Use(mw...) }

func (c chiRouter) Group(fn func(Router)) {
	c.r.Group(func(g chi.Router) { fn(Chi(g)) })
}

func (c chiRouter) Route(pattern string, fn func(Router)) {
	c.r.Route(pattern, func(s chi.Router) { fn(Chi(s)) })
}

func (c chiRouter) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) { c.r.ServeHTTP(w, r) }
