package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// chiRouter adapts a chi.Router to Router
type chiRouter struct{ r chi.Router }

// URLParam returns a named path parameter captured by the chi route
func URLParam(r *http.Request, name string) string { return chi.URLParam(r, name) }

// AdaptChi adapts a chi router or mux to a Router
func AdaptChi(r chi.Router) Router { return chiRouter{r: r} }

func (c chiRouter) Get(p string, h Handler)    { c.r.Method(http.MethodGet, p, http.HandlerFunc(h)) }
func (c chiRouter) Post(p string, h Handler)   { c.r.Method(http.MethodPost, p, http.HandlerFunc(h)) }
func (c chiRouter) Delete(p string, h Handler) { c.r.Method(http.MethodDelete, p, http.HandlerFunc(h)) }

func (c chiRouter) Handle(p string, h http.Handler)           { c.r.Handle(p, h) }
func (c chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.r.Use(mw...) }

func (c chiRouter) Group(fn func(Router)) {
	c.r.Group(func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

func (c chiRouter) Route(pattern string, fn func(Router)) {
	c.r.Route(pattern, func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

// Mux is the underlying chi router, which is an http.Handler
func (c chiRouter) Mux() http.Handler { return c.r }
