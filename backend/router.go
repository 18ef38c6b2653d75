package backend

import (
	"sort"

	"github.com/Under-Bordet-AB/weatherserver/httpcodec"
)

// Router maps a request's method and URL path to the Factory that can
// serve it, and distinguishes "no such path" (404) from "path exists,
// wrong method" (405) the way spec.md's routing refinement requires.
type Router struct {
	routes map[string]map[httpcodec.Method]Factory
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]map[httpcodec.Method]Factory)}
}

// Register binds a path+method pair to a handler factory.
func (r *Router) Register(path string, method httpcodec.Method, factory Factory) {
	m, ok := r.routes[path]
	if !ok {
		m = make(map[httpcodec.Method]Factory)
		r.routes[path] = m
	}
	m[method] = factory
}

// Outcome is what Dispatch found for a request.
type Outcome int

const (
	OutcomeMatched Outcome = iota
	OutcomeNotFound
	OutcomeMethodNotAllowed
)

// Dispatch resolves path+method to a Factory. On OutcomeMethodNotAllowed,
// allowed lists the methods the path does accept, for the response's
// Allow header.
func (r *Router) Dispatch(path string, method httpcodec.Method) (factory Factory, outcome Outcome, allowed []string) {
	methods, ok := r.routes[path]
	if !ok {
		return nil, OutcomeNotFound, nil
	}
	if f, ok := methods[method]; ok {
		return f, OutcomeMatched, nil
	}

	names := make([]string, 0, len(methods))
	for m := range methods {
		names = append(names, m.String())
	}
	sort.Strings(names)
	return nil, OutcomeMethodNotAllowed, names
}
