package routing

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrFrozen is returned when a route is registered after the table has been
// frozen for serving.
var ErrFrozen = errors.New("routing: table is frozen")

// Route is a single registered pattern bound to a handler.
//
// Handler is deliberately untyped: the table serves both interaction kinds
// and the dispatcher asserts the kind-specific handler signature on match.
type Route struct {
	Pattern string
	Name    string
	Handler any

	segments []segment
}

// Match is the result of resolving a concrete path against a Table.
type Match struct {
	Route  *Route
	Params map[string]string
}

// Table is an ordered collection of routes for one connection kind.
type Table struct {
	routes []*Route
	named  map[string]*Route
	frozen atomic.Bool
}

// NewTable returns an empty route table.
func NewTable() *Table {
	return &Table{named: make(map[string]*Route)}
}

// RouteOption configures route registration.
type RouteOption func(*Route)

// WithName assigns a unique name to the route for URL reversal.
func WithName(name string) RouteOption {
	return func(r *Route) { r.Name = name }
}

// Add compiles pattern and appends the route. Registration order determines
// match precedence. It fails on malformed patterns, nil handlers, duplicate
// route names, and registration after Freeze.
func (t *Table) Add(pattern string, handler any, opts ...RouteOption) (*Route, error) {
	if t.frozen.Load() {
		return nil, ErrFrozen
	}
	if handler == nil {
		return nil, fmt.Errorf("routing: nil handler for pattern %q", pattern)
	}

	segs, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}

	r := &Route{Pattern: pattern, Handler: handler, segments: segs}
	for _, opt := range opts {
		opt(r)
	}

	if r.Name != "" {
		if _, exists := t.named[r.Name]; exists {
			return nil, fmt.Errorf("routing: duplicate route name %q", r.Name)
		}
		t.named[r.Name] = r
	}

	t.routes = append(t.routes, r)
	return r, nil
}

// Freeze marks the table read-only. After Freeze, Add fails and the table
// may be shared across concurrent dispatches without synchronization.
func (t *Table) Freeze() {
	t.frozen.Store(true)
}

// Match resolves path by scanning routes in registration order. The first
// matching route wins.
func (t *Table) Match(path string) (*Match, bool) {
	parts := splitPath(path)
	for _, r := range t.routes {
		if params, ok := matchSegments(r.segments, parts); ok {
			return &Match{Route: r, Params: params}, true
		}
	}
	return nil, false
}

// Named returns the route registered under name.
func (t *Table) Named(name string) (*Route, bool) {
	r, ok := t.named[name]
	return r, ok
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	return len(t.routes)
}
