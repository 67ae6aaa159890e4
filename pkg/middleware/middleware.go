package middleware

import "github.com/schnitzelbub/bocadillo/pkg/server"

// Middleware processes a connection before and after the next layer.
type Middleware interface {
	// Handle processes the connection and optionally calls next.
	// Return an error to stop the chain and report a failure.
	// Return nil without calling next to short-circuit without error.
	Handle(conn server.Conn, next func() error) error
}

// Func is a function adapter for Middleware.
type Func func(conn server.Conn, next func() error) error

// Handle implements Middleware.
func (f Func) Handle(conn server.Conn, next func() error) error {
	return f(conn, next)
}

// Run executes the chain around terminal. Entries run in registration
// order on the way in and reverse order on the way out.
//
// An entry can short-circuit by returning without calling next. In that
// case ranTerminal is false and downstream entries never executed.
func Run(conn server.Conn, entries []Middleware, terminal func() error) (ranTerminal bool, err error) {
	if terminal == nil {
		return false, nil
	}

	ran := false
	wrappedTerminal := func() error {
		ran = true
		return terminal()
	}

	if len(entries) == 0 {
		return true, wrappedTerminal()
	}

	index := 0
	var next func() error
	next = func() error {
		if index >= len(entries) {
			return wrappedTerminal()
		}

		mw := entries[index]
		index++
		if mw == nil {
			return next()
		}

		return mw.Handle(conn, next)
	}

	err = next()
	return ran, err
}

// Chain combines entries into a single Middleware preserving their order.
func Chain(entries ...Middleware) Middleware {
	return Func(func(conn server.Conn, next func() error) error {
		_, err := Run(conn, entries, next)
		return err
	})
}
