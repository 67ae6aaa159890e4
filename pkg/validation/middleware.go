package validation

import (
	"github.com/schnitzelbub/bocadillo/pkg/middleware"
	"github.com/schnitzelbub/bocadillo/pkg/server"
)

// Middleware returns request-only middleware that validates JSON request
// bodies against schema. The schema is compiled exactly once, at
// construction; every request reuses the compiled validator.
//
// Connections that are not request/response exchanges pass through
// untouched.
func Middleware(backend Backend, schema map[string]any) (middleware.Middleware, error) {
	compiled, err := backend.Compile(schema)
	if err != nil {
		return nil, err
	}

	return middleware.Func(func(conn server.Conn, next func() error) error {
		rc, ok := conn.(*server.RequestCtx)
		if !ok {
			return next()
		}

		var payload any
		if err := rc.Bind(&payload); err != nil {
			return err
		}
		if err := compiled.Validate(payload); err != nil {
			return err
		}
		return next()
	}), nil
}

// Wrap composes a handler with per-route body validation, compiling the
// schema once. Use it when validation applies to a single route rather
// than the whole request-only chain.
func Wrap(backend Backend, schema map[string]any, handler server.Handler) (server.Handler, error) {
	compiled, err := backend.Compile(schema)
	if err != nil {
		return nil, err
	}

	return func(ctx *server.RequestCtx) error {
		var payload any
		if err := ctx.Bind(&payload); err != nil {
			return err
		}
		if err := compiled.Validate(payload); err != nil {
			return err
		}
		return handler(ctx)
	}, nil
}
