// Package bocadillo is a connection-dispatch core for servers that accept
// two kinds of client interactions over one boundary: one-shot
// request/response exchanges and long-lived bidirectional message
// sessions.
//
// An App maps an incoming connection's URL path to a registered handler
// and runs it inside a deterministic, ordered chain of middleware. Two
// chains exist: the transport-level chain applied to every connection
// before kind-specific dispatch, and the request-only chain applied only
// to request/response exchanges. Persistent sessions get an explicit
// lifecycle with well-defined close semantics and error-to-close-code
// translation.
//
//	app := bocadillo.New(bocadillo.Config{})
//
//	app.Route("/items/{id}", showItem, routing.WithName("item"))
//	app.WebSocket("/echo/{room}", echo)
//	app.Use(middleware.RequestLogger(nil))
//
//	http.ListenAndServe(":8080", app)
//
// The App is an http.Handler, so it mounts inside any HTTP router or
// front-end server; socket and TLS handling stay outside this core.
package bocadillo
