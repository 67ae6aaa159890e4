package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
)

// Conn is the transport-independent view of an incoming connection shared
// by both interaction kinds. Transport-level middleware observes every
// connection through it, before kind-specific dispatch.
//
// Headers are immutable for the lifetime of the connection. Params are
// empty until a route has matched.
type Conn interface {
	// Kind returns the connection's interaction kind.
	Kind() Kind

	// Method returns the HTTP method of the inbound request or handshake.
	Method() string

	// Path returns the URL path being dispatched.
	Path() string

	// URL returns the full request URL.
	URL() *url.URL

	// Header returns the inbound headers. Callers must not mutate them.
	Header() http.Header

	// Param returns the named route parameter, or "" if absent.
	Param(name string) string

	// Params returns all extracted route parameters.
	Params() map[string]string

	// Context returns the connection-scoped context. It is canceled when
	// the underlying transport is gone.
	Context() context.Context

	// Logger returns the connection-scoped structured logger.
	Logger() *slog.Logger
}
