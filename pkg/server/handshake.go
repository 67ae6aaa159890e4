package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
)

// HandshakeCtx is the pre-upgrade view of a persistent-session connection.
// Transport-level middleware observes sessions through it; the session
// object itself exists only once the upgrade has completed and the
// lifecycle manager has taken over.
//
// After dispatch finishes, the close code of the session (or of its
// rejection) is recorded here so observability middleware wrapped around
// the dispatch can report it.
type HandshakeCtx struct {
	r      *http.Request
	params map[string]string
	logger *slog.Logger

	closeCode int
}

// NewHandshakeCtx wraps an inbound upgrade request.
func NewHandshakeCtx(r *http.Request, logger *slog.Logger) *HandshakeCtx {
	if logger == nil {
		logger = slog.Default()
	}
	return &HandshakeCtx{r: r, logger: logger}
}

// Kind implements Conn.
func (c *HandshakeCtx) Kind() Kind { return KindPersistentSession }

// Method implements Conn.
func (c *HandshakeCtx) Method() string { return c.r.Method }

// Path implements Conn.
func (c *HandshakeCtx) Path() string { return c.r.URL.Path }

// URL implements Conn.
func (c *HandshakeCtx) URL() *url.URL { return c.r.URL }

// Header implements Conn.
func (c *HandshakeCtx) Header() http.Header { return c.r.Header }

// Param implements Conn.
func (c *HandshakeCtx) Param(name string) string { return c.params[name] }

// Params implements Conn.
func (c *HandshakeCtx) Params() map[string]string { return c.params }

// Context implements Conn.
func (c *HandshakeCtx) Context() context.Context { return c.r.Context() }

// Logger implements Conn.
func (c *HandshakeCtx) Logger() *slog.Logger { return c.logger }

// SetParams installs the route parameters extracted by the matcher.
func (c *HandshakeCtx) SetParams(params map[string]string) {
	c.params = params
}

// Request returns the underlying upgrade request.
func (c *HandshakeCtx) Request() *http.Request { return c.r }

// CloseCode returns the close code the session terminated with, or 0 while
// the session is still being dispatched.
func (c *HandshakeCtx) CloseCode() int { return c.closeCode }

// SetCloseCode records the terminal close code. The dispatcher calls this
// once the session reaches its terminal state.
func (c *HandshakeCtx) SetCloseCode(code int) {
	c.closeCode = code
}
