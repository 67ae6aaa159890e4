package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/schnitzelbub/bocadillo/pkg/fault"
)

// ErrResponseWritten is returned when a second terminal response is
// attempted on a request/response connection.
var ErrResponseWritten = errors.New("server: response already written")

// Handler handles one request/response exchange. Returning an error hands
// the connection to the failure mapper; returning nil after writing a
// response completes the exchange.
type Handler func(ctx *RequestCtx) error

// RequestCtx is the request/response connection context. It carries the
// inbound body and produces exactly one outbound response.
type RequestCtx struct {
	w      http.ResponseWriter
	r      *http.Request
	params map[string]string
	logger *slog.Logger

	body     []byte
	bodyRead bool

	written bool
	status  int
}

// NewRequestCtx wraps an inbound request into a request/response context.
func NewRequestCtx(w http.ResponseWriter, r *http.Request, logger *slog.Logger) *RequestCtx {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestCtx{w: w, r: r, logger: logger}
}

// Kind implements Conn.
func (c *RequestCtx) Kind() Kind { return KindRequestResponse }

// Method implements Conn.
func (c *RequestCtx) Method() string { return c.r.Method }

// Path implements Conn.
func (c *RequestCtx) Path() string { return c.r.URL.Path }

// URL implements Conn.
func (c *RequestCtx) URL() *url.URL { return c.r.URL }

// Header implements Conn.
func (c *RequestCtx) Header() http.Header { return c.r.Header }

// Param implements Conn.
func (c *RequestCtx) Param(name string) string { return c.params[name] }

// Params implements Conn.
func (c *RequestCtx) Params() map[string]string { return c.params }

// Context implements Conn.
func (c *RequestCtx) Context() context.Context { return c.r.Context() }

// Logger implements Conn.
func (c *RequestCtx) Logger() *slog.Logger { return c.logger }

// SetParams installs the route parameters extracted by the matcher. The
// dispatcher calls this once, after a route has matched.
func (c *RequestCtx) SetParams(params map[string]string) {
	c.params = params
}

// Request returns the underlying HTTP request.
func (c *RequestCtx) Request() *http.Request { return c.r }

// ResponseHeader returns the outbound header map. Mutations are only
// effective before the terminal response is written.
func (c *RequestCtx) ResponseHeader() http.Header { return c.w.Header() }

// Body reads and caches the inbound body. Repeated calls return the same
// bytes, so middleware and handler can both consume it.
func (c *RequestCtx) Body() ([]byte, error) {
	if !c.bodyRead {
		b, err := io.ReadAll(c.r.Body)
		if err != nil {
			return nil, err
		}
		c.r.Body.Close()
		c.body = b
		c.bodyRead = true
	}
	return c.body, nil
}

// Bind decodes the inbound body as JSON into v. A malformed body yields a
// structured 400 error.
func (c *RequestCtx) Bind(v any) error {
	b, err := c.Body()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fault.Validation("invalid JSON body: " + err.Error())
	}
	return nil
}

// Written reports whether the terminal response has been produced.
func (c *RequestCtx) Written() bool { return c.written }

// StatusCode returns the status of the terminal response, or 0 if none has
// been written yet.
func (c *RequestCtx) StatusCode() int { return c.status }

// JSON writes the terminal response as JSON with the given status.
func (c *RequestCtx) JSON(status int, v any) error {
	if err := c.begin(status); err != nil {
		return err
	}
	c.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.w.WriteHeader(status)
	return json.NewEncoder(c.w).Encode(v)
}

// Text writes the terminal response as plain text with the given status.
func (c *RequestCtx) Text(status int, body string) error {
	if err := c.begin(status); err != nil {
		return err
	}
	c.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.w.WriteHeader(status)
	_, err := io.WriteString(c.w, body)
	return err
}

// NoContent writes an empty terminal response with the given status.
func (c *RequestCtx) NoContent(status int) error {
	if err := c.begin(status); err != nil {
		return err
	}
	c.w.WriteHeader(status)
	return nil
}

// RespondError renders err through the failure mapper as this connection's
// terminal response. It is a no-op when a response was already written.
func (c *RequestCtx) RespondError(err error) {
	if c.written {
		return
	}
	c.status = fault.WriteError(c.w, err)
	c.written = true
}

// begin marks the terminal response as written, enforcing the one-response
// contract.
func (c *RequestCtx) begin(status int) error {
	if c.written {
		return ErrResponseWritten
	}
	c.written = true
	c.status = status
	return nil
}
