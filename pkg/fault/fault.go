package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for conditions the dispatcher handles itself.
var (
	// ErrNotFound reports that no route matched the requested path. It is
	// consumed inside the dispatcher and never reaches handler code.
	ErrNotFound = errors.New("fault: no route matched")

	// ErrTransportLost reports that the underlying connection disappeared
	// while a session was open. It forces the session to its terminal state
	// and is recorded with the abnormal-closure code, which is never sent.
	ErrTransportLost = errors.New("fault: transport lost")
)

// Error is a structured client error: it carries an HTTP status for
// request/response connections and an optional close code for persistent
// sessions. Handlers and middleware return it to produce a well-formed
// client-visible failure instead of a generic server fault.
type Error struct {
	// Status is the HTTP status rendered for request/response connections.
	Status int

	// Detail is an optional JSON-serializable payload included in the
	// response body.
	Detail any

	// Code is the session close code used when this error escapes an open
	// session. Zero means derive one from Status via the close-code registry.
	Code int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("fault: %d %s: %v", e.Status, http.StatusText(e.Status), e.Detail)
	}
	return fmt.Sprintf("fault: %d %s", e.Status, http.StatusText(e.Status))
}

// New returns a structured error for the given HTTP status.
func New(status int) *Error {
	return &Error{Status: status}
}

// WithDetail attaches a JSON-serializable detail payload and returns e.
func (e *Error) WithDetail(detail any) *Error {
	e.Detail = detail
	return e
}

// WithCloseCode pins the close code used when e escapes an open session,
// overriding the registry lookup.
func (e *Error) WithCloseCode(code int) *Error {
	e.Code = code
	return e
}

// Validation returns the structured error used for failed payload
// validation: a 400 response carrying the messages as the "errors" detail,
// closing sessions with the unsupported-data code.
func Validation(messages ...string) *Error {
	return &Error{
		Status: http.StatusBadRequest,
		Detail: map[string]any{"errors": messages},
		Code:   CloseUnsupportedData,
	}
}

// IsStructured reports whether err carries a client-visible status.
func IsStructured(err error) bool {
	var fe *Error
	return errors.As(err, &fe)
}

// SchemaError reports that a validation schema failed to compile. It is a
// server misconfiguration, not a per-request condition, and is therefore
// not retryable.
type SchemaError struct {
	Backend string
	Err     error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("fault: %s schema compilation failed: %v", e.Backend, e.Err)
}

// Unwrap returns the underlying compilation error.
func (e *SchemaError) Unwrap() error { return e.Err }
