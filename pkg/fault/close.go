package fault

import (
	"errors"
	"net/http"
	"sync"
)

// Close codes the core emits or records on persistent sessions.
const (
	// CloseNormal is the default code for a graceful close.
	CloseNormal = 1000

	// CloseUnsupportedData closes sessions whose peer sent a payload the
	// handler cannot process, including failed validation.
	CloseUnsupportedData = 1003

	// CloseAbnormal is recorded when the transport is lost. It is never
	// sent explicitly.
	CloseAbnormal = 1006

	// ClosePolicyViolation rejects unmatched routes and pre-accept failures.
	ClosePolicyViolation = 1008

	// CloseInternalError is the fallback for any unmapped error.
	CloseInternalError = 1011
)

// closeCodes maps HTTP statuses carried by structured errors to session
// close codes. Guarded by closeMu; extended via RegisterCloseCode.
var (
	closeMu    sync.RWMutex
	closeCodes = map[int]int{
		http.StatusBadRequest: CloseUnsupportedData,
		http.StatusForbidden:  ClosePolicyViolation,
	}
)

// RegisterCloseCode maps an HTTP status to a session close code. New error
// kinds register a code here without changing the dispatcher or the session
// lifecycle manager.
func RegisterCloseCode(status, code int) {
	closeMu.Lock()
	closeCodes[status] = code
	closeMu.Unlock()
}

// CloseCodeFor translates an error escaping session handler code into the
// close code and reason sent to the peer. Structured errors use their own
// code, or the registry entry for their status. Everything else, including
// statuses with no registry entry, falls back to the internal-error code;
// the missing mapping is a configuration gap, not an inference the core
// should make.
func CloseCodeFor(err error) (code int, reason string) {
	var fe *Error
	if errors.As(err, &fe) {
		reason = http.StatusText(fe.Status)
		if fe.Code != 0 {
			return fe.Code, reason
		}
		closeMu.RLock()
		c, ok := closeCodes[fe.Status]
		closeMu.RUnlock()
		if ok {
			return c, reason
		}
		return CloseInternalError, reason
	}
	if errors.Is(err, ErrNotFound) {
		return ClosePolicyViolation, "no route matched"
	}
	return CloseInternalError, "internal error"
}
