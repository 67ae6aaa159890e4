package ws

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/schnitzelbub/bocadillo/pkg/fault"
)

// Handler drives one persistent session. It must call Accept before any
// message I/O. Returning nil closes the session gracefully if the handler
// has not already closed it; returning an error hands the session to the
// failure mapper.
type Handler func(s *Session) error

// Serve invokes handler on s and enforces the lifecycle contract. It
// returns once the session has reached a terminal state.
func Serve(s *Session, handler Handler) {
	if err := invoke(s, handler); err != nil {
		s.finishError(err)
		return
	}
	s.finishClean()
}

// invoke runs the handler with panic containment. A panic is a handler
// fault, not a process fault: it terminates this session only.
func invoke(s *Session, handler Handler) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("ws: handler panic: %v\n%s", rec, debug.Stack())
		}
	}()
	return handler(s)
}

// finishClean completes a session whose handler returned nil.
func (s *Session) finishClean() {
	switch s.State() {
	case StatePending:
		// The handler never touched the session. A matched session still
		// gets a well-formed open/close pair rather than a bare rejection.
		if err := s.Accept(); err != nil {
			return
		}
		_ = s.Close(fault.CloseNormal, "")
	case StateAccepted, StateOpen:
		_ = s.Close(fault.CloseNormal, "")
	}
}

// finishError maps an error escaping the handler onto the session's
// terminal transition.
func (s *Session) finishError(err error) {
	if errors.Is(err, ErrSessionClosed) || errors.Is(err, fault.ErrTransportLost) {
		// Lifecycle signals surfacing out of the handler, not faults.
		return
	}

	structured := fault.IsStructured(err)
	if !structured {
		s.logger.Error("session handler fault", "error", err)
		if s.onFault != nil {
			s.onFault(err)
		}
	}

	if s.State() == StatePending {
		_ = s.Reject(fault.ClosePolicyViolation, "")
		return
	}

	code, reason := fault.CloseCodeFor(err)
	_ = s.Close(code, reason)
}
