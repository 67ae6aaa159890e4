// Package ws implements the persistent-session lifecycle of the dispatch
// core on top of gorilla/websocket.
//
// A Session moves through an explicit state machine:
//
//	PENDING → ACCEPTED → OPEN → CLOSING → CLOSED
//
// plus the terminal REJECTED state for sessions refused before ever being
// accepted. Transitions are caused only by the handler's explicit
// Accept/Close calls, an inbound close from the remote peer, an unhandled
// handler error, or loss of the underlying transport.
//
// A handler must call Accept before any message is sent or received.
// Receive blocks until a message arrives, either side initiates a close,
// or the transport is lost; Send fails with ErrSessionClosed once the
// session is closing. Serve drives a handler against a session and
// enforces the close-semantics contract, translating escaped errors into
// close codes via the fault package.
//
// Each session is owned by the goroutine driving it; a dedicated read
// pump owns all reads on the underlying connection and preserves inbound
// message order. Transport loss cancels an outstanding Receive and forces
// the terminal transition; it never affects other sessions.
package ws
