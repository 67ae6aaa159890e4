package ws

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/schnitzelbub/bocadillo/pkg/fault"
	"github.com/schnitzelbub/bocadillo/pkg/server"
)

// Sentinel errors for session operations.
var (
	// ErrSessionClosed is returned for message operations on a session that
	// is closing or closed.
	ErrSessionClosed = errors.New("ws: session closed")

	// ErrNotAccepted is returned when message I/O is attempted before
	// Accept has been called.
	ErrNotAccepted = errors.New("ws: session not accepted")
)

// State is the lifecycle position of a Session.
type State int32

const (
	// StatePending means a route matched but the handler has not yet
	// accepted the session.
	StatePending State = iota

	// StateAccepted means the handler has explicitly accepted the session.
	StateAccepted

	// StateOpen means the handler may send and receive messages.
	StateOpen

	// StateClosing means either side has initiated termination; no further
	// sends are accepted and pending receives are unblocked.
	StateClosing

	// StateClosed is terminal: the close handshake completed.
	StateClosed

	// StateRejected is terminal: the session was refused without ever
	// being accepted.
	StateRejected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAccepted:
		return "accepted"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// MessageType mirrors the transport frame types a session exchanges.
type MessageType int

const (
	// TextMessage is a UTF-8 text payload.
	TextMessage MessageType = websocket.TextMessage

	// BinaryMessage is an opaque binary payload.
	BinaryMessage MessageType = websocket.BinaryMessage
)

// Message is one inbound payload delivered in arrival order.
type Message struct {
	Type MessageType
	Data []byte
}

// Options configures a Session.
type Options struct {
	// Logger is the structured logger; slog.Default() when nil.
	Logger *slog.Logger

	// WriteTimeout bounds each outbound write (default 10s).
	WriteTimeout time.Duration

	// ReadLimit caps inbound message size in bytes; 0 means no limit.
	ReadLimit int64

	// InboundBuffer is the inbound message queue depth (default 16).
	InboundBuffer int

	// OnFault observes unhandled handler faults after the close has been
	// produced.
	OnFault func(err error)
}

// Session wraps one persistent connection and its lifecycle state.
// Exactly one Session exists per connection, owned by the goroutine that
// drives it; a dedicated read pump owns all reads on the underlying
// connection.
type Session struct {
	// ID identifies the session in logs.
	ID string

	conn   *websocket.Conn
	r      *http.Request
	params map[string]string
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	state   atomic.Int32
	writeMu sync.Mutex // guards all writes on conn

	inbound  chan Message
	quit     chan struct{} // closed on the CLOSING transition
	quitOnce sync.Once
	termOnce sync.Once

	closeCode   atomic.Int32
	reasonMu    sync.Mutex
	closeReason string

	writeTimeout time.Duration
	readLimit    int64
	onFault      func(err error)
}

// New wraps an already-upgraded connection into a PENDING session.
func New(conn *websocket.Conn, r *http.Request, params map[string]string, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.InboundBuffer == 0 {
		opts.InboundBuffer = 16
	}

	id := newSessionID()
	ctx, cancel := context.WithCancel(r.Context())

	return &Session{
		ID:           id,
		conn:         conn,
		r:            r,
		params:       params,
		logger:       logger.With("session_id", id),
		ctx:          ctx,
		cancel:       cancel,
		inbound:      make(chan Message, opts.InboundBuffer),
		quit:         make(chan struct{}),
		writeTimeout: opts.WriteTimeout,
		readLimit:    opts.ReadLimit,
		onFault:      opts.OnFault,
	}
}

// newSessionID generates a random session identifier.
func newSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// Kind implements server.Conn.
func (s *Session) Kind() server.Kind { return server.KindPersistentSession }

// Method implements server.Conn.
func (s *Session) Method() string { return s.r.Method }

// Path implements server.Conn.
func (s *Session) Path() string { return s.r.URL.Path }

// URL implements server.Conn.
func (s *Session) URL() *url.URL { return s.r.URL }

// Header implements server.Conn.
func (s *Session) Header() http.Header { return s.r.Header }

// Param implements server.Conn.
func (s *Session) Param(name string) string { return s.params[name] }

// Params implements server.Conn.
func (s *Session) Params() map[string]string { return s.params }

// Context implements server.Conn. The returned context is canceled when
// the session reaches a terminal state or the transport is lost.
func (s *Session) Context() context.Context { return s.ctx }

// Logger implements server.Conn.
func (s *Session) Logger() *slog.Logger { return s.logger }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// CloseCode returns the close code the session terminated with, or 0
// while the session is still live.
func (s *Session) CloseCode() int { return int(s.closeCode.Load()) }

// CloseReason returns the reason string recorded at termination.
func (s *Session) CloseReason() string {
	s.reasonMu.Lock()
	defer s.reasonMu.Unlock()
	return s.closeReason
}

// Accept transitions the session out of PENDING and starts the read pump.
// It must be called exactly once, before any message is sent or received.
func (s *Session) Accept() error {
	if !s.state.CompareAndSwap(int32(StatePending), int32(StateAccepted)) {
		return fmt.Errorf("ws: accept: session already %s", s.State())
	}
	go s.readPump()
	// CAS so a termination racing with the pump start is not undone.
	s.state.CompareAndSwap(int32(StateAccepted), int32(StateOpen))
	return nil
}

// Receive blocks until the next inbound message arrives, either side
// initiates a close, or the transport is lost. Messages are delivered in
// arrival order; one receive may be in flight at a time.
func (s *Session) Receive() (Message, error) {
	switch st := s.State(); {
	case st == StatePending:
		return Message{}, ErrNotAccepted
	case st >= StateClosing:
		return Message{}, s.closeErr()
	}

	select {
	case msg := <-s.inbound:
		return msg, nil
	case <-s.quit:
		return Message{}, s.closeErr()
	}
}

// ReceiveText receives the next message as a string.
func (s *Session) ReceiveText() (string, error) {
	msg, err := s.Receive()
	if err != nil {
		return "", err
	}
	return string(msg.Data), nil
}

// ReceiveJSON receives the next message and decodes it as JSON into v.
// A malformed payload yields a structured validation error.
func (s *Session) ReceiveJSON(v any) error {
	msg, err := s.Receive()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return fault.Validation("invalid JSON message: " + err.Error())
	}
	return nil
}

// Send writes one outbound message. It fails with ErrNotAccepted before
// Accept and with ErrSessionClosed once the session is closing; a closed
// session never silently swallows a message.
func (s *Session) Send(typ MessageType, data []byte) error {
	switch st := s.State(); {
	case st == StatePending:
		return ErrNotAccepted
	case st >= StateClosing:
		return ErrSessionClosed
	}

	if err := s.write(int(typ), data); err != nil {
		if errors.Is(err, ErrSessionClosed) {
			return ErrSessionClosed
		}
		s.logger.Error("session write failed", "error", err)
		s.terminate(fault.CloseAbnormal, "", false, StateClosed)
		return fault.ErrTransportLost
	}
	return nil
}

// SendText sends a text message.
func (s *Session) SendText(body string) error {
	return s.Send(TextMessage, []byte(body))
}

// SendJSON sends v encoded as a JSON text message.
func (s *Session) SendJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Send(TextMessage, b)
}

// Close initiates a graceful close with the given code and reason. Closing
// a PENDING session rejects it instead; closing an already closing or
// terminal session returns ErrSessionClosed.
func (s *Session) Close(code int, reason string) error {
	switch s.State() {
	case StatePending:
		return s.Reject(code, reason)
	case StateClosing, StateClosed, StateRejected:
		return ErrSessionClosed
	}
	s.terminate(code, reason, true, StateClosed)
	return nil
}

// Reject refuses a session that was never accepted. The peer receives the
// close code without the session ever opening.
func (s *Session) Reject(code int, reason string) error {
	if s.State() != StatePending {
		return fmt.Errorf("ws: reject: session already %s", s.State())
	}
	s.terminate(code, reason, true, StateRejected)
	return nil
}

// write performs one locked write on the underlying connection.
func (s *Session) write(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.State() >= StateClosing {
		return ErrSessionClosed
	}
	if s.writeTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	return s.conn.WriteMessage(messageType, data)
}

// readPump owns all reads on the underlying connection. It delivers
// inbound data messages in arrival order and reports peer closes and
// transport loss.
func (s *Session) readPump() {
	if s.readLimit > 0 {
		s.conn.SetReadLimit(s.readLimit)
	}

	for {
		mt, data, err := s.conn.ReadMessage()
		if err != nil {
			s.peerGone(err)
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		select {
		case s.inbound <- Message{Type: MessageType(mt), Data: data}:
		case <-s.quit:
			return
		}
	}
}

// peerGone handles read-side termination: a close frame from the remote
// peer or loss of the transport.
func (s *Session) peerGone(err error) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		// Gorilla's default close handler has already echoed the frame.
		s.terminate(ce.Code, ce.Text, false, StateClosed)
		return
	}
	if s.State() >= StateClosing {
		// The read failed because we closed the connection ourselves.
		return
	}
	s.logger.Warn("transport lost", "error", err)
	s.terminate(fault.CloseAbnormal, "", false, StateClosed)
}

// terminate drives the session to a terminal state exactly once: it
// records the close code, unblocks pending receives, optionally sends the
// close frame, and tears down the transport. The abnormal-closure code is
// recorded but never sent.
func (s *Session) terminate(code int, reason string, sendFrame bool, final State) {
	s.termOnce.Do(func() {
		s.recordClose(code, reason)
		s.state.Store(int32(StateClosing))
		s.quitOnce.Do(func() { close(s.quit) })

		if sendFrame {
			msg := websocket.FormatCloseMessage(code, reason)
			deadline := time.Now().Add(s.writeTimeout)
			s.writeMu.Lock()
			_ = s.conn.WriteControl(websocket.CloseMessage, msg, deadline)
			s.writeMu.Unlock()
		}

		s.conn.Close()
		s.cancel()
		s.state.Store(int32(final))
	})
}

// recordClose stores the first close code and reason observed.
func (s *Session) recordClose(code int, reason string) {
	if s.closeCode.CompareAndSwap(0, int32(code)) {
		s.reasonMu.Lock()
		s.closeReason = reason
		s.reasonMu.Unlock()
	}
}

// closeErr translates the recorded close code into the error surfaced to
// blocked session operations.
func (s *Session) closeErr() error {
	if int(s.closeCode.Load()) == fault.CloseAbnormal {
		return fault.ErrTransportLost
	}
	return ErrSessionClosed
}
