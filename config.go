package bocadillo

import (
	"log/slog"
	"net/http"
	"time"
)

// Config configures an App.
type Config struct {
	// Logger is the structured logger; slog.Default() when nil.
	Logger *slog.Logger

	// OnFault observes unhandled handler faults after the client-visible
	// response or close has been produced. Client-visible behavior and
	// operator-visible behavior are decoupled: the client always sees a
	// generic failure, the hook sees the original error.
	OnFault func(err error)

	// Session tunes persistent-session handling.
	Session SessionConfig

	// CheckOrigin overrides the upgrade origin policy. When nil, gorilla's
	// same-origin default applies.
	CheckOrigin func(r *http.Request) bool
}

// SessionConfig tunes persistent-session handling.
type SessionConfig struct {
	// WriteTimeout bounds each outbound write (default 10s).
	WriteTimeout time.Duration

	// ReadLimit caps inbound message size in bytes (default 1 MiB).
	ReadLimit int64

	// InboundBuffer is the inbound message queue depth (default 16).
	InboundBuffer int

	// ReadBufferSize and WriteBufferSize size the upgrade I/O buffers
	// (default 4096).
	ReadBufferSize  int
	WriteBufferSize int
}

// DefaultSessionConfig returns the default session tuning.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		WriteTimeout:    10 * time.Second,
		ReadLimit:       1 << 20,
		InboundBuffer:   16,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
}

// withDefaults fills zero fields from DefaultSessionConfig.
func (c SessionConfig) withDefaults() SessionConfig {
	d := DefaultSessionConfig()
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ReadLimit == 0 {
		c.ReadLimit = d.ReadLimit
	}
	if c.InboundBuffer == 0 {
		c.InboundBuffer = d.InboundBuffer
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	return c
}
