package middleware

import (
	"log/slog"
	"time"

	"github.com/schnitzelbub/bocadillo/pkg/server"
)

// RequestLogger creates transport-level middleware that logs every
// dispatched connection with its kind, method, path, duration, and
// terminal outcome. A nil logger falls back to slog.Default().
func RequestLogger(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return Func(func(conn server.Conn, next func() error) error {
		start := time.Now()

		err := next()

		attrs := []any{
			"kind", conn.Kind().String(),
			"method", conn.Method(),
			"path", conn.Path(),
			"duration", time.Since(start),
		}
		switch c := conn.(type) {
		case *server.RequestCtx:
			if code := c.StatusCode(); code != 0 {
				attrs = append(attrs, "status", code)
			}
		case *server.HandshakeCtx:
			if code := c.CloseCode(); code != 0 {
				attrs = append(attrs, "close_code", code)
			}
		}

		if err != nil {
			logger.Error("dispatch failed", append(attrs, "error", err)...)
		} else {
			logger.Info("dispatched", attrs...)
		}

		return err
	})
}
