package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/schnitzelbub/bocadillo"
	"github.com/schnitzelbub/bocadillo/pkg/fault"
	"github.com/schnitzelbub/bocadillo/pkg/middleware"
	"github.com/schnitzelbub/bocadillo/pkg/routing"
	"github.com/schnitzelbub/bocadillo/pkg/server"
	"github.com/schnitzelbub/bocadillo/pkg/validation"
	"github.com/schnitzelbub/bocadillo/pkg/ws"
)

// itemSchema validates item creation payloads. Compiled once at startup.
var itemSchema = map[string]any{
	"type":     "object",
	"required": []any{"name"},
	"properties": map[string]any{
		"name":  map[string]any{"type": "string", "minLength": 1},
		"price": map[string]any{"type": "number", "minimum": 0},
	},
}

// serveCmd runs the example dispatch server.
func serveCmd() *cobra.Command {
	var (
		addr        string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the example dispatch server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			app, err := buildApp(logger)
			if err != nil {
				return err
			}

			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				go func() {
					logger.Info("metrics listening", "addr", metricsAddr)
					if err := http.ListenAndServe(metricsAddr, mux); err != nil {
						logger.Error("metrics listener failed", "error", err)
					}
				}()
			}

			logger.Info("listening", "addr", addr)
			return http.ListenAndServe(addr, app)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Prometheus listener address (empty to disable)")
	return cmd
}

// buildApp wires the example routes and middleware.
func buildApp(logger *slog.Logger) (*bocadillo.App, error) {
	app := bocadillo.New(bocadillo.Config{
		Logger: logger,
		OnFault: func(err error) {
			logger.Error("operator fault report", "error", err)
		},
	})

	app.Use(
		middleware.RequestLogger(logger),
		middleware.Metrics(),
		middleware.Tracing(),
	)

	if err := app.Route("/", hello); err != nil {
		return nil, err
	}
	if err := app.Route("/items/{id}", showItem, routing.WithName("item")); err != nil {
		return nil, err
	}

	createItem, err := validation.Wrap(validation.JSONSchema{}, itemSchema, createItemHandler)
	if err != nil {
		return nil, err
	}
	if err := app.Route("/items", createItem); err != nil {
		return nil, err
	}

	if err := app.WebSocket("/echo/{room}", echo); err != nil {
		return nil, err
	}

	return app, nil
}

// hello answers the root path.
func hello(ctx *server.RequestCtx) error {
	return ctx.JSON(http.StatusOK, map[string]string{"message": "hello"})
}

// showItem echoes the extracted route parameter.
func showItem(ctx *server.RequestCtx) error {
	return ctx.JSON(http.StatusOK, map[string]string{"id": ctx.Param("id")})
}

// createItemHandler accepts a validated item payload.
func createItemHandler(ctx *server.RequestCtx) error {
	if ctx.Method() != http.MethodPost {
		return fault.New(http.StatusMethodNotAllowed)
	}

	var item struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	if err := ctx.Bind(&item); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

// echo accepts a session and mirrors every message back, prefixed with the
// room parameter.
func echo(s *ws.Session) error {
	if err := s.Accept(); err != nil {
		return err
	}

	room := s.Param("room")
	for {
		body, err := s.ReceiveText()
		if err != nil {
			if errors.Is(err, ws.ErrSessionClosed) {
				return nil
			}
			return err
		}
		if err := s.SendText(room + ": " + body); err != nil {
			return err
		}
	}
}
