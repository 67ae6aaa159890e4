package bocadillo

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/schnitzelbub/bocadillo/pkg/fault"
	"github.com/schnitzelbub/bocadillo/pkg/middleware"
	"github.com/schnitzelbub/bocadillo/pkg/routing"
	"github.com/schnitzelbub/bocadillo/pkg/server"
	"github.com/schnitzelbub/bocadillo/pkg/ws"
)

// App is the connection-dispatch core: one route table per interaction
// kind, the transport-level and request-only middleware chains, and the
// upgrade boundary for persistent sessions.
//
// Routes and middleware are registered during setup and frozen when the
// first connection is served; after that the App is read-only and safe
// for any number of concurrent dispatches.
type App struct {
	requestRoutes *routing.Table
	sessionRoutes *routing.Table

	transport []middleware.Middleware
	request   []middleware.Middleware

	upgrader websocket.Upgrader
	logger   *slog.Logger
	config   Config

	freezeOnce sync.Once
	frozen     atomic.Bool
}

// New creates an App with the given configuration.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Session = cfg.Session.withDefaults()

	return &App{
		requestRoutes: routing.NewTable(),
		sessionRoutes: routing.NewTable(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.Session.ReadBufferSize,
			WriteBufferSize: cfg.Session.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
		logger: logger,
		config: cfg,
	}
}

// Route registers a request/response handler for pattern. Routes are
// matched in registration order, first match wins. Use routing.WithName
// to make the route reversible via URLFor.
func (a *App) Route(pattern string, handler server.Handler, opts ...routing.RouteOption) error {
	_, err := a.requestRoutes.Add(pattern, handler, opts...)
	return err
}

// WebSocket registers a persistent-session handler for pattern.
func (a *App) WebSocket(pattern string, handler ws.Handler) error {
	_, err := a.sessionRoutes.Add(pattern, handler)
	return err
}

// Use appends transport-level middleware, applied to every connection of
// both kinds before kind-specific dispatch.
func (a *App) Use(mw ...middleware.Middleware) {
	if a.frozen.Load() {
		a.logger.Warn("transport middleware registered after freeze, ignored")
		return
	}
	a.transport = append(a.transport, mw...)
}

// UseHTTP appends request-only middleware, applied only around matched
// request/response handlers.
func (a *App) UseHTTP(mw ...middleware.Middleware) {
	if a.frozen.Load() {
		a.logger.Warn("request middleware registered after freeze, ignored")
		return
	}
	a.request = append(a.request, mw...)
}

// URLFor reverses a named request/response route into a concrete path.
func (a *App) URLFor(name string, params map[string]string) (string, error) {
	return a.requestRoutes.Reverse(name, params)
}

// ServeHTTP implements http.Handler. The first call freezes the route
// tables and middleware chains.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.freezeOnce.Do(func() {
		a.requestRoutes.Freeze()
		a.sessionRoutes.Freeze()
		a.frozen.Store(true)
	})

	if server.ClassifyKind(r) == server.KindPersistentSession {
		a.serveSession(w, r)
		return
	}
	a.serveRequest(w, r)
}

// serveRequest dispatches one request/response exchange.
func (a *App) serveRequest(w http.ResponseWriter, r *http.Request) {
	ctx := server.NewRequestCtx(w, r, a.logger)

	_, err := middleware.Run(ctx, a.transport, func() error {
		return a.dispatchRequest(ctx)
	})
	if err != nil {
		a.failRequest(ctx, err)
		return
	}
	if !ctx.Written() {
		// The client never hangs: an exchange that produced nothing gets
		// an empty success.
		_ = ctx.Text(http.StatusOK, "")
	}
}

// dispatchRequest is the transport chain's terminal for request/response
// connections: route lookup, then the request-only chain around the
// matched handler.
func (a *App) dispatchRequest(ctx *server.RequestCtx) error {
	m, ok := a.requestRoutes.Match(ctx.Path())
	if !ok {
		return fault.ErrNotFound
	}
	ctx.SetParams(m.Params)

	handler := m.Route.Handler.(server.Handler)
	_, err := middleware.Run(ctx, a.request, func() error {
		return a.invokeRequest(ctx, handler)
	})
	return err
}

// invokeRequest runs the handler with panic containment. A panic is a
// handler fault terminating this exchange only.
func (a *App) invokeRequest(ctx *server.RequestCtx, handler server.Handler) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("bocadillo: handler panic: %v\n%s", rec, debug.Stack())
		}
	}()
	return handler(ctx)
}

// failRequest maps an escaped error onto the exchange's terminal response
// and, for unstructured faults, onto the decoupled operator path.
func (a *App) failRequest(ctx *server.RequestCtx, err error) {
	ctx.RespondError(err)

	if fault.IsStructured(err) || errors.Is(err, fault.ErrNotFound) {
		return
	}
	a.logger.Error("unhandled fault",
		"method", ctx.Method(),
		"path", ctx.Path(),
		"error", err)
	if a.config.OnFault != nil {
		a.config.OnFault(err)
	}
}

// serveSession dispatches one persistent session. Failure mapping happens
// inside the dispatch, where the upgraded connection lives; an error
// escaping the transport chain can only come from middleware running
// before the upgrade and is answered over plain HTTP.
func (a *App) serveSession(w http.ResponseWriter, r *http.Request) {
	hs := server.NewHandshakeCtx(r, a.logger)

	_, err := middleware.Run(hs, a.transport, func() error {
		return a.dispatchSession(hs, w, r)
	})
	if err != nil {
		hs.Logger().Warn("session dispatch refused", "path", hs.Path(), "error", err)
		fault.WriteError(w, err)
	}
}

// dispatchSession is the transport chain's terminal for persistent
// sessions: route lookup, upgrade, then hand-off to the session
// lifecycle manager.
func (a *App) dispatchSession(hs *server.HandshakeCtx, w http.ResponseWriter, r *http.Request) error {
	m, matched := a.sessionRoutes.Match(hs.Path())
	if matched {
		hs.SetParams(m.Params)
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own HTTP error.
		a.logger.Warn("upgrade failed", "path", hs.Path(), "error", err)
		return nil
	}

	sess := ws.New(conn, r, hs.Params(), ws.Options{
		Logger:        a.logger,
		WriteTimeout:  a.config.Session.WriteTimeout,
		ReadLimit:     a.config.Session.ReadLimit,
		InboundBuffer: a.config.Session.InboundBuffer,
		OnFault:       a.config.OnFault,
	})

	if !matched {
		// Unmatched sessions are rejected without invoking any handler.
		_ = sess.Reject(fault.ClosePolicyViolation, "no route matched")
		hs.SetCloseCode(sess.CloseCode())
		return nil
	}

	ws.Serve(sess, m.Route.Handler.(ws.Handler))
	hs.SetCloseCode(sess.CloseCode())
	return nil
}
