package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"

	"github.com/schnitzelbub/bocadillo/pkg/server"
)

func TestTracingPassesThrough(t *testing.T) {
	mw := Tracing()

	r := httptest.NewRequest("GET", "/items/1", nil)
	ctx := server.NewRequestCtx(httptest.NewRecorder(), r, nil)

	ran, err := Run(ctx, []Middleware{mw}, func() error { return nil })
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !ran {
		t.Error("terminal did not run under tracing middleware")
	}
}

func TestTracingPropagatesError(t *testing.T) {
	mw := Tracing()
	boom := errors.New("boom")

	r := httptest.NewRequest("GET", "/boom", nil)
	ctx := server.NewRequestCtx(httptest.NewRecorder(), r, nil)

	_, err := Run(ctx, []Middleware{mw}, func() error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want boom", err)
	}
}

func TestTracingFilterSkips(t *testing.T) {
	filtered := 0
	mw := Tracing(WithFilter(func(conn server.Conn) bool {
		filtered++
		return conn.Path() != "/healthz"
	}))

	r := httptest.NewRequest("GET", "/healthz", nil)
	ctx := server.NewRequestCtx(httptest.NewRecorder(), r, nil)

	ran, err := Run(ctx, []Middleware{mw}, func() error { return nil })
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !ran {
		t.Error("filtered connection must still reach the terminal")
	}
	if filtered != 1 {
		t.Errorf("filter called %d times, want 1", filtered)
	}
}

func TestTracingAttributeExtractor(t *testing.T) {
	extracted := 0
	mw := Tracing(WithAttributeExtractor(func(conn server.Conn) []attribute.KeyValue {
		extracted++
		return []attribute.KeyValue{attribute.String("room", conn.Param("room"))}
	}))

	r := httptest.NewRequest("GET", "/rooms/lobby", nil)
	ctx := server.NewRequestCtx(httptest.NewRecorder(), r, nil)
	ctx.SetParams(map[string]string{"room": "lobby"})

	if _, err := Run(ctx, []Middleware{mw}, func() error { return nil }); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if extracted != 1 {
		t.Errorf("extractor called %d times, want 1", extracted)
	}
}
