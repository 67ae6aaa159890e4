package middleware

import (
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/schnitzelbub/bocadillo/pkg/server"
)

// Default tracer name for dispatch spans.
const defaultTracerName = "bocadillo"

// TracingConfig configures the OpenTelemetry middleware.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "bocadillo").
	TracerName string

	// Filter determines which connections to trace.
	// Return true to trace the connection, false to skip.
	// If nil, all connections are traced.
	Filter func(conn server.Conn) bool

	// AttributeExtractor extracts custom attributes from the connection.
	// Called for each traced dispatch.
	AttributeExtractor func(conn server.Conn) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TracingOption configures the OpenTelemetry middleware.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) { c.TracerName = name }
}

// WithFilter sets a filter function for connections.
func WithFilter(filter func(conn server.Conn) bool) TracingOption {
	return func(c *TracingConfig) { c.Filter = filter }
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(conn server.Conn) []attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) { c.AttributeExtractor = extractor }
}

// Tracing creates transport-level middleware that opens an OpenTelemetry
// server span around each dispatch, recording the kind, method, path, and
// terminal outcome.
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in your main() before starting the server:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func Tracing(opts ...TracingOption) Middleware {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	config.tracer = otel.Tracer(config.TracerName)

	return Func(func(conn server.Conn, next func() error) error {
		if config.Filter != nil && !config.Filter(conn) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("bocadillo.kind", conn.Kind().String()),
			attribute.String("bocadillo.method", conn.Method()),
			attribute.String("bocadillo.path", conn.Path()),
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(conn)...)
		}

		_, span := config.tracer.Start(
			conn.Context(),
			fmt.Sprintf("dispatch %s", spanPath(conn)),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		err := next()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		switch c := conn.(type) {
		case *server.RequestCtx:
			if code := c.StatusCode(); code != 0 {
				span.SetAttributes(attribute.Int("http.status_code", code))
			}
		case *server.HandshakeCtx:
			if code := c.CloseCode(); code != 0 {
				span.SetAttributes(attribute.String("bocadillo.close_code", strconv.Itoa(code)))
			}
		}

		return err
	})
}

// spanPath returns the path used in span names.
func spanPath(conn server.Conn) string {
	if p := conn.Path(); p != "" {
		return p
	}
	return "/"
}
