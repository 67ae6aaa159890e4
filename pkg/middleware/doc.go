// Package middleware implements the ordered middleware chains of the
// dispatch core, plus production middleware built on them.
//
// A Middleware wraps pre/post behavior around a handler without altering
// its contract. Chains compose outermost-registered-first: the first entry
// runs its pre-logic first on the way in and its post-logic last on the
// way out. An entry may short-circuit by returning without calling next,
// in which case downstream entries and the terminal handler never execute.
//
// Two independent chains exist per server: the transport-level chain,
// applied once per connection before kind-specific routing, and the
// request-only chain, applied only around matched request/response
// handlers.
//
// Shipped middleware:
//   - Metrics: Prometheus counters, histograms, and gauges per dispatch
//   - Tracing: OpenTelemetry server spans per dispatch
//   - RequestLogger: structured slog access logging
//
// Expose Prometheus metrics on a separate listener:
//
//	http.Handle("/metrics", promhttp.Handler())
//	go http.ListenAndServe(":9090", nil)
package middleware
