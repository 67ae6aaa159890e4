// Package server defines the transport-independent connection contexts the
// dispatch core operates on.
//
// Every incoming connection is classified into one of two kinds: a one-shot
// request/response exchange or a long-lived persistent session. Both kinds
// are visible to transport-level middleware through the Conn interface,
// which exposes the URL, immutable headers, extracted route parameters, and
// the kind tag.
//
// RequestCtx is the request/response variant: it carries the inbound body
// and produces exactly one terminal response. HandshakeCtx is the
// pre-upgrade view of a persistent session; the ws.Session created after
// the upgrade also implements Conn.
package server
