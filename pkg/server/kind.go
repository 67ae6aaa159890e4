package server

import (
	"net/http"
	"strings"
)

// Kind distinguishes the two interaction models served by the dispatcher.
type Kind int

const (
	// KindRequestResponse is a one-shot exchange producing exactly one
	// response per inbound request.
	KindRequestResponse Kind = iota

	// KindPersistentSession is a long-lived bidirectional connection over
	// which many messages may be exchanged before an explicit close.
	KindPersistentSession
)

// String returns the kind name used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindRequestResponse:
		return "request_response"
	case KindPersistentSession:
		return "persistent_session"
	default:
		return "unknown"
	}
}

// ClassifyKind determines the interaction kind from the negotiated
// protocol: a connection carrying a WebSocket upgrade handshake is a
// persistent session, everything else is request/response.
func ClassifyKind(r *http.Request) Kind {
	if headerContainsToken(r.Header, "Connection", "upgrade") &&
		headerContainsToken(r.Header, "Upgrade", "websocket") {
		return KindPersistentSession
	}
	return KindRequestResponse
}

// headerContainsToken reports whether any value of the named header
// contains token in its comma-separated list, case-insensitively.
func headerContainsToken(h http.Header, name, token string) bool {
	for _, v := range h.Values(name) {
		for _, part := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}
