// Package request holds small helpers for reading facts out of an
// incoming HTTP request.
package request

import (
	"net/http"
	"strings"
)

// ClientIP resolves the originating client address. Proxy headers win
// over the socket address: the first X-Forwarded-For hop, then
// X-Real-IP, then RemoteAddr. The rate limiter keys on this value.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
