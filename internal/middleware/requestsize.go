package middleware

import "net/http"

// DefaultMaxRequestSize caps request bodies at 1MB, more than enough
// for any task payload.
const DefaultMaxRequestSize int64 = 1 << 20

// MaxRequestSize rejects oversized bodies. Requests that declare a
// too-large Content-Length are refused immediately; everything else is
// wrapped in a MaxBytesReader so chunked uploads are bounded too.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			defer r.Body.Close()
			next.ServeHTTP(w, r)
		})
	}
}
