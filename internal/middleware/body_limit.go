package middleware

import "net/http"

// MaxBodySize caps how much request body a handler can read.
// The cap is enforced lazily: a handler reading past maxBytes gets a
// *http.MaxBytesError and the client a 413. Login and settings payloads
// are small, so the limit mostly guards against junk uploads.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
