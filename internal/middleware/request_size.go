package middleware

import (
	"fmt"
	"net/http"
)

// RequestSizeLimitMiddleware caps request bodies at maxRequestSize bytes. Avatar and
// cover uploads reach the platform through the /api proxy, so the cap covers them.
// A non-positive maxRequestSize disables the cap.
func RequestSizeLimitMiddleware(maxRequestSize int64) func(http.Handler) http.Handler {
	tooLarge := fmt.Sprintf("request body exceeds %d bytes", maxRequestSize)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxRequestSize <= 0 || r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxRequestSize {
				writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
				return
			}

			// Chunked uploads have no length; the reader stops them at the cap.
			r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
			next.ServeHTTP(w, r)
		})
	}
}
