package middleware

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// OriginGuardMiddleware rejects requests a browser makes on behalf of another site.
//
// A request passes when its Origin is on allowedOrigins or is the server's own origin.
// Requests without Origin pass unless Sec-Fetch-Site marks them as cross-site, so CLI
// clients are unaffected. When allowedHosts is non-empty, the Host header must name one
// of them, which keeps rebound DNS names off the loopback listener.
func OriginGuardMiddleware(allowedOrigins, allowedHosts []string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowedHosts) > 0 && !hostAllowed(r.Host, allowedHosts) {
				reject(w, r, logger, "host not allowed")
				return
			}

			if origin := r.Header.Get("Origin"); origin != "" {
				if !sameOrigin(origin, r.Host) && getAllowedOrigin(origin, allowedOrigins) == "" {
					reject(w, r, logger, "cross-origin request rejected")
					return
				}
			} else if site := r.Header.Get("Sec-Fetch-Site"); site == "cross-site" || site == "same-site" {
				reject(w, r, logger, "cross-origin request rejected")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, logger *zap.Logger, reason string) {
	logger.Warn("request rejected",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("reason", reason),
		zap.String("host", r.Host),
		zap.String("origin", r.Header.Get("Origin")),
		zap.String("path", r.URL.Path),
	)
	writeError(w, http.StatusForbidden, reason)
}

func hostAllowed(host string, allowedHosts []string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	for _, allowed := range allowedHosts {
		if strings.EqualFold(host, allowed) {
			return true
		}
	}
	return false
}

// sameOrigin reports whether origin names the host the request was sent to
func sameOrigin(origin, host string) bool {
	for _, scheme := range []string{"http://", "https://"} {
		if strings.EqualFold(origin, scheme+host) {
			return true
		}
	}
	return false
}
