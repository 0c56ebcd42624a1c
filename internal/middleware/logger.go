package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoginReporter reports whether the shell currently holds a session
type LoginReporter interface {
	IsLoggedIn() bool
}

type accessLogKey struct{}

// accessLog collects details handlers add to the access log entry of a request
type accessLog struct {
	upstreamStatus int
}

// SetUpstreamStatus records the platform API status of a proxied request
// in its access log entry. It does nothing outside LoggerMiddleware.
func SetUpstreamStatus(ctx context.Context, status int) {
	if entry, ok := ctx.Value(accessLogKey{}).(*accessLog); ok {
		entry.upstreamStatus = status
	}
}

// LoggerMiddleware writes one access log entry per shell request, with the session's
// login state and, for proxied calls, the status the platform answered with.
// session may be nil.
func LoggerMiddleware(logger *zap.Logger, session LoginReporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			entry := &accessLog{}
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), accessLogKey{}, entry)))

			fields := []zap.Field{
				zap.String("request_id", GetRequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.statusCode),
				zap.Int64("bytes", ww.bytes),
				zap.Duration("duration", time.Since(start)),
			}
			if entry.upstreamStatus != 0 {
				fields = append(fields, zap.Int("upstream_status", entry.upstreamStatus))
			}
			if session != nil {
				fields = append(fields, zap.Bool("logged_in", session.IsLoggedIn()))
			}
			if ce := logger.Check(accessLevel(r, ww.statusCode), "shell request"); ce != nil {
				ce.Write(fields...)
			}
		})
	}
}

func accessLevel(r *http.Request, status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return zapcore.WarnLevel
	case r.URL.Path == "/healthz":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// responseWriter wraps http.ResponseWriter to capture status code and body size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

// Flush lets streamed proxy responses through the wrapper
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
