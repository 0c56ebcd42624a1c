package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// loginState is a mock implementation of LoginReporter
type loginState bool

func (l loginState) IsLoggedIn() bool { return bool(l) }

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("keeps incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "incoming")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "incoming", seen)
		assert.Equal(t, "incoming", w.Header().Get(RequestIDHeader))
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		allowed        []string
		origin         string
		method         string
		expectedOrigin string
		expectedStatus int
	}{
		{name: "wildcard", allowed: []string{"*"}, origin: "http://a.test", method: http.MethodGet, expectedOrigin: "*", expectedStatus: http.StatusOK},
		{name: "listed origin", allowed: []string{"http://a.test"}, origin: "http://A.test", method: http.MethodGet, expectedOrigin: "http://A.test", expectedStatus: http.StatusOK},
		{name: "unlisted origin", allowed: []string{"http://a.test"}, origin: "http://b.test", method: http.MethodGet, expectedOrigin: "", expectedStatus: http.StatusOK},
		{name: "no origin", allowed: []string{"*"}, origin: "", method: http.MethodGet, expectedOrigin: "", expectedStatus: http.StatusOK},
		{name: "preflight", allowed: []string{"*"}, origin: "http://a.test", method: http.MethodOptions, expectedOrigin: "*", expectedStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			CORSMiddleware(tt.allowed)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	handler := RequestSizeLimitMiddleware(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("too large", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too large")))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.JSONEq(t, `{"error":"request body exceeds 8 bytes"}`, w.Body.String())
	})

	t.Run("no body", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		unlimited := RequestSizeLimitMiddleware(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		w := httptest.NewRecorder()
		unlimited.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too large")))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestLoggerMiddleware_CapturesStatus(t *testing.T) {
	handler := LoggerMiddleware(zap.NewNop(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestOriginGuardMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	loopback := []string{"localhost", "127.0.0.1", "::1"}

	tests := []struct {
		name           string
		allowedOrigins []string
		allowedHosts   []string
		host           string
		origin         string
		fetchSite      string
		expectedStatus int
	}{
		{name: "cli request", allowedHosts: loopback, host: "127.0.0.1:8080", expectedStatus: http.StatusOK},
		{name: "foreign origin", allowedHosts: loopback, host: "127.0.0.1:8080", origin: "https://evil.example", expectedStatus: http.StatusForbidden},
		{name: "listed origin", allowedOrigins: []string{"http://app.test"}, allowedHosts: loopback, host: "localhost:8080", origin: "http://app.test", expectedStatus: http.StatusOK},
		{name: "wildcard origin", allowedOrigins: []string{"*"}, allowedHosts: loopback, host: "localhost:8080", origin: "https://evil.example", expectedStatus: http.StatusOK},
		{name: "same origin", allowedHosts: loopback, host: "localhost:8080", origin: "http://localhost:8080", expectedStatus: http.StatusOK},
		{name: "cross-site without origin", allowedHosts: loopback, host: "localhost:8080", fetchSite: "cross-site", expectedStatus: http.StatusForbidden},
		{name: "same-site without origin", allowedHosts: loopback, host: "localhost:8080", fetchSite: "same-site", expectedStatus: http.StatusForbidden},
		{name: "typed navigation", allowedHosts: loopback, host: "localhost:8080", fetchSite: "none", expectedStatus: http.StatusOK},
		{name: "rebound host name", allowedHosts: loopback, host: "evil.example:8080", origin: "http://evil.example:8080", expectedStatus: http.StatusForbidden},
		{name: "ipv6 loopback", allowedHosts: loopback, host: "[::1]:8080", expectedStatus: http.StatusOK},
		{name: "no host list", host: "shell.lan:8080", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := OriginGuardMiddleware(tt.allowedOrigins, tt.allowedHosts, zap.NewNop())(next)
			req := httptest.NewRequest(http.MethodGet, "/api/profile/", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.fetchSite != "" {
				req.Header.Set("Sec-Fetch-Site", tt.fetchSite)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusForbidden {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}

func TestLoggerMiddleware_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler := RequestIDMiddleware(LoggerMiddleware(zap.New(core), loginState(true))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			SetUpstreamStatus(r.Context(), http.StatusUnauthorized)
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"expired"}`))
		}),
	))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/works/", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, int64(http.StatusUnauthorized), fields["status"])
	assert.Equal(t, int64(http.StatusUnauthorized), fields["upstream_status"])
	assert.Equal(t, int64(len(`{"detail":"expired"}`)), fields["bytes"])
	assert.Equal(t, true, fields["logged_in"])
	assert.Equal(t, w.Header().Get(RequestIDHeader), fields["request_id"])
}

func TestLoggerMiddleware_Levels(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		status        int
		expectedLevel zapcore.Level
	}{
		{name: "ok", path: "/shell/session", status: http.StatusOK, expectedLevel: zapcore.InfoLevel},
		{name: "health", path: "/healthz", status: http.StatusOK, expectedLevel: zapcore.DebugLevel},
		{name: "forbidden", path: "/api/works/", status: http.StatusForbidden, expectedLevel: zapcore.WarnLevel},
		{name: "bad gateway", path: "/api/works/", status: http.StatusBadGateway, expectedLevel: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			handler := LoggerMiddleware(zap.New(core), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Len(t, logs.All(), 1)
			assert.Equal(t, tt.expectedLevel, logs.All()[0].Level)
			assert.NotContains(t, logs.All()[0].ContextMap(), "upstream_status")
			assert.NotContains(t, logs.All()[0].ContextMap(), "logged_in")
		})
	}
}

func TestSetUpstreamStatus_OutsideLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		SetUpstreamStatus(httptest.NewRequest(http.MethodGet, "/", nil).Context(), http.StatusOK)
	})
}

func TestRecoveryMiddleware_AbortHandler(t *testing.T) {
	handler := RecoveryMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
