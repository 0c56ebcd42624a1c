package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/novelplatform/novelshell/internal/middleware"
	"go.uber.org/zap"
)

// sessionTransport is the request and response interceptor of the client
type sessionTransport struct {
	base    http.RoundTripper
	session SessionKeeper
	expired func()
	logger  *zap.Logger
}

// RoundTrip attaches the bearer token and request ID, then expires the session
// if the API rejects the token that was sent.
func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.session.Token()

	out := req.Clone(req.Context())
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	if out.Header.Get(middleware.RequestIDHeader) == "" {
		requestID := middleware.GetRequestID(req.Context())
		if requestID == "" {
			requestID = uuid.New().String()
		}
		out.Header.Set(middleware.RequestIDHeader, requestID)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && t.session.ExpireToken(token) {
		t.logger.Info("session expired by API",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
		)
		t.expired()
	}
	return resp, nil
}
