package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/novelplatform/novelshell/internal/middleware"
	"go.uber.org/zap"
)

// ProxyPrefix is the path prefix forwarded to the platform API
const ProxyPrefix = "/api"

// ProxyHandler forwards /api/* to the platform API through the session transport,
// so proxied requests carry the session token and a 401 expires the session.
// Each proxied call gets the same time limit as a direct API client call.
type ProxyHandler struct {
	BaseHandler
	proxy   *httputil.ReverseProxy
	timeout time.Duration
}

// NewProxyHandler creates a new proxy handler for the API at baseURL.
// A non-positive timeout leaves proxied calls bounded only by the caller.
func NewProxyHandler(baseURL string, transport http.RoundTripper, timeout time.Duration, logger *zap.Logger) (*ProxyHandler, error) {
	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("API base URL must be absolute: %q", baseURL)
	}

	h := &ProxyHandler{BaseHandler: BaseHandler{logger: logger}, timeout: timeout}
	h.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, ProxyPrefix)
			pr.Out.URL.RawPath = ""
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		Transport: transport,
		ModifyResponse: func(resp *http.Response) error {
			if resp.Request != nil {
				middleware.SetUpstreamStatus(resp.Request.Context(), resp.StatusCode)
			}
			return nil
		},
		ErrorHandler: h.handleProxyError,
	}
	return h, nil
}

// RegisterRoutes registers the proxy routes
func (h *ProxyHandler) RegisterRoutes(r chi.Router) {
	r.Handle(ProxyPrefix+"/*", h)
}

// ServeHTTP forwards the request to the platform API
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.timeout > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()
		r = r.WithContext(ctx)
	}
	h.proxy.ServeHTTP(w, r)
}

func (h *ProxyHandler) handleProxyError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("API proxy request failed",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		h.respondError(w, http.StatusGatewayTimeout, "platform API timed out")
		return
	}
	h.respondError(w, http.StatusBadGateway, "platform API unavailable")
}
