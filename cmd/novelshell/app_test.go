package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/novelplatform/novelshell/internal/config"
	"github.com/novelplatform/novelshell/internal/models"
	"github.com/novelplatform/novelshell/internal/navigation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testToken = "tok-1"

// newFakeAPI serves the platform endpoints the shell uses under /api
func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer "+testToken
	}

	mux.HandleFunc("POST /api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"token":"`+testToken+`","user_id":5,"username":"reader","role":0}`)
	})
	mux.HandleFunc("GET /api/profile/", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, `{"detail":"unauthorized"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success":true,"profile":{"nickname":"Reader"}}`)
	})
	mux.HandleFunc("GET /api/categories/", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, `{"detail":"unauthorized"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success":true,"categories":[]}`)
	})
	mux.HandleFunc("GET /api/works/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"token expired"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T, apiURL string) *app {
	t.Helper()
	cfg := &config.Config{
		API:     config.APIConfig{BaseURL: apiURL, Timeout: 5 * time.Second},
		Storage: config.StorageConfig{Driver: config.DriverMemory, Namespace: "test"},
		Server:  config.ServerConfig{Port: 8080, MaxRequestSize: 1 << 20},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
	a, err := newApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func shellRequest(t *testing.T, h http.Handler, method, path, body string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestShellServer_SessionLifecycle(t *testing.T) {
	fake := newFakeAPI(t)
	a := newTestApp(t, fake.URL+"/api")
	router, err := newRouter(a)
	require.NoError(t, err)
	_, err = a.navigator.Reload(navigation.PathWelcome)
	require.NoError(t, err)

	// Logged out: the guard sends protected paths to login.
	loc := shellRequest(t, router, http.MethodPost, "/shell/navigate", `{"path":"/main"}`)
	assert.Equal(t, navigation.PathLogin, loc["path"])

	result := shellRequest(t, router, http.MethodPost, "/shell/session/login", `{"username":"reader","password":"secret"}`)
	assert.Equal(t, true, result["success"])

	snapshot := shellRequest(t, router, http.MethodGet, "/shell/session/", "")
	assert.Equal(t, true, snapshot["is_logged_in"])
	assert.Equal(t, false, snapshot["is_admin"])
	user, ok := snapshot["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "reader", user["username"])
	assert.Equal(t, "Reader", user["nickname"])

	loc = shellRequest(t, router, http.MethodPost, "/shell/navigate", `{"path":"/main"}`)
	assert.Equal(t, "/main/bookshelf", loc["path"])

	// Proxied requests carry the session token.
	req := httptest.NewRequest(http.MethodGet, "/api/categories/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, a.session.IsLoggedIn())

	// A 401 through the proxy expires the session and hard-navigates to login.
	generation := a.navigator.Current().Generation
	req = httptest.NewRequest(http.MethodGet, "/api/works/", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, a.session.IsLoggedIn())

	current := a.navigator.Current()
	require.NotNil(t, current.Resolution)
	assert.Equal(t, navigation.PathLogin, current.Path)
	assert.Equal(t, generation+1, current.Generation)
	assert.Equal(t, 0, a.navigator.HistoryLen())
}

func TestShellServer_SessionPersistsAcrossApps(t *testing.T) {
	fake := newFakeAPI(t)
	dir := t.TempDir()
	cfg := func() *config.Config {
		return &config.Config{
			API:     config.APIConfig{BaseURL: fake.URL + "/api", Timeout: 5 * time.Second},
			Storage: config.StorageConfig{Driver: config.DriverFile, Path: dir + "/storage.json", Namespace: "test"},
			Server:  config.ServerConfig{Port: 8080, MaxRequestSize: 1 << 20},
			CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
		}
	}

	first, err := newApp(context.Background(), cfg(), zap.NewNop())
	require.NoError(t, err)
	result := first.sessions.Login(context.Background(), models.Credentials{Username: "reader", Password: "secret"})
	require.True(t, result.Success)
	first.Close()

	second, err := newApp(context.Background(), cfg(), zap.NewNop())
	require.NoError(t, err)
	defer second.Close()

	assert.True(t, second.session.IsLoggedIn())
	assert.Equal(t, testToken, second.session.Token())
	assert.Equal(t, "reader", second.session.User().Username())
}

func TestShellServer_RejectsForeignOrigins(t *testing.T) {
	fake := newFakeAPI(t)
	a := newTestApp(t, fake.URL+"/api")
	a.cfg.Server.AllowedHosts = []string{"localhost", "127.0.0.1", "::1"}
	a.cfg.CORS.AllowedOrigins = nil
	router, err := newRouter(a)
	require.NoError(t, err)
	require.True(t, a.sessions.Login(context.Background(), models.Credentials{Username: "reader", Password: "secret"}).Success)

	tests := []struct {
		name           string
		host           string
		origin         string
		expectedStatus int
	}{
		{name: "foreign page", host: "127.0.0.1:8080", origin: "https://evil.example", expectedStatus: http.StatusForbidden},
		{name: "rebound name", host: "evil.example:8080", expectedStatus: http.StatusForbidden},
		{name: "local client", host: "127.0.0.1:8080", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/profile/", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.expectedStatus == http.StatusForbidden {
				assert.NotContains(t, w.Body.String(), "Reader")
			}
		})
	}
}

func TestShellServer_CorruptStorageRecovers(t *testing.T) {
	fake := newFakeAPI(t)
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"trunc`), 0o600))
	cfg := func() *config.Config {
		return &config.Config{
			API:     config.APIConfig{BaseURL: fake.URL + "/api", Timeout: 5 * time.Second},
			Storage: config.StorageConfig{Driver: config.DriverFile, Path: path, Namespace: "test"},
		}
	}

	first, err := newApp(context.Background(), cfg(), zap.NewNop())
	require.NoError(t, err)
	assert.False(t, first.session.IsLoggedIn())
	require.True(t, first.sessions.Login(context.Background(), models.Credentials{Username: "reader", Password: "secret"}).Success)
	first.Close()

	second, err := newApp(context.Background(), cfg(), zap.NewNop())
	require.NoError(t, err)
	defer second.Close()

	assert.True(t, second.session.IsLoggedIn())
	assert.Equal(t, "reader", second.session.User().Username())
}

func TestNewRootCmd_Commands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, expected := range []string{"serve", "login", "admin-login", "register", "logout", "status", "profile", "unread", "navigate", "routes"} {
		assert.Contains(t, names, expected)
	}
}
