package navigation

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/novelplatform/novelshell/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	anonymous = Principal{}
	reader    = Principal{HasToken: true, Role: models.RoleReader}
	author    = Principal{HasToken: true, Role: models.RoleAuthor}
	admin     = Principal{HasToken: true, Role: models.RoleAdmin}
	// a persisted user with an admin role but no token
	adminNoToken = Principal{HasToken: false, Role: models.RoleAdmin}
)

func TestGuard(t *testing.T) {
	routes := make(map[string]Route)
	for _, route := range Routes() {
		routes[route.Name] = route
	}
	authorOnly := Route{Name: "AuthorOnly", Path: "/main/author-only", Meta: Meta{RequiresAuth: true, RequiresAuthor: true}}

	tests := []struct {
		name      string
		route     Route
		principal Principal
		expected  string
	}{
		{name: "admin route without token", route: routes["AdminUsers"], principal: anonymous, expected: PathAdminLogin},
		{name: "admin route with admin role but no token", route: routes["AdminUsers"], principal: adminNoToken, expected: PathAdminLogin},
		{name: "admin route as reader", route: routes["AdminUsers"], principal: reader, expected: PathMain},
		{name: "admin route as author", route: routes["AdminWorks"], principal: author, expected: PathMain},
		{name: "admin route as admin", route: routes["AdminLogs"], principal: admin, expected: ""},
		{name: "admin login as admin", route: routes[RouteAdminLogin], principal: admin, expected: PathAdmin},
		{name: "admin register as admin", route: routes[RouteAdminRegister], principal: admin, expected: PathAdmin},
		{name: "admin login as reader", route: routes[RouteAdminLogin], principal: reader, expected: ""},
		{name: "admin login anonymous", route: routes[RouteAdminLogin], principal: anonymous, expected: ""},
		{name: "admin login with admin role but no token", route: routes[RouteAdminLogin], principal: adminNoToken, expected: ""},
		{name: "auth route anonymous", route: routes["Bookshelf"], principal: anonymous, expected: PathLogin},
		{name: "auth route as reader", route: routes["Bookshelf"], principal: reader, expected: ""},
		{name: "auth route as admin", route: routes["Messages"], principal: admin, expected: ""},
		{name: "public route anonymous", route: routes["Welcome"], principal: anonymous, expected: ""},
		{name: "login page while logged in", route: routes["Login"], principal: reader, expected: ""},
		{name: "author route as reader", route: authorOnly, principal: reader, expected: PathMain},
		{name: "author route as author", route: authorOnly, principal: author, expected: ""},
		{name: "author route anonymous", route: authorOnly, principal: anonymous, expected: PathLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Guard(tt.route, tt.principal))
		})
	}
}

func TestGuard_EveryRoute(t *testing.T) {
	principals := map[string]Principal{"anonymous": anonymous, "reader": reader, "author": author, "admin": admin}

	for _, route := range Routes() {
		for who, principal := range principals {
			t.Run(route.Name+"/"+who, func(t *testing.T) {
				target := Guard(route, principal)
				switch {
				case route.Meta.RequiresAdmin && !principal.HasToken:
					assert.Equal(t, PathAdminLogin, target)
				case route.Meta.RequiresAdmin && !principal.Role.IsAdmin():
					assert.Equal(t, PathMain, target)
				case route.Meta.RequiresAuth && !principal.HasToken:
					assert.Equal(t, PathLogin, target)
				case (route.Name == RouteAdminLogin || route.Name == RouteAdminRegister) && principal.Role.IsAdmin():
					assert.Equal(t, PathAdmin, target)
				default:
					assert.Empty(t, target)
				}
			})
		}
	}
}

func TestRoutes_Table(t *testing.T) {
	routes := Routes()

	names := make(map[string]bool)
	for _, route := range routes {
		assert.False(t, names[route.Name], "duplicate name %s", route.Name)
		names[route.Name] = true
		assert.False(t, route.Meta.RequiresAuthor, "%s is not author-gated", route.Name)
		assert.True(t, route.View != "" || route.Redirect != "", "%s needs a view or a redirect", route.Name)
		if strings.HasPrefix(route.Path, "/main/") {
			assert.True(t, route.Meta.RequiresAuth, "%s inherits requiresAuth", route.Name)
		}
		if strings.HasPrefix(route.Path, "/admin/") && route.Name != RouteAdminLogin && route.Name != RouteAdminRegister {
			assert.True(t, route.Meta.RequiresAdmin, "%s inherits requiresAdmin", route.Name)
		}
	}

	// the table is serializable
	data, err := json.Marshal(routes)
	require.NoError(t, err)
	var decoded []Route
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, routes, decoded)

	// callers get a copy
	routes[0].Name = "Changed"
	assert.Equal(t, "Welcome", Routes()[0].Name)
}

func TestResolver_Match(t *testing.T) {
	resolver := NewDefaultResolver()

	tests := []struct {
		path           string
		expectedRoute  string
		expectedParams map[string]string
	}{
		{path: "/", expectedRoute: "Welcome"},
		{path: "/login", expectedRoute: "Login"},
		{path: "/admin/login", expectedRoute: RouteAdminLogin},
		{path: "/admin", expectedRoute: "AdminDefault"},
		{path: "/admin/users", expectedRoute: "AdminUsers"},
		{path: "/main", expectedRoute: "MainDefault"},
		{path: "/main/bookshelf", expectedRoute: "Bookshelf"},
		{path: "/main/author-mode", expectedRoute: "AuthorMode"},
		{path: "/main/work-edit/5", expectedRoute: "WorkEdit", expectedParams: map[string]string{"workId": "5"}},
		{path: "/main/reading/42", expectedRoute: "Reading", expectedParams: map[string]string{"workId": "42"}},
		{path: "/main/reading/42/7", expectedRoute: "Reading", expectedParams: map[string]string{"workId": "42", "chapterId": "7"}},
		{path: "/reading/42/7", expectedRoute: "ReadingLegacy", expectedParams: map[string]string{"workId": "42", "chapterId": "7"}},
		{path: "/main/reading/a%2Fb", expectedRoute: "Reading", expectedParams: map[string]string{"workId": "a/b"}},
		{path: "/work-detail/3", expectedRoute: "WorkDetailLegacy", expectedParams: map[string]string{"workId": "3"}},
		{path: "/bookshelf", expectedRoute: "BookshelfLegacy"},
		{path: "/nowhere", expectedRoute: RouteNotFound, expectedParams: map[string]string{"*": "nowhere"}},
		{path: "/main/unknown", expectedRoute: RouteNotFound, expectedParams: map[string]string{"*": "main/unknown"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			route, params, ok := resolver.Match(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.expectedRoute, route.Name)
			assert.Equal(t, tt.expectedParams, params)
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	resolver := NewDefaultResolver()

	tests := []struct {
		name              string
		path              string
		principal         Principal
		expectedRoute     string
		expectedFullPath  string
		expectedRedirects []string
	}{
		{name: "welcome", path: "/", principal: anonymous, expectedRoute: "Welcome", expectedFullPath: "/"},
		{name: "empty path", path: "", principal: anonymous, expectedRoute: "Welcome", expectedFullPath: "/"},
		{name: "trailing slash", path: "/login/", principal: anonymous, expectedRoute: "Login", expectedFullPath: "/login"},
		{name: "legacy reading with chapter", path: "/reading/42/7", principal: reader, expectedRoute: "Reading", expectedFullPath: "/main/reading/42/7", expectedRedirects: []string{"/reading/42/7"}},
		{name: "legacy reading without chapter", path: "/reading/42", principal: reader, expectedRoute: "Reading", expectedFullPath: "/main/reading/42", expectedRedirects: []string{"/reading/42"}},
		{name: "legacy work detail", path: "/work-detail/3", principal: reader, expectedRoute: "WorkDetail", expectedFullPath: "/main/work-detail/3", expectedRedirects: []string{"/work-detail/3"}},
		{name: "legacy bookshelf", path: "/bookshelf", principal: reader, expectedRoute: "Bookshelf", expectedFullPath: "/main/bookshelf", expectedRedirects: []string{"/bookshelf"}},
		{name: "legacy reading anonymous", path: "/reading/42/7", principal: anonymous, expectedRoute: "Login", expectedFullPath: "/login", expectedRedirects: []string{"/reading/42/7", "/main/reading/42/7"}},
		{name: "main default", path: "/main", principal: reader, expectedRoute: "Bookshelf", expectedFullPath: "/main/bookshelf", expectedRedirects: []string{"/main"}},
		{name: "main anonymous", path: "/main/messages", principal: anonymous, expectedRoute: "Login", expectedFullPath: "/login", expectedRedirects: []string{"/main/messages"}},
		{name: "admin default", path: "/admin", principal: admin, expectedRoute: "AdminUsers", expectedFullPath: "/admin/users", expectedRedirects: []string{"/admin"}},
		{name: "admin as reader", path: "/admin/works", principal: reader, expectedRoute: "Bookshelf", expectedFullPath: "/main/bookshelf", expectedRedirects: []string{"/admin/works", "/main"}},
		{name: "admin anonymous", path: "/admin/works", principal: anonymous, expectedRoute: RouteAdminLogin, expectedFullPath: "/admin/login", expectedRedirects: []string{"/admin/works"}},
		{name: "admin login as admin", path: "/admin/login", principal: admin, expectedRoute: "AdminUsers", expectedFullPath: "/admin/users", expectedRedirects: []string{"/admin/login", "/admin"}},
		{name: "catch-all", path: "/does/not/exist", principal: anonymous, expectedRoute: "Welcome", expectedFullPath: "/", expectedRedirects: []string{"/does/not/exist"}},
		{name: "query kept", path: "/main/search?q=dragon", principal: reader, expectedRoute: "Search", expectedFullPath: "/main/search?q=dragon"},
		{name: "query kept across route redirect", path: "/bookshelf?sort=recent", principal: reader, expectedRoute: "Bookshelf", expectedFullPath: "/main/bookshelf?sort=recent", expectedRedirects: []string{"/bookshelf"}},
		{name: "query dropped by guard redirect", path: "/main/search?q=dragon", principal: anonymous, expectedRoute: "Login", expectedFullPath: "/login", expectedRedirects: []string{"/main/search"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := resolver.Resolve(tt.path, tt.principal)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedRoute, res.Route.Name)
			assert.Equal(t, tt.expectedFullPath, res.FullPath)
			assert.Equal(t, tt.expectedRedirects, res.Redirects)
		})
	}
}

func TestResolver_Params(t *testing.T) {
	res, err := NewDefaultResolver().Resolve("/reading/42/7", reader)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"workId": "42", "chapterId": "7"}, res.Params)
}

func TestResolver_EscapedSlashStaysInSegment(t *testing.T) {
	resolver := NewDefaultResolver()

	tests := []struct {
		name             string
		path             string
		expectedParams   map[string]string
		expectedFullPath string
	}{
		{name: "legacy reading", path: "/reading/a%2Fb", expectedParams: map[string]string{"workId": "a/b"}, expectedFullPath: "/main/reading/a%2Fb"},
		{name: "legacy reading with chapter", path: "/reading/a%2Fb/c%20d", expectedParams: map[string]string{"workId": "a/b", "chapterId": "c d"}, expectedFullPath: "/main/reading/a%2Fb/c%20d"},
		{name: "direct", path: "/main/reading/a%2Fb?page=2", expectedParams: map[string]string{"workId": "a/b"}, expectedFullPath: "/main/reading/a%2Fb?page=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := resolver.Resolve(tt.path, reader)
			require.NoError(t, err)
			assert.Equal(t, "Reading", res.Route.Name)
			assert.Equal(t, tt.expectedParams, res.Params)
			assert.Equal(t, tt.expectedFullPath, res.FullPath)
		})
	}
}

func TestResolver_TooManyRedirects(t *testing.T) {
	resolver, err := NewResolver([]Route{
		{Name: "A", Path: "/a", Redirect: "/b"},
		{Name: "B", Path: "/b", Redirect: "/a"},
	})
	require.NoError(t, err)

	_, err = resolver.Resolve("/a", anonymous)
	assert.ErrorIs(t, err, ErrTooManyRedirects)
}

func TestResolver_RedirectChainAtLimit(t *testing.T) {
	var routes []Route
	for i := 0; i < MaxRedirects; i++ {
		routes = append(routes, Route{Name: fmt.Sprintf("R%d", i), Path: fmt.Sprintf("/r%d", i), Redirect: fmt.Sprintf("/r%d", i+1)})
	}
	routes = append(routes, Route{Name: "End", Path: fmt.Sprintf("/r%d", MaxRedirects), View: "End"})
	resolver, err := NewResolver(routes)
	require.NoError(t, err)

	res, err := resolver.Resolve("/r0", anonymous)
	require.NoError(t, err)
	assert.Equal(t, "End", res.Route.Name)
	assert.Len(t, res.Redirects, MaxRedirects)
}

func TestResolver_NoRoute(t *testing.T) {
	resolver, err := NewResolver([]Route{{Name: "Home", Path: "/", View: "Home"}})
	require.NoError(t, err)

	_, err = resolver.Resolve("/missing", anonymous)
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestNewResolver_Errors(t *testing.T) {
	tests := []struct {
		name   string
		routes []Route
	}{
		{name: "missing name", routes: []Route{{Path: "/"}}},
		{name: "duplicate name", routes: []Route{{Name: "A", Path: "/a"}, {Name: "A", Path: "/b"}}},
		{name: "duplicate pattern", routes: []Route{{Name: "A", Path: "/a/{id?}"}, {Name: "B", Path: "/a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, err := NewResolver(tt.routes)
			assert.Error(t, err)
			assert.Nil(t, resolver)
		})
	}
}

func TestExpandRedirect(t *testing.T) {
	tests := []struct {
		template string
		params   map[string]string
		expected string
	}{
		{template: "/main/reading/{workId}/{chapterId?}", params: map[string]string{"workId": "42", "chapterId": "7"}, expected: "/main/reading/42/7"},
		{template: "/main/reading/{workId}/{chapterId?}", params: map[string]string{"workId": "42"}, expected: "/main/reading/42"},
		{template: "/main/reading/{workId}/{chapterId?}", params: map[string]string{"workId": "42", "chapterId": ""}, expected: "/main/reading/42"},
		{template: "/", params: nil, expected: "/"},
		{template: "/main/bookshelf", params: nil, expected: "/main/bookshelf"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandRedirect(tt.template, tt.params))
		})
	}
}

// mockSessionReader is a mock implementation of SessionReader
type mockSessionReader struct {
	mu    sync.Mutex
	token string
	role  models.Role
}

func (m *mockSessionReader) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *mockSessionReader) UserRole() models.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.role
}

func (m *mockSessionReader) set(token string, role models.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.role = role
}

func setupNavigator(t *testing.T) (*Navigator, *mockSessionReader) {
	t.Helper()
	session := &mockSessionReader{}
	return NewNavigator(NewDefaultResolver(), session, zap.NewNop()), session
}

func TestNavigator_PushReplaceBack(t *testing.T) {
	nav, session := setupNavigator(t)
	session.set("abc", models.RoleReader)

	assert.Nil(t, nav.Current().Resolution)

	loc, err := nav.Push("/main/bookshelf")
	require.NoError(t, err)
	assert.Equal(t, "Bookshelf", loc.Route.Name)
	assert.Equal(t, 0, nav.HistoryLen())

	_, err = nav.Push("/main/rankings")
	require.NoError(t, err)
	assert.Equal(t, 1, nav.HistoryLen())

	loc, err = nav.Replace("/main/search")
	require.NoError(t, err)
	assert.Equal(t, "Search", loc.Route.Name)
	assert.Equal(t, 1, nav.HistoryLen())

	loc, err = nav.Back()
	require.NoError(t, err)
	assert.Equal(t, "Bookshelf", loc.Route.Name)
	assert.Equal(t, 0, nav.HistoryLen())

	_, err = nav.Back()
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestNavigator_BackRunsGuard(t *testing.T) {
	nav, session := setupNavigator(t)
	session.set("abc", models.RoleReader)

	_, err := nav.Push("/main/profile")
	require.NoError(t, err)
	_, err = nav.Push("/main/messages")
	require.NoError(t, err)

	session.set("", models.RoleNone)
	loc, err := nav.Back()
	require.NoError(t, err)
	assert.Equal(t, "Login", loc.Route.Name)
}

func TestNavigator_Reload(t *testing.T) {
	nav, session := setupNavigator(t)
	session.set("abc", models.RoleAdmin)

	_, err := nav.Push("/admin/users")
	require.NoError(t, err)
	_, err = nav.Push("/admin/works")
	require.NoError(t, err)
	before := nav.Current().Generation

	session.set("", models.RoleNone)
	loc, err := nav.Reload(PathLogin)
	require.NoError(t, err)

	assert.Equal(t, "Login", loc.Route.Name)
	assert.Equal(t, before+1, loc.Generation)
	assert.Equal(t, 0, nav.HistoryLen())
}

func TestNavigator_GuardedPush(t *testing.T) {
	nav, _ := setupNavigator(t)

	loc, err := nav.Push("/admin/logs")
	require.NoError(t, err)
	assert.Equal(t, RouteAdminLogin, loc.Route.Name)
	assert.Equal(t, []string{"/admin/logs"}, loc.Redirects)
}

func TestNavigator_Concurrent(t *testing.T) {
	nav, session := setupNavigator(t)
	session.set("abc", models.RoleReader)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = nav.Push(fmt.Sprintf("/main/reading/%d", i))
			_, _ = nav.Back()
		}(i)
	}
	wg.Wait()

	assert.NotNil(t, nav.Current().Resolution)
}
