// Package navigation holds the route table of the shell, the navigation guard
// and the navigator that tracks the current location.
package navigation

import "slices"

// Paths the guard redirects to
const (
	PathWelcome    = "/"
	PathLogin      = "/login"
	PathAdminLogin = "/admin/login"
	PathMain       = "/main"
	PathAdmin      = "/admin"
)

// Route names referenced by the guard
const (
	RouteAdminLogin    = "AdminLogin"
	RouteAdminRegister = "AdminRegister"
	RouteNotFound      = "NotFound"
)

const (
	layoutMain  = "Main"
	layoutAdmin = "admin/AdminLayout"
)

// Meta carries the access requirements of a route
type Meta struct {
	RequiresAuth   bool `json:"requires_auth,omitempty"`
	RequiresAdmin  bool `json:"requires_admin,omitempty"`
	RequiresAuthor bool `json:"requires_author,omitempty"`
}

// Route is one entry of the route table.
//
// Path uses {name} for a parameter and {name?} for an optional trailing parameter;
// "/*" matches any path. A route either names a View (mounted inside Layout, if any)
// or a Redirect target, which may reference the parameters of Path.
type Route struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Layout   string `json:"layout,omitempty"`
	View     string `json:"view,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Meta     Meta   `json:"meta"`
}

var (
	authMeta  = Meta{RequiresAuth: true}
	adminMeta = Meta{RequiresAdmin: true}
)

func mainChild(name, path, view string) Route {
	return Route{Name: name, Path: "/main/" + path, Layout: layoutMain, View: view, Meta: authMeta}
}

func adminChild(name, path, view string) Route {
	return Route{Name: name, Path: "/admin/" + path, Layout: layoutAdmin, View: view, Meta: adminMeta}
}

var routeTable = []Route{
	{Name: "Welcome", Path: "/", View: "Welcome"},
	{Name: "RoleSelect", Path: "/role-select", View: "RoleSelect"},
	{Name: "Register", Path: "/register", View: "Register"},
	{Name: "Login", Path: "/login", View: "Login"},
	{Name: RouteAdminLogin, Path: "/admin/login", View: "admin/AdminLogin"},
	{Name: RouteAdminRegister, Path: "/admin/register", View: "admin/AdminRegister"},

	{Name: "MainDefault", Path: "/main", Layout: layoutMain, Redirect: "/main/bookshelf", Meta: authMeta},
	mainChild("Bookshelf", "bookshelf", "Bookshelf"),
	mainChild("Rankings", "rankings", "Rankings"),
	mainChild("Recommendations", "recommendations", "Recommendations"),
	mainChild("Search", "search", "Search"),
	mainChild("Categories", "categories", "Categories"),
	mainChild("Profile", "profile", "Profile"),
	mainChild("AuthorMode", "author-mode", "AuthorMode"),
	mainChild("Settings", "settings", "Settings"),
	mainChild("Messages", "messages", "Messages"),
	mainChild("WorkEdit", "work-edit/{workId}", "WorkEdit"),
	mainChild("ChapterManage", "chapter-manage/{workId}", "ChapterManage"),
	mainChild("CommentManage", "comment-manage/{workId}", "CommentManage"),
	mainChild("Reading", "reading/{workId}/{chapterId?}", "Reading"),
	mainChild("WorkDetail", "work-detail/{workId}", "WorkDetail"),

	{Name: "AdminDefault", Path: "/admin", Layout: layoutAdmin, Redirect: "/admin/users", Meta: adminMeta},
	adminChild("AdminUsers", "users", "admin/AdminUserList"),
	adminChild("AdminWorks", "works", "admin/AdminWorkList"),
	adminChild("AdminComments", "comments", "admin/AdminCommentList"),
	adminChild("AdminLogs", "logs", "admin/AdminActionLogs"),

	{Name: "ReadingLegacy", Path: "/reading/{workId}/{chapterId?}", Redirect: "/main/reading/{workId}/{chapterId?}"},
	{Name: "WorkDetailLegacy", Path: "/work-detail/{workId}", Redirect: "/main/work-detail/{workId}"},
	{Name: "BookshelfLegacy", Path: "/bookshelf", Redirect: "/main/bookshelf"},
	{Name: RouteNotFound, Path: "/*", Redirect: "/"},
}

// Routes returns a copy of the route table of the shell
func Routes() []Route {
	return slices.Clone(routeTable)
}
