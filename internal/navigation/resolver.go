package navigation

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// MaxRedirects bounds the redirects followed by one resolution
const MaxRedirects = 10

var (
	// ErrTooManyRedirects is returned when a resolution exceeds MaxRedirects
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrNoRoute is returned when no route matches a path
	ErrNoRoute = errors.New("no route matches path")
)

// Resolution is the outcome of resolving a path
type Resolution struct {
	Route     Route             `json:"route"`
	Path      string            `json:"path"`
	FullPath  string            `json:"full_path"`
	Params    map[string]string `json:"params,omitempty"`
	Query     url.Values        `json:"query,omitempty"`
	Redirects []string          `json:"redirects,omitempty"`
}

// Resolver matches paths against a route table with a chi routing tree
type Resolver struct {
	mux      *chi.Mux
	routes   []Route
	patterns map[string]int
}

// NewResolver builds a resolver for routes.
// Route names and expanded path patterns must be unique.
func NewResolver(routes []Route) (*Resolver, error) {
	r := &Resolver{
		mux:      chi.NewMux(),
		routes:   make([]Route, len(routes)),
		patterns: make(map[string]int),
	}
	copy(r.routes, routes)

	names := make(map[string]struct{}, len(routes))
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	for i, route := range r.routes {
		if route.Name == "" {
			return nil, fmt.Errorf("route %q has no name", route.Path)
		}
		if _, ok := names[route.Name]; ok {
			return nil, fmt.Errorf("duplicate route name %q", route.Name)
		}
		names[route.Name] = struct{}{}

		for _, pattern := range expandPattern(route.Path) {
			if _, ok := r.patterns[pattern]; ok {
				return nil, fmt.Errorf("duplicate route pattern %q", pattern)
			}
			r.patterns[pattern] = i
			r.mux.Get(pattern, noop)
		}
	}
	return r, nil
}

// NewDefaultResolver builds a resolver for the route table of the shell
func NewDefaultResolver() *Resolver {
	r, err := NewResolver(routeTable)
	if err != nil {
		panic(fmt.Sprintf("invalid route table: %v", err))
	}
	return r
}

// Routes returns a copy of the resolver's route table
func (r *Resolver) Routes() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Match finds the route for a normalized, escaped path without following redirects.
// Captured parameters are returned unescaped.
func (r *Resolver) Match(path string) (Route, map[string]string, bool) {
	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, path) || len(rctx.RoutePatterns) == 0 {
		return Route{}, nil, false
	}
	idx, ok := r.patterns[rctx.RoutePatterns[len(rctx.RoutePatterns)-1]]
	if !ok {
		return Route{}, nil, false
	}

	var params map[string]string
	for i, key := range rctx.URLParams.Keys {
		if params == nil {
			params = make(map[string]string, len(rctx.URLParams.Keys))
		}
		value := rctx.URLParams.Values[i]
		if unescaped, err := url.PathUnescape(value); err == nil {
			value = unescaped
		}
		params[key] = value
	}
	return r.routes[idx], params, true
}

// Resolve follows route redirects and guard decisions from rawPath to the location principal ends up at.
func (r *Resolver) Resolve(rawPath string, principal Principal) (*Resolution, error) {
	path, query, err := splitPath(rawPath)
	if err != nil {
		return nil, err
	}

	var redirects []string
	for hops := 0; ; hops++ {
		if hops > MaxRedirects {
			return nil, fmt.Errorf("%w: %s", ErrTooManyRedirects, strings.Join(redirects, " -> "))
		}

		route, params, ok := r.Match(path)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoRoute, path)
		}

		// Route redirects keep the query, guard redirects drop it
		if route.Redirect != "" {
			redirects = append(redirects, path)
			path = normalizePath(expandRedirect(route.Redirect, params))
			continue
		}
		if target := Guard(route, principal); target != "" {
			redirects = append(redirects, path)
			path, query, err = splitPath(target)
			if err != nil {
				return nil, err
			}
			continue
		}

		return &Resolution{
			Route:     route,
			Path:      path,
			FullPath:  fullPath(path, query),
			Params:    params,
			Query:     query,
			Redirects: redirects,
		}, nil
	}
}

// expandPattern turns a route path into the chi patterns that match it.
// A trailing optional parameter produces one pattern with and one without it.
func expandPattern(path string) []string {
	i := strings.LastIndex(path, "/{")
	if i < 0 || !strings.HasSuffix(path, "?}") {
		return []string{path}
	}
	param := path[i+2 : len(path)-2]
	without := path[:i]
	if without == "" {
		without = "/"
	}
	return []string{without, path[:i] + "/{" + param + "}"}
}

// expandRedirect fills the parameters of a redirect template.
// Empty optional parameters are dropped together with their segment.
func expandRedirect(template string, params map[string]string) string {
	segments := strings.Split(template, "/")
	out := segments[:0]
	for _, segment := range segments {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			name := strings.TrimSuffix(segment[1:len(segment)-1], "?")
			value := params[name]
			if value == "" && strings.HasSuffix(segment, "?}") {
				continue
			}
			segment = url.PathEscape(value)
		}
		out = append(out, segment)
	}
	joined := strings.Join(out, "/")
	if joined == "" {
		return "/"
	}
	return joined
}

func splitPath(rawPath string) (string, url.Values, error) {
	if rawPath == "" {
		rawPath = "/"
	}
	u, err := url.Parse(rawPath)
	if err != nil {
		return "", nil, fmt.Errorf("invalid path %q: %w", rawPath, err)
	}
	var query url.Values
	if u.RawQuery != "" {
		query = u.Query()
	}
	// %2F inside a segment stays part of that segment
	return normalizePath(u.EscapedPath()), query, nil
}

// normalizePath makes path absolute and drops the trailing slash
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

func fullPath(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
