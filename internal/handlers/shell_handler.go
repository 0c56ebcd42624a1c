package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/novelplatform/novelshell/internal/models"
	"github.com/novelplatform/novelshell/internal/navigation"
	"github.com/novelplatform/novelshell/internal/session"
	"go.uber.org/zap"
)

// SessionService is the interface that wraps the session actions of the shell.
type SessionService interface {
	// Method Login authenticates with the user login endpoint and stores the session.
	//
	// The outcome is always reported through the returned Result; it never fails otherwise.
	Login(ctx context.Context, credentials models.Credentials) models.Result
	// Method AdminLogin authenticates with the administrator login endpoint.
	//
	// Please reference Login method for more information about the result.
	AdminLogin(ctx context.Context, credentials models.Credentials) models.Result
	// Method Register creates an account without changing the session.
	//
	// "userData" is sent to the registration endpoint unchanged.
	// Please reference Login method for more information about the result.
	Register(ctx context.Context, userData any) models.Result
	// Method Logout clears the session without contacting the API.
	Logout()
	// Method RefreshUserProfile merges the server profile into the session identity.
	//
	// Please reference Login method for more information about the result.
	RefreshUserProfile(ctx context.Context) models.Result
	// Method RefreshUnreadCount fetches and stores the unread message count.
	//
	// Please reference Login method for more information about the result.
	RefreshUnreadCount(ctx context.Context) models.Result
	// Method ToggleSidebar flips the sidebar flag and returns the new value.
	ToggleSidebar() bool
}

// SessionSnapshotter provides a consistent copy of the session state
type SessionSnapshotter interface {
	Snapshot() session.Snapshot
}

// Navigator is the interface that wraps navigation of the shell.
type Navigator interface {
	// Method Push navigates to "path" keeping the current location in history.
	//
	// The path is resolved through route redirects and the navigation guard; the final location is returned.
	// If the path cannot be resolved, the error will be returned together with an empty Location.
	Push(path string) (navigation.Location, error)
	// Method Replace navigates to "path" replacing the current location.
	//
	// Please reference Push method for more information about error values.
	Replace(path string) (navigation.Location, error)
	// Method Back returns to the previous location.
	//
	// navigation.ErrNoHistory is returned when there is no previous location.
	Back() (navigation.Location, error)
	// Method Reload performs a hard navigation to "path", dropping history.
	//
	// Please reference Push method for more information about error values.
	Reload(path string) (navigation.Location, error)
	// Method Current returns the current location.
	Current() navigation.Location
}

// NavigateRequest is the body of POST /shell/navigate
type NavigateRequest struct {
	Path    string `json:"path"`
	Replace bool   `json:"replace"`
}

// ReloadRequest is the body of POST /shell/reload
type ReloadRequest struct {
	Path string `json:"path"`
}

// SidebarResponse is the body returned by POST /shell/sidebar/toggle
type SidebarResponse struct {
	SidebarCollapsed bool `json:"sidebar_collapsed"`
}

// ShellHandler handles HTTP requests for the session and navigation of the shell
type ShellHandler struct {
	BaseHandler
	service   SessionService
	session   SessionSnapshotter
	navigator Navigator
	routes    []navigation.Route
}

// NewShellHandler creates a new shell handler
func NewShellHandler(svc SessionService, session SessionSnapshotter, navigator Navigator, routes []navigation.Route, logger *zap.Logger) *ShellHandler {
	return &ShellHandler{
		BaseHandler: BaseHandler{logger: logger},
		service:     svc,
		session:     session,
		navigator:   navigator,
		routes:      routes,
	}
}

// RegisterRoutes registers all shell handler routes
func (h *ShellHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Route("/shell", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/login", h.Login)
			r.Post("/admin-login", h.AdminLogin)
			r.Post("/register", h.Register)
			r.Post("/logout", h.Logout)
			r.Post("/profile/refresh", h.RefreshProfile)
			r.Post("/unread/refresh", h.RefreshUnread)
		})
		r.Post("/sidebar/toggle", h.ToggleSidebar)
		r.Get("/routes", h.GetRoutes)
		r.Get("/location", h.GetLocation)
		r.Post("/navigate", h.Navigate)
		r.Post("/back", h.Back)
		r.Post("/reload", h.Reload)
	})
}

// Health handles GET /healthz
// @Summary Health check
// @Tags shell
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *ShellHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSession handles GET /shell/session
// @Summary Get session state
// @Description Returns the session state with the derived login and admin flags. The token itself is never returned.
// @Tags session
// @Produce json
// @Success 200 {object} session.Snapshot
// @Router /shell/session [get]
func (h *ShellHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// Login handles POST /shell/session/login
// @Summary Log in
// @Description Authenticates with the platform and stores the token and identity. Failures are reported in the result body.
// @Tags session
// @Accept json
// @Produce json
// @Param request body models.Credentials true "Credentials"
// @Success 200 {object} models.Result
// @Failure 400 {object} ErrorResponse
// @Router /shell/session/login [post]
func (h *ShellHandler) Login(w http.ResponseWriter, r *http.Request) {
	var credentials models.Credentials
	if err := h.decodeJSON(r, &credentials); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, h.service.Login(r.Context(), credentials))
}

// AdminLogin handles POST /shell/session/admin-login
// @Summary Log in as administrator
// @Tags session
// @Accept json
// @Produce json
// @Param request body models.Credentials true "Credentials"
// @Success 200 {object} models.Result
// @Failure 400 {object} ErrorResponse
// @Router /shell/session/admin-login [post]
func (h *ShellHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var credentials models.Credentials
	if err := h.decodeJSON(r, &credentials); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, h.service.AdminLogin(r.Context(), credentials))
}

// Register handles POST /shell/session/register
// @Summary Register an account
// @Description The body is forwarded to the platform registration endpoint unchanged.
// @Tags session
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration form"
// @Success 200 {object} models.Result
// @Failure 400 {object} ErrorResponse
// @Router /shell/session/register [post]
func (h *ShellHandler) Register(w http.ResponseWriter, r *http.Request) {
	userData := map[string]any{}
	if err := h.decodeJSON(r, &userData); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, h.service.Register(r.Context(), userData))
}

// Logout handles POST /shell/session/logout
// @Summary Log out
// @Tags session
// @Produce json
// @Success 200 {object} models.Result
// @Router /shell/session/logout [post]
func (h *ShellHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout()
	h.respondJSON(w, http.StatusOK, models.Succeeded())
}

// RefreshProfile handles POST /shell/session/profile/refresh
// @Summary Refresh user profile
// @Tags session
// @Produce json
// @Success 200 {object} models.Result
// @Router /shell/session/profile/refresh [post]
func (h *ShellHandler) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.RefreshUserProfile(r.Context()))
}

// RefreshUnread handles POST /shell/session/unread/refresh
// @Summary Refresh unread message count
// @Tags session
// @Produce json
// @Success 200 {object} models.Result
// @Router /shell/session/unread/refresh [post]
func (h *ShellHandler) RefreshUnread(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.RefreshUnreadCount(r.Context()))
}

// ToggleSidebar handles POST /shell/sidebar/toggle
// @Summary Toggle sidebar
// @Tags session
// @Produce json
// @Success 200 {object} SidebarResponse
// @Router /shell/sidebar/toggle [post]
func (h *ShellHandler) ToggleSidebar(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, SidebarResponse{SidebarCollapsed: h.service.ToggleSidebar()})
}

// GetRoutes handles GET /shell/routes
// @Summary List routes
// @Description Returns the route table with access requirements.
// @Tags navigation
// @Produce json
// @Success 200 {array} navigation.Route
// @Router /shell/routes [get]
func (h *ShellHandler) GetRoutes(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.routes)
}

// GetLocation handles GET /shell/location
// @Summary Get current location
// @Tags navigation
// @Produce json
// @Success 200 {object} navigation.Location
// @Router /shell/location [get]
func (h *ShellHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.navigator.Current())
}

// Navigate handles POST /shell/navigate
// @Summary Navigate
// @Description Resolves the path through redirects and the navigation guard and moves to the final location.
// @Tags navigation
// @Accept json
// @Produce json
// @Param request body NavigateRequest true "Target path"
// @Success 200 {object} navigation.Location
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 508 {object} ErrorResponse
// @Router /shell/navigate [post]
func (h *ShellHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	navigate := h.navigator.Push
	if req.Replace {
		navigate = h.navigator.Replace
	}
	location, err := navigate(req.Path)
	if err != nil {
		h.respondNavigationError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, location)
}

// Back handles POST /shell/back
// @Summary Go back
// @Tags navigation
// @Produce json
// @Success 200 {object} navigation.Location
// @Failure 409 {object} ErrorResponse
// @Router /shell/back [post]
func (h *ShellHandler) Back(w http.ResponseWriter, r *http.Request) {
	location, err := h.navigator.Back()
	if err != nil {
		h.respondNavigationError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, location)
}

// Reload handles POST /shell/reload
// @Summary Hard navigation
// @Description Drops history and starts a new view generation at the path (default "/").
// @Tags navigation
// @Accept json
// @Produce json
// @Param request body ReloadRequest false "Target path"
// @Success 200 {object} navigation.Location
// @Failure 400 {object} ErrorResponse
// @Router /shell/reload [post]
func (h *ShellHandler) Reload(w http.ResponseWriter, r *http.Request) {
	var req ReloadRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Path == "" {
		req.Path = navigation.PathWelcome
	}

	location, err := h.navigator.Reload(req.Path)
	if err != nil {
		h.respondNavigationError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, location)
}

func (h *ShellHandler) respondNavigationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, navigation.ErrNoHistory):
		h.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, navigation.ErrNoRoute):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, navigation.ErrTooManyRedirects):
		h.respondError(w, http.StatusLoopDetected, err.Error())
	default:
		h.logger.Warn("navigation failed", zap.Error(err))
		h.respondError(w, http.StatusBadRequest, err.Error())
	}
}
