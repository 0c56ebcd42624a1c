package services

import (
	"context"
	"net/url"

	"github.com/novelplatform/novelshell/internal/api"
	"github.com/novelplatform/novelshell/internal/models"
	"go.uber.org/zap"
)

// Failure messages reported by session actions
const (
	ErrMsgLoginFailed    = "login failed, please check your network connection"
	ErrMsgRegisterFailed = "registration failed, please check your network connection"
	ErrMsgNotLoggedIn    = "not logged in"
	ErrMsgProfileFailed  = "failed to fetch user profile"
	ErrMsgUnreadFailed   = "failed to fetch unread messages"
)

// AuthAPI is the interface that wraps the platform API endpoints used by session actions
type AuthAPI interface {
	// Method Login sends the credentials to the user login endpoint.
	//
	// A non-2xx status or a transport failure is returned as error; the response may still be non-nil for non-2xx statuses.
	Login(ctx context.Context, data any) (*api.Response, error)
	// Method AdminLogin sends the credentials to the administrator login endpoint.
	//
	// Please reference Login method for more information about error values.
	AdminLogin(ctx context.Context, data any) (*api.Response, error)
	// Method Register sends the registration form to the registration endpoint.
	//
	// Please reference Login method for more information about error values.
	Register(ctx context.Context, data any) (*api.Response, error)
	// Method GetUserProfile retrieves the profile of the logged-in user.
	//
	// Please reference Login method for more information about error values.
	GetUserProfile(ctx context.Context) (*api.Response, error)
	// Method GetMessages retrieves a page of messages; the body also carries unread_count.
	//
	// "params" is sent as the query string.
	// Please reference Login method for more information about error values.
	GetMessages(ctx context.Context, params url.Values) (*api.Response, error)
}

// SessionState is the interface that wraps the Session Store mutations used by session actions
type SessionState interface {
	// Method Token returns the current token, "" when logged out.
	Token() string
	// Method SetAuth installs token and identity "partial" together.
	//
	// Readers never observe the new token with the previous identity.
	SetAuth(token string, partial map[string]any)
	// Method SetUser merges "partial" into the user identity.
	SetUser(partial map[string]any)
	// Method ClearAuth resets token, user and unread count together.
	ClearAuth()
	// Method ToggleSidebar flips the sidebar flag and returns the new value.
	ToggleSidebar() bool
	// Method SetUnreadCount stores the clamped count and returns the stored value.
	SetUnreadCount(count float64) int
}

type sessionService struct {
	api     AuthAPI
	session SessionState
	logger  *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(authAPI AuthAPI, session SessionState, logger *zap.Logger) *sessionService {
	return &sessionService{
		api:     authAPI,
		session: session,
		logger:  logger,
	}
}

// Login authenticates a reader, author or editor.
//
// On success the token and identity are stored and the profile is refreshed; the refresh outcome does not affect the result.
func (s *sessionService) Login(ctx context.Context, credentials models.Credentials) models.Result {
	return s.login(ctx, s.api.Login, credentials)
}

// AdminLogin authenticates an administrator. The contract is the same as Login.
func (s *sessionService) AdminLogin(ctx context.Context, credentials models.Credentials) models.Result {
	return s.login(ctx, s.api.AdminLogin, credentials)
}

func (s *sessionService) login(ctx context.Context, send func(context.Context, any) (*api.Response, error), credentials models.Credentials) models.Result {
	resp, err := send(ctx, credentials)
	if err != nil {
		s.logger.Warn("login request failed", zap.String("username", credentials.Username), zap.Error(err))
		return models.Failed(ErrMsgLoginFailed)
	}

	var body models.LoginResponse
	if err := resp.Decode(&body); err != nil {
		s.logger.Warn("unexpected login response", zap.Error(err))
		return models.Failed(ErrMsgLoginFailed)
	}
	if !body.Success {
		return models.Failed(body.Error)
	}
	if body.Token == "" {
		s.logger.Warn("login response carries no token", zap.Any("user_id", body.UserID))
		return models.Failed(ErrMsgLoginFailed)
	}

	s.session.SetAuth(body.Token, body.Identity())

	if result := s.RefreshUserProfile(ctx); !result.Success {
		s.logger.Debug("profile refresh after login failed", zap.String("error", result.Error))
	}

	s.logger.Info("logged in", zap.Any("user_id", body.UserID), zap.Any("role", body.Role))
	return models.Succeeded()
}

// Register creates an account. It never changes the session.
func (s *sessionService) Register(ctx context.Context, userData any) models.Result {
	resp, err := s.api.Register(ctx, userData)
	if err != nil {
		s.logger.Warn("register request failed", zap.Error(err))
		return models.Failed(ErrMsgRegisterFailed)
	}

	var body models.RegisterResponse
	if err := resp.Decode(&body); err != nil {
		s.logger.Warn("unexpected register response", zap.Error(err))
		return models.Failed(ErrMsgRegisterFailed)
	}
	if !body.Success {
		return models.Failed(body.Error)
	}
	return models.Result{Success: true, Message: body.Message}
}

// Logout clears the session. No request is sent.
func (s *sessionService) Logout() {
	s.session.ClearAuth()
	s.logger.Info("logged out")
}

// ToggleSidebar flips the sidebar flag and returns the new value
func (s *sessionService) ToggleSidebar() bool {
	return s.session.ToggleSidebar()
}

// RefreshUserProfile merges the server profile into the session identity.
func (s *sessionService) RefreshUserProfile(ctx context.Context) models.Result {
	if s.session.Token() == "" {
		return models.Failed(ErrMsgNotLoggedIn)
	}

	resp, err := s.api.GetUserProfile(ctx)
	if err != nil {
		s.logger.Error("refresh user profile failed", zap.Error(err))
		return models.Failed(ErrMsgProfileFailed)
	}

	var body models.ProfileResponse
	if err := resp.Decode(&body); err != nil {
		s.logger.Error("refresh user profile failed", zap.Error(err))
		return models.Failed(ErrMsgProfileFailed)
	}
	if !body.Success || body.Profile == nil {
		return models.Failed(orDefault(body.Error, ErrMsgProfileFailed))
	}

	s.session.SetUser(body.Profile)
	return models.Result{Success: true, Profile: body.Profile}
}

// RefreshUnreadCount fetches the unread message count. Every failure resets the count to 0.
func (s *sessionService) RefreshUnreadCount(ctx context.Context) models.Result {
	if s.session.Token() == "" {
		s.session.SetUnreadCount(0)
		return models.Failed(ErrMsgNotLoggedIn)
	}

	resp, err := s.api.GetMessages(ctx, url.Values{"page": []string{"1"}, "page_size": []string{"1"}})
	if err != nil {
		s.logger.Error("fetch unread count failed", zap.Error(err))
		s.session.SetUnreadCount(0)
		return models.Failed(ErrMsgUnreadFailed)
	}

	var body models.MessagesResponse
	if err := resp.Decode(&body); err != nil {
		s.logger.Error("fetch unread count failed", zap.Error(err))
		s.session.SetUnreadCount(0)
		return models.Failed(ErrMsgUnreadFailed)
	}
	if !body.Success {
		s.session.SetUnreadCount(0)
		return models.Failed(orDefault(body.Error, ErrMsgUnreadFailed))
	}

	count := s.session.SetUnreadCount(models.ToNumber(body.UnreadCount))
	return models.Result{Success: true, Count: &count}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
