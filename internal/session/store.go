// Package session holds the process-wide authentication state of the shell.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/novelplatform/novelshell/internal/models"
	"github.com/novelplatform/novelshell/internal/storage"
	"go.uber.org/zap"
)

// Durable storage keys
const (
	TokenKey = "token"
	UserKey  = "user"
)

const persistTimeout = 5 * time.Second

// Store is the session state: token, user identity, unread message count and sidebar flag.
// The methods below are the only writers; every read returns a copy.
type Store struct {
	mu               sync.RWMutex
	token            string
	user             models.User
	unreadCount      int
	sidebarCollapsed bool

	storage     storage.Storage
	dropExpired bool
	logger      *zap.Logger
}

// Snapshot is a point-in-time copy of the session state and its derived values.
type Snapshot struct {
	IsLoggedIn       bool        `json:"is_logged_in"`
	IsAdmin          bool        `json:"is_admin"`
	UserRole         models.Role `json:"user_role"`
	User             models.User `json:"user"`
	UnreadCount      int         `json:"unread_count"`
	SidebarCollapsed bool        `json:"sidebar_collapsed"`
	ExpiresAt        *time.Time  `json:"expires_at,omitempty"`
}

// NewStore creates an empty session mirrored to store.
// When dropExpired is set, Load discards a persisted token whose expiry has passed.
func NewStore(store storage.Storage, dropExpired bool, logger *zap.Logger) *Store {
	return &Store{
		user:        models.User{},
		storage:     store,
		dropExpired: dropExpired,
		logger:      logger,
	}
}

// Load seeds the session from durable storage.
// A missing token means logged out; a missing or corrupt user becomes an empty identity.
func (s *Store) Load(ctx context.Context) {
	token, _, err := s.storage.GetItem(ctx, TokenKey)
	if err != nil {
		s.logger.Error("failed to read persisted token", zap.Error(err))
		token = ""
	}
	rawUser, _, err := s.storage.GetItem(ctx, UserKey)
	if err != nil {
		s.logger.Error("failed to read persisted user", zap.Error(err))
		rawUser = ""
	}

	if token != "" && s.dropExpired {
		if claims, err := ParseTokenClaims(token); err == nil && claims.Expired(time.Now()) {
			s.logger.Info("discarding expired persisted token", zap.Time("expired_at", claims.ExpiresAt))
			s.mu.Lock()
			s.clearLocked()
			s.mu.Unlock()
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" {
		if rawUser != "" {
			s.remove(UserKey)
		}
		s.logger.Debug("session loaded", zap.Bool("logged_in", false))
		return
	}
	s.token = token
	s.user = models.ParseUser(rawUser)
	s.logger.Debug("session loaded", zap.Bool("logged_in", token != ""))
}

// SetToken replaces the token and persists it. An empty token clears the whole session.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" {
		s.clearLocked()
		return
	}
	s.token = token
	s.persist(TokenKey, token)
}

// SetAuth installs a new session: token and identity change together, so no reader sees
// the new token with the previous identity. The identity starts from partial alone and the
// unread count is reset. An empty token clears the session.
func (s *Store) SetAuth(token string, partial map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" {
		s.clearLocked()
		return
	}
	s.token = token
	s.user = models.User{}.Merge(partial)
	s.unreadCount = 0
	s.persist(TokenKey, token)
	s.persistUser()
}

// SetUser merges partial into the current identity and persists the result.
func (s *Store) SetUser(partial map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = s.user.Merge(partial)
	s.persistUser()
}

// ClearAuth resets token, user and unread count and removes both persisted keys.
func (s *Store) ClearAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// ExpireToken clears the session only if token is non-empty and still the current one.
// It reports whether this call performed the clear.
func (s *Store) ExpireToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" || token != s.token {
		return false
	}
	s.clearLocked()
	return true
}

// ToggleSidebar flips the sidebar flag and returns the new value.
func (s *Store) ToggleSidebar() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebarCollapsed = !s.sidebarCollapsed
	return s.sidebarCollapsed
}

// SetUnreadCount stores floor(count) when count is finite and positive, otherwise 0.
func (s *Store) SetUnreadCount(count float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unreadCount = models.ClampCount(count)
	return s.unreadCount
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the identity mapping
func (s *Store) User() models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

func (s *Store) UserRole() models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Role()
}

func (s *Store) IsLoggedIn() bool {
	return s.Token() != ""
}

func (s *Store) IsAdmin() bool {
	return s.UserRole().IsAdmin()
}

func (s *Store) SidebarCollapsed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sidebarCollapsed
}

func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unreadCount
}

// Snapshot returns a consistent copy of the whole session.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		IsLoggedIn:       s.token != "",
		IsAdmin:          s.user.Role().IsAdmin(),
		UserRole:         s.user.Role(),
		User:             s.user.Clone(),
		UnreadCount:      s.unreadCount,
		SidebarCollapsed: s.sidebarCollapsed,
	}
	if s.token != "" {
		if claims, err := ParseTokenClaims(s.token); err == nil {
			expiresAt := claims.ExpiresAt
			snap.ExpiresAt = &expiresAt
		}
	}
	return snap
}

// clearLocked must be called with mu held for writing
func (s *Store) clearLocked() {
	s.token = ""
	s.user = models.User{}
	s.unreadCount = 0
	s.remove(TokenKey)
	s.remove(UserKey)
}

func (s *Store) persistUser() {
	data, err := json.Marshal(s.user)
	if err != nil {
		s.logger.Error("failed to encode user", zap.Error(err))
		return
	}
	s.persist(UserKey, string(data))
}

// persist writes through to durable storage. Failures are logged and leave memory as is.
func (s *Store) persist(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.storage.SetItem(ctx, key, value); err != nil {
		s.logger.Error("failed to persist session item", zap.String("key", key), zap.Error(err))
	}
}

func (s *Store) remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.storage.RemoveItem(ctx, key); err != nil {
		s.logger.Error("failed to remove session item", zap.String("key", key), zap.Error(err))
	}
}
