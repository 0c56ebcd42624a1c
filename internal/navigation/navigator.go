package navigation

import (
	"errors"
	"sync"

	"github.com/novelplatform/novelshell/internal/models"
	"go.uber.org/zap"
)

// ErrNoHistory is returned by Back when there is no previous location
var ErrNoHistory = errors.New("no previous location")

// SessionReader is the interface that wraps the session state the guard reads
type SessionReader interface {
	// Method Token returns the current token, "" when logged out.
	Token() string
	// Method UserRole returns the role of the current user, RoleNone when unknown.
	UserRole() models.Role
}

// Location is where the navigator currently is
type Location struct {
	*Resolution
	// Generation grows on every hard navigation; views mounted in an older generation are stale.
	Generation int `json:"generation"`
}

// Navigator tracks the current location and its history.
// Every navigation resolves through the route table and the guard.
type Navigator struct {
	mu         sync.Mutex
	resolver   *Resolver
	session    SessionReader
	logger     *zap.Logger
	current    *Resolution
	history    []*Resolution
	generation int
}

// NewNavigator creates a navigator with no current location
func NewNavigator(resolver *Resolver, session SessionReader, logger *zap.Logger) *Navigator {
	return &Navigator{
		resolver: resolver,
		session:  session,
		logger:   logger,
	}
}

func (n *Navigator) principal() Principal {
	return Principal{
		HasToken: n.session.Token() != "",
		Role:     n.session.UserRole(),
	}
}

// Resolve resolves path for the current session without navigating
func (n *Navigator) Resolve(path string) (*Resolution, error) {
	return n.resolver.Resolve(path, n.principal())
}

// Push navigates to path, keeping the current location in history
func (n *Navigator) Push(path string) (Location, error) {
	res, err := n.Resolve(path)
	if err != nil {
		return Location{}, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current != nil {
		n.history = append(n.history, n.current)
	}
	n.current = res
	n.logNavigation("push", path, res)
	return n.locationLocked(), nil
}

// Replace navigates to path, replacing the current location
func (n *Navigator) Replace(path string) (Location, error) {
	res, err := n.Resolve(path)
	if err != nil {
		return Location{}, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = res
	n.logNavigation("replace", path, res)
	return n.locationLocked(), nil
}

// Back returns to the previous location. The guard runs again for the current session.
func (n *Navigator) Back() (Location, error) {
	n.mu.Lock()
	if len(n.history) == 0 {
		n.mu.Unlock()
		return Location{}, ErrNoHistory
	}
	previous := n.history[len(n.history)-1]
	n.mu.Unlock()

	res, err := n.Resolve(previous.FullPath)
	if err != nil {
		return Location{}, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	// another navigation may have changed history meanwhile
	if len(n.history) > 0 && n.history[len(n.history)-1] == previous {
		n.history = n.history[:len(n.history)-1]
	}
	n.current = res
	n.logNavigation("back", previous.FullPath, res)
	return n.locationLocked(), nil
}

// Reload performs a hard navigation to path: history is dropped and the view generation advances.
func (n *Navigator) Reload(path string) (Location, error) {
	res, err := n.Resolve(path)
	if err != nil {
		return Location{}, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.history = nil
	n.generation++
	n.current = res
	n.logNavigation("reload", path, res)
	return n.locationLocked(), nil
}

// Current returns the current location. Resolution is nil before the first navigation.
func (n *Navigator) Current() Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.locationLocked()
}

// HistoryLen returns the number of locations Back can return to
func (n *Navigator) HistoryLen() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.history)
}

func (n *Navigator) locationLocked() Location {
	return Location{Resolution: n.current, Generation: n.generation}
}

func (n *Navigator) logNavigation(kind, requested string, res *Resolution) {
	n.logger.Debug("navigation",
		zap.String("kind", kind),
		zap.String("requested", requested),
		zap.String("path", res.FullPath),
		zap.String("route", res.Route.Name),
		zap.Strings("redirects", res.Redirects),
	)
}
