package main

import (
	"context"
	"fmt"

	"github.com/novelplatform/novelshell/internal/api"
	"github.com/novelplatform/novelshell/internal/config"
	"github.com/novelplatform/novelshell/internal/handlers"
	"github.com/novelplatform/novelshell/internal/navigation"
	"github.com/novelplatform/novelshell/internal/services"
	"github.com/novelplatform/novelshell/internal/session"
	"github.com/novelplatform/novelshell/internal/storage"
	"go.uber.org/zap"
)

// app holds the wired components of the shell
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	storage   storage.Storage
	session   *session.Store
	client    *api.Client
	sessions  handlers.SessionService
	resolver  *navigation.Resolver
	navigator *navigation.Navigator
}

// newApp opens durable storage, restores the session and wires the API client,
// session actions and navigator together.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	store, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	sessionStore := session.NewStore(store, cfg.Session.DropExpiredToken, logger)
	sessionStore.Load(ctx)

	client := api.NewClient(cfg.API, sessionStore, logger)
	resolver := navigation.NewDefaultResolver()
	navigator := navigation.NewNavigator(resolver, sessionStore, logger)

	// An expired session sends the shell to the login page with a hard navigation.
	client.OnSessionExpired(func() {
		if _, err := navigator.Reload(navigation.PathLogin); err != nil {
			logger.Error("failed to navigate to login after session expiry", zap.Error(err))
		}
	})

	return &app{
		cfg:       cfg,
		logger:    logger,
		storage:   store,
		session:   sessionStore,
		client:    client,
		sessions:  services.NewSessionService(client, sessionStore, logger),
		resolver:  resolver,
		navigator: navigator,
	}, nil
}

// Close releases durable storage
func (a *app) Close() {
	if err := a.storage.Close(); err != nil {
		a.logger.Warn("failed to close storage", zap.Error(err))
	}
}
