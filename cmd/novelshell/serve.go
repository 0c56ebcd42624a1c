package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/novelplatform/novelshell/docs" // swagger docs
	"github.com/novelplatform/novelshell/internal/handlers"
	"github.com/novelplatform/novelshell/internal/middleware"
	"github.com/novelplatform/novelshell/internal/navigation"
	"github.com/novelplatform/novelshell/internal/services"
	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local shell server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				if port != 0 {
					a.cfg.Server.Port = port
				}
				if host != "" {
					a.cfg.Server.Host = host
				}
				return serve(ctx, a)
			})
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port; overrides SERVER_PORT")
	cmd.Flags().StringVar(&host, "host", "", "listen address; overrides SERVER_HOST")
	return cmd
}

// newRouter builds the shell server router
func newRouter(a *app) (http.Handler, error) {
	proxyHandler, err := handlers.NewProxyHandler(a.client.BaseURL(), a.client.Transport(), a.cfg.API.Timeout, a.logger)
	if err != nil {
		return nil, err
	}
	shellHandler := handlers.NewShellHandler(a.sessions, a.session, a.navigator, a.resolver.Routes(), a.logger)

	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(a.logger, a.session))
	r.Use(middleware.RecoveryMiddleware(a.logger))
	r.Use(middleware.OriginGuardMiddleware(a.cfg.CORS.AllowedOrigins, a.cfg.Server.AllowedHosts, a.logger))
	r.Use(middleware.CORSMiddleware(a.cfg.CORS.AllowedOrigins))
	if a.cfg.Server.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(a.cfg.Server.RateLimitPerMinute, time.Minute))
	}
	r.Use(middleware.RequestSizeLimitMiddleware(a.cfg.Server.MaxRequestSize))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	shellHandler.RegisterRoutes(r)
	proxyHandler.RegisterRoutes(r)

	return r, nil
}

// serve runs the shell server until ctx is cancelled, then shuts it down gracefully
func serve(ctx context.Context, a *app) error {
	log := a.logger

	if _, err := a.navigator.Reload(navigation.PathWelcome); err != nil {
		return fmt.Errorf("failed to resolve initial location: %w", err)
	}

	router, err := newRouter(a)
	if err != nil {
		return err
	}
	if slices.Contains(a.cfg.CORS.AllowedOrigins, "*") {
		log.Warn("CORS_ALLOWED_ORIGINS is \"*\": any web page can act with the stored session")
	}

	poller := services.NewUnreadPoller(a.sessions, a.session, a.cfg.Session.UnreadPollInterval, log)
	poller.Start()
	defer poller.Stop()

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting shell server",
			zap.String("addr", srv.Addr),
			zap.String("api", a.client.BaseURL()),
			zap.String("storage_driver", a.cfg.Storage.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down shell server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Shell server exited")
	return nil
}
