package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/novelplatform/novelshell/internal/config"
	"github.com/novelplatform/novelshell/internal/logger"
	"github.com/spf13/cobra"
)

// rootOptions holds the global flags
type rootOptions struct {
	logLevel string
	apiURL   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "novelshell",
		Short: "Client shell of the novel platform",
		Long: `novelshell keeps a session with the novel platform API and navigates its route table.

The session (token and user identity) is persisted to durable storage selected with
STORAGE_DRIVER, so one-shot commands share the session with a running server.

Examples:
  # Log in and show the session
  novelshell login --username reader --password secret
  novelshell status

  # Run the local shell server on SERVER_PORT
  novelshell serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "platform API base URL; overrides API_BASE_URL")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newLoginCmd(opts, false),
		newLoginCmd(opts, true),
		newRegisterCmd(opts),
		newLogoutCmd(opts),
		newStatusCmd(opts),
		newProfileCmd(opts),
		newUnreadCmd(opts),
		newNavigateCmd(opts),
		newRoutesCmd(opts),
	)
	return rootCmd
}

// loadConfig loads configuration and applies the global flag overrides
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.apiURL != "" {
		cfg.API.BaseURL = o.apiURL
	}
	return cfg, nil
}

// run wires the shell for one command and releases it when fn returns
func (o *rootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	a, err := newApp(cmd.Context(), cfg, logger.Logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(cmd.Context(), a)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
