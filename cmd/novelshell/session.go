package main

import (
	"context"
	"errors"

	"github.com/novelplatform/novelshell/internal/models"
	"github.com/spf13/cobra"
)

func newLoginCmd(opts *rootOptions, admin bool) *cobra.Command {
	var credentials models.Credentials

	use, short := "login", "Log in as reader, author or editor"
	if admin {
		use, short = "admin-login", "Log in as administrator"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				login := a.sessions.Login
				if admin {
					login = a.sessions.AdminLogin
				}
				return printResult(cmd, login(ctx, credentials))
			})
		},
	}
	cmd.Flags().StringVarP(&credentials.Username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&credentials.Password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var (
		req  models.RegisterRequest
		role int
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account without logging in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Role = models.Role(role)
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				return printResult(cmd, a.sessions.Register(ctx, req))
			})
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&req.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "contact phone")
	cmd.Flags().IntVar(&role, "role", 0, "requested role (1 reader, 2 author, 3 editor); the server decides")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				a.sessions.Logout()
				return printResult(cmd, models.Succeeded())
			})
		},
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				return printJSON(cmd, a.session.Snapshot())
			})
		},
	}
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Refresh the user profile from the platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				return printResult(cmd, a.sessions.RefreshUserProfile(ctx))
			})
		},
	}
}

func newUnreadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unread",
		Short: "Refresh the unread message count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				return printResult(cmd, a.sessions.RefreshUnreadCount(ctx))
			})
		},
	}
}

// errActionFailed makes a failed action exit non-zero after its result is printed
var errActionFailed = errors.New("action failed")

func printResult(cmd *cobra.Command, result models.Result) error {
	if err := printJSON(cmd, result); err != nil {
		return err
	}
	if !result.Success {
		return errActionFailed
	}
	return nil
}
