package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newNavigateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "navigate <path>",
		Short: "Resolve a path against the route table and the stored session",
		Long: `Resolve a path the way the shell navigates to it: route redirects are followed and the
navigation guard may send the session elsewhere. The final location is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				location, err := a.navigator.Push(args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, location)
			})
		},
	}
}

func newRoutesCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				routes := a.resolver.Routes()
				if asJSON {
					return printJSON(cmd, routes)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tPATH\tTARGET\tACCESS")
				for _, route := range routes {
					target := route.View
					if route.Redirect != "" {
						target = "-> " + route.Redirect
					}
					access := "public"
					switch {
					case route.Meta.RequiresAdmin:
						access = "admin"
					case route.Meta.RequiresAuthor:
						access = "author"
					case route.Meta.RequiresAuth:
						access = "auth"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", route.Name, route.Path, target, access)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the table as JSON")
	return cmd
}
