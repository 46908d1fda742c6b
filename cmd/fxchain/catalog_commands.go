package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// One-shot catalog commands for scripted use. They share the ops layer with
// the shell so output and semantics match.

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [roots...]",
		Short: "Discover plugin bundles and refresh stale catalog entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(ctx, func(a *app) error {
				return a.cmdScan(cmd.Context(), args)
			})
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all cataloged plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(ctx, func(a *app) error {
				return a.cmdList(cmd.Context())
			})
		},
	}
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <text>",
		Short: "Find plugins by name or path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(ctx, func(a *app) error {
				return a.cmdSearch(cmd.Context(), strings.Join(args, " "))
			})
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a plugin's usable parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(ctx, func(a *app) error {
				return a.cmdShow(cmd.Context(), args[0])
			})
		},
	}
}

// withApp wires the component graph for a single command invocation and
// tears it down afterwards.
func withApp(ctx *commandContext, fn func(*app) error) error {
	a, cleanup, err := newApp(ctx, os.Stdout)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(a)
}
