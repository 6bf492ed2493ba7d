// Command rsd wires the state algebra in internal/ into the eight-subcommand
// CLI spec.md section 6 describes, the way cmd/compose wires pkg/compose into
// the docker compose plugin: one cobra root, persistent flags, and one
// factory function per subcommand.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ready-set-deploy/rsd/internal/provider"
)

// Command is a CLI action, already detached from cobra's own Command/args
// plumbing -- the rsd equivalent of cmd/compose's Command type.
type Command func(ctx context.Context, args []string) error

// Adapt wires a Command into cobra's RunE, cancelling its context on
// SIGINT/SIGTERM the same way cmd/compose's AdaptCmd does.
func Adapt(fn Command) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sig)
		go func() {
			select {
			case <-sig:
				cancel()
			case <-ctx.Done():
			}
		}()

		return fn(ctx, args)
	}
}

// RootCommand builds the "rsd" cobra command tree over reg, the static
// provider registry this process was started with.
func RootCommand(reg *provider.Registry) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "rsd",
		Short:         "Ready-Set-Deploy: state algebra for host configuration",
		Long:          "Ready-Set-Deploy gathers, diffs, and renders host configuration state as an algebra of FULL/DIFF/ABSENT components, so that only the delta between observed and desired state is ever turned into commands.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		gatherCommand(reg),
		gatherAllCommand(reg),
		providersCommand(),
		combineCommand(),
		diffCommand(),
		commandsCommand(reg),
		validateCommand(),
		applyLocalCommand(reg),
	)
	return root
}
