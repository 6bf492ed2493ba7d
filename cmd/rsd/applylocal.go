package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ready-set-deploy/rsd/internal/provider"
	"github.com/ready-set-deploy/rsd/internal/system"
)

// applyLocalCommand is gather-all -> diff -> commands in one step, against
// the host this process runs on, as spec.md section 6's CLI table describes.
func applyLocalCommand(reg *provider.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "apply-local ROLE",
		Short: "Equivalent to gather-all | diff ROLE | commands, against the local host",
		Args:  cobra.ExactArgs(1),
		RunE: Adapt(func(ctx context.Context, args []string) error {
			role, err := readSystem(args[0])
			if err != nil {
				return err
			}
			host, err := provider.GatherAll(ctx, reg)
			if err != nil {
				return err
			}
			diff, err := system.Diff(host, role)
			if err != nil {
				return err
			}
			cmds, err := renderCommands(ctx, reg, diff)
			if err != nil {
				return err
			}
			for _, c := range cmds {
				fmt.Println(c)
			}
			return nil
		}),
	}
}
