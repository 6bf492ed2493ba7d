package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ready-set-deploy/rsd/internal/system"
)

func diffCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "diff HOST ROLE",
		Short: "Compute the DIFF system turning HOST into ROLE (both must be FULL)",
		Args:  cobra.ExactArgs(2),
		RunE: Adapt(func(ctx context.Context, args []string) error {
			host, err := readSystem(args[0])
			if err != nil {
				return err
			}
			role, err := readSystem(args[1])
			if err != nil {
				return err
			}
			d, err := system.Diff(host, role)
			if err != nil {
				return err
			}
			return writeSystem(out, d)
		}),
	}
	cmd.Flags().StringVarP(&out, "output", "o", "-", "output file (- for stdout)")
	return cmd
}
