package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ready-set-deploy/rsd/internal/system"
)

func validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate STATE",
		Short: "Check a state file's schema and dependency invariants (exit 0 on success)",
		Args:  cobra.ExactArgs(1),
		RunE: Adapt(func(ctx context.Context, args []string) error {
			sys, err := readSystem(args[0])
			if err != nil {
				return err
			}
			return system.Validate(sys)
		}),
	}
}
