package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ready-set-deploy/rsd/internal/system"
)

func combineCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "combine S1 S2 ...",
		Short: "Left-to-right fold two or more state files through System Combine",
		Args:  cobra.MinimumNArgs(2),
		RunE: Adapt(func(ctx context.Context, args []string) error {
			acc, err := readSystem(args[0])
			if err != nil {
				return err
			}
			for _, path := range args[1:] {
				next, err := readSystem(path)
				if err != nil {
					return err
				}
				acc, err = system.Combine(acc, next)
				if err != nil {
					return err
				}
			}
			return writeSystem(out, acc)
		}),
	}
	cmd.Flags().StringVarP(&out, "output", "o", "-", "output file (- for stdout)")
	return cmd
}
