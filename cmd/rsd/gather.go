package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ready-set-deploy/rsd/internal/provider"
)

// parseProviderArg splits a "PROVIDER" or "PROVIDER.QUALIFIER.SEGMENTS" CLI
// argument into a provider id and qualifier segments, per SPEC_FULL.md's
// qualifier-encoding decision: CLI-facing surfaces join/split qualifier
// segments on ".".
func parseProviderArg(arg string) (id string, qualifier []string) {
	parts := strings.Split(arg, ".")
	return parts[0], parts[1:]
}

func gatherCommand(reg *provider.Registry) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "gather PROVIDER[.QUALIFIER]",
		Short: "Run one provider's gather and print the resulting FULL partial system",
		Args:  cobra.ExactArgs(1),
		RunE: Adapt(func(ctx context.Context, args []string) error {
			id, qualifier := parseProviderArg(args[0])
			sys, err := provider.Gather(ctx, reg, id, qualifier)
			if err != nil {
				return err
			}
			return writeSystem(out, sys)
		}),
	}
	cmd.Flags().StringVarP(&out, "output", "o", "-", "output file (- for stdout)")
	return cmd
}
