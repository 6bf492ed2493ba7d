package main

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ready-set-deploy/rsd/internal/provider"
	"github.com/ready-set-deploy/rsd/internal/system"
)

func gatherAllCommand(reg *provider.Registry) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "gather-all",
		Short: "Gather every provider and combine them into one host FULL system",
		Args:  cobra.NoArgs,
		RunE: Adapt(func(ctx context.Context, args []string) error {
			sys, err := gatherAll(ctx, reg)
			if err != nil {
				return err
			}
			return writeSystem(out, sys)
		}),
	}
	cmd.Flags().StringVarP(&out, "output", "o", "-", "output file (- for stdout)")
	return cmd
}

// gatherAll reads a (provider, qualifier) list from stdin, one
// "provider" or "provider.qualifier" pair per line, and combines each pair's
// gather result -- falling back to the full static registry when stdin is a
// terminal (no list was piped in), per SPEC_FULL.md's section 6 supplement.
func gatherAll(ctx context.Context, reg *provider.Registry) (system.System, error) {
	if stdinIsTerminal() {
		return provider.GatherAll(ctx, reg)
	}

	out := system.New()
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, qualifier := parseProviderArg(line)
		sys, err := provider.Gather(ctx, reg, id, qualifier)
		if err != nil {
			return system.System{}, err
		}
		combined, err := system.Combine(out, sys)
		if err != nil {
			return system.System{}, err
		}
		out = combined
	}
	if err := scanner.Err(); err != nil {
		return system.System{}, err
	}
	return out, nil
}
