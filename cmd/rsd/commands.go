package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ready-set-deploy/rsd/internal/provider"
	"github.com/ready-set-deploy/rsd/internal/system"
)

// renderCommands computes the render order for diff (spec.md section 4.3)
// and dispatches each key's component to its provider's Render, in that
// order, flattening the per-component command lists into one ordered stream.
func renderCommands(ctx context.Context, reg *provider.Registry, diff system.System) ([]string, error) {
	order, err := system.RenderOrder(diff)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, key := range order {
		c, ok := diff.Get(key)
		if !ok {
			continue
		}
		cmds, err := provider.Render(ctx, reg, c)
		if err != nil {
			return nil, err
		}
		out = append(out, cmds...)
	}
	return out, nil
}

func commandsCommand(reg *provider.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "commands DIFF",
		Short: "Turn a diff system into an ordered shell command stream",
		Args:  cobra.ExactArgs(1),
		RunE: Adapt(func(ctx context.Context, args []string) error {
			diff, err := readSystem(args[0])
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
