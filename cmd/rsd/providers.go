package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func providersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "providers STATE",
		Short: "List the (provider, qualifier) keys a state file contains",
		Args:  cobra.ExactArgs(1),
		RunE: Adapt(func(ctx context.Context, args []string) error {
			sys, err := readSystem(args[0])
			if err != nil {
				return err
			}
			for _, c := range sys.Components() {
				fmt.Println(c.Key.String())
			}
			return nil
		}),
	}
}
