package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/value-engine/generic"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the registered constraint types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range generic.ListConstraintTypes() {
				c, err := generic.BuildConstraint(t, nil, generic.Environment{})
				if err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), t)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t, c.Category())
			}
			return nil
		},
	}
}
