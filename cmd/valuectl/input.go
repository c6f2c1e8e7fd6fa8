package main

import (
	"github.com/spf13/cobra"
	"github.com/warp/value-engine/generic"
)

func newInputCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "input TEXT",
		Short: "Parse typed text and print what would be stored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.buildConstraint()
			if err != nil {
				return err
			}
			typed := c.CreateValue(generic.Null()).ParseInput(args[0])
			// Report the stored form as it will be redisplayed.
			return printValueJSON(cmd, c.CreateValue(typed.Serialize()))
		},
	}
}
