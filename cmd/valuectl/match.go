package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/value-engine/generic"
)

func newMatchCmd(opts *options) *cobra.Command {
	var condition string
	var operands []string
	var needles []string
	var currentUserOperand bool

	cmd := &cobra.Command{
		Use:   "match VALUE",
		Short: "Evaluate a condition and/or full-text needles against a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if condition == "" && len(needles) == 0 {
				return fmt.Errorf("--condition or --fulltext is required")
			}
			cond := generic.ConditionType(condition)
			if condition != "" && !cond.IsKnown() {
				return fmt.Errorf("unknown condition %q", condition)
			}

			c, err := opts.buildConstraint()
			if err != nil {
				return err
			}
			v := c.CreateValue(parseRaw(args[0]))

			met := true
			if condition != "" {
				ops := make([]generic.Operand, 0, len(operands)+1)
				for _, o := range operands {
					ops = append(ops, generic.Literal(parseRaw(o)))
				}
				if currentUserOperand {
					ops = append(ops, generic.CurrentUserOperand())
				}
				met = v.MeetCondition(cond, ops)
			}
			if len(needles) > 0 {
				met = met && v.MeetFullTexts(needles)
			}
			fmt.Fprintln(cmd.OutOrStdout(), met)
			return nil
		},
	}

	cmd.Flags().StringVar(&condition, "condition", "", "Condition: eq, gt, between, hasSome, contains, empty, ...")
	cmd.Flags().StringArrayVar(&operands, "operand", nil, "Condition operand (repeatable)")
	cmd.Flags().BoolVar(&currentUserOperand, "me", false, "Add the current user as an operand")
	cmd.Flags().StringSliceVar(&needles, "fulltext", nil, "Full-text needles; all must match")
	return cmd
}
