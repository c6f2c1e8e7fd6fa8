package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/value-engine/generic"
)

func newFormatCmd(opts *options) *cobra.Command {
	var maxUnits int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "format VALUE...",
		Short: "Format stored values for display",
		Long: `Format prints one line per value. Arguments that are valid JSON
(numbers, lists, null) are read as such; anything else is text.
Invalid values are echoed and marked with "!".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.buildConstraint()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, arg := range args {
				v := c.CreateValue(parseRaw(arg))
				if asJSON {
					if err := printValueJSON(cmd, v); err != nil {
						return err
					}
					continue
				}
				mark := ""
				if !v.IsValid(false) {
					mark = "!"
				}
				fmt.Fprintf(out, "%s%s\n", v.FormatUnits(maxUnits), mark)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxUnits, "max-units", 0, "Maximum duration unit groups (0 = all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print format, serialized form and validity as JSON")
	return cmd
}

// valueReport is the --json output of format and input.
type valueReport struct {
	Format     string      `json:"format"`
	Serialized generic.Raw `json:"serialized"`
	Valid      bool        `json:"valid"`
}

func printValueJSON(cmd *cobra.Command, v generic.Value) error {
	b, err := json.Marshal(valueReport{
		Format:     v.Format(),
		Serialized: v.Serialize(),
		Valid:      v.IsValid(false),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
