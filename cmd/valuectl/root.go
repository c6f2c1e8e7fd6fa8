// Package main provides valuectl, a command line front end for the
// constraint value engine: format, parse and match values without a server.
//
// Constraints are given inline or from a file (prefix "@"), as JSON or YAML:
//
//	valuectl format --constraint '{"type":"Duration"}' 8w20m
//	valuectl match --constraint @status.yaml --condition in --operand open done
package main

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/warp/value-engine/factory"
	"github.com/warp/value-engine/generic"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	constraint  string
	letters     map[string]string
	users       []string
	currentUser string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "valuectl",
		Short:         "Format, parse and match constraint-typed values",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.constraint, "constraint", "c", "", `Constraint JSON/YAML, or @file`)
	root.PersistentFlags().StringToStringVar(&opts.letters, "letters", nil, "Duration unit letters, e.g. weeks=t,days=d")
	root.PersistentFlags().StringArrayVar(&opts.users, "user", nil, `Directory user "Name <email>" (repeatable)`)
	root.PersistentFlags().StringVar(&opts.currentUser, "current-user", "", "Email of the current user")

	root.AddCommand(
		newTypesCmd(),
		newFormatCmd(opts),
		newInputCmd(opts),
		newMatchCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// environment builds the constraint environment from the flags.
func (o *options) environment() (generic.Environment, error) {
	env := generic.Environment{
		CurrentUser: o.currentUser,
		UnitLetter:  factory.UnitLetters(o.letters),
	}
	for _, u := range o.users {
		addr, err := mail.ParseAddress(u)
		if err != nil {
			return generic.Environment{}, fmt.Errorf("user %q: %w", u, err)
		}
		env.Users = append(env.Users, generic.DirectoryUser{ID: addr.Address, Name: addr.Name, Email: addr.Address})
	}
	return env, nil
}

// buildConstraint parses --constraint in the flag environment.
func (o *options) buildConstraint() (generic.Constraint, error) {
	doc := strings.TrimSpace(o.constraint)
	if doc == "" {
		return nil, fmt.Errorf("--constraint is required")
	}
	if path, ok := strings.CutPrefix(doc, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read constraint: %w", err)
		}
		doc = string(b)
	}

	env, err := o.environment()
	if err != nil {
		return nil, err
	}
	return factory.NewConstraintFactory().Parse(doc, env)
}

// parseRaw reads an argument as JSON when it is a JSON scalar, list or null,
// and as text otherwise: 42 is a number, "42" and 8w20m are text.
func parseRaw(arg string) generic.Raw {
	var raw generic.Raw
	if err := json.Unmarshal([]byte(arg), &raw); err == nil {
		return raw
	}
	return generic.Text(arg)
}
