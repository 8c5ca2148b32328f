package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/poaudit/internal/policy"
)

func newPoliciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policies [name]",
		Short: "Describe the built-in policy presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPolicies(cmd.OutOrStdout(), args)
		},
	}
}

func runPolicies(w io.Writer, args []string) error {
	names := policy.Names
	if len(args) == 1 {
		names = args
	}
	for i, name := range names {
		p, err := policy.Get(name)
		if err != nil {
			return codeError(exitInput, "%s", err)
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprint(w, p.Describe())
	}
	return nil
}
