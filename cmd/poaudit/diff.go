package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/poaudit/internal/compare"
	"github.com/dshills/poaudit/internal/schema"
	"github.com/dshills/poaudit/internal/schema/validate"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <previous.json> <current.json>",
		Short: "Compare two saved audit reports",
		Long:  "diff prints a patch between the outcomes of two JSON reports. It exits 2 when both reports audited identical inputs but reached different outcomes.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func runDiff(w io.Writer, prevPath, curPath string) error {
	prev, err := loadReport(prevPath)
	if err != nil {
		return err
	}
	cur, err := loadReport(curPath)
	if err != nil {
		return err
	}

	res, err := compare.Compare(prev, cur)
	if err != nil {
		return codeError(exitInput, "%s", err)
	}

	fmt.Fprintf(w, "same inputs: %t\nsame transforms: %t\nsame outcome: %t\n", res.SameInputs, res.SameTransforms, res.SameOutcome)
	if res.Diff != "" {
		fmt.Fprintf(w, "\n%s", res.Diff)
	}

	if res.Regression() {
		return codeError(exitThreshold, "identical inputs (%s) produced different outcomes", cur.InputFingerprint)
	}
	return nil
}

func loadReport(path string) (*schema.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, codeError(exitInput, "reading report: %s", err)
	}
	r, err := validate.Parse(string(data))
	if err != nil {
		return nil, codeError(exitInput, "parsing report %s: %s", path, err)
	}
	return r, nil
}
