package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/poaudit/internal/nomenclature"
)

// familiesFlags holds the parsed flags for the families command.
type familiesFlags struct {
	configPath        string
	catalogFile       string
	detectCode        string
	detectDesignation string
	compatible        string
}

func newFamiliesCmd(configPath *string) *cobra.Command {
	var flags familiesFlags
	cmd := &cobra.Command{
		Use:   "families",
		Short: "List nomenclature families, detect a line's family, or expand compatible families",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.configPath = *configPath
			return runFamilies(cmd.OutOrStdout(), flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.catalogFile, "catalog", "", "Nomenclature catalog file; defaults to the built-in catalog")
	f.StringVar(&flags.detectCode, "detect-code", "", "Detect the family of a line from its item code")
	f.StringVar(&flags.detectDesignation, "detect-designation", "", "Detect the family of a line from its designation")
	f.StringVar(&flags.compatible, "compatible", "", "List the families compatible with this code")
	return cmd
}

func runFamilies(w io.Writer, flags familiesFlags) error {
	if flags.compatible != "" && (flags.detectCode != "" || flags.detectDesignation != "") {
		return codeError(exitInput, "invalid flags: --compatible cannot be combined with --detect-*")
	}

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	catalogFile := flags.catalogFile
	if catalogFile == "" {
		catalogFile = cfg.CatalogFile
	}
	catalog, err := loadCatalog(catalogFile)
	if err != nil {
		return err
	}

	var out any
	switch {
	case flags.compatible != "":
		out = map[string]any{
			"code":       flags.compatible,
			"compatible": catalog.CompatibleFamilies(nomenclature.Code(flags.compatible)),
		}
	case flags.detectCode != "" || flags.detectDesignation != "":
		code, ok := catalog.DetectFromLine(nomenclature.LineHint{Code: flags.detectCode, Designation: flags.detectDesignation})
		if !ok {
			out = map[string]any{"found": false}
			break
		}
		f, _ := catalog.Get(code)
		out = map[string]any{"found": true, "code": code, "family": f}
	default:
		out = map[string]any{"families": catalog.Families()}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return codeError(exitInput, "encoding output: %s", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
