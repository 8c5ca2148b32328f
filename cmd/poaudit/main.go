package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// Exit codes.
const (
	exitThreshold = 2 // --fail-on met, or diff regression
	exitInput     = 3 // unreadable or invalid input, flags or configuration
	exitSource    = 4 // policy context source unavailable
)

func main() {
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	root := &cobra.Command{
		Use:           "poaudit",
		Short:         "Audit purchase orders against procurement policy",
		Long:          "poaudit checks purchase orders for nomenclature homogeneity, approval thresholds, supplier eligibility, price coherence and site budgets, and recommends the next workflow action.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	var configPath string
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file (POAUDIT_* environment variables override it)")

	root.AddCommand(
		newAuditCmd(&configPath),
		newDiffCmd(),
		newFamiliesCmd(&configPath),
		newPoliciesCmd(),
		newServeCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return codeError(exitInput, "writing output file: %s", err)
		}
		return nil
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return codeError(exitInput, "writing output: %s", err)
	}
	// Ensure output ends with a newline for terminal friendliness.
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Fprintln(os.Stdout)
	}
	return nil
}
