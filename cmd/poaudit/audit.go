package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/poaudit/internal/audit"
	"github.com/dshills/poaudit/internal/order"
	"github.com/dshills/poaudit/internal/redact"
	"github.com/dshills/poaudit/internal/render"
	"github.com/dshills/poaudit/internal/review"
	"github.com/dshills/poaudit/internal/schema"
	"github.com/dshills/poaudit/internal/service"
)

// auditFlags holds the parsed flags for the audit command.
type auditFlags struct {
	configPath        string
	contextFile       string
	policyName        string
	catalogFile       string
	format            string
	out               string
	failOn            string
	severityThreshold string
	redact            bool
	noValidate        bool
	verbose           bool
}

func newAuditCmd(configPath *string) *cobra.Command {
	var flags auditFlags
	cmd := &cobra.Command{
		Use:   "audit <order.json>",
		Short: "Audit a purchase order and produce a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.configPath = *configPath
			return runAudit(cmd.Context(), args[0], flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.contextFile, "context", "", "Policy context file (YAML or JSON); overrides the configured source")
	f.StringVar(&flags.policyName, "policy", "", "Policy preset filling unset thresholds: standard, strict, works (default from config)")
	f.StringVar(&flags.catalogFile, "catalog", "", "Nomenclature catalog file (YAML or JSON); defaults to the built-in catalog")
	f.StringVar(&flags.format, "format", "json", "Output format: json or md")
	f.StringVar(&flags.out, "out", "", "Write output to file instead of stdout")
	f.StringVar(&flags.failOn, "fail-on", "", "Exit 2 if the recommendation is at least this action (request_complement or reject)")
	f.StringVar(&flags.severityThreshold, "severity-threshold", "info", "Minimum anomaly severity to emit: info, warning, error, or critical")
	f.BoolVar(&flags.redact, "redact", false, "Scrub IBANs, e-mail addresses and phone numbers from the report")
	f.BoolVar(&flags.noValidate, "no-validate", false, "Skip order and context validation")
	f.BoolVar(&flags.verbose, "verbose", false, "Log processing steps to stderr")
	return cmd
}

func runAudit(ctx context.Context, orderPath string, flags auditFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// --- Step 1: Validate flags ---
	if err := validateAuditFlags(flags); err != nil {
		return codeError(exitInput, "invalid flags: %s", err)
	}

	// --- Step 2: Configuration and logging ---
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, flags.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// --- Step 3: Load order ---
	log.Debug("loading order", zap.String("path", orderPath))
	doc, err := order.Load(orderPath)
	if err != nil {
		return codeError(exitInput, "loading order: %s", err)
	}
	log.Debug("order loaded", zap.String("order_id", doc.Order.ID), zap.String("file_hash", doc.Hash))

	// --- Step 4: Load catalog ---
	catalogFile := flags.catalogFile
	if catalogFile == "" {
		catalogFile = cfg.CatalogFile
	}
	catalog, err := loadCatalog(catalogFile)
	if err != nil {
		return err
	}

	// --- Step 5: Resolve context source ---
	preset, err := loadPolicy(cfg, flags.policyName)
	if err != nil {
		return err
	}
	provider, cleanup, err := buildProvider(ctx, cfg, flags.contextFile, preset, nil, log)
	if err != nil {
		return err
	}
	defer cleanup()

	// --- Step 6: Run audit ---
	opts := []service.Option{service.WithLogger(log), service.WithVersion(version)}
	if flags.noValidate {
		opts = append(opts, service.WithoutValidation())
	}
	svc := service.New(audit.New(audit.WithCatalog(catalog)), provider, opts...)

	report, err := svc.Audit(ctx, doc.Order, nil)
	switch {
	case errors.Is(err, service.ErrContextSource):
		return codeError(exitSource, "%s", err)
	case err != nil:
		return codeError(exitInput, "%s", err)
	}
	recommendation := report.Recommendation

	// --- Step 7: Redact ---
	if flags.redact {
		report = redact.Report(report)
	}

	// --- Step 8: Apply severity threshold filter (output only, risk and recommendation are already set) ---
	threshold := schema.Severity(flags.severityThreshold)
	report.Anomalies = review.FilterBySeverity(report.Anomalies, threshold)
	if flags.redact || threshold != schema.SeverityInfo {
		report.Output = &schema.Output{SeverityThreshold: threshold, Redacted: flags.redact}
	}

	// --- Step 9: Render and write ---
	log.Debug("rendering output", zap.String("format", flags.format))
	renderer, err := render.NewRenderer(flags.format)
	if err != nil {
		return codeError(exitInput, "invalid format: %s", err)
	}
	outputBytes, err := renderer.Render(report)
	if err != nil {
		return codeError(exitInput, "rendering output: %s", err)
	}
	if err := writeOutput(flags.out, outputBytes); err != nil {
		return err
	}

	// --- Step 10: Evaluate --fail-on ---
	if flags.failOn != "" {
		threshold := schema.Recommendation(flags.failOn)
		if schema.RecommendationOrdinal(recommendation) >= schema.RecommendationOrdinal(threshold) {
			return codeError(exitThreshold, "recommendation %s meets or exceeds --fail-on threshold %s", recommendation, threshold)
		}
	}

	return nil
}

// validateAuditFlags returns an error if any flag value is invalid.
func validateAuditFlags(flags auditFlags) error {
	switch flags.format {
	case "json", "md":
	default:
		return fmt.Errorf("--format must be json or md, got %q", flags.format)
	}

	if flags.failOn != "" {
		switch schema.Recommendation(flags.failOn) {
		case schema.RecommendRequestComplement, schema.RecommendReject:
		default:
			return fmt.Errorf("--fail-on must be request_complement or reject, got %q", flags.failOn)
		}
	}

	if schema.SeverityOrdinal(schema.Severity(flags.severityThreshold)) < 0 {
		return fmt.Errorf("--severity-threshold must be info, warning, error, or critical, got %q", flags.severityThreshold)
	}

	return nil
}
