package compare

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dshills/poaudit/internal/order"
	"github.com/dshills/poaudit/internal/schema"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Result describes how two saved reports relate.
type Result struct {
	// SameInputs is true when both reports carry the same input fingerprint.
	SameInputs bool `json:"sameInputs"`
	// SameTransforms is true when both reports went through the same output
	// transforms (severity filter, redaction).
	SameTransforms bool `json:"sameTransforms"`
	// SameOutcome is true when anomalies, checks, risk, recommendation,
	// summary and totals are identical.
	SameOutcome bool `json:"sameOutcome"`
	// Diff is a diff-match-patch patch from the previous outcome view to the
	// current one. Empty when SameOutcome.
	Diff string `json:"diff,omitempty"`
}

// Regression reports whether identical inputs, rendered the same way,
// produced a different outcome.
func (r Result) Regression() bool {
	return r.SameInputs && r.SameTransforms && !r.SameOutcome
}

// outcome is the part of a report that depends only on the audited inputs.
// Report ids, tool metadata and timestamps are excluded.
type outcome struct {
	OrderID        string                `json:"orderId"`
	Risk           schema.Risk           `json:"risk"`
	Recommendation schema.Recommendation `json:"recommendation"`
	Summary        string                `json:"summary"`
	Totals         order.Totals          `json:"totals"`
	Checks         []schema.Check        `json:"checks"`
	Anomalies      []schema.Anomaly      `json:"anomalies"`
}

// Compare diffs the outcome of two reports.
func Compare(prev, cur *schema.Report) (Result, error) {
	if prev == nil || cur == nil {
		return Result{}, fmt.Errorf("compare: both reports are required")
	}
	before, err := view(prev)
	if err != nil {
		return Result{}, fmt.Errorf("compare: previous report: %w", err)
	}
	after, err := view(cur)
	if err != nil {
		return Result{}, fmt.Errorf("compare: current report: %w", err)
	}

	res := Result{
		SameInputs:     prev.InputFingerprint != "" && prev.InputFingerprint == cur.InputFingerprint,
		SameTransforms: prev.Transforms() == cur.Transforms(),
		SameOutcome:    before == after,
	}
	if !res.SameOutcome {
		res.Diff = lineDiff(before, after)
	}
	return res, nil
}

func view(r *schema.Report) (string, error) {
	o := outcome{
		OrderID:        r.OrderID,
		Risk:           r.Risk,
		Recommendation: r.Recommendation,
		Summary:        r.Summary,
		Totals:         r.Totals,
		Checks:         r.Checks,
		Anomalies:      r.Anomalies,
	}
	if o.Checks == nil {
		o.Checks = []schema.Check{}
	}
	if o.Anomalies == nil {
		o.Anomalies = []schema.Anomaly{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(o); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// lineDiff diffs line by line so hunks follow the indented JSON structure.
func lineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	return dmp.PatchToText(dmp.PatchMake(before, diffs))
}
