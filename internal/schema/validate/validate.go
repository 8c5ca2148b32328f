package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"

	"github.com/dshills/poaudit/internal/audit"
	"github.com/dshills/poaudit/internal/order"
	"github.com/dshills/poaudit/internal/schema"
)

var anomalyIDPattern = regexp.MustCompile(`^[A-Z]{3}-\d{3}$`)

// Parse unmarshals JSON and validates the structure of a saved audit report.
func Parse(raw string) (*schema.Report, error) {
	var report schema.Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, fmt.Errorf("JSON parse failed: %w", err)
	}

	if err := validateReport(&report); err != nil {
		return nil, err
	}

	return &report, nil
}

func validateReport(r *schema.Report) error {
	if schema.RiskOrdinal(r.Risk) < 0 {
		return fmt.Errorf("invalid risk %q", r.Risk)
	}
	if schema.RecommendationOrdinal(r.Recommendation) < 0 {
		return fmt.Errorf("invalid recommendation %q", r.Recommendation)
	}
	for i, a := range r.Anomalies {
		if err := validateAnomaly(a, i); err != nil {
			return err
		}
	}
	for i, c := range r.Checks {
		if err := validateCheck(c, i); err != nil {
			return err
		}
	}
	if r.Output != nil && r.Output.SeverityThreshold != "" && schema.SeverityOrdinal(r.Output.SeverityThreshold) < 0 {
		return fmt.Errorf("output: invalid severityThreshold %q", r.Output.SeverityThreshold)
	}
	return nil
}

func validateAnomaly(a schema.Anomaly, idx int) error {
	prefix := fmt.Sprintf("anomaly[%d]", idx)

	if !anomalyIDPattern.MatchString(a.ID) {
		return fmt.Errorf("%s: id %q does not match XXX-000 format", prefix, a.ID)
	}
	if schema.SeverityOrdinal(a.Severity) < 0 {
		return fmt.Errorf("%s: invalid severity %q (must be info, warning, error, or critical)", prefix, a.Severity)
	}
	if a.Title == "" {
		return fmt.Errorf("%s: title is required", prefix)
	}
	return nil
}

func validateCheck(c schema.Check, idx int) error {
	prefix := fmt.Sprintf("check[%d]", idx)

	if c.ID == "" {
		return fmt.Errorf("%s: id is required", prefix)
	}
	if !schema.IsValidCategory(c.Category) {
		return fmt.Errorf("%s: unknown category %q", prefix, c.Category)
	}
	if !schema.IsValidCheckStatus(c.Status) {
		return fmt.Errorf("%s: unknown status %q", prefix, c.Status)
	}
	return nil
}

// Order rejects purchase orders the engine cannot audit meaningfully:
// missing identifiers, non-finite numbers, non-positive quantities and
// negative prices.
func Order(o *order.PurchaseOrder) error {
	if o == nil {
		return fmt.Errorf("order is required")
	}
	if o.ID == "" {
		return fmt.Errorf("order: id is required")
	}
	if o.SupplierID == "" {
		return fmt.Errorf("order %s: supplierId is required", o.ID)
	}
	if !o.FamilyCode.Valid() {
		return fmt.Errorf("order %s: familyCode %q is not a valid family code", o.ID, o.FamilyCode)
	}
	if o.Status != "" && !o.Status.Valid() {
		return fmt.Errorf("order %s: unknown status %q", o.ID, o.Status)
	}
	if err := optionalFinite(o.VATRate, "vatRate"); err != nil {
		return fmt.Errorf("order %s: %w", o.ID, err)
	}
	if o.VATRate != nil && *o.VATRate < 0 {
		return fmt.Errorf("order %s: vatRate must not be negative", o.ID)
	}
	if err := optionalFinite(o.CurrencyRate, "currencyRate"); err != nil {
		return fmt.Errorf("order %s: %w", o.ID, err)
	}
	if err := optionalFinite(o.TotalHT, "totalHT"); err != nil {
		return fmt.Errorf("order %s: %w", o.ID, err)
	}

	seen := make(map[string]bool, len(o.Lines))
	for i, l := range o.Lines {
		prefix := fmt.Sprintf("order %s: line[%d]", o.ID, i)
		if l.ID == "" {
			return fmt.Errorf("%s: id is required", prefix)
		}
		if seen[l.ID] {
			return fmt.Errorf("%s: duplicate line id %q", prefix, l.ID)
		}
		seen[l.ID] = true
		if !l.FamilyCode.Valid() {
			return fmt.Errorf("%s: familyCode %q is not a valid family code", prefix, l.FamilyCode)
		}
		if !finite(l.Qty) || l.Qty <= 0 {
			return fmt.Errorf("%s: qty must be a positive number", prefix)
		}
		if !finite(l.UnitPriceHT) || l.UnitPriceHT < 0 {
			return fmt.Errorf("%s: unitPriceHT must be a non-negative number", prefix)
		}
	}
	return nil
}

// Context rejects policy contexts holding non-finite or negative numbers or an
// inverted price band.
func Context(c *audit.Context) error {
	if c == nil {
		return nil
	}
	t := c.Thresholds
	for name, v := range map[string]float64{
		"approvalHT":     t.ApprovalHT,
		"priceHighRatio": t.PriceHighRatio,
		"priceLowRatio":  t.PriceLowRatio,
	} {
		if !finite(v) || v < 0 {
			return fmt.Errorf("context: thresholds.%s must be a non-negative number", name)
		}
	}
	if t.DefaultVATRate != nil && (!finite(*t.DefaultVATRate) || *t.DefaultVATRate < 0) {
		return fmt.Errorf("context: thresholds.defaultVatRate must be a non-negative number")
	}
	if t.PriceHighRatio > 0 && t.PriceHighRatio < 1 {
		return fmt.Errorf("context: thresholds.priceHighRatio must be at least 1")
	}
	if t.PriceLowRatio > 1 {
		return fmt.Errorf("context: thresholds.priceLowRatio must be at most 1")
	}
	for site, v := range c.SiteBudgets {
		if !finite(v) {
			return fmt.Errorf("context: siteBudgets[%s] is not a finite number", site)
		}
	}
	for supplier, items := range c.PriceStats {
		for ref, s := range items {
			if !finite(s.Avg) || !finite(s.Min) || !finite(s.Max) {
				return fmt.Errorf("context: priceStats[%s][%s] holds a non-finite number", supplier, ref)
			}
			if s.Min > s.Max {
				return fmt.Errorf("context: priceStats[%s][%s] has min above max", supplier, ref)
			}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func optionalFinite(v *float64, name string) error {
	if v != nil && !finite(*v) {
		return fmt.Errorf("%s is not a finite number", name)
	}
	return nil
}
