package audit

import (
	"fmt"
	"math"
	"strings"

	"github.com/dshills/poaudit/internal/nomenclature"
	"github.com/dshills/poaudit/internal/order"
	"github.com/dshills/poaudit/internal/schema"
)

// input is what every check reads. Checks never modify it.
type input struct {
	order   *order.PurchaseOrder
	ctx     *Context
	catalog *nomenclature.Catalog
	totals  order.Totals
}

// checkFunc produces exactly one check record and at most one anomaly.
type checkFunc func(in *input) (schema.Check, *schema.Anomaly)

// pipeline is the fixed check order.
var pipeline = []checkFunc{
	checkNomenclature,
	checkThreshold,
	checkSupplier,
	checkPrice,
	checkBudget,
}

func newCheck(id string, category schema.CheckCategory, label string, status schema.CheckStatus) schema.Check {
	return schema.Check{ID: id, Category: category, Label: label, Status: status}
}

// checkNomenclature flags every line whose family is not compatible with the
// order's primary family.
func checkNomenclature(in *input) (schema.Check, *schema.Anomaly) {
	const label = "Nomenclature family homogeneity"

	var offending []schema.OffendingLine
	for _, l := range in.order.Lines {
		if !in.catalog.IsCompatible(in.order.FamilyCode, l.FamilyCode) {
			offending = append(offending, schema.OffendingLine{
				LineID:      l.ID,
				FamilyCode:  l.FamilyCode,
				Designation: l.Designation,
			})
		}
	}
	if len(offending) == 0 {
		return newCheck(schema.CheckNomenclature, schema.CategoryStructural, label, schema.CheckPassed), nil
	}

	parts := make([]string, len(offending))
	for i, l := range offending {
		parts[i] = fmt.Sprintf("%s (%s)", l.LineID, l.FamilyCode)
	}
	return newCheck(schema.CheckNomenclature, schema.CategoryStructural, label, schema.CheckFailed),
		&schema.Anomaly{
			ID:       schema.AnomalyNomenclature,
			Severity: schema.SeverityError,
			Title:    "Lines outside the order's nomenclature family",
			Detail: fmt.Sprintf("%d line(s) are not compatible with family %s: %s. Split the order by family.",
				len(offending), in.order.FamilyCode, strings.Join(parts, ", ")),
			Evidence: schema.NomenclatureEvidence{
				OrderFamily: in.order.FamilyCode,
				Lines:       offending,
			},
		}
}

// checkThreshold reports a breach of the approval threshold as a warning
// status only. It never emits an anomaly, so it never raises the risk.
func checkThreshold(in *input) (schema.Check, *schema.Anomaly) {
	const label = "Amount within approval threshold"

	limit := in.ctx.Thresholds.ApprovalHT
	if limit > 0 && in.totals.TotalHT > limit {
		return newCheck(schema.CheckThreshold, schema.CategoryFinancial, label, schema.CheckWarning), nil
	}
	return newCheck(schema.CheckThreshold, schema.CategoryFinancial, label, schema.CheckPassed), nil
}

func checkSupplier(in *input) (schema.Check, *schema.Anomaly) {
	const label = "Supplier eligibility"

	if !in.ctx.IsBlacklisted(in.order.SupplierID) {
		return newCheck(schema.CheckSupplier, schema.CategoryIntegrity, label, schema.CheckPassed), nil
	}
	return newCheck(schema.CheckSupplier, schema.CategoryIntegrity, label, schema.CheckFailed),
		&schema.Anomaly{
			ID:       schema.AnomalySupplier,
			Severity: schema.SeverityCritical,
			Title:    "Supplier is blacklisted",
			Detail:   fmt.Sprintf("Supplier %s (%s) is on the supplier blacklist.", in.order.SupplierID, in.order.SupplierName),
			Evidence: schema.SupplierEvidence{
				SupplierID:   in.order.SupplierID,
				SupplierName: in.order.SupplierName,
			},
		}
}

// checkPrice compares unit prices with the supplier's price history. Lines
// without a catalog reference or without statistics are skipped.
func checkPrice(in *input) (schema.Check, *schema.Anomaly) {
	const label = "Price coherence with history"

	high, low := in.ctx.priceHighRatio(), in.ctx.priceLowRatio()
	var outliers []schema.PriceOutlier
	for _, l := range in.order.Lines {
		if l.CatalogRef == "" {
			continue
		}
		stats, ok := in.ctx.PriceStatsFor(in.order.SupplierID, l.CatalogRef)
		if !ok {
			continue
		}
		if l.UnitPriceHT > stats.Max*high || l.UnitPriceHT < stats.Min*low {
			outliers = append(outliers, schema.PriceOutlier{
				LineID:      l.ID,
				CatalogRef:  l.CatalogRef,
				UnitPriceHT: l.UnitPriceHT,
				Avg:         stats.Avg,
				Min:         stats.Min,
				Max:         stats.Max,
			})
		}
	}
	if len(outliers) == 0 {
		return newCheck(schema.CheckPrice, schema.CategoryFinancial, label, schema.CheckPassed), nil
	}
	return newCheck(schema.CheckPrice, schema.CategoryFinancial, label, schema.CheckWarning),
		&schema.Anomaly{
			ID:       schema.AnomalyPrice,
			Severity: schema.SeverityWarning,
			Title:    "Unit prices outside historical range",
			Detail: fmt.Sprintf("%d line(s) priced above %s of the historical maximum or below %s of the historical minimum.",
				len(outliers), percent(high), percent(low)),
			Evidence: schema.PriceEvidence{Outliers: outliers},
		}
}

// checkBudget compares each line amount with the remaining budget of every
// site it is allocated to. Sites without a known budget are unconstrained.
func checkBudget(in *input) (schema.Check, *schema.Anomaly) {
	const label = "Site budget availability"

	var shortfalls []schema.BudgetShortfall
	for _, l := range in.order.Lines {
		amount := l.Amount()
		for _, site := range l.Sites {
			remaining, ok := in.ctx.RemainingBudget(site)
			if !ok {
				continue
			}
			if remaining < amount {
				shortfalls = append(shortfalls, schema.BudgetShortfall{
					Site:      site,
					Remaining: remaining,
					LineID:    l.ID,
					Amount:    amount,
				})
			}
		}
	}
	if len(shortfalls) == 0 {
		return newCheck(schema.CheckBudget, schema.CategoryFinancial, label, schema.CheckPassed), nil
	}
	return newCheck(schema.CheckBudget, schema.CategoryFinancial, label, schema.CheckFailed),
		&schema.Anomaly{
			ID:       schema.AnomalyBudget,
			Severity: schema.SeverityError,
			Title:    "Site budget exceeded",
			Detail:   fmt.Sprintf("%d allocation(s) exceed the remaining site budget.", len(shortfalls)),
			Evidence: schema.BudgetEvidence{Shortfalls: shortfalls},
		}
}

// percent formats a ratio as a percentage with at most two decimals.
func percent(ratio float64) string {
	return fmt.Sprintf("%g%%", math.Round(ratio*10000)/100)
}
