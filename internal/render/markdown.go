package render

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/dshills/poaudit/internal/review"
	"github.com/dshills/poaudit/internal/schema"
)

type markdownRenderer struct{}

var mdTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"evidence": evidenceLines,
	"money":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"counts":   review.Count,
}).Parse(`# Purchase Order Audit Report

**Order:** {{ .OrderID }}
**Risk:** {{ .Risk }}
**Recommendation:** {{ .Recommendation }}
{{ with counts .Anomalies }}**Critical:** {{ .Critical }} | **Error:** {{ .Error }} | **Warning:** {{ .Warning }} | **Info:** {{ .Info }}{{ end }}
> Note: risk and recommendation reflect all anomalies; --severity-threshold may hide some from this output.

{{ .Summary }}

| Total HT | VAT rate | VAT | Total TTC |
|---:|---:|---:|---:|
| {{ money .Totals.TotalHT }} | {{ .Totals.VATRate }} | {{ money .Totals.VAT }} | {{ money .Totals.TotalTTC }} |

## Checks

| Check | Category | Status |
|---|---|---|
{{ range .Checks }}| {{ .Label }} (` + "`{{ .ID }}`" + `) | {{ .Category }} | {{ .Status }} |
{{ end }}{{ if .Anomalies }}
---

## Anomalies
{{ range .Anomalies }}
### {{ .ID }} · {{ .Severity }}
**{{ .Title }}**

{{ .Detail }}
{{ range evidence .Evidence }}
- {{ . }}{{ end }}
{{ end }}{{ end }}
---
*{{ if .Tool }}{{ .Tool }} {{ .Version }} | {{ end }}Generated: {{ .GeneratedAt.Format "2006-01-02T15:04:05Z07:00" }} | Inputs: {{ .InputFingerprint }}*
`))

// evidenceLines flattens an evidence payload into bullet text.
func evidenceLines(ev schema.Evidence) []string {
	var out []string
	switch e := ev.(type) {
	case schema.NomenclatureEvidence:
		for _, l := range e.Lines {
			out = append(out, fmt.Sprintf("line %s: family %s, %q (order family %s)", l.LineID, l.FamilyCode, l.Designation, e.OrderFamily))
		}
	case schema.SupplierEvidence:
		out = append(out, fmt.Sprintf("supplier %s (%s)", e.SupplierID, e.SupplierName))
	case schema.PriceEvidence:
		for _, o := range e.Outliers {
			out = append(out, fmt.Sprintf("line %s (%s): %.2f vs history min %.2f / avg %.2f / max %.2f",
				o.LineID, o.CatalogRef, o.UnitPriceHT, o.Min, o.Avg, o.Max))
		}
	case schema.BudgetEvidence:
		for _, s := range e.Shortfalls {
			out = append(out, fmt.Sprintf("site %s: line %s needs %.2f, %.2f remaining", s.Site, s.LineID, s.Amount, s.Remaining))
		}
	}
	return out
}

func (r *markdownRenderer) Render(report *schema.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := mdTemplate.Execute(&buf, report); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.Bytes(), nil
}
