package redact

import (
	"regexp"

	"github.com/dshills/poaudit/internal/schema"
)

const redacted = "[REDACTED]"

// patterns holds personal-data and secret detection regexes in priority
// order. IBANs go before phone numbers because both contain digit runs.
var patterns = []*regexp.Regexp{
	// IBAN, grouped or not: FR76 3000 6000 0112 3456 7890 189
	regexp.MustCompile(`\b[A-Z]{2}\d{2}(?: ?[A-Z0-9]{4}){2,7}(?: ?[A-Z0-9]{1,4})?\b`),
	// e-mail addresses
	regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
	// international phone numbers: +33 6 12 34 56 78
	regexp.MustCompile(`\+\d{2,3}[ .\-]?\d(?:[ .\-]?\d{2}){4}\b`),
	// national phone numbers: 06 12 34 56 78, 01.23.45.67.89
	regexp.MustCompile(`\b0\d(?:[ .\-]?\d{2}){4}\b`),
	// inline password assignments
	regexp.MustCompile(`(?i)password\s*[:=]\s*\S+`),
}

// Redact replaces bank details, contact data and inline passwords in input
// with [REDACTED].
func Redact(input string) string {
	for _, re := range patterns {
		input = re.ReplaceAllString(input, redacted)
	}
	return input
}

// Report returns a copy of r with free text scrubbed: anomaly titles and
// details, line designations, supplier names and the summary. r is not
// modified.
func Report(r *schema.Report) *schema.Report {
	if r == nil {
		return nil
	}
	out := *r
	out.Summary = Redact(r.Summary)
	out.Anomalies = make([]schema.Anomaly, len(r.Anomalies))
	for i, a := range r.Anomalies {
		a.Title = Redact(a.Title)
		a.Detail = Redact(a.Detail)
		a.Evidence = evidence(a.Evidence)
		out.Anomalies[i] = a
	}
	out.Checks = append([]schema.Check(nil), r.Checks...)
	return &out
}

func evidence(ev schema.Evidence) schema.Evidence {
	switch e := ev.(type) {
	case schema.NomenclatureEvidence:
		lines := make([]schema.OffendingLine, len(e.Lines))
		for i, l := range e.Lines {
			l.Designation = Redact(l.Designation)
			lines[i] = l
		}
		e.Lines = lines
		return e
	case schema.SupplierEvidence:
		e.SupplierName = Redact(e.SupplierName)
		return e
	default:
		return ev
	}
}
