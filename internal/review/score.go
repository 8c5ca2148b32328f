package review

import "github.com/dshills/poaudit/internal/schema"

// Risk derives the aggregate risk from anomaly severities alone. Check
// statuses never contribute: a threshold warning without an anomaly stays low.
func Risk(anomalies []schema.Anomaly) schema.Risk {
	c := Count(anomalies)
	switch {
	case c.Critical > 0:
		return schema.RiskCritical
	case c.Error > 0:
		return schema.RiskHigh
	case c.Warning > 0:
		return schema.RiskMedium
	default:
		return schema.RiskLow
	}
}

// Recommend derives the recommendation from anomaly severities. Warnings
// never block approval. RecommendEscalate has no producing rule.
func Recommend(anomalies []schema.Anomaly) schema.Recommendation {
	c := Count(anomalies)
	switch {
	case c.Critical > 0:
		return schema.RecommendReject
	case c.Error > 0:
		return schema.RecommendRequestComplement
	default:
		return schema.RecommendApprove
	}
}

// Counts holds per-severity anomaly counts.
type Counts struct {
	Critical int `json:"critical"`
	Error    int `json:"error"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
}

// Total returns the number of counted anomalies.
func (c Counts) Total() int {
	return c.Critical + c.Error + c.Warning + c.Info
}

// Count tallies anomalies by severity. Unknown severities are not counted.
func Count(anomalies []schema.Anomaly) Counts {
	var c Counts
	for _, a := range anomalies {
		switch a.Severity {
		case schema.SeverityCritical:
			c.Critical++
		case schema.SeverityError:
			c.Error++
		case schema.SeverityWarning:
			c.Warning++
		case schema.SeverityInfo:
			c.Info++
		}
	}
	return c
}

// FilterBySeverity returns only anomalies at or above the threshold severity.
// Risk and recommendation must be computed before filtering.
func FilterBySeverity(anomalies []schema.Anomaly, threshold schema.Severity) []schema.Anomaly {
	if threshold == schema.SeverityInfo {
		return anomalies
	}
	out := make([]schema.Anomaly, 0, len(anomalies))
	for _, a := range anomalies {
		if schema.SeverityOrdinal(a.Severity) >= schema.SeverityOrdinal(threshold) {
			out = append(out, a)
		}
	}
	return out
}
