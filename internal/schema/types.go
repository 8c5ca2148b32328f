package schema

import (
	"time"

	"github.com/dshills/poaudit/internal/order"
)

// Report is the audit engine output.
type Report struct {
	ReportID         string         `json:"reportId,omitempty"`
	Tool             string         `json:"tool,omitempty"`
	Version          string         `json:"version,omitempty"`
	OrderID          string         `json:"orderId"`
	Anomalies        []Anomaly      `json:"anomalies"`
	Checks           []Check        `json:"checks"`
	Risk             Risk           `json:"risk"`
	Recommendation   Recommendation `json:"recommendation"`
	Summary          string         `json:"summary"`
	Totals           order.Totals   `json:"totals"`
	InputFingerprint string         `json:"inputFingerprint"`
	GeneratedAt      time.Time      `json:"generatedAt"`
	Output           *Output        `json:"output,omitempty"`
}

// Output records the transforms applied to a report after the audit ran.
// A nil Output means the report is the engine's result unchanged.
type Output struct {
	SeverityThreshold Severity `json:"severityThreshold,omitempty"`
	Redacted          bool     `json:"redacted,omitempty"`
}

// Transforms returns the applied transforms with defaults filled in.
func (r *Report) Transforms() Output {
	var o Output
	if r.Output != nil {
		o = *r.Output
	}
	if o.SeverityThreshold == "" {
		o.SeverityThreshold = SeverityInfo
	}
	return o
}

// Severity levels for anomalies.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// SeverityOrdinal returns info(0) < warning(1) < error(2) < critical(3),
// or -1 for an unrecognised severity.
func SeverityOrdinal(s Severity) int {
	switch s {
	case SeverityInfo:
		return 0
	case SeverityWarning:
		return 1
	case SeverityError:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// CheckStatus is the outcome of one pipeline check.
type CheckStatus string

const (
	CheckPassed  CheckStatus = "passed"
	CheckWarning CheckStatus = "warning"
	CheckFailed  CheckStatus = "failed"
	// CheckPending is part of the vocabulary; no rule produces it yet.
	CheckPending CheckStatus = "pending"
)

// IsValidCheckStatus reports whether s is a defined check status.
func IsValidCheckStatus(s CheckStatus) bool {
	switch s {
	case CheckPassed, CheckWarning, CheckFailed, CheckPending:
		return true
	}
	return false
}

// CheckCategory groups checks.
type CheckCategory string

const (
	CategoryStructural CheckCategory = "structural"
	CategoryFinancial  CheckCategory = "financial"
	CategoryIntegrity  CheckCategory = "integrity"
)

// IsValidCategory reports whether c is a defined check category.
func IsValidCategory(c CheckCategory) bool {
	switch c {
	case CategoryStructural, CategoryFinancial, CategoryIntegrity:
		return true
	}
	return false
}

// Risk is the aggregate severity of a report.
type Risk string

const (
	RiskLow      Risk = "low"
	RiskMedium   Risk = "medium"
	RiskHigh     Risk = "high"
	RiskCritical Risk = "critical"
)

// RiskOrdinal returns low(0) < medium(1) < high(2) < critical(3), or -1.
func RiskOrdinal(r Risk) int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return -1
	}
}

// Recommendation is the advised next workflow action.
type Recommendation string

const (
	RecommendApprove           Recommendation = "approve"
	RecommendRequestComplement Recommendation = "request_complement"
	// RecommendEscalate is reserved; no rule produces it yet.
	RecommendEscalate Recommendation = "escalate"
	RecommendReject   Recommendation = "reject"
)

// RecommendationOrdinal orders recommendations by how far they block the
// order: approve(0) < request_complement(1) < escalate(2) < reject(3).
// Returns -1 for an unrecognised value.
func RecommendationOrdinal(r Recommendation) int {
	switch r {
	case RecommendApprove:
		return 0
	case RecommendRequestComplement:
		return 1
	case RecommendEscalate:
		return 2
	case RecommendReject:
		return 3
	default:
		return -1
	}
}

// Check is one entry of the audit pipeline.
type Check struct {
	ID       string        `json:"id"`
	Category CheckCategory `json:"category"`
	Label    string        `json:"label"`
	Status   CheckStatus   `json:"status"`
}

// Check identifiers, in pipeline order.
const (
	CheckNomenclature = "nomenclature.homogeneity"
	CheckThreshold    = "amount.threshold"
	CheckSupplier     = "supplier.eligibility"
	CheckPrice        = "price.coherence"
	CheckBudget       = "budget.site"
)

// Anomaly identifiers.
const (
	AnomalyNomenclature = "NOM-001"
	AnomalySupplier     = "SUP-001"
	AnomalyPrice        = "PRC-001"
	AnomalyBudget       = "BUD-001"
)

// Anomaly is a reported problem. Evidence carries the check-specific payload.
type Anomaly struct {
	ID       string   `json:"id"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
	Evidence Evidence `json:"evidence"`
}
