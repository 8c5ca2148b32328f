package schema

import (
	"encoding/json"
	"fmt"

	"github.com/dshills/poaudit/internal/nomenclature"
)

// EvidenceKind discriminates the Evidence variants.
type EvidenceKind string

const (
	KindNomenclatureViolation EvidenceKind = "nomenclature_violation"
	KindBlacklistedSupplier   EvidenceKind = "blacklisted_supplier"
	KindPriceOutlier          EvidenceKind = "price_outlier"
	KindBudgetShortfall       EvidenceKind = "budget_shortfall"
)

// Evidence is the typed payload attached to an anomaly. Each check produces
// exactly one variant.
type Evidence interface {
	Kind() EvidenceKind
}

// NomenclatureEvidence lists the lines incompatible with the order family.
type NomenclatureEvidence struct {
	OrderFamily nomenclature.Code `json:"orderFamily"`
	Lines       []OffendingLine   `json:"lines"`
}

// OffendingLine is a line that breaks family homogeneity.
type OffendingLine struct {
	LineID      string            `json:"lineId"`
	FamilyCode  nomenclature.Code `json:"familyCode"`
	Designation string            `json:"designation"`
}

func (NomenclatureEvidence) Kind() EvidenceKind { return KindNomenclatureViolation }

// SupplierEvidence identifies a blacklisted supplier.
type SupplierEvidence struct {
	SupplierID   string `json:"supplierId"`
	SupplierName string `json:"supplierName"`
}

func (SupplierEvidence) Kind() EvidenceKind { return KindBlacklistedSupplier }

// PriceEvidence bundles every line priced outside the historical band.
type PriceEvidence struct {
	Outliers []PriceOutlier `json:"outliers"`
}

// PriceOutlier is one line with its current price and reference statistics.
type PriceOutlier struct {
	LineID      string  `json:"lineId"`
	CatalogRef  string  `json:"catalogRef"`
	UnitPriceHT float64 `json:"unitPriceHT"`
	Avg         float64 `json:"avg"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}

func (PriceEvidence) Kind() EvidenceKind { return KindPriceOutlier }

// BudgetEvidence bundles every site whose remaining budget cannot absorb a line.
type BudgetEvidence struct {
	Shortfalls []BudgetShortfall `json:"shortfalls"`
}

// BudgetShortfall is one (site, line) pair over budget.
type BudgetShortfall struct {
	Site      string  `json:"site"`
	Remaining float64 `json:"remaining"`
	LineID    string  `json:"lineId"`
	Amount    float64 `json:"amount"`
}

func (BudgetEvidence) Kind() EvidenceKind { return KindBudgetShortfall }

// anomalyJSON is the wire form of Anomaly: evidence carries its kind inline.
type anomalyJSON struct {
	ID       string          `json:"id"`
	Severity Severity        `json:"severity"`
	Title    string          `json:"title"`
	Detail   string          `json:"detail"`
	Evidence json.RawMessage `json:"evidence,omitempty"`
}

// MarshalJSON writes the evidence as {"kind": ..., <variant fields>}.
func (a Anomaly) MarshalJSON() ([]byte, error) {
	out := anomalyJSON{
		ID:       a.ID,
		Severity: a.Severity,
		Title:    a.Title,
		Detail:   a.Detail,
	}
	if a.Evidence != nil {
		ev, err := marshalEvidence(a.Evidence)
		if err != nil {
			return nil, err
		}
		out.Evidence = ev
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the evidence variant from its kind.
func (a *Anomaly) UnmarshalJSON(data []byte) error {
	var in anomalyJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	a.ID = in.ID
	a.Severity = in.Severity
	a.Title = in.Title
	a.Detail = in.Detail
	a.Evidence = nil
	if len(in.Evidence) == 0 || string(in.Evidence) == "null" {
		return nil
	}
	ev, err := unmarshalEvidence(in.Evidence)
	if err != nil {
		return fmt.Errorf("anomaly %s: %w", in.ID, err)
	}
	a.Evidence = ev
	return nil
}

func marshalEvidence(ev Evidence) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	kind, err := json.Marshal(ev.Kind())
	if err != nil {
		return nil, err
	}
	fields["kind"] = kind
	return json.Marshal(fields)
}

func unmarshalEvidence(data []byte) (Evidence, error) {
	var head struct {
		Kind EvidenceKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.Kind {
	case KindNomenclatureViolation:
		var ev NomenclatureEvidence
		err := json.Unmarshal(data, &ev)
		return ev, err
	case KindBlacklistedSupplier:
		var ev SupplierEvidence
		err := json.Unmarshal(data, &ev)
		return ev, err
	case KindPriceOutlier:
		var ev PriceEvidence
		err := json.Unmarshal(data, &ev)
		return ev, err
	case KindBudgetShortfall:
		var ev BudgetEvidence
		err := json.Unmarshal(data, &ev)
		return ev, err
	default:
		return nil, fmt.Errorf("unknown evidence kind %q", head.Kind)
	}
}
