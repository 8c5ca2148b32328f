package order

import "github.com/dshills/poaudit/internal/nomenclature"

// Line is one purchase order line item. Amounts are before tax (HT).
type Line struct {
	ID          string            `json:"id"`
	CatalogRef  string            `json:"catalogRef,omitempty"`
	FamilyCode  nomenclature.Code `json:"familyCode"`
	Designation string            `json:"designation"`
	Qty         float64           `json:"qty"`
	UnitPriceHT float64           `json:"unitPriceHT"`
	Sites       []string          `json:"sites,omitempty"`
	CostCenters []string          `json:"costCenters,omitempty"`
}

// Amount returns Qty × UnitPriceHT.
func (l Line) Amount() float64 {
	return l.Qty * l.UnitPriceHT
}

// PurchaseOrder is the audited procurement request.
// VATRate and TotalHT are optional; nil means "not supplied".
type PurchaseOrder struct {
	ID           string            `json:"id"`
	SupplierID   string            `json:"supplierId"`
	SupplierName string            `json:"supplierName"`
	FamilyCode   nomenclature.Code `json:"familyCode"`
	Status       Status            `json:"status,omitempty"`
	VATRate      *float64          `json:"vatRate,omitempty"`
	CurrencyRate *float64          `json:"currencyRate,omitempty"`
	Lines        []Line            `json:"lines"`
	TotalHT      *float64          `json:"totalHT,omitempty"`
}

// LinesTotal sums the line amounts.
func (o *PurchaseOrder) LinesTotal() float64 {
	var total float64
	for _, l := range o.Lines {
		total += l.Amount()
	}
	return total
}

// Totals holds the tax breakdown of an order.
type Totals struct {
	TotalHT  float64 `json:"totalHT"`
	VATRate  float64 `json:"vatRate"`
	VAT      float64 `json:"vat"`
	TotalTTC float64 `json:"totalTTC"`
}

// ComputeTotals derives the order totals. A precomputed TotalHT wins over the
// line sum; the order's VAT rate wins over defaultVATRate.
func (o *PurchaseOrder) ComputeTotals(defaultVATRate float64) Totals {
	ht := o.LinesTotal()
	if o.TotalHT != nil {
		ht = *o.TotalHT
	}
	rate := defaultVATRate
	if o.VATRate != nil {
		rate = *o.VATRate
	}
	vat := ht * rate
	return Totals{
		TotalHT:  ht,
		VATRate:  rate,
		VAT:      vat,
		TotalTTC: ht + vat,
	}
}
