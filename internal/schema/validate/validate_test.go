package validate

import (
	"math"
	"strings"
	"testing"

	"github.com/dshills/poaudit/internal/audit"
	"github.com/dshills/poaudit/internal/order"
)

const validJSON = `{
  "reportId": "5d0b2f0e-2c43-4d43-a5b4-0f0f1c8f0d11",
  "tool": "poaudit",
  "version": "1.0",
  "orderId": "PO-1",
  "anomalies": [
    {
      "id": "SUP-001",
      "severity": "critical",
      "title": "Supplier is blacklisted",
      "detail": "Supplier SUP-7 is on the supplier blacklist.",
      "evidence": {"kind": "blacklisted_supplier", "supplierId": "SUP-7", "supplierName": "Acme"}
    }
  ],
  "checks": [
    {"id": "supplier.eligibility", "category": "integrity", "label": "Supplier eligibility", "status": "failed"}
  ],
  "risk": "critical",
  "recommendation": "reject",
  "summary": "Order PO-1 has 1 anomaly.",
  "totals": {"totalHT": 100, "vatRate": 0.2, "vat": 20, "totalTTC": 120},
  "inputFingerprint": "sha256:00",
  "generatedAt": "2026-03-02T09:30:00Z"
}`

func TestParse_ValidReport(t *testing.T) {
	r, err := Parse(validJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(r.Anomalies) != 1 {
		t.Errorf("expected 1 anomaly, got %d", len(r.Anomalies))
	}
	if r.Anomalies[0].Evidence == nil {
		t.Error("expected typed evidence")
	}
}

func TestParse_RejectsFencedReport(t *testing.T) {
	fenced := "```json\n" + validJSON + "\n```"
	if _, err := Parse(fenced); err == nil {
		t.Fatal("expected a JSON error for a fenced report")
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		old     string
		new     string
		wantErr string
	}{
		{"invalid JSON", validJSON, "{not valid json}", "JSON parse failed"},
		{"severity", `"critical",
      "title"`, `"blocker",
      "title"`, "invalid severity"},
		{"anomaly id", `"SUP-001"`, `"SUP-1"`, "XXX-000"},
		{"risk", `"risk": "critical"`, `"risk": "severe"`, "invalid risk"},
		{"recommendation", `"reject"`, `"hold"`, "invalid recommendation"},
		{"check status", `"failed"`, `"skipped"`, "unknown status"},
		{"check category", `"integrity"`, `"legal"`, "unknown category"},
		{"evidence kind", `"blacklisted_supplier"`, `"mystery"`, "unknown evidence kind"},
		{"output threshold", `"generatedAt"`, `"output": {"severityThreshold": "loud"}, "generatedAt"`, "invalid severityThreshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := strings.Replace(validJSON, tt.old, tt.new, 1)
			_, err := Parse(bad)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func validOrder() *order.PurchaseOrder {
	return &order.PurchaseOrder{
		ID:         "PO-1",
		SupplierID: "SUP-7",
		FamilyCode: "F10-01",
		Lines: []order.Line{
			{ID: "L1", FamilyCode: "F10-01", Qty: 2, UnitPriceHT: 10},
			{ID: "L2", FamilyCode: "S20-01", Qty: 1, UnitPriceHT: 0},
		},
	}
}

func TestOrder_Valid(t *testing.T) {
	if err := Order(validOrder()); err != nil {
		t.Fatalf("Order: %v", err)
	}
}

func TestOrder_Rejects(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		mutate func(o *order.PurchaseOrder)
	}{
		{"missing id", func(o *order.PurchaseOrder) { o.ID = "" }},
		{"missing supplier", func(o *order.PurchaseOrder) { o.SupplierID = "" }},
		{"bad family", func(o *order.PurchaseOrder) { o.FamilyCode = "F1001" }},
		{"bad status", func(o *order.PurchaseOrder) { o.Status = "archived" }},
		{"nan vat", func(o *order.PurchaseOrder) { o.VATRate = &nan }},
		{"zero qty", func(o *order.PurchaseOrder) { o.Lines[0].Qty = 0 }},
		{"negative price", func(o *order.PurchaseOrder) { o.Lines[0].UnitPriceHT = -1 }},
		{"infinite price", func(o *order.PurchaseOrder) { o.Lines[0].UnitPriceHT = math.Inf(1) }},
		{"duplicate line", func(o *order.PurchaseOrder) { o.Lines[1].ID = "L1" }},
		{"missing line id", func(o *order.PurchaseOrder) { o.Lines[1].ID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOrder()
			tt.mutate(o)
			if err := Order(o); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestOrder_Nil(t *testing.T) {
	if err := Order(nil); err == nil {
		t.Error("expected error for nil order")
	}
}

func TestContext(t *testing.T) {
	if err := Context(nil); err != nil {
		t.Errorf("nil context: %v", err)
	}
	ok := &audit.Context{
		Thresholds:  audit.Thresholds{ApprovalHT: 1000, PriceHighRatio: 1.2, PriceLowRatio: 0.8},
		SiteBudgets: map[string]float64{"CH-1": -50},
		PriceStats:  map[string]map[string]audit.PriceStats{"S": {"X": {Avg: 2, Min: 1, Max: 3}}},
	}
	if err := Context(ok); err != nil {
		t.Errorf("valid context: %v", err)
	}

	nan, negative := math.NaN(), -0.2
	bad := []*audit.Context{
		{Thresholds: audit.Thresholds{ApprovalHT: -1}},
		{Thresholds: audit.Thresholds{PriceHighRatio: 0.9}},
		{Thresholds: audit.Thresholds{PriceLowRatio: 1.1}},
		{Thresholds: audit.Thresholds{DefaultVATRate: &nan}},
		{Thresholds: audit.Thresholds{DefaultVATRate: &negative}},
		{SiteBudgets: map[string]float64{"CH-1": math.Inf(-1)}},
		{PriceStats: map[string]map[string]audit.PriceStats{"S": {"X": {Min: 5, Max: 3}}}},
	}
	for i, c := range bad {
		if err := Context(c); err == nil {
			t.Errorf("case %d: expected error, got nil", i)
		}
	}
}
