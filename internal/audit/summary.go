package audit

import (
	"fmt"

	"github.com/dshills/poaudit/internal/order"
	"github.com/dshills/poaudit/internal/schema"
)

var actionText = map[schema.Recommendation]string{
	schema.RecommendRequestComplement: "request additional information from the requester",
	schema.RecommendEscalate:          "escalate to a senior approver",
	schema.RecommendReject:            "reject the order",
}

// summarize writes the one-sentence synopsis of a report.
func summarize(orderID string, rec schema.Recommendation, anomalies int, t order.Totals) string {
	if rec == schema.RecommendApprove {
		return fmt.Sprintf("Order %s is compliant: %.2f HT, VAT %s, %.2f TTC.",
			orderID, t.TotalHT, percent(t.VATRate), t.TotalTTC)
	}
	noun := "anomalies"
	if anomalies == 1 {
		noun = "anomaly"
	}
	return fmt.Sprintf("Order %s has %d %s; recommended action: %s (%s).",
		orderID, anomalies, noun, actionText[rec], rec)
}
