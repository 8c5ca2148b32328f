package policy

import "github.com/dshills/poaudit/internal/audit"

// strict narrows the price band and lowers the approval threshold, for
// entities under tighter spending control.
func strict() *Preset {
	return &Preset{
		Name:        "strict",
		Description: "Reduced approval threshold and a narrow price band.",
		Thresholds: audit.Thresholds{
			ApprovalHT:     5000,
			PriceHighRatio: 1.05,
			PriceLowRatio:  0.95,
			DefaultVATRate: rate(audit.DefaultVATRate),
		},
	}
}
