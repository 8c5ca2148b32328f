package policy

import "github.com/dshills/poaudit/internal/audit"

func standard() *Preset {
	return &Preset{
		Name:        "standard",
		Description: "Default purchasing rules for goods and services.",
		Thresholds: audit.Thresholds{
			ApprovalHT:     25000,
			PriceHighRatio: audit.DefaultPriceHighRatio,
			PriceLowRatio:  audit.DefaultPriceLowRatio,
			DefaultVATRate: rate(audit.DefaultVATRate),
		},
	}
}
