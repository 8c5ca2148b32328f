package policy

import "github.com/dshills/poaudit/internal/audit"

func works() *Preset {
	return &Preset{
		Name:        "works",
		Description: "Construction site purchasing: large orders, volatile material prices.",
		Thresholds: audit.Thresholds{
			ApprovalHT:     90000,
			PriceHighRatio: 1.25,
			PriceLowRatio:  0.75,
			DefaultVATRate: rate(audit.DefaultVATRate),
		},
	}
}
