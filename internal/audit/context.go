package audit

import "sort"

// Default policy values used when a context leaves them unset.
const (
	DefaultPriceHighRatio = 1.15
	DefaultPriceLowRatio  = 0.85
	DefaultVATRate        = 0.20
)

// Thresholds are the numeric policy knobs. Zero means "not configured".
type Thresholds struct {
	// ApprovalHT is the amount above which an order needs a higher approval level.
	ApprovalHT     float64  `json:"approvalHT,omitempty" yaml:"approvalHT,omitempty"`
	PriceHighRatio float64  `json:"priceHighRatio,omitempty" yaml:"priceHighRatio,omitempty"`
	PriceLowRatio  float64  `json:"priceLowRatio,omitempty" yaml:"priceLowRatio,omitempty"`
	DefaultVATRate *float64 `json:"defaultVatRate,omitempty" yaml:"defaultVatRate,omitempty"`
}

// PriceStats summarises past unit prices for one supplier item.
type PriceStats struct {
	Avg float64 `json:"avg" yaml:"avg"`
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Context is the policy snapshot an audit runs against. Every section is
// optional; a missing section makes its check pass.
type Context struct {
	Thresholds  Thresholds                       `json:"thresholds" yaml:"thresholds"`
	Blacklist   []string                         `json:"blacklist,omitempty" yaml:"blacklist,omitempty"`
	SiteBudgets map[string]float64               `json:"siteBudgets,omitempty" yaml:"siteBudgets,omitempty"`
	PriceStats  map[string]map[string]PriceStats `json:"priceStats,omitempty" yaml:"priceStats,omitempty"`
}

// IsBlacklisted reports whether supplierID is on the blacklist.
func (c *Context) IsBlacklisted(supplierID string) bool {
	for _, id := range c.Blacklist {
		if id == supplierID {
			return true
		}
	}
	return false
}

// PriceStatsFor returns the statistics for a supplier item, if known.
func (c *Context) PriceStatsFor(supplierID, itemRef string) (PriceStats, bool) {
	items, ok := c.PriceStats[supplierID]
	if !ok {
		return PriceStats{}, false
	}
	s, ok := items[itemRef]
	return s, ok
}

// RemainingBudget returns the remaining budget of a site, if known.
func (c *Context) RemainingBudget(site string) (float64, bool) {
	v, ok := c.SiteBudgets[site]
	return v, ok
}

func (c *Context) priceHighRatio() float64 {
	if c.Thresholds.PriceHighRatio > 0 {
		return c.Thresholds.PriceHighRatio
	}
	return DefaultPriceHighRatio
}

func (c *Context) priceLowRatio() float64 {
	if c.Thresholds.PriceLowRatio > 0 {
		return c.Thresholds.PriceLowRatio
	}
	return DefaultPriceLowRatio
}

func (c *Context) vatRate() float64 {
	if c.Thresholds.DefaultVATRate != nil {
		return *c.Thresholds.DefaultVATRate
	}
	return DefaultVATRate
}

// canonical returns a copy suited for fingerprinting: the blacklist is a set,
// so its order must not influence the digest.
func (c *Context) canonical() Context {
	out := *c
	if len(c.Blacklist) > 0 {
		out.Blacklist = append([]string(nil), c.Blacklist...)
		sort.Strings(out.Blacklist)
	}
	return out
}
