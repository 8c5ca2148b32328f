package policy

import (
	"fmt"
	"strings"

	"github.com/dshills/poaudit/internal/audit"
)

// Preset is a named set of default thresholds for a class of purchases.
type Preset struct {
	Name        string
	Description string
	Thresholds  audit.Thresholds
}

func rate(v float64) *float64 { return &v }

// Names lists the built-in presets.
var Names = []string{"standard", "strict", "works"}

// Get returns the built-in preset for the given name.
func Get(name string) (*Preset, error) {
	switch name {
	case "standard", "":
		return standard(), nil
	case "strict":
		return strict(), nil
	case "works":
		return works(), nil
	default:
		return nil, fmt.Errorf("unknown policy %q: valid policies are %s", name, strings.Join(Names, ", "))
	}
}

// Apply returns a copy of c whose unset thresholds are taken from the preset.
// Values already present in c win. A nil c yields a context holding only the
// preset thresholds.
func (p *Preset) Apply(c *audit.Context) *audit.Context {
	var out audit.Context
	if c != nil {
		out = *c
	}
	t := &out.Thresholds
	if t.ApprovalHT == 0 {
		t.ApprovalHT = p.Thresholds.ApprovalHT
	}
	if t.PriceHighRatio == 0 {
		t.PriceHighRatio = p.Thresholds.PriceHighRatio
	}
	if t.PriceLowRatio == 0 {
		t.PriceLowRatio = p.Thresholds.PriceLowRatio
	}
	if t.DefaultVATRate == nil && p.Thresholds.DefaultVATRate != nil {
		rate := *p.Thresholds.DefaultVATRate
		t.DefaultVATRate = &rate
	}
	return &out
}

// Describe returns a short multi-line description of the preset.
func (p *Preset) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Policy: %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&sb, "%s\n", p.Description)
	}
	fmt.Fprintf(&sb, "- approval threshold: %.2f HT\n", p.Thresholds.ApprovalHT)
	fmt.Fprintf(&sb, "- price band: %g x min .. %g x max\n", p.Thresholds.PriceLowRatio, p.Thresholds.PriceHighRatio)
	if p.Thresholds.DefaultVATRate != nil {
		fmt.Fprintf(&sb, "- default VAT rate: %g\n", *p.Thresholds.DefaultVATRate)
	}
	return sb.String()
}
