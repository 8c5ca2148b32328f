package nomenclature

import (
	"fmt"
	"strings"
)

// Catalog is an ordered, read-only registry of families. Iteration order is
// the order of the source table and decides every first-match lookup.
type Catalog struct {
	families []Family
	byCode   map[Code]int
}

// NewCatalog validates families and builds a catalog preserving their order.
func NewCatalog(families []Family) (*Catalog, error) {
	c := &Catalog{
		families: make([]Family, 0, len(families)),
		byCode:   make(map[Code]int, len(families)),
	}
	for _, f := range families {
		if err := f.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byCode[f.Code]; dup {
			return nil, fmt.Errorf("family %s: duplicate code", f.Code)
		}
		c.byCode[f.Code] = len(c.families)
		c.families = append(c.families, f)
	}
	for _, f := range c.families {
		if f.Parent != "" {
			if _, ok := c.byCode[f.Parent]; !ok {
				return nil, fmt.Errorf("family %s: unknown parent %s", f.Code, f.Parent)
			}
		}
	}
	return c, nil
}

// Families returns the families in catalog order.
func (c *Catalog) Families() []Family {
	out := make([]Family, len(c.families))
	copy(out, c.families)
	return out
}

// Len returns the number of families.
func (c *Catalog) Len() int { return len(c.families) }

// Get returns the family with the exact code.
func (c *Catalog) Get(code Code) (Family, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return Family{}, false
	}
	return c.families[i], true
}

// IsCompatible reports whether a line of lineFamily may sit on an order whose
// primary family is orderFamily. Either entry may declare the exception.
func (c *Catalog) IsCompatible(orderFamily, lineFamily Code) bool {
	if orderFamily == lineFamily {
		return true
	}
	if f, ok := c.Get(lineFamily); ok && f.allows(orderFamily) {
		return true
	}
	if f, ok := c.Get(orderFamily); ok && f.allows(lineFamily) {
		return true
	}
	return false
}

// LineHint carries what is known about a line when inferring its family.
type LineHint struct {
	Code        string
	Designation string
}

// DetectFromLine infers a family for a line. Code matches are tried first:
// the first family whose code or parent code appears in hint.Code wins.
// Otherwise the first family with a keyword found in the designation wins,
// compared case-insensitively.
func (c *Catalog) DetectFromLine(hint LineHint) (Code, bool) {
	if hint.Code != "" {
		for _, f := range c.families {
			if strings.Contains(hint.Code, string(f.Code)) {
				return f.Code, true
			}
			if f.Parent != "" && strings.Contains(hint.Code, string(f.Parent)) {
				return f.Code, true
			}
		}
	}

	designation := strings.ToLower(hint.Designation)
	if designation == "" {
		return "", false
	}
	for _, f := range c.families {
		for _, kw := range f.Keywords {
			if kw != "" && strings.Contains(designation, strings.ToLower(kw)) {
				return f.Code, true
			}
		}
	}
	return "", false
}

// CompatibleFamilies returns code, the families it allows, and the families
// that allow it. Duplicates are removed; after code itself the result follows
// catalog order.
func (c *Catalog) CompatibleFamilies(code Code) []Code {
	out := []Code{code}
	self, known := c.Get(code)
	for _, f := range c.families {
		if f.Code == code {
			continue
		}
		if (known && self.allows(f.Code)) || f.allows(code) {
			out = append(out, f.Code)
		}
	}
	if known {
		// Declared codes missing from the catalog are still part of the set.
		for _, m := range self.AllowMixedWith {
			if _, ok := c.byCode[m]; !ok && !containsCode(out, m) {
				out = append(out, m)
			}
		}
	}
	return out
}

func containsCode(codes []Code, c Code) bool {
	for _, x := range codes {
		if x == c {
			return true
		}
	}
	return false
}
