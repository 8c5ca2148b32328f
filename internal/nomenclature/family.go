package nomenclature

import (
	"fmt"
	"regexp"
)

// Code identifies a family: a domain letter followed by two numeric segments,
// e.g. "F10-01".
type Code string

var codePattern = regexp.MustCompile(`^[A-Z][0-9]{2}-[0-9]{2}$`)

// Valid reports whether c is well formed.
func (c Code) Valid() bool {
	return codePattern.MatchString(string(c))
}

// Domain is the first letter of a family code.
type Domain string

const (
	DomainGoods      Domain = "F"
	DomainServices   Domain = "S"
	DomainConsulting Domain = "C"
	DomainTransport  Domain = "T"
	DomainLogistics  Domain = "L"
)

// IsValidDomain reports whether d is one of the defined domains.
func IsValidDomain(d Domain) bool {
	switch d {
	case DomainGoods, DomainServices, DomainConsulting, DomainTransport, DomainLogistics:
		return true
	}
	return false
}

// Family is an immutable catalog entry.
type Family struct {
	Code           Code     `json:"code" yaml:"code"`
	Label          string   `json:"label" yaml:"label"`
	Domain         Domain   `json:"domain" yaml:"domain"`
	Parent         Code     `json:"parent,omitempty" yaml:"parent,omitempty"`
	CPV            []string `json:"cpv,omitempty" yaml:"cpv,omitempty"`
	Keywords       []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	AllowMixedWith []Code   `json:"allowMixedWith,omitempty" yaml:"allowMixedWith,omitempty"`
}

// allows reports whether f declares other in its AllowMixedWith list.
func (f Family) allows(other Code) bool {
	for _, c := range f.AllowMixedWith {
		if c == other {
			return true
		}
	}
	return false
}

func (f Family) validate() error {
	if !f.Code.Valid() {
		return fmt.Errorf("family %q: code must match L00-00", f.Code)
	}
	if !IsValidDomain(f.Domain) {
		return fmt.Errorf("family %s: unknown domain %q", f.Code, f.Domain)
	}
	if string(f.Code[:1]) != string(f.Domain) {
		return fmt.Errorf("family %s: code letter does not match domain %q", f.Code, f.Domain)
	}
	if f.Parent != "" && !f.Parent.Valid() {
		return fmt.Errorf("family %s: parent %q is not a valid code", f.Code, f.Parent)
	}
	if f.Label == "" {
		return fmt.Errorf("family %s: label is required", f.Code)
	}
	return nil
}
