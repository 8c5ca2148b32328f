package nomenclature

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T, families ...Family) *Catalog {
	t.Helper()
	c, err := NewCatalog(families)
	require.NoError(t, err)
	return c
}

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	require.NotNil(t, c)
	assert.Greater(t, c.Len(), 0)
	for _, f := range c.Families() {
		assert.True(t, f.Code.Valid(), "code %q", f.Code)
	}
}

func TestGet(t *testing.T) {
	c := Default()

	f, ok := c.Get("F10-01")
	require.True(t, ok)
	assert.Equal(t, DomainGoods, f.Domain)

	_, ok = c.Get("F99-99")
	assert.False(t, ok)
}

func TestIsCompatible(t *testing.T) {
	c := testCatalog(t,
		Family{Code: "F10-01", Label: "Granulats", Domain: DomainGoods},
		Family{Code: "F20-01", Label: "Aciers", Domain: DomainGoods},
		Family{Code: "S20-01", Label: "Livraison", Domain: DomainServices, AllowMixedWith: []Code{"F10-01"}},
	)

	tests := []struct {
		name        string
		order, line Code
		want        bool
	}{
		{"same family", "F10-01", "F10-01", true},
		{"line allows order", "F10-01", "S20-01", true},
		{"order allows line", "S20-01", "F10-01", true},
		{"unrelated", "F10-01", "F20-01", false},
		{"unrelated to mixer", "S20-01", "F20-01", false},
		{"unknown line family", "F10-01", "X00-00", false},
		{"unknown equal codes", "X00-00", "X00-00", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsCompatible(tt.order, tt.line))
		})
	}
}

func TestDetectFromLine_CodeMatch(t *testing.T) {
	c := Default()

	code, ok := c.DetectFromLine(LineHint{Code: "REF-F20-01-0042", Designation: "sable 0/4"})
	require.True(t, ok)
	assert.Equal(t, Code("F20-01"), code, "code match wins over keyword match")
}

func TestDetectFromLine_ExactCodeInHint(t *testing.T) {
	c := Default()

	// F10-00 is scanned before its children.
	code, ok := c.DetectFromLine(LineHint{Code: "F10-00/lot2"})
	require.True(t, ok)
	assert.Equal(t, Code("F10-00"), code)
}

func TestDetectFromLine_ParentTieBreakIsCatalogOrder(t *testing.T) {
	// A child listed before its parent wins through its parent code.
	c := testCatalog(t,
		Family{Code: "F10-02", Label: "Bétons", Domain: DomainGoods, Parent: "F10-00"},
		Family{Code: "F10-00", Label: "Matériaux", Domain: DomainGoods},
		Family{Code: "F10-01", Label: "Granulats", Domain: DomainGoods, Parent: "F10-00"},
	)

	code, ok := c.DetectFromLine(LineHint{Code: "lot F10-00"})
	require.True(t, ok)
	assert.Equal(t, Code("F10-02"), code)

	code, ok = c.DetectFromLine(LineHint{Code: "F10-01"})
	require.True(t, ok)
	assert.Equal(t, Code("F10-01"), code)
}

func TestDetectFromLine_KeywordFirstMatchWins(t *testing.T) {
	c := Default()

	// "sable" (F10-01) and "livraison" (S20-01) both hit; F10-01 comes first.
	code, ok := c.DetectFromLine(LineHint{Designation: "Livraison de SABLE 0/4"})
	require.True(t, ok)
	assert.Equal(t, Code("F10-01"), code)
}

func TestDetectFromLine_KeywordTieBreakFollowsCatalogOrder(t *testing.T) {
	first := testCatalog(t,
		Family{Code: "S20-01", Label: "Livraison", Domain: DomainServices, Keywords: []string{"livraison"}},
		Family{Code: "T10-01", Label: "Transport", Domain: DomainTransport, Keywords: []string{"livraison"}},
	)
	second := testCatalog(t,
		Family{Code: "T10-01", Label: "Transport", Domain: DomainTransport, Keywords: []string{"livraison"}},
		Family{Code: "S20-01", Label: "Livraison", Domain: DomainServices, Keywords: []string{"livraison"}},
	)

	got1, ok := first.DetectFromLine(LineHint{Designation: "livraison chantier"})
	require.True(t, ok)
	got2, ok := second.DetectFromLine(LineHint{Designation: "livraison chantier"})
	require.True(t, ok)

	assert.Equal(t, Code("S20-01"), got1)
	assert.Equal(t, Code("T10-01"), got2)
}

func TestDetectFromLine_NoMatch(t *testing.T) {
	c := Default()

	_, ok := c.DetectFromLine(LineHint{Code: "ZZZ", Designation: "prestation inconnue"})
	assert.False(t, ok)

	_, ok = c.DetectFromLine(LineHint{})
	assert.False(t, ok)
}

func TestCompatibleFamilies(t *testing.T) {
	c := testCatalog(t,
		Family{Code: "F10-01", Label: "Granulats", Domain: DomainGoods},
		Family{Code: "F20-01", Label: "Aciers", Domain: DomainGoods, AllowMixedWith: []Code{"T10-01"}},
		Family{Code: "S20-01", Label: "Livraison", Domain: DomainServices, AllowMixedWith: []Code{"F10-01"}},
		Family{Code: "T10-01", Label: "Transport", Domain: DomainTransport, AllowMixedWith: []Code{"F10-01", "F20-01"}},
	)

	assert.Equal(t, []Code{"F10-01", "S20-01", "T10-01"}, c.CompatibleFamilies("F10-01"))
	assert.Equal(t, []Code{"F20-01", "T10-01"}, c.CompatibleFamilies("F20-01"), "declared and reverse entry deduplicated")
	assert.Equal(t, []Code{"T10-01", "F10-01", "F20-01"}, c.CompatibleFamilies("T10-01"))
	assert.Equal(t, []Code{"X00-00"}, c.CompatibleFamilies("X00-00"))
}

func TestCompatibleFamilies_KeepsDeclaredCodesOutsideCatalog(t *testing.T) {
	c := testCatalog(t,
		Family{Code: "S20-01", Label: "Livraison", Domain: DomainServices, AllowMixedWith: []Code{"F99-01"}},
	)
	assert.Equal(t, []Code{"S20-01", "F99-01"}, c.CompatibleFamilies("S20-01"))
}

func TestNewCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		families []Family
	}{
		{"bad code", []Family{{Code: "F1-01", Label: "x", Domain: DomainGoods}}},
		{"unknown domain", []Family{{Code: "X10-01", Label: "x", Domain: "X"}}},
		{"letter mismatch", []Family{{Code: "S10-01", Label: "x", Domain: DomainGoods}}},
		{"duplicate", []Family{
			{Code: "F10-01", Label: "x", Domain: DomainGoods},
			{Code: "F10-01", Label: "y", Domain: DomainGoods},
		}},
		{"unknown parent", []Family{{Code: "F10-01", Label: "x", Domain: DomainGoods, Parent: "F10-00"}}},
		{"missing label", []Family{{Code: "F10-01", Domain: DomainGoods}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.families)
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_YAMLKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `families:
  - code: T10-01
    label: Transport
    domain: T
    keywords: [livraison]
    allowMixedWith: [F10-01]
  - code: F10-01
    label: Granulats
    domain: F
    keywords: [livraison, sable]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	assert.Equal(t, Code("T10-01"), c.Families()[0].Code)

	code, ok := c.DetectFromLine(LineHint{Designation: "livraison"})
	require.True(t, ok)
	assert.Equal(t, Code("T10-01"), code)
	assert.True(t, c.IsCompatible("F10-01", "T10-01"))
}

func TestParse_JSON(t *testing.T) {
	doc := `{"families": [{"code": "F10-01", "label": "Granulats", "domain": "F"}]}`
	c, err := Parse([]byte(doc))
	require.NoError(t, err)
	_, ok := c.Get("F10-01")
	assert.True(t, ok)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse([]byte("families: []\n"))
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("/nonexistent/catalog.yaml")
	assert.Error(t, err)
}
