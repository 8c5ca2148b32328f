package nomenclature

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// file is the on-disk catalog layout. JSON is accepted too since it is
// valid YAML.
type file struct {
	Families []Family `yaml:"families"`
}

// LoadFile reads a catalog from a YAML or JSON file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog document. Families keep their document order.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(f.Families) == 0 {
		return nil, fmt.Errorf("parsing catalog: no families defined")
	}
	return NewCatalog(f.Families)
}
