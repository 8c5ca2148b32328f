package order

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
)

// Document holds a purchase order loaded from disk with its raw content hash.
type Document struct {
	Path  string
	Hash  string // "sha256:<hex>" of the file bytes
	Order *PurchaseOrder
}

// Load reads a purchase order JSON file and hashes its bytes.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading order file: %w", err)
	}

	o, err := Decode(data)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	return &Document{
		Path:  path,
		Hash:  fmt.Sprintf("sha256:%x", sum),
		Order: o,
	}, nil
}

// Decode parses a purchase order from JSON. Unknown fields are rejected so
// that misspelled optional fields do not silently disable a check.
func Decode(data []byte) (*PurchaseOrder, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var o PurchaseOrder
	if err := dec.Decode(&o); err != nil {
		return nil, fmt.Errorf("parsing order: %w", err)
	}
	return &o, nil
}
