// Package fingerprint computes stable digests of structured values.
//
// Values are first rendered to JSON, then rewritten in a canonical form:
// object keys sorted at every depth, numbers kept verbatim, no insignificant
// whitespace. Two values that differ only in key order anywhere in the tree
// therefore share a digest.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
)

// Prefix identifies the digest algorithm in a fingerprint string.
const Prefix = "sha256:"

// Of returns the "sha256:<hex>" digest of v's canonical form. A []byte or
// json.RawMessage argument is treated as a JSON document.
func Of(v any) (string, error) {
	canon, err := Canonical(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return fmt.Sprintf("%s%x", Prefix, sum), nil
}

// Canonical returns the canonical JSON encoding of v.
func Canonical(v any) ([]byte, error) {
	var doc []byte
	switch x := v.(type) {
	case json.RawMessage:
		doc = x
	case []byte:
		doc = x
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding value: %w", err)
		}
		doc = b
	}

	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decoding value: %w", err)
	}

	var buf bytes.Buffer
	if err := writeCanonical(&buf, tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeScalar(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, x[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case json.Number:
		buf.WriteString(x.String())
	default:
		return writeScalar(buf, x)
	}
	return nil
}

func writeScalar(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding scalar: %w", err)
	}
	buf.Write(b)
	return nil
}
