package fingerprint

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf_NestedKeyOrderIgnored(t *testing.T) {
	a := `{"order":{"id":"PO-1","lines":[{"id":"L1","qty":2,"meta":{"b":1,"a":2}}]},"context":{"siteBudgets":{"S2":10,"S1":5}}}`
	b := `{"context":{"siteBudgets":{"S1":5,"S2":10}},"order":{"lines":[{"meta":{"a":2,"b":1},"qty":2,"id":"L1"}],"id":"PO-1"}}`

	fa, err := Of(json.RawMessage(a))
	require.NoError(t, err)
	fb, err := Of([]byte(b))
	require.NoError(t, err)

	assert.Equal(t, fa, fb)
	assert.True(t, strings.HasPrefix(fa, Prefix))
}

func TestOf_MapsBuiltInDifferentInsertionOrder(t *testing.T) {
	m1 := map[string]any{}
	m1["z"] = map[string]any{"y": 1, "x": []any{map[string]any{"q": 1, "p": 2}}}
	m1["a"] = "v"

	m2 := map[string]any{}
	m2["a"] = "v"
	inner := map[string]any{}
	inner["x"] = []any{map[string]any{"p": 2, "q": 1}}
	inner["y"] = 1
	m2["z"] = inner

	f1, err := Of(m1)
	require.NoError(t, err)
	f2, err := Of(m2)
	require.NoError(t, err)
	assert.Equal(t, f1, f2)
}

func TestOf_ArrayOrderMatters(t *testing.T) {
	f1, err := Of(json.RawMessage(`{"lines":["L1","L2"]}`))
	require.NoError(t, err)
	f2, err := Of(json.RawMessage(`{"lines":["L2","L1"]}`))
	require.NoError(t, err)
	assert.NotEqual(t, f1, f2)
}

func TestOf_ValueChangeAtDepthChangesDigest(t *testing.T) {
	f1, err := Of(json.RawMessage(`{"a":{"b":{"c":1}}}`))
	require.NoError(t, err)
	f2, err := Of(json.RawMessage(`{"a":{"b":{"c":2}}}`))
	require.NoError(t, err)
	assert.NotEqual(t, f1, f2)
}

func TestCanonical_Form(t *testing.T) {
	got, err := Canonical(json.RawMessage(`{ "b": [1, 2.50, {"d": null, "c": true}], "a": "é\"" }`))
	require.NoError(t, err)
	assert.Equal(t, `{"a":"é\"","b":[1,2.50,{"c":true,"d":null}]}`, string(got))
}

func TestCanonical_Struct(t *testing.T) {
	type inner struct {
		Z int `json:"z"`
		A int `json:"a"`
	}
	got, err := Canonical(struct {
		Y inner `json:"y"`
		B bool  `json:"b"`
	}{Y: inner{Z: 1, A: 2}, B: true})
	require.NoError(t, err)
	assert.Equal(t, `{"b":true,"y":{"a":2,"z":1}}`, string(got))
}

func TestOf_InvalidJSON(t *testing.T) {
	_, err := Of(json.RawMessage(`{not json`))
	assert.Error(t, err)
}
