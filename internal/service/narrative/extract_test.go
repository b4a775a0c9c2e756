package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestExtractJSONStrictParse(t *testing.T) {
	var p payload
	err := ExtractJSON(`{"name": "alpha", "count": 2}`, &p)
	require.NoError(t, err)
	assert.Equal(t, "alpha", p.Name)
	assert.Equal(t, 2, p.Count)
}

func TestExtractJSONEmbeddedInProse(t *testing.T) {
	raw := `Sure! Here is the result you asked for:

{"name": "beta", "count": 7}

Let me know if you need anything else.`

	var p payload
	err := ExtractJSON(raw, &p)
	require.NoError(t, err)
	assert.Equal(t, "beta", p.Name)
}

func TestExtractJSONCodeFence(t *testing.T) {
	raw := "```json\n{\"name\": \"gamma\", \"count\": 1}\n```"

	var p payload
	err := ExtractJSON(raw, &p)
	require.NoError(t, err)
	assert.Equal(t, "gamma", p.Name)
}

func TestExtractJSONIgnoresBracesInStrings(t *testing.T) {
	raw := `prefix {"name": "has } brace", "count": 3} suffix`

	var p payload
	err := ExtractJSON(raw, &p)
	require.NoError(t, err)
	assert.Equal(t, "has } brace", p.Name)
}

func TestExtractJSONNestedObject(t *testing.T) {
	raw := `text {"outer": {"name": "delta", "count": 4}} more text`

	var p struct {
		Outer payload `json:"outer"`
	}
	err := ExtractJSON(raw, &p)
	require.NoError(t, err)
	assert.Equal(t, "delta", p.Outer.Name)
}

func TestExtractJSONControlCharacterRetry(t *testing.T) {
	// Raw tab inside a string value is invalid JSON until escaped.
	raw := "{\"name\": \"tab\there\", \"count\": 5}"

	var p payload
	err := ExtractJSON(raw, &p)
	require.NoError(t, err)
	assert.Equal(t, "tab\there", p.Name)
}

func TestExtractJSONPrettyPrintedWithControlCharacter(t *testing.T) {
	// A pretty-printed object whose only defect is a raw newline inside
	// a string value. The escape pass must leave the inter-token
	// newlines alone or the retry can never parse.
	raw := "{\n  \"name\": \"line one\nline two\",\n  \"count\": 6\n}"

	var p payload
	err := ExtractJSON(raw, &p)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", p.Name)
	assert.Equal(t, 6, p.Count)
}

func TestExtractJSONFailures(t *testing.T) {
	var p payload
	assert.Error(t, ExtractJSON("", &p))
	assert.Error(t, ExtractJSON("no json here at all", &p))
	assert.Error(t, ExtractJSON("unbalanced { forever", &p))
}

func TestScanObjectFindsFirstBalancedRegion(t *testing.T) {
	region, ok := scanObject(`junk {"a": 1} {"b": 2}`)
	require.True(t, ok)
	assert.Equal(t, `{"a": 1}`, region)
}
