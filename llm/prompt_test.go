package llm

import (
	"errors"
	"testing"

	"vendorfill/api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	profile := models.Profile{
		CompanyName: "Acme Corp",
		TaxID:       "12-3456789",
	}
	fields := []string{"Vendor Number", "Warehouse Code"}

	prompt, err := BuildPrompt(profile, fields)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Acme Corp")
	assert.Contains(t, prompt, "12-3456789")
	assert.Contains(t, prompt, "Vendor Number")
	assert.Contains(t, prompt, "Warehouse Code")
	assert.Contains(t, prompt, `If unsure, use "N/A"`)
	assert.Contains(t, prompt, "Output ONLY JSON")
}

func TestParseFieldMap(t *testing.T) {
	values, err := ParseFieldMap(`{"Vendor Number": "N/A", "Tax ID": "12-3456789"}`)
	require.NoError(t, err)
	assert.Equal(t, "12-3456789", values["Tax ID"])
	assert.Equal(t, "N/A", values["Vendor Number"])
}

func TestParseFieldMapMalformed(t *testing.T) {
	cases := []string{
		"```json\n{\"a\": \"b\"}\n```",
		"not json at all",
		`{"a": 1}`,
		`["a", "b"]`,
	}
	for _, raw := range cases {
		_, err := ParseFieldMap(raw)
		require.Error(t, err, "input %q", raw)

		var malformed *MalformedOutputError
		require.True(t, errors.As(err, &malformed), "input %q yields %T", raw, err)
		assert.Equal(t, raw, malformed.Raw)
	}
}
