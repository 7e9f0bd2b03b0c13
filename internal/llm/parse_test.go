package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var salaryFields = []string{"gross_salary", "tax_deducted", "employer_name", "financial_year"}

func TestParseCompletionStrictJSON(t *testing.T) {
	m, ok := ParseCompletion(`{"gross_salary": 1200000.0, "tax_deducted": 117000.0}`, salaryFields)
	require.True(t, ok)
	assert.Equal(t, 1200000.0, m["gross_salary"])
	assert.Equal(t, 117000.0, m["tax_deducted"])
}

func TestParseCompletionIsolatesBraces(t *testing.T) {
	raw := "Here is the extracted data:\n```json\n{\"gross_salary\": 500000}\n```\nLet me know if you need anything else."
	m, ok := ParseCompletion(raw, salaryFields)
	require.True(t, ok)
	assert.Equal(t, 500000.0, m["gross_salary"])
}

func TestParseCompletionRepairsTrailingCommaAndComments(t *testing.T) {
	raw := `{
		"gross_salary": 1200000.0, // from Part A
		"tax_deducted": 117000.0,
	}`
	m, ok := ParseCompletion(raw, salaryFields)
	require.True(t, ok)
	assert.Equal(t, 1200000.0, m["gross_salary"])
	assert.Equal(t, 117000.0, m["tax_deducted"])
}

func TestParseCompletionRepairsSingleQuotedKeys(t *testing.T) {
	raw := `{'gross_salary': 900000, "tax_deducted": 45000}`
	m, ok := ParseCompletion(raw, salaryFields)
	require.True(t, ok)
	assert.Equal(t, 900000.0, m["gross_salary"])
}

func TestParseCompletionScrapeFallback(t *testing.T) {
	// hopelessly broken JSON, but field values are present
	raw := `The values are "gross_salary": 1,50,000.50 and "employer_name": "XYZ LTD" with {{{ garbage`
	m, ok := ParseCompletion(raw, salaryFields)
	require.True(t, ok)
	assert.Equal(t, 150000.50, m["gross_salary"])
	assert.Equal(t, "XYZ LTD", m["employer_name"])
}

func TestParseCompletionScrapeIgnoresUnknownFields(t *testing.T) {
	raw := `"gross_salary": 100000 and "random_key": 42 but no valid json`
	m, ok := ParseCompletion(raw, salaryFields)
	require.True(t, ok)
	assert.Contains(t, m, "gross_salary")
	assert.NotContains(t, m, "random_key")
}

func TestParseCompletionApologyRejected(t *testing.T) {
	_, ok := ParseCompletion("I apologize, but I cannot extract data from this document.", salaryFields)
	assert.False(t, ok)
}

func TestParseCompletionEmptyRejected(t *testing.T) {
	_, ok := ParseCompletion("   ", salaryFields)
	assert.False(t, ok)

	_, ok = ParseCompletion("no braces and no known fields here", salaryFields)
	assert.False(t, ok)
}

func TestParseCompletionDropsSentinels(t *testing.T) {
	raw := `{"gross_salary": 1200000.0, "employer_name": "EXTRACT_FROM_DOCUMENT", "financial_year": "n/a"}`
	m, ok := ParseCompletion(raw, salaryFields)
	require.True(t, ok)
	assert.NotContains(t, m, "employer_name")
	assert.NotContains(t, m, "financial_year")
	assert.Contains(t, m, "gross_salary")
}
