package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxsahaj/taxsahaj/constants"
	"github.com/taxsahaj/taxsahaj/internal/schema"
)

func form16Schema(t *testing.T) schema.ExtractionSchema {
	t.Helper()
	s, ok := schema.Lookup(constants.Form16)
	require.True(t, ok)
	return s
}

func TestNormalizeFieldsRenamesSynonyms(t *testing.T) {
	m := NormalizeFields(map[string]any{
		"total_salary": 1200000.0,
		"total_tax":    117000.0,
	}, form16Schema(t), nil)

	assert.Equal(t, 1200000.0, m["gross_salary"])
	assert.Equal(t, 117000.0, m["tax_deducted"])
	assert.NotContains(t, m, "total_salary")
}

func TestNormalizeFieldsCoercesCurrencyStrings(t *testing.T) {
	m := NormalizeFields(map[string]any{
		"gross_salary": "₹12,00,000.00",
		"tax_deducted": "Rs 117000",
	}, form16Schema(t), nil)

	assert.Equal(t, 1200000.0, m["gross_salary"])
	assert.Equal(t, 117000.0, m["tax_deducted"])
}

func TestNormalizeFieldsStripsUnknownKeys(t *testing.T) {
	m := NormalizeFields(map[string]any{
		"gross_salary": 100000.0,
		"chatter":      "ignore me",
	}, form16Schema(t), nil)

	assert.NotContains(t, m, "chatter")
	assert.Contains(t, m, "gross_salary")
}

func TestNormalizeFieldsDropsNonNumericCurrency(t *testing.T) {
	m := NormalizeFields(map[string]any{
		"gross_salary": "twelve lakh",
	}, form16Schema(t), nil)
	assert.NotContains(t, m, "gross_salary")
}

func TestNormalizeFieldsYear(t *testing.T) {
	m := NormalizeFields(map[string]any{
		"financial_year": "FY 2024-2025",
		"gross_salary":   1.0,
	}, form16Schema(t), nil)
	assert.Equal(t, "2024-25", m["financial_year"])
}

func TestCoerceAmount(t *testing.T) {
	for _, tc := range []struct {
		in   any
		want float64
		ok   bool
	}{
		{1500.5, 1500.5, true},
		{42, 42, true},
		{"₹1,50,000.00", 150000, true},
		{"Rs 5000", 5000, true},
		{"1200000", 1200000, true},
		{"", 0, false},
		{"abc", 0, false},
		{nil, 0, false},
	} {
		got, ok := CoerceAmount(tc.in)
		assert.Equal(t, tc.ok, ok, "input %v", tc.in)
		if ok {
			assert.Equal(t, tc.want, got, "input %v", tc.in)
		}
	}
}

func TestNormalizeYear(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-25", "2024-25", true},
		{"FY 2024-25", "2024-25", true},
		{"2024-2025", "2024-25", true},
		{"fy 2023-24", "2023-24", true},
		{"2024-26", "", false},
		{"2024", "", false},
		{"garbage", "", false},
	} {
		got, ok := NormalizeYear(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestBuildExtractionPromptContainsContract(t *testing.T) {
	prompt, err := BuildExtractionPrompt(ExtractRequest{
		Category: constants.Form16,
		Text:     "FORM 16 document body",
		Filename: "form16.pdf",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "FORM 16 document body")
	assert.Contains(t, prompt, "gross_salary")
	assert.Contains(t, prompt, "[required]")
	assert.Contains(t, prompt, NotFoundSentinel)
	assert.Contains(t, prompt, "amount paid/credited")
}

func TestBuildExtractionPromptTruncatesExcerpt(t *testing.T) {
	long := make([]byte, MaxExcerptChars*2)
	for i := range long {
		long[i] = 'a'
	}
	prompt, err := BuildExtractionPrompt(ExtractRequest{
		Category: constants.BankInterest,
		Text:     string(long),
	})
	require.NoError(t, err)
	assert.Less(t, len(prompt), MaxExcerptChars+5000)
}

func TestBuildExtractionPromptUnknownCategory(t *testing.T) {
	_, err := BuildExtractionPrompt(ExtractRequest{Category: constants.Unknown})
	assert.Error(t, err)
}

func TestValidateAgainstSchemaRoundTrip(t *testing.T) {
	s := form16Schema(t)
	schemaMap := BuildFieldJSONSchema(s)

	err := ValidateAgainstSchema(schemaMap, map[string]any{
		"gross_salary":   1200000.0,
		"tax_deducted":   117000.0,
		"financial_year": "2024-25",
	})
	assert.NoError(t, err)

	err = ValidateAgainstSchema(schemaMap, map[string]any{
		"gross_salary": "not a number",
		"tax_deducted": 1.0,
	})
	assert.Error(t, err)
}
