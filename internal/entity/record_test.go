package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxsahaj/taxsahaj/constants"
)

func TestReconciledRecordJSONRoundTrip(t *testing.T) {
	rec := ReconciledRecord{
		Category: constants.Form16,
		TaxYear:  "2024-25",
		Fields: FieldSet{Salary: &SalaryFields{
			EmployeeName:    "RAVI KUMAR",
			PAN:             "ABCDE1234F",
			GrossSalary:     1200000,
			TaxDeducted:     117000,
			ProfessionalTax: 2400,
		}},
		ExtractionMethod: "completion-with-pattern-correction",
		Confidence:       0.85,
		Errors:           []string{"gross_salary: completion 1500000.00 replaced by pattern 1200000.00"},
		SourceFile:       "form16.pdf",
	}

	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var got ReconciledRecord
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, rec, got)
}

func TestReconciledRecordStableFieldNames(t *testing.T) {
	rec := ReconciledRecord{
		Category:         constants.BankInterest,
		TaxYear:          "2023-24",
		Fields:           FieldSet{Interest: &InterestFields{InterestAmount: 5000, TDSAmount: 510}},
		ExtractionMethod: "pattern",
		Confidence:       0.85,
	}

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	s := string(b)

	assert.Contains(t, s, `"category":"bank_interest_certificate"`)
	assert.Contains(t, s, `"tax_year":"2023-24"`)
	assert.Contains(t, s, `"interest_amount":5000`)
	assert.Contains(t, s, `"tds_amount":510`)
	assert.Contains(t, s, `"extraction_method":"pattern"`)
	// unset variants stay out of the payload
	assert.NotContains(t, s, `"salary"`)
	assert.NotContains(t, s, `"capital_gains"`)
}

func TestFieldSetEmpty(t *testing.T) {
	assert.True(t, FieldSet{}.Empty())
	assert.False(t, FieldSet{Pension: &PensionFields{}}.Empty())
}

func TestUsable(t *testing.T) {
	assert.False(t, ReconciledRecord{Category: constants.Unknown}.Usable())
	assert.False(t, ReconciledRecord{Category: constants.Form16}.Usable())
	assert.True(t, ReconciledRecord{
		Category: constants.Form16,
		Fields:   FieldSet{Salary: &SalaryFields{GrossSalary: 1}},
	}.Usable())
}
