package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxsahaj/taxsahaj/constants"
)

const form16Quarterly = `FORM 16
Employee Name: RAVI KUMAR
PAN: ABCDE1234F
Q1: Salary: 3,00,000.00, Tax: 30,000.00
Q2: Salary: 3,00,000.00, Tax: 30,000.00
Q3: Salary: 3,00,000.00, Tax: 30,000.00
Q4: Salary: 3,00,000.00, Tax: 30,000.00
FY: 2024-25`

func TestExtractSalaryQuarterlySum(t *testing.T) {
	p := NewPatternExtractor(nil)
	cand := p.Extract(constants.Form16, RawDocumentText{Text: form16Quarterly})
	require.NotNil(t, cand)

	assert.Equal(t, SourcePattern, cand.Source)
	assert.Equal(t, PatternConfidence, cand.Confidence)
	assert.Equal(t, 1200000.0, cand.Fields["gross_salary"])
	assert.Equal(t, 120000.0, cand.Fields["tax_deducted"])
	assert.Equal(t, "ABCDE1234F", cand.Fields["pan"])
	assert.Equal(t, "RAVI KUMAR", cand.Fields["employee_name"])
	assert.Equal(t, "2024-25", cand.Fields["financial_year"])
}

func TestExtractSalaryPartBOverridesDisagreeingQuarters(t *testing.T) {
	text := `FORM 16
Q1: Salary: 3,00,000.00, Tax: 25,000.00
Q2: Salary: 3,00,000.00, Tax: 25,000.00
Q3: Salary: 3,00,000.00, Tax: 25,000.00
Q4: Salary: 3,00,000.00, Tax: 25,000.00

PART B
1. Gross Salary
(a) Salary as per provisions contained in section 17(1): 13,50,000.00
(b) Value of perquisites under section 17(2): 1,50,000.00
(d) Total: 15,00,000.00
(c) Tax on employment under section 16(iii): 2,400.00`

	p := NewPatternExtractor(nil)
	cand := p.Extract(constants.Form16, RawDocumentText{Text: text})
	require.NotNil(t, cand)

	// quarterly sum is 12,00,000 but Part B reports 15,00,000
	assert.Equal(t, 1500000.0, cand.Fields["gross_salary"])
	assert.Equal(t, 1500000.0, cand.Fields["total_gross_salary"])
	assert.Equal(t, 1350000.0, cand.Fields["basic_salary"])
	assert.Equal(t, 150000.0, cand.Fields["perquisites"])
	assert.Equal(t, 2400.0, cand.Fields["professional_tax"])
	assert.Equal(t, 100000.0, cand.Fields["tax_deducted"])
}

func TestExtractSalaryPartBWithinThresholdKeepsQuarterlySum(t *testing.T) {
	text := `FORM 16
Q1: Salary: 3,00,000.00, Tax: 25,000.00
Q2: Salary: 3,00,000.00, Tax: 25,000.00
Q3: Salary: 3,00,000.00, Tax: 25,000.00
Q4: Salary: 3,00,000.00, Tax: 25,000.00
Gross Salary
(d) Total: 12,00,500.00`

	p := NewPatternExtractor(nil)
	cand := p.Extract(constants.Form16, RawDocumentText{Text: text})
	require.NotNil(t, cand)
	assert.Equal(t, 1200000.0, cand.Fields["gross_salary"])
}

func TestExtractSalaryMissingMinimumReturnsNil(t *testing.T) {
	p := NewPatternExtractor(nil)
	cand := p.Extract(constants.Form16, RawDocumentText{Text: "FORM 16\nEmployee Name: X Y"})
	assert.Nil(t, cand)
}

func TestExtractBankInterestTotalsRow(t *testing.T) {
	text := `State Bank of India
Interest Certificate
Period : 01/04/2023 To 31/03/2024
Deposit Number Branch Principal Amount Interest Amount Accrued Interest Tax Deducted
1234567890 MUMBAI 100000.00 5000.00 100.00 510.00
Total 100000.00 5000.00 100.00 510.00`

	p := NewPatternExtractor(nil)
	cand := p.Extract(constants.BankInterest, RawDocumentText{Text: text})
	require.NotNil(t, cand)

	assert.Equal(t, 100000.0, cand.Fields["principal_amount"])
	assert.Equal(t, 5000.0, cand.Fields["interest_amount"])
	assert.Equal(t, 100.0, cand.Fields["accrued_interest"])
	assert.Equal(t, 510.0, cand.Fields["tds_amount"])
	assert.Equal(t, "State Bank of India", cand.Fields["bank_name"])
	assert.Equal(t, "2023-24", cand.Fields["financial_year"])
}

func TestExtractBankInterestFromSpreadsheetRows(t *testing.T) {
	rows := [][]string{
		{"Deposit Number", "Principal Amount", "Interest Amount", "Accrued Interest", "Tax Deducted"},
		{"1234567890", "250000.00", "17500.00", "300.00", "1750.00"},
		{"Total", "250000.00", "17500.00", "300.00", "1750.00"},
	}

	p := NewPatternExtractor(nil)
	cand := p.Extract(constants.BankInterest, RawDocumentText{Text: "Interest Certificate", Rows: rows})
	require.NotNil(t, cand)

	assert.Equal(t, 17500.0, cand.Fields["interest_amount"])
	assert.Equal(t, 1750.0, cand.Fields["tds_amount"])
}

func TestExtractBankInterestNoTotalsReturnsNil(t *testing.T) {
	p := NewPatternExtractor(nil)
	cand := p.Extract(constants.BankInterest, RawDocumentText{Text: "Interest Certificate with no table"})
	assert.Nil(t, cand)
}

func TestExtractCapitalGainsSumsRepeatedLabels(t *testing.T) {
	text := `Tax P&L Statement FY 2024-25
Equity Segment
Short Term P&L: 30,000.00
Long Term P&L: 1,00,000.00
F&O Segment
Short Term P&L: 15,000.00
Dividends: 3,500.00`

	p := NewPatternExtractor(nil)
	cand := p.Extract(constants.CapitalGains, RawDocumentText{Text: text})
	require.NotNil(t, cand)

	assert.Equal(t, 45000.0, cand.Fields["short_term_capital_gains"])
	assert.Equal(t, 100000.0, cand.Fields["long_term_capital_gains"])
	assert.Equal(t, 3500.0, cand.Fields["dividend_income"])
	// dividends stay out of the gains total
	assert.Equal(t, 145000.0, cand.Fields["total_capital_gains"])
}

func TestExtractCapitalGainsNegativeAmounts(t *testing.T) {
	text := `Tax P&L
STCG: -12,000.00
LTCG: 50,000.00`

	p := NewPatternExtractor(nil)
	cand := p.Extract(constants.CapitalGains, RawDocumentText{Text: text})
	require.NotNil(t, cand)
	assert.Equal(t, -12000.0, cand.Fields["short_term_capital_gains"])
	assert.Equal(t, 38000.0, cand.Fields["total_capital_gains"])
}

func TestExtractCapitalGainsNoLabelsReturnsNil(t *testing.T) {
	p := NewPatternExtractor(nil)
	cand := p.Extract(constants.CapitalGains, RawDocumentText{Text: "Ledger statement, no P&L"})
	assert.Nil(t, cand)
}

func TestExtractInvestmentELSS(t *testing.T) {
	text := `Tax Investment Confirmation
Financial Year: FY 2024-25
Total amount invested in ELSS is RS 120000`

	p := NewPatternExtractor(nil)
	cand := p.Extract(constants.Investment, RawDocumentText{Text: text})
	require.NotNil(t, cand)
	assert.Equal(t, 120000.0, cand.Fields["elss_amount"])
	assert.Equal(t, "2024-25", cand.Fields["financial_year"])
}

func TestExtractPension(t *testing.T) {
	text := `NPS Transaction Statement
For the Financial Year 2024-25
Contribution Details
By Voluntary Contributions 50000.00
Total Contribution 250000.00`

	p := NewPatternExtractor(nil)
	cand := p.Extract(constants.NPSStatement, RawDocumentText{Text: text})
	require.NotNil(t, cand)
	assert.Equal(t, 250000.0, cand.Fields["nps_tier1_contribution"])
	assert.Equal(t, 50000.0, cand.Fields["nps_80ccd1b"])
	assert.Equal(t, "2024-25", cand.Fields["financial_year"])
}

func TestExtractUnknownCategoryReturnsNil(t *testing.T) {
	p := NewPatternExtractor(nil)
	assert.Nil(t, p.Extract(constants.Unknown, RawDocumentText{Text: "anything"}))
}
