// Package schema holds the per-category extraction schemas: which fields a
// document category is expected to yield, their semantic types, and one worked
// example used for few-shot prompting. The registry is immutable and built once.
package schema

import (
	"github.com/taxsahaj/taxsahaj/constants"
)

// FieldType is the semantic type of an extracted field.
type FieldType string

const (
	Currency FieldType = "currency" // rupee amount, decimal
	Text     FieldType = "text"     // free text (names, PAN, bank)
	Integer  FieldType = "integer"  // counts
	YearStr  FieldType = "year"     // financial year "YYYY-YY"
)

// Field describes one expected field of a category.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
}

// Example is a worked (text, fields) pair included verbatim in prompts.
type Example struct {
	Text string
	JSON string
}

// ExtractionSchema is the full contract for one document category.
type ExtractionSchema struct {
	Category constants.DocCategory
	Fields   []Field
	Example  Example
}

// FieldNames returns the ordered field names of the schema.
func (s ExtractionSchema) FieldNames() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// RequiredNames returns the names of required fields.
func (s ExtractionSchema) RequiredNames() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Lookup returns the schema for a category. The second return is false for
// Unknown and for categories with no registered schema.
func Lookup(cat constants.DocCategory) (ExtractionSchema, bool) {
	s, ok := registry[cat]
	return s, ok
}

var registry = map[constants.DocCategory]ExtractionSchema{
	constants.Form16: {
		Category: constants.Form16,
		Fields: []Field{
			{Name: "employee_name", Type: Text},
			{Name: "pan", Type: Text},
			{Name: "employer_name", Type: Text},
			{Name: "basic_salary", Type: Currency},
			{Name: "perquisites", Type: Currency},
			{Name: "hra_received", Type: Currency},
			{Name: "gross_salary", Type: Currency, Required: true},
			{Name: "total_gross_salary", Type: Currency},
			{Name: "tax_deducted", Type: Currency, Required: true},
			{Name: "epf_amount", Type: Currency},
			{Name: "professional_tax", Type: Currency},
			{Name: "financial_year", Type: YearStr},
		},
		Example: Example{
			Text: `FORM 16
CERTIFICATE UNDER SECTION 203
XYZ COMPANY LIMITED
Employee Name: SAMPLE EMPLOYEE
PAN: SAMPLEF1234

PART A - Summary
Total amount paid/credited: 12,50,000.00
Total tax deducted: 1,50,000.00

PART B - Annexure
1. Gross Salary
(a) Salary as per provisions contained in section 17(1): 11,00,000.00
(b) Value of perquisites under section 17(2): 1,50,000.00
(d) Total: 12,50,000.00

4. Less: Deductions under section 16
(a) Standard deduction under section 16(ia): 50,000.00
(c) Tax on employment under section 16(iii): 2,400.00`,
			JSON: `{
  "employee_name": "SAMPLE EMPLOYEE",
  "pan": "SAMPLEF1234",
  "employer_name": "XYZ COMPANY LIMITED",
  "basic_salary": 1100000.0,
  "perquisites": 150000.0,
  "gross_salary": 1250000.0,
  "total_gross_salary": 1250000.0,
  "tax_deducted": 150000.0,
  "professional_tax": 2400.0,
  "financial_year": "2024-25"
}`,
		},
	},

	constants.BankInterest: {
		Category: constants.BankInterest,
		Fields: []Field{
			{Name: "bank_name", Type: Text},
			{Name: "account_number", Type: Text},
			{Name: "pan", Type: Text},
			{Name: "principal_amount", Type: Currency},
			{Name: "interest_amount", Type: Currency, Required: true},
			{Name: "accrued_interest", Type: Currency},
			{Name: "tds_amount", Type: Currency, Required: true},
			{Name: "financial_year", Type: YearStr},
		},
		Example: Example{
			Text: `Bank of India
Interest Certificate
Period : 01/04/2023 To 31/03/2024

Deposit Number Branch Name Principal Amount Interest Amount Accrued Interest Tax Deducted
1234567890 MUMBAI 100000.00 5000.00 100.00 510.00
Total 100000.00 5000.00 100.00 510.00`,
			JSON: `{
  "bank_name": "Bank of India",
  "account_number": "",
  "pan": "",
  "principal_amount": 100000.00,
  "interest_amount": 5000.00,
  "accrued_interest": 100.00,
  "tds_amount": 510.00,
  "financial_year": "2023-24"
}`,
		},
	},

	constants.CapitalGains: {
		Category: constants.CapitalGains,
		Fields: []Field{
			{Name: "short_term_capital_gains", Type: Currency},
			{Name: "long_term_capital_gains", Type: Currency},
			{Name: "intraday_capital_gains", Type: Currency},
			{Name: "dividend_income", Type: Currency},
			{Name: "total_capital_gains", Type: Currency, Required: true},
			{Name: "number_of_transactions", Type: Integer},
			{Name: "financial_year", Type: YearStr},
		},
		Example: Example{
			Text: `Tax P&L Statement FY 2024-25
Short Term P&L: 45,000.00
Long Term P&L: 1,20,000.00
Dividends: 3,500.00
Number of Transactions: 87`,
			JSON: `{
  "short_term_capital_gains": 45000.0,
  "long_term_capital_gains": 120000.0,
  "dividend_income": 3500.0,
  "total_capital_gains": 165000.0,
  "number_of_transactions": 87,
  "financial_year": "2024-25"
}`,
		},
	},

	constants.Investment: {
		Category: constants.Investment,
		Fields: []Field{
			{Name: "epf_amount", Type: Currency},
			{Name: "ppf_amount", Type: Currency},
			{Name: "life_insurance", Type: Currency},
			{Name: "elss_amount", Type: Currency},
			{Name: "health_insurance", Type: Currency},
			{Name: "financial_year", Type: YearStr},
		},
		Example: Example{
			Text: `Tax Investment Confirmation
Financial Year: FY 2024-25
Total amount invested in ELSS is RS 120000

S no. Mutual Fund Amount(INR)
1 Xyz ELSS Tax Saver Fund Direct Plan Growth 30000
2 ABcd ELSS Tax Saver Fund Direct Growth 60000
3 Quant ELSS Tax Saver Fund Direct Growth 30000`,
			JSON: `{
  "elss_amount": 120000.0,
  "financial_year": "2024-25"
}`,
		},
	},

	constants.NPSStatement: {
		Category: constants.NPSStatement,
		Fields: []Field{
			{Name: "nps_tier1_contribution", Type: Currency},
			{Name: "nps_80ccd1b", Type: Currency},
			{Name: "nps_employer_contribution", Type: Currency},
			{Name: "financial_year", Type: YearStr},
		},
		Example: Example{
			Text: `NPS Transaction Statement
For the Financial Year 2024-25

Contribution Details
By Voluntary Contributions 50000.00
Total Contribution 250000.00`,
			JSON: `{
  "nps_tier1_contribution": 250000.00,
  "nps_80ccd1b": 50000.00,
  "nps_employer_contribution": 0.00,
  "financial_year": "2024-25"
}`,
		},
	},
}
