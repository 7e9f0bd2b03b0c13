// Package entity defines the typed records that flow out of reconciliation
// and into aggregation, persistence, and export. JSON field names are stable:
// stored records and API payloads round-trip through these tags.
package entity

import (
	"github.com/taxsahaj/taxsahaj/constants"
)

// SalaryFields carries the reconciled content of a Form 16.
type SalaryFields struct {
	EmployeeName     string  `json:"employee_name,omitempty"`
	PAN              string  `json:"pan,omitempty"`
	EmployerName     string  `json:"employer_name,omitempty"`
	BasicSalary      float64 `json:"basic_salary,omitempty"`
	Perquisites      float64 `json:"perquisites,omitempty"`
	HRAReceived      float64 `json:"hra_received,omitempty"`
	GrossSalary      float64 `json:"gross_salary"`
	TotalGrossSalary float64 `json:"total_gross_salary,omitempty"`
	TaxDeducted      float64 `json:"tax_deducted"`
	EPFAmount        float64 `json:"epf_amount,omitempty"`
	ProfessionalTax  float64 `json:"professional_tax,omitempty"`
}

// InterestFields carries the reconciled content of a bank interest certificate.
type InterestFields struct {
	BankName        string  `json:"bank_name,omitempty"`
	AccountNumber   string  `json:"account_number,omitempty"`
	PAN             string  `json:"pan,omitempty"`
	PrincipalAmount float64 `json:"principal_amount,omitempty"`
	InterestAmount  float64 `json:"interest_amount"`
	AccruedInterest float64 `json:"accrued_interest,omitempty"`
	TDSAmount       float64 `json:"tds_amount"`
}

// GainsFields carries the reconciled content of a broker tax P&L statement.
type GainsFields struct {
	ShortTerm    float64 `json:"short_term_capital_gains,omitempty"`
	LongTerm     float64 `json:"long_term_capital_gains,omitempty"`
	Intraday     float64 `json:"intraday_capital_gains,omitempty"`
	Dividend     float64 `json:"dividend_income,omitempty"`
	Total        float64 `json:"total_capital_gains"`
	Transactions int     `json:"number_of_transactions,omitempty"`
}

// InvestmentFields carries the reconciled content of an investment proof.
type InvestmentFields struct {
	EPFAmount       float64 `json:"epf_amount,omitempty"`
	PPFAmount       float64 `json:"ppf_amount,omitempty"`
	LifeInsurance   float64 `json:"life_insurance,omitempty"`
	ELSSAmount      float64 `json:"elss_amount,omitempty"`
	HealthInsurance float64 `json:"health_insurance,omitempty"`
}

// PensionFields carries the reconciled content of an NPS statement.
type PensionFields struct {
	Tier1Contribution    float64 `json:"nps_tier1_contribution"`
	Section80CCD1B       float64 `json:"nps_80ccd1b,omitempty"`
	EmployerContribution float64 `json:"nps_employer_contribution,omitempty"`
}

// FieldSet is a closed tagged union over the category payloads. Exactly one
// pointer is non-nil for a known category; all are nil for Unknown.
type FieldSet struct {
	Salary     *SalaryFields     `json:"salary,omitempty"`
	Interest   *InterestFields   `json:"interest,omitempty"`
	Gains      *GainsFields      `json:"capital_gains,omitempty"`
	Investment *InvestmentFields `json:"investment,omitempty"`
	Pension    *PensionFields    `json:"pension,omitempty"`
}

// Empty reports whether no variant is set.
func (f FieldSet) Empty() bool {
	return f.Salary == nil && f.Interest == nil && f.Gains == nil &&
		f.Investment == nil && f.Pension == nil
}

// ReconciledRecord is the final per-document outcome: one category, one field
// payload, and provenance describing how the fields were obtained.
type ReconciledRecord struct {
	Category         constants.DocCategory `json:"category"`
	TaxYear          string                `json:"tax_year,omitempty"`
	Fields           FieldSet              `json:"fields"`
	ExtractionMethod string                `json:"extraction_method"`
	Confidence       float64               `json:"confidence"`
	Errors           []string              `json:"errors,omitempty"`
	SourceFile       string                `json:"source_file,omitempty"`
	RawExcerpt       string                `json:"raw_excerpt,omitempty"`
}

// Usable reports whether the record should feed aggregation.
func (r ReconciledRecord) Usable() bool {
	return r.Category != constants.Unknown && !r.Fields.Empty()
}
