package reconcile

import (
	"github.com/taxsahaj/taxsahaj/constants"
	"github.com/taxsahaj/taxsahaj/internal/entity"
)

// Materialize converts a reconciled field mapping into the category's typed
// payload. Unknown keys were already stripped by normalization; anything left
// unmapped here is simply not represented on the record.
func Materialize(cat constants.DocCategory, fields map[string]any) entity.FieldSet {
	switch cat {
	case constants.Form16:
		return entity.FieldSet{Salary: &entity.SalaryFields{
			EmployeeName:     str(fields, "employee_name"),
			PAN:              str(fields, "pan"),
			EmployerName:     str(fields, "employer_name"),
			BasicSalary:      num(fields, "basic_salary"),
			Perquisites:      num(fields, "perquisites"),
			HRAReceived:      num(fields, "hra_received"),
			GrossSalary:      num(fields, "gross_salary"),
			TotalGrossSalary: num(fields, "total_gross_salary"),
			TaxDeducted:      num(fields, "tax_deducted"),
			EPFAmount:        num(fields, "epf_amount"),
			ProfessionalTax:  num(fields, "professional_tax"),
		}}
	case constants.BankInterest:
		return entity.FieldSet{Interest: &entity.InterestFields{
			BankName:        str(fields, "bank_name"),
			AccountNumber:   str(fields, "account_number"),
			PAN:             str(fields, "pan"),
			PrincipalAmount: num(fields, "principal_amount"),
			InterestAmount:  num(fields, "interest_amount"),
			AccruedInterest: num(fields, "accrued_interest"),
			TDSAmount:       num(fields, "tds_amount"),
		}}
	case constants.CapitalGains:
		return entity.FieldSet{Gains: &entity.GainsFields{
			ShortTerm:    num(fields, "short_term_capital_gains"),
			LongTerm:     num(fields, "long_term_capital_gains"),
			Intraday:     num(fields, "intraday_capital_gains"),
			Dividend:     num(fields, "dividend_income"),
			Total:        num(fields, "total_capital_gains"),
			Transactions: int(num(fields, "number_of_transactions")),
		}}
	case constants.Investment:
		return entity.FieldSet{Investment: &entity.InvestmentFields{
			EPFAmount:       num(fields, "epf_amount"),
			PPFAmount:       num(fields, "ppf_amount"),
			LifeInsurance:   num(fields, "life_insurance"),
			ELSSAmount:      num(fields, "elss_amount"),
			HealthInsurance: num(fields, "health_insurance"),
		}}
	case constants.NPSStatement:
		return entity.FieldSet{Pension: &entity.PensionFields{
			Tier1Contribution:    num(fields, "nps_tier1_contribution"),
			Section80CCD1B:       num(fields, "nps_80ccd1b"),
			EmployerContribution: num(fields, "nps_employer_contribution"),
		}}
	default:
		return entity.FieldSet{}
	}
}

func num(fields map[string]any, key string) float64 {
	v, _ := asAmount(fields[key])
	return v
}

func str(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}
