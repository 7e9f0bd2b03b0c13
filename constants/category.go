package constants

import (
	"strings"
)

// DocCategory is the closed set of document categories the pipeline understands.
type DocCategory string

const (
	Form16       DocCategory = "form_16"
	BankInterest DocCategory = "bank_interest_certificate"
	CapitalGains DocCategory = "capital_gains"
	Investment   DocCategory = "investment"
	NPSStatement DocCategory = "nps_statement"
	Unknown      DocCategory = "unknown"
)

var allCategories = []DocCategory{
	Form16,
	BankInterest,
	CapitalGains,
	Investment,
	NPSStatement,
	Unknown,
}

// AsStringSlice returns every category, Unknown included, as plain strings.
func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Known reports whether cat is a member of the closed set other than Unknown.
func Known(cat DocCategory) bool {
	for _, c := range allCategories {
		if c == cat {
			return c != Unknown
		}
	}
	return false
}

// Canonicalize maps free-form labels (completion output, user input) onto the
// closed category set. The bool is false when the label fell back to Unknown.
func Canonicalize(input string) (DocCategory, bool) {
	if input == "" {
		return Unknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	// synonyms map
	synonyms := map[string]DocCategory{
		"form16":               Form16,
		"salary_certificate":   Form16,
		"tds_certificate":      Form16,
		"payslip":              Form16,
		"interest_certificate": BankInterest,
		"bank_interest":        BankInterest,
		"fd_interest":          BankInterest,
		"capital_gain":         CapitalGains,
		"pnl_statement":        CapitalGains,
		"tax_pnl":              CapitalGains,
		"elss":                 Investment,
		"mutual_fund":          Investment,
		"ppf":                  Investment,
		"insurance":            Investment,
		"nps":                  NPSStatement,
		"pension_statement":    NPSStatement,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	// check if it matches any category string
	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, cat != Unknown
		}
	}

	return Unknown, false
}
