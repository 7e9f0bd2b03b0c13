// Package classify infers a document's category from its filename and text.
// Filename keywords win over content keywords because users tend to name
// uploads descriptively; content matching is the fallback, Unknown the default.
package classify

import (
	"strings"

	"github.com/taxsahaj/taxsahaj/constants"
)

type keywordRule struct {
	category constants.DocCategory
	keywords []string
}

// Filename rules are checked in order; first hit wins.
var filenameRules = []keywordRule{
	{constants.Form16, []string{"form 16", "form16", "form-16", "form_16", "salary certificate", "tds certificate", "payslip", "salary slip"}},
	{constants.BankInterest, []string{"interest certificate", "bank interest", "interest_certificate", "fd interest"}},
	{constants.CapitalGains, []string{"capital gains", "capital_gains", "tax pnl", "tax p&l", "pnl statement", "holdings statement"}},
	{constants.NPSStatement, []string{"nps", "pension statement", "tier 1", "tier-1"}},
	{constants.Investment, []string{"mutual", "fund", "investment", "elss", "ppf", "epf", "insurance premium"}},
}

var contentRules = []keywordRule{
	{constants.Form16, []string{"form 16", "form16", "certificate under section 203", "amount paid/credited", "salary as per provisions"}},
	{constants.BankInterest, []string{"interest certificate", "bank interest", "accrued interest", "deposit number"}},
	{constants.CapitalGains, []string{"capital gains", "ltcg", "stcg", "short term p&l", "long term p&l"}},
	{constants.NPSStatement, []string{"nps transaction statement", "tier i", "tier 1", "80ccd(1b)", "voluntary contributions"}},
	{constants.Investment, []string{"mutual fund", "elss", "ppf", "epf", "lic", "premium paid", "80c"}},
}

// Content matching looks only at the head of the document; category markers
// sit on the first page of every statement format handled here.
const maxContentChars = 4000

// Classify returns a category for the document. It is pure and total: any
// input yields a category, defaulting to Unknown.
func Classify(filename, text string) constants.DocCategory {
	if cat, ok := match(filenameRules, strings.ToLower(filename)); ok {
		return cat
	}
	if len(text) > maxContentChars {
		text = text[:maxContentChars]
	}
	if cat, ok := match(contentRules, strings.ToLower(text)); ok {
		return cat
	}
	return constants.Unknown
}

func match(rules []keywordRule, haystack string) (constants.DocCategory, bool) {
	if haystack == "" {
		return constants.Unknown, false
	}
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.category, true
			}
		}
	}
	return constants.Unknown, false
}
