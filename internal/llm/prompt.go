package llm

import (
	"fmt"
	"strings"

	"github.com/taxsahaj/taxsahaj/constants"
	"github.com/taxsahaj/taxsahaj/internal/schema"
)

// BuildExtractionPrompt assembles the category-specific extraction request:
// instructions, the field schema, the worked example from the registry, and a
// bounded excerpt of the document text. Deterministic for identical inputs.
func BuildExtractionPrompt(req ExtractRequest) (string, error) {
	s, ok := schema.Lookup(req.Category)
	if !ok {
		return "", fmt.Errorf("no extraction schema for category %q", req.Category)
	}

	excerpt := req.Text
	if len(excerpt) > MaxExcerptChars {
		excerpt = excerpt[:MaxExcerptChars]
	}

	var b strings.Builder
	b.WriteString("You are an expert document analyzer for Indian financial documents.\n")
	fmt.Fprintf(&b, "Your task is to extract information from the following %s document.\n", req.Category)
	b.WriteString("Respond with ONLY a valid JSON object that strictly adheres to the schema below. Do not include any explanations or apologies.\n\n")

	b.WriteString("HERE IS AN EXAMPLE:\nTEXT:\n")
	b.WriteString(s.Example.Text)
	b.WriteString("\nJSON:\n```json\n")
	b.WriteString(s.Example.JSON)
	b.WriteString("\n```\n\n")

	if req.Filename != "" {
		fmt.Fprintf(&b, "SOURCE FILE: %s\n", req.Filename)
	}
	b.WriteString("TEXT TO ANALYZE:\n")
	b.WriteString(excerpt)
	b.WriteString("\n\nJSON SCHEMA FIELDS:\n")
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "- %s (%s)%s\n", f.Name, f.Type, requiredMark(f.Required))
	}

	b.WriteString("\nCRITICAL RULES:\n")
	b.WriteString("1. Provide only the JSON object as output.\n")
	b.WriteString("2. All numerical values must be numbers, not strings. Use 0.0 if a value is not found.\n")
	fmt.Fprintf(&b, "3. If a string value is not found, use %q.\n", NotFoundSentinel)
	b.WriteString("4. Use only the exact field names listed above; do not add fields.\n")
	b.WriteString("5. financial_year must use the form \"YYYY-YY\", e.g. \"2024-25\".\n")

	if rules := categoryRules(req.Category); rules != "" {
		b.WriteString("\n")
		b.WriteString(rules)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func requiredMark(required bool) string {
	if required {
		return " [required]"
	}
	return ""
}

// categoryRules encodes the per-category domain guidance. The salary rules
// call out the quarterly-versus-annual confusion explicitly: Part A of the
// certificate lists four quarterly "amount paid/credited" entries whose sum is
// the authoritative gross salary, while the tax-deducted column is not.
func categoryRules(cat constants.DocCategory) string {
	switch cat {
	case constants.Form16:
		return strings.TrimSpace(`
For salary certificates (Form 16):
- gross_salary: the annual total of the four quarterly "amount paid/credited" entries in Part A,
  or "Income chargeable under the head Salaries" in Part B. NEVER use the tax-deducted column as salary.
- total_gross_salary: the Part B annual total including perquisites (section 17(1) + 17(2)).
- basic_salary: "Salary as per provisions contained in section 17(1)".
- perquisites: "Value of perquisites under section 17(2)".
- hra_received: "House rent allowance under section 10(13A)".
- tax_deducted: "Total tax deducted" across all four quarters.
- professional_tax: "Tax on employment under section 16(iii)", usually 200-2400 annually.`)
	case constants.BankInterest:
		return strings.TrimSpace(`
The text contains a table of deposits and a summary row. Find the line that starts with "Total"
and read its four numeric columns in order: principal amount, interest amount, accrued interest, tax deducted.`)
	case constants.CapitalGains:
		return strings.TrimSpace(`
For capital gains reports:
- Sum all short-term entries into short_term_capital_gains and all long-term entries into long_term_capital_gains.
- total_capital_gains = short term + long term (+ intraday if present). Losses are negative numbers.
- Prefer summary rows over per-transaction rows.`)
	default:
		return ""
	}
}
