package extract

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/taxsahaj/taxsahaj/constants"
)

// PatternExtractor is the deterministic fallback strategy: anchored regular
// expressions against known statement layouts. It is pure and total per
// category; when a document does not carry the minimum fields for its
// category the extractor returns nil instead of a partial candidate.
type PatternExtractor struct {
	Logger *slog.Logger
}

func NewPatternExtractor(logger *slog.Logger) *PatternExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PatternExtractor{Logger: logger}
}

// Extract runs the category's pattern set over the document text. Returns nil
// when the category has no pattern set or the minimum fields were not found.
func (p *PatternExtractor) Extract(cat constants.DocCategory, doc RawDocumentText) *CandidateExtraction {
	var fields map[string]any
	switch cat {
	case constants.Form16:
		fields = extractSalary(doc.Text)
	case constants.BankInterest:
		fields = extractBankInterest(doc)
	case constants.CapitalGains:
		fields = extractCapitalGains(doc.Text)
	case constants.Investment:
		fields = extractInvestment(doc.Text)
	case constants.NPSStatement:
		fields = extractPension(doc.Text)
	default:
		return nil
	}
	if fields == nil {
		p.Logger.Debug("extract.pattern.miss", "category", string(cat))
		return nil
	}

	if y, ok := extractFinancialYear(doc.Text); ok {
		fields["financial_year"] = y
	}

	p.Logger.Info("extract.pattern.ok",
		"category", string(cat),
		"field_count", len(fields),
	)
	return &CandidateExtraction{
		Source:     SourcePattern,
		Confidence: PatternConfidence,
		Fields:     fields,
		RawText:    doc.Text,
	}
}

// When the quarterly sum and the Part B gross disagree by more than this many
// rupees, Part B wins: the quarterly table reports amount paid, which some
// employers fill with taxable pay instead of gross.
const partBOverrideThreshold = 1000.0

const amt = `₹?\s*([\d,]+(?:\.\d+)?)`

var (
	reQuarterly = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Q1|Quarter\s*1|1st\s+Quarter)[:\s]*Salary[:\s]*` + amt + `[,\s]*Tax[:\s]*` + amt),
		regexp.MustCompile(`(?i)(?:Q2|Quarter\s*2|2nd\s+Quarter)[:\s]*Salary[:\s]*` + amt + `[,\s]*Tax[:\s]*` + amt),
		regexp.MustCompile(`(?i)(?:Q3|Quarter\s*3|3rd\s+Quarter)[:\s]*Salary[:\s]*` + amt + `[,\s]*Tax[:\s]*` + amt),
		regexp.MustCompile(`(?i)(?:Q4|Quarter\s*4|4th\s+Quarter)[:\s]*Salary[:\s]*` + amt + `[,\s]*Tax[:\s]*` + amt),
	}
	// Part A summary row of the TDS certificate.
	rePartATotalPaid     = regexp.MustCompile(`(?i)Total\s+amount\s+paid(?:\s*/\s*credited)?[:\s]*` + amt)
	rePartATotalDeducted = regexp.MustCompile(`(?i)Total\s+(?:tax\s+deducted|\(Rs\.\)\s+deducted)[:\s]*` + amt)
	// Part B annexure heads.
	reSection171   = regexp.MustCompile(`(?i)Salary\s+as\s+per\s+provisions?\s+contained\s+in\s+section\s+17\(1\)[^\d₹]*` + amt)
	reSection172   = regexp.MustCompile(`(?i)Value\s+of\s+perquisites\s+(?:under|u/s)\s+section\s+17\(2\)[^\d₹]*` + amt)
	rePartBGross   = regexp.MustCompile(`(?i)Gross\s+Salary[\s\S]{0,400}?\(d\)\s*Total[^\d₹]*` + amt)
	reProfTax      = regexp.MustCompile(`(?i)Tax\s+on\s+employment\s+(?:under|u/s)\s+section\s+16\(iii\)[^\d₹]*` + amt)
	reHRAExempt    = regexp.MustCompile(`(?i)House\s+rent\s+allowance\s+(?:under|u/s)\s+section\s+10\(13A\)[^\d₹]*` + amt)
	rePAN          = regexp.MustCompile(`\b([A-Z]{5}\d{4}[A-Z])\b`)
	reEmployeeName = regexp.MustCompile(`(?im)^Employee\s+Name[:\s]+(.{2,60})$`)
)

// extractSalary handles Form 16. Minimum fields: a gross amount plus a
// tax-deducted amount, from either the quarterly table or the Part A summary.
func extractSalary(text string) map[string]any {
	var quarterGross, quarterTax float64
	quarters := 0
	for _, re := range reQuarterly {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		g, ok1 := parseAmount(m[1])
		t, ok2 := parseAmount(m[2])
		if !ok1 || !ok2 {
			continue
		}
		quarterGross += g
		quarterTax += t
		quarters++
	}

	gross, grossOK := quarterGross, quarters > 0
	tax, taxOK := quarterTax, quarters > 0

	if !grossOK {
		if m := rePartATotalPaid.FindStringSubmatch(text); m != nil {
			gross, grossOK = parseAmount(m[1])
		}
	}
	if !taxOK {
		if m := rePartATotalDeducted.FindStringSubmatch(text); m != nil {
			tax, taxOK = parseAmount(m[1])
		}
	}

	fields := map[string]any{}
	if m := reSection171.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			fields["basic_salary"] = v
		}
	}
	if m := reSection172.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			fields["perquisites"] = v
		}
	}
	if m := rePartBGross.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			fields["total_gross_salary"] = v
			// Part B gross overrides a disagreeing quarterly sum.
			if grossOK && math.Abs(v-gross) > partBOverrideThreshold {
				gross = v
			} else if !grossOK {
				gross, grossOK = v, true
			}
		}
	}

	if !grossOK || !taxOK {
		return nil
	}
	fields["gross_salary"] = gross
	fields["tax_deducted"] = tax

	if m := reProfTax.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			fields["professional_tax"] = v
		}
	}
	if m := reHRAExempt.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			fields["hra_received"] = v
		}
	}
	if m := rePAN.FindStringSubmatch(text); m != nil {
		fields["pan"] = m[1]
	}
	if m := reEmployeeName.FindStringSubmatch(text); m != nil {
		fields["employee_name"] = strings.TrimSpace(m[1])
	}
	return fields
}

var (
	// Totals row of the interest certificate: principal, interest, accrued, TDS.
	reBankTotalRow = regexp.MustCompile(`(?im)^Total\s+` + amt + `\s+` + amt + `\s+` + amt + `\s+` + amt)
	reBankName     = regexp.MustCompile(`(?im)^([A-Z][A-Za-z&. ]{2,40}Bank(?:[A-Za-z&. ]{0,30})?)\s*$`)
	reAccountNo    = regexp.MustCompile(`(?i)(?:Account|Deposit)\s+(?:No\.?|Number)[:\s]*(\d{6,20})`)
)

// extractBankInterest handles interest certificates. Spreadsheet rows are
// checked before the text form: the totals row survives cell extraction even
// when column spacing does not.
func extractBankInterest(doc RawDocumentText) map[string]any {
	fields := map[string]any{}

	if vals, ok := bankTotalsFromRows(doc.Rows); ok {
		fields["principal_amount"] = vals[0]
		fields["interest_amount"] = vals[1]
		fields["accrued_interest"] = vals[2]
		fields["tds_amount"] = vals[3]
	} else if m := reBankTotalRow.FindStringSubmatch(doc.Text); m != nil {
		p, ok1 := parseAmount(m[1])
		i, ok2 := parseAmount(m[2])
		a, ok3 := parseAmount(m[3])
		t, ok4 := parseAmount(m[4])
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil
		}
		fields["principal_amount"] = p
		fields["interest_amount"] = i
		fields["accrued_interest"] = a
		fields["tds_amount"] = t
	} else {
		return nil
	}

	if m := reBankName.FindStringSubmatch(doc.Text); m != nil {
		fields["bank_name"] = strings.TrimSpace(m[1])
	}
	if m := reAccountNo.FindStringSubmatch(doc.Text); m != nil {
		fields["account_number"] = m[1]
	}
	if m := rePAN.FindStringSubmatch(doc.Text); m != nil {
		fields["pan"] = m[1]
	}
	return fields
}

func bankTotalsFromRows(rows [][]string) ([4]float64, bool) {
	var out [4]float64
	for _, row := range rows {
		if len(row) < 5 || !strings.EqualFold(strings.TrimSpace(row[0]), "total") {
			continue
		}
		nums := make([]float64, 0, len(row)-1)
		for _, cell := range row[1:] {
			if v, ok := parseAmount(cell); ok {
				nums = append(nums, v)
			}
		}
		if len(nums) < 4 {
			continue
		}
		copy(out[:], nums[:4])
		return out, true
	}
	return out, false
}

// Label synonyms per gains field, in priority order. The first label with at
// least one hit wins; all of its occurrences are summed, so a statement with
// one P&L section per exchange segment still totals correctly.
var gainsPatterns = map[string][]*regexp.Regexp{
	"short_term_capital_gains": {
		regexp.MustCompile(`(?i)Short\s*Term(?:\s+Capital\s+Gains?|\s+P&L|\s+Profit)?[:\s]*(-?[\d,]+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)STCG[:\s]*(-?[\d,]+(?:\.\d+)?)`),
	},
	"long_term_capital_gains": {
		regexp.MustCompile(`(?i)Long\s*Term(?:\s+Capital\s+Gains?|\s+P&L|\s+Profit)?[:\s]*(-?[\d,]+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)LTCG[:\s]*(-?[\d,]+(?:\.\d+)?)`),
	},
	"intraday_capital_gains": {
		regexp.MustCompile(`(?i)Intra[- ]?day(?:\s+P&L|\s+Profit)?[:\s]*(-?[\d,]+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)Speculat\w+(?:\s+Income|\s+P&L)?[:\s]*(-?[\d,]+(?:\.\d+)?)`),
	},
	"dividend_income": {
		regexp.MustCompile(`(?i)Dividends?(?:\s+Income)?[:\s]*(-?[\d,]+(?:\.\d+)?)`),
	},
	"number_of_transactions": {
		regexp.MustCompile(`(?i)(?:Number|No\.?)\s+of\s+(?:Transactions|Trades)[:\s]*(\d+)`),
	},
}

// extractCapitalGains handles broker tax P&L statements. Minimum: at least one
// gains label. total_capital_gains excludes dividend income, which is taxed as
// other income.
func extractCapitalGains(text string) map[string]any {
	fields := map[string]any{}
	for name, pats := range gainsPatterns {
		for _, re := range pats {
			matches := re.FindAllStringSubmatch(text, -1)
			if len(matches) == 0 {
				continue
			}
			sum := 0.0
			found := false
			for _, m := range matches {
				if v, ok := parseAmount(m[1]); ok {
					sum += v
					found = true
				}
			}
			if found {
				fields[name] = sum
			}
			break
		}
	}

	st, _ := fields["short_term_capital_gains"].(float64)
	lt, _ := fields["long_term_capital_gains"].(float64)
	id, _ := fields["intraday_capital_gains"].(float64)
	if _, okST := fields["short_term_capital_gains"]; !okST {
		if _, okLT := fields["long_term_capital_gains"]; !okLT {
			if _, okID := fields["intraday_capital_gains"]; !okID {
				return nil
			}
		}
	}
	fields["total_capital_gains"] = st + lt + id
	return fields
}

var investmentPatterns = map[string][]*regexp.Regexp{
	"elss_amount": {
		regexp.MustCompile(`(?i)Total\s+amount\s+invested\s+in\s+ELSS\s+is\s+RS\.?\s*([\d,]+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)ELSS[^\d₹\n]*` + amt),
	},
	"ppf_amount": {
		regexp.MustCompile(`(?i)PPF(?:\s+Contribution|\s+Deposit)?[^\d₹\n]*` + amt),
		regexp.MustCompile(`(?i)Public\s+Provident\s+Fund[^\d₹\n]*` + amt),
	},
	"epf_amount": {
		regexp.MustCompile(`(?i)EPF\s+Contribution[^\d₹\n]*` + amt),
		regexp.MustCompile(`(?i)Employee.s\s+Provident\s+Fund[^\d₹\n]*` + amt),
	},
	"life_insurance": {
		regexp.MustCompile(`(?i)Life\s+Insurance\s+Premium[^\d₹\n]*` + amt),
		regexp.MustCompile(`(?i)LIC\s+Premium[^\d₹\n]*` + amt),
	},
	"health_insurance": {
		regexp.MustCompile(`(?i)Health\s+Insurance\s+Premium[^\d₹\n]*` + amt),
		regexp.MustCompile(`(?i)Mediclaim[^\d₹\n]*` + amt),
	},
}

// extractInvestment handles investment proofs. Minimum: any one instrument.
func extractInvestment(text string) map[string]any {
	fields := map[string]any{}
	for name, pats := range investmentPatterns {
		for _, re := range pats {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if v, ok := parseAmount(m[1]); ok {
				fields[name] = v
			}
			break
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

var (
	reNPSVoluntary = regexp.MustCompile(`(?i)By\s+Voluntary\s+Contributions?\s+` + amt)
	reNPSTotal     = regexp.MustCompile(`(?i)Total\s+Contributions?\s+` + amt)
	reNPSEmployer  = regexp.MustCompile(`(?i)(?:By\s+)?Employer(?:\s+Contributions?)?\s+` + amt)
)

// extractPension handles NPS transaction statements. Minimum: a total tier-1
// contribution.
func extractPension(text string) map[string]any {
	m := reNPSTotal.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	total, ok := parseAmount(m[1])
	if !ok {
		return nil
	}
	fields := map[string]any{"nps_tier1_contribution": total}

	if m := reNPSVoluntary.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			fields["nps_80ccd1b"] = v
		}
	}
	if m := reNPSEmployer.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			fields["nps_employer_contribution"] = v
		}
	}
	return fields
}

var (
	reFYLabel  = regexp.MustCompile(`(?i)(?:FY|F\.Y\.|Financial\s+Year)[:\s]*(\d{4})\s*-\s*(\d{2,4})`)
	reFYPeriod = regexp.MustCompile(`(?i)Period\s*:?\s*01/04/(\d{4})\s+To\s+31/03/(\d{4})`)
)

// extractFinancialYear finds the statement's financial year as "YYYY-YY".
func extractFinancialYear(text string) (string, bool) {
	if m := reFYLabel.FindStringSubmatch(text); m != nil {
		start, end := m[1], m[2]
		if len(end) == 4 {
			end = end[2:]
		}
		return start + "-" + end, true
	}
	if m := reFYPeriod.FindStringSubmatch(text); m != nil {
		return m[1] + "-" + m[2][2:], true
	}
	return "", false
}

func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimPrefix(s, "₹")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
