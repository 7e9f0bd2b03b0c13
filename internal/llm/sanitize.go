package llm

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/taxsahaj/taxsahaj/internal/schema"
)

var (
	reAmountNoise = regexp.MustCompile(`[₹$,\s]|Rs\.?`)
	reYearLong    = regexp.MustCompile(`^(\d{4})\s*-\s*(\d{2,4})$`)
)

// fieldSynonyms renames keys models habitually emit instead of the schema names.
var fieldSynonyms = map[string]string{
	"tds":            "tds_amount",
	"tax_withheld":   "tds_amount",
	"gross_income":   "gross_salary",
	"total_salary":   "gross_salary",
	"total_tax":      "tax_deducted",
	"stcg":           "short_term_capital_gains",
	"ltcg":           "long_term_capital_gains",
	"dividends":      "dividend_income",
	"fy":             "financial_year",
	"assessment_year": "financial_year",
	"epf":            "epf_amount",
	"ppf":            "ppf_amount",
	"elss":           "elss_amount",
}

// NormalizeFields reconciles a parsed field mapping with the category schema:
// renames known synonyms, coerces currency fields to float64 (stripping rupee
// symbols and digit-group commas), normalizes year strings to "YYYY-YY",
// and removes keys the schema does not declare. Dropped and renamed keys are
// reported through a single structured log event.
func NormalizeFields(m map[string]any, s schema.ExtractionSchema, logger *slog.Logger) map[string]any {
	if logger == nil {
		logger = slog.Default()
	}

	var dropped []string
	for from, to := range fieldSynonyms {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	allowed := make(map[string]schema.FieldType, len(s.Fields))
	for _, f := range s.Fields {
		allowed[f.Name] = f.Type
	}

	for k, v := range m {
		ft, ok := allowed[k]
		if !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
			continue
		}
		switch ft {
		case schema.Currency:
			f, ok := CoerceAmount(v)
			if !ok {
				delete(m, k)
				dropped = append(dropped, k+"(not numeric)")
				continue
			}
			m[k] = f
		case schema.Integer:
			f, ok := CoerceAmount(v)
			if !ok {
				delete(m, k)
				dropped = append(dropped, k+"(not numeric)")
				continue
			}
			m[k] = float64(int64(f))
		case schema.YearStr:
			y, ok := NormalizeYear(fmt.Sprintf("%v", v))
			if !ok {
				delete(m, k)
				dropped = append(dropped, k+"(bad year)")
				continue
			}
			m[k] = y
		case schema.Text:
			str := strings.TrimSpace(fmt.Sprintf("%v", v))
			if str == "" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
				continue
			}
			m[k] = str
		}
	}

	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize",
			"category", string(s.Category),
			"dropped", dropped,
		)
	}
	return m
}

// CoerceAmount converts a parsed JSON value into a float64 rupee amount.
// Accepts numbers and strings like "₹1,50,000.00" or "Rs 5000".
func CoerceAmount(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		cleaned := reAmountNoise.ReplaceAllString(t, "")
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// NormalizeYear maps "FY 2024-25", "2024-2025", or "2024-25" onto "YYYY-YY".
func NormalizeYear(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "FY"), "fy")
	s = strings.TrimSpace(s)

	match := reYearLong.FindStringSubmatch(s)
	if match == nil {
		return "", false
	}
	start := match[1]
	end := match[2]
	if len(end) == 4 {
		end = end[2:]
	}
	// sanity: the second year must follow the first
	sy, err1 := strconv.Atoi(start)
	ey, err2 := strconv.Atoi(start[:2] + end)
	if err1 != nil || err2 != nil || ey != sy+1 {
		return "", false
	}
	return start + "-" + end, true
}
