// Package reconcile merges the completion and pattern candidates for one
// document into a single typed record, resolving per-field disagreements with
// absolute rupee thresholds.
package reconcile

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/taxsahaj/taxsahaj/constants"
	"github.com/taxsahaj/taxsahaj/internal/entity"
	"github.com/taxsahaj/taxsahaj/internal/extract"
)

// Extraction method labels recorded on the final record.
const (
	MethodCompletion = "completion"
	MethodPattern    = "pattern"
	MethodCorrected  = "completion-with-pattern-correction"
	MethodNone       = "none"
)

// Maximum raw-text excerpt preserved on records that could not be reconciled,
// so a reviewer can see what the strategies were looking at.
const unreconciledExcerptChars = 500

// Per-field absolute disagreement thresholds in rupees. A completion value
// further than this from the pattern value is replaced by the pattern value:
// patterns read amounts off anchored table rows and do not hallucinate digits.
var fieldThresholds = map[string]float64{
	"gross_salary":              10000,
	"total_gross_salary":        10000,
	"basic_salary":              10000,
	"perquisites":               10000,
	"hra_received":              10000,
	"tax_deducted":              1000,
	"professional_tax":          1000,
	"interest_amount":           100,
	"accrued_interest":          100,
	"principal_amount":          100,
	"tds_amount":                10,
	"short_term_capital_gains":  1000,
	"long_term_capital_gains":   1000,
	"intraday_capital_gains":    1000,
	"dividend_income":           100,
	"total_capital_gains":       1000,
	"epf_amount":                1000,
	"ppf_amount":                1000,
	"life_insurance":            1000,
	"elss_amount":               1000,
	"health_insurance":          1000,
	"nps_tier1_contribution":    1000,
	"nps_80ccd1b":               1000,
	"nps_employer_contribution": 1000,
}

type Reconciler struct {
	Logger *slog.Logger
}

func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{Logger: logger}
}

// Reconcile merges the candidates for one document. Either candidate may be
// nil. The operation is deterministic and idempotent: reconciling the same
// candidates again yields an identical record.
func (r *Reconciler) Reconcile(cat constants.DocCategory, completion, pattern *extract.CandidateExtraction, sourceFile string) entity.ReconciledRecord {
	excerpt := rawExcerptOf(completion, pattern)

	if completion != nil && !complete(cat, completion.Fields) {
		r.Logger.Warn("reconcile.completion_incomplete",
			"category", string(cat), "source_file", sourceFile,
		)
		completion = nil
	}
	if pattern != nil && !complete(cat, pattern.Fields) {
		pattern = nil
	}

	switch {
	case completion == nil && pattern == nil:
		return r.unreconciled(cat, sourceFile, excerpt)

	case completion == nil:
		return r.single(cat, pattern, MethodPattern, sourceFile)

	case pattern == nil:
		return r.single(cat, completion, MethodCompletion, sourceFile)
	}

	merged, corrections := mergeFields(completion.Fields, pattern.Fields)
	method := MethodCompletion
	confidence := completion.Confidence
	if len(corrections) > 0 {
		method = MethodCorrected
		confidence = pattern.Confidence
		r.Logger.Warn("reconcile.pattern_correction",
			"category", string(cat),
			"source_file", sourceFile,
			"corrections", corrections,
		)
	}

	rec := entity.ReconciledRecord{
		Category:         cat,
		TaxYear:          yearOf(merged),
		Fields:           Materialize(cat, merged),
		ExtractionMethod: method,
		Confidence:       confidence,
		Errors:           corrections,
		SourceFile:       sourceFile,
	}
	r.Logger.Info("reconcile.ok",
		"category", string(cat),
		"method", method,
		"confidence", confidence,
		"source_file", sourceFile,
	)
	return rec
}

func (r *Reconciler) single(cat constants.DocCategory, cand *extract.CandidateExtraction, method string, sourceFile string) entity.ReconciledRecord {
	rec := entity.ReconciledRecord{
		Category:         cat,
		TaxYear:          yearOf(cand.Fields),
		Fields:           Materialize(cat, cand.Fields),
		ExtractionMethod: method,
		Confidence:       cand.Confidence,
		SourceFile:       sourceFile,
	}
	r.Logger.Info("reconcile.ok",
		"category", string(cat),
		"method", method,
		"confidence", cand.Confidence,
		"source_file", sourceFile,
	)
	return rec
}

func (r *Reconciler) unreconciled(cat constants.DocCategory, sourceFile, excerpt string) entity.ReconciledRecord {
	r.Logger.Warn("reconcile.failed",
		"category", string(cat),
		"source_file", sourceFile,
	)
	return entity.ReconciledRecord{
		Category:         constants.Unknown,
		ExtractionMethod: MethodNone,
		Confidence:       0.0,
		Errors:           []string{"no strategy produced a complete extraction for category " + string(cat)},
		SourceFile:       sourceFile,
		RawExcerpt:       excerpt,
	}
}

// mergeFields starts from the completion mapping, replaces numeric values that
// disagree with the pattern beyond their threshold, and adopts pattern-only
// fields the completion missed. Correction notes are sorted for determinism.
func mergeFields(completion, pattern map[string]any) (map[string]any, []string) {
	merged := make(map[string]any, len(completion))
	for k, v := range completion {
		merged[k] = v
	}

	var corrections []string
	for name, pv := range pattern {
		pf, pOK := asAmount(pv)
		cv, exists := merged[name]
		if !exists {
			merged[name] = pv
			continue
		}
		cf, cOK := asAmount(cv)
		if !pOK || !cOK {
			continue
		}
		threshold, known := fieldThresholds[name]
		if !known {
			continue
		}
		if math.Abs(cf-pf) > threshold {
			merged[name] = pf
			corrections = append(corrections,
				fmt.Sprintf("%s: completion %.2f replaced by pattern %.2f", name, cf, pf))
		}
	}
	sort.Strings(corrections)
	return merged, corrections
}

// complete reports whether a field mapping carries the category's minimum
// usable content.
func complete(cat constants.DocCategory, fields map[string]any) bool {
	switch cat {
	case constants.Form16:
		gross, ok := asAmount(fields["gross_salary"])
		if !ok || gross <= 0 {
			return false
		}
		_, ok = asAmount(fields["tax_deducted"])
		return ok
	case constants.BankInterest:
		_, iOK := asAmount(fields["interest_amount"])
		_, tOK := asAmount(fields["tds_amount"])
		return iOK && tOK
	case constants.CapitalGains:
		_, ok := asAmount(fields["total_capital_gains"])
		return ok
	case constants.Investment:
		for _, name := range []string{"epf_amount", "ppf_amount", "life_insurance", "elss_amount", "health_insurance"} {
			if v, ok := asAmount(fields[name]); ok && v > 0 {
				return true
			}
		}
		return false
	case constants.NPSStatement:
		v, ok := asAmount(fields["nps_tier1_contribution"])
		return ok && v > 0
	default:
		return false
	}
}

func yearOf(fields map[string]any) string {
	if y, ok := fields["financial_year"].(string); ok {
		return y
	}
	return ""
}

func asAmount(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}

func rawExcerptOf(cands ...*extract.CandidateExtraction) string {
	for _, c := range cands {
		if c == nil || c.RawText == "" {
			continue
		}
		if len(c.RawText) > unreconciledExcerptChars {
			return c.RawText[:unreconciledExcerptChars]
		}
		return c.RawText
	}
	return ""
}
