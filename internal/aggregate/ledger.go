// Package aggregate folds reconciled document records into per-tax-year
// ledgers. Ledgers hold raw sums; statutory caps are applied later by the
// tax calculator so the ledger still shows what was actually invested.
package aggregate

import (
	"log/slog"
	"sort"

	"github.com/taxsahaj/taxsahaj/internal/entity"
)

// YearLedger is the income and deduction position for one financial year.
type YearLedger struct {
	TaxYear string `json:"tax_year"`

	GrossSalary    float64 `json:"gross_salary"`
	InterestIncome float64 `json:"interest_income"`
	CapitalGains   float64 `json:"capital_gains"`
	DividendIncome float64 `json:"dividend_income"`

	Section80C     float64 `json:"section_80c"`      // EPF + PPF + life insurance + ELSS + health insurance + NPS tier 1, uncapped
	Section80CCD1B float64 `json:"section_80ccd_1b"` // voluntary NPS, uncapped

	ProfessionalTax float64 `json:"professional_tax"`
	HRAReceived     float64 `json:"hra_received"`
	TaxWithheld     float64 `json:"tax_withheld"`

	Documents int `json:"documents"`
}

// Result of one fold pass.
type Result struct {
	Ledgers map[string]*YearLedger
	Folded  int
	Skipped int
}

// Years returns the ledger years in ascending order.
func (res Result) Years() []string {
	out := make([]string, 0, len(res.Ledgers))
	for y := range res.Ledgers {
		out = append(out, y)
	}
	sort.Strings(out)
	return out
}

type Aggregator struct {
	Logger *slog.Logger
}

func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{Logger: logger}
}

// Fold accumulates records into per-year ledgers. Records without a tax year
// inherit defaultYear; unusable records are counted and skipped. Folding is
// additive and order-independent.
func (a *Aggregator) Fold(records []entity.ReconciledRecord, defaultYear string) Result {
	res := Result{Ledgers: map[string]*YearLedger{}}

	for _, rec := range records {
		if !rec.Usable() {
			res.Skipped++
			a.Logger.Debug("aggregate.skip",
				"source_file", rec.SourceFile,
				"category", string(rec.Category),
			)
			continue
		}

		year := rec.TaxYear
		if year == "" {
			year = defaultYear
		}
		led := res.Ledgers[year]
		if led == nil {
			led = &YearLedger{TaxYear: year}
			res.Ledgers[year] = led
		}

		led.fold(rec.Fields)
		led.Documents++
		res.Folded++
	}

	a.Logger.Info("aggregate.fold.done",
		"folded", res.Folded,
		"skipped", res.Skipped,
		"years", len(res.Ledgers),
	)
	return res
}

func (l *YearLedger) fold(f entity.FieldSet) {
	switch {
	case f.Salary != nil:
		s := f.Salary
		gross := s.GrossSalary
		if s.TotalGrossSalary > 0 {
			gross = s.TotalGrossSalary
		}
		l.GrossSalary += gross
		l.TaxWithheld += s.TaxDeducted
		l.Section80C += s.EPFAmount
		l.ProfessionalTax += s.ProfessionalTax
		l.HRAReceived += s.HRAReceived

	case f.Interest != nil:
		i := f.Interest
		// accrued interest is informational; only credited interest is income
		l.InterestIncome += i.InterestAmount
		l.TaxWithheld += i.TDSAmount

	case f.Gains != nil:
		g := f.Gains
		l.CapitalGains += g.Total
		l.DividendIncome += g.Dividend

	case f.Investment != nil:
		v := f.Investment
		l.Section80C += v.EPFAmount + v.PPFAmount + v.LifeInsurance + v.ELSSAmount + v.HealthInsurance

	case f.Pension != nil:
		// tier 1 shares the general capped bucket; only 80CCD(1B) is separate
		l.Section80C += f.Pension.Tier1Contribution
		l.Section80CCD1B += f.Pension.Section80CCD1B
	}
}
