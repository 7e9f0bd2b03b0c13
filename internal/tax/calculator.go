package tax

import (
	"log/slog"
	"math"

	"github.com/taxsahaj/taxsahaj/internal/aggregate"
)

// Regime labels used on breakdowns and recommendations.
const (
	RegimeOld = "old"
	RegimeNew = "new"
)

// Fraction of HRA received treated as exempt under the old regime when rent
// receipts are not available to do the full three-way computation.
const hraExemptFraction = 0.5

// Breakdown is the computed position under one regime.
type Breakdown struct {
	Regime          string  `json:"regime"`
	GrossIncome     float64 `json:"gross_income"`
	TotalDeductions float64 `json:"total_deductions"`
	TaxableIncome   float64 `json:"taxable_income"`
	BaseTax         float64 `json:"base_tax"`
	Surcharge       float64 `json:"surcharge"`
	Cess            float64 `json:"cess"`
	TotalLiability  float64 `json:"total_liability"`
}

// Recommendation compares both regimes for one year ledger. RefundDue and
// BalancePayable split the withheld-versus-liability delta; exactly one of
// them is non-zero unless they match to the rupee.
type Recommendation struct {
	TaxYear              string    `json:"tax_year"`
	Old                  Breakdown `json:"old_regime"`
	New                  Breakdown `json:"new_regime"`
	Recommended          string    `json:"recommended_regime"`
	Savings              float64   `json:"savings"`
	EffectiveTaxRate     float64   `json:"effective_tax_rate"`
	TaxWithheld          float64   `json:"tax_withheld"`
	AdditionalTaxPayable float64   `json:"additional_tax_payable"`
	RefundDue            float64   `json:"refund_due"`
	BalancePayable       float64   `json:"balance_payable"`
}

type Calculator struct {
	Logger *slog.Logger
}

func NewCalculator(logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{Logger: logger}
}

// Recommend computes both regimes for the ledger's year and picks the cheaper
// one. A tie goes to the new regime, which is the statutory default.
func (c *Calculator) Recommend(led *aggregate.YearLedger) (Recommendation, error) {
	p, err := ParamsFor(led.TaxYear)
	if err != nil {
		return Recommendation{}, err
	}

	if led.CapitalGains != 0 {
		// folded at slab rates; special gains rates are out of scope here
		c.Logger.Warn("tax.capital_gains_folded",
			"tax_year", led.TaxYear,
			"amount", led.CapitalGains,
		)
	}

	old := c.computeOld(led, p)
	newer := c.computeNew(led, p)

	rec := Recommendation{
		TaxYear:     led.TaxYear,
		Old:         old,
		New:         newer,
		Recommended: RegimeNew,
		Savings:     round2(math.Abs(old.TotalLiability - newer.TotalLiability)),
		TaxWithheld: round2(led.TaxWithheld),
	}
	chosen := newer
	if old.TotalLiability < newer.TotalLiability {
		rec.Recommended = RegimeOld
		chosen = old
	}
	rec.AdditionalTaxPayable = round2(chosen.TotalLiability - led.TaxWithheld)
	rec.BalancePayable = math.Max(0, rec.AdditionalTaxPayable)
	rec.RefundDue = math.Max(0, -rec.AdditionalTaxPayable)
	if chosen.GrossIncome > 0 {
		rec.EffectiveTaxRate = math.Round(chosen.TotalLiability/chosen.GrossIncome*10000) / 10000
	}

	c.Logger.Info("tax.recommend",
		"tax_year", led.TaxYear,
		"old_liability", old.TotalLiability,
		"new_liability", newer.TotalLiability,
		"recommended", rec.Recommended,
		"savings", rec.Savings,
	)
	return rec, nil
}

// computeOld applies the old regime: standard deduction, capped chapter VI-A
// buckets, professional tax, and the HRA exemption heuristic.
func (c *Calculator) computeOld(led *aggregate.YearLedger, p YearParams) Breakdown {
	gross := grossIncome(led)
	deductions := p.OldRegime.StandardDeduction +
		math.Min(led.Section80C, p.Cap80C) +
		math.Min(led.Section80CCD1B, p.Cap80CCD1B) +
		led.ProfessionalTax +
		led.HRAReceived*hraExemptFraction

	taxable := math.Max(0, gross-deductions)
	base := slabTax(taxable, p.OldRegime.Slabs)
	cess := base * p.CessRate

	return Breakdown{
		Regime:          RegimeOld,
		GrossIncome:     round2(gross),
		TotalDeductions: round2(deductions),
		TaxableIncome:   round2(taxable),
		BaseTax:         round2(base),
		Cess:            round2(cess),
		TotalLiability:  round2(base + cess),
	}
}

// computeNew applies the new regime: standard deduction only, with surcharge
// above the threshold and cess on tax plus surcharge.
func (c *Calculator) computeNew(led *aggregate.YearLedger, p YearParams) Breakdown {
	gross := grossIncome(led)
	deductions := p.NewRegime.StandardDeduction

	taxable := math.Max(0, gross-deductions)
	base := slabTax(taxable, p.NewRegime.Slabs)
	var surcharge float64
	if taxable > p.SurchargeThreshold {
		surcharge = base * p.SurchargeRate
	}
	cess := (base + surcharge) * p.CessRate

	return Breakdown{
		Regime:          RegimeNew,
		GrossIncome:     round2(gross),
		TotalDeductions: round2(deductions),
		TaxableIncome:   round2(taxable),
		BaseTax:         round2(base),
		Surcharge:       round2(surcharge),
		Cess:            round2(cess),
		TotalLiability:  round2(base + surcharge + cess),
	}
}

func grossIncome(led *aggregate.YearLedger) float64 {
	return led.GrossSalary + led.InterestIncome + led.DividendIncome + led.CapitalGains
}

// slabTax walks the marginal brackets. Ceilings are inclusive: income exactly
// on a boundary is taxed entirely within the lower bracket.
func slabTax(taxable float64, slabs []Slab) float64 {
	tax := 0.0
	lower := 0.0
	for _, s := range slabs {
		upper := s.UpTo
		if upper == 0 || upper > taxable {
			upper = taxable
		}
		if upper > lower {
			tax += (upper - lower) * s.Rate
		}
		if s.UpTo == 0 || taxable <= s.UpTo {
			break
		}
		lower = s.UpTo
	}
	return tax
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
