package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxsahaj/taxsahaj/internal/aggregate"
)

func TestRecommendTwelveLakhWithFull80C(t *testing.T) {
	c := NewCalculator(nil)
	led := &aggregate.YearLedger{
		TaxYear:     "2024-25",
		GrossSalary: 1200000,
		Section80C:  150000,
		TaxWithheld: 100000,
	}

	rec, err := c.Recommend(led)
	require.NoError(t, err)

	// old regime: 12,00,000 - 50,000 std - 1,50,000 80C = 10,00,000 taxable
	assert.Equal(t, 1000000.0, rec.Old.TaxableIncome)
	assert.Equal(t, 112500.0, rec.Old.BaseTax)
	assert.Equal(t, 117000.0, rec.Old.TotalLiability)
	assert.Equal(t, 17000.0, rec.Old.TotalLiability-rec.TaxWithheld)

	// new regime: 12,00,000 - 75,000 std = 11,25,000 taxable
	assert.Equal(t, 1125000.0, rec.New.TaxableIncome)
	assert.Equal(t, 71500.0, rec.New.TotalLiability)

	assert.Equal(t, RegimeNew, rec.Recommended)
	assert.Equal(t, 45500.0, rec.Savings)
	assert.Equal(t, -28500.0, rec.AdditionalTaxPayable)
	assert.Equal(t, 28500.0, rec.RefundDue)
	assert.Zero(t, rec.BalancePayable)
	// 71,500 liability on 12,00,000 gross
	assert.InDelta(t, 0.0596, rec.EffectiveTaxRate, 0.0001)
}

func TestRecommendTieGoesToNewRegime(t *testing.T) {
	c := NewCalculator(nil)
	led := &aggregate.YearLedger{
		TaxYear:     "2024-25",
		GrossSalary: 250000,
	}

	rec, err := c.Recommend(led)
	require.NoError(t, err)
	assert.Equal(t, rec.Old.TotalLiability, rec.New.TotalLiability)
	assert.Equal(t, RegimeNew, rec.Recommended)
	assert.Zero(t, rec.Savings)
}

func TestOldRegimeCapsAreEnforced(t *testing.T) {
	c := NewCalculator(nil)
	p, err := ParamsFor("2024-25")
	require.NoError(t, err)

	led := &aggregate.YearLedger{
		TaxYear:        "2024-25",
		GrossSalary:    2000000,
		Section80C:     270000, // over the 1,50,000 cap
		Section80CCD1B: 80000,  // over the 50,000 cap
	}

	b := c.computeOld(led, p)
	assert.Equal(t, 50000.0+150000.0+50000.0, b.TotalDeductions)
}

func TestOldRegimeProfessionalTaxAndHRA(t *testing.T) {
	c := NewCalculator(nil)
	p, err := ParamsFor("2024-25")
	require.NoError(t, err)

	led := &aggregate.YearLedger{
		TaxYear:         "2024-25",
		GrossSalary:     1000000,
		ProfessionalTax: 2400,
		HRAReceived:     200000,
	}

	b := c.computeOld(led, p)
	// std 50,000 + prof tax 2,400 + half of HRA received
	assert.Equal(t, 152400.0, b.TotalDeductions)
}

func TestSlabBoundaryIsInclusive(t *testing.T) {
	p, err := ParamsFor("2024-25")
	require.NoError(t, err)

	// exactly on the 10,00,000 ceiling: nothing reaches the 30% bracket
	assert.Equal(t, 112500.0, slabTax(1000000, p.OldRegime.Slabs))
	// one rupee over: 30 paise of marginal tax
	assert.InDelta(t, 112500.30, slabTax(1000001, p.OldRegime.Slabs), 0.001)
	assert.Equal(t, 0.0, slabTax(250000, p.OldRegime.Slabs))
	assert.Equal(t, 0.0, slabTax(0, p.OldRegime.Slabs))
}

func TestNewRegimeSurchargeAboveThreshold(t *testing.T) {
	c := NewCalculator(nil)
	p, err := ParamsFor("2024-25")
	require.NoError(t, err)

	led := &aggregate.YearLedger{
		TaxYear:     "2024-25",
		GrossSalary: 6075000, // taxable 60,00,000
	}

	b := c.computeNew(led, p)
	require.Equal(t, 6000000.0, b.TaxableIncome)
	// base: 20,000 + 30,000 + 30,000 + 60,000 + 13,50,000 = 14,90,000
	assert.Equal(t, 1490000.0, b.BaseTax)
	assert.Equal(t, 149000.0, b.Surcharge)
	// cess applies to tax plus surcharge
	assert.Equal(t, round2((1490000.0+149000.0)*0.04), b.Cess)
	assert.Equal(t, b.BaseTax+b.Surcharge+b.Cess, b.TotalLiability)
}

func TestNoSurchargeBelowThreshold(t *testing.T) {
	c := NewCalculator(nil)
	p, err := ParamsFor("2024-25")
	require.NoError(t, err)

	led := &aggregate.YearLedger{TaxYear: "2024-25", GrossSalary: 3075000}
	b := c.computeNew(led, p)
	assert.Zero(t, b.Surcharge)
}

func TestTaxableIncomeClampedAtZero(t *testing.T) {
	c := NewCalculator(nil)
	p, err := ParamsFor("2024-25")
	require.NoError(t, err)

	led := &aggregate.YearLedger{
		TaxYear:     "2024-25",
		GrossSalary: 150000,
		Section80C:  150000,
	}

	b := c.computeOld(led, p)
	assert.Zero(t, b.TaxableIncome)
	assert.Zero(t, b.TotalLiability)
	assert.GreaterOrEqual(t, b.TotalLiability, 0.0)
}

func TestCapitalGainsFoldIntoGrossIncome(t *testing.T) {
	c := NewCalculator(nil)
	led := &aggregate.YearLedger{
		TaxYear:        "2024-25",
		GrossSalary:    1000000,
		InterestIncome: 5100,
		CapitalGains:   145000,
		DividendIncome: 3500,
	}

	rec, err := c.Recommend(led)
	require.NoError(t, err)
	assert.Equal(t, 1153600.0, rec.Old.GrossIncome)
	assert.Equal(t, rec.Old.GrossIncome, rec.New.GrossIncome)
}

func TestStandardDeductionDiffersByYear(t *testing.T) {
	p23, err := ParamsFor("2023-24")
	require.NoError(t, err)
	p24, err := ParamsFor("2024-25")
	require.NoError(t, err)

	assert.Equal(t, 50000.0, p23.NewRegime.StandardDeduction)
	assert.Equal(t, 75000.0, p24.NewRegime.StandardDeduction)
	assert.Equal(t, 50000.0, p23.OldRegime.StandardDeduction)
}

func TestRecommendUnknownYear(t *testing.T) {
	c := NewCalculator(nil)
	_, err := c.Recommend(&aggregate.YearLedger{TaxYear: "1999-00"})
	assert.Error(t, err)
}

func TestYearsSorted(t *testing.T) {
	ys := Years()
	require.NotEmpty(t, ys)
	assert.Contains(t, ys, "2024-25")
	assert.Contains(t, ys, "2023-24")
}
