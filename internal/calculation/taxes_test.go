package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lifeplan/lifeplan/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSalaryDeduction(t *testing.T) {
	tc := NewTaxCalculator()

	tests := []struct {
		name     string
		gross    string
		expected string
	}{
		{"floor at minimum", "100", "55"},
		{"formula midrange", "500", "158"},
		{"cap reached below threshold", "850", "195"},
		{"flat above threshold", "900", "195"},
		{"high income", "3000", "195"},
		{"zero gross", "0", "0"},
		{"negative coerced to zero", "-10", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tc.SalaryDeduction(d(tt.gross))
			assert.True(t, got.Equal(d(tt.expected)), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestProgressiveIncomeTax(t *testing.T) {
	tc := NewTaxCalculator()

	tests := []struct {
		name     string
		taxable  string
		expected string
	}{
		{"first bracket boundary", "195", "9"},
		{"second bracket", "300", "20"},
		{"fourth bracket", "700", "97"},
		{"sixth bracket", "3000", "920"},
		{"zero taxable", "0", "0"},
		{"negative coerced to zero", "-50", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tc.ProgressiveIncomeTax(d(tt.taxable))
			assert.True(t, got.Equal(d(tt.expected)), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestProgressiveIncomeTaxMonotonic(t *testing.T) {
	tc := NewTaxCalculator()

	prev := decimal.Zero
	for taxable := int64(0); taxable <= 5000; taxable += 25 {
		got := tc.ProgressiveIncomeTax(decimal.NewFromInt(taxable))
		assert.True(t, got.GreaterThanOrEqual(prev),
			"tax decreased at taxable=%d: %s < %s", taxable, got, prev)
		prev = got
	}
}

func TestProgressiveIncomeTaxTopBracketUnbounded(t *testing.T) {
	tc := NewTaxCalculator()

	// 2e8 man-yen = 2e12 raw yen, far past the last finite boundary:
	// floor(2e12*0.45 - 4,796,000) / 10,000 = 89,999,520 man-yen.
	got := tc.ProgressiveIncomeTax(d("200000000"))
	assert.True(t, got.Equal(d("89999520")), "top bracket tax: %s", got)
}

func TestProgressiveIncomeTaxContinuousAtBoundaries(t *testing.T) {
	tc := NewTaxCalculator()

	// Bracket upper bounds in man-yen. The fixed subtraction terms keep the
	// curve continuous; crossing a boundary by one man-yen must not jump by
	// more than one man-yen beyond the marginal rate.
	boundaries := []int64{195, 330, 695, 900, 1800, 4000}
	for _, b := range boundaries {
		below := tc.ProgressiveIncomeTax(decimal.NewFromInt(b))
		above := tc.ProgressiveIncomeTax(decimal.NewFromInt(b + 1))
		diff := above.Sub(below)
		assert.True(t, diff.LessThanOrEqual(decimal.NewFromInt(2)),
			"discontinuity at boundary %d: %s", b, diff)
	}
}

func TestSocialInsuranceRate(t *testing.T) {
	tc := NewTaxCalculator()

	assert.True(t, tc.SocialInsuranceRate(d("500")).Equal(d("0.15")))
	assert.True(t, tc.SocialInsuranceRate(d("849")).Equal(d("0.15")))
	assert.True(t, tc.SocialInsuranceRate(d("850")).Equal(d("0.077")))
	assert.True(t, tc.DirectorSocialInsuranceRate(d("500")).Equal(d("0.144")))
	assert.True(t, tc.DirectorSocialInsuranceRate(d("850")).Equal(d("0.077")))
}

func TestNetIncomeCompanyEmployee500(t *testing.T) {
	tc := NewTaxCalculator()

	got := tc.NetIncome(d("500"), domain.OccupationCompanyEmployee)

	assert.True(t, got.SalaryDeduction.Equal(d("158")), "salary deduction: %s", got.SalaryDeduction)
	assert.True(t, got.SocialInsurance.Equal(d("75")), "social insurance: %s", got.SocialInsurance)
	assert.True(t, got.TaxableIncome.Equal(d("267")), "taxable: %s", got.TaxableIncome)
	assert.True(t, got.IncomeTax.Equal(d("16")), "income tax: %s", got.IncomeTax)
	assert.True(t, got.ResidentTax.Equal(d("26")), "resident tax: %s", got.ResidentTax)
	assert.True(t, got.NetIncome.Equal(d("383")), "net: %s", got.NetIncome)
}

func TestDirectorNetIncome500(t *testing.T) {
	tc := NewTaxCalculator()

	got := tc.DirectorNetIncome(d("500"))

	assert.True(t, got.SocialInsurance.Equal(d("72")), "social insurance: %s", got.SocialInsurance)
	assert.True(t, got.TaxableIncome.Equal(d("270")), "taxable: %s", got.TaxableIncome)
	assert.True(t, got.IncomeTax.Equal(d("17")), "income tax: %s", got.IncomeTax)
	assert.True(t, got.ResidentTax.Equal(d("27")), "resident tax: %s", got.ResidentTax)
	assert.True(t, got.NetIncome.Equal(d("384")), "net: %s", got.NetIncome)
	assert.True(t, got.NetIncome.Add(got.TotalDeductions).Equal(d("500")))
}

func TestNetIncomeDeductionIdentity(t *testing.T) {
	tc := NewTaxCalculator()

	occupations := []domain.Occupation{
		domain.OccupationCompanyEmployee,
		domain.OccupationSelfEmployed,
		domain.OccupationPartTimeWithPension,
		domain.OccupationPartTimeWithoutPension,
		domain.OccupationHomemaker,
	}
	grosses := []string{"50", "100", "300", "500", "850", "1200", "3000"}

	for _, occ := range occupations {
		for _, g := range grosses {
			gross := d(g)
			got := tc.NetIncome(gross, occ)
			sum := got.NetIncome.Add(got.TotalDeductions)
			assert.True(t, sum.Equal(gross),
				"identity broken for %s at gross %s: net %s + deductions %s", occ, g, got.NetIncome, got.TotalDeductions)
		}
	}
}

func TestNetIncomePassThrough(t *testing.T) {
	tc := NewTaxCalculator()

	got := tc.NetIncome(d("400"), domain.OccupationSelfEmployed)
	assert.True(t, got.NetIncome.Equal(d("400")))
	assert.True(t, got.TotalDeductions.IsZero())
}

func TestCorporateTax(t *testing.T) {
	tc := NewTaxCalculator()

	t.Run("below bracket threshold", func(t *testing.T) {
		got := tc.CorporateTax(d("500"))
		assert.True(t, got.CorporateTax.Equal(d("75")), "corporate: %s", got.CorporateTax)
		assert.True(t, got.LocalCorporateTax.Equal(d("7.7")), "local: %s", got.LocalCorporateTax)
		assert.True(t, got.ResidentProportional.Equal(d("5.3")), "proportional: %s", got.ResidentProportional)
		assert.True(t, got.ResidentEqualization.Equal(d("7")), "equalization: %s", got.ResidentEqualization)
		assert.True(t, got.Total.Equal(d("95")), "total: %s", got.Total)
		assert.True(t, got.EffectiveRatePct.Equal(d("19")), "effective: %s", got.EffectiveRatePct)
	})

	t.Run("spanning both brackets", func(t *testing.T) {
		got := tc.CorporateTax(d("1000"))
		assert.True(t, got.CorporateTax.Equal(d("166.4")), "corporate: %s", got.CorporateTax)
		assert.True(t, got.Total.Equal(d("202.1")), "total: %s", got.Total)
	})

	t.Run("loss year pays only equalization", func(t *testing.T) {
		got := tc.CorporateTax(d("-120"))
		assert.True(t, got.CorporateTax.IsZero())
		assert.True(t, got.Total.Equal(d("7")))
		assert.True(t, got.EffectiveRatePct.IsZero())
	})
}
