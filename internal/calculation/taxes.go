package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/lifeplan/lifeplan/internal/domain"
)

// TAX MODEL ASSUMPTIONS:
//
// 1. Brackets and rates approximate a single tax year and are not indexed
//    forward; the engine applies the same table to every simulated year.
// 2. Resident tax is a flat 10% of taxable income.
// 3. Social insurance is a gross-income rate split at 850 man-yen; the
//    director variant excludes unemployment insurance.
// 4. Self-employed and homemaker income passes through with no modeled
//    deductions.

var manYen = decimal.NewFromInt(10000)

// TaxBracket is one progressive income tax bracket. Upper is the inclusive
// upper bound in raw yen, unused for the final open-ended bracket;
// Subtraction is the fixed deduction in raw yen.
type TaxBracket struct {
	Upper       decimal.Decimal
	Rate        decimal.Decimal
	Subtraction decimal.Decimal
}

// incomeTaxBrackets holds the seven-bracket progressive table in raw yen,
// ascending. Lookup selects the first bracket whose upper bound is >= the
// taxable amount; the last bracket is unbounded and its Upper is ignored.
func incomeTaxBrackets() []TaxBracket {
	return []TaxBracket{
		{decimal.NewFromInt(1_950_000), decimal.NewFromFloat(0.05), decimal.Zero},
		{decimal.NewFromInt(3_300_000), decimal.NewFromFloat(0.10), decimal.NewFromInt(97_500)},
		{decimal.NewFromInt(6_950_000), decimal.NewFromFloat(0.20), decimal.NewFromInt(427_500)},
		{decimal.NewFromInt(9_000_000), decimal.NewFromFloat(0.23), decimal.NewFromInt(636_000)},
		{decimal.NewFromInt(18_000_000), decimal.NewFromFloat(0.33), decimal.NewFromInt(1_536_000)},
		{decimal.NewFromInt(40_000_000), decimal.NewFromFloat(0.40), decimal.NewFromInt(2_796_000)},
		{decimal.Decimal{}, decimal.NewFromFloat(0.45), decimal.NewFromInt(4_796_000)},
	}
}

// TaxCalculator computes the simplified personal and corporate taxes. All
// methods are total: invalid (negative) inputs contribute zero rather than
// erroring, so a multi-decade projection never aborts on one bad cell.
type TaxCalculator struct {
	Brackets  []TaxBracket
	Corporate domain.CorporateTaxSettings
}

// NewTaxCalculator creates a tax calculator with the default bracket table
// and corporate settings.
func NewTaxCalculator() *TaxCalculator {
	return NewTaxCalculatorWithSettings(domain.DefaultCorporateTaxSettings())
}

// NewTaxCalculatorWithSettings creates a tax calculator with configurable
// corporate tax settings.
func NewTaxCalculatorWithSettings(corporate domain.CorporateTaxSettings) *TaxCalculator {
	return &TaxCalculator{Brackets: incomeTaxBrackets(), Corporate: corporate}
}

// SalaryDeduction returns the employment income deduction for a gross annual
// salary in man-yen: min(max(gross*0.3+8, 55), 195) up to 850 man-yen, a
// flat 195 above, truncated to whole man-yen.
func (tc *TaxCalculator) SalaryDeduction(grossAnnual decimal.Decimal) decimal.Decimal {
	if grossAnnual.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if grossAnnual.GreaterThan(decimal.NewFromInt(850)) {
		return decimal.NewFromInt(195)
	}
	d := grossAnnual.Mul(decimal.NewFromFloat(0.3)).Add(decimal.NewFromInt(8))
	d = decimal.Max(d, decimal.NewFromInt(55))
	d = decimal.Min(d, decimal.NewFromInt(195))
	return d.Floor()
}

// ProgressiveIncomeTax computes income tax on a taxable annual amount in
// man-yen. The bracket arithmetic runs in raw yen and the result converts
// back by floor-division by 10,000.
func (tc *TaxCalculator) ProgressiveIncomeTax(taxableAnnual decimal.Decimal) decimal.Decimal {
	if taxableAnnual.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	raw := taxableAnnual.Mul(manYen)
	b := tc.Brackets[len(tc.Brackets)-1]
	for _, candidate := range tc.Brackets[:len(tc.Brackets)-1] {
		if raw.LessThanOrEqual(candidate.Upper) {
			b = candidate
			break
		}
	}
	tax := raw.Mul(b.Rate).Sub(b.Subtraction).Floor()
	if tax.IsNegative() {
		return decimal.Zero
	}
	return tax.Div(manYen).Floor()
}

// SocialInsuranceRate returns the combined social insurance rate for an
// employee: 15% below 850 man-yen gross, 7.7% at or above.
func (tc *TaxCalculator) SocialInsuranceRate(grossAnnual decimal.Decimal) decimal.Decimal {
	if grossAnnual.LessThan(decimal.NewFromInt(850)) {
		return decimal.NewFromFloat(0.15)
	}
	return decimal.NewFromFloat(0.077)
}

// DirectorSocialInsuranceRate is the corporate-director variant, which
// excludes unemployment insurance: 14.4% below 850 man-yen, 7.7% above.
func (tc *TaxCalculator) DirectorSocialInsuranceRate(grossAnnual decimal.Decimal) decimal.Decimal {
	if grossAnnual.LessThan(decimal.NewFromInt(850)) {
		return decimal.NewFromFloat(0.144)
	}
	return decimal.NewFromFloat(0.077)
}

// NetIncomeBreakdown itemizes the deductions taken from a gross annual
// amount. NetIncome + TotalDeductions always equals the gross input.
type NetIncomeBreakdown struct {
	Gross           decimal.Decimal `json:"gross"`
	SalaryDeduction decimal.Decimal `json:"salaryDeduction"`
	SocialInsurance decimal.Decimal `json:"socialInsurance"`
	IncomeTax       decimal.Decimal `json:"incomeTax"`
	ResidentTax     decimal.Decimal `json:"residentTax"`
	TaxableIncome   decimal.Decimal `json:"taxableIncome"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetIncome       decimal.Decimal `json:"netIncome"`
}

// NetIncome derives net annual income for an occupation. Self-employed and
// homemaker amounts pass through unchanged; salaried occupations withhold
// social insurance, income tax and resident tax.
func (tc *TaxCalculator) NetIncome(grossAnnual decimal.Decimal, occupation domain.Occupation) NetIncomeBreakdown {
	if grossAnnual.LessThanOrEqual(decimal.Zero) {
		return NetIncomeBreakdown{}
	}
	if !occupation.Salaried() {
		return NetIncomeBreakdown{Gross: grossAnnual, NetIncome: grossAnnual}
	}
	return tc.salariedNet(grossAnnual, tc.SocialInsuranceRate(grossAnnual))
}

// DirectorNetIncome derives net annual income for a corporate director,
// applying the director social insurance rate.
func (tc *TaxCalculator) DirectorNetIncome(grossAnnual decimal.Decimal) NetIncomeBreakdown {
	if grossAnnual.LessThanOrEqual(decimal.Zero) {
		return NetIncomeBreakdown{}
	}
	return tc.salariedNet(grossAnnual, tc.DirectorSocialInsuranceRate(grossAnnual))
}

func (tc *TaxCalculator) salariedNet(gross, insuranceRate decimal.Decimal) NetIncomeBreakdown {
	salaryDed := tc.SalaryDeduction(gross)
	socialIns := gross.Mul(insuranceRate).Round(1)

	taxable := gross.Sub(salaryDed).Sub(socialIns)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	incomeTax := tc.ProgressiveIncomeTax(taxable)
	residentTax := taxable.Mul(decimal.NewFromFloat(0.10)).Floor()

	total := socialIns.Add(incomeTax).Add(residentTax)
	return NetIncomeBreakdown{
		Gross:           gross,
		SalaryDeduction: salaryDed,
		SocialInsurance: socialIns,
		IncomeTax:       incomeTax,
		ResidentTax:     residentTax,
		TaxableIncome:   taxable,
		TotalDeductions: total,
		NetIncome:       gross.Sub(total),
	}
}

// CorporateTaxBreakdown itemizes the corporate tax charge for one year.
type CorporateTaxBreakdown struct {
	CorporateTax         decimal.Decimal `json:"corporateTax"`
	LocalCorporateTax    decimal.Decimal `json:"localCorporateTax"`
	ResidentEqualization decimal.Decimal `json:"residentEqualization"`
	ResidentProportional decimal.Decimal `json:"residentProportional"`
	Total                decimal.Decimal `json:"total"`
	EffectiveRatePct     decimal.Decimal `json:"effectiveRatePct"`
}

// CorporateTax computes the two-bracket corporate tax plus local corporate
// tax and resident taxes. A loss year still pays the flat equalization
// charge and reports a zero effective rate.
func (tc *TaxCalculator) CorporateTax(pretaxProfit decimal.Decimal) CorporateTaxBreakdown {
	s := tc.Corporate
	if pretaxProfit.LessThanOrEqual(decimal.Zero) {
		return CorporateTaxBreakdown{
			ResidentEqualization: s.Equalization.Round(1),
			Total:                s.Equalization.Round(1),
		}
	}

	low := decimal.Min(pretaxProfit, s.BracketThreshold).Mul(s.LowRate)
	var high decimal.Decimal
	if pretaxProfit.GreaterThan(s.BracketThreshold) {
		high = pretaxProfit.Sub(s.BracketThreshold).Mul(s.HighRate)
	}
	corporate := low.Add(high).Round(1)
	local := corporate.Mul(s.LocalRate).Round(1)
	proportional := corporate.Mul(s.ResidentPropRate).Round(1)
	equalization := s.Equalization.Round(1)

	total := corporate.Add(local).Add(proportional).Add(equalization).Round(1)
	effective := total.Div(pretaxProfit).Mul(decimal.NewFromInt(100)).Round(1)

	return CorporateTaxBreakdown{
		CorporateTax:         corporate,
		LocalCorporateTax:    local,
		ResidentEqualization: equalization,
		ResidentProportional: proportional,
		Total:                total,
		EffectiveRatePct:     effective,
	}
}
