package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/lifeplan/lifeplan/internal/domain"
)

// PENSION MODEL ASSUMPTIONS:
//
// 1. The basic pension pays a fixed full annual amount prorated by
//    contribution months over the 480-month ceiling.
// 2. The welfare component uses the standard-remuneration table below and
//    splits the contribution months 50/50 between the pre-2003 and post-2003
//    accrual regimes.
// 3. Claim-age adjustment: -0.4%/month early (multiplier floored at 0.5),
//    +0.7%/month delayed (capped at 120 months).
// 4. The in-work suspension reduces only the welfare component, never the
//    basic component.

// Full basic pension per year in man-yen at 480 contribution months.
var basicPensionFullAnnual = decimal.NewFromFloat(79.5)

const (
	maxContributionMonths = 480
	maxDelayMonths        = 120
)

// Accrual rates per month of the standardized monthly remuneration.
var (
	accrualRatePre2003  = decimal.NewFromFloat(0.007125)
	accrualRatePost2003 = decimal.NewFromFloat(0.005481)
)

// In-work benefit suspension threshold: combined monthly income plus welfare
// pension above this (raw yen) suspends half the excess.
var inWorkSuspensionThreshold = decimal.NewFromInt(510_000)

// remunerationBand maps a monthly salary range (raw yen, inclusive upper
// bound) to its standardized assessment amount.
type remunerationBand struct {
	Upper    decimal.Decimal
	Standard decimal.Decimal
}

// standardRemunerationTable is the 33-band lookup from monthly salary to
// standardized monthly remuneration, capped at 650,000 yen/month.
func standardRemunerationTable() []remunerationBand {
	bound := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
	return []remunerationBand{
		{bound(63_000), bound(58_000)},
		{bound(93_000), bound(88_000)},
		{bound(101_000), bound(98_000)},
		{bound(107_000), bound(104_000)},
		{bound(114_000), bound(110_000)},
		{bound(122_000), bound(118_000)},
		{bound(130_000), bound(126_000)},
		{bound(138_000), bound(134_000)},
		{bound(146_000), bound(142_000)},
		{bound(155_000), bound(150_000)},
		{bound(165_000), bound(160_000)},
		{bound(175_000), bound(170_000)},
		{bound(185_000), bound(180_000)},
		{bound(195_000), bound(190_000)},
		{bound(210_000), bound(200_000)},
		{bound(230_000), bound(220_000)},
		{bound(250_000), bound(240_000)},
		{bound(270_000), bound(260_000)},
		{bound(290_000), bound(280_000)},
		{bound(310_000), bound(300_000)},
		{bound(330_000), bound(320_000)},
		{bound(350_000), bound(340_000)},
		{bound(370_000), bound(360_000)},
		{bound(395_000), bound(380_000)},
		{bound(425_000), bound(410_000)},
		{bound(455_000), bound(440_000)},
		{bound(485_000), bound(470_000)},
		{bound(515_000), bound(500_000)},
		{bound(545_000), bound(530_000)},
		{bound(575_000), bound(560_000)},
		{bound(605_000), bound(590_000)},
		{bound(635_000), bound(620_000)},
		{bound(999_999_999), bound(650_000)},
	}
}

// PensionCalculator estimates annual public pension benefits.
type PensionCalculator struct {
	bands []remunerationBand
}

// NewPensionCalculator creates a pension calculator with the default
// standard-remuneration table.
func NewPensionCalculator() *PensionCalculator {
	return &PensionCalculator{bands: standardRemunerationTable()}
}

// PensionInput collects the work history and claim parameters for one person.
type PensionInput struct {
	AnnualIncome   decimal.Decimal // gross, man-yen
	WorkStartAge   int
	WorkEndAge     int
	ClaimAge       int // 65 when zero
	Occupation     domain.Occupation
	WorkAfterClaim bool
}

// PensionBreakdown reports the components of the annual benefit in man-yen.
type PensionBreakdown struct {
	Basic     decimal.Decimal `json:"basic"`
	Welfare   decimal.Decimal `json:"welfare"`
	Suspended decimal.Decimal `json:"suspended"`
	Total     decimal.Decimal `json:"total"`
}

// StandardMonthlyRemuneration looks up the standardized assessment amount in
// raw yen for a monthly salary in raw yen.
func (pc *PensionCalculator) StandardMonthlyRemuneration(monthlySalaryRaw decimal.Decimal) decimal.Decimal {
	if monthlySalaryRaw.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	for _, band := range pc.bands {
		if monthlySalaryRaw.LessThanOrEqual(band.Upper) {
			return band.Standard
		}
	}
	return pc.bands[len(pc.bands)-1].Standard
}

// Estimate computes the annual pension benefit. Non-pension occupations
// receive only the prorated basic pension; eligible occupations add the
// welfare component. The result is rounded to one decimal man-yen.
func (pc *PensionCalculator) Estimate(in PensionInput) PensionBreakdown {
	claimAge := in.ClaimAge
	if claimAge <= 0 {
		claimAge = 65
	}

	months := (in.WorkEndAge - in.WorkStartAge) * 12
	if months < 0 {
		months = 0
	}
	if months > maxContributionMonths {
		months = maxContributionMonths
	}

	proration := decimal.NewFromInt(int64(months)).Div(decimal.NewFromInt(maxContributionMonths))
	basic := basicPensionFullAnnual.Mul(proration)

	var welfare decimal.Decimal
	if in.Occupation.PensionEligible() && in.AnnualIncome.GreaterThan(decimal.Zero) {
		monthlyRaw := in.AnnualIncome.Mul(manYen).Div(decimal.NewFromInt(12))
		standard := pc.StandardMonthlyRemuneration(monthlyRaw)

		// Months split evenly across the two accrual regimes.
		half := decimal.NewFromInt(int64(months)).Div(decimal.NewFromInt(2))
		welfareRaw := standard.Mul(accrualRatePre2003.Mul(half).Add(accrualRatePost2003.Mul(half)))
		welfare = welfareRaw.Div(manYen)
	}

	mult := claimAdjustment(claimAge)
	basic = basic.Mul(mult)
	welfare = welfare.Mul(mult)

	var suspended decimal.Decimal
	if in.WorkAfterClaim && welfare.GreaterThan(decimal.Zero) {
		suspended = pc.inWorkSuspension(in.AnnualIncome, welfare)
		welfare = welfare.Sub(suspended)
	}

	total := basic.Add(welfare).Round(1)
	return PensionBreakdown{
		Basic:     basic.Round(1),
		Welfare:   welfare.Round(1),
		Suspended: suspended.Round(1),
		Total:     total,
	}
}

// claimAdjustment returns the benefit multiplier for the claim age: 0.4% per
// month of early claim (floored at 0.5), 0.7% per month of delay (capped at
// 120 months).
func claimAdjustment(claimAge int) decimal.Decimal {
	one := decimal.NewFromInt(1)
	switch {
	case claimAge < 65:
		monthsEarly := int64(65-claimAge) * 12
		mult := one.Sub(decimal.NewFromFloat(0.004).Mul(decimal.NewFromInt(monthsEarly)))
		return decimal.Max(mult, decimal.NewFromFloat(0.5))
	case claimAge > 65:
		monthsLate := int64(claimAge-65) * 12
		if monthsLate > maxDelayMonths {
			monthsLate = maxDelayMonths
		}
		return one.Add(decimal.NewFromFloat(0.007).Mul(decimal.NewFromInt(monthsLate)))
	}
	return one
}

// inWorkSuspension returns the annual man-yen amount withheld from the
// welfare component while the claimant keeps working: half the combined
// monthly excess over the threshold, at most half the welfare component.
func (pc *PensionCalculator) inWorkSuspension(annualIncome, welfareAnnual decimal.Decimal) decimal.Decimal {
	twelve := decimal.NewFromInt(12)
	two := decimal.NewFromInt(2)

	monthlyIncomeRaw := annualIncome.Mul(manYen).Div(twelve)
	welfareMonthlyRaw := welfareAnnual.Mul(manYen).Div(twelve)
	combined := monthlyIncomeRaw.Add(welfareMonthlyRaw)

	if combined.LessThanOrEqual(inWorkSuspensionThreshold) {
		return decimal.Zero
	}

	monthlyCut := combined.Sub(inWorkSuspensionThreshold).Div(two)
	monthlyCut = decimal.Min(monthlyCut, welfareMonthlyRaw.Div(two))
	return monthlyCut.Mul(twelve).Div(manYen)
}
