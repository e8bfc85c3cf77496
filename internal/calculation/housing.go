package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/lifeplan/lifeplan/internal/domain"
)

// HousingCostForYear computes the housing outlay for one calendar year in
// man-yen. Rentals inflate the base rent annually and add a renewal fee on
// interval boundaries (never in the first year). Owned property costs
// nothing before the purchase year, mortgage plus maintenance through the
// loan term, and maintenance only after payoff.
func HousingCostForYear(plan *domain.HousingPlan, year, simStartYear int) decimal.Decimal {
	if plan == nil {
		return decimal.Zero
	}
	if plan.Rental != nil {
		return rentalCost(plan.Rental, year-simStartYear)
	}
	if plan.Owned != nil {
		return ownedCost(plan.Owned, year)
	}
	return decimal.Zero
}

func rentalCost(r *domain.RentalPlan, elapsed int) decimal.Decimal {
	if elapsed < 0 || r.MonthlyRent.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	growth := decimal.NewFromInt(1).Add(r.AnnualIncreaseRatePct.Div(decimal.NewFromInt(100)))
	annual := r.MonthlyRent.Mul(decimal.NewFromInt(12)).Mul(growth.Pow(decimal.NewFromInt(int64(elapsed))))

	if r.RenewalIntervalYears > 0 && elapsed > 0 && elapsed%r.RenewalIntervalYears == 0 {
		annual = annual.Add(r.RenewalFee)
	}
	return annual.Round(1)
}

func ownedCost(o *domain.OwnedHomePlan, year int) decimal.Decimal {
	if year < o.PurchaseYear {
		return decimal.Zero
	}

	maintenance := o.PurchasePrice.Mul(o.MaintenanceRatePct).Div(decimal.NewFromInt(100))

	lastLoanYear := o.PurchaseYear + o.LoanTermYears - 1
	if year <= lastLoanYear && o.LoanAmount.GreaterThan(decimal.Zero) && o.LoanTermYears > 0 {
		mortgage := MonthlyPayment(o.LoanAmount, o.InterestRatePct, o.LoanTermYears).Mul(decimal.NewFromInt(12))
		return mortgage.Add(maintenance).Round(1)
	}
	return maintenance.Round(1)
}
