package calculation

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/lifeplan/lifeplan/internal/domain"
)

// LoanParams describes a loan to amortize. StartYear may precede the
// reference year, in which case the outstanding balance is reconstructed
// before the forward schedule is generated.
type LoanParams struct {
	Principal     decimal.Decimal
	AnnualRatePct decimal.Decimal
	TermYears     int
	Repayment     domain.RepaymentType
	StartYear     int
}

// ScheduleEntry is one year of an amortization schedule, rounded to one
// decimal man-yen. RemainingBalance is the outstanding principal at year end
// and never goes below zero.
type ScheduleEntry struct {
	Year             int             `json:"year"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	Payment          decimal.Decimal `json:"payment"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
}

// LoanSchedule is a generated repayment schedule. An already-retired loan
// (elapsed term >= original term) yields an empty schedule, not an error.
type LoanSchedule struct {
	Entries        []ScheduleEntry `json:"entries"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Backdated      bool            `json:"backdated"`
}

// PaymentInYear returns the total payment due in a calendar year, zero when
// the schedule has no entry for it.
func (s LoanSchedule) PaymentInYear(year int) decimal.Decimal {
	for _, e := range s.Entries {
		if e.Year == year {
			return e.Payment
		}
	}
	return decimal.Zero
}

// BalanceInYear returns the outstanding balance at the end of a calendar
// year. Years before the schedule report the initial balance; years after it
// report zero.
func (s LoanSchedule) BalanceInYear(year int) decimal.Decimal {
	if len(s.Entries) == 0 {
		return decimal.Zero
	}
	if year < s.Entries[0].Year {
		return decimal.Zero
	}
	for _, e := range s.Entries {
		if e.Year == year {
			return e.RemainingBalance
		}
	}
	return decimal.Zero
}

// BuildLoanSchedule generates a yearly repayment schedule. referenceYear is
// the simulation start year: loans starting earlier are backdated (balance
// reconstructed as of the reference year, schedule truncated to the
// remaining term), loans starting later schedule from their start year.
// Nonsensical inputs (non-positive principal or term, negative rate) yield
// an empty schedule.
func BuildLoanSchedule(p LoanParams, referenceYear int) LoanSchedule {
	if p.Principal.LessThanOrEqual(decimal.Zero) || p.TermYears <= 0 || p.AnnualRatePct.IsNegative() {
		return LoanSchedule{}
	}

	balance := p.Principal
	firstYear := p.StartYear
	remainingYears := p.TermYears
	backdated := false

	if p.StartYear < referenceYear {
		backdated = true
		elapsed := referenceYear - p.StartYear
		if elapsed >= p.TermYears {
			return LoanSchedule{Backdated: true}
		}
		balance = backdatedBalance(p, elapsed)
		firstYear = referenceYear
		remainingYears = p.TermYears - elapsed
	}

	if balance.LessThanOrEqual(decimal.Zero) {
		return LoanSchedule{Backdated: backdated}
	}

	var entries []ScheduleEntry
	if p.AnnualRatePct.IsZero() {
		entries = zeroRateSchedule(balance, remainingYears, firstYear)
	} else {
		entries = monthlySchedule(balance, p.AnnualRatePct, remainingYears, p.Repayment, firstYear)
	}

	return LoanSchedule{Entries: entries, InitialBalance: balance.Round(1), Backdated: backdated}
}

// MonthlyPayment returns the fixed monthly payment of an equal-payment loan,
// falling back to straight-line division at a zero rate.
func MonthlyPayment(principal, annualRatePct decimal.Decimal, termYears int) decimal.Decimal {
	if principal.LessThanOrEqual(decimal.Zero) || termYears <= 0 {
		return decimal.Zero
	}
	n := termYears * 12
	if annualRatePct.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(n)))
	}
	r := annualRatePct.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))

	// (1+r)^n in float64; monetary arithmetic stays decimal.
	factor := math.Pow(1+r.InexactFloat64(), float64(n))
	factorDec := decimal.NewFromFloat(factor)
	return principal.Mul(r).Mul(factorDec).Div(factorDec.Sub(decimal.NewFromInt(1)))
}

// backdatedBalance reconstructs the theoretical outstanding balance after
// the elapsed years, clamped at zero.
func backdatedBalance(p LoanParams, elapsedYears int) decimal.Decimal {
	termMonths := p.TermYears * 12
	elapsedMonths := elapsedYears * 12

	if p.AnnualRatePct.IsZero() {
		// Linear principal reduction.
		repaid := p.Principal.Mul(decimal.NewFromInt(int64(elapsedYears))).Div(decimal.NewFromInt(int64(p.TermYears)))
		return decimal.Max(p.Principal.Sub(repaid), decimal.Zero)
	}

	r := p.AnnualRatePct.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))

	if p.Repayment == domain.RepaymentEqualPrincipal {
		monthlyPrincipal := p.Principal.Div(decimal.NewFromInt(int64(termMonths)))
		balance := p.Principal.Sub(monthlyPrincipal.Mul(decimal.NewFromInt(int64(elapsedMonths))))
		return decimal.Max(balance, decimal.Zero)
	}

	payment := MonthlyPayment(p.Principal, p.AnnualRatePct, p.TermYears)
	balance := p.Principal
	for m := 0; m < elapsedMonths; m++ {
		interest := balance.Mul(r)
		balance = balance.Sub(payment.Sub(interest))
		if balance.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero
		}
	}
	return balance
}

// zeroRateSchedule spreads the principal evenly across the remaining years
// with no interest component.
func zeroRateSchedule(balance decimal.Decimal, years, firstYear int) []ScheduleEntry {
	entries := make([]ScheduleEntry, 0, years)
	annual := balance.Div(decimal.NewFromInt(int64(years)))
	remaining := balance
	for i := 0; i < years; i++ {
		principal := annual
		if i == years-1 {
			principal = remaining // absorb division remainder in the last year
		}
		remaining = decimal.Max(remaining.Sub(principal), decimal.Zero)
		entries = append(entries, ScheduleEntry{
			Year:             firstYear + i,
			Principal:        principal.Round(1),
			Payment:          principal.Round(1),
			Interest:         decimal.Zero,
			RemainingBalance: remaining.Round(1),
		})
	}
	return entries
}

// monthlySchedule simulates the loan month by month and aggregates twelve
// months into each yearly entry.
func monthlySchedule(balance, annualRatePct decimal.Decimal, years int, repayment domain.RepaymentType, firstYear int) []ScheduleEntry {
	months := years * 12
	r := annualRatePct.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))

	var fixedPayment, fixedPrincipal decimal.Decimal
	if repayment == domain.RepaymentEqualPrincipal {
		fixedPrincipal = balance.Div(decimal.NewFromInt(int64(months)))
	} else {
		fixedPayment = MonthlyPayment(balance, annualRatePct, years)
	}

	entries := make([]ScheduleEntry, 0, years)
	remaining := balance

	for y := 0; y < years; y++ {
		var yearPrincipal, yearInterest decimal.Decimal
		for m := 0; m < 12; m++ {
			if remaining.LessThanOrEqual(decimal.Zero) {
				break
			}
			interest := remaining.Mul(r)

			var principal decimal.Decimal
			if repayment == domain.RepaymentEqualPrincipal {
				principal = fixedPrincipal
			} else {
				principal = fixedPayment.Sub(interest)
			}
			// The final month absorbs rounding drift.
			if principal.GreaterThan(remaining) || (y == years-1 && m == 11) {
				principal = remaining
			}

			yearPrincipal = yearPrincipal.Add(principal)
			yearInterest = yearInterest.Add(interest)
			remaining = remaining.Sub(principal)
		}
		remaining = decimal.Max(remaining, decimal.Zero)
		entries = append(entries, ScheduleEntry{
			Year:             firstYear + y,
			Principal:        yearPrincipal.Round(1),
			Interest:         yearInterest.Round(1),
			Payment:          yearPrincipal.Add(yearInterest).Round(1),
			RemainingBalance: remaining.Round(1),
		})
	}
	return entries
}
