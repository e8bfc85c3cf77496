package calculation

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lifeplan/lifeplan/internal/domain"
)

// Engine builds the year-by-year ledger from a plan snapshot. A build is a
// pure function of the plan: it walks the simulated years strictly ascending
// (amortization and compounding carry state forward), emits one immutable
// YearLedger row per year, and never errors on malformed financial input —
// bad cells contribute zero so the projection always completes.
type Engine struct {
	TaxCalc     *TaxCalculator
	PensionCalc *PensionCalculator
	logger      *zap.Logger
}

// NewEngine creates an engine with default tax settings and no logging.
func NewEngine() *Engine {
	return NewEngineWith(domain.DefaultCorporateTaxSettings(), nil)
}

// NewEngineWith creates an engine with explicit corporate tax settings and
// an optional logger.
func NewEngineWith(corporate domain.CorporateTaxSettings, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		TaxCalc:     NewTaxCalculatorWithSettings(corporate),
		PensionCalc: NewPensionCalculator(),
		logger:      logger,
	}
}

// BuildLedger produces the full ledger for the plan's simulated year range.
// The returned map is freshly allocated on every call; callers replace their
// previous ledger wholesale rather than patching rows.
func (e *Engine) BuildLedger(plan *domain.Plan) domain.Ledger {
	e.TaxCalc.Corporate = plan.CorporateSettings()

	info := plan.BasicInfo
	years := simulatedYears(info)

	items := splitItems(plan)
	schedules := e.buildSchedules(plan, info.StartYear)
	assets := e.resolveAssets(plan, years)
	pensions := e.pensionEstimates(plan, items)

	ledger := make(domain.Ledger, len(years))
	for _, year := range years {
		row := e.buildYear(plan, items, schedules, assets, pensions, year)
		ledger[year] = row
	}

	e.logger.Debug("ledger built",
		zap.Int("years", len(years)),
		zap.Int("startYear", info.StartYear),
		zap.String("finalNetAssets", ledger.FinalNetAssets().String()))
	return ledger
}

func simulatedYears(info domain.BasicInfo) []int {
	years := make([]int, info.Years())
	for i := range years {
		years[i] = info.StartYear + i
	}
	return years
}

// planItems indexes the line items by role so the per-year loop stays flat.
type planItems struct {
	salary      *domain.LineItem
	side        *domain.LineItem
	spouse      *domain.LineItem
	pension     *domain.LineItem
	spousePen   *domain.LineItem
	investment  *domain.LineItem
	otherIncome []domain.LineItem

	personalExpense  []domain.LineItem
	corporateIncome  []domain.LineItem
	corporateExpense []domain.LineItem
}

func splitItems(plan *domain.Plan) planItems {
	var items planItems
	for i := range plan.Income {
		it := plan.Income[i]
		if it.Scope == domain.ScopeCorporate {
			items.corporateIncome = append(items.corporateIncome, it)
			continue
		}
		switch it.BasicType {
		case domain.BasicIncomeSalary:
			items.salary = &plan.Income[i]
		case domain.BasicIncomeSide:
			items.side = &plan.Income[i]
		case domain.BasicIncomeSpouse:
			items.spouse = &plan.Income[i]
		case domain.BasicIncomePension:
			items.pension = &plan.Income[i]
		case domain.BasicIncomeSpousePension:
			items.spousePen = &plan.Income[i]
		case domain.BasicIncomeInvestment:
			items.investment = &plan.Income[i]
		default:
			items.otherIncome = append(items.otherIncome, it)
		}
	}
	for _, it := range plan.Expense {
		if it.Scope == domain.ScopeCorporate {
			items.corporateExpense = append(items.corporateExpense, it)
		} else {
			items.personalExpense = append(items.personalExpense, it)
		}
	}
	return items
}

// buildSchedules amortizes every auto-calculated liability against the
// simulation start year.
func (e *Engine) buildSchedules(plan *domain.Plan, referenceYear int) map[string]LoanSchedule {
	schedules := make(map[string]LoanSchedule)
	for _, li := range plan.Liabilities {
		if !li.AutoCalculate {
			continue
		}
		if li.BorrowAmount.LessThanOrEqual(decimal.Zero) || li.TermYears <= 0 {
			e.logger.Warn("skipping auto liability with nonsense parameters",
				zap.String("id", li.ID), zap.String("name", li.Name))
			continue
		}
		schedules[li.ID] = BuildLoanSchedule(LoanParams{
			Principal:     li.BorrowAmount,
			AnnualRatePct: li.InterestRatePct,
			TermYears:     li.TermYears,
			Repayment:     li.RepaymentType,
			StartYear:     li.StartYear,
		}, referenceYear)
	}
	return schedules
}

// resolveAssets derives every asset's displayed balance series, folding
// investment-sourced life events into the first investment asset of the
// matching scope so they compound into later years.
func (e *Engine) resolveAssets(plan *domain.Plan, years []int) map[string]map[int]decimal.Decimal {
	growth := NewInvestmentGrowthEngine(plan.Parameters.DefaultInvestReturnPct)

	adjustments := make(map[string]map[int]decimal.Decimal)
	addAdjustment := func(assetID string, year int, delta decimal.Decimal) {
		if adjustments[assetID] == nil {
			adjustments[assetID] = make(map[int]decimal.Decimal)
		}
		adjustments[assetID][year] = adjustments[assetID][year].Add(delta)
	}

	for _, ev := range plan.LifeEvents {
		var scope domain.Scope
		switch ev.Source {
		case domain.SourcePersonalInvestment:
			scope = domain.ScopePersonal
		case domain.SourceCorporateInvestment:
			scope = domain.ScopeCorporate
		default:
			continue
		}
		target := firstInvestmentAsset(plan.Assets, scope)
		if target == "" {
			e.logger.Warn("investment life event with no investment asset in scope",
				zap.Int("year", ev.Year), zap.String("source", string(ev.Source)))
			continue
		}
		delta := ev.Amount
		if ev.Type == domain.EventExpense {
			delta = delta.Neg()
		}
		addAdjustment(target, ev.Year, delta)
	}

	// Applied loan schedules mirror their cash flow onto the linked asset:
	// principal in, payments out, folded into the carried balance.
	for _, li := range plan.Liabilities {
		if li.LinkedAssetID == "" || len(li.CashEffects) == 0 {
			continue
		}
		for year, delta := range li.CashEffects {
			addAdjustment(li.LinkedAssetID, year, delta)
		}
	}

	resolved := make(map[string]map[int]decimal.Decimal, len(plan.Assets))
	for _, a := range plan.Assets {
		resolved[a.ID] = growth.Resolve(a, years, adjustments[a.ID])
	}
	return resolved
}

func firstInvestmentAsset(assets []domain.AssetItem, scope domain.Scope) string {
	for _, a := range assets {
		if a.Scope == scope && a.IsInvestment {
			return a.ID
		}
	}
	return ""
}

// pensionPair holds the precomputed annual benefits for the household.
type pensionPair struct {
	main   PensionBreakdown
	spouse PensionBreakdown
}

func (e *Engine) pensionEstimates(plan *domain.Plan, items planItems) pensionPair {
	info := plan.BasicInfo
	var pair pensionPair

	mainGross := decimal.Zero
	if items.salary != nil {
		retirementYear := info.StartYear + (info.RetirementAge - info.CurrentAge)
		mainGross = raisedAmount(*items.salary, retirementYear, plan.Parameters.SalaryRaiseRatePct)
	}
	pair.main = e.PensionCalc.Estimate(PensionInput{
		AnnualIncome:   mainGross,
		WorkStartAge:   info.WorkStartAge,
		WorkEndAge:     info.RetirementAge,
		ClaimAge:       info.PensionClaimAge,
		Occupation:     info.Occupation,
		WorkAfterClaim: info.WorkAfterPension,
	})

	if sp := info.Spouse; sp != nil {
		spouseGross := decimal.Zero
		if items.spouse != nil {
			spouseRetirementYear := info.StartYear + (sp.RetirementAge - sp.CurrentAge)
			spouseGross = raisedAmount(*items.spouse, spouseRetirementYear, plan.Parameters.SalaryRaiseRatePct)
		}
		pair.spouse = e.PensionCalc.Estimate(PensionInput{
			AnnualIncome: spouseGross,
			WorkStartAge: sp.WorkStartAge,
			WorkEndAge:   sp.RetirementAge,
			ClaimAge:     sp.PensionClaimAge,
			Occupation:   sp.Occupation,
		})
	}
	return pair
}

// raisedAmount projects a sparse salary series to a year: the latest
// explicit entry at or before the year is the base, compounded forward at
// the raise rate. Years before the first entry resolve to zero.
func raisedAmount(item domain.LineItem, year int, raiseRatePct decimal.Decimal) decimal.Decimal {
	baseYear, found := 0, false
	for y := range item.Amounts {
		if y <= year && (!found || y > baseYear) {
			baseYear, found = y, true
		}
	}
	if !found {
		return decimal.Zero
	}
	base := item.Amounts[baseYear]
	if base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	growth := decimal.NewFromInt(1).Add(raiseRatePct.Div(decimal.NewFromInt(100)))
	return base.Mul(growth.Pow(decimal.NewFromInt(int64(year - baseYear))))
}

// inflated projects a raw amount entered in today's money to a display
// amount for the given elapsed years at the category's escalation rate.
func inflated(raw decimal.Decimal, ratePct decimal.Decimal, elapsed int) decimal.Decimal {
	if raw.IsZero() || elapsed <= 0 {
		return raw
	}
	growth := decimal.NewFromInt(1).Add(ratePct.Div(decimal.NewFromInt(100)))
	return raw.Mul(growth.Pow(decimal.NewFromInt(int64(elapsed))))
}

func (e *Engine) buildYear(plan *domain.Plan, items planItems, schedules map[string]LoanSchedule,
	assets map[string]map[int]decimal.Decimal, pensions pensionPair, year int) domain.YearLedger {

	info := plan.BasicInfo
	params := plan.Parameters
	age := info.AgeInYear(year)
	elapsed := year - info.StartYear

	row := domain.YearLedger{Year: year, Age: age}

	// Income side.
	if items.salary != nil && age <= info.RetirementAge {
		gross := raisedAmount(*items.salary, year, params.SalaryRaiseRatePct)
		row.MainIncome = e.TaxCalc.NetIncome(gross, info.Occupation).NetIncome
	}
	// Side income is miscellaneous income, not employment income: it gets
	// no salary raise and no withholding, landing gross in the year it is
	// entered and zero elsewhere.
	if items.side != nil {
		row.SideIncome = items.side.RawAt(year)
	}
	if sp := info.Spouse; sp != nil && items.spouse != nil {
		spouseAge := sp.CurrentAge + elapsed
		if spouseAge <= sp.RetirementAge {
			gross := raisedAmount(*items.spouse, year, params.SalaryRaiseRatePct)
			row.SpouseIncome = e.TaxCalc.NetIncome(gross, sp.Occupation).NetIncome
		}
	}

	claimAge := info.PensionClaimAge
	if claimAge <= 0 {
		claimAge = 65
	}
	if age >= claimAge {
		row.PensionIncome = pensions.main.Total
		if items.pension != nil {
			if v, ok := items.pension.Amounts[year]; ok {
				row.PensionIncome = v
			}
		}
	}
	if sp := info.Spouse; sp != nil {
		spouseClaim := sp.PensionClaimAge
		if spouseClaim <= 0 {
			spouseClaim = 65
		}
		if sp.CurrentAge+elapsed >= spouseClaim {
			row.SpousePensionIncome = pensions.spouse.Total
			if items.spousePen != nil {
				if v, ok := items.spousePen.Amounts[year]; ok {
					row.SpousePensionIncome = v
				}
			}
		}
	}
	if items.investment != nil {
		row.InvestmentIncome = items.investment.RawAt(year)
	}
	for _, it := range items.otherIncome {
		row.OtherIncome = row.OtherIncome.Add(it.RawAt(year))
	}

	// Expense side.
	row.LivingExpense = inflated(info.MonthlyLivingExpense.Mul(decimal.NewFromInt(12)), params.InflationRatePct, elapsed)
	row.HousingExpense = HousingCostForYear(plan.Housing, year, info.StartYear)

	for _, it := range items.personalExpense {
		raw := it.RawAt(year)
		if raw.IsZero() {
			continue
		}
		switch it.Category {
		case domain.CategoryLiving:
			row.LivingExpense = row.LivingExpense.Add(inflated(raw, params.InflationRatePct, elapsed))
		case domain.CategoryHousing:
			row.HousingExpense = row.HousingExpense.Add(inflated(raw, params.InflationRatePct, elapsed))
		case domain.CategoryEducation:
			row.EducationExpense = row.EducationExpense.Add(inflated(raw, params.EducationRiseRatePct, elapsed))
		default:
			row.OtherExpense = row.OtherExpense.Add(inflated(raw, params.InflationRatePct, elapsed))
		}
	}

	// Cash-flow life events.
	for _, ev := range plan.LifeEvents {
		if ev.Year != year {
			continue
		}
		switch ev.Source {
		case domain.SourcePersonal:
			if ev.Type == domain.EventIncome {
				row.OtherIncome = row.OtherIncome.Add(ev.Amount)
			} else {
				row.OtherExpense = row.OtherExpense.Add(ev.Amount)
			}
		case domain.SourceCorporate:
			if ev.Type == domain.EventIncome {
				row.CorporateIncome = row.CorporateIncome.Add(ev.Amount)
			} else {
				row.CorporateExpense = row.CorporateExpense.Add(ev.Amount)
			}
		}
	}

	// Loan repayments per scope.
	for _, li := range plan.Liabilities {
		sched, ok := schedules[li.ID]
		if !ok {
			continue
		}
		payment := sched.PaymentInYear(year)
		if li.Scope == domain.ScopeCorporate {
			row.CorporateLoanRepayment = row.CorporateLoanRepayment.Add(payment)
		} else {
			row.LoanRepayment = row.LoanRepayment.Add(payment)
		}
	}

	// Corporate income/expense items.
	for _, it := range items.corporateIncome {
		row.CorporateIncome = row.CorporateIncome.Add(it.RawAt(year))
	}
	for _, it := range items.corporateExpense {
		row.CorporateExpense = row.CorporateExpense.Add(inflated(it.RawAt(year), params.InflationRatePct, elapsed))
	}

	// Balances and totals.
	row.TotalIncome = row.MainIncome.Add(row.SideIncome).Add(row.SpouseIncome).
		Add(row.PensionIncome).Add(row.SpousePensionIncome).
		Add(row.InvestmentIncome).Add(row.OtherIncome)
	row.TotalExpense = row.LivingExpense.Add(row.HousingExpense).Add(row.EducationExpense).
		Add(row.OtherExpense).Add(row.LoanRepayment)
	row.PersonalBalance = row.TotalIncome.Sub(row.TotalExpense)
	row.CorporateBalance = row.CorporateIncome.Sub(row.CorporateExpense).Sub(row.CorporateLoanRepayment)
	row.CorporateTax = e.TaxCalc.CorporateTax(row.CorporateBalance).Total

	// Asset and liability aggregation per scope.
	for _, a := range plan.Assets {
		v := assets[a.ID][year]
		if a.Scope == domain.ScopeCorporate {
			row.CorporateTotalAssets = row.CorporateTotalAssets.Add(v)
		} else {
			row.PersonalTotalAssets = row.PersonalTotalAssets.Add(v)
		}
	}
	for _, li := range plan.Liabilities {
		var v decimal.Decimal
		if sched, ok := schedules[li.ID]; ok {
			v = sched.BalanceInYear(year)
		} else if raw, ok := li.Amounts[year]; ok {
			v = raw.Abs()
		}
		if li.Scope == domain.ScopeCorporate {
			row.CorporateLiabilityTotal = row.CorporateLiabilityTotal.Add(v)
		} else {
			row.PersonalLiabilityTotal = row.PersonalLiabilityTotal.Add(v)
		}
	}
	row.PersonalNetAssets = row.PersonalTotalAssets.Sub(row.PersonalLiabilityTotal)
	row.CorporateNetAssets = row.CorporateTotalAssets.Sub(row.CorporateLiabilityTotal)

	return roundRow(row)
}

// roundRow rounds every monetary field to one decimal man-yen. Net assets
// are re-derived after rounding so the identity
// netAssets == totalAssets - liabilityTotal holds exactly.
func roundRow(row domain.YearLedger) domain.YearLedger {
	r := func(d decimal.Decimal) decimal.Decimal { return d.Round(1) }

	row.MainIncome = r(row.MainIncome)
	row.SideIncome = r(row.SideIncome)
	row.SpouseIncome = r(row.SpouseIncome)
	row.PensionIncome = r(row.PensionIncome)
	row.SpousePensionIncome = r(row.SpousePensionIncome)
	row.InvestmentIncome = r(row.InvestmentIncome)
	row.OtherIncome = r(row.OtherIncome)
	row.TotalIncome = r(row.TotalIncome)

	row.LivingExpense = r(row.LivingExpense)
	row.HousingExpense = r(row.HousingExpense)
	row.EducationExpense = r(row.EducationExpense)
	row.OtherExpense = r(row.OtherExpense)
	row.LoanRepayment = r(row.LoanRepayment)
	row.TotalExpense = r(row.TotalExpense)

	row.PersonalBalance = r(row.PersonalBalance)
	row.PersonalTotalAssets = r(row.PersonalTotalAssets)
	row.PersonalLiabilityTotal = r(row.PersonalLiabilityTotal)
	row.PersonalNetAssets = row.PersonalTotalAssets.Sub(row.PersonalLiabilityTotal)

	row.CorporateIncome = r(row.CorporateIncome)
	row.CorporateExpense = r(row.CorporateExpense)
	row.CorporateLoanRepayment = r(row.CorporateLoanRepayment)
	row.CorporateBalance = r(row.CorporateBalance)
	row.CorporateTax = r(row.CorporateTax)
	row.CorporateTotalAssets = r(row.CorporateTotalAssets)
	row.CorporateLiabilityTotal = r(row.CorporateLiabilityTotal)
	row.CorporateNetAssets = row.CorporateTotalAssets.Sub(row.CorporateLiabilityTotal)

	return row
}
