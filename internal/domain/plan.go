// Package domain defines the input and output data model for the projection
// engine. All monetary amounts are expressed in man-yen (10,000 yen units)
// and held as decimal.Decimal; raw-yen arithmetic happens only inside the
// tax-bracket lookups in the calculation package.
package domain

import (
	"github.com/shopspring/decimal"
)

// Occupation identifies how a person earns income, which drives both the
// deduction model and pension eligibility.
type Occupation string

const (
	OccupationCompanyEmployee        Occupation = "company_employee"
	OccupationSelfEmployed           Occupation = "self_employed"
	OccupationPartTimeWithPension    Occupation = "part_time_with_pension"
	OccupationPartTimeWithoutPension Occupation = "part_time_without_pension"
	OccupationHomemaker              Occupation = "homemaker"
)

// Salaried reports whether salary deduction, social insurance and income tax
// are withheld from this occupation's gross pay.
func (o Occupation) Salaried() bool {
	switch o {
	case OccupationCompanyEmployee, OccupationPartTimeWithPension, OccupationPartTimeWithoutPension:
		return true
	}
	return false
}

// PensionEligible reports whether the occupation accrues the welfare-pension
// component on top of the basic pension.
func (o Occupation) PensionEligible() bool {
	switch o {
	case OccupationCompanyEmployee, OccupationPartTimeWithPension:
		return true
	}
	return false
}

// Scope separates the personal and corporate ledgers.
type Scope string

const (
	ScopePersonal  Scope = "personal"
	ScopeCorporate Scope = "corporate"
)

// ItemKind distinguishes income from expense line items.
type ItemKind string

const (
	KindIncome  ItemKind = "income"
	KindExpense ItemKind = "expense"
)

// BasicIncomeType marks the reserved income items that feed dedicated ledger
// columns. Items without a marker are user-added and aggregate into the
// "other" column instead, so they are never double counted.
type BasicIncomeType string

const (
	BasicIncomeNone          BasicIncomeType = ""
	BasicIncomeSalary        BasicIncomeType = "salary"
	BasicIncomeSide          BasicIncomeType = "side"
	BasicIncomeSpouse        BasicIncomeType = "spouse"
	BasicIncomePension       BasicIncomeType = "pension"
	BasicIncomeSpousePension BasicIncomeType = "spouse_pension"
	BasicIncomeInvestment    BasicIncomeType = "investment"
)

// Expense categories. The category selects which escalation rate applies
// when projecting raw amounts forward.
const (
	CategoryLiving    = "living"
	CategoryHousing   = "housing"
	CategoryEducation = "education"
	CategoryOther     = "other"
)

// Child is an existing child identified by current age.
type Child struct {
	CurrentAge int `yaml:"current_age" json:"currentAge"`
}

// PlannedChild is a child expected some years from the simulation start.
type PlannedChild struct {
	YearsFromNow int `yaml:"years_from_now" json:"yearsFromNow"`
}

// SpouseInfo carries the spouse attributes the income and pension
// calculations need. Present only when marital status is married.
type SpouseInfo struct {
	CurrentAge      int        `yaml:"current_age" json:"currentAge"`
	Occupation      Occupation `yaml:"occupation" json:"occupation"`
	WorkStartAge    int        `yaml:"work_start_age" json:"workStartAge"`
	RetirementAge   int        `yaml:"retirement_age" json:"retirementAge"`
	PensionClaimAge int        `yaml:"pension_claim_age" json:"pensionClaimAge"`
}

// BasicInfo anchors the simulation: the year range is
// [StartYear, StartYear+(DeathAge-CurrentAge)] inclusive, one entry per year.
type BasicInfo struct {
	CurrentAge           int             `yaml:"current_age" json:"currentAge"`
	DeathAge             int             `yaml:"death_age" json:"deathAge"`
	StartYear            int             `yaml:"start_year" json:"startYear"`
	Occupation           Occupation      `yaml:"occupation" json:"occupation"`
	MaritalStatus        string          `yaml:"marital_status" json:"maritalStatus"`
	Children             []Child         `yaml:"children" json:"children"`
	PlannedChildren      []PlannedChild  `yaml:"planned_children" json:"plannedChildren"`
	MonthlyLivingExpense decimal.Decimal `yaml:"monthly_living_expense" json:"monthlyLivingExpense"`
	WorkStartAge         int             `yaml:"work_start_age" json:"workStartAge"`
	RetirementAge        int             `yaml:"retirement_age" json:"retirementAge"`
	PensionClaimAge      int             `yaml:"pension_claim_age" json:"pensionClaimAge"`
	WorkAfterPension     bool            `yaml:"work_after_pension" json:"workAfterPension"`
	Spouse               *SpouseInfo     `yaml:"spouse,omitempty" json:"spouse,omitempty"`
}

// Years returns the number of simulated years (always at least one).
func (b BasicInfo) Years() int {
	n := b.DeathAge - b.CurrentAge + 1
	if n < 1 {
		n = 1
	}
	return n
}

// EndYear is the last simulated calendar year, inclusive.
func (b BasicInfo) EndYear() int {
	return b.StartYear + b.Years() - 1
}

// AgeInYear returns the person's age in the given calendar year.
func (b BasicInfo) AgeInYear(year int) int {
	return b.CurrentAge + (year - b.StartYear)
}

// Parameters are the global rates a user may change at any time. They are
// part of the engine's input snapshot; a change triggers a full rebuild and
// never patches previously derived amounts in place.
type Parameters struct {
	InflationRatePct          decimal.Decimal `yaml:"inflation_rate_pct" json:"inflationRatePct"`
	EducationRiseRatePct      decimal.Decimal `yaml:"education_rise_rate_pct" json:"educationRiseRatePct"`
	DefaultInvestReturnPct    decimal.Decimal `yaml:"default_invest_return_pct" json:"defaultInvestReturnPct"`
	SalaryRaiseRatePct        decimal.Decimal `yaml:"salary_raise_rate_pct" json:"salaryRaiseRatePct"`
	RentAnnualIncreaseRatePct decimal.Decimal `yaml:"rent_annual_increase_rate_pct" json:"rentAnnualIncreaseRatePct"`
}

// LineItem is a single income or expense series. Amounts holds the sparse
// user-entered raw values keyed by calendar year; absent years are zero.
// Displayed amounts are derived from raw values on every build and are never
// written back.
type LineItem struct {
	ID        string                  `yaml:"id" json:"id"`
	Name      string                  `yaml:"name" json:"name"`
	Scope     Scope                   `yaml:"scope" json:"scope"`
	Kind      ItemKind                `yaml:"kind" json:"kind"`
	Category  string                  `yaml:"category" json:"category"`
	BasicType BasicIncomeType         `yaml:"basic_type,omitempty" json:"basicType,omitempty"`
	Amounts   map[int]decimal.Decimal `yaml:"amounts" json:"amounts"`
}

// RawAt returns the explicit raw amount for a year, zero when absent.
func (li LineItem) RawAt(year int) decimal.Decimal {
	if v, ok := li.Amounts[year]; ok {
		return v
	}
	return decimal.Zero
}

// AssetType classifies asset items.
type AssetType string

const (
	AssetCash       AssetType = "cash"
	AssetInvestment AssetType = "investment"
	AssetProperty   AssetType = "property"
	AssetOther      AssetType = "other"
)

// AssetItem is a balance series. When IsInvestment is set, years without an
// explicit entry are compounded from the prior year's balance at
// InvestmentReturnPct (or the global default when nil).
type AssetItem struct {
	ID                  string                  `yaml:"id" json:"id"`
	Name                string                  `yaml:"name" json:"name"`
	Type                AssetType               `yaml:"type" json:"type"`
	Category            string                  `yaml:"category" json:"category"`
	Scope               Scope                   `yaml:"scope" json:"scope"`
	Amounts             map[int]decimal.Decimal `yaml:"amounts" json:"amounts"`
	IsInvestment        bool                    `yaml:"is_investment" json:"isInvestment"`
	InvestmentReturnPct *decimal.Decimal        `yaml:"investment_return_pct,omitempty" json:"investmentReturnPct,omitempty"`
}

// LiabilityType classifies liability items.
type LiabilityType string

const (
	LiabilityLoan   LiabilityType = "loan"
	LiabilityCredit LiabilityType = "credit"
	LiabilityOther  LiabilityType = "other"
)

// RepaymentType selects the amortization method for auto-calculated loans.
type RepaymentType string

const (
	RepaymentEqualPayment   RepaymentType = "equal_payment"
	RepaymentEqualPrincipal RepaymentType = "equal_principal"
)

// LiabilityItem is an outstanding-balance series. While AutoCalculate is set,
// Amounts for years other than StartYear are written exclusively by the loan
// amortizer and are read-only to the user. CashEffects records the applied
// schedule's per-year cash deltas; the ledger build folds them into the
// linked asset's carried balance, and a cancel drops them without touching
// the asset's own entries.
type LiabilityItem struct {
	ID              string                  `yaml:"id" json:"id"`
	Name            string                  `yaml:"name" json:"name"`
	Type            LiabilityType           `yaml:"type" json:"type"`
	Category        string                  `yaml:"category" json:"category"`
	Scope           Scope                   `yaml:"scope" json:"scope"`
	Amounts         map[int]decimal.Decimal `yaml:"amounts" json:"amounts"`
	InterestRatePct decimal.Decimal         `yaml:"interest_rate_pct" json:"interestRatePct"`
	TermYears       int                     `yaml:"term_years" json:"termYears"`
	RepaymentType   RepaymentType           `yaml:"repayment_type" json:"repaymentType"`
	StartYear       int                     `yaml:"start_year" json:"startYear"`
	BorrowAmount    decimal.Decimal         `yaml:"borrow_amount" json:"borrowAmount"`
	AutoCalculate   bool                    `yaml:"auto_calculate" json:"autoCalculate"`
	LinkedAssetID   string                  `yaml:"linked_asset_id,omitempty" json:"linkedAssetId,omitempty"`
	CashEffects     map[int]decimal.Decimal `yaml:"cash_effects,omitempty" json:"cashEffects,omitempty"`
}

// EventType marks a life event as money in or money out.
type EventType string

const (
	EventIncome  EventType = "income"
	EventExpense EventType = "expense"
)

// EventSource selects which pool a life event hits: the personal or corporate
// cash flow, or the corresponding investment balances.
type EventSource string

const (
	SourcePersonal            EventSource = "personal"
	SourceCorporate           EventSource = "corporate"
	SourcePersonalInvestment  EventSource = "personal_investment"
	SourceCorporateInvestment EventSource = "corporate_investment"
)

// LifeEvent is a one-off adjustment in a single year. Events are read-only
// inputs; the engine never mutates them.
type LifeEvent struct {
	Year        int             `yaml:"year" json:"year"`
	Description string          `yaml:"description" json:"description"`
	Amount      decimal.Decimal `yaml:"amount" json:"amount"`
	Type        EventType       `yaml:"type" json:"type"`
	Source      EventSource     `yaml:"source" json:"source"`
}

// RentalPlan describes rented housing. Rent inflates annually and a renewal
// fee lands every RenewalIntervalYears after the first interval boundary.
type RentalPlan struct {
	MonthlyRent           decimal.Decimal `yaml:"monthly_rent" json:"monthlyRent"`
	AnnualIncreaseRatePct decimal.Decimal `yaml:"annual_increase_rate_pct" json:"annualIncreaseRatePct"`
	RenewalFee            decimal.Decimal `yaml:"renewal_fee" json:"renewalFee"`
	RenewalIntervalYears  int             `yaml:"renewal_interval_years" json:"renewalIntervalYears"`
}

// OwnedHomePlan describes owned housing: a mortgage through the loan term,
// maintenance for as long as the property is held.
type OwnedHomePlan struct {
	PurchaseYear        int             `yaml:"purchase_year" json:"purchaseYear"`
	PurchasePrice       decimal.Decimal `yaml:"purchase_price" json:"purchasePrice"`
	LoanAmount          decimal.Decimal `yaml:"loan_amount" json:"loanAmount"`
	InterestRatePct     decimal.Decimal `yaml:"interest_rate_pct" json:"interestRatePct"`
	LoanTermYears       int             `yaml:"loan_term_years" json:"loanTermYears"`
	MaintenanceRatePct  decimal.Decimal `yaml:"maintenance_rate_pct" json:"maintenanceRatePct"`
}

// HousingPlan selects the rental or ownership branch. At most one is set.
type HousingPlan struct {
	Rental *RentalPlan    `yaml:"rental,omitempty" json:"rental,omitempty"`
	Owned  *OwnedHomePlan `yaml:"owned,omitempty" json:"owned,omitempty"`
}

// CorporateTaxSettings configures the two-bracket corporate tax model.
type CorporateTaxSettings struct {
	BracketThreshold decimal.Decimal `yaml:"bracket_threshold" json:"bracketThreshold"`
	LowRate          decimal.Decimal `yaml:"low_rate" json:"lowRate"`
	HighRate         decimal.Decimal `yaml:"high_rate" json:"highRate"`
	LocalRate        decimal.Decimal `yaml:"local_rate" json:"localRate"`
	ResidentPropRate decimal.Decimal `yaml:"resident_prop_rate" json:"residentPropRate"`
	Equalization     decimal.Decimal `yaml:"equalization" json:"equalization"`
}

// DefaultCorporateTaxSettings mirrors the simplified small-company model:
// 15%/23.2% split at 800 man-yen, 10.3% local corporate tax, 7% resident
// proportional, 7 man-yen equalization charged even at a loss.
func DefaultCorporateTaxSettings() CorporateTaxSettings {
	return CorporateTaxSettings{
		BracketThreshold: decimal.NewFromInt(800),
		LowRate:          decimal.NewFromFloat(0.15),
		HighRate:         decimal.NewFromFloat(0.232),
		LocalRate:        decimal.NewFromFloat(0.103),
		ResidentPropRate: decimal.NewFromFloat(0.07),
		Equalization:     decimal.NewFromInt(7),
	}
}

// Plan is the complete input snapshot the engine consumes. The ledger is a
// pure function of a Plan; rebuilding from an identical Plan yields an
// identical ledger.
type Plan struct {
	BasicInfo   BasicInfo             `yaml:"basic_info" json:"basicInfo"`
	Parameters  Parameters            `yaml:"parameters" json:"parameters"`
	Income      []LineItem            `yaml:"income" json:"income"`
	Expense     []LineItem            `yaml:"expense" json:"expense"`
	Assets      []AssetItem           `yaml:"assets" json:"assets"`
	Liabilities []LiabilityItem       `yaml:"liabilities" json:"liabilities"`
	LifeEvents  []LifeEvent           `yaml:"life_events" json:"lifeEvents"`
	Housing     *HousingPlan          `yaml:"housing,omitempty" json:"housing,omitempty"`
	Corporate   *CorporateTaxSettings `yaml:"corporate,omitempty" json:"corporate,omitempty"`
}

// CorporateSettings returns the configured corporate tax settings or the
// defaults when the plan carries none.
func (p *Plan) CorporateSettings() CorporateTaxSettings {
	if p.Corporate != nil {
		return *p.Corporate
	}
	return DefaultCorporateTaxSettings()
}
