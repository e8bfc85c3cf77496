package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/lifeplan/lifeplan/internal/domain"
)

// InputParser handles parsing of plan input files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a plan from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Plan, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.LoadFromBytes(data)
}

// LoadFromBytes parses, normalizes and validates a YAML plan document
func (ip *InputParser) LoadFromBytes(data []byte) (*domain.Plan, error) {
	var plan domain.Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ip.Normalize(&plan)

	if err := ip.ValidatePlan(&plan); err != nil {
		return nil, fmt.Errorf("plan validation failed: %w", err)
	}
	return &plan, nil
}

// Normalize fills in generated IDs and structural defaults. Monetary values
// are left alone: the projection engine treats bad cells as zero rather than
// rejecting the whole plan.
func (ip *InputParser) Normalize(plan *domain.Plan) {
	if plan.BasicInfo.PensionClaimAge <= 0 {
		plan.BasicInfo.PensionClaimAge = 65
	}
	if plan.BasicInfo.WorkStartAge <= 0 {
		plan.BasicInfo.WorkStartAge = 22
	}
	if plan.BasicInfo.RetirementAge <= 0 {
		plan.BasicInfo.RetirementAge = 65
	}

	for i := range plan.Income {
		if plan.Income[i].ID == "" {
			plan.Income[i].ID = uuid.NewString()
		}
		if plan.Income[i].Kind == "" {
			plan.Income[i].Kind = domain.KindIncome
		}
		if plan.Income[i].Scope == "" {
			plan.Income[i].Scope = domain.ScopePersonal
		}
	}
	for i := range plan.Expense {
		if plan.Expense[i].ID == "" {
			plan.Expense[i].ID = uuid.NewString()
		}
		if plan.Expense[i].Kind == "" {
			plan.Expense[i].Kind = domain.KindExpense
		}
		if plan.Expense[i].Scope == "" {
			plan.Expense[i].Scope = domain.ScopePersonal
		}
	}
	for i := range plan.Assets {
		if plan.Assets[i].ID == "" {
			plan.Assets[i].ID = uuid.NewString()
		}
		if plan.Assets[i].Scope == "" {
			plan.Assets[i].Scope = domain.ScopePersonal
		}
	}
	for i := range plan.Liabilities {
		if plan.Liabilities[i].ID == "" {
			plan.Liabilities[i].ID = uuid.NewString()
		}
		if plan.Liabilities[i].Scope == "" {
			plan.Liabilities[i].Scope = domain.ScopePersonal
		}
		if plan.Liabilities[i].RepaymentType == "" {
			plan.Liabilities[i].RepaymentType = domain.RepaymentEqualPayment
		}
	}
}

// ValidatePlan validates the structural integrity of a plan
func (ip *InputParser) ValidatePlan(plan *domain.Plan) error {
	if err := ip.validateBasicInfo(&plan.BasicInfo); err != nil {
		return fmt.Errorf("basic info validation failed: %w", err)
	}
	for i, li := range plan.Liabilities {
		if err := ip.validateLiability(&li); err != nil {
			return fmt.Errorf("liability %d (%s) validation failed: %w", i, li.Name, err)
		}
	}
	for i, ev := range plan.LifeEvents {
		if err := ip.validateLifeEvent(&ev); err != nil {
			return fmt.Errorf("life event %d (%s) validation failed: %w", i, ev.Description, err)
		}
	}
	if plan.Housing != nil {
		if err := ip.validateHousing(plan.Housing); err != nil {
			return fmt.Errorf("housing validation failed: %w", err)
		}
	}
	return nil
}

func (ip *InputParser) validateBasicInfo(info *domain.BasicInfo) error {
	if info.CurrentAge <= 0 || info.CurrentAge > 120 {
		return fmt.Errorf("current age must be between 1 and 120")
	}
	if info.DeathAge < info.CurrentAge {
		return fmt.Errorf("death age cannot be before current age")
	}
	if info.StartYear < 1900 || info.StartYear > 2200 {
		return fmt.Errorf("start year must be between 1900 and 2200")
	}
	if !validOccupation(info.Occupation) {
		return fmt.Errorf("unknown occupation: %s", info.Occupation)
	}
	if info.MonthlyLivingExpense.LessThan(decimal.Zero) {
		return fmt.Errorf("monthly living expense cannot be negative")
	}
	if info.RetirementAge < info.WorkStartAge {
		return fmt.Errorf("retirement age cannot be before work start age")
	}
	for i, c := range info.Children {
		if c.CurrentAge < 0 {
			return fmt.Errorf("child %d: current age cannot be negative", i)
		}
	}
	for i, c := range info.PlannedChildren {
		if c.YearsFromNow < 0 {
			return fmt.Errorf("planned child %d: years from now cannot be negative", i)
		}
	}
	if info.Spouse != nil {
		if info.Spouse.CurrentAge <= 0 {
			return fmt.Errorf("spouse current age must be positive")
		}
		if !validOccupation(info.Spouse.Occupation) {
			return fmt.Errorf("unknown spouse occupation: %s", info.Spouse.Occupation)
		}
	}
	return nil
}

func (ip *InputParser) validateLiability(li *domain.LiabilityItem) error {
	if !li.AutoCalculate {
		return nil
	}
	if li.BorrowAmount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("borrow amount must be positive for auto-calculated loans")
	}
	if li.TermYears <= 0 {
		return fmt.Errorf("term years must be positive for auto-calculated loans")
	}
	if li.InterestRatePct.LessThan(decimal.Zero) {
		return fmt.Errorf("interest rate cannot be negative")
	}
	if li.RepaymentType != domain.RepaymentEqualPayment && li.RepaymentType != domain.RepaymentEqualPrincipal {
		return fmt.Errorf("repayment type must be %q or %q", domain.RepaymentEqualPayment, domain.RepaymentEqualPrincipal)
	}
	if li.StartYear <= 0 {
		return fmt.Errorf("start year is required for auto-calculated loans")
	}
	return nil
}

func (ip *InputParser) validateLifeEvent(ev *domain.LifeEvent) error {
	if ev.Year <= 0 {
		return fmt.Errorf("year is required")
	}
	if ev.Type != domain.EventIncome && ev.Type != domain.EventExpense {
		return fmt.Errorf("type must be %q or %q", domain.EventIncome, domain.EventExpense)
	}
	switch ev.Source {
	case domain.SourcePersonal, domain.SourceCorporate, domain.SourcePersonalInvestment, domain.SourceCorporateInvestment:
	default:
		return fmt.Errorf("unknown source: %s", ev.Source)
	}
	return nil
}

func (ip *InputParser) validateHousing(h *domain.HousingPlan) error {
	if h.Rental != nil && h.Owned != nil {
		return fmt.Errorf("specify either rental or owned housing, not both")
	}
	if h.Rental != nil {
		if h.Rental.MonthlyRent.LessThan(decimal.Zero) {
			return fmt.Errorf("monthly rent cannot be negative")
		}
		if h.Rental.RenewalIntervalYears < 0 {
			return fmt.Errorf("renewal interval cannot be negative")
		}
	}
	if h.Owned != nil {
		if h.Owned.PurchaseYear <= 0 {
			return fmt.Errorf("purchase year is required")
		}
		if h.Owned.PurchasePrice.LessThan(decimal.Zero) {
			return fmt.Errorf("purchase price cannot be negative")
		}
		if h.Owned.LoanAmount.GreaterThan(h.Owned.PurchasePrice) {
			return fmt.Errorf("loan amount cannot exceed purchase price")
		}
	}
	return nil
}

func validOccupation(o domain.Occupation) bool {
	switch o {
	case domain.OccupationCompanyEmployee, domain.OccupationSelfEmployed,
		domain.OccupationPartTimeWithPension, domain.OccupationPartTimeWithoutPension,
		domain.OccupationHomemaker:
		return true
	}
	return false
}
