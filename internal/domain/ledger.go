package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// YearLedger is one immutable row of the projection: every aggregated figure
// for a single calendar year, personal and corporate scope side by side.
// Rows are value types; once the engine emits one it is never patched.
type YearLedger struct {
	Year int `json:"year" yaml:"year"`
	Age  int `json:"age" yaml:"age"`

	// Personal income, net of tax where the source is salaried.
	MainIncome          decimal.Decimal `json:"mainIncome" yaml:"main_income"`
	SideIncome          decimal.Decimal `json:"sideIncome" yaml:"side_income"`
	SpouseIncome        decimal.Decimal `json:"spouseIncome" yaml:"spouse_income"`
	PensionIncome       decimal.Decimal `json:"pensionIncome" yaml:"pension_income"`
	SpousePensionIncome decimal.Decimal `json:"spousePensionIncome" yaml:"spouse_pension_income"`
	InvestmentIncome    decimal.Decimal `json:"investmentIncome" yaml:"investment_income"`
	OtherIncome         decimal.Decimal `json:"otherIncome" yaml:"other_income"`
	TotalIncome         decimal.Decimal `json:"totalIncome" yaml:"total_income"`

	// Personal expenses after rate escalation.
	LivingExpense    decimal.Decimal `json:"livingExpense" yaml:"living_expense"`
	HousingExpense   decimal.Decimal `json:"housingExpense" yaml:"housing_expense"`
	EducationExpense decimal.Decimal `json:"educationExpense" yaml:"education_expense"`
	OtherExpense     decimal.Decimal `json:"otherExpense" yaml:"other_expense"`
	LoanRepayment    decimal.Decimal `json:"loanRepayment" yaml:"loan_repayment"`
	TotalExpense     decimal.Decimal `json:"totalExpense" yaml:"total_expense"`

	// Personal aggregates. PersonalNetAssets always equals
	// PersonalTotalAssets - PersonalLiabilityTotal.
	PersonalBalance        decimal.Decimal `json:"personalBalance" yaml:"personal_balance"`
	PersonalTotalAssets    decimal.Decimal `json:"personalTotalAssets" yaml:"personal_total_assets"`
	PersonalLiabilityTotal decimal.Decimal `json:"personalLiabilityTotal" yaml:"personal_liability_total"`
	PersonalNetAssets      decimal.Decimal `json:"personalNetAssets" yaml:"personal_net_assets"`

	// Corporate scope.
	CorporateIncome         decimal.Decimal `json:"corporateIncome" yaml:"corporate_income"`
	CorporateExpense        decimal.Decimal `json:"corporateExpense" yaml:"corporate_expense"`
	CorporateLoanRepayment  decimal.Decimal `json:"corporateLoanRepayment" yaml:"corporate_loan_repayment"`
	CorporateBalance        decimal.Decimal `json:"corporateBalance" yaml:"corporate_balance"`
	CorporateTax            decimal.Decimal `json:"corporateTax" yaml:"corporate_tax"`
	CorporateTotalAssets    decimal.Decimal `json:"corporateTotalAssets" yaml:"corporate_total_assets"`
	CorporateLiabilityTotal decimal.Decimal `json:"corporateLiabilityTotal" yaml:"corporate_liability_total"`
	CorporateNetAssets      decimal.Decimal `json:"corporateNetAssets" yaml:"corporate_net_assets"`
}

// Ledger is the engine's output: one row per simulated year. A rebuild
// replaces the whole map atomically.
type Ledger map[int]YearLedger

// Years returns the simulated years in ascending order.
func (l Ledger) Years() []int {
	years := make([]int, 0, len(l))
	for y := range l {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Rows returns the ledger rows in year order.
func (l Ledger) Rows() []YearLedger {
	rows := make([]YearLedger, 0, len(l))
	for _, y := range l.Years() {
		rows = append(rows, l[y])
	}
	return rows
}

// FinalNetAssets returns the personal net assets of the last simulated year.
func (l Ledger) FinalNetAssets() decimal.Decimal {
	years := l.Years()
	if len(years) == 0 {
		return decimal.Zero
	}
	return l[years[len(years)-1]].PersonalNetAssets
}
