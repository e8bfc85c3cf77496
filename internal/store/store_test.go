package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeplan/lifeplan/internal/calculation"
	"github.com/lifeplan/lifeplan/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestStore(t *testing.T) *PlanStore {
	t.Helper()
	plan := &domain.Plan{
		BasicInfo: domain.BasicInfo{
			CurrentAge:           40,
			DeathAge:             49,
			StartYear:            2025,
			Occupation:           domain.OccupationCompanyEmployee,
			MonthlyLivingExpense: d("20"),
			WorkStartAge:         22,
			RetirementAge:        65,
			PensionClaimAge:      65,
		},
		Income: []domain.LineItem{
			{
				ID:        "salary",
				Name:      "Salary",
				Scope:     domain.ScopePersonal,
				Kind:      domain.KindIncome,
				BasicType: domain.BasicIncomeSalary,
				Amounts:   map[int]decimal.Decimal{2025: d("500")},
			},
		},
		Assets: []domain.AssetItem{
			{
				ID:      "bank",
				Name:    "Bank",
				Type:    domain.AssetCash,
				Scope:   domain.ScopePersonal,
				Amounts: map[int]decimal.Decimal{2025: d("300")},
			},
		},
	}
	return NewPlanStore(plan, calculation.NewEngine(), nil)
}

func TestStoreBuildsLedgerOnCreation(t *testing.T) {
	s := newTestStore(t)
	require.Len(t, s.Ledger(), 10)
}

func TestMutationsReplaceLedger(t *testing.T) {
	s := newTestStore(t)
	before := s.Ledger()

	s.AddExpenseItem(domain.LineItem{
		Name:     "Gym",
		Category: domain.CategoryOther,
		Amounts:  map[int]decimal.Decimal{2025: d("12")},
	})
	after := s.Ledger()

	// The ledger map is replaced wholesale, never patched.
	assert.NotEqual(t, before[2025].OtherExpense, after[2025].OtherExpense)
	assert.True(t, before[2025].OtherExpense.IsZero())
	assert.True(t, after[2025].OtherExpense.Equal(d("12")))
}

func TestAddItemsGenerateIDs(t *testing.T) {
	s := newTestStore(t)

	incomeID := s.AddIncomeItem(domain.LineItem{Name: "Royalties"})
	expenseID := s.AddExpenseItem(domain.LineItem{Name: "Gym"})
	assetID := s.AddAsset(domain.AssetItem{Name: "Fund", Type: domain.AssetInvestment, IsInvestment: true})

	assert.NotEmpty(t, incomeID)
	assert.NotEmpty(t, expenseID)
	assert.NotEmpty(t, assetID)
	assert.NotEqual(t, incomeID, expenseID)

	require.NoError(t, s.UpdateItemAmount(incomeID, 2026, d("40")))
	assert.True(t, s.Ledger()[2026].OtherIncome.Equal(d("40")))
}

func TestUpdateItemAmountUnknownID(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.UpdateItemAmount("nope", 2025, d("1")))
}

func TestRemoveItem(t *testing.T) {
	s := newTestStore(t)
	id := s.AddExpenseItem(domain.LineItem{
		Name:     "Gym",
		Category: domain.CategoryOther,
		Amounts:  map[int]decimal.Decimal{2025: d("12")},
	})

	require.NoError(t, s.RemoveItem(id))
	assert.True(t, s.Ledger()[2025].OtherExpense.IsZero())
	assert.Error(t, s.RemoveItem(id))
}

func TestApplyLoanSchedule(t *testing.T) {
	s := newTestStore(t)
	loanID := s.AddLiability(domain.LiabilityItem{
		Name:            "Car loan",
		Type:            domain.LiabilityLoan,
		BorrowAmount:    d("1000"),
		InterestRatePct: d("0"),
		TermYears:       10,
		RepaymentType:   domain.RepaymentEqualPayment,
		StartYear:       2026,
		AutoCalculate:   true,
	})

	require.NoError(t, s.ApplyLoanSchedule(loanID))
	plan := s.Plan()

	li := plan.Liabilities[0]
	assert.Equal(t, "bank", li.LinkedAssetID)
	// Principal in minus the first payment, then payments out.
	assert.True(t, li.CashEffects[2026].Equal(d("900")), "2026 effect: %s", li.CashEffects[2026])
	assert.True(t, li.CashEffects[2027].Equal(d("-100")), "2027 effect: %s", li.CashEffects[2027])

	// The deltas live on the link; the asset's own entries stay user-owned.
	bank := plan.Assets[0]
	require.Len(t, bank.Amounts, 1)
	assert.True(t, bank.Amounts[2025].Equal(d("300")))

	// Outstanding balance written for amortizer-owned years.
	assert.True(t, li.Amounts[2027].Equal(d("800")), "2027 balance: %s", li.Amounts[2027])
	_, hasStartYear := li.Amounts[2026]
	assert.False(t, hasStartYear, "start-year cell stays user-owned")
}

func TestApplyLoanScheduleCashTrajectory(t *testing.T) {
	s := newTestStore(t)
	loanID := s.AddLiability(domain.LiabilityItem{
		Name:            "Car loan",
		Type:            domain.LiabilityLoan,
		BorrowAmount:    d("1000"),
		InterestRatePct: d("0"),
		TermYears:       10,
		RepaymentType:   domain.RepaymentEqualPayment,
		StartYear:       2026,
		AutoCalculate:   true,
	})

	require.NoError(t, s.ApplyLoanSchedule(loanID))
	led := s.Ledger()

	// The cash balance jumps by the principal, then declines by the yearly
	// payment on top of the carried balance.
	assert.True(t, led[2025].PersonalTotalAssets.Equal(d("300")))
	assert.True(t, led[2026].PersonalTotalAssets.Equal(d("1200")), "2026 assets: %s", led[2026].PersonalTotalAssets)
	assert.True(t, led[2027].PersonalTotalAssets.Equal(d("1100")), "2027 assets: %s", led[2027].PersonalTotalAssets)
	assert.True(t, led[2030].PersonalTotalAssets.Equal(d("800")), "2030 assets: %s", led[2030].PersonalTotalAssets)
	assert.True(t, led[2034].PersonalTotalAssets.Equal(d("400")), "2034 assets: %s", led[2034].PersonalTotalAssets)

	// Borrowed cash and the matching debt cancel out year by year.
	for year, row := range led {
		assert.True(t, row.PersonalNetAssets.Equal(d("300")),
			"net assets drifted in %d: %s", year, row.PersonalNetAssets)
	}
}

func TestApplyLoanScheduleIdempotent(t *testing.T) {
	s := newTestStore(t)
	loanID := s.AddLiability(domain.LiabilityItem{
		Name:            "Car loan",
		Type:            domain.LiabilityLoan,
		BorrowAmount:    d("1000"),
		InterestRatePct: d("0"),
		TermYears:       10,
		RepaymentType:   domain.RepaymentEqualPayment,
		StartYear:       2026,
		AutoCalculate:   true,
	})

	require.NoError(t, s.ApplyLoanSchedule(loanID))
	require.NoError(t, s.ApplyLoanSchedule(loanID))

	li := s.Plan().Liabilities[0]
	assert.True(t, li.CashEffects[2026].Equal(d("900")), "effects must not stack: %s", li.CashEffects[2026])
	assert.True(t, s.Ledger()[2026].PersonalTotalAssets.Equal(d("1200")),
		"2026 assets: %s", s.Ledger()[2026].PersonalTotalAssets)
}

func TestCancelLoanScheduleRestoresAsset(t *testing.T) {
	s := newTestStore(t)
	loanID := s.AddLiability(domain.LiabilityItem{
		Name:            "Car loan",
		Type:            domain.LiabilityLoan,
		BorrowAmount:    d("1000"),
		InterestRatePct: d("0"),
		TermYears:       10,
		RepaymentType:   domain.RepaymentEqualPayment,
		StartYear:       2026,
		AutoCalculate:   true,
	})

	require.NoError(t, s.ApplyLoanSchedule(loanID))
	require.NoError(t, s.CancelLoanSchedule(loanID))

	li := s.Plan().Liabilities[0]
	assert.Empty(t, li.CashEffects)
	_, has2027 := li.Amounts[2027]
	assert.False(t, has2027, "amortizer cells not cleared")

	// With the effects gone the carried balance is back to the user entry.
	assert.True(t, s.Ledger()[2026].PersonalTotalAssets.Equal(d("300")),
		"2026 assets: %s", s.Ledger()[2026].PersonalTotalAssets)
	assert.True(t, s.Ledger()[2030].PersonalTotalAssets.Equal(d("300")))

	// Cancelling again is a no-op.
	require.NoError(t, s.CancelLoanSchedule(loanID))
}

func TestApplyLoanScheduleBackdatedSkipsPrincipal(t *testing.T) {
	s := newTestStore(t)
	loanID := s.AddLiability(domain.LiabilityItem{
		Name:            "Old loan",
		Type:            domain.LiabilityLoan,
		BorrowAmount:    d("1000"),
		InterestRatePct: d("0"),
		TermYears:       10,
		RepaymentType:   domain.RepaymentEqualPayment,
		StartYear:       2020,
		AutoCalculate:   true,
	})

	require.NoError(t, s.ApplyLoanSchedule(loanID))

	// The principal arrived before the simulation started; only the ongoing
	// payments hit the cash balance. Remaining 500 over 5 years.
	li := s.Plan().Liabilities[0]
	_, has2020 := li.CashEffects[2020]
	assert.False(t, has2020, "backdated principal must not land")
	assert.True(t, li.CashEffects[2025].Equal(d("-100")), "2025 effect: %s", li.CashEffects[2025])

	led := s.Ledger()
	assert.True(t, led[2025].PersonalTotalAssets.Equal(d("200")), "2025 assets: %s", led[2025].PersonalTotalAssets)
	assert.True(t, led[2026].PersonalTotalAssets.Equal(d("100")), "2026 assets: %s", led[2026].PersonalTotalAssets)
	assert.True(t, led[2027].PersonalTotalAssets.IsZero())
	// The carried balance clamps at zero once payments exhaust the cash.
	assert.True(t, led[2028].PersonalTotalAssets.IsZero())
}

func TestUpdateAmortizerCellRejected(t *testing.T) {
	s := newTestStore(t)
	loanID := s.AddLiability(domain.LiabilityItem{
		Name:            "Car loan",
		Type:            domain.LiabilityLoan,
		BorrowAmount:    d("1000"),
		InterestRatePct: d("0"),
		TermYears:       10,
		RepaymentType:   domain.RepaymentEqualPayment,
		StartYear:       2026,
		AutoCalculate:   true,
	})
	require.NoError(t, s.ApplyLoanSchedule(loanID))

	assert.Error(t, s.UpdateItemAmount(loanID, 2027, d("123")))
	assert.NoError(t, s.UpdateItemAmount(loanID, 2026, d("1000")))
}

func TestSetAutoCalculateOffCancelsSchedule(t *testing.T) {
	s := newTestStore(t)
	loanID := s.AddLiability(domain.LiabilityItem{
		Name:            "Car loan",
		Type:            domain.LiabilityLoan,
		BorrowAmount:    d("1000"),
		InterestRatePct: d("0"),
		TermYears:       10,
		RepaymentType:   domain.RepaymentEqualPayment,
		StartYear:       2026,
		AutoCalculate:   true,
	})
	require.NoError(t, s.ApplyLoanSchedule(loanID))

	require.NoError(t, s.SetAutoCalculate(loanID, false))

	li := s.Plan().Liabilities[0]
	assert.Empty(t, li.CashEffects, "disabling auto-calculate must drop the recorded effects")
	assert.False(t, li.AutoCalculate)
	assert.True(t, s.Ledger()[2026].PersonalTotalAssets.Equal(d("300")),
		"2026 assets: %s", s.Ledger()[2026].PersonalTotalAssets)
}

func TestApplyLoanScheduleNoCashAsset(t *testing.T) {
	plan := &domain.Plan{
		BasicInfo: domain.BasicInfo{
			CurrentAge: 40, DeathAge: 45, StartYear: 2025,
			Occupation: domain.OccupationSelfEmployed, WorkStartAge: 22, RetirementAge: 65,
		},
	}
	s := NewPlanStore(plan, calculation.NewEngine(), nil)
	loanID := s.AddLiability(domain.LiabilityItem{
		Name:          "Loan",
		BorrowAmount:  d("100"),
		TermYears:     5,
		RepaymentType: domain.RepaymentEqualPayment,
		StartYear:     2025,
		AutoCalculate: true,
	})

	assert.Error(t, s.ApplyLoanSchedule(loanID))
}

func TestRemoveLiabilityCancelsSchedule(t *testing.T) {
	s := newTestStore(t)
	loanID := s.AddLiability(domain.LiabilityItem{
		Name:            "Car loan",
		Type:            domain.LiabilityLoan,
		BorrowAmount:    d("1000"),
		InterestRatePct: d("0"),
		TermYears:       10,
		RepaymentType:   domain.RepaymentEqualPayment,
		StartYear:       2026,
		AutoCalculate:   true,
	})
	require.NoError(t, s.ApplyLoanSchedule(loanID))

	require.NoError(t, s.RemoveItem(loanID))

	assert.Empty(t, s.Plan().Liabilities)
	assert.True(t, s.Ledger()[2026].PersonalTotalAssets.Equal(d("300")),
		"removing the liability must restore the cash trajectory: %s",
		s.Ledger()[2026].PersonalTotalAssets)
}

func TestAddLifeEvent(t *testing.T) {
	s := newTestStore(t)

	s.AddLifeEvent(domain.LifeEvent{
		Year:        2027,
		Description: "inheritance",
		Amount:      d("150"),
		Type:        domain.EventIncome,
		Source:      domain.SourcePersonal,
	})

	assert.True(t, s.Ledger()[2027].OtherIncome.Equal(d("150")))
	assert.True(t, s.Ledger()[2026].OtherIncome.IsZero())
}

func TestReplaceSwapsPlan(t *testing.T) {
	s := newTestStore(t)
	require.Len(t, s.Ledger(), 10)

	s.Replace(&domain.Plan{
		BasicInfo: domain.BasicInfo{
			CurrentAge: 50, DeathAge: 52, StartYear: 2030,
			Occupation: domain.OccupationSelfEmployed, WorkStartAge: 22, RetirementAge: 65,
		},
	})

	assert.Len(t, s.Ledger(), 3)
	assert.Equal(t, 2030, s.Plan().BasicInfo.StartYear)
}

func TestSetParametersRecomputesDisplay(t *testing.T) {
	s := newTestStore(t)

	flat := s.Ledger()[2026].LivingExpense
	s.SetParameters(domain.Parameters{InflationRatePct: d("2")})
	inflated := s.Ledger()[2026].LivingExpense

	assert.True(t, flat.Equal(d("240")))
	assert.True(t, inflated.Equal(d("244.8")), "inflated: %s", inflated)

	// Re-applying a different rate recomputes from raw, never from the
	// previously displayed value.
	s.SetParameters(domain.Parameters{InflationRatePct: d("1")})
	assert.True(t, s.Ledger()[2026].LivingExpense.Equal(d("242.4")))
}
