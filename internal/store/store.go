// Package store owns the in-process plan state and its derived ledger. Every
// mutation rebuilds the full ledger synchronously and replaces it wholesale;
// rows are never patched in place.
package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lifeplan/lifeplan/internal/calculation"
	"github.com/lifeplan/lifeplan/internal/domain"
)

// PlanStore holds one plan and the ledger derived from it. Reads return
// snapshots; writes take the full lock, mutate, and rebuild.
type PlanStore struct {
	mu     sync.RWMutex
	plan   *domain.Plan
	ledger domain.Ledger
	engine *calculation.Engine
	logger *zap.Logger
}

// NewPlanStore creates a store around the given plan and builds the initial
// ledger. A nil logger disables logging.
func NewPlanStore(plan *domain.Plan, engine *calculation.Engine, logger *zap.Logger) *PlanStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PlanStore{plan: plan, engine: engine, logger: logger}
	s.rebuild()
	return s
}

// Ledger returns the current ledger. The map is replaced, never mutated, on
// rebuild, so callers may read it without copying.
func (s *PlanStore) Ledger() domain.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger
}

// Plan returns the plan under the read lock. Callers must treat it as
// read-only; all mutations go through store operations.
func (s *PlanStore) Plan() *domain.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan
}

// Replace swaps in a whole new plan (snapshot import) and rebuilds.
func (s *PlanStore) Replace(plan *domain.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = plan
	s.rebuild()
}

// rebuild must be called with the write lock held (or before the store is
// shared).
func (s *PlanStore) rebuild() {
	s.ledger = s.engine.BuildLedger(s.plan)
	s.logger.Debug("plan rebuilt", zap.Int("years", len(s.ledger)))
}

// AddIncomeItem appends an income line item, generating its ID, and returns
// the ID.
func (s *PlanStore) AddIncomeItem(item domain.LineItem) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = uuid.NewString()
	item.Kind = domain.KindIncome
	if item.Scope == "" {
		item.Scope = domain.ScopePersonal
	}
	if item.Amounts == nil {
		item.Amounts = make(map[int]decimal.Decimal)
	}
	s.plan.Income = append(s.plan.Income, item)
	s.rebuild()
	return item.ID
}

// AddExpenseItem appends an expense line item, generating its ID, and returns
// the ID.
func (s *PlanStore) AddExpenseItem(item domain.LineItem) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = uuid.NewString()
	item.Kind = domain.KindExpense
	if item.Scope == "" {
		item.Scope = domain.ScopePersonal
	}
	if item.Amounts == nil {
		item.Amounts = make(map[int]decimal.Decimal)
	}
	s.plan.Expense = append(s.plan.Expense, item)
	s.rebuild()
	return item.ID
}

// AddAsset appends an asset item, generating its ID, and returns the ID.
func (s *PlanStore) AddAsset(item domain.AssetItem) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = uuid.NewString()
	if item.Scope == "" {
		item.Scope = domain.ScopePersonal
	}
	if item.Amounts == nil {
		item.Amounts = make(map[int]decimal.Decimal)
	}
	s.plan.Assets = append(s.plan.Assets, item)
	s.rebuild()
	return item.ID
}

// AddLiability appends a liability item, generating its ID, and returns the
// ID. Auto-calculated loans are not amortized until ApplyLoanSchedule.
func (s *PlanStore) AddLiability(item domain.LiabilityItem) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = uuid.NewString()
	if item.Scope == "" {
		item.Scope = domain.ScopePersonal
	}
	if item.Amounts == nil {
		item.Amounts = make(map[int]decimal.Decimal)
	}
	s.plan.Liabilities = append(s.plan.Liabilities, item)
	s.rebuild()
	return item.ID
}

// AddLifeEvent appends a life event.
func (s *PlanStore) AddLifeEvent(ev domain.LifeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan.LifeEvents = append(s.plan.LifeEvents, ev)
	s.rebuild()
}

// SetParameters replaces the global rates and rebuilds; displayed amounts are
// always re-derived from raw entries, so a rate change never compounds twice.
func (s *PlanStore) SetParameters(p domain.Parameters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan.Parameters = p
	s.rebuild()
}

// UpdateItemAmount sets one raw cell on an income, expense or asset item.
// Cells of an auto-calculated liability are read-only except its start year.
func (s *PlanStore) UpdateItemAmount(itemID string, year int, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.plan.Income {
		if s.plan.Income[i].ID == itemID {
			setAmount(&s.plan.Income[i].Amounts, year, amount)
			s.rebuild()
			return nil
		}
	}
	for i := range s.plan.Expense {
		if s.plan.Expense[i].ID == itemID {
			setAmount(&s.plan.Expense[i].Amounts, year, amount)
			s.rebuild()
			return nil
		}
	}
	for i := range s.plan.Assets {
		if s.plan.Assets[i].ID == itemID {
			setAmount(&s.plan.Assets[i].Amounts, year, amount)
			s.rebuild()
			return nil
		}
	}
	for i := range s.plan.Liabilities {
		li := &s.plan.Liabilities[i]
		if li.ID != itemID {
			continue
		}
		if li.AutoCalculate && year != li.StartYear {
			return fmt.Errorf("liability %s year %d is managed by the amortizer", itemID, year)
		}
		setAmount(&li.Amounts, year, amount)
		s.rebuild()
		return nil
	}
	return fmt.Errorf("no item with id %s", itemID)
}

// RemoveItem deletes an item of any kind by ID. Removing an auto-calculated
// liability first cancels its schedule so the linked asset is restored.
func (s *PlanStore) RemoveItem(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.plan.Income {
		if s.plan.Income[i].ID == itemID {
			s.plan.Income = append(s.plan.Income[:i], s.plan.Income[i+1:]...)
			s.rebuild()
			return nil
		}
	}
	for i := range s.plan.Expense {
		if s.plan.Expense[i].ID == itemID {
			s.plan.Expense = append(s.plan.Expense[:i], s.plan.Expense[i+1:]...)
			s.rebuild()
			return nil
		}
	}
	for i := range s.plan.Assets {
		if s.plan.Assets[i].ID == itemID {
			s.plan.Assets = append(s.plan.Assets[:i], s.plan.Assets[i+1:]...)
			s.rebuild()
			return nil
		}
	}
	for i := range s.plan.Liabilities {
		if s.plan.Liabilities[i].ID == itemID {
			s.cancelScheduleLocked(&s.plan.Liabilities[i])
			s.plan.Liabilities = append(s.plan.Liabilities[:i], s.plan.Liabilities[i+1:]...)
			s.rebuild()
			return nil
		}
	}
	return fmt.Errorf("no item with id %s", itemID)
}

// ApplyLoanSchedule amortizes an auto-calculated liability: it writes the
// yearly outstanding balances into the liability and records the loan's cash
// flow as per-year deltas against the linked cash asset (principal received
// in the start year unless the loan is backdated, payments out every
// scheduled year). The engine folds the deltas into the asset's carried
// balance on every build, so the asset's own entries stay user-owned. The
// operation is idempotent; any previously recorded effects are cleared
// first.
func (s *PlanStore) ApplyLoanSchedule(liabilityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	li := s.findLiability(liabilityID)
	if li == nil {
		return fmt.Errorf("no liability with id %s", liabilityID)
	}
	if !li.AutoCalculate {
		return fmt.Errorf("liability %s is not auto-calculated", liabilityID)
	}

	asset := s.linkedCashAsset(li)
	if asset == nil {
		return fmt.Errorf("no cash asset available to link to liability %s", liabilityID)
	}
	li.LinkedAssetID = asset.ID

	// Reapplying must not stack effects.
	s.cancelScheduleLocked(li)

	sched := calculation.BuildLoanSchedule(calculation.LoanParams{
		Principal:     li.BorrowAmount,
		AnnualRatePct: li.InterestRatePct,
		TermYears:     li.TermYears,
		Repayment:     li.RepaymentType,
		StartYear:     li.StartYear,
	}, s.plan.BasicInfo.StartYear)

	effects := make(map[int]decimal.Decimal, len(sched.Entries))
	if !sched.Backdated {
		// A future-dated loan delivers its principal in the start year; a
		// backdated one was received before the simulation began.
		effects[li.StartYear] = li.BorrowAmount
	}
	for _, e := range sched.Entries {
		effects[e.Year] = effects[e.Year].Sub(e.Payment)
		// The start-year cell stays user-owned; every other cell is the
		// amortizer's.
		if e.Year != li.StartYear {
			setAmount(&li.Amounts, e.Year, e.RemainingBalance)
		}
	}

	for year, delta := range effects {
		if delta.IsZero() {
			delete(effects, year)
		}
	}
	li.CashEffects = effects

	s.logger.Info("loan schedule applied",
		zap.String("liability", li.Name),
		zap.String("asset", asset.Name),
		zap.Int("years", len(sched.Entries)))

	s.rebuild()
	return nil
}

// CancelLoanSchedule clears a previously applied schedule: dropping the
// recorded cash effects restores the linked asset's carried balance on the
// next build, and the amortizer-written balances are cleared. Cancelling an
// unapplied schedule is a no-op.
func (s *PlanStore) CancelLoanSchedule(liabilityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	li := s.findLiability(liabilityID)
	if li == nil {
		return fmt.Errorf("no liability with id %s", liabilityID)
	}
	s.cancelScheduleLocked(li)
	s.rebuild()
	return nil
}

// SetAutoCalculate toggles the auto-calculation flag. Disabling it clears the
// schedule and any cash-asset side effects it produced.
func (s *PlanStore) SetAutoCalculate(liabilityID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	li := s.findLiability(liabilityID)
	if li == nil {
		return fmt.Errorf("no liability with id %s", liabilityID)
	}
	if !enabled {
		s.cancelScheduleLocked(li)
	}
	li.AutoCalculate = enabled
	s.rebuild()
	return nil
}

// cancelScheduleLocked drops the recorded cash effects and clears the
// amortizer-written liability cells. Must hold the write lock.
func (s *PlanStore) cancelScheduleLocked(li *domain.LiabilityItem) {
	if len(li.CashEffects) == 0 {
		return
	}
	for year := range li.Amounts {
		if year != li.StartYear {
			delete(li.Amounts, year)
		}
	}
	li.CashEffects = nil
}

func (s *PlanStore) findLiability(id string) *domain.LiabilityItem {
	for i := range s.plan.Liabilities {
		if s.plan.Liabilities[i].ID == id {
			return &s.plan.Liabilities[i]
		}
	}
	return nil
}

func (s *PlanStore) findAsset(id string) *domain.AssetItem {
	for i := range s.plan.Assets {
		if s.plan.Assets[i].ID == id {
			return &s.plan.Assets[i]
		}
	}
	return nil
}

// linkedCashAsset resolves the liability's paired asset: the recorded link
// when present, otherwise the first cash asset in the same scope.
func (s *PlanStore) linkedCashAsset(li *domain.LiabilityItem) *domain.AssetItem {
	if li.LinkedAssetID != "" {
		if a := s.findAsset(li.LinkedAssetID); a != nil {
			return a
		}
	}
	for i := range s.plan.Assets {
		a := &s.plan.Assets[i]
		if a.Scope == li.Scope && a.Type == domain.AssetCash {
			return a
		}
	}
	return nil
}

func setAmount(m *map[int]decimal.Decimal, year int, amount decimal.Decimal) {
	if *m == nil {
		*m = make(map[int]decimal.Decimal)
	}
	(*m)[year] = amount
}
