package output

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/lifeplan/lifeplan/internal/domain"
)

// SnapshotVersion tags exported documents; imports reject other versions.
const SnapshotVersion = "1.0"

// Snapshot is the export/import document: the complete input state plus the
// derived cash flow. On import only the input state matters; the ledger is
// rebuilt, never trusted.
type Snapshot struct {
	BasicInfo     domain.BasicInfo             `json:"basicInfo"`
	Parameters    domain.Parameters            `json:"parameters"`
	IncomeData    []domain.LineItem            `json:"incomeData"`
	ExpenseData   []domain.LineItem            `json:"expenseData"`
	AssetData     []domain.AssetItem           `json:"assetData"`
	LiabilityData []domain.LiabilityItem       `json:"liabilityData"`
	LifeEvents    []domain.LifeEvent           `json:"lifeEvents"`
	Housing       *domain.HousingPlan          `json:"housing,omitempty"`
	Corporate     *domain.CorporateTaxSettings `json:"corporate,omitempty"`
	CashFlow      []domain.YearLedger          `json:"cashFlow"`
	ExportDate    time.Time                    `json:"exportDate"`
	Version       string                       `json:"version"`
}

// ExportSnapshot serializes the plan and its ledger to the snapshot JSON.
func ExportSnapshot(plan *domain.Plan, ledger domain.Ledger, exportedAt time.Time) ([]byte, error) {
	snap := Snapshot{
		BasicInfo:     plan.BasicInfo,
		Parameters:    plan.Parameters,
		IncomeData:    plan.Income,
		ExpenseData:   plan.Expense,
		AssetData:     plan.Assets,
		LiabilityData: plan.Liabilities,
		LifeEvents:    plan.LifeEvents,
		Housing:       plan.Housing,
		Corporate:     plan.Corporate,
		CashFlow:      ledger.Rows(),
		ExportDate:    exportedAt.UTC(),
		Version:       SnapshotVersion,
	}
	return json.MarshalIndent(snap, "", "  ")
}

// ImportSnapshot parses a snapshot document back into a plan. The embedded
// cash flow is ignored; callers rebuild the ledger from the returned plan.
func ImportSnapshot(data []byte) (*domain.Plan, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version: %q", snap.Version)
	}
	return &domain.Plan{
		BasicInfo:   snap.BasicInfo,
		Parameters:  snap.Parameters,
		Income:      snap.IncomeData,
		Expense:     snap.ExpenseData,
		Assets:      snap.AssetData,
		Liabilities: snap.LiabilityData,
		LifeEvents:  snap.LifeEvents,
		Housing:     snap.Housing,
		Corporate:   snap.Corporate,
	}, nil
}
