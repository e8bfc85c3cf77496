package output

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeplan/lifeplan/internal/calculation"
)

func TestSnapshotRoundTrip(t *testing.T) {
	data := testReportData(t)

	exported, err := ExportSnapshot(data.Plan, data.Ledger, time.Now())
	require.NoError(t, err)

	plan, err := ImportSnapshot(exported)
	require.NoError(t, err)

	// Rebuilding from the imported plan reproduces the ledger exactly.
	rebuilt := calculation.NewEngine().BuildLedger(plan)
	require.Len(t, rebuilt, len(data.Ledger))
	for year, want := range data.Ledger {
		got, ok := rebuilt[year]
		require.True(t, ok, "missing year %d", year)
		assert.True(t, got.TotalIncome.Equal(want.TotalIncome), "%d income: %s vs %s", year, got.TotalIncome, want.TotalIncome)
		assert.True(t, got.TotalExpense.Equal(want.TotalExpense), "%d expense", year)
		assert.True(t, got.PersonalNetAssets.Equal(want.PersonalNetAssets), "%d net assets", year)
		assert.True(t, got.CorporateNetAssets.Equal(want.CorporateNetAssets), "%d corporate net", year)
	}
}

func TestSnapshotDocumentShape(t *testing.T) {
	data := testReportData(t)

	exported, err := ExportSnapshot(data.Plan, data.Ledger, time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(exported, &doc))

	for _, key := range []string{
		"basicInfo", "parameters", "incomeData", "expenseData",
		"assetData", "liabilityData", "lifeEvents", "cashFlow",
		"exportDate", "version",
	} {
		assert.Contains(t, doc, key)
	}

	var version string
	require.NoError(t, json.Unmarshal(doc["version"], &version))
	assert.Equal(t, SnapshotVersion, version)
}

func TestImportSnapshotRejectsBadInput(t *testing.T) {
	_, err := ImportSnapshot([]byte("{not json"))
	assert.Error(t, err)

	_, err = ImportSnapshot([]byte(`{"version":"0.9"}`))
	assert.Error(t, err)
}
