package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/lifeplan/lifeplan/internal/domain"
)

// InvestmentGrowthEngine resolves asset balance series across the simulated
// years. Investment items compound year over year at their own return rate
// (or the global default); explicit user entries always win and become the
// base for subsequent compounding. Non-investment items carry their last
// entered balance forward unchanged.
type InvestmentGrowthEngine struct {
	DefaultReturnPct decimal.Decimal
}

// NewInvestmentGrowthEngine creates a growth engine with the given global
// default annual return rate in percent.
func NewInvestmentGrowthEngine(defaultReturnPct decimal.Decimal) *InvestmentGrowthEngine {
	return &InvestmentGrowthEngine{DefaultReturnPct: defaultReturnPct}
}

// returnRate picks the per-item rate when present, the global default
// otherwise.
func (e *InvestmentGrowthEngine) returnRate(item domain.AssetItem) decimal.Decimal {
	if item.InvestmentReturnPct != nil {
		return *item.InvestmentReturnPct
	}
	return e.DefaultReturnPct
}

// Resolve derives the displayed balance for every simulated year from the
// sparse raw entries. years must be ascending; compounding is inherently
// order-dependent. adjustments holds per-year deltas (life events hitting
// this asset) applied after the year's base value is derived, so they
// compound into later years.
func (e *InvestmentGrowthEngine) Resolve(item domain.AssetItem, years []int, adjustments map[int]decimal.Decimal) map[int]decimal.Decimal {
	resolved := make(map[int]decimal.Decimal, len(years))
	growth := decimal.NewFromInt(1).Add(e.returnRate(item).Div(decimal.NewFromInt(100)))

	prev := decimal.Zero
	for i, year := range years {
		v, explicit := item.Amounts[year]
		switch {
		case explicit:
			// User entry overrides any computed value.
		case item.IsInvestment && i > 0:
			v = prev.Mul(growth)
		default:
			v = prev
		}

		if delta, ok := adjustments[year]; ok {
			v = v.Add(delta)
		}
		if v.IsNegative() {
			v = decimal.Zero
		}

		resolved[year] = v
		prev = v
	}
	return resolved
}
