// Package tui is an interactive terminal browser for a plan's projected
// ledger: one table row per simulated year, toggling between the personal and
// corporate scope.
package tui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lifeplan/lifeplan/internal/calculation"
	"github.com/lifeplan/lifeplan/internal/config"
	"github.com/lifeplan/lifeplan/internal/domain"
)

// scope selects which half of the ledger the table shows.
type scope int

const (
	scopePersonal scope = iota
	scopeCorporate
)

// Model is the application state.
type Model struct {
	planPath string
	plan     *domain.Plan
	ledger   domain.Ledger

	scope scope
	table table.Model

	width  int
	height int

	err     error
	loading bool
}

// NewModel creates the initial model; the plan loads asynchronously in Init.
func NewModel(planPath string) Model {
	return Model{
		planPath: planPath,
		loading:  true,
		width:    100,
		height:   30,
	}
}

// Init kicks off the plan load (required by tea.Model).
func (m Model) Init() tea.Cmd {
	return loadPlanCmd(m.planPath)
}

// planLoadedMsg delivers a parsed plan and its built ledger.
type planLoadedMsg struct {
	plan   *domain.Plan
	ledger domain.Ledger
}

// errorMsg carries a load or rebuild failure.
type errorMsg struct{ err error }

func loadPlanCmd(path string) tea.Cmd {
	return func() tea.Msg {
		parser := config.NewInputParser()
		plan, err := parser.LoadFromFile(path)
		if err != nil {
			return errorMsg{err: err}
		}
		engine := calculation.NewEngineWith(plan.CorporateSettings(), nil)
		return planLoadedMsg{plan: plan, ledger: engine.BuildLedger(plan)}
	}
}
