package tui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lifeplan/lifeplan/internal/domain"
	"github.com/lifeplan/lifeplan/internal/output"
)

// Update handles all messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.plan != nil {
			m.table = m.buildTable()
		}
		return m, nil

	case planLoadedMsg:
		m.plan = msg.plan
		m.ledger = msg.ledger
		m.loading = false
		m.err = nil
		m.table = m.buildTable()
		return m, nil

	case errorMsg:
		m.err = msg.err
		m.loading = false
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "tab", "s":
		if m.scope == scopePersonal {
			m.scope = scopeCorporate
		} else {
			m.scope = scopePersonal
		}
		if m.plan != nil {
			m.table = m.buildTable()
		}
		return m, nil

	case "r":
		m.loading = true
		return m, loadPlanCmd(m.planPath)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// buildTable renders the current scope's ledger into a fresh bubbles table.
func (m Model) buildTable() table.Model {
	var columns []table.Column
	var rows []table.Row

	if m.scope == scopePersonal {
		columns = []table.Column{
			{Title: "Year", Width: 6},
			{Title: "Age", Width: 4},
			{Title: "Income", Width: 10},
			{Title: "Expense", Width: 10},
			{Title: "Balance", Width: 10},
			{Title: "Assets", Width: 10},
			{Title: "Debt", Width: 10},
			{Title: "Net", Width: 10},
		}
		for _, r := range m.ledger.Rows() {
			rows = append(rows, personalRow(r))
		}
	} else {
		columns = []table.Column{
			{Title: "Year", Width: 6},
			{Title: "Income", Width: 10},
			{Title: "Expense", Width: 10},
			{Title: "Balance", Width: 10},
			{Title: "Tax", Width: 9},
			{Title: "Assets", Width: 10},
			{Title: "Debt", Width: 10},
			{Title: "Net", Width: 10},
		}
		for _, r := range m.ledger.Rows() {
			rows = append(rows, corporateRow(r))
		}
	}

	height := m.height - 8
	if height < 5 {
		height = 5
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	t.SetStyles(tableStyles())
	return t
}

func personalRow(r domain.YearLedger) table.Row {
	return table.Row{
		itoa(r.Year),
		itoa(r.Age),
		output.FormatMoney(r.TotalIncome),
		output.FormatMoney(r.TotalExpense),
		output.FormatMoney(r.PersonalBalance),
		output.FormatMoney(r.PersonalTotalAssets),
		output.FormatMoney(r.PersonalLiabilityTotal),
		output.FormatMoney(r.PersonalNetAssets),
	}
}

func corporateRow(r domain.YearLedger) table.Row {
	return table.Row{
		itoa(r.Year),
		output.FormatMoney(r.CorporateIncome),
		output.FormatMoney(r.CorporateExpense),
		output.FormatMoney(r.CorporateBalance),
		output.FormatMoney(r.CorporateTax),
		output.FormatMoney(r.CorporateTotalAssets),
		output.FormatMoney(r.CorporateLiabilityTotal),
		output.FormatMoney(r.CorporateNetAssets),
	}
}
