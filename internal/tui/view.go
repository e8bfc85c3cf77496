package tui

import (
	"fmt"
	"strconv"
	"strings"
)

// View renders the whole screen.
func (m Model) View() string {
	if m.loading {
		return appStyle.Render(titleStyle.Render("lifeplan") + "\n\nLoading plan...")
	}
	if m.err != nil {
		return appStyle.Render(
			titleStyle.Render("lifeplan") + "\n\n" +
				errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" +
				helpStyle.Render("r reload  q quit"))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("lifeplan"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render(m.scopeLabel()))
	b.WriteString("\n")
	b.WriteString(m.summaryLine())
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab switch scope  r reload  q quit"))
	return appStyle.Render(b.String())
}

func (m Model) scopeLabel() string {
	if m.scope == scopeCorporate {
		return "corporate"
	}
	return "personal"
}

func (m Model) summaryLine() string {
	info := m.plan.BasicInfo
	final := m.ledger.FinalNetAssets()

	style := positiveStyle
	if final.IsNegative() {
		style = negativeStyle
	}
	return fmt.Sprintf("%s  %s",
		subtitleStyle.Render(fmt.Sprintf("%d-%d (age %d-%d)", info.StartYear, info.EndYear(), info.CurrentAge, info.DeathAge)),
		style.Render("final net assets "+final.StringFixed(1)))
}

func itoa(v int) string { return strconv.Itoa(v) }
