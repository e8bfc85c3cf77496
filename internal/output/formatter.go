// Package output renders a built ledger in the supported report formats and
// implements the JSON snapshot used for export/import.
package output

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lifeplan/lifeplan/internal/domain"
)

// ReportData bundles everything a formatter needs.
type ReportData struct {
	Plan        *domain.Plan
	Ledger      domain.Ledger
	GeneratedAt time.Time
}

// Formatter renders report data into one output format.
type Formatter interface {
	Name() string
	Format(data *ReportData) ([]byte, error)
}

func formatters() map[string]Formatter {
	fs := map[string]Formatter{}
	for _, f := range []Formatter{ConsoleFormatter{}, CSVFormatter{}, JSONFormatter{}, HTMLFormatter{}} {
		fs[f.Name()] = f
	}
	return fs
}

// Render formats the report in the named format.
func Render(data *ReportData, format string) ([]byte, error) {
	f, ok := formatters()[format]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return f.Format(data)
}

// SupportedFormats lists the registered format names.
func SupportedFormats() []string {
	return []string{"console", "csv", "json", "html"}
}

// FormatMoney renders a man-yen amount with one decimal place.
func FormatMoney(v decimal.Decimal) string {
	return v.StringFixed(1)
}
