package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
)

// ConsoleFormatter renders the ledger as a plain-text table with a summary
// header, amounts in man-yen.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(data *ReportData) ([]byte, error) {
	buf := &bytes.Buffer{}

	info := data.Plan.BasicInfo
	fmt.Fprintln(buf, strings.Repeat("=", 90))
	fmt.Fprintln(buf, "LIFETIME CASH FLOW PROJECTION")
	fmt.Fprintln(buf, strings.Repeat("=", 90))
	fmt.Fprintf(buf, "Years: %d-%d (age %d-%d)\n", info.StartYear, info.EndYear(), info.CurrentAge, info.DeathAge)
	fmt.Fprintf(buf, "Occupation: %s\n", info.Occupation)
	fmt.Fprintf(buf, "Final net assets: %s\n", FormatMoney(data.Ledger.FinalNetAssets()))
	fmt.Fprintln(buf)

	w := tabwriter.NewWriter(buf, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Year\tAge\tIncome\tExpense\tBalance\tAssets\tLiabilities\tNet\t")
	for _, row := range data.Ledger.Rows() {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			row.Year, row.Age,
			FormatMoney(row.TotalIncome),
			FormatMoney(row.TotalExpense),
			FormatMoney(row.PersonalBalance),
			FormatMoney(row.PersonalTotalAssets),
			FormatMoney(row.PersonalLiabilityTotal),
			FormatMoney(row.PersonalNetAssets))
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}

	if hasCorporateActivity(data) {
		fmt.Fprintln(buf)
		fmt.Fprintln(buf, "CORPORATE")
		fmt.Fprintln(buf, strings.Repeat("-", 90))
		w = tabwriter.NewWriter(buf, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "Year\tIncome\tExpense\tBalance\tTax\tAssets\tLiabilities\tNet\t")
		for _, row := range data.Ledger.Rows() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
				row.Year,
				FormatMoney(row.CorporateIncome),
				FormatMoney(row.CorporateExpense),
				FormatMoney(row.CorporateBalance),
				FormatMoney(row.CorporateTax),
				FormatMoney(row.CorporateTotalAssets),
				FormatMoney(row.CorporateLiabilityTotal),
				FormatMoney(row.CorporateNetAssets))
		}
		if err := w.Flush(); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func hasCorporateActivity(data *ReportData) bool {
	for _, row := range data.Ledger {
		if !row.CorporateIncome.Equal(decimal.Zero) ||
			!row.CorporateExpense.Equal(decimal.Zero) ||
			!row.CorporateTotalAssets.Equal(decimal.Zero) ||
			!row.CorporateLiabilityTotal.Equal(decimal.Zero) {
			return true
		}
	}
	return false
}
