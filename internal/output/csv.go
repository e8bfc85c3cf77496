package output

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// CSVFormatter writes one ledger row per line, personal and corporate columns
// side by side.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(data *ReportData) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{
		"Year", "Age",
		"MainIncome", "SideIncome", "SpouseIncome", "PensionIncome", "SpousePensionIncome",
		"InvestmentIncome", "OtherIncome", "TotalIncome",
		"LivingExpense", "HousingExpense", "EducationExpense", "OtherExpense", "LoanRepayment", "TotalExpense",
		"PersonalBalance", "PersonalTotalAssets", "PersonalLiabilityTotal", "PersonalNetAssets",
		"CorporateIncome", "CorporateExpense", "CorporateLoanRepayment", "CorporateBalance", "CorporateTax",
		"CorporateTotalAssets", "CorporateLiabilityTotal", "CorporateNetAssets",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range data.Ledger.Rows() {
		record := []string{
			strconv.Itoa(row.Year), strconv.Itoa(row.Age),
			row.MainIncome.StringFixed(1), row.SideIncome.StringFixed(1),
			row.SpouseIncome.StringFixed(1), row.PensionIncome.StringFixed(1),
			row.SpousePensionIncome.StringFixed(1), row.InvestmentIncome.StringFixed(1),
			row.OtherIncome.StringFixed(1), row.TotalIncome.StringFixed(1),
			row.LivingExpense.StringFixed(1), row.HousingExpense.StringFixed(1),
			row.EducationExpense.StringFixed(1), row.OtherExpense.StringFixed(1),
			row.LoanRepayment.StringFixed(1), row.TotalExpense.StringFixed(1),
			row.PersonalBalance.StringFixed(1), row.PersonalTotalAssets.StringFixed(1),
			row.PersonalLiabilityTotal.StringFixed(1), row.PersonalNetAssets.StringFixed(1),
			row.CorporateIncome.StringFixed(1), row.CorporateExpense.StringFixed(1),
			row.CorporateLoanRepayment.StringFixed(1), row.CorporateBalance.StringFixed(1),
			row.CorporateTax.StringFixed(1), row.CorporateTotalAssets.StringFixed(1),
			row.CorporateLiabilityTotal.StringFixed(1), row.CorporateNetAssets.StringFixed(1),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
