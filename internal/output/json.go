package output

import (
	json "github.com/goccy/go-json"
)

// JSONFormatter emits the ledger rows plus a small header as indented JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(data *ReportData) ([]byte, error) {
	doc := struct {
		StartYear      int         `json:"startYear"`
		EndYear        int         `json:"endYear"`
		FinalNetAssets string      `json:"finalNetAssets"`
		GeneratedAt    string      `json:"generatedAt"`
		Rows           interface{} `json:"rows"`
	}{
		StartYear:      data.Plan.BasicInfo.StartYear,
		EndYear:        data.Plan.BasicInfo.EndYear(),
		FinalNetAssets: data.Ledger.FinalNetAssets().StringFixed(1),
		GeneratedAt:    data.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Rows:           data.Ledger.Rows(),
	}
	return json.MarshalIndent(doc, "", "  ")
}
