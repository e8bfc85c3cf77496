package output

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/lifeplan/lifeplan/internal/domain"
)

// HTMLFormatter produces a standalone HTML report.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"money": FormatMoney,
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(data *ReportData) ([]byte, error) {
	var buf bytes.Buffer
	doc := struct {
		*ReportData
		Rows      []domain.YearLedger
		Corporate bool
	}{data, data.Ledger.Rows(), hasCorporateActivity(data)}
	if err := htmlTemplate.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
