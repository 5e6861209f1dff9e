package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var reportTmpl = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

type htmlView struct {
	Document
	BarChart  template.HTML
	PieChart  template.HTML
	PlanLines []string
}

// WriteHTML renders the report as a standalone HTML page with inline charts.
func WriteHTML(w io.Writer, doc Document) error {
	var lines []string
	for _, l := range strings.Split(doc.Feedback.ImprovementPlan, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	view := htmlView{
		Document:  doc,
		BarChart:  BarChart(doc.Report.TopicScores),
		PieChart:  PieChart(doc.Report.TopicScores),
		PlanLines: lines,
	}
	if err := reportTmpl.Execute(w, view); err != nil {
		return fmt.Errorf("render HTML: %w", err)
	}
	return nil
}
