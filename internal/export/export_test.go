package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pavelanni/mockinterview/internal/analysis"
	"github.com/pavelanni/mockinterview/internal/feedback"
	"github.com/pavelanni/mockinterview/internal/model"
)

func testDoc() Document {
	report := analysis.New([]model.ResponseRecord{
		{Topic: "Machine Learning", Score: 0.8},
		{Topic: "SQL", Score: 0.3},
		{Topic: "Python / Data Handling", Score: 0.6},
	}, "Data Scientist", nil).GenerateReport()
	return Document{
		Role:        "Data Scientist",
		GeneratedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		Report:      report,
		Feedback:    feedback.New(report, nil).GenerateFeedback(),
	}
}

type fakePrinter struct {
	html []byte
	err  error
}

func (f *fakePrinter) PrintPDF(_ context.Context, html []byte) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats([]string{"json, PDF", "json", "html"})
	if err != nil {
		t.Fatalf("ParseFormats: %v", err)
	}
	want := []Format{FormatJSON, FormatPDF, FormatHTML}
	if len(got) != len(want) {
		t.Fatalf("ParseFormats = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("format %d = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := ParseFormats([]string{"docx"}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	doc := testDoc()
	var buf bytes.Buffer
	if err := WriteJSON(&buf, doc.Report, doc.Feedback); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "{\n    \"report\": {\n        \"overall_score\"") {
		t.Errorf("unexpected JSON layout:\n%s", out)
	}
	// Topic order follows first appearance.
	ml := strings.Index(out, `"Machine Learning": 80`)
	sql := strings.Index(out, `"SQL": 30`)
	if ml < 0 || sql < 0 || ml > sql {
		t.Errorf("topic scores missing or out of order:\n%s", out)
	}

	var back struct {
		Report   model.Report   `json:"report"`
		Feedback model.Feedback `json:"feedback"`
	}
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Report.OverallScore != doc.Report.OverallScore {
		t.Errorf("overall = %v, want %v", back.Report.OverallScore, doc.Report.OverallScore)
	}
	if back.Feedback.Readiness.Level != doc.Feedback.Readiness.Level {
		t.Errorf("readiness = %q, want %q", back.Feedback.Readiness.Level, doc.Feedback.Readiness.Level)
	}
}

func TestWriteHTML(t *testing.T) {
	doc := testDoc()
	var buf bytes.Buffer
	if err := WriteHTML(&buf, doc); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<h1>AI Interview Performance Report</h1>",
		"Role: Data Scientist",
		"<b>Readiness Level:</b> " + doc.Feedback.Readiness.Level,
		"<td>Python / Data Handling</td>",
		"Topic-wise Performance",
		"Score Distribution",
		"<svg",
		"- Strengthen fundamentals in SQL",
		doc.Feedback.OverallFeedback,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestPieChartPercentages(t *testing.T) {
	svg := string(PieChart(model.TopicScores{
		{Key: "A", Value: 75},
		{Key: "B", Value: 25},
	}))
	if !strings.Contains(svg, "75.0%") || !strings.Contains(svg, "25.0%") {
		t.Errorf("pie chart missing percentages: %s", svg)
	}

	single := string(PieChart(model.TopicScores{{Key: "A", Value: 40}}))
	if !strings.Contains(single, "<circle") || !strings.Contains(single, "100.0%") {
		t.Errorf("single-slice pie should be a full circle: %s", single)
	}

	empty := string(PieChart(nil))
	if !strings.Contains(empty, "No data") {
		t.Errorf("empty pie chart should say No data: %s", empty)
	}
}

func TestBarChartEscapesLabels(t *testing.T) {
	svg := string(BarChart(model.TopicScores{{Key: "<script>", Value: 50}}))
	if strings.Contains(svg, "<script>") {
		t.Error("bar chart label not escaped")
	}
	if strings.Count(svg, "<rect") != 1 {
		t.Errorf("expected one bar: %s", svg)
	}
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	printer := &fakePrinter{}
	e := New(dir, printer)

	paths, err := e.Export(context.Background(), testDoc(), []Format{FormatJSON, FormatHTML, FormatPDF})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := []string{"interview_report.json", "interview_report.html", "interview_report.pdf"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i, name := range want {
		if filepath.Base(paths[i]) != name {
			t.Errorf("path %d = %s, want %s", i, paths[i], name)
		}
		if _, err := os.Stat(paths[i]); err != nil {
			t.Errorf("stat %s: %v", paths[i], err)
		}
	}
	if !bytes.Contains(printer.html, []byte("AI Interview Performance Report")) {
		t.Error("printer did not receive the HTML report")
	}
	pdf, _ := os.ReadFile(paths[2])
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("unexpected PDF content %q", pdf)
	}
}

func TestExportPDFErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := New(dir, nil).Export(context.Background(), testDoc(), []Format{FormatPDF}); err == nil {
		t.Error("expected error without a printer")
	}

	boom := errors.New("chrome not found")
	_, err := New(dir, &fakePrinter{err: boom}).Export(context.Background(), testDoc(), []Format{FormatPDF})
	if !errors.Is(err, boom) {
		t.Errorf("expected printer error, got %v", err)
	}
}
