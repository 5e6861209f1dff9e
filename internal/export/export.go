// Package export writes interview reports as JSON, HTML and PDF documents.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pavelanni/mockinterview/internal/model"
)

// Format is an output document format.
type Format string

const (
	FormatJSON Format = "json"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// ErrUnknownFormat is returned for a format name that is not supported.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormats parses names such as "json,pdf". Duplicates are dropped.
func ParseFormats(names []string) ([]Format, error) {
	var out []Format
	seen := make(map[Format]bool)
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			f := Format(strings.ToLower(strings.TrimSpace(part)))
			if f == "" {
				continue
			}
			switch f {
			case FormatJSON, FormatHTML, FormatPDF:
			default:
				return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, part)
			}
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out, nil
}

const baseName = "interview_report"

// Document is everything a rendered report shows.
type Document struct {
	Role        string
	GeneratedAt time.Time
	Report      model.Report
	Feedback    model.Feedback
}

// Exporter writes report documents into a directory.
type Exporter struct {
	OutDir  string
	Printer Printer
}

// New creates an Exporter writing to outDir. printer may be nil when PDF
// output is not needed.
func New(outDir string, printer Printer) *Exporter {
	return &Exporter{OutDir: outDir, Printer: printer}
}

// Export writes doc in each format and returns the written paths in order.
func (e *Exporter) Export(ctx context.Context, doc Document, formats []Format) ([]string, error) {
	if err := os.MkdirAll(e.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string
	for _, f := range formats {
		var buf bytes.Buffer
		var err error
		switch f {
		case FormatJSON:
			err = WriteJSON(&buf, doc.Report, doc.Feedback)
		case FormatHTML:
			err = WriteHTML(&buf, doc)
		case FormatPDF:
			err = e.writePDF(ctx, &buf, doc)
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
		if err != nil {
			return paths, fmt.Errorf("render %s: %w", f, err)
		}

		path := filepath.Join(e.OutDir, baseName+"."+string(f))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		slog.Info("wrote report", "format", f, "path", path)
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteJSON writes {"report": ..., "feedback": ...} indented by four spaces.
func WriteJSON(w io.Writer, report model.Report, feedback model.Feedback) error {
	data, err := json.MarshalIndent(model.ReportExport{Report: report, Feedback: feedback}, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

func (e *Exporter) writePDF(ctx context.Context, w io.Writer, doc Document) error {
	if e.Printer == nil {
		return errors.New("no PDF printer configured")
	}
	var html bytes.Buffer
	if err := WriteHTML(&html, doc); err != nil {
		return err
	}
	pdf, err := e.Printer.PrintPDF(ctx, html.Bytes())
	if err != nil {
		return err
	}
	_, err = w.Write(pdf)
	return err
}
