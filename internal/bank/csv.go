package bank

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pavelanni/mockinterview/internal/model"
)

// ErrInvalidRow is returned for a CSV row that fails validation.
var ErrInvalidRow = errors.New("invalid question row")

var validate = validator.New()

var requiredColumns = []string{"question_id", "question_text", "topic", "role", "ideal_answer"}

// ReadCSV parses a question bank in CSV form. The header row names the
// columns; input_type is optional and defaults to text.
func ReadCSV(r io.Reader) ([]model.Question, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var questions []model.Question
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		qi := model.QuestionImport{
			ID:          field(rec, "question_id"),
			Text:        field(rec, "question_text"),
			Topic:       field(rec, "topic"),
			Role:        field(rec, "role"),
			InputType:   strings.ToLower(field(rec, "input_type")),
			IdealAnswer: field(rec, "ideal_answer"),
		}
		if err := validate.Struct(qi); err != nil {
			return nil, fmt.Errorf("%w at line %d: %v", ErrInvalidRow, line, err)
		}
		questions = append(questions, qi.Question())
	}
	return questions, nil
}

// LoadCSV reads questions from the CSV files at paths, in order.
func LoadCSV(paths ...string) ([]model.Question, error) {
	var all []model.Question
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		qs, err := ReadCSV(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		all = append(all, qs...)
	}
	return all, nil
}
