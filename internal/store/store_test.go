package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pavelanni/mockinterview/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestQuestion(t *testing.T, s *Store, id, topic, role string) {
	t.Helper()
	err := s.UpsertQuestion(model.Question{
		ID:          id,
		Text:        "question " + id,
		Topic:       topic,
		Role:        role,
		InputType:   model.InputText,
		IdealAnswer: "answer for " + id,
	})
	if err != nil {
		t.Fatalf("insertTestQuestion: %v", err)
	}
}

func getQuestion(t *testing.T, s *Store, id string) (model.Question, bool) {
	t.Helper()
	list, err := s.ListQuestions()
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	for _, q := range list {
		if q.ID == id {
			return q, true
		}
	}
	return model.Question{}, false
}

func TestNewInvalidPath(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing", "bank.db")); err == nil {
		t.Fatal("expected error for a database in a missing directory")
	}
}

func TestQuestionCRUD(t *testing.T) {
	s := newTestStore(t)

	// Empty DB should return zero count and empty list.
	count, err := s.QuestionCount()
	if err != nil {
		t.Fatalf("QuestionCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 questions, got %d", count)
	}

	list, err := s.ListQuestions()
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}

	insertTestQuestion(t, s, "Q1", "SQL", "Data Analyst")
	q, ok := getQuestion(t, s, "Q1")
	if !ok {
		t.Fatal("Q1 not found")
	}
	if q.Text != "question Q1" {
		t.Errorf("expected text 'question Q1', got %q", q.Text)
	}
	if q.InputType != model.InputText {
		t.Errorf("expected input type text, got %q", q.InputType)
	}

	if _, ok := getQuestion(t, s, "Q999"); ok {
		t.Error("Q999 should not exist")
	}

	// Upsert replaces in place.
	err = s.UpsertQuestion(model.Question{
		ID: "Q1", Text: "updated", Topic: "SQL", Role: "Data Analyst",
		InputType: model.InputCode, IdealAnswer: "new",
	})
	if err != nil {
		t.Fatalf("UpsertQuestion: %v", err)
	}
	q, _ = getQuestion(t, s, "Q1")
	if q.Text != "updated" || q.InputType != model.InputCode {
		t.Errorf("upsert did not replace question: %+v", q)
	}

	count, _ = s.QuestionCount()
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}
}

func TestListQuestionsInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"Q3", "Q1", "Q2"} {
		insertTestQuestion(t, s, id, "SQL", "Data Analyst")
	}
	// Updating a question keeps its position.
	insertTestQuestion(t, s, "Q3", "Machine Learning", "Data Scientist")

	qs, err := s.ListQuestions()
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	var ids []string
	for _, q := range qs {
		ids = append(ids, q.ID)
	}
	if strings.Join(ids, ",") != "Q3,Q1,Q2" {
		t.Errorf("order = %v, want [Q3 Q1 Q2]", ids)
	}
	if qs[0].Role != "Data Scientist" {
		t.Errorf("Q3 role = %q, want Data Scientist", qs[0].Role)
	}
}

func TestImportedFileHash(t *testing.T) {
	s := newTestStore(t)

	h, err := s.GetImportedFileHash("questions.csv")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if h != "" {
		t.Errorf("expected empty hash, got %q", h)
	}

	if err := s.SetImportedFileHash("questions.csv", "abc"); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}
	if err := s.SetImportedFileHash("questions.csv", "def"); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}
	h, _ = s.GetImportedFileHash("questions.csv")
	if h != "def" {
		t.Errorf("expected hash 'def', got %q", h)
	}
}

const testCSV = `question_id,question_text,topic,role,input_type,ideal_answer
Q1,What is a window function?,SQL,Data Analyst,text,A window function computes a value over related rows.
Q2,Explain overfitting.,Machine Learning,Data Scientist,text,Overfitting is learning noise in training data.
`

func TestImportCSVFile(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(t.TempDir(), "questions.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := s.ImportCSVFile(path)
	if err != nil {
		t.Fatalf("ImportCSVFile: %v", err)
	}
	if res.Skipped || res.Questions != 2 {
		t.Errorf("first import = %+v, want 2 questions", res)
	}

	// Same content is skipped.
	res, err = s.ImportCSVFile(path)
	if err != nil {
		t.Fatalf("ImportCSVFile: %v", err)
	}
	if !res.Skipped {
		t.Error("expected unchanged file to be skipped")
	}

	// Changed content is re-imported.
	changed := testCSV + "Q3,What is paging?,Operating Systems,Software Engineer,text,Paging maps virtual pages to frames.\n"
	if err := os.WriteFile(path, []byte(changed), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err = s.ImportCSVFile(path)
	if err != nil {
		t.Fatalf("ImportCSVFile: %v", err)
	}
	if res.Skipped || res.Questions != 3 {
		t.Errorf("re-import = %+v, want 3 questions", res)
	}

	b, err := s.Bank()
	if err != nil {
		t.Fatalf("Bank: %v", err)
	}
	if b.Len() != 3 {
		t.Errorf("bank has %d questions, want 3", b.Len())
	}
	if q, ok := b.Get("Q2"); !ok || q.Role != "Data Scientist" {
		t.Errorf("Get(Q2) = %+v, %v", q, ok)
	}
}

func TestImportCSVFileInvalid(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(t.TempDir(), "bad.csv")
	bad := "question_id,question_text,topic,role,ideal_answer\nQ1,,SQL,Data Analyst,answer\n"
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ImportCSVFile(path); err == nil {
		t.Fatal("expected validation error")
	}
	if h, _ := s.GetImportedFileHash(path); h != "" {
		t.Error("failed import must not record a hash")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const csvHeader = "question_id,question_text,topic,role,input_type,ideal_answer\n"

func TestImportCSVFilesDuplicateAcrossFiles(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", csvHeader+"Q1,What is a JOIN?,SQL,Data Analyst,text,Combines rows.\n")
	b := writeFile(t, dir, "b.csv", csvHeader+"Q1,What is paging?,Operating Systems,Software Engineer,text,Maps pages.\n")

	if _, err := s.ImportCSVFiles(a, b); err == nil {
		t.Fatal("expected duplicate id error")
	}
	if n, _ := s.QuestionCount(); n != 0 {
		t.Errorf("failed import wrote %d questions", n)
	}
	if h, _ := s.GetImportedFileHash(a); h != "" {
		t.Error("failed import must not record a hash")
	}
}

func TestImportCSVFilesSourceConflict(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", csvHeader+"Q1,What is a JOIN?,SQL,Data Analyst,text,Combines rows.\n")
	b := writeFile(t, dir, "b.csv", csvHeader+
		"Q2,What is a deadlock?,Operating Systems,Software Engineer,text,A wait cycle.\n"+
		"Q1,What is paging?,Operating Systems,Software Engineer,text,Maps pages.\n")

	if _, err := s.ImportCSVFiles(a); err != nil {
		t.Fatalf("import a: %v", err)
	}
	_, err := s.ImportCSVFiles(b)
	if !errors.Is(err, ErrSourceConflict) {
		t.Fatalf("expected ErrSourceConflict, got %v", err)
	}

	q, _ := getQuestion(t, s, "Q1")
	if q.Role != "Data Analyst" || q.Topic != "SQL" {
		t.Errorf("Q1 was overwritten: %+v", q)
	}
	if _, ok := getQuestion(t, s, "Q2"); ok {
		t.Error("conflicting import must write nothing")
	}
}

func TestImportCSVFileReplacesOwnQuestions(t *testing.T) {
	s := newTestStore(t)
	path := writeFile(t, t.TempDir(), "questions.csv", testCSV)
	if _, err := s.ImportCSVFile(path); err != nil {
		t.Fatalf("ImportCSVFile: %v", err)
	}

	// Q2 removed from the file, Q1 moved to another role.
	changed := csvHeader + "Q1,What is a window function?,SQL,Data Scientist,text,It computes over related rows.\n"
	writeFile(t, filepath.Dir(path), "questions.csv", changed)
	res, err := s.ImportCSVFile(path)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if res.Questions != 1 {
		t.Errorf("re-import = %+v, want 1 question", res)
	}
	if _, ok := getQuestion(t, s, "Q2"); ok {
		t.Error("Q2 should be gone after re-import")
	}
	if q, _ := getQuestion(t, s, "Q1"); q.Role != "Data Scientist" {
		t.Errorf("Q1 role = %q, want Data Scientist", q.Role)
	}
}
