package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/pavelanni/mockinterview/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS questions (
		question_id TEXT PRIMARY KEY,
		question_text TEXT NOT NULL,
		topic TEXT NOT NULL,
		role TEXT NOT NULL,
		input_type TEXT NOT NULL DEFAULT 'text',
		ideal_answer TEXT NOT NULL,
		source_path TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS imported_files (
		path TEXT PRIMARY KEY,
		sha256 TEXT NOT NULL,
		imported_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

const questionColumns = `question_id, question_text, topic, role, input_type, ideal_answer`

// ErrSourceConflict is returned when a question id is already stored from a
// different source file.
var ErrSourceConflict = errors.New("question id already imported from another source")

// UpsertQuestion inserts a question or replaces the one with the same id.
// The question is stored without a source.
func (s *Store) UpsertQuestion(q model.Question) error {
	return upsertQuestion(s.db, q, "")
}

type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func upsertQuestion(db dbtx, q model.Question, source string) error {
	_, err := db.Exec(
		`INSERT INTO questions (`+questionColumns+`, source_path) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(question_id) DO UPDATE SET
		   question_text = excluded.question_text,
		   topic = excluded.topic,
		   role = excluded.role,
		   input_type = excluded.input_type,
		   ideal_answer = excluded.ideal_answer,
		   source_path = excluded.source_path`,
		q.ID, q.Text, q.Topic, q.Role, q.InputType, q.IdealAnswer, source,
	)
	return err
}

// importQuestions upserts questions read from source. It fails with
// ErrSourceConflict if an id is already stored from another source.
func importQuestions(tx dbtx, source string, questions []model.Question) error {
	for _, q := range questions {
		var owner string
		err := tx.QueryRow(`SELECT source_path FROM questions WHERE question_id = ?`, q.ID).Scan(&owner)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("look up %s: %w", q.ID, err)
		case owner != source:
			return fmt.Errorf("%w: %s from %s, stored from %q", ErrSourceConflict, q.ID, source, owner)
		}
		if err := upsertQuestion(tx, q, source); err != nil {
			return fmt.Errorf("upsert %s: %w", q.ID, err)
		}
	}
	return nil
}

// ListQuestions returns all questions in insertion order.
func (s *Store) ListQuestions() ([]model.Question, error) {
	return s.queryQuestions(`SELECT ` + questionColumns + ` FROM questions ORDER BY rowid`)
}

func (s *Store) queryQuestions(query string, args ...any) ([]model.Question, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Topic, &q.Role, &q.InputType, &q.IdealAnswer); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// QuestionCount returns the number of questions in the database.
func (s *Store) QuestionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM questions`).Scan(&count)
	return count, err
}
