package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pavelanni/mockinterview/internal/bank"
	"github.com/pavelanni/mockinterview/internal/model"
)

// ImportResult describes what an import did with one file.
type ImportResult struct {
	Path      string
	Questions int
	Skipped   bool
}

type csvFile struct {
	path      string
	hash      string
	questions []model.Question
	unchanged bool
	changed   bool
}

// ImportCSVFile imports a single question bank CSV file. See ImportCSVFiles.
func (s *Store) ImportCSVFile(path string) (ImportResult, error) {
	results, err := s.ImportCSVFiles(path)
	if err != nil {
		return ImportResult{Path: path}, err
	}
	return results[0], nil
}

// ImportCSVFiles loads question bank CSV files into the database in one
// transaction. Question ids must be unique across all files, and an id stored
// from one file cannot be imported from another (ErrSourceConflict). A file
// whose content hash matches the last import is skipped; a changed file
// replaces every question previously imported from it. On error nothing is
// written.
func (s *Store) ImportCSVFiles(paths ...string) ([]ImportResult, error) {
	files := make([]csvFile, 0, len(paths))
	var all []model.Question
	for _, path := range paths {
		f, err := s.readCSVFile(filepath.Clean(path))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
		all = append(all, f.questions...)
	}
	if _, err := bank.New(all); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	results := make([]ImportResult, 0, len(files))
	for _, f := range files {
		res := ImportResult{Path: f.path}
		if f.unchanged {
			res.Skipped = true
			results = append(results, res)
			continue
		}
		if _, err := tx.Exec(`DELETE FROM questions WHERE source_path = ?`, f.path); err != nil {
			return nil, fmt.Errorf("clear %s: %w", f.path, err)
		}
		if err := importQuestions(tx, f.path, f.questions); err != nil {
			return nil, fmt.Errorf("import %s: %w", f.path, err)
		}
		if err := setImportedFileHash(tx, f.path, f.hash); err != nil {
			return nil, fmt.Errorf("record import for %s: %w", f.path, err)
		}
		res.Questions = len(f.questions)
		results = append(results, res)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	for i, res := range results {
		switch {
		case res.Skipped:
			slog.Info("questions file unchanged, skipping", "path", res.Path)
		case files[i].changed:
			slog.Info("re-imported changed questions file", "path", res.Path, "count", res.Questions)
		default:
			slog.Info("imported questions", "path", res.Path, "count", res.Questions)
		}
	}
	return results, nil
}

func (s *Store) readCSVFile(path string) (csvFile, error) {
	f := csvFile{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read %s: %w", path, err)
	}
	f.hash = sha256sum(data)

	storedHash, err := s.GetImportedFileHash(path)
	if err != nil {
		return f, fmt.Errorf("check import status for %s: %w", path, err)
	}
	f.unchanged = storedHash == f.hash
	f.changed = storedHash != "" && !f.unchanged

	f.questions, err = bank.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return f, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// Bank loads every stored question into an in-memory bank.
func (s *Store) Bank() (*bank.Bank, error) {
	questions, err := s.ListQuestions()
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return bank.New(questions)
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
