package store

import (
	"database/sql"
	"time"
)

// GetImportedFileHash returns the SHA-256 recorded for a previously imported
// file. Returns empty string and nil error if the file was never imported.
func (s *Store) GetImportedFileHash(path string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT sha256 FROM imported_files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

// SetImportedFileHash records the SHA-256 of an imported file.
func (s *Store) SetImportedFileHash(path, hash string) error {
	return setImportedFileHash(s.db, path, hash)
}

func setImportedFileHash(db dbtx, path, hash string) error {
	_, err := db.Exec(
		`INSERT INTO imported_files (path, sha256, imported_at) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET sha256 = ?, imported_at = ?`,
		path, hash, time.Now(), hash, time.Now(),
	)
	return err
}
