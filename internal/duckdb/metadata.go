package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file. The path is made
// absolute so the same file loaded from different directories matches.
func StatFile(path string) (FileFingerprint, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    abs,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// sourceLoaded reports whether a file with the same fingerprint was loaded before.
func (s *Store) sourceLoaded(fp FileFingerprint) (bool, error) {
	var size, modTime int64
	err := s.db.QueryRow(`SELECT size, mod_time FROM usage_sources WHERE path=?`, fp.Path).Scan(&size, &modTime)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query usage source: %w", err)
	}
	return size == fp.Size && modTime == fp.ModTime.UnixNano(), nil
}

// recordSource stores the fingerprint of a loaded file.
func (s *Store) recordSource(tx *sql.Tx, fp FileFingerprint) error {
	if _, err := tx.Exec(`INSERT OR REPLACE INTO usage_sources VALUES (?, ?, ?)`,
		fp.Path, fp.Size, fp.ModTime.UnixNano()); err != nil {
		return fmt.Errorf("record usage source: %w", err)
	}
	return nil
}
