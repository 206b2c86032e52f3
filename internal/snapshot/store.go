// Package snapshot keeps the append-only history of availability snapshots,
// one CSV file per poll, named by the poll's UTC timestamp.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/appointment-watch/internal/csvtable"
	"github.com/couchcryptid/appointment-watch/internal/domain"
)

// TimestampLayout is ISO-8601 with filesystem-safe separators. Fixed-width
// fields keep lexicographic order equal to chronological order; names are
// always formatted in UTC so a DST fall-back cannot repeat an hour.
const TimestampLayout = "2006-01-02.15.04.05.000000"

const ext = ".csv"

// Store reads and writes snapshot files in a single directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory holding the snapshot files.
func (s *Store) Dir() string {
	return s.dir
}

// FileName returns the snapshot file name for a poll at t.
func FileName(t time.Time) string {
	return t.UTC().Format(TimestampLayout) + ext
}

// Save writes rows as a new snapshot file named for t and returns its path.
// The file is written under a temporary name and linked into place, so readers
// never see a partial snapshot. An existing file with the same name is never
// overwritten.
func (s *Store) Save(rows []domain.CityRecord, t time.Time) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(s.dir, FileName(t))
	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful link

	if err := csvtable.WriteSnapshot(tmp, rows); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close snapshot %s: %w", path, err)
	}

	// Unlike rename, link fails when the target exists.
	if err := os.Link(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("publish snapshot: %w", err)
	}
	return path, nil
}

// Latest loads the most recent snapshot other than excluding (a path or
// file name; empty excludes nothing). found is false when no other snapshot exists.
func (s *Store) Latest(excluding string) (rows []domain.CityRecord, path string, found bool, err error) {
	names, err := s.List()
	if err != nil {
		return nil, "", false, err
	}

	skip := filepath.Base(excluding)
	for i := len(names) - 1; i >= 0; i-- {
		if excluding != "" && names[i] == skip {
			continue
		}
		path = filepath.Join(s.dir, names[i])
		rows, err = s.Load(path)
		if err != nil {
			return nil, path, false, err
		}
		return rows, path, true, nil
	}
	return nil, "", false, nil
}

// List returns snapshot file names in chronological order.
// A missing directory yields no names.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	// os.ReadDir returns entries sorted by name.
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Load reads one snapshot file.
func (s *Store) Load(path string) ([]domain.CityRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	rows, err := csvtable.ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", path, err)
	}
	return rows, nil
}
