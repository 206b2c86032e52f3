// Package csvtable reads and writes the three CSV files the tools exchange:
// the full zip dataset, the filtered distance table, and availability snapshots.
//
// Columns are resolved by header name, so files with extra or reordered
// columns are accepted.
package csvtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/appointment-watch/internal/domain"
)

// Column sets written by this package.
var (
	FilteredColumns = []string{"zip", "distance", "city", "state", "lat", "lng"}
	SnapshotColumns = []string{"city", "state", "zip", "lat", "lng", "distance"}
)

// aliases maps alternate header names to the canonical column.
var aliases = map[string]string{
	"state_id": "state",
}

// ReadSource reads the full zip dataset. zip, lat, lng, city and state
// (or state_id) are required; distance is ignored if present.
func ReadSource(r io.Reader) ([]domain.CityRecord, error) {
	rows, err := read(r, []string{"zip", "lat", "lng", "city", "state"})
	if err != nil {
		return nil, fmt.Errorf("read zip dataset: %w", err)
	}
	for i := range rows {
		rows[i].Distance = 0
	}
	return rows, nil
}

// ReadTable reads a filtered distance table or a snapshot. lat and lng are
// optional so tables produced without coordinates still load.
func ReadTable(r io.Reader) ([]domain.CityRecord, error) {
	rows, err := read(r, []string{"zip", "city", "state", "distance"})
	if err != nil {
		return nil, fmt.Errorf("read city table: %w", err)
	}
	return rows, nil
}

// WriteFiltered writes the distance table with FilteredColumns.
func WriteFiltered(w io.Writer, rows []domain.CityRecord) error {
	return write(w, FilteredColumns, rows)
}

// WriteSnapshot writes an availability snapshot with SnapshotColumns.
func WriteSnapshot(w io.Writer, rows []domain.CityRecord) error {
	return write(w, SnapshotColumns, rows)
}

func read(r io.Reader, required []string) ([]domain.CityRecord, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header")
	}
	if err != nil {
		return nil, err
	}

	cols := indexColumns(header)
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var rows []domain.CityRecord
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row, err := parseRecord(cols, rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := aliases[name]; ok {
			if _, taken := cols[canonical]; taken {
				continue
			}
			name = canonical
		}
		cols[name] = i
	}
	return cols
}

func parseRecord(cols map[string]int, rec []string) (domain.CityRecord, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	row := domain.CityRecord{
		City:  field("city"),
		State: field("state"),
		Zip:   field("zip"),
	}
	var err error
	if row.Lat, err = parseFloat("lat", field("lat")); err != nil {
		return row, err
	}
	if row.Lng, err = parseFloat("lng", field("lng")); err != nil {
		return row, err
	}
	if row.Distance, err = parseFloat("distance", field("distance")); err != nil {
		return row, err
	}
	return row, nil
}

// parseFloat treats an empty cell as zero.
func parseFloat(name, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return v, nil
}

func write(w io.Writer, columns []string, rows []domain.CityRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	rec := make([]string, len(columns))
	for _, row := range rows {
		for i, name := range columns {
			rec[i] = formatField(row, name)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatField(row domain.CityRecord, name string) string {
	switch name {
	case "city":
		return row.City
	case "state":
		return row.State
	case "zip":
		return row.Zip
	case "lat":
		return strconv.FormatFloat(row.Lat, 'f', -1, 64)
	case "lng":
		return strconv.FormatFloat(row.Lng, 'f', -1, 64)
	case "distance":
		return strconv.FormatFloat(row.Distance, 'f', -1, 64)
	default:
		return ""
	}
}
