// Command checkhistory verifies the files written by ./cmd/distances and
// ./cmd/watch: the city table must have one row per city within the radius in
// state/city/distance order, and every snapshot must be distance-ordered and
// contain only cities from the table.
//
// Usage:
//
//	go run ./cmd/checkhistory [-radius miles]
//
// Paths come from CITY_TABLE_PATH and SNAPSHOT_DIR.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/appointment-watch/internal/config"
	"github.com/couchcryptid/appointment-watch/internal/csvtable"
	"github.com/couchcryptid/appointment-watch/internal/domain"
	"github.com/couchcryptid/appointment-watch/internal/snapshot"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) addJoined(prefix string, err error) {
	if err == nil {
		return
	}
	for _, line := range strings.Split(err.Error(), "\n") {
		p.errorf("%s%s", prefix, line)
	}
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	radius := flag.Float64("radius", -1, "radius in miles the table was built with (default: skip the radius check)")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}

	if code := run(os.Stdout, cfg.CityTablePath, snapshot.NewStore(cfg.SnapshotDir), *radius); code != 0 {
		os.Exit(code)
	}
}

func run(out io.Writer, tablePath string, store *snapshot.Store, radius float64) int {
	fmt.Fprintln(out, "=== Availability History Validation ===")
	fmt.Fprintln(out)

	table, err := loadTable(tablePath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load city table: %v\n", err)
		return 1
	}
	names, err := store.List()
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateTable(table, radius),
		validateSnapshots(store, names, table),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d cities in %d regions, %d snapshots\n", len(table), len(domain.Regions(table)), len(names))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func loadTable(path string) ([]domain.CityRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csvtable.ReadTable(f)
}

func validateTable(table []domain.CityRecord, radius float64) *phase {
	p := &phase{name: "City table: radius, uniqueness, order"}
	if len(table) == 0 {
		p.errorf("table has no rows")
		return p
	}
	if radius < 0 {
		radius = math.Inf(1)
	}
	p.addJoined("", domain.ValidateFilteredTable(table, radius))
	return p
}

func validateSnapshots(store *snapshot.Store, names []string, table []domain.CityRecord) *phase {
	p := &phase{name: "Snapshots: distance order, table membership"}
	for _, name := range names {
		rows, err := store.Load(filepath.Join(store.Dir(), name))
		if err != nil {
			p.errorf("%s: %v", name, errors.Unwrap(err))
			continue
		}
		if len(rows) == 0 {
			p.errorf("%s: empty snapshot", name)
			continue
		}
		p.addJoined(name+": ", domain.ValidateSnapshot(rows, table))
	}
	return p
}
