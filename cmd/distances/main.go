// Command distances builds the filtered city table used by ./cmd/watch: every
// city within a driving radius of a home zip code, one row per city, with its
// great-circle distance in miles.
//
// Usage:
//
//	go run ./cmd/distances <zip_code> <radius_miles>
//
// Reads ZIPS_SOURCE_PATH and overwrites CITY_TABLE_PATH.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/appointment-watch/internal/config"
	"github.com/couchcryptid/appointment-watch/internal/csvtable"
	"github.com/couchcryptid/appointment-watch/internal/domain"
)

const usage = "Please pass your zip code and driving radius (miles) as the first and second args, respectively.\nExiting..."

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	zip, radius, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, usage)
		return 1
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(stderr, "read .env: %v\n", err)
		return 1
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)

	n, err := buildTable(cfg.SourcePath, cfg.CityTablePath, zip, radius, logger)
	if err != nil {
		logger.Error("build city table failed", "error", err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %d cities within %d miles of %05d to %s\n", n, radius, zip, cfg.CityTablePath)
	return 0
}

// parseArgs requires exactly two integer arguments.
func parseArgs(args []string) (zip, radius int, err error) {
	if len(args) != 2 {
		return 0, 0, errUsage
	}
	if zip, err = strconv.Atoi(args[0]); err != nil || zip < 0 {
		return 0, 0, errUsage
	}
	if radius, err = strconv.Atoi(args[1]); err != nil || radius < 0 {
		return 0, 0, errUsage
	}
	return zip, radius, nil
}

func buildTable(sourcePath, outPath string, zip, radius int, logger *slog.Logger) (int, error) {
	in, err := os.Open(sourcePath)
	if err != nil {
		return 0, fmt.Errorf("open zip dataset: %w", err)
	}
	defer in.Close()

	rows, err := csvtable.ReadSource(in)
	if err != nil {
		return 0, err
	}

	table, home, err := domain.BuildFilteredTable(rows, zip, float64(radius))
	if err != nil {
		return 0, err
	}
	logger.Info("computed distances",
		"zip", zip,
		"home_lat", home.Lat(),
		"home_lng", home.Lon(),
		"source_rows", len(rows),
		"cities", len(table),
		"regions", len(domain.Regions(table)),
	)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create city table: %w", err)
	}
	if err := csvtable.WriteFiltered(out, table); err != nil {
		out.Close()
		return 0, fmt.Errorf("write city table: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("close city table: %w", err)
	}
	return len(table), nil
}
