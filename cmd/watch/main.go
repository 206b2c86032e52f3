// Command watch polls the public vaccine status feed for every state in the
// filtered city table, records each poll's in-radius availability as a
// timestamped CSV snapshot, and rings the terminal bell when availability
// appears or changes.
//
// Usage:
//
//	go run ./cmd/watch [-i minutes] [-q | -Q]
//
// Build the city table first with ./cmd/distances.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/couchcryptid/appointment-watch/internal/adapter/httpadapter"
	"github.com/couchcryptid/appointment-watch/internal/adapter/status"
	"github.com/couchcryptid/appointment-watch/internal/alert"
	"github.com/couchcryptid/appointment-watch/internal/config"
	"github.com/couchcryptid/appointment-watch/internal/csvtable"
	"github.com/couchcryptid/appointment-watch/internal/domain"
	"github.com/couchcryptid/appointment-watch/internal/monitor"
	"github.com/couchcryptid/appointment-watch/internal/observability"
	"github.com/couchcryptid/appointment-watch/internal/snapshot"
)

// options are the command-line flags.
type options struct {
	intervalMins int
	alerts       alert.Policy
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, opts); err != nil {
		slog.Error("watch failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Scrape public data on open COVID-19 vaccination appointments, filter by distance, and write results to a file.")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Usage: watch [-i minutes] [-q | -Q]")
		fs.PrintDefaults()
	}

	var opts options
	const intervalHelp = "integer duration in minutes to sleep between scrapes"
	const quietHelp = "suppress sounds, except those announcing availabilities at new locations"
	const quietAllHelp = "suppress all sounds"
	fs.IntVar(&opts.intervalMins, "i", 10, intervalHelp)
	fs.IntVar(&opts.intervalMins, "interval_mins", 10, intervalHelp)
	fs.BoolVar(&opts.alerts.Quiet, "q", false, quietHelp)
	fs.BoolVar(&opts.alerts.Quiet, "quiet", false, quietHelp)
	fs.BoolVar(&opts.alerts.QuietAll, "Q", false, quietAllHelp)
	fs.BoolVar(&opts.alerts.QuietAll, "quiet_all", false, quietAllHelp)

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, usageError(fs, stderr, "unexpected arguments: %v", fs.Args())
	}
	if opts.alerts.Quiet && opts.alerts.QuietAll {
		return opts, usageError(fs, stderr, "-q/--quiet and -Q/--quiet_all are mutually exclusive")
	}
	if opts.intervalMins <= 0 {
		return opts, usageError(fs, stderr, "-i/--interval_mins must be a positive number of minutes")
	}
	return opts, nil
}

func usageError(fs *flag.FlagSet, stderr io.Writer, format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	fmt.Fprintln(stderr, err)
	fs.Usage()
	return err
}

func run(cfg *config.Config, opts options) error {
	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	table, err := loadCityTable(cfg.CityTablePath)
	if err != nil {
		return err
	}
	if len(table) == 0 {
		return fmt.Errorf("city table %s is empty; rebuild it with a larger radius", cfg.CityTablePath)
	}

	client := status.NewClient(cfg.StatusURLTemplate, cfg.StatusTimeout, metrics, logger)
	store := snapshot.NewStore(cfg.SnapshotDir)
	sounder := alert.NewFiltered(alert.NewBell(os.Stdout), opts.alerts)

	mon := monitor.New(table, client, store, sounder, logger, metrics, monitor.Config{
		Interval: monitor.Minutes(opts.intervalMins),
		Out:      os.Stdout,
		Redraw:   term.IsTerminal(int(os.Stdout.Fd())),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.MetricsAddr != "" {
		srv = httpadapter.NewServer(cfg.MetricsAddr, mon, store, prometheus.DefaultGatherer, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	runErr := mon.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	return runErr
}

func loadCityTable(path string) ([]domain.CityRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open city table (run ./cmd/distances first): %w", err)
	}
	defer f.Close()
	return csvtable.ReadTable(f)
}
