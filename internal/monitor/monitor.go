package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/appointment-watch/internal/alert"
	"github.com/couchcryptid/appointment-watch/internal/domain"
	"github.com/couchcryptid/appointment-watch/internal/observability"
	"github.com/jonboulle/clockwork"
)

// StatusFetcher returns city statuses for one region. A nil map means the
// feed had no data for the region.
type StatusFetcher interface {
	Fetch(ctx context.Context, region string) (map[string]string, error)
}

// SnapshotStore persists snapshots and finds the previous one.
type SnapshotStore interface {
	Save(rows []domain.CityRecord, t time.Time) (string, error)
	Latest(excluding string) (rows []domain.CityRecord, path string, found bool, err error)
}

// Config holds loop timing and display settings.
type Config struct {
	Interval time.Duration
	Clock    clockwork.Clock // nil means the real clock
	Out      io.Writer       // operator console; nil means os.Stdout
	Redraw   bool            // rewrite the countdown in place with \r
}

// Result describes one completed poll.
type Result struct {
	Iteration      int
	Availabilities []domain.CityRecord
	SnapshotPath   string
	Changed        bool // no previous snapshot, or it differs
}

// Monitor runs the fetch-match-record-alert loop.
type Monitor struct {
	table   []domain.CityRecord
	regions []string
	fetcher StatusFetcher
	store   SnapshotStore
	sounder alert.Sounder
	logger  *slog.Logger
	metrics *observability.Metrics
	cfg     Config
	ready   atomic.Bool
}

// New creates a Monitor over the filtered city table.
func New(table []domain.CityRecord, fetcher StatusFetcher, store SnapshotStore, sounder alert.Sounder, logger *slog.Logger, metrics *observability.Metrics, cfg Config) *Monitor {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return &Monitor{
		table:   table,
		regions: domain.Regions(table),
		fetcher: fetcher,
		store:   store,
		sounder: sounder,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
	}
}

// CheckReadiness returns nil once the monitor has completed a poll.
func (m *Monitor) CheckReadiness(_ context.Context) error {
	if !m.ready.Load() {
		return errors.New("monitor has not completed a poll yet")
	}
	return nil
}

// Run polls until the context is cancelled, sleeping Interval between polls.
// Cancellation is a clean exit and returns nil; only snapshot I/O errors are returned.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("monitor started", "regions", len(m.regions), "cities", len(m.table), "interval", m.cfg.Interval)
	m.metrics.MonitorRunning.Set(1)
	defer m.metrics.MonitorRunning.Set(0)

	for iteration := 1; ctx.Err() == nil; iteration++ {
		if _, err := m.Poll(ctx, iteration); err != nil {
			if ctx.Err() != nil {
				break
			}
			return err
		}
		if !m.sleep(ctx) {
			break
		}
	}

	m.printf("\nExiting...\n")
	m.logger.Info("monitor stopping", "reason", ctx.Err())
	return nil
}

// Poll runs one fetch-match-record-alert cycle.
func (m *Monitor) Poll(ctx context.Context, iteration int) (Result, error) {
	start := time.Now()
	res := Result{Iteration: iteration}

	var matches []domain.CityRecord
	for _, region := range m.regions {
		statuses, err := m.fetcher.Fetch(ctx, region)
		if err != nil {
			m.logger.Debug("region fetch failed, skipping", "region", region, "error", err)
			continue
		}
		if statuses == nil {
			m.logger.Debug("region has no data, skipping", "region", region)
			continue
		}
		matches = append(matches, domain.MatchRegion(m.table, region, domain.AvailableCities(statuses))...)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	res.Availabilities = domain.BuildSnapshot(matches)
	n := len(res.Availabilities)
	m.metrics.Availabilities.Set(float64(n))

	m.printf("%d %s complete", iteration, plural(iteration, "scrape", "scrapes"))
	if n == 0 {
		m.printf("\n")
		m.finishPoll(start)
		return res, nil
	}
	m.printf("\t--\t%d %s!!\n", n, plural(n, "AVAILABILITY", "AVAILABILITIES"))
	m.raise(alert.Found)

	path, err := m.store.Save(res.Availabilities, m.cfg.Clock.Now())
	if err != nil {
		return res, err
	}
	res.SnapshotPath = path
	m.metrics.SnapshotsSaved.Inc()

	prev, prevPath, found, err := m.store.Latest(path)
	if err != nil {
		return res, err
	}
	res.Changed = !found || !domain.SnapshotsEqual(res.Availabilities, prev)
	if res.Changed {
		m.raise(alert.Changed)
	}

	m.logger.Info("availability recorded",
		"iteration", iteration,
		"availabilities", n,
		"snapshot", path,
		"previous", prevPath,
		"changed", res.Changed,
	)
	m.finishPoll(start)
	return res, nil
}

func (m *Monitor) finishPoll(start time.Time) {
	m.metrics.PollsTotal.Inc()
	m.metrics.PollDuration.Observe(time.Since(start).Seconds())
	m.ready.Store(true)
}

func (m *Monitor) raise(kind alert.Kind) {
	m.metrics.Alerts.WithLabelValues(kind.String()).Inc()
	m.sounder.Sound(kind)
}

func (m *Monitor) printf(format string, args ...any) {
	fmt.Fprintf(m.cfg.Out, format, args...) //nolint:errcheck // console output
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
