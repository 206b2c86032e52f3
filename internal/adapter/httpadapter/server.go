package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/appointment-watch/internal/domain"
)

// SnapshotSource returns the most recent recorded snapshot.
type SnapshotSource interface {
	Latest(excluding string) (rows []domain.CityRecord, path string, found bool, err error)
}

// Server exposes health, readiness, metrics, and the latest snapshot over HTTP.
// It only runs when the operator sets METRICS_ADDR.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /snapshots/latest routes. Metrics are served from gatherer.
func NewServer(addr string, ready sharedobs.ReadinessChecker, snapshots SnapshotSource, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /snapshots/latest", s.handleLatest(snapshots))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type snapshotRow struct {
	City     string  `json:"city"`
	State    string  `json:"state"`
	Zip      string  `json:"zip"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Distance float64 `json:"distance"`
}

type snapshotResponse struct {
	File           string        `json:"file"`
	Availabilities []snapshotRow `json:"availabilities"`
}

func (s *Server) handleLatest(snapshots SnapshotSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		rows, path, found, err := snapshots.Latest("")
		if err != nil {
			s.logger.Error("load latest snapshot", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshot unavailable"})
			return
		}
		if !found {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no snapshots recorded"})
			return
		}

		resp := snapshotResponse{File: filepath.Base(path), Availabilities: make([]snapshotRow, len(rows))}
		for i, r := range rows {
			resp.Availabilities[i] = snapshotRow(r)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
