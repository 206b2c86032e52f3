package status

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/appointment-watch/internal/domain"
	"github.com/couchcryptid/appointment-watch/internal/observability"
)

// RegionPlaceholder is replaced with the region code in the URL template.
const RegionPlaceholder = "{region}"

// DefaultURLTemplate is the public per-state vaccine status document.
const DefaultURLTemplate = "https://www.cvs.com/immunizations/covid-19-vaccine/immunizations/covid-19-vaccine.vaccine-status." + RegionPlaceholder + ".json?vaccineinfo"

// Client fetches per-region city statuses from the public status feed.
type Client struct {
	urlTemplate string
	httpClient  *http.Client
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates a status feed client. urlTemplate must contain RegionPlaceholder.
func NewClient(urlTemplate string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		urlTemplate: urlTemplate,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch returns a map of title-cased city name to status for one region.
// A document without a data payload yields a nil map and no error.
func (c *Client) Fetch(ctx context.Context, region string) (map[string]string, error) {
	start := time.Now()
	statuses, err := c.fetch(ctx, region)
	c.metrics.FetchDuration.WithLabelValues(region).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.FetchRequests.WithLabelValues(region, "error").Inc()
	case statuses == nil:
		c.metrics.FetchRequests.WithLabelValues(region, "empty").Inc()
	default:
		c.metrics.FetchRequests.WithLabelValues(region, "success").Inc()
	}
	return statuses, err
}

func (c *Client) fetch(ctx context.Context, region string) (map[string]string, error) {
	fullURL := strings.ReplaceAll(c.urlTemplate, RegionPlaceholder, url.PathEscape(region))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s status request: %w", region, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status feed error: %s: status %d: %s", region, resp.StatusCode, body)
	}

	var doc response
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", region, err)
	}

	entries, ok := doc.ResponsePayloadData.Data[region]
	if !ok {
		c.logger.Debug("no data payload", "region", region)
		return nil, nil
	}

	statuses := make(map[string]string, len(entries))
	for _, e := range entries {
		statuses[domain.TitleCase(e.City)] = e.Status
	}
	return statuses, nil
}

// Status feed response types.

type response struct {
	ResponsePayloadData payload `json:"responsePayloadData"`
}

type payload struct {
	Data map[string][]domain.StatusEntry `json:"data"` // null when the feed has nothing for the region
}
