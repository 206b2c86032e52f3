package status

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/appointment-watch/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *observability.Metrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	metrics := observability.NewMetricsForTesting()
	return &Client{
		urlTemplate: srv.URL + "/vaccine-status." + RegionPlaceholder + ".json?vaccineinfo",
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		metrics:     metrics,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, metrics
}

func TestClient_Fetch_Success(t *testing.T) {
	c, metrics := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vaccine-status.NY.json", r.URL.Path)
		assert.True(t, r.URL.Query().Has("vaccineinfo"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"responsePayloadData":{"data":{"NY":[{"city":"ALBANY","status":"Available"},{"city":"TROY","status":"Fully Booked"}]}}}`))
	})

	statuses, err := c.Fetch(context.Background(), "NY")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"Albany": "Available", "Troy": "Fully Booked"}, statuses)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchRequests.WithLabelValues("NY", "success")), 0)
}

func TestClient_Fetch_NullData(t *testing.T) {
	c, metrics := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"responsePayloadData":{"data":null}}`))
	})

	statuses, err := c.Fetch(context.Background(), "NY")
	require.NoError(t, err)
	assert.Nil(t, statuses)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchRequests.WithLabelValues("NY", "empty")), 0)
}

func TestClient_Fetch_MissingPayload(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{}`))
	})

	statuses, err := c.Fetch(context.Background(), "NJ")
	require.NoError(t, err)
	assert.Nil(t, statuses)
}

func TestClient_Fetch_OtherRegionOnly(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"responsePayloadData":{"data":{"CT":[{"city":"HARTFORD","status":"Available"}]}}}`))
	})

	statuses, err := c.Fetch(context.Background(), "NJ")
	require.NoError(t, err)
	assert.Nil(t, statuses)
}

func TestClient_Fetch_EmptyList(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"responsePayloadData":{"data":{"NJ":[]}}}`))
	})

	statuses, err := c.Fetch(context.Background(), "NJ")
	require.NoError(t, err)
	assert.NotNil(t, statuses)
	assert.Empty(t, statuses)
}

func TestClient_Fetch_APIError(t *testing.T) {
	c, metrics := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`Access Denied`))
	})

	_, err := c.Fetch(context.Background(), "NY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchRequests.WithLabelValues("NY", "error")), 0)
}

func TestClient_Fetch_MalformedJSON(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := c.Fetch(context.Background(), "NY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode NY response")
}

func TestClient_Fetch_Timeout(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.Fetch(context.Background(), "NY")
	require.Error(t, err)
}

func TestNewClient(t *testing.T) {
	c := NewClient(DefaultURLTemplate, 3*time.Second, observability.NewMetricsForTesting(), slog.Default())
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
	assert.Contains(t, c.urlTemplate, RegionPlaceholder)
}
