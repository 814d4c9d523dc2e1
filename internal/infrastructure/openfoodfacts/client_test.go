package openfoodfacts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodtracker/backend/internal/domain"
	"github.com/foodtracker/backend/internal/infrastructure/metrics"
)

// newTestClient returns a client pointed at server with no retry delay
func newTestClient(serverURL string, m *metrics.Metrics) *Client {
	client := NewClient(ClientConfig{BaseURL: serverURL, RatePerSecond: 1000, Burst: 100}, nil, m)
	client.backoff = func(int) time.Duration { return 0 }
	return client
}

func TestNewClient(t *testing.T) {
	client := NewClient(ClientConfig{}, nil, nil)

	assert.NotNil(t, client)
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, "FoodTracker/1.0", client.userAgent)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "https://example.org/"}, nil, nil)
	assert.Equal(t, "https://example.org", client.baseURL)
}

func TestSetDebug(t *testing.T) {
	client := NewClient(ClientConfig{}, nil, nil)

	assert.False(t, client.debug)

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetDebug(false)
	assert.False(t, client.debug)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestSearchProducts_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cgi/search.pl", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "dark chocolate", q.Get("search_terms"))
		assert.Equal(t, "1", q.Get("search_simple"))
		assert.Equal(t, "process", q.Get("action"))
		assert.Equal(t, "1", q.Get("json"))
		assert.Equal(t, "20", q.Get("page_size"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "FoodTracker/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count": 42, "products": [{"code": "123", "product_name": "Dark 70%"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	result, err := client.SearchProducts(context.Background(), "dark chocolate", 2)

	require.NoError(t, err)
	assert.Equal(t, 42, result.Count)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "123", result.Products[0].Code)
	assert.Equal(t, "Dark 70%", result.Products[0].ProductName)
}

func TestSearchProducts_PageDefaultsToOne(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		w.Write([]byte(`{"count": 0, "products": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	_, err := client.SearchProducts(context.Background(), "milk", 0)
	require.NoError(t, err)
}

func TestSearchProducts_EmptyTerm(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	result, err := client.SearchProducts(context.Background(), "   ", 1)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestSearchProducts_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"count": 1, "products": [{"code": "1"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	result, err := client.SearchProducts(context.Background(), "milk", 1)

	require.NoError(t, err)
	assert.Len(t, result.Products, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSearchProducts_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	m := metrics.New()
	client := newTestClient(server.URL, m)

	result, err := client.SearchProducts(context.Background(), "milk", 1)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
	assert.Equal(t, int32(maxAttempts), atomic.LoadInt32(&calls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("search", "error")))
}

func TestSearchProducts_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	_, err := client.SearchProducts(context.Background(), "milk", 1)

	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSearchProducts_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	result, err := client.SearchProducts(context.Background(), "milk", 1)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
}

func TestSearchProducts_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SearchProducts(ctx, "milk", 1)
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
}

func TestGetProduct_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/product/3017620422003.json", r.URL.Path)
		w.Write([]byte(`{"status": 1, "product": {"code": "3017620422003", "product_name": "Nutella", "nutriscore_grade": "E"}}`))
	}))
	defer server.Close()

	m := metrics.New()
	client := newTestClient(server.URL, m)

	record, err := client.GetProduct(context.Background(), "3017620422003")

	require.NoError(t, err)
	assert.Equal(t, "3017620422003", record.Code)
	assert.Equal(t, "Nutella", record.ProductName)
	assert.Equal(t, "E", record.NutriScoreGrade)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("product", "ok")))
}

func TestGetProduct_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{name: "status zero", status: http.StatusOK, payload: `{"status": 0, "status_verbose": "product not found"}`},
		{name: "missing product", status: http.StatusOK, payload: `{"status": 1}`},
		{name: "null product", status: http.StatusOK, payload: `{"status": 1, "product": null}`},
		{name: "http 404", status: http.StatusNotFound, payload: `{"status": 0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.payload))
			}))
			defer server.Close()

			client := newTestClient(server.URL, nil)

			record, err := client.GetProduct(context.Background(), "000")

			assert.Nil(t, record)
			assert.ErrorIs(t, err, domain.ErrProductNotFound)
		})
	}
}

func TestGetProduct_EmptyBarcode(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"}, nil, nil)

	record, err := client.GetProduct(context.Background(), "")

	assert.Nil(t, record)
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestGetProduct_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client := newTestClient(serverURL, nil)

	record, err := client.GetProduct(context.Background(), "123")

	assert.Nil(t, record)
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
}
