package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/foodtracker/backend/internal/domain"
	"github.com/foodtracker/backend/internal/infrastructure/metrics"
)

// DefaultBaseURL is the public Open Food Facts instance
const DefaultBaseURL = "https://world.openfoodfacts.org"

// SearchPageSize is the number of products requested per search page
const SearchPageSize = 20

const (
	maxAttempts      = 3
	defaultUserAgent = "FoodTracker/1.0"
	endpointSearch   = "search"
	endpointProduct  = "product"
)

// ClientConfig holds Open Food Facts client settings
type ClientConfig struct {
	BaseURL       string
	UserAgent     string
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
}

// Client handles communication with the Open Food Facts API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	logger      *zap.Logger
	metrics     *metrics.Metrics
	debug       bool
}

// NewClient creates a new Open Food Facts API client
func NewClient(cfg ClientConfig, logger *zap.Logger, m *metrics.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	// Open Food Facts asks for at most 100 product reads per minute
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 100.0 / 60.0
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		backoff:     exponentialBackoff,
		logger:      logger.Named("openfoodfacts"),
		metrics:     m,
	}
}

// SetDebug enables logging of every request and response status
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// SearchProducts runs a full-text product search
func (c *Client) SearchProducts(ctx context.Context, term string, page int) (*domain.SearchResponse, error) {
	if strings.TrimSpace(term) == "" {
		return nil, domain.ErrEmptyInput
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("search_terms", term)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(SearchPageSize))
	params.Set("page", strconv.Itoa(page))
	reqURL := fmt.Sprintf("%s/cgi/search.pl?%s", c.baseURL, params.Encode())

	start := time.Now()
	var searchResp domain.SearchResponse
	err := c.getJSON(ctx, reqURL, &searchResp)
	c.metrics.RecordUpstream(endpointSearch, outcome(err), time.Since(start))
	if err != nil {
		c.logger.Warn("search failed", zap.String("term", term), zap.Int("page", page), zap.Error(err))
		return nil, err
	}

	if c.debug {
		c.logger.Debug("search completed",
			zap.String("term", term),
			zap.Int("page", page),
			zap.Int("products", len(searchResp.Products)),
			zap.Int("count", searchResp.Count))
	}
	return &searchResp, nil
}

// GetProduct looks up a single product by barcode
func (c *Client) GetProduct(ctx context.Context, barcode string) (*domain.ProviderRecord, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, domain.ErrEmptyInput
	}

	reqURL := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(barcode))

	start := time.Now()
	var productResp domain.ProductResponse
	err := c.getJSON(ctx, reqURL, &productResp)
	if err == nil && (productResp.Status == 0 || productResp.Product == nil) {
		err = domain.ErrProductNotFound
	}
	c.metrics.RecordUpstream(endpointProduct, outcome(err), time.Since(start))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.logger.Info("product not found", zap.String("barcode", barcode))
		} else {
			c.logger.Warn("product lookup failed", zap.String("barcode", barcode), zap.Error(err))
		}
		return nil, err
	}

	return productResp.Product, nil
}

// getJSON performs a rate-limited GET with retries for transport errors and
// 5xx/429 responses, then decodes the body into dst. A 404 maps to
// ErrProductNotFound; other non-2xx statuses to ErrNetworkFailure.
func (c *Client) getJSON(ctx context.Context, reqURL string, dst any) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", domain.ErrNetworkFailure, ctx.Err())
			case <-time.After(c.backoff(attempt - 1)):
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limiter: %v", domain.ErrNetworkFailure, err)
		}

		body, status, err := c.doRequest(ctx, reqURL)
		if err != nil {
			c.logger.Debug("request error", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			if ctx.Err() != nil {
				return err
			}
			continue
		}

		if c.debug {
			c.logger.Debug("response", zap.String("url", reqURL), zap.Int("status", status), zap.Int("bytes", len(body)))
		}

		switch {
		case status >= 200 && status < 300:
			if err := json.Unmarshal(body, dst); err != nil {
				return fmt.Errorf("%w: decode response: %v", domain.ErrNetworkFailure, err)
			}
			return nil
		case status == http.StatusNotFound:
			return domain.ErrProductNotFound
		case status == http.StatusTooManyRequests || status >= 500:
			lastErr = fmt.Errorf("%w: status %d", domain.ErrNetworkFailure, status)
			continue
		default:
			return fmt.Errorf("%w: status %d", domain.ErrNetworkFailure, status)
		}
	}

	return lastErr
}

// doRequest executes an HTTP GET request with proper headers and reads the body
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: create request: %v", domain.ErrNetworkFailure, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read body: %v", domain.ErrNetworkFailure, err)
	}
	return body, resp.StatusCode, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrProductNotFound):
		return "not_found"
	default:
		return "error"
	}
}
