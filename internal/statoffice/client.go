package statoffice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hradek/fiskal/internal/cache"
	"github.com/hradek/fiskal/internal/model"
	"github.com/hradek/fiskal/internal/util"
	"github.com/hradek/fiskal/internal/worker"
)

const clientMaxRetries = 3

// maxBodyBytes caps dataset responses; the metadata endpoint returns a
// few KB, anything near the cap is garbage.
const maxBodyBytes = 1 << 20

// sleepFunc is the sleep function used between retries (injectable for tests)
var sleepFunc = time.Sleep

// Client fetches dataset metadata from the ČSÚ public API. It respects
// robots.txt, rate-limits per host and caches raw responses.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	store      cache.Cache
	logger     *zap.Logger
}

// NewClient creates a client from the fallback configuration.
// store may be nil to disable response caching.
func NewClient(cfg model.FallbackConfig, store cache.Cache, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	proxyFunc := util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, "")

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: proxyFunc,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		limiter:   worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		robots:    util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout),
		store:     store,
		logger:    logger,
	}
}

// FetchDataset retrieves metadata for a dataset code and maps it to a
// catalog entry. Responses are served from cache when possible.
func (c *Client) FetchDataset(ctx context.Context, code string) (*model.CatalogEntry, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("dataset code is empty")
	}

	reqURL := fmt.Sprintf("%s/rest/dataset/%s/metadata", c.baseURL, url.PathEscape(code))
	cacheKey := cache.Key(reqURL)

	if c.store != nil {
		if data, found := c.store.Get(cacheKey); found {
			entry, err := parseDataset(code, data)
			if err == nil {
				c.logger.Debug("dataset served from cache", zap.String("code", code))
				return entry, nil
			}
			// A cached payload that no longer parses gets refetched.
			c.logger.Warn("discarding unparseable cached dataset",
				zap.String("code", code), zap.Error(err))
		}
	}

	allowed, crawlDelay, err := c.robots.CanFetch(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("robots check: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("robots.txt disallows %s", reqURL)
	}

	if err := c.limiter.WaitWithDelay(ctx, reqURL, crawlDelay); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	data, err := c.fetchWithRetry(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	entry, err := parseDataset(code, data)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		if err := c.store.Set(cacheKey, data, 0); err != nil {
			c.logger.Warn("cache dataset response",
				zap.String("code", code), zap.Error(err))
		}
	}

	return entry, nil
}

// fetchWithRetry retries transient failures with exponential backoff.
func (c *Client) fetchWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < clientMaxRetries; attempt++ {
		data, retryable, err := c.fetchOnce(ctx, reqURL)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		if attempt < clientMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			sleepFunc(backoff)
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", clientMaxRetries, lastErr)
}

// fetchOnce performs a single request. The bool reports whether the
// failure is worth retrying.
func (c *Client) fetchOnce(ctx context.Context, reqURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}

	return body, false, nil
}

// datasetPayload is the subset of the metadata response we consume.
type datasetPayload struct {
	Label   string          `json:"label"`
	Value   json.RawMessage `json:"value"`
	Unit    string          `json:"unit"`
	Updated int             `json:"updated"`
}

// parseDataset maps a raw metadata response onto a catalog entry.
func parseDataset(code string, data []byte) (*model.CatalogEntry, error) {
	var payload datasetPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", code, err)
	}
	if payload.Label == "" {
		return nil, fmt.Errorf("dataset %s: missing label", code)
	}

	value, err := scalarValue(payload.Value)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", code, err)
	}

	unit, err := mapUnit(payload.Unit)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", code, err)
	}

	return &model.CatalogEntry{
		ID:       code,
		Name:     payload.Label,
		Keywords: util.Tokens(payload.Label),
		Value:    value,
		Unit:     unit,
		Year:     payload.Updated,
		Source:   "ČSÚ API",
	}, nil
}

// scalarValue accepts both the scalar and the single-element list shape
// the API uses for time series.
func scalarValue(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("missing value")
	}

	var list []float64
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return 0, fmt.Errorf("empty value list")
		}
		return list[0], nil
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("unsupported value shape %s", string(raw))
	}
	return v, nil
}

func mapUnit(raw string) (model.Unit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "persons", "osoby", "osob":
		return model.UnitPersons, nil
	case "czk", "kč", "kc":
		return model.UnitCZK, nil
	case "percent", "%", "procenta", "procent":
		return model.UnitPercent, nil
	default:
		return "", fmt.Errorf("unsupported unit %q", raw)
	}
}
