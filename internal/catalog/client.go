package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"marquee/internal/media"
	"marquee/internal/services"
)

const defaultHTTPTimeout = 10 * time.Second

// Candidate is the best search match for a title, carrying just enough to
// decide whether to fetch full details.
type Candidate struct {
	ID          int64
	Title       string
	Kind        media.Kind
	Year        int
	Popularity  float64
	VoteAverage float64
	VoteCount   int64
}

// SearchOptions contains optional parameters for a catalog search.
type SearchOptions struct {
	Year int
	Kind media.Kind
}

// CacheKey returns a stable string representation for caching.
func (o SearchOptions) CacheKey() string {
	var builder strings.Builder
	builder.WriteString("y=")
	builder.WriteString(strconv.Itoa(o.Year))
	builder.WriteString("|k=")
	builder.WriteString(o.Kind.String())
	return builder.String()
}

// Client provides access to the external catalog API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client

	cacheTTL  time.Duration
	rateLimit time.Duration

	mu         sync.Mutex
	cache      map[string]cacheEntry
	lastLookup time.Time
}

type cacheEntry struct {
	results []searchResult
	expires time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit overrides the minimum spacing between catalog requests.
func WithRateLimit(limit time.Duration) Option {
	return func(c *Client) {
		c.rateLimit = limit
	}
}

// WithCacheTTL overrides how long search responses are reused.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// New creates a catalog client. A missing API key is a configuration error:
// the pipeline cannot run without the catalog.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "new", "api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "new", "base url required", nil)
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		cacheTTL:   10 * time.Minute,
		rateLimit:  250 * time.Millisecond,
		cache:      make(map[string]cacheEntry),
		lastLookup: time.Unix(0, 0),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchByTitle searches the catalog and returns the best match, or nil when
// nothing credible matched.
func (c *Client) SearchByTitle(ctx context.Context, title string, opts SearchOptions) (*Candidate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrValidation, "catalog", "search", "title must not be empty", nil)
	}

	results, err := c.searchCached(ctx, title, opts)
	if err != nil {
		return nil, err
	}

	best := selectBest(title, results)
	if best == nil {
		return nil, nil
	}
	return best, nil
}

// FetchDetailsByID fetches the full record for a catalog id.
func (c *Client) FetchDetailsByID(ctx context.Context, id int64, kind media.Kind) (media.Record, error) {
	if id <= 0 {
		return media.Record{}, services.Wrap(services.ErrValidation, "catalog", "details", "id must be positive", nil)
	}

	var path string
	switch kind {
	case media.KindSeries:
		path = fmt.Sprintf("/tv/%d", id)
	default:
		path = fmt.Sprintf("/movie/%d", id)
	}

	var payload detailsPayload
	if err := c.get(ctx, path, url.Values{}, &payload); err != nil {
		return media.Record{}, err
	}
	return payload.record(id, kind), nil
}

func (c *Client) searchCached(ctx context.Context, title string, opts SearchOptions) ([]searchResult, error) {
	key := fmt.Sprintf("%s|%s", strings.ToLower(title), opts.CacheKey())
	now := time.Now()

	c.mu.Lock()
	if entry, ok := c.cache[key]; ok && now.Before(entry.expires) {
		results := entry.results
		c.mu.Unlock()
		return results, nil
	}

	c.mu.Unlock()

	params := url.Values{}
	params.Set("query", title)

	var path string
	switch opts.Kind {
	case media.KindMovie:
		path = "/search/movie"
		if opts.Year > 0 {
			params.Set("primary_release_year", strconv.Itoa(opts.Year))
		}
	case media.KindSeries:
		path = "/search/tv"
		if opts.Year > 0 {
			params.Set("first_air_date_year", strconv.Itoa(opts.Year))
		}
	default:
		path = "/search/multi"
		if opts.Year > 0 {
			params.Set("year", strconv.Itoa(opts.Year))
		}
	}

	var payload searchPayload
	if err := c.get(ctx, path, params, &payload); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = cacheEntry{results: payload.Results, expires: time.Now().Add(c.cacheTTL)}
	c.mu.Unlock()
	return payload.Results, nil
}

// waitCourtesy spaces consecutive live catalog requests by the configured
// rate limit. It covers dependent calls too: a search followed by a details
// fetch for the same item waits the same interval.
func (c *Client) waitCourtesy(ctx context.Context) error {
	c.mu.Lock()
	wait := c.rateLimit - time.Since(c.lastLookup)
	if wait > 0 {
		c.mu.Unlock()
		select {
		case <-ctx.Done():
			return services.Wrap(services.ErrTimeout, "catalog", "request", "canceled while rate limited", ctx.Err())
		case <-time.After(wait):
		}
		c.mu.Lock()
	}
	c.lastLookup = time.Now()
	c.mu.Unlock()
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	if err := c.waitCourtesy(ctx); err != nil {
		return err
	}
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "catalog", "request", "parse base url", err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return services.Wrap(services.ErrTransient, "catalog", "request", "build request", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return services.Wrap(services.ErrTimeout, "catalog", "request", fmt.Sprintf("latency=%v", latency), err)
		}
		return services.Wrap(services.ErrTransient, "catalog", "request", fmt.Sprintf("latency=%v", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return services.Wrap(services.ErrConfiguration, "catalog", "request",
			fmt.Sprintf("credentials rejected with status %d", resp.StatusCode), nil)
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "catalog", "request", "no such resource", nil)
	default:
		return services.Wrap(services.ErrTransient, "catalog", "request",
			fmt.Sprintf("status %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return services.Wrap(services.ErrTransient, "catalog", "request", "decode response", err)
	}
	return nil
}
