package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

const maxBodyBytes = 16 << 20

// CachedResponse is a previously fetched response body.
type CachedResponse struct {
	URL       string
	Body      []byte
	FetchedAt time.Time
}

// ResponseCache persists response bodies between builds.
type ResponseCache interface {
	// Lookup returns (nil, nil) when nothing is cached for url.
	Lookup(ctx context.Context, url string) (*CachedResponse, error)
	Store(ctx context.Context, url string, body []byte) error
}

// Config holds API endpoints and credentials.
type Config struct {
	GitHubAPI   string
	GiteeAPI    string
	UserAgent   string
	Timeout     time.Duration
	CacheTTL    time.Duration
	GitHubToken string
	GiteeToken  string
	// Disabled serves cached responses only.
	Disabled bool
}

// Client performs cached JSON GET requests against the GitHub and Gitee APIs.
type Client struct {
	cfg    Config
	http   *http.Client
	github *http.Client
	cache  ResponseCache
	now    func() time.Time
	logger interfaces.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the base HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithCache enables the response cache.
func WithCache(cache ResponseCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		c.logger = logging.Fallback(logger)
	}
}

// WithClock overrides the clock used for cache freshness.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewHTTPClient builds the default transport used for API calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          50,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ResponseHeaderTimeout: timeout,
		},
	}
}

// NewClient constructs a Client. GitHub requests carry a bearer token when
// cfg.GitHubToken is set.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = NewHTTPClient(cfg.Timeout)
	}

	c.github = c.http
	if cfg.GitHubToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.http)
		c.github = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHubToken}))
		c.github.Timeout = c.http.Timeout
	}
	return c
}

// GitHub returns the GitHub API accessor.
func (c *Client) GitHub() *GitHubAPI {
	return &GitHubAPI{client: c, base: trimBase(c.cfg.GitHubAPI, "https://api.github.com")}
}

// Gitee returns the Gitee API accessor.
func (c *Client) Gitee() *GiteeAPI {
	return &GiteeAPI{client: c, base: trimBase(c.cfg.GiteeAPI, "https://gitee.com/api/v5")}
}

// GetJSON decodes the JSON body at url into out. Fresh cached bodies are
// served without a request; stale ones are used when the request fails.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	return c.getJSON(ctx, c.http, url, url, headers, out)
}

func (c *Client) getJSON(ctx context.Context, httpClient *http.Client, key, url string, headers map[string]string, out any) error {
	logger := logging.FromContext(ctx, c.logger)

	cached := c.lookup(ctx, key)
	if cached != nil && c.fresh(cached) {
		logger.Debug("remote.cache.hit", "url", key)
		return decode(cached.Body, out)
	}

	if c.cfg.Disabled {
		if cached != nil {
			return decode(cached.Body, out)
		}
		return ErrDisabled
	}

	body, err := c.fetch(ctx, httpClient, url, headers)
	if err != nil {
		if cached != nil && ctx.Err() == nil {
			logger.Warn("remote.fetch.stale", "url", key, "error", err)
			return decode(cached.Body, out)
		}
		logger.Warn("remote.fetch.failed", "url", key, "error", err)
		return err
	}

	if c.cache != nil {
		if err := c.cache.Store(ctx, key, body); err != nil {
			logger.Warn("remote.cache.store_failed", "url", key, "error", err)
		}
	}
	return decode(body, out)
}

func (c *Client) fetch(ctx context.Context, httpClient *http.Client, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	started := c.now()
	resp, err := httpClient.Do(req)
	if err != nil {
		var urlErr *neturl.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redact(urlErr.URL)
		}
		return nil, fmt.Errorf("remote: GET %s: %w", redact(url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: redact(url), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("remote: read %s: %w", redact(url), err)
	}
	c.logger.Debug("remote.fetch.success", "url", redact(url), "bytes", len(body), "duration", c.now().Sub(started))
	return body, nil
}

func (c *Client) lookup(ctx context.Context, key string) *CachedResponse {
	if c.cache == nil {
		return nil
	}
	cached, err := c.cache.Lookup(ctx, key)
	if err != nil {
		c.logger.Warn("remote.cache.lookup_failed", "url", key, "error", err)
		return nil
	}
	return cached
}

func (c *Client) fresh(cached *CachedResponse) bool {
	if c.cfg.CacheTTL <= 0 {
		return false
	}
	return c.now().Sub(cached.FetchedAt) < c.cfg.CacheTTL
}

func decode(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("remote: decode response: %w", err)
	}
	return nil
}
