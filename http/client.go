// Package http provides the host-side fetcher for the SproutVideo connector:
// a pooled net/http client that authenticates requests, enforces the network
// domain allowlist, paces requests per host and honors the advisory cache
// lifetime of GET requests.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sproutsync/sprout"
)

// DefaultAuthHeader is the header SproutVideo reads the API key from.
const DefaultAuthHeader = "SproutVideo-Api-Key"

// Client implements sprout.Fetcher on top of net/http.
type Client struct {
	base        *http.Client
	config      *Config
	cache       *responseCache
	rateLimiter *RateLimiter
}

// Config holds HTTP client configuration.
type Config struct {
	// Timeout for individual HTTP requests
	Timeout time.Duration

	// User agent for HTTP requests
	UserAgent string

	// APIKey is sent in AuthHeader on every request
	APIKey string

	// AuthHeader names the header carrying the API key
	AuthHeader string

	// AllowedDomains restricts requests to these hosts and their subdomains.
	// Empty allows any host.
	AllowedDomains []string

	// CacheEnabled turns on the in-memory cache for GET requests with a CacheTTL
	CacheEnabled bool

	// Rate limiting configuration, applied to requests that reach the network
	RateLimiter RateLimiterConfig

	// Connection pool configuration
	Transport TransportConfig
}

// TransportConfig configures the HTTP transport (connection pooling).
type TransportConfig struct {
	// MaxIdleConns is the maximum number of idle connections across all hosts.
	// Default: 20
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	// Default: 10
	MaxIdleConnsPerHost int

	// MaxConnsPerHost is the maximum concurrent connections per host.
	// Default: 20
	MaxConnsPerHost int

	// IdleConnTimeout is the maximum amount of time an idle connection can remain open.
	// Default: 90 seconds
	IdleConnTimeout time.Duration

	// ForceAttemptHTTP2 forces HTTP/2 for connections to servers that don't explicitly support it.
	// Default: true
	ForceAttemptHTTP2 bool

	// DisableKeepAlives disables HTTP keep-alives (connection reuse).
	// Default: false (keep-alives enabled)
	DisableKeepAlives bool
}

// DefaultConfig returns sensible defaults for HTTP client configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:        30 * time.Second,
		UserAgent:      "sproutsync/1.0",
		AuthHeader:     DefaultAuthHeader,
		AllowedDomains: []string{"sproutvideo.com"},
		CacheEnabled:   true,
		RateLimiter:    DefaultRateLimiterConfig(),
		Transport:      DefaultTransportConfig(),
	}
}

// DefaultTransportConfig returns sensible defaults for HTTP transport configuration.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
		DisableKeepAlives:   false,
	}
}

// New creates a new HTTP client with the given configuration.
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.Transport.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Transport.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.Transport.MaxConnsPerHost,
		IdleConnTimeout:     cfg.Transport.IdleConnTimeout,
		ForceAttemptHTTP2:   cfg.Transport.ForceAttemptHTTP2,
		DisableKeepAlives:   cfg.Transport.DisableKeepAlives,
	}

	c := &Client{
		base: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		config:      cfg,
		rateLimiter: NewRateLimiter(cfg.RateLimiter),
	}
	if cfg.CacheEnabled {
		c.cache = newResponseCache(time.Now)
	}
	return c
}

// Fetch performs req. Non-2xx answers are returned as responses, not errors;
// only transport failures and refused domains produce an error.
func (c *Client) Fetch(ctx context.Context, req *sprout.Request) (*sprout.Response, error) {
	if err := c.checkDomain(req.URL); err != nil {
		return nil, err
	}

	cacheable := c.cache != nil && req.Method == http.MethodGet && req.CacheTTL > 0
	if cacheable {
		if resp, ok := c.cache.get(req.URL); ok {
			return resp, nil
		}
	}

	if err := c.rateLimiter.Wait(ctx, req.URL); err != nil {
		return nil, &TransportError{Method: req.Method, URL: req.URL, Err: fmt.Errorf("rate limit: %w", err)}
	}

	headers := make(map[string]string, len(req.Header)+1)
	for k := range req.Header {
		headers[k] = req.Header.Get(k)
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	resp, err := c.Do(ctx, req.Method, req.URL, body, headers)
	if err != nil {
		return nil, err
	}

	out := &sprout.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}
	if cacheable && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.cache.put(req.URL, out, req.CacheTTL)
	}
	return out, nil
}

// Response represents an HTTP response with status code and body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Do performs an HTTP request with the configured authentication and user agent.
// The body of every response is read fully, whatever its status.
func (c *Client) Do(ctx context.Context, method, urlStr string, body io.Reader, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: urlStr, Err: err}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set(c.authHeader(), c.config.APIKey)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: urlStr, Err: fmt.Errorf("%w: %w", ErrRequestFailed, err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: urlStr, Err: fmt.Errorf("read response body: %w", err)}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

func (c *Client) authHeader() string {
	if c.config.AuthHeader == "" {
		return DefaultAuthHeader
	}
	return c.config.AuthHeader
}

// checkDomain refuses hosts outside the allowlist.
func (c *Client) checkDomain(rawURL string) error {
	if len(c.config.AllowedDomains) == 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return &TransportError{URL: rawURL, Err: err}
	}
	host := strings.ToLower(u.Hostname())
	for _, domain := range c.config.AllowedDomains {
		domain = strings.ToLower(domain)
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return nil
		}
	}
	return &TransportError{URL: rawURL, Err: ErrDomainNotAllowed}
}

// Close closes the HTTP client connections and releases all resources.
func (c *Client) Close() error {
	if c.base != nil && c.base.Transport != nil {
		c.base.CloseIdleConnections()
	}
	return nil
}

// GetTransportConfig returns the transport configuration being used.
func (c *Client) GetTransportConfig() TransportConfig {
	return c.config.Transport
}
