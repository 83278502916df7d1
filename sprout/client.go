// Package sprout implements the SproutVideo connector core: the API client,
// record enrichment, the paginated video sync and the tag action.
//
// The package performs no caching, retries or rate limiting. Those belong to
// the host, which supplies a Fetcher.
package sprout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the SproutVideo API root. Endpoints are appended to it.
const DefaultBaseURL = "https://api.sproutvideo.com/v1/"

// Request is a single call handed to the host fetcher.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
	// CacheTTL is advisory. Zero means the response must not be served from cache.
	CacheTTL time.Duration
}

// Response is the host fetcher's answer.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Fetcher performs HTTP requests on behalf of the core. The host injects
// authentication, enforces timeouts and honors CacheTTL.
type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (*Response, error)
}

// Params holds request parameters. Values must be string or []string.
type Params map[string]any

// Client talks to the SproutVideo API through a Fetcher.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	fetcher Fetcher
	baseURL string
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root. It should end in "/".
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithLogger sets the logger used for mutating calls.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client that issues requests through f.
func NewClient(f Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher: f,
		baseURL: DefaultBaseURL,
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client resolves endpoints against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call issues a request to endpoint and returns the response body.
// GET params become query parameters and the response may be cached for ttl.
// POST and PUT params are sent as a JSON body and are never cached.
func (c *Client) Call(ctx context.Context, endpoint, method string, ttl time.Duration, params Params) (json.RawMessage, error) {
	req := &Request{
		Method: method,
		URL:    c.baseURL + endpoint,
		Header: make(http.Header),
	}

	switch method {
	case http.MethodGet:
		u, err := url.Parse(req.URL)
		if err != nil {
			return nil, &RequestError{Method: method, Endpoint: endpoint, Err: err}
		}
		query, err := mergeQuery(u.Query(), params)
		if err != nil {
			return nil, &RequestError{Method: method, Endpoint: endpoint, Err: err}
		}
		u.RawQuery = query.Encode()
		req.URL = u.String()
		req.CacheTTL = ttl
	case http.MethodPost, http.MethodPut:
		body, err := encodeBody(params)
		if err != nil {
			return nil, &RequestError{Method: method, Endpoint: endpoint, Err: err}
		}
		req.Body = body
		req.Header.Set("Content-Type", "application/json")
		c.logger.Printf("sprout: %s %s", method, endpoint)
	default:
		return nil, &RequestError{Method: method, Endpoint: endpoint, Err: ErrInvalidMethod}
	}

	resp, err := c.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, &RequestError{Method: method, Endpoint: endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Err:        classifyStatus(resp.StatusCode),
		}
	}

	return json.RawMessage(resp.Body), nil
}

// get calls endpoint with GET and decodes the body into out.
func (c *Client) get(ctx context.Context, endpoint string, ttl time.Duration, params Params, out any) error {
	body, err := c.Call(ctx, endpoint, http.MethodGet, ttl, params)
	if err != nil {
		return err
	}
	return decode(endpoint, body, out)
}

// send calls endpoint with a mutating method and decodes the body into out.
func (c *Client) send(ctx context.Context, endpoint, method string, params Params, out any) error {
	body, err := c.Call(ctx, endpoint, method, 0, params)
	if err != nil {
		return err
	}
	return decode(endpoint, body, out)
}

func decode(endpoint string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func classifyStatus(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrRemote
	}
}

func mergeQuery(query url.Values, params Params) (url.Values, error) {
	for key, value := range params {
		switch v := value.(type) {
		case string:
			query.Set(key, v)
		case []string:
			query.Del(key)
			for _, item := range v {
				query.Add(key, item)
			}
		default:
			return nil, fmt.Errorf("%w: %s has type %T", ErrInvalidParams, key, value)
		}
	}
	return query, nil
}

func encodeBody(params Params) ([]byte, error) {
	for key, value := range params {
		switch value.(type) {
		case string, []string:
		default:
			return nil, fmt.Errorf("%w: %s has type %T", ErrInvalidParams, key, value)
		}
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(params); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
