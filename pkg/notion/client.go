package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"

	// The remote allows an average of three requests per second per integration.
	DefaultRequestsPerSecond = 3.0

	defaultPageSize   = 100
	defaultMaxRetries = 3
)

// Client is the HTTP implementation of Transport.
type Client struct {
	baseURL    string
	token      string
	version    string
	pageSize   int
	maxRetries int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithVersion sets the Notion-Version header.
func WithVersion(v string) Option {
	return func(c *Client) { c.version = v }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps the request rate. A non-positive rps disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithPageSize sets the page size requested from listing endpoints.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient creates a Client authenticated with token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		version:    DefaultVersion,
		pageSize:   defaultPageSize,
		maxRetries: defaultMaxRetries,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// listResponse is the envelope of every paginated endpoint.
type listResponse struct {
	Object     string   `json:"object"`
	Results    []Object `json:"results"`
	NextCursor *string  `json:"next_cursor"`
	HasMore    bool     `json:"has_more"`
}

func (r *listResponse) page() *ChildrenPage {
	p := &ChildrenPage{Results: r.Results, HasMore: r.HasMore}
	if r.NextCursor != nil {
		p.NextCursor = *r.NextCursor
	}
	return p
}

// RetrieveObject implements Transport.
func (c *Client) RetrieveObject(ctx context.Context, endpoint Endpoint, id string) (Object, error) {
	var obj Object
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s", endpoint, url.PathEscape(id)), nil, &obj); err != nil {
		return nil, &RetrievalError{Endpoint: endpoint, ID: id, Err: err}
	}
	if obj == nil {
		return nil, &RetrievalError{Endpoint: endpoint, ID: id, Err: ErrAbsent}
	}
	return obj, nil
}

// ListChildren implements Transport. Databases are listed through their
// query endpoint; pages and blocks through the block children endpoint.
func (c *Client) ListChildren(ctx context.Context, endpoint Endpoint, id, cursor string) (*ChildrenPage, error) {
	var resp listResponse
	var err error
	if endpoint == EndpointDatabases {
		body := map[string]any{"page_size": c.pageSize}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		err = c.do(ctx, http.MethodPost, fmt.Sprintf("/databases/%s/query", url.PathEscape(id)), body, &resp)
	} else {
		q := url.Values{}
		q.Set("page_size", strconv.Itoa(c.pageSize))
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}
		err = c.do(ctx, http.MethodGet, fmt.Sprintf("/blocks/%s/children?%s", url.PathEscape(id), q.Encode()), nil, &resp)
	}
	if err != nil {
		return nil, &ContentError{Endpoint: endpoint, ID: id, Cursor: cursor, Err: err}
	}
	return resp.page(), nil
}

// UpdateObject implements Transport.
func (c *Client) UpdateObject(ctx context.Context, endpoint Endpoint, id string, patch Object) (Object, error) {
	var obj Object
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/%s/%s", endpoint, url.PathEscape(id)), patch, &obj); err != nil {
		return nil, &UpdateError{Endpoint: endpoint, ID: id, Err: err}
	}
	if obj == nil {
		return nil, &UpdateError{Endpoint: endpoint, ID: id, Err: ErrAbsent}
	}
	return obj, nil
}

// Search implements Transport, following cursors until the listing ends.
func (c *Client) Search(ctx context.Context, query string) ([]Object, error) {
	var all []Object
	cursor := ""
	for {
		body := map[string]any{"query": query, "page_size": c.pageSize}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		var resp listResponse
		if err := c.do(ctx, http.MethodPost, "/search", body, &resp); err != nil {
			return nil, fmt.Errorf("search %q: %w", query, err)
		}
		all = append(all, resp.Results...)
		page := resp.page()
		if page.NextCursor == "" || page.NextCursor == cursor {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

// do performs one API call, retrying on 429 after the advertised delay.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Notion-Version", c.version)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxRetries {
			if err := sleepCtx(ctx, retryAfter(resp.Header.Get("Retry-After"))); err != nil {
				return err
			}
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			apiErr := &APIError{Status: resp.StatusCode}
			if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || apiErr.Message == "" {
				apiErr.Message = http.StatusText(resp.StatusCode)
			}
			apiErr.Status = resp.StatusCode
			return apiErr
		}
		if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}

func retryAfter(h string) time.Duration {
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ Transport = (*Client)(nil)
