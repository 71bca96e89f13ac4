package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MaxBodyBytes caps how much of a single resource is read.
const MaxBodyBytes = 16 << 20

// Client fetches resources relative to an http(s) base URL.
type Client struct {
	base       *url.URL
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base url scheme %q", u.Scheme)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base: u,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Resolve returns the absolute URL of ref against the base.
func (c *Client) Resolve(ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse ref %q: %w", ref, err)
	}
	u := c.base.ResolveReference(r)
	u.Fragment = ""
	return u.String(), nil
}

// Fetch issues a cache-bypassing GET for ref. Non-success statuses are
// returned as a Response, not an error; errors mean the request never
// completed.
func (c *Client) Fetch(ctx context.Context, ref string) (*Response, error) {
	target, err := c.Resolve(ref)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Cache-Control", "no-cache, no-store")
	httpReq.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return &Response{
		Ref:         ref,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
