// Package fetch downloads remote documents for conversion.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ChrisW-priv/html-chunking/internal/convert"
)

// Client retrieves documents over HTTP with a size cap.
type Client struct {
	httpClient *http.Client
	maxBytes   int64
}

func NewClient(timeout time.Duration, maxBytes int64) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBytes: maxBytes,
	}
}

// Result is a fetched document plus its detected format.
type Result struct {
	Data   []byte
	Format convert.Format
}

// Get downloads rawURL and detects its format from the Content-Type header,
// falling back to the URL path extension, defaulting to HTML.
func (c *Client) Get(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("fetch %s: response exceeds %d bytes", rawURL, c.maxBytes)
	}

	format, ok := convert.ForContentType(resp.Header.Get("Content-Type"))
	if !ok {
		if u, err := url.Parse(rawURL); err == nil {
			format, ok = convert.ForFile(u.Path)
		}
	}
	if !ok {
		format = convert.FormatHTML
	}
	return &Result{Data: data, Format: format}, nil
}

// IsURL reports whether input names a remote document.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
