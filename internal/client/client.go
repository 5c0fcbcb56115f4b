// Package client is the consuming side of the catalog HTTP API: a thin
// transport client plus Browser, which holds one listing view's state.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"product-catalog-browser/internal/domain"
	"product-catalog-browser/internal/query"
)

var (
	ErrNotFound  = errors.New("client: product not found")
	ErrTransport = errors.New("client: request failed")
)

// Client calls the catalog HTTP API. Failed requests are not retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the API rooted at baseURL. A nil httpClient gets
// a client with a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ListProducts fetches one page of products matching p.
func (c *Client) ListProducts(ctx context.Context, p domain.QueryParams) (*domain.ListResponse, error) {
	var out domain.ListResponse
	status, err := c.get(ctx, "/products?"+query.Build(p).Encode(), &out)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: GET /products returned %d", ErrTransport, status)
	}
	if out.Items == nil {
		out.Items = []domain.Product{}
	}
	return &out, nil
}

// GetProduct fetches a single product. A 404 yields ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var out domain.Product
	status, err := c.get(ctx, "/products/"+url.PathEscape(id), &out)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return &out, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("%w: GET /products/%s returned %d", ErrTransport, id, status)
	}
}

// get performs the request and decodes a 200 body into out. Other statuses
// are returned without decoding.
func (c *Client) get(ctx context.Context, path string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return res.StatusCode, nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return 0, fmt.Errorf("%w: decoding response: %v", ErrTransport, err)
	}
	return res.StatusCode, nil
}
