// Package backend is the HTTP client for the remote catalog and auth service.
// The service is consumed, not owned: this package knows its envelope format,
// its Spanish field names and its bearer-token scheme, and exposes typed
// calls that the rest of the storefront builds on.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when the backend reports 404 for a lookup.
	ErrNotFound = errors.New("backend: not found")
	// ErrUnauthorized is returned when a request fails with 401 and the
	// single refresh attempt did not recover it.
	ErrUnauthorized = errors.New("backend: unauthorized")
)

// TokenSource supplies and receives auth tokens for the client. The session
// manager implements it on top of the persisted store.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	// StoreAccessToken is called after a successful silent refresh.
	StoreAccessToken(token string) error
	// ClearSession is called when a refresh fails; the caller is logged out.
	ClearSession()
}

// Client talks to the remote catalog/auth service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
}

// New creates a client for the service rooted at baseURL (including the /api
// prefix). tokens may be nil for anonymous, catalog-only use.
func New(baseURL string, timeout time.Duration, tokens TokenSource, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     logger,
	}
}

// Product fetches a single product by id. Returns ErrNotFound for unknown ids.
func (c *Client) Product(ctx context.Context, id string) (ProductDTO, error) {
	var payload struct {
		Product ProductDTO `json:"product"`
	}
	err := c.get(ctx, "/products/"+url.PathEscape(id), nil, &payload)
	if err != nil {
		return ProductDTO{}, err
	}
	return payload.Product, nil
}

// Products fetches the product listing matching the filter.
func (c *Client) Products(ctx context.Context, filter ProductFilter) ([]ProductDTO, error) {
	q := url.Values{}
	if filter.Active != nil {
		q.Set("activo", boolParam(*filter.Active))
	}
	if filter.Category != "" {
		q.Set("categoria", filter.Category)
	}
	if filter.Featured != nil {
		q.Set("destacado", boolParam(*filter.Featured))
	}

	var payload struct {
		Products []ProductDTO `json:"products"`
		Count    int          `json:"count"`
	}
	if err := c.get(ctx, "/products", q, &payload); err != nil {
		return nil, err
	}
	return payload.Products, nil
}

// ProductsByCategory fetches the products of one category.
func (c *Client) ProductsByCategory(ctx context.Context, slug string) ([]ProductDTO, error) {
	var payload struct {
		Products []ProductDTO `json:"products"`
		Count    int          `json:"count"`
	}
	if err := c.get(ctx, "/products/category/"+url.PathEscape(slug), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Products, nil
}

// Categories fetches all categories.
func (c *Client) Categories(ctx context.Context) ([]CategoryDTO, error) {
	var payload struct {
		Categories []CategoryDTO `json:"categories"`
		Count      int           `json:"count"`
	}
	if err := c.get(ctx, "/categories", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Categories, nil
}

// Category fetches a single category by slug.
func (c *Client) Category(ctx context.Context, slug string) (CategoryDTO, error) {
	var payload struct {
		Category CategoryDTO `json:"category"`
	}
	if err := c.get(ctx, "/categories/"+url.PathEscape(slug), nil, &payload); err != nil {
		return CategoryDTO{}, err
	}
	return payload.Category, nil
}

// get issues an unauthenticated GET and decodes the envelope payload into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// newRequest builds a request against the base URL.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes the request and decodes the envelope's data field into out.
// 404 maps to ErrNotFound; an envelope with success=false is an error even
// under a 200 status.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 400:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("backend rejected request: %s", env.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
