// =============================================================================
// Sales Analytics - Product Catalog Client
// =============================================================================
//
// This module fetches product metadata from the public product catalog
// (https://dummyjson.com/products by default).
//
// REQUEST:
//   GET {base_url}?limit={limit}
//
// RESPONSE:
//   {"products": [{"id": 1, "title": "...", "category": "...",
//                  "brand": "...", "rating": 4.5}, ...]}
//
// BEHAVIOUR:
//   - One request per run, fixed timeout (10 seconds by default)
//   - No retry, no backoff, no pagination
//   - FetchProducts returns errors; FetchCatalog is the best-effort wrapper
//     that logs them and returns an empty catalog instead
//   - Entries are decoded one by one: a field of the wrong type is treated
//     as missing, and an entry that is not an object is skipped
//
// =============================================================================

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/logger"
)

const (
	// DefaultBaseURL is the catalog endpoint used when none is configured.
	DefaultBaseURL = "https://dummyjson.com/products"

	// DefaultLimit is the number of products requested.
	DefaultLimit = 100

	// DefaultTimeout bounds the whole request.
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize caps the response body read (10MB).
	MaxResponseSize = 10 * 1024 * 1024
)

var (
	// ErrUnexpectedStatus is returned for any non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected http status code")

	// ErrDecodeBody is returned when the response body is not valid JSON.
	ErrDecodeBody = errors.New("error decoding catalog response body")

	// ErrBaseURL is returned when the configured base URL cannot be parsed.
	ErrBaseURL = errors.New("invalid catalog base url")
)

// UnexpectedStatusError wraps ErrUnexpectedStatus with the received code.
func UnexpectedStatusError(statusCode int) error {
	return fmt.Errorf("%w: %d", ErrUnexpectedStatus, statusCode)
}

// DecodeBodyError wraps ErrDecodeBody with the underlying decode error.
func DecodeBodyError(baseErr error) error {
	return fmt.Errorf("%w: %w", ErrDecodeBody, baseErr)
}

// Product is one catalog entry as returned by the API. Every field is
// optional in the payload; missing fields stay nil.
type Product struct {
	ID       *int     `json:"id"`
	Title    *string  `json:"title"`
	Category *string  `json:"category"`
	Brand    *string  `json:"brand"`
	Rating   *float64 `json:"rating"`
}

type productsResponse struct {
	Products []json.RawMessage `json:"products"`
}

// rawProduct keeps every field undecoded so each one can be checked alone.
type rawProduct struct {
	ID       json.RawMessage `json:"id"`
	Title    json.RawMessage `json:"title"`
	Category json.RawMessage `json:"category"`
	Brand    json.RawMessage `json:"brand"`
	Rating   json.RawMessage `json:"rating"`
}

// Config holds the catalog client settings.
type Config struct {
	BaseURL string
	Limit   int
	Timeout time.Duration
}

// DefaultConfig returns the settings used by the sales pipeline.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Limit:   DefaultLimit,
		Timeout: DefaultTimeout,
	}
}

// Client calls the product catalog API.
type Client struct {
	// HTTPClient performs the request.
	HTTPClient *http.Client
	// BaseURL is the products endpoint.
	BaseURL *url.URL
	// Limit is sent as the "limit" query parameter.
	Limit int
}

// NewClient creates a catalog Client. If httpClient is nil, a client with
// cfg.Timeout is created.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaults.Limit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrBaseURL, cfg.BaseURL)
	}

	return &Client{
		HTTPClient: httpClient,
		BaseURL:    baseURL,
		Limit:      cfg.Limit,
	}, nil
}

// FetchProducts performs the catalog request and decodes the product list.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	endpoint := *c.BaseURL
	query := endpoint.Query()
	query.Set("limit", strconv.Itoa(c.Limit))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, UnexpectedStatusError(resp.StatusCode)
	}

	var payload productsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxResponseSize)).Decode(&payload); err != nil {
		return nil, DecodeBodyError(err)
	}

	log := logger.FromContext(ctx)
	products := make([]Product, 0, len(payload.Products))
	for i, raw := range payload.Products {
		product, err := DecodeProduct(raw)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping malformed catalog entry")
			continue
		}
		products = append(products, product)
	}

	return products, nil
}

// DecodeProduct decodes one catalog entry. Fields that are missing, null or
// of an unexpected JSON type are left nil. An error is returned only when
// the entry is not a JSON object.
func DecodeProduct(raw json.RawMessage) (Product, error) {
	var fields rawProduct
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Product{}, DecodeBodyError(err)
	}
	if isNull(raw) {
		return Product{}, DecodeBodyError(errors.New("catalog entry is null"))
	}

	return Product{
		ID:       decodeID(fields.ID),
		Title:    decodeString(fields.Title),
		Category: decodeString(fields.Category),
		Brand:    decodeString(fields.Brand),
		Rating:   decodeFloat(fields.Rating),
	}, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func decodeString(raw json.RawMessage) *string {
	var v string
	if isNull(raw) || json.Unmarshal(raw, &v) != nil {
		return nil
	}
	return &v
}

func decodeFloat(raw json.RawMessage) *float64 {
	var v float64
	if isNull(raw) || json.Unmarshal(raw, &v) != nil {
		return nil
	}
	return &v
}

// decodeID accepts integral JSON numbers only (101 and 101.0).
func decodeID(raw json.RawMessage) *int {
	f := decodeFloat(raw)
	if f == nil || *f != math.Trunc(*f) || math.Abs(*f) > math.MaxInt32 {
		return nil
	}
	id := int(*f)
	return &id
}

// FetchCatalog fetches products and never fails: any error is logged and an
// empty catalog is returned so the run can continue without enrichment.
// The logger is taken from ctx.
func FetchCatalog(ctx context.Context, client *Client) []Product {
	log := logger.FromContext(ctx)

	products, err := client.FetchProducts(ctx)
	if err != nil {
		log.Warn().Err(err).Str("url", client.BaseURL.String()).Msg("Failed to fetch products from catalog, continuing without enrichment")
		return []Product{}
	}

	log.Info().Int("products", len(products)).Msg("Fetched products from catalog")
	return products
}
