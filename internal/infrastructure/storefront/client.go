package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"storefront-ingest/internal/domain"
	"storefront-ingest/internal/ports"

	"github.com/rs/zerolog"
)

const (
	DefaultPageSize        = 250
	DefaultPageDelay       = 150 * time.Millisecond
	DefaultPageTimeout     = 10 * time.Second
	DefaultValidateTimeout = 5 * time.Second

	// pages above this size are treated as malformed
	maxPageBytes = 32 << 20
)

// Options configures the storefront client
type Options struct {
	Scheme          string // "https" unless a test server is used
	UserAgent       string
	PageSize        int
	PageDelay       time.Duration
	PageTimeout     time.Duration
	ValidateTimeout time.Duration
	HTTPClient      *http.Client
	Observer        ports.PageObserver
}

// Client reads the public storefront JSON catalog of a domain
type Client struct {
	httpClient      *http.Client
	scheme          string
	userAgent       string
	pager           Pager
	validateTimeout time.Duration
	observer        ports.PageObserver
	logger          zerolog.Logger
}

// NewClient creates a storefront client, filling unset options with defaults
func NewClient(opts Options, logger zerolog.Logger) *Client {
	if opts.Scheme == "" {
		opts.Scheme = "https"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "storefront-ingest/1.0"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.PageDelay < 0 {
		opts.PageDelay = 0
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = DefaultPageTimeout
	}
	if opts.ValidateTimeout <= 0 {
		opts.ValidateTimeout = DefaultValidateTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	return &Client{
		httpClient: opts.HTTPClient,
		scheme:     opts.Scheme,
		userAgent:  opts.UserAgent,
		pager: Pager{
			PageSize:    opts.PageSize,
			Delay:       opts.PageDelay,
			PageTimeout: opts.PageTimeout,
		},
		validateTimeout: opts.ValidateTimeout,
		observer:        opts.Observer,
		logger:          logger,
	}
}

// CheckDomain issues a single bounded probe against the product listing endpoint
func (c *Client) CheckDomain(ctx context.Context, storeDomain string) error {
	ctx, cancel := context.WithTimeout(ctx, c.validateTimeout)
	defer cancel()

	probeURL := c.endpoint(storeDomain, "/products.json", url.Values{"limit": {"1"}})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return &domain.SourceUnreachableError{Domain: storeDomain, Reason: err.Error()}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("domain", storeDomain).Msg("Domain probe failed")
		return &domain.SourceUnreachableError{Domain: storeDomain, Reason: err.Error()}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("domain", storeDomain).Msg("Domain probe returned non-success status")
		return &domain.SourceUnreachableError{
			Domain: storeDomain,
			Reason: fmt.Sprintf("%s returned status %d", probeURL, resp.StatusCode),
		}
	}

	return nil
}

// WalkCollections pages through /collections.json
func (c *Client) WalkCollections(ctx context.Context, storeDomain string, visit func([]domain.CollectionFields) error) error {
	fetch := func(ctx context.Context, page, limit int) ([]*RawCollection, error) {
		var body collectionsPage
		pageURL := c.endpoint(storeDomain, "/collections.json", pageQuery(page, limit))
		if err := c.getJSON(ctx, "collections", pageURL, &body); err != nil {
			return nil, err
		}
		c.logger.Debug().Str("domain", storeDomain).Int("page", page).Int("count", len(body.Collections)).Msg("Fetched collections page")
		return body.Collections, nil
	}

	return WalkPages(ctx, c.pager, fetch, func(batch []*RawCollection) error {
		fields := make([]domain.CollectionFields, 0, len(batch))
		for _, raw := range batch {
			if raw == nil {
				c.logger.Warn().Str("domain", storeDomain).Msg("Skipping collection record that is not an object")
				continue
			}
			fields = append(fields, NormalizeCollection(*raw))
		}
		return visit(fields)
	})
}

// WalkItems pages through /products.json filtered to one collection
func (c *Client) WalkItems(ctx context.Context, storeDomain string, collectionSourceID string, visit func([]domain.ItemFields) error) error {
	fetch := func(ctx context.Context, page, limit int) ([]*RawProduct, error) {
		var body productsPage
		query := pageQuery(page, limit)
		query.Set("collection_id", collectionSourceID)
		pageURL := c.endpoint(storeDomain, "/products.json", query)
		if err := c.getJSON(ctx, "products", pageURL, &body); err != nil {
			return nil, err
		}
		c.logger.Debug().
			Str("domain", storeDomain).
			Str("collectionId", collectionSourceID).
			Int("page", page).
			Int("count", len(body.Products)).
			Msg("Fetched products page")
		return body.Products, nil
	}

	return WalkPages(ctx, c.pager, fetch, func(batch []*RawProduct) error {
		fields := make([]domain.ItemFields, 0, len(batch))
		for _, raw := range batch {
			if raw == nil {
				c.logger.Warn().
					Str("domain", storeDomain).
					Str("collectionId", collectionSourceID).
					Msg("Skipping product record that is not an object")
				continue
			}
			fields = append(fields, NormalizeItem(*raw))
		}
		return visit(fields)
	})
}

func (c *Client) getJSON(ctx context.Context, endpoint string, rawURL string, out any) (err error) {
	start := time.Now()
	if c.observer != nil {
		defer func() {
			c.observer.ObservePage(endpoint, time.Since(start), err)
		}()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &domain.FetchError{URL: rawURL, Err: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &domain.FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPageBytes)).Decode(out); err != nil {
		return &domain.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
}

func (c *Client) endpoint(storeDomain string, path string, query url.Values) string {
	u := url.URL{
		Scheme:   c.scheme,
		Host:     storeDomain,
		Path:     path,
		RawQuery: query.Encode(),
	}
	return u.String()
}

func pageQuery(page, limit int) url.Values {
	return url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
}
