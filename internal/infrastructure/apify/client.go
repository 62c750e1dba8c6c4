package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"storefront-ingest/internal/domain"

	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://api.apify.com"
	DefaultActor   = "apify~instagram-scraper"
	DefaultTimeout = 5 * time.Minute
)

// ErrMissingToken is returned when the client is built without an API token
var ErrMissingToken = errors.New("apify api token is required")

// Client runs the Instagram scraper actor synchronously and reads its dataset
type Client struct {
	httpClient *http.Client
	baseURL    string
	actor      string
	token      string
	logger     zerolog.Logger
}

// NewClient creates a new Apify client. baseURL and actor fall back to the defaults when empty.
func NewClient(token, actor, baseURL string, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	if actor == "" {
		actor = DefaultActor
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		actor:      actor,
		token:      token,
		logger:     logger,
	}, nil
}

type actorInput struct {
	DirectURLs    []string `json:"directUrls"`
	ResultsType   string   `json:"resultsType"`
	ResultsLimit  int      `json:"resultsLimit"`
	SearchType    string   `json:"searchType"`
	SearchLimit   int      `json:"searchLimit"`
	AddParentData bool     `json:"addParentData"`
}

type datasetItem struct {
	URL       string `json:"url"`
	PostURL   string `json:"postUrl"`
	ShortCode string `json:"shortCode"`
	Timestamp string `json:"timestamp"`
}

// ExtractPosts returns up to limit recent posts of the profile
func (c *Client) ExtractPosts(ctx context.Context, profileURL string, limit int) ([]domain.ExtractedPost, error) {
	body, err := json.Marshal(actorInput{
		DirectURLs:    []string{profileURL},
		ResultsType:   "posts",
		ResultsLimit:  limit,
		SearchType:    "hashtag",
		SearchLimit:   1,
		AddParentData: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal actor input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		c.baseURL, url.PathEscape(c.actor), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("profile", profileURL).Int("limit", limit).Msg("Running post extraction actor")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to run actor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("actor run failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var items []datasetItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode dataset items: %w", err)
	}

	posts := make([]domain.ExtractedPost, 0, len(items))
	for _, item := range items {
		posts = append(posts, domain.ExtractedPost{
			URL:       item.URL,
			PostURL:   item.PostURL,
			ShortCode: item.ShortCode,
			Timestamp: item.Timestamp,
		})
	}
	return posts, nil
}
