package apify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestExtractPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST got %s", r.Method)
		}
		if r.URL.Path != "/v2/acts/apify~instagram-scraper/run-sync-get-dataset-items" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "secret" {
			t.Errorf("expected token in query")
		}

		var input actorInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Errorf("decode input: %v", err)
		}
		if len(input.DirectURLs) != 1 || input.DirectURLs[0] != "https://www.instagram.com/acme" || input.ResultsLimit != 10 {
			t.Errorf("unexpected input %+v", input)
		}

		fmt.Fprint(w, `[
			{"url":"https://www.instagram.com/p/one/","timestamp":"2026-01-02T03:04:05.000Z","likesCount":3},
			{"shortCode":"two"}
		]`)
	}))
	defer srv.Close()

	c, err := NewClient("secret", "", srv.URL, srv.Client(), zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	posts, err := c.ExtractPosts(context.Background(), "https://www.instagram.com/acme", 10)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts got %d", len(posts))
	}
	if posts[0].URL != "https://www.instagram.com/p/one/" || posts[0].Timestamp == "" {
		t.Fatalf("unexpected first post %+v", posts[0])
	}
	if posts[1].ShortCode != "two" || posts[1].URL != "" {
		t.Fatalf("unexpected second post %+v", posts[1])
	}
}

func TestExtractPostsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "monthly usage exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c, _ := NewClient("secret", "", srv.URL, srv.Client(), zerolog.Nop())
	if _, err := c.ExtractPosts(context.Background(), "https://www.instagram.com/acme", 10); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient("", "", "", nil, zerolog.Nop()); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token got %v", err)
	}
}
