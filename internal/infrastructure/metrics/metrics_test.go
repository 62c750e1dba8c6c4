package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordUpsert(t *testing.T) {
	m := New()
	m.RecordUpsert("item", true)
	m.RecordUpsert("item", false)
	m.RecordUpsert("item", false)

	if got := testutil.ToFloat64(m.upserts.WithLabelValues("item", "added")); got != 1 {
		t.Fatalf("expected 1 added got %v", got)
	}
	if got := testutil.ToFloat64(m.upserts.WithLabelValues("item", "updated")); got != 2 {
		t.Fatalf("expected 2 updated got %v", got)
	}
}

func TestObservePageCountsErrors(t *testing.T) {
	m := New()
	m.ObservePage("products", 10*time.Millisecond, nil)
	m.ObservePage("products", 10*time.Millisecond, errors.New("timeout"))

	if got := testutil.ToFloat64(m.pageErrors.WithLabelValues("products")); got != 1 {
		t.Fatalf("expected 1 error got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordBrandSync("succeeded", time.Second)
	m.RecordSocialPosts(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{"storefront_ingest_brand_syncs_total", "storefront_ingest_social_posts_total 3"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}
