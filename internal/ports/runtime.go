package ports

import (
	"context"
	"time"

	"storefront-ingest/internal/domain"
)

// RunLock guards a sweep against overlapping runs.
// Acquire returns ok=false when another holder owns the lock.
type RunLock interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
}

// EventPublisher receives sync progress events
type EventPublisher interface {
	Publish(event *domain.SyncEvent)
}

// SyncMetrics records engine counters
type SyncMetrics interface {
	RecordUpsert(kind string, created bool)
	RecordBrandSync(outcome string, duration time.Duration)
	RecordSocialPosts(count int)
}

// PageObserver records per-page fetch telemetry
type PageObserver interface {
	ObservePage(endpoint string, duration time.Duration, err error)
}
