package pubsub

import (
	"context"
	"testing"
	"time"

	"storefront-ingest/internal/domain"

	"github.com/rs/zerolog"
)

func receive(t *testing.T, sub *Subscription) Delivery {
	t.Helper()
	select {
	case d, ok := <-sub.Events:
		if !ok {
			t.Fatalf("subscription %d closed", sub.ID)
		}
		return d
	case <-time.After(time.Second):
		t.Fatalf("expected an event on subscription %d", sub.ID)
		return Delivery{}
	}
}

func TestPublishFiltersByTypeAndBrand(t *testing.T) {
	ps := NewSyncPubSub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	all := ps.Subscribe(ctx, nil, 0)
	failures := ps.Subscribe(ctx, &SyncEventFilter{Types: []domain.SyncEventType{domain.SyncEventBrandFailed}}, 0)
	brandB := ps.Subscribe(ctx, &SyncEventFilter{BrandID: "b"}, 0)

	ps.Publish(&domain.SyncEvent{Type: domain.SyncEventBrandSucceeded, BrandID: "a"})
	ps.Publish(&domain.SyncEvent{Type: domain.SyncEventBrandFailed, BrandID: "b"})
	ps.Publish(&domain.SyncEvent{Type: domain.SyncEventSweepCompleted, Brands: 2})

	for want := uint64(1); want <= 3; want++ {
		if d := receive(t, all); d.Seq != want {
			t.Fatalf("expected seq %d got %d", want, d.Seq)
		}
	}

	if d := receive(t, failures); d.Event.Type != domain.SyncEventBrandFailed || d.Seq != 2 {
		t.Fatalf("expected failure event got %+v", d)
	}
	if len(failures.Events) != 0 {
		t.Fatalf("expected only failure events")
	}

	if d := receive(t, brandB); d.Event.BrandID != "b" {
		t.Fatalf("expected brand b got %+v", d.Event)
	}
	if d := receive(t, brandB); d.Event.Type != domain.SyncEventSweepCompleted {
		t.Fatalf("expected sweep completed to pass brand filter got %+v", d.Event)
	}
}

func TestSubscribeReplaysRetainedEvents(t *testing.T) {
	ps := NewSyncPubSub(zerolog.Nop())
	ps.Publish(&domain.SyncEvent{Type: domain.SyncEventBrandStarted, BrandID: "a"})
	ps.Publish(&domain.SyncEvent{Type: domain.SyncEventBrandFailed, BrandID: "a"})
	ps.Publish(&domain.SyncEvent{Type: domain.SyncEventBrandStarted, BrandID: "b"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resumed := ps.Subscribe(ctx, &SyncEventFilter{Types: []domain.SyncEventType{domain.SyncEventBrandStarted}}, 1)
	if d := receive(t, resumed); d.Seq != 3 || d.Event.BrandID != "b" {
		t.Fatalf("expected only event 3 replayed got %+v", d)
	}

	fresh := ps.Subscribe(ctx, nil, 0)
	if len(fresh.Events) != 0 {
		t.Fatalf("expected no replay without a resume point got %d", len(fresh.Events))
	}

	ps.Publish(&domain.SyncEvent{Type: domain.SyncEventBrandStarted, BrandID: "c"})
	if d := receive(t, resumed); d.Seq != 4 {
		t.Fatalf("expected live event after replay got %+v", d)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	ps := NewSyncPubSub(zerolog.Nop())
	ps.keep = 2
	for i := 0; i < 5; i++ {
		ps.Publish(&domain.SyncEvent{Type: domain.SyncEventBrandStarted})
	}
	if ps.Seq() != 5 {
		t.Fatalf("expected seq 5 got %d", ps.Seq())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := ps.Subscribe(ctx, nil, 1)
	if len(sub.Events) != 2 {
		t.Fatalf("expected the last 2 events retained got %d", len(sub.Events))
	}
	if d := receive(t, sub); d.Seq != 4 {
		t.Fatalf("expected oldest retained event 4 got %d", d.Seq)
	}
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	ps := NewSyncPubSub(zerolog.Nop())
	ps.buffer = 1
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := ps.Subscribe(ctx, nil, 0)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			ps.Publish(&domain.SyncEvent{Type: domain.SyncEventBrandStarted})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish blocked")
	}
	if len(sub.Events) != 1 || sub.Dropped() != 4 {
		t.Fatalf("expected 1 buffered and 4 dropped got %d and %d", len(sub.Events), sub.Dropped())
	}
}

func TestSubscriptionRemovedOnCancel(t *testing.T) {
	ps := NewSyncPubSub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	sub := ps.Subscribe(ctx, nil, 0)

	cancel()
	select {
	case _, ok := <-sub.Events:
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("expected subscription closed")
	}
	if ps.Subscribers() != 0 {
		t.Fatalf("expected no subscribers got %d", ps.Subscribers())
	}
}
