package pubsub

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"storefront-ingest/internal/domain"

	"github.com/rs/zerolog"
)

const (
	defaultBuffer  = 32
	defaultHistory = 256
)

// Delivery is a published event together with its position in the stream.
// Sequence numbers start at 1 and grow by one per published event.
type Delivery struct {
	Seq   uint64
	Event *domain.SyncEvent
}

// SyncEventFilter filters sync events
type SyncEventFilter struct {
	Types   []domain.SyncEventType // Filter by event type
	BrandID string                 // Filter by brand, sweep events always pass
}

func (f *SyncEventFilter) match(event *domain.SyncEvent) bool {
	if f == nil {
		return true
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, event.Type) {
		return false
	}
	if f.BrandID != "" && event.Type != domain.SyncEventSweepCompleted && event.BrandID != f.BrandID {
		return false
	}
	return true
}

// Subscription receives matching sync events until its context ends.
// Events is closed once the subscription is removed.
type Subscription struct {
	ID     uint64
	Events <-chan Delivery

	events  chan Delivery
	filter  *SyncEventFilter
	dropped atomic.Int64
	cancel  context.CancelFunc
}

// Dropped reports how many events were discarded because the subscriber fell behind
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

func (s *Subscription) offer(d Delivery) bool {
	select {
	case s.events <- d:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// SyncPubSub fans sweep progress out to subscribers and keeps a bounded
// history so a reconnecting subscriber can resume after the last event it saw.
type SyncPubSub struct {
	mu      sync.Mutex
	subs    map[uint64]*Subscription
	history []Delivery
	seq     uint64
	nextID  uint64
	buffer  int
	keep    int
	logger  zerolog.Logger
}

// NewSyncPubSub creates a new sync event pub/sub
func NewSyncPubSub(logger zerolog.Logger) *SyncPubSub {
	return &SyncPubSub{
		subs:   make(map[uint64]*Subscription),
		buffer: defaultBuffer,
		keep:   defaultHistory,
		logger: logger,
	}
}

// Subscribe registers a subscriber, removed when ctx is cancelled. Retained
// events with a sequence number above after are queued first; pass 0 to
// receive only new events.
func (ps *SyncPubSub) Subscribe(ctx context.Context, filter *SyncEventFilter, after uint64) *Subscription {
	subCtx, cancel := context.WithCancel(ctx)

	ps.mu.Lock()
	var backlog []Delivery
	if after > 0 {
		for _, d := range ps.history {
			if d.Seq > after && filter.match(d.Event) {
				backlog = append(backlog, d)
			}
		}
	}

	ps.nextID++
	events := make(chan Delivery, ps.buffer+len(backlog))
	sub := &Subscription{
		ID:     ps.nextID,
		Events: events,
		events: events,
		filter: filter,
		cancel: cancel,
	}
	for _, d := range backlog {
		sub.offer(d)
	}
	ps.subs[sub.ID] = sub
	ps.mu.Unlock()

	ps.logger.Debug().
		Uint64("subscriptionId", sub.ID).
		Uint64("after", after).
		Int("replayed", len(backlog)).
		Msg("Sync event subscription created")

	go func() {
		<-subCtx.Done()
		ps.remove(sub.ID)
	}()

	return sub
}

func (ps *SyncPubSub) remove(id uint64) {
	ps.mu.Lock()
	sub, ok := ps.subs[id]
	if ok {
		delete(ps.subs, id)
		close(sub.events)
	}
	ps.mu.Unlock()

	if !ok {
		return
	}
	sub.cancel()
	ps.logger.Debug().
		Uint64("subscriptionId", id).
		Int64("dropped", sub.Dropped()).
		Msg("Sync event subscription removed")
}

// Publish stamps the event with the next sequence number, retains it and
// offers it to every matching subscriber without blocking.
func (ps *SyncPubSub) Publish(event *domain.SyncEvent) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.seq++
	d := Delivery{Seq: ps.seq, Event: event}
	ps.history = append(ps.history, d)
	if over := len(ps.history) - ps.keep; over > 0 {
		ps.history = slices.Delete(ps.history, 0, over)
	}

	for _, sub := range ps.subs {
		if !sub.filter.match(event) {
			continue
		}
		if !sub.offer(d) {
			ps.logger.Warn().
				Uint64("subscriptionId", sub.ID).
				Str("type", string(event.Type)).
				Msg("Subscriber fell behind, dropping sync event")
		}
	}
}

// Seq returns the sequence number of the last published event
func (ps *SyncPubSub) Seq() uint64 {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.seq
}

// Subscribers returns the number of active subscriptions
func (ps *SyncPubSub) Subscribers() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.subs)
}
