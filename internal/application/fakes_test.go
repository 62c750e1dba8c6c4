package application

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"storefront-ingest/internal/domain"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

type idSource struct {
	mu   sync.Mutex
	next int
}

func (s *idSource) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%024x", s.next)
}

var ids = &idSource{}

type fakeBrandRepo struct {
	mu     sync.Mutex
	order  []string
	brands map[string]*domain.Brand
}

func newFakeBrandRepo() *fakeBrandRepo {
	return &fakeBrandRepo{brands: make(map[string]*domain.Brand)}
}

func (r *fakeBrandRepo) Create(ctx context.Context, brand *domain.Brand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.brands {
		if b.Domain == brand.Domain {
			return domain.ErrAlreadyExists
		}
	}
	brand.ID = ids.newID()
	stored := *brand
	r.brands[brand.ID] = &stored
	r.order = append(r.order, brand.ID)
	return nil
}

func (r *fakeBrandRepo) GetByID(ctx context.Context, id string) (*domain.Brand, error) {
	if !objectIDPattern.MatchString(id) {
		return nil, domain.ErrInvalidIdentifier
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.brands[id]
	if !ok {
		return nil, nil
	}
	out := *b
	return &out, nil
}

func (r *fakeBrandRepo) GetByDomain(ctx context.Context, storeDomain string) (*domain.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.brands {
		if b.Domain == storeDomain {
			out := *b
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeBrandRepo) FindByName(ctx context.Context, name string) (*domain.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if b := r.brands[id]; strings.EqualFold(b.Name, name) {
			out := *b
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeBrandRepo) List(ctx context.Context) ([]*domain.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Brand, 0, len(r.order))
	for _, id := range r.order {
		b := *r.brands[id]
		out = append(out, &b)
	}
	return out, nil
}

func (r *fakeBrandRepo) ReplaceCatalogSummary(ctx context.Context, id string, summary []domain.CollectionSummary, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.brands[id]
	if !ok {
		return domain.NotFoundError{Resource: "brand"}
	}
	b.Collections = append([]domain.CollectionSummary(nil), summary...)
	b.CollectionCount = len(summary)
	b.LastSyncedAt = &syncedAt
	return nil
}

func (r *fakeBrandRepo) UpdateStatus(ctx context.Context, id string, status domain.BrandStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.brands[id]
	if !ok {
		return domain.NotFoundError{Resource: "brand"}
	}
	b.Status = status
	return nil
}

func (r *fakeBrandRepo) get(id string) *domain.Brand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.brands[id]
}

// fakeCollectionRepo enforces (brand, source id) uniqueness like the store's index
type fakeCollectionRepo struct {
	mu    sync.Mutex
	byKey map[string]*domain.Collection
	byID  map[string]*domain.Collection
}

func newFakeCollectionRepo() *fakeCollectionRepo {
	return &fakeCollectionRepo{
		byKey: make(map[string]*domain.Collection),
		byID:  make(map[string]*domain.Collection),
	}
}

func (r *fakeCollectionRepo) Upsert(ctx context.Context, brandID string, fields domain.CollectionFields) (domain.UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := brandID + "|" + fields.SourceID
	c, ok := r.byKey[key]
	if !ok {
		c = &domain.Collection{ID: ids.newID(), BrandID: brandID, SourceID: fields.SourceID, ItemIDs: []string{}}
		r.byKey[key] = c
		r.byID[c.ID] = c
	}
	c.Title = fields.Title
	c.Handle = fields.Handle
	c.URL = fields.URL
	c.LaunchedAt = fields.LaunchedAt
	c.Description = fields.Description
	c.Images = fields.Images
	return domain.UpsertResult{ID: c.ID, Created: !ok}, nil
}

func (r *fakeCollectionRepo) GetByID(ctx context.Context, id string) (*domain.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (r *fakeCollectionRepo) SetItemIDs(ctx context.Context, collectionID string, itemIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[collectionID]
	if !ok {
		return domain.NotFoundError{Resource: "collection"}
	}
	c.ItemIDs = append([]string(nil), itemIDs...)
	return nil
}

func (r *fakeCollectionRepo) DeleteOrphaned(ctx context.Context, brandIDs []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keep := make(map[string]bool, len(brandIDs))
	for _, id := range brandIDs {
		keep[id] = true
	}
	var deleted int64
	for key, c := range r.byKey {
		if !keep[c.BrandID] {
			delete(r.byKey, key)
			delete(r.byID, c.ID)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeCollectionRepo) find(brandID, sourceID string) *domain.Collection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byKey[brandID+"|"+sourceID]
}

func (r *fakeCollectionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byKey)
}

type fakeItemRepo struct {
	mu    sync.Mutex
	byKey map[string]*domain.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{byKey: make(map[string]*domain.Item)}
}

func (r *fakeItemRepo) Upsert(ctx context.Context, brandID string, collectionID string, fields domain.ItemFields) (domain.UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := brandID + "|" + fields.SourceID
	item, ok := r.byKey[key]
	if !ok {
		item = &domain.Item{ID: ids.newID(), BrandID: brandID, SourceID: fields.SourceID}
		r.byKey[key] = item
	}
	item.CollectionID = collectionID
	item.Title = fields.Title
	item.Handle = fields.Handle
	item.Price = fields.Price
	item.Currency = fields.Currency
	item.Images = fields.Images
	item.Tags = fields.Tags
	item.ProductType = fields.ProductType
	return domain.UpsertResult{ID: item.ID, Created: !ok}, nil
}

func (r *fakeItemRepo) DeleteOrphaned(ctx context.Context, brandIDs []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keep := make(map[string]bool, len(brandIDs))
	for _, id := range brandIDs {
		keep[id] = true
	}
	var deleted int64
	for key, item := range r.byKey {
		if !keep[item.BrandID] {
			delete(r.byKey, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeItemRepo) find(brandID, sourceID string) *domain.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byKey[brandID+"|"+sourceID]
}

func (r *fakeItemRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byKey)
}

type fakePostRepo struct {
	mu    sync.Mutex
	byURL map[string]*domain.SocialPost
	err   error
	// failAfter > 0 makes every upsert fail once that many posts are stored
	failAfter int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{byURL: make(map[string]*domain.SocialPost)}
}

func (r *fakePostRepo) UpsertByURL(ctx context.Context, post *domain.SocialPost) (domain.UpsertResult, error) {
	if r.err != nil {
		return domain.UpsertResult{}, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAfter > 0 && len(r.byURL) >= r.failAfter {
		return domain.UpsertResult{}, errors.New("write conflict")
	}
	existing, ok := r.byURL[post.URL]
	if !ok {
		stored := *post
		stored.ID = ids.newID()
		r.byURL[post.URL] = &stored
		return domain.UpsertResult{ID: stored.ID, Created: true}, nil
	}
	existing.BrandID = post.BrandID
	existing.Platform = post.Platform
	existing.PostedAt = post.PostedAt
	existing.DiscoveredAt = post.DiscoveredAt
	return domain.UpsertResult{ID: existing.ID}, nil
}

func (r *fakePostRepo) ListByBrand(ctx context.Context, brandID string, limit int) ([]*domain.SocialPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.SocialPost
	for _, p := range r.byURL {
		if p.BrandID == brandID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeSource serves pages of already-normalized records per store domain
type fakeSource struct {
	mu          sync.Mutex
	collections map[string][][]domain.CollectionFields
	items       map[string][][]domain.ItemFields // keyed on domain|collection source id
	walkErr     map[string]error                 // keyed on domain or domain|collection source id
	checkErr    map[string]error
	panics      map[string]bool
	block       map[string]bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		collections: make(map[string][][]domain.CollectionFields),
		items:       make(map[string][][]domain.ItemFields),
		walkErr:     make(map[string]error),
		checkErr:    make(map[string]error),
		panics:      make(map[string]bool),
		block:       make(map[string]bool),
	}
}

func (s *fakeSource) setItems(storeDomain, collectionSourceID string, pages ...[]domain.ItemFields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[storeDomain+"|"+collectionSourceID] = pages
}

func (s *fakeSource) CheckDomain(ctx context.Context, storeDomain string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkErr[storeDomain]
}

func (s *fakeSource) WalkCollections(ctx context.Context, storeDomain string, visit func([]domain.CollectionFields) error) error {
	s.mu.Lock()
	pages := s.collections[storeDomain]
	err := s.walkErr[storeDomain]
	panics := s.panics[storeDomain]
	block := s.block[storeDomain]
	s.mu.Unlock()

	if panics {
		panic("malformed storefront")
	}
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	for _, page := range pages {
		if err := visit(page); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeSource) WalkItems(ctx context.Context, storeDomain string, collectionSourceID string, visit func([]domain.ItemFields) error) error {
	key := storeDomain + "|" + collectionSourceID
	s.mu.Lock()
	pages := s.items[key]
	err := s.walkErr[key]
	s.mu.Unlock()

	for _, page := range pages {
		if err := visit(page); err != nil {
			return err
		}
	}
	return err
}

type fakeExtractor struct {
	mu      sync.Mutex
	posts   []domain.ExtractedPost
	err     error
	calls   int
	profile string
	limit   int
}

func (e *fakeExtractor) ExtractPosts(ctx context.Context, profileURL string, limit int) ([]domain.ExtractedPost, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.profile = profileURL
	e.limit = limit
	return e.posts, e.err
}

type fakeLock struct {
	mu       sync.Mutex
	held     bool
	released int
}

func (l *fakeLock) Acquire(ctx context.Context) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil, false, nil
	}
	l.held = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.held = false
		l.released++
	}, true, nil
}

func (l *fakeLock) hold() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = true
}

func (l *fakeLock) releases() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.released
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.SyncEvent
}

func (p *recordingPublisher) Publish(event *domain.SyncEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) count(eventType domain.SyncEventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func collectionFields(sourceID string) domain.CollectionFields {
	return domain.CollectionFields{SourceID: sourceID, Title: "Collection " + sourceID, Handle: "c-" + sourceID, Images: []string{}}
}

func itemFields(sourceIDs ...string) []domain.ItemFields {
	out := make([]domain.ItemFields, 0, len(sourceIDs))
	for _, id := range sourceIDs {
		out = append(out, domain.ItemFields{SourceID: id, Title: "Item " + id, Images: []string{}, Tags: []string{}})
	}
	return out
}

type recordingMetrics struct {
	mu          sync.Mutex
	socialPosts int
}

func (m *recordingMetrics) RecordUpsert(kind string, created bool)                 {}
func (m *recordingMetrics) RecordBrandSync(outcome string, duration time.Duration) {}

func (m *recordingMetrics) RecordSocialPosts(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.socialPosts += count
}
