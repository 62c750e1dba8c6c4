package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storefront-ingest/internal/application"
	"storefront-ingest/internal/domain"
	"storefront-ingest/internal/infrastructure/pubsub"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// BrandService is the brand registry used by the API
type BrandService interface {
	RegisterBrand(ctx context.Context, input application.RegisterBrandInput) (*domain.Brand, bool, error)
	GetBrand(ctx context.Context, brandID string) (*domain.Brand, error)
	ListBrands(ctx context.Context) ([]*domain.Brand, error)
	ListPosts(ctx context.Context, brandID string, limit int) ([]*domain.SocialPost, error)
	GetCollection(ctx context.Context, collectionID string) (*domain.Collection, error)
}

// SyncRunner triggers brand syncs
type SyncRunner interface {
	SyncOneBrand(ctx context.Context, brandID string, opts domain.SyncOptions) (domain.BrandOutcome, error)
	StartAllBrands(ctx context.Context, opts domain.SyncOptions) error
}

// EventSource streams sync events to subscribers
type EventSource interface {
	Subscribe(ctx context.Context, filter *pubsub.SyncEventFilter, after uint64) *pubsub.Subscription
}

// Handler serves the on-demand trigger API
type Handler struct {
	brands  BrandService
	syncs   SyncRunner
	events  EventSource
	metrics http.Handler
	docs    string
	// background outlives requests; syncs started by a request run under it
	background context.Context
	logger     zerolog.Logger
}

// NewHandler creates a new API handler. metrics may be nil.
func NewHandler(
	background context.Context,
	brands BrandService,
	syncs SyncRunner,
	events EventSource,
	metrics http.Handler,
	docsPath string,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		brands:     brands,
		syncs:      syncs,
		events:     events,
		metrics:    metrics,
		docs:       docsPath,
		background: background,
		logger:     logger,
	}
}

// Routes builds the chi router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics)
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, h.docs)
	})

	r.Route("/brands", func(r chi.Router) {
		r.Get("/", h.listBrands)
		r.Post("/", h.registerBrand)
		r.Get("/{brandId}", h.getBrand)
		r.Get("/{brandId}/posts", h.listPosts)
		r.Post("/{brandId}/sync", h.syncBrand)
	})
	r.Get("/collections/{collectionId}", h.getCollection)

	r.Post("/sync", h.syncAll)
	r.Get("/sync/events", h.streamEvents)

	return r
}

func (h *Handler) listBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.brands.ListBrands(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

func (h *Handler) getBrand(w http.ResponseWriter, r *http.Request) {
	brand, err := h.brands.GetBrand(r.Context(), chi.URLParam(r, "brandId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, brand)
}

// registerBrand answers 201 for a new brand and 200 when the domain is already
// tracked. A new brand gets a full sync in the background.
func (h *Handler) registerBrand(w http.ResponseWriter, r *http.Request) {
	var input application.RegisterBrandInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, fmt.Errorf("malformed body: %w", domain.ErrInvalidInput))
		return
	}

	brand, existed, err := h.brands.RegisterBrand(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if existed {
		writeJSON(w, http.StatusOK, brand)
		return
	}

	go func(brandID string) {
		if _, err := h.syncs.SyncOneBrand(h.background, brandID, domain.SyncOptions{Products: true, Socials: true}); err != nil {
			h.logger.Error().Err(err).Str("brandId", brandID).Msg("Initial brand sync failed")
		}
	}(brand.ID)

	writeJSON(w, http.StatusCreated, brand)
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			h.writeError(w, fmt.Errorf("limit must be a positive integer: %w", domain.ErrInvalidInput))
			return
		}
		limit = v
	}

	posts, err := h.brands.ListPosts(r.Context(), chi.URLParam(r, "brandId"), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) getCollection(w http.ResponseWriter, r *http.Request) {
	collection, err := h.brands.GetCollection(r.Context(), chi.URLParam(r, "collectionId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collection)
}

// syncBrand runs a single-brand sync and waits for it
func (h *Handler) syncBrand(w http.ResponseWriter, r *http.Request) {
	opts, err := parseSyncOptions(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	outcome, err := h.syncs.SyncOneBrand(r.Context(), chi.URLParam(r, "brandId"), opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) syncAll(w http.ResponseWriter, r *http.Request) {
	opts, err := parseSyncOptions(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.syncs.StartAllBrands(h.background, opts); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "started", "options": opts})
}

// streamEvents relays sync events as Server-Sent Events until the client leaves.
// Each event carries its sequence number as the SSE id, so a client that
// reconnects with Last-Event-ID resumes from the retained history.
func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var after uint64
	if raw := firstNonEmpty(r.Header.Get("Last-Event-ID"), r.URL.Query().Get("after")); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			h.writeError(w, fmt.Errorf("last event id must be a sequence number: %w", domain.ErrInvalidInput))
			return
		}
		after = v
	}

	filter := &pubsub.SyncEventFilter{BrandID: r.URL.Query().Get("brandId")}
	if raw := r.URL.Query().Get("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.Types = append(filter.Types, domain.SyncEventType(t))
			}
		}
	}

	sub := h.events.Subscribe(r.Context(), filter, after)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": subscribed\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case d, open := <-sub.Events:
			if !open {
				return
			}
			data, err := json.Marshal(d.Event)
			if err != nil {
				h.logger.Error().Err(err).Msg("Failed to encode sync event")
				continue
			}
			fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", d.Seq, d.Event.Type, data)
			flusher.Flush()
		}
	}
}

// parseSyncOptions reads ?products= and ?socials=; neither set means both
func parseSyncOptions(r *http.Request) (domain.SyncOptions, error) {
	products, err := queryBool(r, "products")
	if err != nil {
		return domain.SyncOptions{}, err
	}
	socials, err := queryBool(r, "socials")
	if err != nil {
		return domain.SyncOptions{}, err
	}
	return domain.SyncOptionsFromFlags(products, socials), nil
}

func queryBool(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, domain.ErrInvalidInput)
	}
	return v, nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var unreachable *domain.SourceUnreachableError
	var fetchErr *domain.FetchError
	switch {
	case errors.Is(err, domain.ErrBrandDeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrInvalidIdentifier), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.As(err, &unreachable):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSweepInProgress):
		return http.StatusConflict
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
