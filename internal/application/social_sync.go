package application

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"storefront-ingest/internal/domain"
	"storefront-ingest/internal/ports"

	"github.com/rs/zerolog"
)

// DefaultSocialResultsLimit is the number of recent posts requested per brand
const DefaultSocialResultsLimit = 10

var instagramProfilePattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?instagram\.com/([^/?#&]+)`)

// SocialSyncService records recent public posts of a brand's social profile
type SocialSyncService struct {
	posts     ports.SocialPostRepository
	extractor ports.PostExtractor
	metrics   ports.SyncMetrics
	limit     int
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSocialSyncService creates a new social sync service.
// A nil extractor disables social sync: every brand is reported as skipped.
func NewSocialSyncService(
	posts ports.SocialPostRepository,
	extractor ports.PostExtractor,
	metrics ports.SyncMetrics,
	limit int,
	logger zerolog.Logger,
) *SocialSyncService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if limit <= 0 {
		limit = DefaultSocialResultsLimit
	}
	return &SocialSyncService{
		posts:     posts,
		extractor: extractor,
		metrics:   metrics,
		limit:     limit,
		logger:    logger,
		now:       time.Now,
	}
}

// ProfileHandle extracts the account handle from a profile reference.
// Both full profile URLs and bare handles are accepted.
func ProfileHandle(profile string) string {
	profile = strings.TrimSpace(profile)
	if m := instagramProfilePattern.FindStringSubmatch(profile); m != nil {
		return m[1]
	}
	return strings.TrimPrefix(strings.Trim(profile, "/"), "@")
}

// SyncSocial fetches recent posts for the brand and upserts them by URL.
// Failures are logged and never returned.
func (s *SocialSyncService) SyncSocial(ctx context.Context, brand *domain.Brand) domain.SocialResult {
	logger := s.logger.With().Str("brandId", brand.ID).Str("brandName", brand.Name).Logger()

	if !brand.HasSocialProfile() {
		logger.Info().Msg("No social profile configured, skipping social sync")
		return domain.SocialResult{Skipped: true}
	}
	if s.extractor == nil {
		logger.Info().Msg("Post extractor not configured, skipping social sync")
		return domain.SocialResult{Skipped: true}
	}

	handle := ProfileHandle(brand.SocialProfile)
	if handle == "" {
		logger.Warn().Str("profile", brand.SocialProfile).Msg("Could not extract social handle")
		return domain.SocialResult{Skipped: true}
	}
	profileURL := "https://www.instagram.com/" + handle

	extracted, err := s.extractor.ExtractPosts(ctx, profileURL, s.limit)
	if err != nil {
		err = &domain.ExternalCapabilityError{Capability: "post extraction", Err: err}
		logger.Error().Err(err).Str("profile", profileURL).Msg("Social sync failed")
		return domain.SocialResult{}
	}

	result := domain.SocialResult{Fetched: len(extracted)}
	var upsertErr error
	for _, raw := range extracted {
		postURL := canonicalPostURL(raw)
		if postURL == "" {
			continue
		}
		post := &domain.SocialPost{
			BrandID:      brand.ID,
			Platform:     domain.PlatformInstagram,
			URL:          postURL,
			PostedAt:     parsePostedAt(raw.Timestamp),
			DiscoveredAt: s.now(),
		}
		upserted, err := s.posts.UpsertByURL(ctx, post)
		if err != nil {
			upsertErr = fmt.Errorf("failed to upsert post %s: %w", postURL, err)
			break
		}
		if upserted.Created {
			result.Added++
		} else {
			result.Updated++
		}
	}
	s.metrics.RecordSocialPosts(result.Added + result.Updated)

	event := logger.Info()
	if upsertErr != nil {
		event = logger.Error().Err(upsertErr)
	}
	event.
		Str("profile", profileURL).
		Int("fetched", result.Fetched).
		Int("added", result.Added).
		Int("updated", result.Updated).
		Msg("Social sync finished")

	return result
}

// canonicalPostURL picks url, then postUrl, then builds one from the short code
func canonicalPostURL(raw domain.ExtractedPost) string {
	switch {
	case raw.URL != "":
		return raw.URL
	case raw.PostURL != "":
		return raw.PostURL
	case raw.ShortCode != "":
		return "https://www.instagram.com/p/" + raw.ShortCode
	default:
		return ""
	}
}

func parsePostedAt(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil
	}
	return &t
}
