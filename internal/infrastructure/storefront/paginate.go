package storefront

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Pager walks a paged listing endpoint.
//
// A page shorter than PageSize is the last one, and an empty page ends the
// walk without error. Every page gets its own PageTimeout, and each walk owns a
// limiter that lets one request through per Delay.
type Pager struct {
	PageSize    int
	Delay       time.Duration
	PageTimeout time.Duration
}

// PageFetcher fetches one page of records
type PageFetcher[T any] func(ctx context.Context, page, limit int) ([]T, error)

// WalkPages fetches pages starting at 1 and hands each non-empty batch to visit.
// Any fetch error or visit error stops the walk and is returned as is.
func WalkPages[T any](ctx context.Context, p Pager, fetch PageFetcher[T], visit func([]T) error) error {
	lim := rate.NewLimiter(rate.Every(p.Delay), 1)
	for page := 1; ; page++ {
		if err := wait(ctx, lim); err != nil {
			return err
		}
		batch, err := fetchPage(ctx, p, page, fetch)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := visit(batch); err != nil {
			return err
		}
		if len(batch) < p.PageSize {
			return nil
		}
	}
}

func fetchPage[T any](ctx context.Context, p Pager, page int, fetch PageFetcher[T]) ([]T, error) {
	if p.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.PageTimeout)
		defer cancel()
	}
	return fetch(ctx, page, p.PageSize)
}

// wait blocks until the limiter admits the next request. A limiter that
// refuses because the wait would outlast ctx reports DeadlineExceeded.
func wait(ctx context.Context, lim *rate.Limiter) error {
	if err := lim.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("page pacing: %w", context.DeadlineExceeded)
	}
	return nil
}
