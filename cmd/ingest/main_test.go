package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"storefront-ingest/internal/domain"
)

type fakeServices struct {
	allOpts  []domain.SyncOptions
	oneOpts  []domain.SyncOptions
	oneIDs   []string
	pruned   bool
	closed   int
	oneErr   error
	brandErr error
}

func (f *fakeServices) FindBrandByName(ctx context.Context, name string) (*domain.Brand, error) {
	if f.brandErr != nil {
		return nil, f.brandErr
	}
	return &domain.Brand{ID: "brand-" + strings.ToLower(name), Name: name}, nil
}

func (f *fakeServices) PruneOrphans(ctx context.Context) (int64, int64, error) {
	f.pruned = true
	return 2, 5, nil
}

func (f *fakeServices) SyncOneBrand(ctx context.Context, brandID string, opts domain.SyncOptions) (domain.BrandOutcome, error) {
	f.oneIDs = append(f.oneIDs, brandID)
	f.oneOpts = append(f.oneOpts, opts)
	if f.oneErr != nil {
		return domain.BrandOutcome{BrandID: brandID, Error: f.oneErr.Error(), Err: f.oneErr}, f.oneErr
	}
	return domain.BrandOutcome{BrandID: brandID, Result: &domain.SyncResult{BrandID: brandID}}, nil
}

func (f *fakeServices) SyncAllBrands(ctx context.Context, opts domain.SyncOptions) ([]domain.BrandOutcome, error) {
	f.allOpts = append(f.allOpts, opts)
	return []domain.BrandOutcome{{BrandName: "A"}, {BrandName: "B", Error: "boom"}}, nil
}

func run(t *testing.T, f *fakeServices, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	open := func(ctx context.Context) (*services, func(), error) {
		return &services{brands: f, sweep: f}, func() { f.closed++ }, nil
	}
	err := newRootCommand(open, &out).Run(context.Background(), append([]string{"ingest"}, args...))
	return out.String(), err
}

func TestSyncAllDefaultsToBoth(t *testing.T) {
	f := &fakeServices{}
	out, err := run(t, f, "sync")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(f.allOpts) != 1 || !f.allOpts[0].Products || !f.allOpts[0].Socials {
		t.Fatalf("expected products and socials got %+v", f.allOpts)
	}

	var outcomes []domain.BrandOutcome
	if err := json.Unmarshal([]byte(out), &outcomes); err != nil || len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes printed got %q %v", out, err)
	}
	if f.closed != 1 {
		t.Fatalf("expected services closed once got %d", f.closed)
	}
}

func TestSyncSingleBrandProductsOnly(t *testing.T) {
	f := &fakeServices{}
	if _, err := run(t, f, "sync", "--products", "--brand", "Acme"); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(f.allOpts) != 0 {
		t.Fatalf("expected no sweep")
	}
	if len(f.oneIDs) != 1 || f.oneIDs[0] != "brand-acme" {
		t.Fatalf("expected brand-acme synced got %v", f.oneIDs)
	}
	if opts := f.oneOpts[0]; !opts.Products || opts.Socials {
		t.Fatalf("expected products only got %+v", opts)
	}
}

func TestSyncSingleBrandFailure(t *testing.T) {
	f := &fakeServices{oneErr: &domain.FetchError{URL: "https://acme.com/collections.json", StatusCode: 500}}
	out, err := run(t, f, "sync", "--brand", "Acme")
	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected fetch error got %v", err)
	}
	if !strings.Contains(out, `"error"`) {
		t.Fatalf("expected outcome printed got %q", out)
	}

	f = &fakeServices{brandErr: domain.NotFoundError{Resource: "brand missing"}}
	if _, err := run(t, f, "sync", "--brand", "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestPruneOrphans(t *testing.T) {
	f := &fakeServices{}
	out, err := run(t, f, "prune-orphans")
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if !f.pruned || !strings.Contains(out, `"productsDeleted": 5`) {
		t.Fatalf("unexpected output %q", out)
	}
}
