package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"storefront-ingest/internal/bootstrap"
	"storefront-ingest/internal/config"
	"storefront-ingest/internal/domain"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

type brandFinder interface {
	FindBrandByName(ctx context.Context, name string) (*domain.Brand, error)
	PruneOrphans(ctx context.Context) (int64, int64, error)
}

type sweeper interface {
	SyncOneBrand(ctx context.Context, brandID string, opts domain.SyncOptions) (domain.BrandOutcome, error)
	SyncAllBrands(ctx context.Context, opts domain.SyncOptions) ([]domain.BrandOutcome, error)
}

type services struct {
	brands brandFinder
	sweep  sweeper
}

// opener connects the services for one command run
type opener func(ctx context.Context) (svc *services, release func(), err error)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	open := func(ctx context.Context) (*services, func(), error) {
		app, err := bootstrap.New(ctx, config.Load(logger), logger)
		if err != nil {
			return nil, nil, err
		}
		return &services{brands: app.Brands, sweep: app.Sweep}, app.Close, nil
	}

	if err := newRootCommand(open, os.Stdout).Run(ctx, os.Args); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newRootCommand(open opener, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "run storefront catalog and social ingestion by hand",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "sync every brand, or one brand with --brand; without --products or --socials both run",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "products", Usage: "sync collections and products"},
					&cli.BoolFlag{Name: "socials", Usage: "sync social posts"},
					&cli.StringFlag{Name: "brand", Usage: "brand name, matched case-insensitively"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					svc, closeFn, err := open(ctx)
					if err != nil {
						return err
					}
					defer closeFn()

					opts := domain.SyncOptionsFromFlags(cmd.Bool("products"), cmd.Bool("socials"))
					if name := cmd.String("brand"); name != "" {
						return syncBrand(ctx, svc, name, opts, out)
					}

					outcomes, err := svc.sweep.SyncAllBrands(ctx, opts)
					if err != nil {
						return err
					}
					return printJSON(out, outcomes)
				},
			},
			{
				Name:  "prune-orphans",
				Usage: "delete collections and products whose brand no longer exists",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					svc, closeFn, err := open(ctx)
					if err != nil {
						return err
					}
					defer closeFn()

					collections, items, err := svc.brands.PruneOrphans(ctx)
					if err != nil {
						return err
					}
					return printJSON(out, map[string]int64{
						"collectionsDeleted": collections,
						"productsDeleted":    items,
					})
				},
			},
		},
	}
}

func syncBrand(ctx context.Context, svc *services, name string, opts domain.SyncOptions, out io.Writer) error {
	brand, err := svc.brands.FindBrandByName(ctx, name)
	if err != nil {
		return err
	}

	outcome, err := svc.sweep.SyncOneBrand(ctx, brand.ID, opts)
	if printErr := printJSON(out, []domain.BrandOutcome{outcome}); printErr != nil {
		return printErr
	}
	if err != nil {
		return fmt.Errorf("sync of %s failed: %w", brand.Name, err)
	}
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
