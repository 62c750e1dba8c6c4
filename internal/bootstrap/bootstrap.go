package bootstrap

import (
	"context"
	"fmt"
	"time"

	"storefront-ingest/internal/application"
	"storefront-ingest/internal/config"
	"storefront-ingest/internal/infrastructure/apify"
	"storefront-ingest/internal/infrastructure/lock"
	"storefront-ingest/internal/infrastructure/metrics"
	"storefront-ingest/internal/infrastructure/pubsub"
	"storefront-ingest/internal/infrastructure/repository"
	"storefront-ingest/internal/infrastructure/storefront"
	"storefront-ingest/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// App holds the wired services shared by the API server and the CLI
type App struct {
	Brands  *application.BrandService
	Sweep   *application.SweepService
	Events  *pubsub.SyncPubSub
	Metrics *metrics.Metrics

	mongo *mongo.Client
	redis *redis.Client
}

// New connects to MongoDB (and redis when configured) and wires the services
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	app := &App{
		Events:  pubsub.NewSyncPubSub(logger),
		Metrics: metrics.New(),
		mongo:   client,
	}

	brandRepo := repository.NewMongoBrandRepository(db)
	collectionRepo := repository.NewMongoCollectionRepository(db)
	itemRepo := repository.NewMongoItemRepository(db)
	postRepo := repository.NewMongoSocialPostRepository(db)

	source := storefront.NewClient(storefront.Options{
		UserAgent:       cfg.UserAgent,
		PageSize:        cfg.PageSize,
		PageDelay:       cfg.PageDelay,
		PageTimeout:     cfg.PageTimeout,
		ValidateTimeout: cfg.ValidateTimeout,
		Observer:        app.Metrics,
	}, logger)

	var extractor ports.PostExtractor
	if cfg.ApifyToken != "" {
		apifyClient, err := apify.NewClient(cfg.ApifyToken, cfg.ApifyActor, "", nil, logger)
		if err != nil {
			app.Close()
			return nil, err
		}
		extractor = apifyClient
	} else {
		logger.Warn().Msg("APIFY_API_TOKEN not set, social sync disabled")
	}

	var runLock ports.RunLock
	if cfg.RedisAddr != "" {
		app.redis = lock.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := app.redis.Ping(connectCtx).Err(); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		runLock = lock.NewRedisLock(app.redis, lock.DefaultKey, lock.DefaultTTL, logger)
	} else {
		runLock = lock.NewLocalLock()
	}

	catalog := application.NewCatalogSyncService(brandRepo, collectionRepo, itemRepo, source, app.Metrics, logger)
	social := application.NewSocialSyncService(postRepo, extractor, app.Metrics, cfg.SocialResultsLimit, logger)

	app.Brands = application.NewBrandService(brandRepo, collectionRepo, itemRepo, postRepo, source, logger)
	app.Sweep = application.NewSweepService(
		brandRepo,
		catalog,
		social,
		runLock,
		app.Events,
		app.Metrics,
		application.SweepOptions{
			Concurrency:  cfg.SyncConcurrency,
			BrandTimeout: cfg.BrandSyncTimeout,
		},
		logger,
	)

	return app, nil
}

// Close releases the store and redis connections
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.mongo != nil {
		_ = a.mongo.Disconnect(ctx)
	}
}
