package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/handlers"
	"github.com/serroba/url-shortener/internal/health"
	"github.com/serroba/url-shortener/internal/invalidation"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/serroba/url-shortener/internal/migrations"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"go.uber.org/zap"
)

const (
	requestTimeout     = 30 * time.Second
	connectTimeout     = 10 * time.Second
	memoryCacheCleanup = 10 * time.Minute

	// evictionStreamMaxlen caps the eviction stream; consumers only read new entries.
	evictionStreamMaxlen = 10000
)

// RedisClient owns the process-wide Redis connection pool.
type RedisClient struct {
	*redis.Client
}

func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// PostgresPool owns the process-wide PostgreSQL connection pool.
type PostgresPool struct {
	*pgxpool.Pool
}

func (p *PostgresPool) Shutdown() error {
	p.Close()

	return nil
}

// InstanceID identifies this process on the eviction topic.
type InstanceID string

// LoggerPackage provides the process logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		return NewLogger(opts.LogFormat, opts.LogLevel)
	})
}

// RedisPackage provides the Redis client. It is only connected when something invokes it.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		client := redis.NewClient(&redis.Options{
			Addr: opts.RedisAddr,
		})

		return &RedisClient{Client: client}, nil
	})
}

// PostgresPackage provides the PostgreSQL pool, applying migrations first when enabled.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*PostgresPool, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.Migrate {
			if err := migrate(opts.DatabaseURL, logger); err != nil {
				return nil, err
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create postgres pool: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("ping postgres: %w", err)
		}

		return &PostgresPool{Pool: pool}, nil
	})
}

func migrate(databaseURL string, logger *zap.Logger) error {
	m, err := migrations.New(databaseURL, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("failed to close migrator", zap.Error(err))
		}
	}()

	return m.Up()
}

// RepositoryPackage provides the store, cache, code generator and shortener service
// selected by Options.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.Store == StoreMemory {
			return store.NewMemoryStore(), nil
		}

		pool, err := do.Invoke[*PostgresPool](i)
		if err != nil {
			return nil, err
		}

		return store.NewPostgresStore(pool.Pool, opts.storeTimeout()), nil
	})

	do.Provide(i, func(_ *do.Injector) (*store.MemoryCache, error) {
		return store.NewMemoryCache(memoryCacheCleanup), nil
	})

	do.Provide(i, func(i *do.Injector) (shortener.Cache, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		switch opts.Cache {
		case CacheNone:
			return store.NewNoopCache(), nil
		case CacheMemory:
			local := do.MustInvoke[*store.MemoryCache](i)
			if !opts.BroadcastEvictions {
				return local, nil
			}

			publishers, err := do.Invoke[*messaging.PublisherGroup](i)
			if err != nil {
				return nil, err
			}

			origin := string(do.MustInvoke[InstanceID](i))
			publish := messaging.NewPublishFunc[invalidation.CodeEvicted](
				publishers.Publisher(),
				invalidation.TopicCodeEvicted,
				origin,
			)

			return invalidation.NewBroadcastCache(local, publish, origin, logger), nil
		default:
			client := do.MustInvoke[*RedisClient](i)

			return store.NewRedisCache(client.Client, opts.cacheTimeout(), logger), nil
		}
	})

	do.Provide(i, func(i *do.Injector) (shortener.CodeGenerator, error) {
		opts := do.MustInvoke[*Options](i)

		return shortener.NewCodeGenerator(opts.CodeLength)
	})

	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)

		repo, err := do.Invoke[shortener.Repository](i)
		if err != nil {
			return nil, err
		}

		cache, err := do.Invoke[shortener.Cache](i)
		if err != nil {
			return nil, err
		}

		generator, err := do.Invoke[shortener.CodeGenerator](i)
		if err != nil {
			return nil, err
		}

		return shortener.NewService(repo, cache, generator, opts.serviceConfig(), do.MustInvoke[*zap.Logger](i)), nil
	})
}

func evictionPublisherConfig(client redis.UniversalClient) redisstream.PublisherConfig {
	return redisstream.PublisherConfig{
		Client:        client,
		DefaultMaxlen: evictionStreamMaxlen,
	}
}

// evictionSubscriberConfig reads in fan-out mode, starting at entries published after subscribing.
func evictionSubscriberConfig(client redis.UniversalClient) redisstream.SubscriberConfig {
	return redisstream.SubscriberConfig{
		Client:         client,
		FanOutOldestId: "$",
	}
}

// InvalidationPackage provides the eviction publisher and the per-instance subscriber.
func InvalidationPackage(i *do.Injector) {
	do.ProvideValue(i, InstanceID(uuid.NewString()))

	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(
			evictionPublisherConfig(client.Client),
			messaging.NewZapLoggerAdapter(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create eviction publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)
		local := do.MustInvoke[*store.MemoryCache](i)
		id := string(do.MustInvoke[InstanceID](i))

		subscriber, err := redisstream.NewSubscriber(
			evictionSubscriberConfig(client.Client),
			messaging.NewZapLoggerAdapter(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create eviction subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(
			subscriber,
			invalidation.TopicCodeEvicted,
			invalidation.NewEvictHandler(local, id),
			logger,
		))

		return group, nil
	})
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Use(chimiddleware.Recoverer)
		router.Use(chimiddleware.Timeout(requestTimeout))
		router.Use(chimiddleware.Compress(5))

		router.Handle("/metrics", promhttp.Handler())

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		service, err := do.Invoke[*shortener.Service](i)
		if err != nil {
			return nil, err
		}

		baseURL, defaulted := opts.PublicBaseURL()
		if defaulted {
			logger.Warn("base-url not set, short links will point at localhost", zap.String("base_url", baseURL))
		}

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", health.Version))
		api.UseMiddleware(middleware.RequestLogger(logger))

		handlers.RegisterRoutes(api, handlers.NewURLHandler(service, baseURL, logger))
		health.RegisterRoutes(api, health.NewHandler(checkers(i, opts)))

		return api, nil
	})
}

func checkers(i *do.Injector, opts *Options) map[string]health.Checker {
	result := make(map[string]health.Checker)

	if opts.Store == StorePostgres {
		result["postgres"] = health.NewPostgresChecker(do.MustInvoke[*PostgresPool](i).Pool)
	}

	if opts.Cache == CacheRedis || opts.BroadcastEvictions {
		result["redis"] = health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client)
	}

	return result
}

// Register wires every package into the injector.
func Register(i *do.Injector, opts *Options) {
	do.ProvideValue(i, opts)
	LoggerPackage(i)
	RedisPackage(i)
	PostgresPackage(i)
	RepositoryPackage(i)
	InvalidationPackage(i)
	HTTPPackage(i)
}

// Compile-time checks.
var (
	_ do.Shutdownable = (*RedisClient)(nil)
	_ do.Shutdownable = (*PostgresPool)(nil)
	_ do.Shutdownable = (*messaging.PublisherGroup)(nil)
	_ do.Shutdownable = (*messaging.ConsumerGroup)(nil)
)
