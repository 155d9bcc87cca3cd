package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/bcc32/bcc32.com-2018/internal/guestboard"
	"github.com/bcc32/bcc32.com-2018/internal/handlers"
	"github.com/bcc32/bcc32.com-2018/internal/health"
	"github.com/bcc32/bcc32.com-2018/internal/messaging"
	"github.com/bcc32/bcc32.com-2018/internal/middleware"
	"github.com/bcc32/bcc32.com-2018/internal/ratelimit"
	"github.com/bcc32/bcc32.com-2018/internal/shortener"
	"github.com/bcc32/bcc32.com-2018/internal/store"
	"github.com/bcc32/bcc32.com-2018/internal/visits"
)

// Options holds the site's construction-time configuration.
type Options struct {
	Port          int    `default:"8888"           help:"Port to listen on"                                        short:"p"`
	BaseURL       string `help:"Public base URL for short links (defaults to http://localhost:<port>)"`
	PostgresDSN   string `help:"PostgreSQL connection string; in-memory stores when empty"`
	RedisAddr     string `default:"localhost:6379" help:"Redis server address; cache, rate limiting, and the event bus are disabled when empty" short:"r"`
	WordFile      string `help:"Path to a newline-separated word list; built-in list when empty"`
	LinkTTL       string `default:"168h"           help:"Short link lifetime (Go duration)"`
	SweepInterval string `default:"1m"             help:"Expired link reclamation interval (Go duration)"`
	RateLimit     int    `default:"30"             help:"Max write requests per client per minute"`
	LogFormat     string `default:"console"        help:"Log format: console or json"`
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the redis client. Invoking it with an empty
// RedisAddr is a configuration error; callers gate on the option.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		if options.RedisAddr == "" {
			return nil, fmt.Errorf("redis address not configured")
		}

		return redis.NewClient(&redis.Options{Addr: options.RedisAddr}), nil
	})
}

// PostgresPackage provides the pgx pool. Invoking it with an empty DSN is a
// configuration error; callers gate on the option.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)

		if options.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres dsn not configured")
		}

		return pgxpool.New(context.Background(), options.PostgresDSN)
	})
}

// StorePackage provides the repositories, postgres-backed when a DSN is
// configured and in-memory otherwise. The link store gets a redis read cache
// when redis is configured alongside postgres.
func StorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		options := do.MustInvoke[*Options](i)

		if options.PostgresDSN == "" {
			return store.NewMemoryLinkStore(), nil
		}

		links := shortener.Repository(store.NewPostgresLinkStore(do.MustInvoke[*pgxpool.Pool](i)))
		if options.RedisAddr != "" {
			links = store.NewLinkCache(links, do.MustInvoke[*redis.Client](i))
		}

		return links, nil
	})

	do.Provide(injector, func(i *do.Injector) (guestboard.Repository, error) {
		options := do.MustInvoke[*Options](i)

		if options.PostgresDSN == "" {
			return store.NewMemoryMessageStore(), nil
		}

		return store.NewPostgresMessageStore(do.MustInvoke[*pgxpool.Pool](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (visits.Store, error) {
		return store.NewPostgresVisitStore(do.MustInvoke[*pgxpool.Pool](i)), nil
	})
}

// ShortenerPackage provides the word pool and the engine, rehydrated from
// the store and with the reclamation sweep running.
func ShortenerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortener.WordPool, error) {
		options := do.MustInvoke[*Options](i)

		vocabulary := shortener.DefaultVocabulary()

		if options.WordFile != "" {
			var err error

			vocabulary, err = shortener.LoadVocabulary(options.WordFile)
			if err != nil {
				return nil, err
			}
		}

		return shortener.NewWordPool(vocabulary), nil
	})

	do.Provide(injector, func(i *do.Injector) (*shortener.Engine, error) {
		options := do.MustInvoke[*Options](i)

		ttl, err := time.ParseDuration(options.LinkTTL)
		if err != nil {
			return nil, fmt.Errorf("parse link ttl: %w", err)
		}

		sweepInterval, err := time.ParseDuration(options.SweepInterval)
		if err != nil {
			return nil, fmt.Errorf("parse sweep interval: %w", err)
		}

		engine := shortener.NewEngine(
			do.MustInvoke[shortener.Repository](i),
			do.MustInvoke[*shortener.WordPool](i),
			shortener.Config{TTL: ttl, SweepInterval: sweepInterval},
			do.MustInvoke[*zap.Logger](i),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := engine.Rehydrate(ctx); err != nil {
			return nil, err
		}

		engine.Start(context.Background())

		return engine, nil
	})
}

// GuestboardPackage provides the notification hub and the board.
func GuestboardPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*guestboard.Hub, error) {
		return guestboard.NewHub(), nil
	})

	do.Provide(injector, func(i *do.Injector) (*guestboard.Board, error) {
		return guestboard.NewBoard(
			do.MustInvoke[guestboard.Repository](i),
			do.MustInvoke[*guestboard.Hub](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// PublisherPackage provides the event bus publisher over redis streams.
func PublisherPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: do.MustInvoke[*redis.Client](i),
		}, watermill.NopLogger{})
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// ConsumerPackage provides the visit consumer over redis streams, persisting
// into postgres.
func ConsumerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*visits.Consumer, error) {
		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        do.MustInvoke[*redis.Client](i),
			ConsumerGroup: "visits",
		}, watermill.NopLogger{})
		if err != nil {
			return nil, err
		}

		return visits.NewConsumer(
			subscriber,
			do.MustInvoke[visits.Store](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// RateLimitPackage provides the write-path rate limiter, redis-backed when
// redis is configured.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Limiter, error) {
		options := do.MustInvoke[*Options](i)

		var limits ratelimit.Store = store.NewRateLimitMemoryStore()
		if options.RedisAddr != "" {
			limits = store.NewRateLimitRedisStore(do.MustInvoke[*redis.Client](i))
		}

		return ratelimit.NewSlidingWindowLimiter(limits, int64(options.RateLimit), time.Minute), nil
	})
}

// HTTPPackage provides the router and the API with all routes registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		router := do.MustInvoke[*chi.Mux](i)
		api := humachi.New(router, huma.DefaultConfig("bcc32.com", "1.0.0"))

		api.UseMiddleware(
			middleware.RequestMeta(api),
			middleware.RateLimiter(api, do.MustInvoke[ratelimit.Limiter](i), logger),
		)

		baseURL := options.BaseURL
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://localhost:%d", options.Port)
		}

		publishVisit := messaging.Nop[visits.VisitEvent]()
		publishPosted := messaging.Nop[visits.MessagePostedEvent]()

		if options.RedisAddr != "" {
			group := do.MustInvoke[*messaging.PublisherGroup](i)
			publishVisit = messaging.NewPublish[visits.VisitEvent](group.Publisher(), visits.TopicVisitRecorded)
			publishPosted = messaging.NewPublish[visits.MessagePostedEvent](group.Publisher(), visits.TopicMessagePosted)
		}

		links := handlers.NewLinkHandler(
			do.MustInvoke[*shortener.Engine](i),
			baseURL,
			publishVisit,
			logger,
		)

		board := handlers.NewGuestboardHandler(
			do.MustInvoke[*guestboard.Board](i),
			publishPosted,
			logger,
		)

		handlers.RegisterRoutes(api, links, board)

		var redisChecker, postgresChecker health.Checker

		if options.RedisAddr != "" {
			redisChecker = health.NewRedisChecker(do.MustInvoke[*redis.Client](i))
		}

		if options.PostgresDSN != "" {
			postgresChecker = health.NewPostgresChecker(do.MustInvoke[*pgxpool.Pool](i))
		}

		health.RegisterRoutes(api, health.NewHandler(redisChecker, postgresChecker))

		return api, nil
	})
}
