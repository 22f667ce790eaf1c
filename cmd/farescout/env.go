package main

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dharmasatrya/farescout/internal/aggregator"
	"github.com/dharmasatrya/farescout/internal/altairports"
	"github.com/dharmasatrya/farescout/internal/awards"
	"github.com/dharmasatrya/farescout/internal/cache"
	"github.com/dharmasatrya/farescout/internal/config"
	"github.com/dharmasatrya/farescout/internal/fares"
	"github.com/dharmasatrya/farescout/internal/hiddencity"
	"github.com/dharmasatrya/farescout/internal/providers"
	"github.com/dharmasatrya/farescout/internal/ratelimit"
	"github.com/dharmasatrya/farescout/internal/search"
	"github.com/dharmasatrya/farescout/internal/usage"
)

// searchEnv holds everything a search needs, built once per process.
type searchEnv struct {
	service  *search.Service
	registry *providers.Registry
	budget   *usage.Budget
	closers  []func() error
}

func (e *searchEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			zap.L().Warn("close failed", zap.Error(err))
		}
	}
}

func initSearch(ctx context.Context, cfg *config.Config) (*searchEnv, error) {
	env := &searchEnv{}

	var redisClient *redis.Client
	if cfg.Usage.Driver == "redis" || (cfg.Cache.Enabled && cfg.Cache.Driver == "redis") {
		client, err := cache.Connect(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		redisClient = client
		env.closers = append(env.closers, client.Close)
	}

	store, err := initUsageStore(cfg.Usage, redisClient)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.closers = append(env.closers, store.Close)
	env.budget = usage.NewBudget(store, cfg.Usage.MonthlyLimit)

	registry := initProviders(cfg, env.budget)
	env.registry = registry

	limitOverrides := make(map[string]ratelimit.Config, len(cfg.RateLimit.Strategies))
	for name, l := range cfg.RateLimit.Strategies {
		limitOverrides[name] = ratelimit.Config{RequestsPerSecond: l.RequestsPerSecond, BurstSize: l.Burst}
	}
	dispatcher := aggregator.NewDispatcher(aggregator.Config{
		Timeout:     cfg.Dispatch.Timeout,
		MaxRetries:  cfg.Dispatch.MaxRetries,
		RetryDelays: cfg.Dispatch.RetryDelays,
		RateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.Burst,
		}, limitOverrides),
	})

	var responseCache cache.Cache = cache.NewNoOpCache()
	if cfg.Cache.Enabled {
		if cfg.Cache.Driver == "redis" {
			responseCache = cache.NewRedisCache(redisClient, cfg.Cache.TTL)
		} else {
			responseCache = cache.NewMemoryCache(cfg.Cache.TTL)
		}
		zap.L().Debug("response cache enabled", zap.String("driver", cfg.Cache.Driver), zap.Duration("ttl", cfg.Cache.TTL))
	}

	env.service = search.NewService(registry, dispatcher, responseCache)
	return env, nil
}

func initUsageStore(cfg config.UsageConfig, client *redis.Client) (usage.Store, error) {
	switch cfg.Driver {
	case "memory":
		return usage.NewMemoryStore(), nil
	case "redis":
		if client == nil {
			return nil, eris.New("usage: redis driver needs a redis client")
		}
		return usage.NewRedisStore(client), nil
	default:
		st, err := usage.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, eris.Wrap(err, "usage: open store")
		}
		return st, nil
	}
}

// initProviders registers every strategy. Static tables that fail to load
// leave their strategy running with empty data rather than aborting.
func initProviders(cfg *config.Config, budget *usage.Budget) *providers.Registry {
	hubs, err := hiddencity.LoadHubs(cfg.HiddenCity.HubsFile)
	if err != nil {
		zap.L().Warn("hub connections unavailable", zap.Error(err))
		hubs = hiddencity.Hubs{}
	}

	estimator := fares.NewEstimator(fares.WithConnections(hubs.ViaHubs()))
	var source fares.OfferSource = estimator
	// the awards cash feed must be real fares, never estimates
	var cashFeed fares.OfferSource
	if cfg.SerpAPI.Live() {
		// every strategy shares the one metered client; the offline
		// estimator costs nothing and stays outside the budget
		serp := fares.NewMetered(fares.NewSerpAPI(fares.SerpAPIConfig{
			Key:     cfg.SerpAPI.Key,
			BaseURL: cfg.SerpAPI.BaseURL,
			Timeout: cfg.SerpAPI.Timeout,
		}), budget)
		source = &fares.Fallback{Primary: serp, Secondary: estimator}
		cashFeed = serp
		zap.L().Debug("serpapi fare feed enabled")
	}

	table, err := altairports.LoadTable(cfg.AltAirport.AlternatesFile)
	if err != nil {
		zap.L().Warn("airport alternates unavailable", zap.Error(err))
		table = nil
	}

	matcher := hiddencity.NewMatcher(source, hubs, hiddencity.Config{
		MaxBeyond:  cfg.HiddenCity.MaxBeyond,
		MinSavings: cfg.HiddenCity.MinSavings,
	})

	return providers.NewRegistry(
		providers.NewCashFareProvider(source),
		providers.NewHiddenCityProvider(matcher),
		providers.NewBudgetProvider(),
		providers.NewAwardsProvider(awards.NewEngine(cfg.Awards.SweetSpotsFile, cashFeed)),
		providers.NewAltAirportsProvider(altairports.NewSearcher(source, table)),
	)
}
