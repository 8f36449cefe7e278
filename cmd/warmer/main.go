package main

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"revenue_dash/internal/adapters/observability"
	redisad "revenue_dash/internal/adapters/redis"
	"revenue_dash/internal/app"
	"revenue_dash/internal/shared"
	mysqlrepo "revenue_dash/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Strs("tenants", cfg.WarmTenants).
		Int("workers", cfg.WarmWorkers).
		Msg("warmer starting")

	pool := mysqlrepo.NewPool(mysqlrepo.Options{
		DSN:          cfg.MySQLDSN,
		MaxOpenConns: cfg.WarmWorkers,
		QueryTimeout: cfg.DBQueryTimeout,
	})
	defer pool.Close()

	fallback, err := shared.LoadFallback(cfg.FallbackTablePath)
	if err != nil {
		log.Fatal().Err(err).Msg("fallback table invalid")
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	summaries := app.NewSummaryService(app.NewRevenueAggregator(pool, fallback, log.Logger), cache, cfg.SummaryCacheTTL, log.Logger)
	directory := app.NewPropertyDirectory(pool, app.DefaultPropertyFallback(), log.Logger)

	if !summaries.Caching() {
		log.Warn().Dur("ttl", cfg.SummaryCacheTTL).Msg("summary cache disabled; nothing to warm")
		return
	}
	// warming from fallback data would cache nothing, so the store must be up
	if err := pool.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("database not reachable")
	}

	sem := semaphore.NewWeighted(int64(cfg.WarmWorkers))
	var wg sync.WaitGroup
	var warmed int64

	for _, tenant := range cfg.WarmTenants {
		for _, p := range directory.List(ctx, tenant) {
			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				log.Fatal().Err(err).Msg("semaphore acquire failed")
			}

			wg.Add(1)
			go func(tenantID, propertyID string) {
				defer wg.Done()
				defer sem.Release(1)

				s := summaries.Refresh(ctx, propertyID, tenantID)
				atomic.AddInt64(&warmed, 1)
				log.Info().
					Str("tenant_id", tenantID).
					Str("property_id", propertyID).
					Str("total", s.Total).
					Int64("count", s.Count).
					Msg("summary warmed")
			}(tenant, p.ID)
		}
	}

	wg.Wait()
	log.Info().Int64("summaries", atomic.LoadInt64(&warmed)).Msg("warming completed")
}
