package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"revenue_dash/internal/adapters/identity"
	server "revenue_dash/internal/adapters/http_server"
	"revenue_dash/internal/adapters/observability"
	redisad "revenue_dash/internal/adapters/redis"
	"revenue_dash/internal/app"
	"revenue_dash/internal/domain"
	"revenue_dash/internal/shared"
	mysqlrepo "revenue_dash/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	metricsSrv, err := observability.Serve(cfg.MetricsAddr, reg)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics listener")
	}

	// db: opened lazily; a down database only degrades summaries
	pool := mysqlrepo.NewPool(mysqlrepo.Options{
		DSN:          cfg.MySQLDSN,
		MaxOpenConns: cfg.DBMaxOpenConns,
		QueryTimeout: cfg.DBQueryTimeout,
	})
	defer pool.Close()
	if err := pool.Init(context.Background()); err != nil {
		log.Warn().Err(err).Msg("database not reachable at startup; serving fallback data")
	} else {
		log.Info().Msg("database connection ok")
	}

	fallback, err := shared.LoadFallback(cfg.FallbackTablePath)
	if err != nil {
		log.Fatal().Err(err).Msg("fallback table invalid")
	}

	// deps
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	agg := app.NewRevenueAggregator(pool, fallback, log.Logger)
	// ping, connection wait and query are each bounded by the query timeout
	summaries := app.NewSummaryService(agg, cache, cfg.SummaryCacheTTL, log.Logger).
		WithComputeTimeout(3 * cfg.DBQueryTimeout)
	directory := app.NewPropertyDirectory(pool, app.DefaultPropertyFallback(), log.Logger)

	var idp domain.IdentityResolver
	if cfg.IdentityBase != "" {
		c, err := identity.New(cfg.IdentityBase, cfg.IdentityRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("identity client")
		}
		idp = c
	}

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Summaries:     summaries,
		Directory:     directory,
		Identity:      idp,
		DefaultTenant: cfg.DefaultTenant,
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
