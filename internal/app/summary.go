package app

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"revenue_dash/internal/domain"
)

// defaultComputeTimeout bounds one shared aggregation. It stays below the
// HTTP server's request timeout.
const defaultComputeTimeout = 10 * time.Second

// SummaryService is the entry point used by the dashboard. It caches summaries
// per (tenant, property) for ttl. Degraded summaries are never cached so a
// recovered store is visible on the next request.
type SummaryService struct {
	agg     *RevenueAggregator
	cache   domain.Cache
	ttl     time.Duration
	timeout time.Duration // bounds the shared aggregation; zero means unbounded
	group   singleflight.Group
	log     zerolog.Logger
}

func NewSummaryService(agg *RevenueAggregator, cache domain.Cache, ttl time.Duration, l zerolog.Logger) *SummaryService {
	return &SummaryService{agg: agg, cache: cache, ttl: ttl, timeout: defaultComputeTimeout, log: l}
}

// WithComputeTimeout replaces the bound on one shared aggregation.
func (s *SummaryService) WithComputeTimeout(d time.Duration) *SummaryService {
	s.timeout = d
	return s
}

func summaryKey(k domain.TenantProperty) string {
	return "revsum:v1:" + url.QueryEscape(k.TenantID) + ":" + url.QueryEscape(k.PropertyID)
}

// Caching reports whether summaries are stored at all. A zero ttl disables it.
func (s *SummaryService) Caching() bool { return s.cache != nil && s.ttl > 0 }

func (s *SummaryService) GetRevenueSummary(ctx context.Context, propertyID, tenantID string) domain.RevenueSummary {
	k := domain.TenantProperty{TenantID: tenantID, PropertyID: propertyID}
	key := summaryKey(k)

	if s.Caching() {
		var cached domain.RevenueSummary
		ok, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("summary cache read failed")
		}
		if ok && cached.TenantID == k.TenantID && cached.PropertyID == k.PropertyID {
			return cached
		}
	}

	// Concurrent misses share one aggregation. The shared call must not die
	// with whichever caller happened to start it, so it runs on its own
	// deadline, and each caller stops waiting at its own.
	ch := s.group.DoChan(key, func() (any, error) {
		cctx := context.WithoutCancel(ctx)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(cctx, s.timeout)
			defer cancel()
		}
		return s.compute(cctx, k, key), nil
	})
	select {
	case res := <-ch:
		return res.Val.(domain.RevenueSummary)
	case <-ctx.Done():
		return s.agg.degrade(k, fmt.Errorf("%w: %w", domain.ErrDataStoreUnavailable, ctx.Err())).summary
	}
}

// Refresh recomputes a summary without reading the cache and stores it.
func (s *SummaryService) Refresh(ctx context.Context, propertyID, tenantID string) domain.RevenueSummary {
	k := domain.TenantProperty{TenantID: tenantID, PropertyID: propertyID}
	return s.compute(ctx, k, summaryKey(k))
}

// Invalidate drops the cached summary for one tenant's property. Reservation
// writers call it after changing the underlying rows.
func (s *SummaryService) Invalidate(ctx context.Context, propertyID, tenantID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, summaryKey(domain.TenantProperty{TenantID: tenantID, PropertyID: propertyID}))
}

func (s *SummaryService) compute(ctx context.Context, k domain.TenantProperty, key string) domain.RevenueSummary {
	out := s.agg.summarize(ctx, k)
	if out.source == sourceFallback || !s.Caching() {
		return out.summary
	}
	// a zero ttl would mean "never expire" to the cache backend
	ttlSec := max(1, int(s.ttl.Seconds()))
	if err := s.cache.Set(ctx, key, out.summary, ttlSec); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("summary cache write failed")
	}
	return out.summary
}
