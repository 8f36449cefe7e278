package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"revenue_dash/internal/adapters/observability"
	"revenue_dash/internal/domain"
	"revenue_dash/internal/money"
)

const (
	sourcePrimary  = "primary"
	sourceEmpty    = "empty"
	sourceFallback = "fallback"

	reasonUnavailable = "data_store_unavailable"
	reasonQuery       = "query_failed"
)

// outcome is the internal result of one aggregation attempt. cause is set
// only when the summary came from the fallback table.
type outcome struct {
	summary domain.RevenueSummary
	source  string
	cause   error
}

// RevenueAggregator computes per-tenant property revenue. It asks the data
// store first and, on any infrastructure failure, answers from a static
// fallback table. Summarize never fails.
type RevenueAggregator struct {
	pool     domain.SessionPool
	fallback FallbackTable
	log      zerolog.Logger
}

func NewRevenueAggregator(pool domain.SessionPool, fb FallbackTable, l zerolog.Logger) *RevenueAggregator {
	return &RevenueAggregator{pool: pool, fallback: fb, log: l}
}

func (a *RevenueAggregator) Summarize(ctx context.Context, propertyID, tenantID string) domain.RevenueSummary {
	return a.summarize(ctx, domain.TenantProperty{TenantID: tenantID, PropertyID: propertyID}).summary
}

func (a *RevenueAggregator) summarize(ctx context.Context, k domain.TenantProperty) outcome {
	start := time.Now()
	sum, empty, err := a.primary(ctx, k)
	if err == nil {
		src := sourcePrimary
		if empty {
			src = sourceEmpty
		}
		observability.ObserveSummary(src, "")
		a.log.Debug().
			Str("source", src).
			Str("tenant_id", k.TenantID).
			Str("property_id", k.PropertyID).
			Int64("count", sum.Count).
			Dur("duration", time.Since(start)).
			Msg("revenue summary")
		return outcome{summary: sum, source: src}
	}
	return a.degrade(k, err)
}

// degrade answers from the fallback table after the primary path failed.
func (a *RevenueAggregator) degrade(k domain.TenantProperty, err error) outcome {
	reason := reasonQuery
	if errors.Is(err, domain.ErrDataStoreUnavailable) {
		reason = reasonUnavailable
	}
	fb, known := a.fallback.Lookup(k)
	observability.ObserveSummary(sourceFallback, reason)
	a.log.Warn().
		Err(err).
		Str("source", sourceFallback).
		Str("reason", reason).
		Bool("fallback_hit", known).
		Str("tenant_id", k.TenantID).
		Str("property_id", k.PropertyID).
		Msg("revenue summary degraded")
	return outcome{summary: fb, source: sourceFallback, cause: err}
}

// primary runs the authoritative query. empty reports a successful query
// that matched no reservations.
func (a *RevenueAggregator) primary(ctx context.Context, k domain.TenantProperty) (_ domain.RevenueSummary, empty bool, err error) {
	if a.pool == nil {
		return domain.RevenueSummary{}, false, fmt.Errorf("%w: no pool configured", domain.ErrDataStoreUnavailable)
	}
	sess, err := a.pool.Acquire(ctx)
	if err != nil {
		return domain.RevenueSummary{}, false, asUnavailable(err)
	}
	if sess == nil {
		return domain.RevenueSummary{}, false, fmt.Errorf("%w: nil session", domain.ErrDataStoreUnavailable)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			a.log.Warn().Err(cerr).Str("tenant_id", k.TenantID).Msg("session close failed")
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", domain.ErrQueryExecution, r)
		}
	}()

	row, err := sess.AggregateRevenue(ctx, k)
	if err != nil {
		return domain.RevenueSummary{}, false, asQueryFailure(err)
	}
	if row == nil {
		return domain.ZeroSummary(k), true, nil
	}
	if row.PropertyID != "" && row.PropertyID != k.PropertyID {
		return domain.RevenueSummary{}, false, fmt.Errorf("%w: row for %q while asking %q", domain.ErrQueryExecution, row.PropertyID, k.PropertyID)
	}
	if row.Count < 0 {
		return domain.RevenueSummary{}, false, fmt.Errorf("%w: negative count %d", domain.ErrQueryExecution, row.Count)
	}
	return domain.RevenueSummary{
		PropertyID: k.PropertyID,
		TenantID:   k.TenantID,
		Total:      money.Canonical(row.Total),
		Currency:   domain.Currency,
		Count:      row.Count,
	}, false, nil
}

func asUnavailable(err error) error {
	if errors.Is(err, domain.ErrDataStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrDataStoreUnavailable, err)
}

func asQueryFailure(err error) error {
	if errors.Is(err, domain.ErrQueryExecution) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrQueryExecution, err)
}

// MonthBounds returns the half-open interval [first of month, first of next
// month) in UTC. December rolls into January of the following year.
func MonthBounds(month, year int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: got %d", domain.ErrInvalidMonth, month)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	if month < 12 {
		end = time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	}
	return start, end, nil
}

// MonthlyRevenue is not wired to the store yet and always reports zero once
// the month is valid.
// TODO: run SUM(total_amount) over check_in_date in [start, end) once
// monthly reporting is scheduled.
func (a *RevenueAggregator) MonthlyRevenue(ctx context.Context, propertyID, tenantID string, month, year int) (decimal.Decimal, error) {
	start, end, err := MonthBounds(month, year)
	if err != nil {
		return decimal.Zero, err
	}
	a.log.Debug().
		Str("tenant_id", tenantID).
		Str("property_id", propertyID).
		Time("from", start).
		Time("to", end).
		Msg("monthly revenue requested")
	return decimal.Zero, nil
}
