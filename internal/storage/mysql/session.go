package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"revenue_dash/internal/adapters/observability"
	"revenue_dash/internal/domain"
)

type Session struct {
	conn    *sql.Conn
	timeout time.Duration
}

func (s *Session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Session) AggregateRevenue(ctx context.Context, k domain.TenantProperty) (*domain.RevenueRow, error) {
	qctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	var (
		row   domain.RevenueRow
		total decimal.NullDecimal // scanned from the DECIMAL text, never a float
	)
	err := s.conn.QueryRowContext(qctx, aggregateRevenueSQL, k.PropertyID, k.TenantID).
		Scan(&row.PropertyID, &total, &row.Count)
	observability.ObserveStore("aggregate_revenue", err, time.Since(start))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: aggregate revenue: %w", domain.ErrQueryExecution, err)
	}
	if !total.Valid {
		return nil, fmt.Errorf("%w: aggregate revenue: NULL sum for %s", domain.ErrQueryExecution, k.PropertyID)
	}
	if row.Count < 0 {
		return nil, fmt.Errorf("%w: aggregate revenue: negative count %d", domain.ErrQueryExecution, row.Count)
	}
	row.Total = total.Decimal
	return &row, nil
}

func (s *Session) ListProperties(ctx context.Context, tenantID string) ([]domain.Property, error) {
	qctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	rows, err := s.conn.QueryContext(qctx, listPropertiesSQL, tenantID)
	if err != nil {
		observability.ObserveStore("list_properties", err, time.Since(start))
		return nil, fmt.Errorf("%w: list properties: %w", domain.ErrQueryExecution, err)
	}
	defer rows.Close()

	var out []domain.Property
	for rows.Next() {
		var id string
		var name sql.NullString
		if err := rows.Scan(&id, &name); err != nil {
			observability.ObserveStore("list_properties", err, time.Since(start))
			return nil, fmt.Errorf("%w: list properties: %w", domain.ErrQueryExecution, err)
		}
		p := domain.Property{ID: id, Name: strings.TrimSpace(name.String)}
		if p.Name == "" {
			p.Name = id
		}
		out = append(out, p)
	}
	err = rows.Err()
	observability.ObserveStore("list_properties", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: list properties: %w", domain.ErrQueryExecution, err)
	}
	return out, nil
}

// Close returns the pinned connection to the pool.
func (s *Session) Close() error { return s.conn.Close() }
