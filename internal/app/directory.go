package app

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"revenue_dash/internal/domain"
)

// PropertyDirectory lists a tenant's properties for the dashboard dropdown.
// It reads the store first and falls back to a static per-tenant list when
// the store fails or has nothing for the tenant.
type PropertyDirectory struct {
	pool     domain.SessionPool
	fallback map[string][]domain.Property
	log      zerolog.Logger
}

func NewPropertyDirectory(pool domain.SessionPool, fallback map[string][]domain.Property, l zerolog.Logger) *PropertyDirectory {
	fb := make(map[string][]domain.Property, len(fallback))
	for tenant, props := range fallback {
		fb[tenant] = slices.Clone(props)
	}
	return &PropertyDirectory{pool: pool, fallback: fb, log: l}
}

func (d *PropertyDirectory) List(ctx context.Context, tenantID string) []domain.Property {
	props, err := d.fromStore(ctx, tenantID)
	if err != nil {
		d.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("property list degraded")
	}
	if len(props) > 0 {
		return props
	}
	return d.static(tenantID)
}

func (d *PropertyDirectory) fromStore(ctx context.Context, tenantID string) ([]domain.Property, error) {
	if d.pool == nil {
		return nil, domain.ErrDataStoreUnavailable
	}
	sess, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	return sess.ListProperties(ctx, tenantID)
}

func (d *PropertyDirectory) static(tenantID string) []domain.Property {
	props := d.fallback[tenantID]
	if props == nil {
		return []domain.Property{}
	}
	return slices.Clone(props)
}

// DefaultPropertyFallback matches the default fallback revenue table.
func DefaultPropertyFallback() map[string][]domain.Property {
	return map[string][]domain.Property{
		"tenant-a": {
			{ID: "prop-001", Name: "Beach House Alpha"},
			{ID: "prop-002", Name: "City Apartment Downtown"},
			{ID: "prop-003", Name: "Country Villa Estate"},
			{ID: "prop-precision-demo", Name: "Precision Demo"},
		},
		"tenant-b": {
			{ID: "prop-001", Name: "Mountain Lodge Beta"},
			{ID: "prop-004", Name: "Lakeside Cottage"},
			{ID: "prop-005", Name: "Urban Loft Modern"},
			{ID: "prop-precision-demo", Name: "Precision Demo"},
		},
	}
}
