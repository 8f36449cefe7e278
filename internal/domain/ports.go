package domain

import "context"

// SessionPool hands out data-store sessions. Acquire fails with
// ErrDataStoreUnavailable when no connection can be obtained.
type SessionPool interface {
	Acquire(ctx context.Context) (Session, error)
}

// Session is a scoped data-store session. Callers must Close it on every path.
type Session interface {
	// AggregateRevenue returns nil when no reservation matches.
	AggregateRevenue(ctx context.Context, k TenantProperty) (*RevenueRow, error)
	ListProperties(ctx context.Context, tenantID string) ([]Property, error)
	Close() error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// IdentityResolver maps a bearer token to the caller's tenant.
type IdentityResolver interface {
	ResolveTenant(ctx context.Context, token string) (string, error)
}
