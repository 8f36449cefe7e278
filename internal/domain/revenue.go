package domain

import "github.com/shopspring/decimal"

// Currency is the only currency summaries are reported in.
const Currency = "USD"

// TenantProperty is the lookup key for everything revenue related.
// A property id alone never identifies a property across tenants.
type TenantProperty struct {
	TenantID   string
	PropertyID string
}

// RevenueSummary is the per-request revenue total for one tenant's property.
// Total is an exact decimal string; rounding happens only at display time.
type RevenueSummary struct {
	PropertyID string `json:"property_id"`
	TenantID   string `json:"tenant_id"`
	Total      string `json:"total"`
	Currency   string `json:"currency"`
	Count      int64  `json:"count"`
}

// ZeroSummary is the summary of a property with no reservations.
func ZeroSummary(k TenantProperty) RevenueSummary {
	return RevenueSummary{
		PropertyID: k.PropertyID,
		TenantID:   k.TenantID,
		Total:      "0.00",
		Currency:   Currency,
		Count:      0,
	}
}

// RevenueRow is one grouped aggregation row as read from the store.
type RevenueRow struct {
	PropertyID string
	Total      decimal.Decimal
	Count      int64
}

type Property struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
