package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"revenue_dash/internal/domain"
	"revenue_dash/internal/money"
)

// FallbackEntry is a canned revenue figure served while the store is down.
type FallbackEntry struct {
	Total string
	Count int64
}

// FallbackTable is read-only after construction. Lookups are keyed by the
// full (tenant, property) pair.
type FallbackTable struct {
	entries map[domain.TenantProperty]FallbackEntry
}

// NewFallbackTable validates and copies entries.
func NewFallbackTable(entries map[domain.TenantProperty]FallbackEntry) (FallbackTable, error) {
	out := make(map[domain.TenantProperty]FallbackEntry, len(entries))
	for k, e := range entries {
		if k.TenantID == "" || k.PropertyID == "" {
			return FallbackTable{}, fmt.Errorf("fallback entry %+v: tenant and property are required", k)
		}
		d, err := money.Parse(e.Total)
		if err != nil {
			return FallbackTable{}, fmt.Errorf("fallback entry %s/%s: %w", k.TenantID, k.PropertyID, err)
		}
		if e.Count < 0 {
			return FallbackTable{}, fmt.Errorf("fallback entry %s/%s: negative count", k.TenantID, k.PropertyID)
		}
		out[k] = FallbackEntry{Total: money.Canonical(d), Count: e.Count}
	}
	return FallbackTable{entries: out}, nil
}

// Lookup returns the canned summary for k, or a zero summary when k is absent.
func (t FallbackTable) Lookup(k domain.TenantProperty) (domain.RevenueSummary, bool) {
	e, ok := t.entries[k]
	if !ok {
		return domain.ZeroSummary(k), false
	}
	return domain.RevenueSummary{
		PropertyID: k.PropertyID,
		TenantID:   k.TenantID,
		Total:      e.Total,
		Currency:   domain.Currency,
		Count:      e.Count,
	}, true
}

func (t FallbackTable) Len() int { return len(t.entries) }

type fallbackRecord struct {
	TenantID   string      `json:"tenant_id"`
	PropertyID string      `json:"property_id"`
	Total      json.Number `json:"total"`
	Count      int64       `json:"count"`
}

// LoadFallbackTable reads a JSON array of
// {"tenant_id","property_id","total","count"} records. Totals may be JSON
// strings or numbers; numbers are kept as their literal text.
func LoadFallbackTable(r io.Reader) (FallbackTable, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var recs []fallbackRecord
	if err := dec.Decode(&recs); err != nil {
		return FallbackTable{}, fmt.Errorf("decode fallback table: %w", err)
	}
	entries := make(map[domain.TenantProperty]FallbackEntry, len(recs))
	for _, rec := range recs {
		k := domain.TenantProperty{TenantID: strings.TrimSpace(rec.TenantID), PropertyID: strings.TrimSpace(rec.PropertyID)}
		if _, dup := entries[k]; dup {
			return FallbackTable{}, fmt.Errorf("duplicate fallback entry %s/%s", k.TenantID, k.PropertyID)
		}
		entries[k] = FallbackEntry{Total: rec.Total.String(), Count: rec.Count}
	}
	return NewFallbackTable(entries)
}

// DefaultFallbackTable mirrors the demo seed data, including the two
// precision cases that round wrongly through float64.
func DefaultFallbackTable() FallbackTable {
	t, err := NewFallbackTable(map[domain.TenantProperty]FallbackEntry{
		{TenantID: "tenant-a", PropertyID: "prop-001"}:            {Total: "1000.00", Count: 3},
		{TenantID: "tenant-a", PropertyID: "prop-002"}:            {Total: "4975.50", Count: 4},
		{TenantID: "tenant-a", PropertyID: "prop-003"}:            {Total: "6100.50", Count: 2},
		{TenantID: "tenant-b", PropertyID: "prop-001"}:            {Total: "0.00", Count: 0},
		{TenantID: "tenant-b", PropertyID: "prop-004"}:            {Total: "1776.50", Count: 4},
		{TenantID: "tenant-b", PropertyID: "prop-005"}:            {Total: "3256.00", Count: 3},
		{TenantID: "tenant-a", PropertyID: "prop-precision-demo"}: {Total: "2.675", Count: 1},
		{TenantID: "tenant-b", PropertyID: "prop-precision-demo"}: {Total: "3.675", Count: 1},
	})
	if err != nil {
		panic(err)
	}
	return t
}
