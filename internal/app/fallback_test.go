package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revenue_dash/internal/domain"
	"revenue_dash/internal/money"
)

func TestFallbackTable_CopiesInput(t *testing.T) {
	in := map[domain.TenantProperty]FallbackEntry{
		tp("tenant-a", "prop-001"): {Total: "10.5", Count: 1},
	}
	fb, err := NewFallbackTable(in)
	require.NoError(t, err)

	in[tp("tenant-a", "prop-001")] = FallbackEntry{Total: "99", Count: 9}
	in[tp("tenant-x", "prop-001")] = FallbackEntry{Total: "1", Count: 1}

	got, ok := fb.Lookup(tp("tenant-a", "prop-001"))
	assert.True(t, ok)
	assert.Equal(t, "10.50", got.Total)
	assert.Equal(t, int64(1), got.Count)
	assert.Equal(t, 1, fb.Len())
}

func TestFallbackTable_KeyIsTheFullPair(t *testing.T) {
	fb := DefaultFallbackTable()

	a, ok := fb.Lookup(tp("tenant-a", "prop-004"))
	assert.False(t, ok, "prop-004 belongs to tenant-b only")
	assert.Equal(t, "0.00", a.Total)

	b, ok := fb.Lookup(tp("tenant-b", "prop-004"))
	assert.True(t, ok)
	assert.Equal(t, "1776.50", b.Total)
}

func TestFallbackTable_RejectsBadEntries(t *testing.T) {
	_, err := NewFallbackTable(map[domain.TenantProperty]FallbackEntry{
		tp("tenant-a", "prop-001"): {Total: "ten dollars", Count: 1},
	})
	assert.True(t, errors.Is(err, money.ErrInvalidAmount))

	_, err = NewFallbackTable(map[domain.TenantProperty]FallbackEntry{
		tp("", "prop-001"): {Total: "1", Count: 1},
	})
	assert.Error(t, err)

	_, err = NewFallbackTable(map[domain.TenantProperty]FallbackEntry{
		tp("tenant-a", "prop-001"): {Total: "1", Count: -1},
	})
	assert.Error(t, err)
}

func TestLoadFallbackTable_KeepsLiteralDecimals(t *testing.T) {
	fb, err := LoadFallbackTable(strings.NewReader(`[
		{"tenant_id":"tenant-a","property_id":"prop-precision-demo","total":2.675,"count":1},
		{"tenant_id":"tenant-b","property_id":"prop-001","total":"0.00","count":0}
	]`))
	require.NoError(t, err)
	require.Equal(t, 2, fb.Len())

	got, ok := fb.Lookup(tp("tenant-a", "prop-precision-demo"))
	require.True(t, ok)
	assert.Equal(t, "2.675", got.Total)
}

func TestLoadFallbackTable_Errors(t *testing.T) {
	_, err := LoadFallbackTable(strings.NewReader(`{"not":"an array"}`))
	assert.Error(t, err)

	_, err = LoadFallbackTable(strings.NewReader(`[
		{"tenant_id":"tenant-a","property_id":"prop-001","total":"1","count":1},
		{"tenant_id":"tenant-a","property_id":"prop-001","total":"2","count":1}
	]`))
	assert.ErrorContains(t, err, "duplicate")
}
