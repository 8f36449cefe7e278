package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"revenue_dash/internal/domain"
)

func TestPropertyDirectory_StoreFirst(t *testing.T) {
	pool := &fakePool{sess: fakeSession{props: map[string][]domain.Property{
		"tenant-a": {{ID: "prop-042", Name: "Harbor View"}},
	}}}
	l, _ := testLogger()
	d := NewPropertyDirectory(pool, DefaultPropertyFallback(), l)

	assert.Equal(t, []domain.Property{{ID: "prop-042", Name: "Harbor View"}}, d.List(context.Background(), "tenant-a"))
	assert.Equal(t, int32(1), pool.closed)
}

func TestPropertyDirectory_FallsBackOnErrorOrEmpty(t *testing.T) {
	l, buf := testLogger()

	failing := NewPropertyDirectory(&fakePool{acquireErr: errBoom}, DefaultPropertyFallback(), l)
	got := failing.List(context.Background(), "tenant-b")
	assert.Len(t, got, 4)
	assert.Equal(t, domain.Property{ID: "prop-001", Name: "Mountain Lodge Beta"}, got[0])
	assert.Equal(t, "property list degraded", buf.lines(t)[0]["message"])

	empty := NewPropertyDirectory(&fakePool{}, DefaultPropertyFallback(), l)
	got = empty.List(context.Background(), "tenant-a")
	assert.Len(t, got, 4)
	assert.Equal(t, "Beach House Alpha", got[0].Name)
}

func TestPropertyDirectory_UnknownTenantIsEmptyNotNil(t *testing.T) {
	l, _ := testLogger()
	d := NewPropertyDirectory(nil, DefaultPropertyFallback(), l)

	got := d.List(context.Background(), "tenant-z")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPropertyDirectory_CallersCannotMutateFallback(t *testing.T) {
	l, _ := testLogger()
	d := NewPropertyDirectory(nil, DefaultPropertyFallback(), l)

	first := d.List(context.Background(), "tenant-a")
	first[0].Name = "changed"
	assert.Equal(t, "Beach House Alpha", d.List(context.Background(), "tenant-a")[0].Name)
}
