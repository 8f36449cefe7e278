package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"revenue_dash/internal/domain"
)

// ---- fakes ----

type fakeSession struct {
	rows      map[domain.TenantProperty]*domain.RevenueRow
	props     map[string][]domain.Property
	err       error
	panicWith any
	gate      chan struct{}
	closed    *int32
	queries   *int32
}

func (s *fakeSession) AggregateRevenue(ctx context.Context, k domain.TenantProperty) (*domain.RevenueRow, error) {
	atomic.AddInt32(s.queries, 1)
	if s.gate != nil {
		<-s.gate
	}
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.rows[k], nil
}

func (s *fakeSession) ListProperties(ctx context.Context, tenantID string) ([]domain.Property, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.props[tenantID], nil
}

func (s *fakeSession) Close() error {
	atomic.AddInt32(s.closed, 1)
	return nil
}

// fakePool hands out copies of sess. A non-nil stall blocks Acquire until it
// is closed; with stallIgnoresCtx even the caller's deadline does not release
// it, like a stuck dial.
type fakePool struct {
	acquireErr      error
	stall           chan struct{}
	stallIgnoresCtx bool
	sess            fakeSession
	acquired        int32
	closed          int32
	queries         int32
}

func (p *fakePool) Acquire(ctx context.Context) (domain.Session, error) {
	if p.stall != nil {
		if p.stallIgnoresCtx {
			<-p.stall
		} else {
			select {
			case <-p.stall:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	atomic.AddInt32(&p.acquired, 1)
	s := p.sess
	s.closed = &p.closed
	s.queries = &p.queries
	return &s, nil
}

// fakeCache round-trips values through JSON like the Redis adapter does.
type fakeCache struct {
	mu     sync.Mutex
	store  map[string][]byte
	ttls   map[string]int
	getErr error
	setErr error
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	if c.store == nil {
		c.store = map[string][]byte{}
		c.ttls = map[string]int{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	c.ttls[key] = ttlSec
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// ---- helpers ----

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) lines(t *testing.T) []map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []map[string]any
	for _, ln := range strings.Split(strings.TrimSpace(s.b.String()), "\n") {
		if ln == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(ln), &m); err != nil {
			t.Fatalf("bad log line %q: %v", ln, err)
		}
		out = append(out, m)
	}
	return out
}

func testLogger() (zerolog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return zerolog.New(buf), buf
}

var errBoom = errors.New("boom")
