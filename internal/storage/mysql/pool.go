package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"revenue_dash/internal/domain"
)

type Options struct {
	DSN          string
	MaxOpenConns int
	QueryTimeout time.Duration
}

// Pool opens the database lazily on first use. Init is safe to call from any
// number of goroutines; only one of them opens the connection. A failed Init
// leaves the pool empty so a later call can try again.
type Pool struct {
	opts Options
	open func(driver, dsn string) (*sql.DB, error)

	mu sync.Mutex
	db atomic.Pointer[sql.DB]
}

func NewPool(opts Options) *Pool {
	return &Pool{opts: opts, open: sql.Open}
}

// NewPoolFromDB wraps an already opened handle.
func NewPoolFromDB(db *sql.DB, queryTimeout time.Duration) *Pool {
	p := &Pool{opts: Options{QueryTimeout: queryTimeout}, open: sql.Open}
	p.db.Store(db)
	return p
}

func (p *Pool) Init(ctx context.Context) error {
	if p.db.Load() != nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db.Load() != nil {
		return nil
	}

	db, err := p.open("mysql", p.opts.DSN)
	if err != nil {
		return fmt.Errorf("%w: open: %w", domain.ErrDataStoreUnavailable, err)
	}
	if p.opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(p.opts.MaxOpenConns)
		db.SetMaxIdleConns(p.opts.MaxOpenConns)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	pctx := ctx
	if p.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, p.opts.QueryTimeout)
		defer cancel()
	}
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: ping: %w", domain.ErrDataStoreUnavailable, err)
	}

	p.db.Store(db)
	log.Info().Msg("database pool initialized")
	return nil
}

// Acquire pins one connection for the lifetime of the returned session.
// Waiting for a free connection is bounded by the query timeout.
func (p *Pool) Acquire(ctx context.Context) (domain.Session, error) {
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	cctx := ctx
	if p.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, p.opts.QueryTimeout)
		defer cancel()
	}
	conn, err := p.db.Load().Conn(cctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire: %w", domain.ErrDataStoreUnavailable, err)
	}
	return &Session{conn: conn, timeout: p.opts.QueryTimeout}, nil
}

func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	db := p.db.Swap(nil)
	if db == nil {
		return nil
	}
	return db.Close()
}
