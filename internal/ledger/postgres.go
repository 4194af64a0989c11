package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rgehrsitz/taxsim/internal/domain"
)

// PGStore keeps financial states in Postgres, for installations where the
// accounting system's reporting side already lives there.
type PGStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// OpenPostgres connects to the database at dsn.
func OpenPostgres(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to db: %w", err)
	}
	return &PGStore{pool: pool, now: time.Now}, nil
}

// Migrate creates the schema if it does not exist.
func (s *PGStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate db: %w", err)
		}
	}
	return nil
}

// SaveFinancialState replaces the stored state of state.FiscalYear.
func (s *PGStore) SaveFinancialState(ctx context.Context, state *domain.FinancialState) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := saveState(ctx, pgConn{q: tx}, state, s.now()); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// LoadFinancialState reads the stored state of year.
func (s *PGStore) LoadFinancialState(ctx context.Context, year string) (*domain.FinancialState, error) {
	return loadState(ctx, pgConn{q: s.pool}, year)
}

// Years lists the stored fiscal years.
func (s *PGStore) Years(ctx context.Context) ([]string, error) {
	return listYears(ctx, pgConn{q: s.pool})
}

// Close releases the pool.
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

type pgQueryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type pgConn struct {
	q pgQueryer
}

func (c pgConn) exec(ctx context.Context, query string, args ...any) error {
	_, err := c.q.Exec(ctx, rebind(query), args...)
	return err
}

func (c pgConn) each(ctx context.Context, query string, args []any, fn func(rowScanner) error) error {
	rows, err := c.q.Query(ctx, rebind(query), args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// rebind rewrites "?" placeholders to Postgres "$n" form.
func rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
