package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rgehrsitz/taxsim/internal/domain"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLiteStore keeps financial states in a local SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at dsn. In-memory databases are
// limited to one connection so every query sees the same data.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate db: %w", err)
		}
	}
	return nil
}

// SaveFinancialState replaces the stored state of state.FiscalYear.
func (s *SQLiteStore) SaveFinancialState(ctx context.Context, state *domain.FinancialState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveState(ctx, sqlConn{q: tx}, state, s.now()); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadFinancialState reads the stored state of year.
func (s *SQLiteStore) LoadFinancialState(ctx context.Context, year string) (*domain.FinancialState, error) {
	return loadState(ctx, sqlConn{q: s.db}, year)
}

// Years lists the stored fiscal years.
func (s *SQLiteStore) Years(ctx context.Context) ([]string, error) {
	return listYears(ctx, sqlConn{q: s.db})
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqlQueryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type sqlConn struct {
	q sqlQueryer
}

func (c sqlConn) exec(ctx context.Context, query string, args ...any) error {
	_, err := c.q.ExecContext(ctx, query, args...)
	return err
}

func (c sqlConn) each(ctx context.Context, query string, args []any, fn func(rowScanner) error) error {
	rows, err := c.q.QueryContext(ctx, query, args...)
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
