package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/librarium-app/librarium/internal/store/adapters"
)

const (
	tableBooks     = "books"
	tableUsers     = "users"
	tableRequests  = "registration_requests"
	tableSuspended = "suspended_users"
	tableResets    = "password_resets"

	dialectPostgres = "postgres"

	logMsgDBQueryFailed            = "database query execution failed"
	logMsgDBExecFailed             = "database execution failed"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgCloseRowFailed           = "failed to close database rows"
	logMsgDeleteExpiredResetFailed = "failed to delete expired password reset"

	logAttrError = "error"
	logAttrQuery = "query"
)

// Logger interface for SQL logging, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Store is the Postgres-backed document store holding the books, users,
// registration_requests, suspended_users, and password_resets collections.
// It leverages a database adapter so it works with pgxpool, sqlx, or sql.DB.
type Store struct {
	db     adapters.DBAdapter
	logger Logger
}

// Option defines a functional option for configuring a Store.
type Option func(*Store)

// WithLogger sets the logger for the Store.
func WithLogger(logger Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...), nil
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...), nil
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...), nil
}

// NewStoreFromAdapter creates a new Store over an already wrapped adapter.
// Used by tests with fake adapters.
func NewStoreFromAdapter(db adapters.DBAdapter, options ...Option) *Store {
	return newStore(db, options...)
}

func newStore(db adapters.DBAdapter, options ...Option) *Store {
	s := &Store{db: db}

	for _, option := range options {
		option(s)
	}

	return s
}

// InitSchema creates the collection tables if they do not exist yet.
// The field defaults mirror the documents of the original data model:
// state defaults to 'Available' and issued_to to NULL.
func (s *Store) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS books (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT 'Available',
			issued_to TEXT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			email TEXT NOT NULL DEFAULT '',
			approved BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS registration_requests (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			requested_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS suspended_users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			reason TEXT NOT NULL DEFAULT 'Account deleted by admin',
			suspended_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS password_resets (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS activity_log (
			sequence_number BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			book_id UUID NOT NULL,
			payload JSONB NOT NULL,
			action TEXT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_log_username ON activity_log (username, occurred_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_books_state ON books (state)`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(ctx, statement); err != nil {
			return errors.Join(ErrExecFailed, err)
		}
	}

	return nil
}

// builder returns the goqu dialect entry point all collection queries start from.
func builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// queryRows executes a built select statement and returns the raw rows.
func (s *Store) queryRows(ctx context.Context, stmt *goqu.SelectDataset) (adapters.DBRows, error) {
	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := s.db.Query(ctx, sqlQuery)
	if queryErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		}

		return nil, errors.Join(ErrQueryFailed, queryErr)
	}

	return rows, nil
}

// execAffected executes a built statement and returns the affected row count.
func (s *Store) execAffected(ctx context.Context, sqlQuery string) (int64, error) {
	result, execErr := s.db.Exec(ctx, sqlQuery)
	if execErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		}

		return 0, errors.Join(ErrExecFailed, execErr)
	}

	rowsAffected, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		return 0, errors.Join(ErrExecFailed, rowsErr)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (s *Store) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgCloseRowFailed, logAttrError, closeErr.Error())
		}
	}
}

// countQuery executes a built COUNT(*) statement and scans the single value.
func (s *Store) countQuery(ctx context.Context, stmt *goqu.SelectDataset) (int, error) {
	rows, err := s.queryRows(ctx, stmt)
	if err != nil {
		return 0, err
	}
	defer s.closeRows(rows)

	count := 0
	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			if s.logger != nil {
				s.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error())
			}

			return 0, errors.Join(ErrScanFailed, scanErr)
		}
	}

	return count, nil
}
