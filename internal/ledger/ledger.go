package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/librarium-app/librarium/internal/core"
	"github.com/librarium-app/librarium/internal/store/adapters"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	tableActivityLog = "activity_log"

	colSequenceNumber = "sequence_number"
	colUsername       = "username"
	colBookID         = "book_id"
	colPayload        = "payload"
	colAction         = "action"
	colOccurredAt     = "occurred_at"

	dialectPostgres = "postgres"

	logMsgScanRowFailed  = "failed to scan ledger row"
	logMsgCloseRowFailed = "failed to close ledger rows"
	logAttrError         = "error"
)

// Logger is the minimal logging surface the ledger needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// payloadDocument is the wire form of one record inside the JSONB column.
// The flat columns exist for indexing; the payload is the authoritative copy.
type payloadDocument struct {
	Username   string    `json:"username"`
	BookID     string    `json:"bookId"`
	BookTitle  string    `json:"bookTitle"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Ledger is the Postgres-backed append-only activity log.
type Ledger struct {
	db     adapters.DBAdapter
	logger Logger
}

// Option defines a functional option for configuring a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger for the Ledger.
func WithLogger(logger Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// NewLedgerFromPGXPool creates a Ledger on a pgx connection pool.
func NewLedgerFromPGXPool(db *pgxpool.Pool, options ...Option) (*Ledger, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newLedger(adapters.NewPGXAdapter(db), options...), nil
}

// NewLedgerFromSQLDB creates a Ledger on a database/sql handle.
func NewLedgerFromSQLDB(db *sql.DB, options ...Option) (*Ledger, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newLedger(adapters.NewSQLAdapter(db), options...), nil
}

// NewLedgerFromSQLX creates a Ledger on an sqlx handle.
func NewLedgerFromSQLX(db *sqlx.DB, options ...Option) (*Ledger, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newLedger(adapters.NewSQLXAdapter(db), options...), nil
}

// NewLedgerFromAdapter creates a Ledger on a raw adapter, used by tests.
func NewLedgerFromAdapter(db adapters.DBAdapter, options ...Option) *Ledger {
	return newLedger(db, options...)
}

func newLedger(db adapters.DBAdapter, options ...Option) *Ledger {
	ledger := &Ledger{db: db}

	for _, option := range options {
		option(ledger)
	}

	return ledger
}

// Append writes one immutable record. The database assigns the sequence
// number; the value on the input record is ignored.
func (l *Ledger) Append(ctx context.Context, record core.ActivityRecord) error {
	payload, marshalErr := json.Marshal(payloadDocument{
		Username:   record.Username,
		BookID:     record.BookID,
		BookTitle:  record.BookTitle,
		Action:     string(record.Action),
		OccurredAt: record.OccurredAt,
	})
	if marshalErr != nil {
		return errors.Join(ErrMarshalingPayloadFailed, marshalErr)
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(tableActivityLog).
		Cols(colUsername, colBookID, colPayload, colAction, colOccurredAt).
		Vals(goqu.Vals{record.Username, record.BookID, string(payload), string(record.Action), record.OccurredAt})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	if _, execErr := l.db.Exec(ctx, sqlQuery); execErr != nil {
		return errors.Join(ErrAppendFailed, execErr)
	}

	return nil
}

// CountByUserAction counts the records of one action for one user.
func (l *Ledger) CountByUserAction(ctx context.Context, username core.UsernameString, action core.ActivityAction) (int, error) {
	countStmt := goqu.Dialect(dialectPostgres).
		From(tableActivityLog).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.C(colUsername).Eq(username),
			goqu.C(colAction).Eq(string(action)),
		)

	sqlQuery, _, toSQLErr := countStmt.ToSQL()
	if toSQLErr != nil {
		return 0, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := l.db.Query(ctx, sqlQuery)
	if queryErr != nil {
		return 0, errors.Join(ErrQueryFailed, queryErr)
	}
	defer l.closeRows(rows)

	count := 0
	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			return 0, errors.Join(ErrQueryFailed, scanErr)
		}
	}

	return count, nil
}

// RecentByUser returns the newest records for one user, most recent first.
// A limit of 0 returns the full history.
func (l *Ledger) RecentByUser(ctx context.Context, username core.UsernameString, limit uint) ([]core.ActivityRecord, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(tableActivityLog).
		Select(colSequenceNumber, colPayload).
		Where(goqu.C(colUsername).Eq(username)).
		Order(goqu.I(colSequenceNumber).Desc())

	if limit > 0 {
		selectStmt = selectStmt.Limit(limit)
	}

	return l.queryRecords(ctx, selectStmt)
}

// All returns the entire ledger in append order.
func (l *Ledger) All(ctx context.Context) ([]core.ActivityRecord, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(tableActivityLog).
		Select(colSequenceNumber, colPayload).
		Order(goqu.I(colSequenceNumber).Asc())

	return l.queryRecords(ctx, selectStmt)
}

func (l *Ledger) queryRecords(ctx context.Context, stmt *goqu.SelectDataset) ([]core.ActivityRecord, error) {
	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := l.db.Query(ctx, sqlQuery)
	if queryErr != nil {
		return nil, errors.Join(ErrQueryFailed, queryErr)
	}
	defer l.closeRows(rows)

	records := make([]core.ActivityRecord, 0)

	for rows.Next() {
		var (
			sequenceNumber int64
			payload        string
		)

		if scanErr := rows.Scan(&sequenceNumber, &payload); scanErr != nil {
			if l.logger != nil {
				l.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error())
			}

			return nil, errors.Join(ErrQueryFailed, scanErr)
		}

		var document payloadDocument
		if unmarshalErr := json.Unmarshal([]byte(payload), &document); unmarshalErr != nil {
			return nil, errors.Join(ErrUnmarshalingPayloadFailed, unmarshalErr)
		}

		records = append(records, core.ActivityRecord{
			SequenceNumber: uint64(sequenceNumber),
			Username:       document.Username,
			BookID:         document.BookID,
			BookTitle:      document.BookTitle,
			Action:         core.ActivityAction(document.Action),
			OccurredAt:     document.OccurredAt,
		})
	}

	return records, nil
}

func (l *Ledger) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if l.logger != nil {
			l.logger.Warn(logMsgCloseRowFailed, logAttrError, closeErr.Error())
		}
	}
}
