package store_test

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/librarium-app/librarium/internal/store"
	"github.com/librarium-app/librarium/internal/store/adapters"
)

// fakeAdapter records every statement the store executes and serves canned
// result sets, so the tests can assert on the generated SQL without a
// database.
type fakeAdapter struct {
	queries []string
	execs   []string

	queryResults [][][]any // popped per Query call, empty result when drained
	affected     []int64   // popped per Exec call, 1 when drained
	queryErr     error
	execErr      error
}

func (f *fakeAdapter) Query(_ context.Context, query string) (adapters.DBRows, error) {
	f.queries = append(f.queries, query)

	if f.queryErr != nil {
		return nil, f.queryErr
	}

	var result [][]any
	if len(f.queryResults) > 0 {
		result = f.queryResults[0]
		f.queryResults = f.queryResults[1:]
	}

	return &fakeRows{rows: result}, nil
}

func (f *fakeAdapter) Exec(_ context.Context, query string) (adapters.DBResult, error) {
	f.execs = append(f.execs, query)

	if f.execErr != nil {
		return nil, f.execErr
	}

	rowsAffected := int64(1)
	if len(f.affected) > 0 {
		rowsAffected = f.affected[0]
		f.affected = f.affected[1:]
	}

	return fakeResult{rowsAffected: rowsAffected}, nil
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (f *fakeRows) Next() bool {
	if f.pos >= len(f.rows) {
		return false
	}

	f.pos++

	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	row := f.rows[f.pos-1]

	if len(dest) != len(row) {
		return fmt.Errorf("scan expects %d destinations, got %d", len(row), len(dest))
	}

	for i, value := range row {
		if err := assignValue(dest[i], value); err != nil {
			return err
		}
	}

	return nil
}

func (f *fakeRows) Close() error {
	return nil
}

type fakeResult struct {
	rowsAffected int64
}

func (f fakeResult) RowsAffected() (int64, error) {
	return f.rowsAffected, nil
}

func assignValue(dest, value any) error {
	switch d := dest.(type) {
	case *string:
		*d = value.(string)
	case *sql.NullString:
		if value == nil {
			*d = sql.NullString{}
		} else {
			*d = sql.NullString{String: value.(string), Valid: true}
		}
	case *time.Time:
		*d = value.(time.Time)
	case *bool:
		*d = value.(bool)
	case *int:
		*d = value.(int)
	case *int64:
		*d = value.(int64)
	default:
		return fmt.Errorf("unsupported scan destination %T", dest)
	}

	return nil
}

func newFakeStore(adapter *fakeAdapter) *store.Store {
	return store.NewStoreFromAdapter(adapter)
}
