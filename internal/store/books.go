package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/librarium-app/librarium/internal/core"
)

const (
	colBookID    = "id"
	colTitle     = "title"
	colAuthor    = "author"
	colCategory  = "category"
	colState     = "state"
	colIssuedTo  = "issued_to"
	colCreatedAt = "created_at"
)

// BookFilter narrows ListBooks and CountBooks results. Zero fields match
// everything. Text is a naive case-insensitive substring match on title and
// author.
type BookFilter struct {
	Category string
	State    core.BookState
	IssuedTo core.UsernameString
	Text     string
}

func (f BookFilter) apply(stmt *goqu.SelectDataset) *goqu.SelectDataset {
	if f.Category != "" {
		stmt = stmt.Where(goqu.C(colCategory).Eq(f.Category))
	}

	if f.State != "" {
		stmt = stmt.Where(goqu.C(colState).Eq(string(f.State)))
	}

	if f.IssuedTo != "" {
		stmt = stmt.Where(goqu.C(colIssuedTo).Eq(f.IssuedTo))
	}

	if f.Text != "" {
		pattern := "%" + f.Text + "%"
		stmt = stmt.Where(goqu.Or(
			goqu.C(colTitle).ILike(pattern),
			goqu.C(colAuthor).ILike(pattern),
		))
	}

	return stmt
}

// InsertBook adds a new book to the catalog.
func (s *Store) InsertBook(ctx context.Context, book core.Book) error {
	insertStmt := builder().
		Insert(tableBooks).
		Cols(colBookID, colTitle, colAuthor, colCategory, colState, colIssuedTo, colCreatedAt).
		Vals(goqu.Vals{book.ID, book.Title, book.Author, book.Category, string(book.State), issuedToValue(book.IssuedTo), book.CreatedAt})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	_, err := s.execAffected(ctx, sqlQuery)

	return err
}

// GetBook loads one book by id. Returns ErrBookNotFound for unknown ids.
func (s *Store) GetBook(ctx context.Context, id core.BookIDString) (core.Book, error) {
	selectStmt := bookSelect().Where(goqu.C(colBookID).Eq(id))

	books, err := s.scanBooks(ctx, selectStmt)
	if err != nil {
		return core.Book{}, err
	}

	if len(books) == 0 {
		return core.Book{}, ErrBookNotFound
	}

	return books[0], nil
}

// ListBooks returns the catalog rows matching the filter, oldest first.
func (s *Store) ListBooks(ctx context.Context, filter BookFilter) ([]core.Book, error) {
	selectStmt := filter.apply(bookSelect()).Order(goqu.I(colCreatedAt).Asc())

	return s.scanBooks(ctx, selectStmt)
}

// CountBooks returns the number of catalog rows matching the filter.
func (s *Store) CountBooks(ctx context.Context, filter BookFilter) (int, error) {
	countStmt := filter.apply(builder().From(tableBooks).Select(goqu.COUNT(goqu.Star())))

	return s.countQuery(ctx, countStmt)
}

// DeleteBook removes one book and returns the deleted record for reporting.
// Returns ErrBookNotFound for unknown ids.
func (s *Store) DeleteBook(ctx context.Context, id core.BookIDString) (core.Book, error) {
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return core.Book{}, err
	}

	deleteStmt := builder().Delete(tableBooks).Where(goqu.C(colBookID).Eq(id))

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return core.Book{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	if _, execErr := s.execAffected(ctx, sqlQuery); execErr != nil {
		return core.Book{}, execErr
	}

	return book, nil
}

// TransitionToIssued performs the atomic Available -> Issued compare-and-set.
// The WHERE clause on the current state makes two racing issue requests
// resolve to exactly one winner; the loser gets ErrConcurrencyConflict.
func (s *Store) TransitionToIssued(ctx context.Context, id core.BookIDString, requester core.UsernameString) error {
	updateStmt := builder().
		Update(tableBooks).
		Set(goqu.Record{colState: string(core.BookStateIssued), colIssuedTo: requester}).
		Where(
			goqu.C(colBookID).Eq(id),
			goqu.C(colState).Eq(string(core.BookStateAvailable)),
		)

	return s.execTransition(ctx, updateStmt)
}

// TransitionToAvailable performs the atomic Issued -> Available compare-and-set.
// The holder predicate is exact identity equality.
func (s *Store) TransitionToAvailable(ctx context.Context, id core.BookIDString, holder core.UsernameString) error {
	updateStmt := builder().
		Update(tableBooks).
		Set(goqu.Record{colState: string(core.BookStateAvailable), colIssuedTo: nil}).
		Where(
			goqu.C(colBookID).Eq(id),
			goqu.C(colState).Eq(string(core.BookStateIssued)),
			goqu.C(colIssuedTo).Eq(holder),
		)

	return s.execTransition(ctx, updateStmt)
}

func (s *Store) execTransition(ctx context.Context, updateStmt *goqu.UpdateDataset) error {
	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, execErr := s.execAffected(ctx, sqlQuery)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		return ErrConcurrencyConflict
	}

	return nil
}

func bookSelect() *goqu.SelectDataset {
	return builder().
		From(tableBooks).
		Select(colBookID, colTitle, colAuthor, colCategory, colState, colIssuedTo, colCreatedAt)
}

func (s *Store) scanBooks(ctx context.Context, stmt *goqu.SelectDataset) ([]core.Book, error) {
	rows, err := s.queryRows(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	books := make([]core.Book, 0)

	for rows.Next() {
		var (
			book      core.Book
			state     string
			issuedTo  sql.NullString
			createdAt time.Time
		)

		if scanErr := rows.Scan(&book.ID, &book.Title, &book.Author, &book.Category, &state, &issuedTo, &createdAt); scanErr != nil {
			if s.logger != nil {
				s.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error())
			}

			return nil, errors.Join(ErrScanFailed, scanErr)
		}

		book.State = core.BookState(state)
		book.IssuedTo = issuedTo.String
		book.CreatedAt = createdAt

		books = append(books, book)
	}

	return books, nil
}

// issuedToValue maps the empty holder to NULL so the state/holder invariant
// is visible at the storage level as well.
func issuedToValue(issuedTo core.UsernameString) any {
	if issuedTo == "" {
		return nil
	}

	return issuedTo
}
