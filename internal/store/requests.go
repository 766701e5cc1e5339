package store

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/librarium-app/librarium/internal/core"
)

const (
	colRequestID   = "id"
	colRequestedAt = "requested_at"
)

// InsertRequest stores a pending registration request.
func (s *Store) InsertRequest(ctx context.Context, request core.RegistrationRequest) error {
	insertStmt := builder().
		Insert(tableRequests).
		Cols(colRequestID, colUsername, colPasswordHash, colEmail, colRequestedAt).
		Vals(goqu.Vals{request.ID, request.Username, request.PasswordHash, request.Email, request.RequestedAt})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	_, err := s.execAffected(ctx, sqlQuery)

	return err
}

// GetRequest loads one pending request by id. Returns ErrRequestNotFound when
// the id is unknown or the request was already processed.
func (s *Store) GetRequest(ctx context.Context, id string) (core.RegistrationRequest, error) {
	requests, err := s.scanRequests(ctx, requestSelect().Where(goqu.C(colRequestID).Eq(id)))
	if err != nil {
		return core.RegistrationRequest{}, err
	}

	if len(requests) == 0 {
		return core.RegistrationRequest{}, ErrRequestNotFound
	}

	return requests[0], nil
}

// ListRequests returns all pending requests, oldest first.
func (s *Store) ListRequests(ctx context.Context) ([]core.RegistrationRequest, error) {
	return s.scanRequests(ctx, requestSelect().Order(goqu.I(colRequestedAt).Asc()))
}

// CountRequests returns the number of pending requests.
func (s *Store) CountRequests(ctx context.Context) (int, error) {
	return s.countQuery(ctx, builder().From(tableRequests).Select(goqu.COUNT(goqu.Star())))
}

// RequestExistsForUsername reports whether a pending request already claims
// the username.
func (s *Store) RequestExistsForUsername(ctx context.Context, username core.UsernameString) (bool, error) {
	count, err := s.countQuery(ctx, builder().
		From(tableRequests).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colUsername).Eq(username)))
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// DeleteRequest consumes a pending request; approval and rejection are both terminal.
func (s *Store) DeleteRequest(ctx context.Context, id string) error {
	deleteStmt := builder().Delete(tableRequests).Where(goqu.C(colRequestID).Eq(id))

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	_, err := s.execAffected(ctx, sqlQuery)

	return err
}

func requestSelect() *goqu.SelectDataset {
	return builder().
		From(tableRequests).
		Select(colRequestID, colUsername, colPasswordHash, colEmail, colRequestedAt)
}

func (s *Store) scanRequests(ctx context.Context, stmt *goqu.SelectDataset) ([]core.RegistrationRequest, error) {
	rows, err := s.queryRows(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	requests := make([]core.RegistrationRequest, 0)

	for rows.Next() {
		var (
			request     core.RegistrationRequest
			requestedAt time.Time
		)

		if scanErr := rows.Scan(&request.ID, &request.Username, &request.PasswordHash, &request.Email, &requestedAt); scanErr != nil {
			if s.logger != nil {
				s.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error())
			}

			return nil, errors.Join(ErrScanFailed, scanErr)
		}

		request.RequestedAt = requestedAt

		requests = append(requests, request)
	}

	return requests, nil
}
