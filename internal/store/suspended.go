package store

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/librarium-app/librarium/internal/core"
)

const (
	colSuspendedID = "id"
	colReason      = "reason"
	colSuspendedAt = "suspended_at"
)

// InsertSuspension writes a permanent denylist entry. There is no delete
// counterpart; removal happens out-of-band by an operator.
func (s *Store) InsertSuspension(ctx context.Context, suspended core.SuspendedUser) error {
	insertStmt := builder().
		Insert(tableSuspended).
		Cols(colSuspendedID, colUsername, colEmail, colReason, colSuspendedAt).
		Vals(goqu.Vals{suspended.ID, suspended.Username, suspended.Email, suspended.Reason, suspended.SuspendedAt})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	_, err := s.execAffected(ctx, sqlQuery)

	return err
}

// IsSuspended reports whether a denylist entry matches the username or the
// email. Checked before credential lookup on login and before registration.
func (s *Store) IsSuspended(ctx context.Context, username core.UsernameString, email core.EmailString) (bool, error) {
	predicates := []goqu.Expression{goqu.C(colUsername).Eq(username)}
	if email != "" {
		predicates = append(predicates, goqu.C(colEmail).Eq(email))
	}

	count, err := s.countQuery(ctx, builder().
		From(tableSuspended).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.Or(predicates...)))
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ListSuspensions returns the denylist, most recent first.
func (s *Store) ListSuspensions(ctx context.Context) ([]core.SuspendedUser, error) {
	selectStmt := builder().
		From(tableSuspended).
		Select(colSuspendedID, colUsername, colEmail, colReason, colSuspendedAt).
		Order(goqu.I(colSuspendedAt).Desc())

	rows, err := s.queryRows(ctx, selectStmt)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	suspensions := make([]core.SuspendedUser, 0)

	for rows.Next() {
		var (
			suspended   core.SuspendedUser
			suspendedAt time.Time
		)

		if scanErr := rows.Scan(&suspended.ID, &suspended.Username, &suspended.Email, &suspended.Reason, &suspendedAt); scanErr != nil {
			if s.logger != nil {
				s.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error())
			}

			return nil, errors.Join(ErrScanFailed, scanErr)
		}

		suspended.SuspendedAt = suspendedAt

		suspensions = append(suspensions, suspended)
	}

	return suspensions, nil
}
