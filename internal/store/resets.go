package store

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/librarium-app/librarium/internal/core"
)

const (
	colResetID        = "id"
	colResetToken     = "token"
	colResetCreatedAt = "created_at"
)

// SaveReset stores a fresh reset token for the email, superseding any token
// issued earlier. Only the newest token for an address can ever be used.
func (s *Store) SaveReset(ctx context.Context, reset core.PasswordReset) error {
	deleteStmt := builder().Delete(tableResets).Where(goqu.C(colEmail).Eq(reset.Email))

	deleteSQL, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	if _, err := s.execAffected(ctx, deleteSQL); err != nil {
		return err
	}

	insertStmt := builder().
		Insert(tableResets).
		Cols(colResetID, colEmail, colResetToken, colResetCreatedAt).
		Vals(goqu.Vals{reset.ID, reset.Email, reset.Token, reset.CreatedAt})

	insertSQL, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	_, err := s.execAffected(ctx, insertSQL)

	return err
}

// GetResetByToken resolves a token to its reset request. Expired tokens are
// purged on sight and reported as not found, same as unknown tokens.
func (s *Store) GetResetByToken(ctx context.Context, token string, now time.Time) (core.PasswordReset, error) {
	selectStmt := builder().
		From(tableResets).
		Select(colResetID, colEmail, colResetToken, colResetCreatedAt).
		Where(goqu.C(colResetToken).Eq(token))

	rows, err := s.queryRows(ctx, selectStmt)
	if err != nil {
		return core.PasswordReset{}, err
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		return core.PasswordReset{}, ErrResetNotFound
	}

	var (
		reset     core.PasswordReset
		createdAt time.Time
	)

	if scanErr := rows.Scan(&reset.ID, &reset.Email, &reset.Token, &createdAt); scanErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error())
		}

		return core.PasswordReset{}, errors.Join(ErrScanFailed, scanErr)
	}

	reset.CreatedAt = createdAt

	if reset.IsExpired(now) {
		if deleteErr := s.DeleteReset(ctx, reset.ID); deleteErr != nil && s.logger != nil {
			s.logger.Warn(logMsgDeleteExpiredResetFailed, logAttrError, deleteErr.Error())
		}

		return core.PasswordReset{}, ErrResetNotFound
	}

	return reset, nil
}

// DeleteReset removes a reset request, typically after the password was changed.
func (s *Store) DeleteReset(ctx context.Context, id string) error {
	deleteStmt := builder().Delete(tableResets).Where(goqu.C(colResetID).Eq(id))

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	_, err := s.execAffected(ctx, sqlQuery)

	return err
}
