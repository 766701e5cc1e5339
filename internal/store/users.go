package store

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/librarium-app/librarium/internal/core"
)

const (
	colUsername     = "username"
	colPasswordHash = "password_hash"
	colRole         = "role"
	colEmail        = "email"
	colApproved     = "approved"
)

// InsertUser adds a new account. Returns ErrUserExists when the username is taken.
func (s *Store) InsertUser(ctx context.Context, user core.User) error {
	if _, err := s.GetUser(ctx, user.Username); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	insertStmt := builder().
		Insert(tableUsers).
		Cols(colUsername, colPasswordHash, colRole, colEmail, colApproved, colCreatedAt).
		Vals(goqu.Vals{user.Username, user.PasswordHash, string(user.Role), user.Email, user.Approved, user.CreatedAt})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	_, err := s.execAffected(ctx, sqlQuery)

	return err
}

// GetUser loads one account by username. Returns ErrUserNotFound for unknown names.
func (s *Store) GetUser(ctx context.Context, username core.UsernameString) (core.User, error) {
	return s.getOneUser(ctx, userSelect().Where(goqu.C(colUsername).Eq(username)))
}

// GetUserByEmail loads one account by email. Returns ErrUserNotFound when no
// account carries the address.
func (s *Store) GetUserByEmail(ctx context.Context, email core.EmailString) (core.User, error) {
	return s.getOneUser(ctx, userSelect().Where(goqu.C(colEmail).Eq(email)))
}

// ListUsers returns accounts, optionally narrowed to one role, oldest first.
func (s *Store) ListUsers(ctx context.Context, role core.Role) ([]core.User, error) {
	selectStmt := userSelect().Order(goqu.I(colCreatedAt).Asc())
	if role != "" {
		selectStmt = selectStmt.Where(goqu.C(colRole).Eq(string(role)))
	}

	return s.scanUsers(ctx, selectStmt)
}

// CountUsers returns the number of accounts, optionally narrowed to one role.
func (s *Store) CountUsers(ctx context.Context, role core.Role) (int, error) {
	countStmt := builder().From(tableUsers).Select(goqu.COUNT(goqu.Star()))
	if role != "" {
		countStmt = countStmt.Where(goqu.C(colRole).Eq(string(role)))
	}

	return s.countQuery(ctx, countStmt)
}

// DeleteUser removes one account by username.
func (s *Store) DeleteUser(ctx context.Context, username core.UsernameString) error {
	deleteStmt := builder().Delete(tableUsers).Where(goqu.C(colUsername).Eq(username))

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, err := s.execAffected(ctx, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// UpdatePasswordByEmail replaces the password hash of the account carrying the
// given email address.
func (s *Store) UpdatePasswordByEmail(ctx context.Context, email core.EmailString, passwordHash string) error {
	updateStmt := builder().
		Update(tableUsers).
		Set(goqu.Record{colPasswordHash: passwordHash}).
		Where(goqu.C(colEmail).Eq(email))

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, err := s.execAffected(ctx, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func userSelect() *goqu.SelectDataset {
	return builder().
		From(tableUsers).
		Select(colUsername, colPasswordHash, colRole, colEmail, colApproved, colCreatedAt)
}

func (s *Store) getOneUser(ctx context.Context, stmt *goqu.SelectDataset) (core.User, error) {
	users, err := s.scanUsers(ctx, stmt)
	if err != nil {
		return core.User{}, err
	}

	if len(users) == 0 {
		return core.User{}, ErrUserNotFound
	}

	return users[0], nil
}

func (s *Store) scanUsers(ctx context.Context, stmt *goqu.SelectDataset) ([]core.User, error) {
	rows, err := s.queryRows(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	users := make([]core.User, 0)

	for rows.Next() {
		var (
			user      core.User
			role      string
			createdAt time.Time
		)

		if scanErr := rows.Scan(&user.Username, &user.PasswordHash, &role, &user.Email, &user.Approved, &createdAt); scanErr != nil {
			if s.logger != nil {
				s.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error())
			}

			return nil, errors.Join(ErrScanFailed, scanErr)
		}

		user.Role = core.Role(role)
		user.CreatedAt = createdAt

		users = append(users, user)
	}

	return users, nil
}
