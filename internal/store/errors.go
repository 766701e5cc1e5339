package store

import "errors"

var (
	// ErrNilDatabaseConnection occurs when a nil connection is supplied to a factory method.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrBookNotFound occurs when the requested book id matches no catalog row.
	ErrBookNotFound = errors.New("book not found")

	// ErrUserNotFound occurs when the requested username or email matches no account.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists occurs when inserting an account whose username is taken.
	ErrUserExists = errors.New("user already exists")

	// ErrRequestNotFound occurs when a registration request id matches no pending row.
	ErrRequestNotFound = errors.New("registration request not found")

	// ErrResetNotFound occurs when a reset token is unknown or has expired.
	ErrResetNotFound = errors.New("password reset token not found")

	// ErrConcurrencyConflict occurs when a conditional state transition affected
	// no rows because another request won the race.
	ErrConcurrencyConflict = errors.New("concurrency conflict on book state transition")

	// ErrQueryFailed wraps database-level query errors.
	ErrQueryFailed = errors.New("database query execution failed")

	// ErrExecFailed wraps database-level execution errors.
	ErrExecFailed = errors.New("database execution failed")

	// ErrScanFailed wraps row scanning errors.
	ErrScanFailed = errors.New("failed to scan database row")

	// ErrBuildingQueryFailed wraps SQL building errors.
	ErrBuildingQueryFailed = errors.New("failed to build sql query")
)
