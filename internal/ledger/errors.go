package ledger

import "errors"

var (
	// ErrNilDatabaseConnection is returned when a constructor gets a nil handle.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrAppendFailed is returned when writing a ledger record fails.
	ErrAppendFailed = errors.New("failed to append activity record")

	// ErrQueryFailed is returned when reading ledger records fails.
	ErrQueryFailed = errors.New("failed to query activity records")

	// ErrBuildingQueryFailed is returned when SQL generation fails.
	ErrBuildingQueryFailed = errors.New("failed to build the database query")

	// ErrMarshalingPayloadFailed is returned when a record cannot be
	// serialized into its JSONB payload.
	ErrMarshalingPayloadFailed = errors.New("failed to marshal activity payload")

	// ErrUnmarshalingPayloadFailed is returned when a stored payload cannot
	// be decoded back into a record.
	ErrUnmarshalingPayloadFailed = errors.New("failed to unmarshal activity payload")
)
