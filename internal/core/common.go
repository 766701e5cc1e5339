package core

import (
	"time"
)

// Instead of implementing full value objects, alias types and helper methods are used here ...

// UsernameString represents a user identity (unique username)
type UsernameString = string

// BookIDString represents a book identifier
type BookIDString = string

// EmailString represents an email address
type EmailString = string

// OccurredAtTS represents when something happened
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to OccurredAtTS with UTC normalization and microsecond precision
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}
