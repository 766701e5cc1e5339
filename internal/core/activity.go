package core

import (
	"slices"
	"time"
)

// ActivityAction discriminates ledger entries.
type ActivityAction string

const (
	// ActionIssued records a successful issue transition.
	ActionIssued ActivityAction = "issued"

	// ActionReturned records a successful return transition.
	ActionReturned ActivityAction = "returned"
)

// ActivityRecords is a slice of ActivityRecord instances.
type ActivityRecords = []ActivityRecord

// ActivityRecord is one immutable entry of the issuance ledger.
//
// BookTitle is a snapshot taken at append time: it stays authoritative for
// display even if the live book is later renamed or deleted.
type ActivityRecord struct {
	SequenceNumber uint64
	Username       UsernameString
	BookID         BookIDString
	BookTitle      string
	Action         ActivityAction
	OccurredAt     OccurredAtTS
}

// BuildActivityRecord creates a ledger entry for the given transition.
// The SequenceNumber is assigned by the ledger on append.
func BuildActivityRecord(username UsernameString, bookID BookIDString, bookTitle string, action ActivityAction, occurredAt time.Time) ActivityRecord {
	return ActivityRecord{
		Username:   username,
		BookID:     bookID,
		BookTitle:  bookTitle,
		Action:     action,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// CountByAction projects the number of records for one user and action.
func CountByAction(records ActivityRecords, username UsernameString, action ActivityAction) int {
	count := 0

	for _, record := range records {
		if record.Username == username && record.Action == action {
			count++
		}
	}

	return count
}

// MostRecentFirst projects up to limit records for one user, ordered
// descending by timestamp, for "recent activity" views.
func MostRecentFirst(records ActivityRecords, username UsernameString, limit int) ActivityRecords {
	matching := make(ActivityRecords, 0)

	for _, record := range records {
		if record.Username == username {
			matching = append(matching, record)
		}
	}

	slices.SortFunc(matching, func(a, b ActivityRecord) int {
		return b.OccurredAt.Compare(a.OccurredAt)
	})

	if limit > 0 && len(matching) > limit {
		matching = matching[:limit]
	}

	return matching
}
