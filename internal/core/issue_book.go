package core

import (
	"time"
)

// FailureReasonCannotIssue is the user-visible reason for every failed issue
// attempt. The original surface deliberately does not distinguish a missing
// book from an already-issued one.
const FailureReasonCannotIssue = "Book cannot be issued."

// DecideIssue implements the business logic for the Available -> Issued transition.
// This is a pure function with no side effects - it takes the current book state
// and the requesting user and returns the decision based on the lifecycle rules.
//
// Business Rules:
//
//	GIVEN: A book in the catalog and an authenticated requester
//	WHEN: the requester asks to issue the book
//	THEN: the book becomes Issued, bound to the requester, and one
//	      ActivityRecord{action=issued} is appended
//	FAILURE: "Book cannot be issued." if the book is missing or not Available;
//	         the operation is a no-op, state and ledger stay unchanged
func DecideIssue(book Book, found bool, requester UsernameString, now time.Time) DecisionResult {
	if !found {
		return FailureDecision(FailureReasonCannotIssue)
	}

	if !book.IsAvailable() {
		return FailureDecision(FailureReasonCannotIssue)
	}

	return SuccessDecision(
		BuildActivityRecord(requester, book.ID, book.Title, ActionIssued, now),
	)
}
