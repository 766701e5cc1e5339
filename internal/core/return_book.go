package core

import (
	"time"
)

// FailureReasonCannotReturn is the user-visible reason for every failed return
// attempt: missing book, book not Issued, or an ownership mismatch.
const FailureReasonCannotReturn = "Book cannot be returned."

// DecideReturn implements the business logic for the Issued -> Available transition.
// This is a pure function with no side effects - it takes the current book state
// and the requesting user and returns the decision based on the lifecycle rules.
//
// Business Rules:
//
//	GIVEN: A book in the catalog and an authenticated requester
//	WHEN: the requester asks to return the book
//	THEN: the book becomes Available, IssuedTo is cleared, and one
//	      ActivityRecord{action=returned} is appended
//	FAILURE: "Book cannot be returned." if the book is missing, not Issued,
//	         or held by a different user; the operation is a no-op
//
// The holder check is exact identity equality: a patron may only return a
// book they themselves hold.
func DecideReturn(book Book, found bool, requester UsernameString, now time.Time) DecisionResult {
	if !found {
		return FailureDecision(FailureReasonCannotReturn)
	}

	if !book.IsIssuedTo(requester) {
		return FailureDecision(FailureReasonCannotReturn)
	}

	return SuccessDecision(
		BuildActivityRecord(requester, book.ID, book.Title, ActionReturned, now),
	)
}
