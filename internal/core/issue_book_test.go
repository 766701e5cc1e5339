package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/librarium-app/librarium/internal/core"
)

func Test_DecideIssue_Success_WhenBookIsAvailable(t *testing.T) {
	// arrange
	now := time.Now()
	book := core.BuildBook("The Alchemist", "Paulo Coelho", "Fiction", now.Add(-time.Hour))

	// act
	result := core.DecideIssue(book, true, "alice", now)

	// assert
	assert.True(t, result.IsSuccess())
	assert.Equal(t, core.ActionIssued, result.Record.Action)
	assert.Equal(t, "alice", result.Record.Username)
	assert.Equal(t, book.ID, result.Record.BookID)
	assert.Equal(t, "The Alchemist", result.Record.BookTitle)
}

func Test_DecideIssue_Failure_WhenBookIsMissing(t *testing.T) {
	// act
	result := core.DecideIssue(core.Book{}, false, "alice", time.Now())

	// assert
	assert.False(t, result.IsSuccess())
	assert.Equal(t, core.FailureReasonCannotIssue, result.FailureReason())
}

func Test_DecideIssue_Failure_WhenBookAlreadyIssued(t *testing.T) {
	// arrange
	now := time.Now()
	book := core.BuildBook("1984", "George Orwell", "Dystopia", now.Add(-time.Hour))
	book.State = core.BookStateIssued
	book.IssuedTo = "bob"

	// act - even the current holder cannot issue an Issued book again
	for _, requester := range []string{"alice", "bob"} {
		result := core.DecideIssue(book, true, requester, now)

		// assert
		assert.False(t, result.IsSuccess(), "requester %q", requester)
		assert.Equal(t, core.FailureReasonCannotIssue, result.FailureReason())
	}
}
