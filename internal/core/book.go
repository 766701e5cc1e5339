package core

import (
	"time"

	"github.com/google/uuid"
)

// BookState is the lifecycle state of a Book.
type BookState string

const (
	// BookStateAvailable means the book sits on the shelf and can be issued.
	BookStateAvailable BookState = "Available"

	// BookStateIssued means the book is held by the user referenced in IssuedTo.
	BookStateIssued BookState = "Issued"
)

// Book represents one catalog entry.
//
// Invariant: State == BookStateIssued if and only if IssuedTo != "".
type Book struct {
	ID        BookIDString
	Title     string
	Author    string
	Category  string
	State     BookState
	IssuedTo  UsernameString
	CreatedAt time.Time
}

// BuildBook creates a new Available Book with a fresh identity.
func BuildBook(title, author, category string, createdAt time.Time) Book {
	return Book{
		ID:        uuid.New().String(),
		Title:     title,
		Author:    author,
		Category:  category,
		State:     BookStateAvailable,
		IssuedTo:  "",
		CreatedAt: ToOccurredAt(createdAt),
	}
}

// IsAvailable reports whether the book can currently be issued.
func (b Book) IsAvailable() bool {
	return b.State == BookStateAvailable
}

// IsIssuedTo reports whether the book is currently held by the given user.
// The ownership check is exact identity equality, never case-insensitive.
func (b Book) IsIssuedTo(username UsernameString) bool {
	return b.State == BookStateIssued && b.IssuedTo == username
}

// StateConsistent reports whether the State/IssuedTo invariant holds.
func (b Book) StateConsistent() bool {
	if b.State == BookStateIssued {
		return b.IssuedTo != ""
	}

	return b.IssuedTo == ""
}
