package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/librarium-app/librarium/internal/core"
	"github.com/librarium-app/librarium/internal/store"
)

const (
	msgErrorAddingBook   = "Error adding book."
	msgErrorDeletingBook = "Error deleting book."
	msgBookNotFound      = "Book not found."
)

type homePageData struct {
	baseData
	Books     []core.Book
	Search    string
	Stats     core.OverviewStats
	UserStats core.UserStats
}

// handleHome renders the catalog. Admins get the overview counts, patrons
// their own issuance figures. The optional search narrows by title or author.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	state := s.state(r)
	search := r.URL.Query().Get("search")

	books, err := s.documents.ListBooks(r.Context(), store.BookFilter{Text: search})
	if err != nil {
		s.internalError(w, r, err)

		return
	}

	data := homePageData{
		baseData: s.base(w, r),
		Books:    books,
		Search:   search,
	}

	if state.user.IsAdmin() {
		if data.Stats, err = s.stats.Overview(r.Context()); err != nil {
			s.internalError(w, r, err)

			return
		}
	} else {
		if data.UserStats, err = s.stats.ForUser(r.Context(), state.user.Username); err != nil {
			s.internalError(w, r, err)

			return
		}
	}

	s.render(w, "home.html", data)
}

func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	state := s.state(r)
	bookID := r.FormValue("id")

	decision, err := s.engine.IssueBook(r.Context(), bookID, state.user.Username)
	if err != nil {
		s.internalError(w, r, err)

		return
	}

	if !decision.IsSuccess() {
		s.flashRedirect(w, r, "/home", flashError, decision.FailureReason())

		return
	}

	s.flashRedirect(w, r, "/home", flashSuccess,
		fmt.Sprintf("%q has been issued to you.", decision.Record.BookTitle))
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	state := s.state(r)
	bookID := r.FormValue("id")

	decision, err := s.engine.ReturnBook(r.Context(), bookID, state.user.Username)
	if err != nil {
		s.internalError(w, r, err)

		return
	}

	if !decision.IsSuccess() {
		s.flashRedirect(w, r, "/home", flashError, decision.FailureReason())

		return
	}

	s.flashRedirect(w, r, "/home", flashSuccess,
		fmt.Sprintf("%q has been returned successfully.", decision.Record.BookTitle))
}

type adminBooksData struct {
	baseData
	Books []core.Book
	Stats core.OverviewStats
}

func (s *Server) handleAdminBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.documents.ListBooks(r.Context(), store.BookFilter{})
	if err != nil {
		s.internalError(w, r, err)

		return
	}

	overview, err := s.stats.Overview(r.Context())
	if err != nil {
		s.internalError(w, r, err)

		return
	}

	s.render(w, "books.html", adminBooksData{
		baseData: s.base(w, r),
		Books:    books,
		Stats:    overview,
	})
}

func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	title := r.FormValue("title")
	author := r.FormValue("author")
	category := r.FormValue("category")

	book := core.BuildBook(title, author, category, s.clock())

	if err := s.documents.InsertBook(r.Context(), book); err != nil {
		s.flashRedirect(w, r, "/admin/books", flashError, msgErrorAddingBook)

		return
	}

	s.flashRedirect(w, r, "/admin/books", flashSuccess,
		fmt.Sprintf("Book %q added successfully.", title))
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.documents.DeleteBook(r.Context(), r.FormValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			s.flashRedirect(w, r, "/admin/books", flashError, msgBookNotFound)
		} else {
			s.flashRedirect(w, r, "/admin/books", flashError, msgErrorDeletingBook)
		}

		return
	}

	s.flashRedirect(w, r, "/admin/books", flashSuccess,
		fmt.Sprintf("Book %q deleted successfully.", book.Title))
}
