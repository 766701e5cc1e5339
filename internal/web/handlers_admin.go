package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/librarium-app/librarium/internal/core"
	"github.com/librarium-app/librarium/internal/registration"
	"github.com/librarium-app/librarium/internal/stats"
	"github.com/librarium-app/librarium/internal/store"
)

const (
	msgUserExists      = "Username already exists."
	msgUserNotFound    = "User not found."
	msgLastAdmin       = "Cannot delete the last administrator."
	msgErrorAddingUser = "Error adding user."
	msgErrorDeleting   = "Error deleting user."
)

type adminDashboardData struct {
	baseData
	Books           []core.Book
	Users           []core.User
	PendingRequests []core.RegistrationRequest
	Stats           core.OverviewStats
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	books, err := s.documents.ListBooks(r.Context(), store.BookFilter{})
	if err != nil {
		s.internalError(w, r, err)

		return
	}

	users, err := s.documents.ListUsers(r.Context(), "")
	if err != nil {
		s.internalError(w, r, err)

		return
	}

	pending, err := s.documents.ListRequests(r.Context())
	if err != nil {
		s.internalError(w, r, err)

		return
	}

	overview, err := s.stats.Overview(r.Context())
	if err != nil {
		s.internalError(w, r, err)

		return
	}

	s.render(w, "admin.html", adminDashboardData{
		baseData:        s.base(w, r),
		Books:           books,
		Users:           users,
		PendingRequests: pending,
		Stats:           overview,
	})
}

type adminUsersData struct {
	baseData
	Users           []core.User
	PendingRequests []core.RegistrationRequest
	Counts          stats.AccountCounts
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.documents.ListUsers(r.Context(), "")
	if err != nil {
		s.internalError(w, r, err)

		return
	}

	pending, err := s.documents.ListRequests(r.Context())
	if err != nil {
		s.internalError(w, r, err)

		return
	}

	counts, err := s.stats.Accounts(r.Context())
	if err != nil {
		s.internalError(w, r, err)

		return
	}

	s.render(w, "users.html", adminUsersData{
		baseData:        s.base(w, r),
		Users:           users,
		PendingRequests: pending,
		Counts:          counts,
	})
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	role := core.Role(r.FormValue("role"))
	email := r.FormValue("email")

	if role != core.RoleAdmin {
		role = core.RoleUser
	}

	if err := s.accounts.AddUser(r.Context(), username, password, role, email); err != nil {
		if errors.Is(err, registration.ErrUserExists) {
			s.flashRedirect(w, r, "/admin/users", flashError, msgUserExists)
		} else {
			s.flashRedirect(w, r, "/admin/users", flashError, msgErrorAddingUser)
		}

		return
	}

	s.flashRedirect(w, r, "/admin/users", flashSuccess,
		fmt.Sprintf("User %q added successfully.", username))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")

	deleted, err := s.accounts.DeleteUser(r.Context(), username)
	if err != nil {
		switch {
		case errors.Is(err, registration.ErrUserNotFound):
			s.flashRedirect(w, r, "/admin/users", flashError, msgUserNotFound)
		case errors.Is(err, registration.ErrLastAdmin):
			s.flashRedirect(w, r, "/admin/users", flashError, msgLastAdmin)
		default:
			s.flashRedirect(w, r, "/admin/users", flashError, msgErrorDeleting)
		}

		return
	}

	s.flashRedirect(w, r, "/admin/users", flashSuccess,
		fmt.Sprintf("User %q has been deleted and suspended from rejoining.", deleted.Username))
}

type userStatsData struct {
	baseData
	Reports []stats.UserReport
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	reports, err := s.stats.PerUserReport(r.Context())
	if err != nil {
		s.internalError(w, r, err)

		return
	}

	s.render(w, "user-stats.html", userStatsData{
		baseData: s.base(w, r),
		Reports:  reports,
	})
}
