package web

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/librarium-app/librarium/internal/registration"
	"github.com/librarium-app/librarium/internal/session"
)

// User-facing messages, verbatim across the whole account workflow.
const (
	msgSuspendedLogin     = "Your account has been suspended by admin. Contact administrator for assistance."
	msgSuspendedRegister  = "Account suspended by admin. Contact administrator for assistance."
	msgInvalidCredentials = "Invalid credentials."
	msgNotApproved        = "Account not approved yet."
	msgUsernameTaken      = "Username already taken or pending approval."
	msgRegistrationSent   = "Registration request sent. Wait for admin approval."
	msgRequestNotFound    = "Request not found or already processed."
	msgApprovalError      = "An error occurred while processing the approval."
	msgRejectionError     = "An error occurred while processing the rejection."
	msgNoAccountForEmail  = "No account found with that email address."
	msgResetMailSent      = "Password reset email sent. Check your inbox and spam folder."
	msgResetMailError     = "An error occurred while sending the reset email. Please try again."
	msgResetTokenInvalid  = "Invalid or expired reset token."
	msgPasswordsDontMatch = "Passwords do not match."
	msgPasswordUpdated    = "Password updated successfully. Please login with your new password."
	msgGenericError       = "An error occurred. Please try again."
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	state := s.state(r)

	if state.authenticated {
		http.Redirect(w, r, homeTarget(state), http.StatusFound)

		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

func homeTarget(state *sessionState) string {
	if state.user.IsAdmin() {
		return "/admin"
	}

	return "/home"
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login.html", s.base(w, r))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := s.accounts.Login(r.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, registration.ErrSuspended):
			s.flashRedirect(w, r, "/login", flashError, msgSuspendedLogin)
		case errors.Is(err, registration.ErrInvalidCredentials):
			s.flashRedirect(w, r, "/login", flashError, msgInvalidCredentials)
		case errors.Is(err, registration.ErrNotApproved):
			s.flashRedirect(w, r, "/login", flashError, msgNotApproved)
		default:
			s.internalError(w, r, err)
		}

		return
	}

	// fresh session id on login, the anonymous one is discarded
	state := s.state(r)
	if state.id != "" {
		_ = s.sessions.Delete(r.Context(), state.id)
	}

	id, createErr := s.sessions.Create(r.Context(), session.Data{Username: user.Username, Role: user.Role})
	if createErr != nil {
		s.internalError(w, r, createErr)

		return
	}

	s.setSessionCookie(w, id)

	if user.IsAdmin() {
		http.Redirect(w, r, "/admin", http.StatusFound)
	} else {
		http.Redirect(w, r, "/home", http.StatusFound)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	state := s.state(r)
	if state.id != "" {
		_ = s.sessions.Delete(r.Context(), state.id)
	}

	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "register.html", s.base(w, r))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	email := r.FormValue("email")

	if _, err := s.accounts.Submit(r.Context(), username, password, email); err != nil {
		switch {
		case errors.Is(err, registration.ErrSuspended):
			s.flashRedirect(w, r, "/register", flashError, msgSuspendedRegister)
		case errors.Is(err, registration.ErrUsernameTaken):
			s.flashRedirect(w, r, "/register", flashError, msgUsernameTaken)
		default:
			s.internalError(w, r, err)
		}

		return
	}

	s.flashRedirect(w, r, "/login", flashSuccess, msgRegistrationSent)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	request, err := s.accounts.Approve(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, registration.ErrRequestNotFound) {
			s.flashRedirect(w, r, "/approval-success", flashError, msgRequestNotFound)
		} else {
			s.flashRedirect(w, r, "/approval-success", flashError, msgApprovalError)
		}

		return
	}

	s.flashRedirect(w, r, "/approval-success", flashSuccess,
		fmt.Sprintf("User %q approved successfully.", request.Username))
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	request, err := s.accounts.Reject(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, registration.ErrRequestNotFound) {
			s.flashRedirect(w, r, "/approval-success", flashError, msgRequestNotFound)
		} else {
			s.flashRedirect(w, r, "/approval-success", flashError, msgRejectionError)
		}

		return
	}

	s.flashRedirect(w, r, "/approval-success", flashSuccess,
		fmt.Sprintf("User %q rejected successfully.", request.Username))
}

func (s *Server) handleApprovalSuccess(w http.ResponseWriter, r *http.Request) {
	s.render(w, "approval-success.html", s.base(w, r))
}

func (s *Server) handleForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "forgot-password.html", s.base(w, r))
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")

	if err := s.accounts.RequestReset(r.Context(), email); err != nil {
		if errors.Is(err, registration.ErrNoAccountForEmail) {
			s.flashRedirect(w, r, "/forgot-password", flashError, msgNoAccountForEmail)
		} else {
			s.flashRedirect(w, r, "/forgot-password", flashError, msgResetMailError)
		}

		return
	}

	s.flashRedirect(w, r, "/login", flashSuccess, msgResetMailSent)
}

type resetPageData struct {
	baseData
	Token string
}

func (s *Server) handleResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "reset-password.html", resetPageData{
		baseData: s.base(w, r),
		Token:    r.PathValue("token"),
	})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	password := r.FormValue("password")
	confirmPassword := r.FormValue("confirmPassword")

	if err := s.accounts.CompleteReset(r.Context(), token, password, confirmPassword); err != nil {
		switch {
		case errors.Is(err, registration.ErrPasswordMismatch):
			s.flashRedirect(w, r, "/reset-password/"+token, flashError, msgPasswordsDontMatch)
		case errors.Is(err, registration.ErrResetInvalid):
			s.flashRedirect(w, r, "/login", flashError, msgResetTokenInvalid)
		default:
			s.flashRedirect(w, r, "/reset-password/"+token, flashError, msgGenericError)
		}

		return
	}

	s.flashRedirect(w, r, "/login", flashSuccess, msgPasswordUpdated)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	if s.logger != nil {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}

	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
