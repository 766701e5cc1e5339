package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/librarium-app/librarium/internal/core"
	"github.com/librarium-app/librarium/internal/session"
)

const sessionCookieName = "librarium_session"

type ctxKey string

const sessionCtxKey ctxKey = "session"

// sessionState is the per-request session view. Anonymous states exist so
// flash messages survive redirects for signed-out visitors.
type sessionState struct {
	id            string
	data          session.Data
	user          core.User
	authenticated bool
}

// loadSession resolves the session cookie into a sessionState. The signed-in
// user is re-read from the document store on every request: a deleted account
// loses access on its next click, whatever its cookie says.
func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := &sessionState{}

		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			data, getErr := s.sessions.Get(r.Context(), cookie.Value)
			if getErr == nil {
				state.id = cookie.Value
				state.data = data

				if data.IsAuthenticated() {
					user, userErr := s.documents.GetUser(r.Context(), data.Username)
					if userErr == nil {
						state.user = user
						state.authenticated = true
					} else {
						// account is gone, kill the session
						_ = s.sessions.Delete(r.Context(), cookie.Value)
						state.id = ""
						state.data = session.Data{}
					}
				}
			}
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey, state)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth redirects signed-out visitors to the login page.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := s.state(r)
		if !state.authenticated {
			http.Redirect(w, r, "/login", http.StatusFound)

			return
		}

		next(w, r)
	})
}

// requireAdmin additionally checks the role, re-read from the store.
func (s *Server) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := s.state(r)
		if !state.authenticated {
			http.Redirect(w, r, "/login", http.StatusFound)

			return
		}

		if !state.user.IsAdmin() {
			http.Redirect(w, r, "/home", http.StatusFound)

			return
		}

		next(w, r)
	})
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		if s.logger != nil {
			s.logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", recorder.status),
				zap.Duration("duration", time.Since(start)),
			)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) state(r *http.Request) *sessionState {
	if state, ok := r.Context().Value(sessionCtxKey).(*sessionState); ok {
		return state
	}

	return &sessionState{}
}

// saveState persists the state, creating a session (and setting the cookie)
// for anonymous visitors on first write.
func (s *Server) saveState(w http.ResponseWriter, r *http.Request, state *sessionState) error {
	if state.id == "" {
		id, err := s.sessions.Create(r.Context(), state.data)
		if err != nil {
			return err
		}

		state.id = id
		s.setSessionCookie(w, id)

		return nil
	}

	err := s.sessions.Save(r.Context(), state.id, state.data)
	if errors.Is(err, session.ErrSessionNotFound) {
		// expired between load and save, start over
		id, createErr := s.sessions.Create(r.Context(), state.data)
		if createErr != nil {
			return createErr
		}

		state.id = id
		s.setSessionCookie(w, id)

		return nil
	}

	return err
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// flashRedirect queues a one-shot message and redirects. Every mutation ends
// in this helper, success or failure.
func (s *Server) flashRedirect(w http.ResponseWriter, r *http.Request, target, kind, message string) {
	state := s.state(r)

	if kind == flashError {
		state.data.AddError(message)
	} else {
		state.data.AddSuccess(message)
	}

	if err := s.saveState(w, r, state); err != nil && s.logger != nil {
		s.logger.Error("failed to save session", zap.Error(err))
	}

	http.Redirect(w, r, target, http.StatusFound)
}

const (
	flashSuccess = "success"
	flashError   = "error"
)
