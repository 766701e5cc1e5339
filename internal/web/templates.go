package web

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/librarium-app/librarium/internal/core"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// baseData is shared by every page: the signed-in user (zero value when
// anonymous) and the one-shot flash messages.
type baseData struct {
	User    core.User
	IsAdmin bool
	Success []string
	Error   []string
}

// base pops the flash messages for rendering; popping mutates the session, so
// the state is saved before the template runs.
func (s *Server) base(w http.ResponseWriter, r *http.Request) baseData {
	state := s.state(r)

	success, failure := state.data.PopFlashes()
	if (len(success) > 0 || len(failure) > 0) && state.id != "" {
		if err := s.saveState(w, r, state); err != nil && s.logger != nil {
			s.logger.Error("failed to save session", zap.Error(err))
		}
	}

	return baseData{
		User:    state.user,
		IsAdmin: state.user.IsAdmin(),
		Success: success,
		Error:   failure,
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		if s.logger != nil {
			s.logger.Error("template execution failed", zap.String("template", name), zap.Error(err))
		}

		http.Error(w, "Template Error", http.StatusInternalServerError)
	}
}
