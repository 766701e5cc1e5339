// Package web is the HTTP surface: server-rendered pages, session cookies,
// and the flash-then-redirect flow every mutation follows. Handlers translate
// form posts into service calls and map the results onto the exact
// user-facing messages.
package web

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/librarium-app/librarium/internal/core"
	"github.com/librarium-app/librarium/internal/session"
	"github.com/librarium-app/librarium/internal/stats"
	"github.com/librarium-app/librarium/internal/store"
)

// DocumentStore is the slice of the document store the handlers read and
// write directly. Lifecycle transitions go through the engine instead.
type DocumentStore interface {
	ListBooks(ctx context.Context, filter store.BookFilter) ([]core.Book, error)
	InsertBook(ctx context.Context, book core.Book) error
	DeleteBook(ctx context.Context, id core.BookIDString) (core.Book, error)
	GetUser(ctx context.Context, username core.UsernameString) (core.User, error)
	ListUsers(ctx context.Context, role core.Role) ([]core.User, error)
	ListRequests(ctx context.Context) ([]core.RegistrationRequest, error)
}

// LifecycleEngine executes issue and return commands.
type LifecycleEngine interface {
	IssueBook(ctx context.Context, bookID core.BookIDString, requester core.UsernameString) (core.DecisionResult, error)
	ReturnBook(ctx context.Context, bookID core.BookIDString, holder core.UsernameString) (core.DecisionResult, error)
}

// StatsService recomputes the dashboard figures.
type StatsService interface {
	Overview(ctx context.Context) (core.OverviewStats, error)
	Accounts(ctx context.Context) (stats.AccountCounts, error)
	ForUser(ctx context.Context, username core.UsernameString) (core.UserStats, error)
	PerUserReport(ctx context.Context) ([]stats.UserReport, error)
}

// AccountService executes the registration and account workflow.
type AccountService interface {
	Login(ctx context.Context, username core.UsernameString, password string) (core.User, error)
	Submit(ctx context.Context, username core.UsernameString, password string, email core.EmailString) (core.RegistrationRequest, error)
	Approve(ctx context.Context, requestID string) (core.RegistrationRequest, error)
	Reject(ctx context.Context, requestID string) (core.RegistrationRequest, error)
	AddUser(ctx context.Context, username core.UsernameString, password string, role core.Role, email core.EmailString) error
	DeleteUser(ctx context.Context, username core.UsernameString) (core.User, error)
	RequestReset(ctx context.Context, email core.EmailString) error
	CompleteReset(ctx context.Context, token, password, confirmPassword string) error
}

// Server holds the handler dependencies.
type Server struct {
	documents DocumentStore
	engine    LifecycleEngine
	stats     StatsService
	accounts  AccountService
	sessions  session.Store
	logger    *zap.Logger
	clock     func() time.Time
}

// Option defines a functional option for configuring a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// NewServer creates the HTTP server front.
func NewServer(
	documents DocumentStore,
	engine LifecycleEngine,
	statsService StatsService,
	accounts AccountService,
	sessions session.Store,
	options ...Option,
) *Server {
	server := &Server{
		documents: documents,
		engine:    engine,
		stats:     statsService,
		accounts:  accounts,
		sessions:  sessions,
		clock:     time.Now,
	}

	for _, option := range options {
		option(server)
	}

	return server
}

// Router wires every route with its middleware chain.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /logout", s.handleLogout)

	mux.HandleFunc("GET /register", s.handleRegisterPage)
	mux.HandleFunc("POST /register", s.handleRegister)

	// one-click links from the admin notification mail, no session required
	mux.HandleFunc("GET /approve/{id}", s.handleApprove)
	mux.HandleFunc("GET /reject/{id}", s.handleReject)
	mux.HandleFunc("GET /approval-success", s.handleApprovalSuccess)

	mux.HandleFunc("GET /forgot-password", s.handleForgotPasswordPage)
	mux.HandleFunc("POST /forgot-password", s.handleForgotPassword)
	mux.HandleFunc("GET /reset-password/{token}", s.handleResetPasswordPage)
	mux.HandleFunc("POST /reset-password/{token}", s.handleResetPassword)

	mux.Handle("GET /home", s.requireAuth(s.handleHome))
	mux.Handle("POST /issue", s.requireAuth(s.handleIssue))
	mux.Handle("POST /return", s.requireAuth(s.handleReturn))

	mux.Handle("GET /admin", s.requireAdmin(s.handleAdminDashboard))
	mux.Handle("GET /admin/books", s.requireAdmin(s.handleAdminBooks))
	mux.Handle("POST /admin/addBook", s.requireAdmin(s.handleAddBook))
	mux.Handle("POST /admin/deleteBook", s.requireAdmin(s.handleDeleteBook))
	mux.Handle("GET /admin/users", s.requireAdmin(s.handleAdminUsers))
	mux.Handle("POST /admin/addUser", s.requireAdmin(s.handleAddUser))
	mux.Handle("POST /admin/deleteUser", s.requireAdmin(s.handleDeleteUser))
	mux.Handle("GET /admin/user-stats", s.requireAdmin(s.handleUserStats))

	return s.logRequests(s.loadSession(mux))
}
