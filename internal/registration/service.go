// Package registration implements the account workflow: self-registration
// with admin approval, direct account management, the suspension denylist,
// login checks, and password resets.
//
// The order of the login checks is deliberate: suspension is checked before
// credentials, so a suspended user learns they are suspended rather than
// guessing at passwords.
package registration

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/librarium-app/librarium/internal/core"
	"github.com/librarium-app/librarium/internal/mail"
	"github.com/librarium-app/librarium/internal/store"
)

// DocumentStore is the slice of the document store the workflow operates on.
type DocumentStore interface {
	GetUser(ctx context.Context, username core.UsernameString) (core.User, error)
	GetUserByEmail(ctx context.Context, email core.EmailString) (core.User, error)
	InsertUser(ctx context.Context, user core.User) error
	DeleteUser(ctx context.Context, username core.UsernameString) error
	CountUsers(ctx context.Context, role core.Role) (int, error)

	InsertRequest(ctx context.Context, request core.RegistrationRequest) error
	GetRequest(ctx context.Context, id string) (core.RegistrationRequest, error)
	DeleteRequest(ctx context.Context, id string) error
	RequestExistsForUsername(ctx context.Context, username core.UsernameString) (bool, error)

	InsertSuspension(ctx context.Context, suspended core.SuspendedUser) error
	IsSuspended(ctx context.Context, username core.UsernameString, email core.EmailString) (bool, error)

	SaveReset(ctx context.Context, reset core.PasswordReset) error
	GetResetByToken(ctx context.Context, token string, now time.Time) (core.PasswordReset, error)
	DeleteReset(ctx context.Context, id string) error
	UpdatePasswordByEmail(ctx context.Context, email core.EmailString, passwordHash string) error
}

// Mailer enqueues outbound notifications.
type Mailer interface {
	Enqueue(message mail.Message)
}

// Logger is the minimal logging surface the workflow needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

const (
	logMsgUserRegistered = "registration request submitted"
	logMsgUserApproved   = "registration request approved"
	logMsgUserRejected   = "registration request rejected"
	logMsgUserAdded      = "user account created"
	logMsgUserDeleted    = "user account deleted and suspended"
	logMsgResetRequested = "password reset requested"
	logMsgResetCompleted = "password reset completed"
	logMsgMailBuildFail  = "failed to build notification mail"

	logAttrUsername = "username"
	logAttrEmail    = "email"
	logAttrError    = "error"
)

// Config carries the workflow settings.
type Config struct {
	// AdminEmail receives registration notifications.
	AdminEmail string

	// BaseURL prefixes the approve, reject, and reset links in mails.
	BaseURL string

	// BcryptCost is the password hashing cost; 0 means bcrypt.DefaultCost.
	BcryptCost int
}

// Service executes the account workflow.
type Service struct {
	documents DocumentStore
	mailer    Mailer
	logger    Logger
	config    Config
	clock     func() time.Time
}

// Option defines a functional option for configuring a Service.
type Option func(*Service)

// WithLogger sets the logger for the Service.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// NewService creates a registration Service.
func NewService(documents DocumentStore, mailer Mailer, config Config, options ...Option) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}

	service := &Service{
		documents: documents,
		mailer:    mailer,
		config:    config,
		clock:     time.Now,
	}

	for _, option := range options {
		option(service)
	}

	return service
}

// Login authenticates a user. Suspension is checked before credentials, and
// approval after them.
func (s *Service) Login(ctx context.Context, username core.UsernameString, password string) (core.User, error) {
	suspended, err := s.documents.IsSuspended(ctx, username, "")
	if err != nil {
		return core.User{}, err
	}

	if suspended {
		return core.User{}, ErrSuspended
	}

	user, err := s.documents.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return core.User{}, ErrInvalidCredentials
		}

		return core.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return core.User{}, ErrInvalidCredentials
	}

	if !user.Approved {
		return core.User{}, ErrNotApproved
	}

	return user, nil
}

// Submit files a registration request and notifies the admin with one-click
// approve and reject links.
func (s *Service) Submit(ctx context.Context, username core.UsernameString, password string, email core.EmailString) (core.RegistrationRequest, error) {
	suspended, err := s.documents.IsSuspended(ctx, username, email)
	if err != nil {
		return core.RegistrationRequest{}, err
	}

	if suspended {
		return core.RegistrationRequest{}, ErrSuspended
	}

	taken, err := s.usernameTaken(ctx, username)
	if err != nil {
		return core.RegistrationRequest{}, err
	}

	if taken {
		return core.RegistrationRequest{}, ErrUsernameTaken
	}

	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return core.RegistrationRequest{}, err
	}

	request := core.BuildRegistrationRequest(username, passwordHash, email, s.clock())

	if insertErr := s.documents.InsertRequest(ctx, request); insertErr != nil {
		return core.RegistrationRequest{}, insertErr
	}

	notice, mailErr := mail.RegistrationNotice(s.config.AdminEmail, request, s.config.BaseURL)
	if mailErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgMailBuildFail, logAttrError, mailErr.Error())
		}
	} else {
		s.mailer.Enqueue(notice)
	}

	if s.logger != nil {
		s.logger.Info(logMsgUserRegistered, logAttrUsername, username)
	}

	return request, nil
}

// Approve promotes a pending request into an approved account and mails the
// requester. The request is consumed; a second approval finds nothing.
func (s *Service) Approve(ctx context.Context, requestID string) (core.RegistrationRequest, error) {
	request, err := s.documents.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrRequestNotFound) {
			return core.RegistrationRequest{}, ErrRequestNotFound
		}

		return core.RegistrationRequest{}, err
	}

	if insertErr := s.documents.InsertUser(ctx, request.Promote(s.clock())); insertErr != nil {
		return core.RegistrationRequest{}, insertErr
	}

	if deleteErr := s.documents.DeleteRequest(ctx, requestID); deleteErr != nil {
		return core.RegistrationRequest{}, deleteErr
	}

	s.mailer.Enqueue(mail.ApprovalNotice(request.Email))

	if s.logger != nil {
		s.logger.Info(logMsgUserApproved, logAttrUsername, request.Username)
	}

	return request, nil
}

// Reject discards a pending request and mails the requester. Terminal, like
// Approve.
func (s *Service) Reject(ctx context.Context, requestID string) (core.RegistrationRequest, error) {
	request, err := s.documents.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrRequestNotFound) {
			return core.RegistrationRequest{}, ErrRequestNotFound
		}

		return core.RegistrationRequest{}, err
	}

	s.mailer.Enqueue(mail.RejectionNotice(request.Email))

	if deleteErr := s.documents.DeleteRequest(ctx, requestID); deleteErr != nil {
		return core.RegistrationRequest{}, deleteErr
	}

	if s.logger != nil {
		s.logger.Info(logMsgUserRejected, logAttrUsername, request.Username)
	}

	return request, nil
}

// AddUser creates an account directly, bypassing the approval workflow.
func (s *Service) AddUser(ctx context.Context, username core.UsernameString, password string, role core.Role, email core.EmailString) error {
	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return err
	}

	user := core.BuildUser(username, passwordHash, role, email, s.clock())

	if insertErr := s.documents.InsertUser(ctx, user); insertErr != nil {
		if errors.Is(insertErr, store.ErrUserExists) {
			return ErrUserExists
		}

		return insertErr
	}

	if s.logger != nil {
		s.logger.Info(logMsgUserAdded, logAttrUsername, username)
	}

	return nil
}

// DeleteUser removes an account and writes exactly one denylist entry for it.
// The last remaining administrator cannot be deleted.
func (s *Service) DeleteUser(ctx context.Context, username core.UsernameString) (core.User, error) {
	user, err := s.documents.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return core.User{}, ErrUserNotFound
		}

		return core.User{}, err
	}

	if user.IsAdmin() {
		adminCount, countErr := s.documents.CountUsers(ctx, core.RoleAdmin)
		if countErr != nil {
			return core.User{}, countErr
		}

		if adminCount <= 1 {
			return core.User{}, ErrLastAdmin
		}
	}

	suspended := core.BuildSuspendedUser(user.Username, user.Email, core.DefaultSuspensionReason, s.clock())
	if suspendErr := s.documents.InsertSuspension(ctx, suspended); suspendErr != nil {
		return core.User{}, suspendErr
	}

	if deleteErr := s.documents.DeleteUser(ctx, username); deleteErr != nil {
		return core.User{}, deleteErr
	}

	if s.logger != nil {
		s.logger.Info(logMsgUserDeleted, logAttrUsername, username)
	}

	return user, nil
}

// RequestReset issues a reset token for a known email and mails the link.
// A newer request supersedes any earlier token for the same address.
func (s *Service) RequestReset(ctx context.Context, email core.EmailString) error {
	if _, err := s.documents.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrNoAccountForEmail
		}

		return err
	}

	reset := core.BuildPasswordReset(email, s.clock())

	if saveErr := s.documents.SaveReset(ctx, reset); saveErr != nil {
		return saveErr
	}

	notice, mailErr := mail.PasswordResetNotice(email, reset.Token, s.config.BaseURL)
	if mailErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgMailBuildFail, logAttrError, mailErr.Error())
		}

		return mailErr
	}

	s.mailer.Enqueue(notice)

	if s.logger != nil {
		s.logger.Info(logMsgResetRequested, logAttrEmail, email)
	}

	return nil
}

// CompleteReset consumes a valid token and stores the new password hash.
func (s *Service) CompleteReset(ctx context.Context, token, password, confirmPassword string) error {
	if password != confirmPassword {
		return ErrPasswordMismatch
	}

	reset, err := s.documents.GetResetByToken(ctx, token, s.clock())
	if err != nil {
		if errors.Is(err, store.ErrResetNotFound) {
			return ErrResetInvalid
		}

		return err
	}

	passwordHash, hashErr := s.hashPassword(password)
	if hashErr != nil {
		return hashErr
	}

	if updateErr := s.documents.UpdatePasswordByEmail(ctx, reset.Email, passwordHash); updateErr != nil {
		return updateErr
	}

	if deleteErr := s.documents.DeleteReset(ctx, reset.ID); deleteErr != nil {
		return deleteErr
	}

	if s.logger != nil {
		s.logger.Info(logMsgResetCompleted, logAttrEmail, reset.Email)
	}

	return nil
}

func (s *Service) usernameTaken(ctx context.Context, username core.UsernameString) (bool, error) {
	_, err := s.documents.GetUser(ctx, username)
	if err == nil {
		return true, nil
	}

	if !errors.Is(err, store.ErrUserNotFound) {
		return false, err
	}

	return s.documents.RequestExistsForUsername(ctx, username)
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}
