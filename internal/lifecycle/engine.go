// Package lifecycle drives the issue/return state machine. Decisions are made
// by the pure functions in core against a fresh read of the book; the engine
// then performs the conditional state transition and appends the ledger
// record. The conditional UPDATE re-checks the decided-upon state, so two
// racing requests for the same copy resolve to exactly one winner.
package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/librarium-app/librarium/internal/core"
	"github.com/librarium-app/librarium/internal/store"
)

// CatalogStore is the slice of the document store the engine reads and
// transitions books through.
type CatalogStore interface {
	GetBook(ctx context.Context, id core.BookIDString) (core.Book, error)
	TransitionToIssued(ctx context.Context, id core.BookIDString, requester core.UsernameString) error
	TransitionToAvailable(ctx context.Context, id core.BookIDString, holder core.UsernameString) error
}

// ActivityAppender records successful transitions in the issuance ledger.
type ActivityAppender interface {
	Append(ctx context.Context, record core.ActivityRecord) error
}

// Logger is the minimal logging surface the engine needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

const (
	logMsgBookIssued       = "book issued"
	logMsgBookReturned     = "book returned"
	logMsgTransitionRaced  = "state transition lost a concurrent race"
	logMsgLedgerAppendFail = "ledger append failed after state transition"

	logAttrBookID   = "book_id"
	logAttrUsername = "username"
	logAttrError    = "error"
)

// Engine executes issue and return commands.
type Engine struct {
	catalog CatalogStore
	ledger  ActivityAppender
	logger  Logger
	clock   func() time.Time
}

// Option defines a functional option for configuring an Engine.
type Option func(*Engine)

// WithLogger sets the logger for the Engine.
func WithLogger(logger Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// NewEngine creates an Engine on the given catalog store and ledger.
func NewEngine(catalog CatalogStore, activityLedger ActivityAppender, options ...Option) *Engine {
	engine := &Engine{
		catalog: catalog,
		ledger:  activityLedger,
		clock:   time.Now,
	}

	for _, option := range options {
		option(engine)
	}

	return engine
}

// IssueBook attempts the Available -> Issued transition for the requester.
//
// The returned DecisionResult carries the refusal reason on failure and the
// appended ledger record on success. A non-nil error means infrastructure
// trouble, not a domain refusal.
func (e *Engine) IssueBook(ctx context.Context, bookID core.BookIDString, requester core.UsernameString) (core.DecisionResult, error) {
	book, found, err := e.readBook(ctx, bookID)
	if err != nil {
		return core.DecisionResult{}, err
	}

	decision := core.DecideIssue(book, found, requester, e.clock())
	if !decision.IsSuccess() {
		return decision, nil
	}

	if transitionErr := e.catalog.TransitionToIssued(ctx, bookID, requester); transitionErr != nil {
		return e.transitionFailure(transitionErr, decision, bookID, requester)
	}

	if appendErr := e.appendRecord(ctx, decision.Record); appendErr != nil {
		return core.DecisionResult{}, appendErr
	}

	if e.logger != nil {
		e.logger.Info(logMsgBookIssued, logAttrBookID, bookID, logAttrUsername, requester)
	}

	return decision, nil
}

// ReturnBook attempts the Issued -> Available transition for the holder.
// Only the exact holder can return; everyone else gets the refusal.
func (e *Engine) ReturnBook(ctx context.Context, bookID core.BookIDString, holder core.UsernameString) (core.DecisionResult, error) {
	book, found, err := e.readBook(ctx, bookID)
	if err != nil {
		return core.DecisionResult{}, err
	}

	decision := core.DecideReturn(book, found, holder, e.clock())
	if !decision.IsSuccess() {
		return decision, nil
	}

	if transitionErr := e.catalog.TransitionToAvailable(ctx, bookID, holder); transitionErr != nil {
		return e.transitionFailure(transitionErr, decision, bookID, holder)
	}

	if appendErr := e.appendRecord(ctx, decision.Record); appendErr != nil {
		return core.DecisionResult{}, appendErr
	}

	if e.logger != nil {
		e.logger.Info(logMsgBookReturned, logAttrBookID, bookID, logAttrUsername, holder)
	}

	return decision, nil
}

func (e *Engine) readBook(ctx context.Context, bookID core.BookIDString) (core.Book, bool, error) {
	book, err := e.catalog.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return core.Book{}, false, nil
		}

		return core.Book{}, false, err
	}

	return book, true, nil
}

// transitionFailure maps a lost compare-and-set race to the same refusal the
// loser would have seen had it read the post-race state.
func (e *Engine) transitionFailure(
	transitionErr error,
	decision core.DecisionResult,
	bookID core.BookIDString,
	username core.UsernameString,
) (core.DecisionResult, error) {
	if errors.Is(transitionErr, store.ErrConcurrencyConflict) {
		if e.logger != nil {
			e.logger.Warn(logMsgTransitionRaced, logAttrBookID, bookID, logAttrUsername, username)
		}

		reason := core.FailureReasonCannotIssue
		if decision.Record.Action == core.ActionReturned {
			reason = core.FailureReasonCannotReturn
		}

		return core.FailureDecision(reason), nil
	}

	return core.DecisionResult{}, transitionErr
}

func (e *Engine) appendRecord(ctx context.Context, record core.ActivityRecord) error {
	if appendErr := e.ledger.Append(ctx, record); appendErr != nil {
		if e.logger != nil {
			e.logger.Error(logMsgLedgerAppendFail, logAttrError, appendErr.Error())
		}

		return appendErr
	}

	return nil
}
