// Package stats aggregates catalog and issuance figures for the dashboard
// views. Every figure is recomputed from the live tables on each request;
// nothing is cached, so there is nothing to invalidate.
package stats

import (
	"context"

	"github.com/librarium-app/librarium/internal/core"
	"github.com/librarium-app/librarium/internal/store"
)

// DocumentStore is the slice of the document store the aggregator counts over.
type DocumentStore interface {
	CountBooks(ctx context.Context, filter store.BookFilter) (int, error)
	CountUsers(ctx context.Context, role core.Role) (int, error)
	CountRequests(ctx context.Context) (int, error)
	ListUsers(ctx context.Context, role core.Role) ([]core.User, error)
}

// ActivityReader is the slice of the ledger the aggregator reads.
type ActivityReader interface {
	CountByUserAction(ctx context.Context, username core.UsernameString, action core.ActivityAction) (int, error)
	RecentByUser(ctx context.Context, username core.UsernameString, limit uint) ([]core.ActivityRecord, error)
}

// AccountCounts backs the admin accounts page header.
type AccountCounts struct {
	Users           int
	Admins          int
	PendingRequests int
}

// UserReport is one row of the admin user-stats page: the account, its
// figures, and its newest ledger entries.
type UserReport struct {
	User           core.User
	Stats          core.UserStats
	RecentActivity []core.ActivityRecord
}

const recentActivityLimit = 5

// Service recomputes statistics on demand.
type Service struct {
	documents DocumentStore
	ledger    ActivityReader
}

// NewService creates a stats Service on the given store and ledger.
func NewService(documents DocumentStore, ledger ActivityReader) *Service {
	return &Service{documents: documents, ledger: ledger}
}

// Overview returns the catalog-wide counts for the admin dashboard.
func (s *Service) Overview(ctx context.Context) (core.OverviewStats, error) {
	overview := core.OverviewStats{}
	var err error

	if overview.TotalBooks, err = s.documents.CountBooks(ctx, store.BookFilter{}); err != nil {
		return core.OverviewStats{}, err
	}

	if overview.AvailableBooks, err = s.documents.CountBooks(ctx, store.BookFilter{State: core.BookStateAvailable}); err != nil {
		return core.OverviewStats{}, err
	}

	if overview.IssuedBooks, err = s.documents.CountBooks(ctx, store.BookFilter{State: core.BookStateIssued}); err != nil {
		return core.OverviewStats{}, err
	}

	if overview.TotalUsers, err = s.documents.CountUsers(ctx, ""); err != nil {
		return core.OverviewStats{}, err
	}

	if overview.PendingRequests, err = s.documents.CountRequests(ctx); err != nil {
		return core.OverviewStats{}, err
	}

	return overview, nil
}

// Accounts returns the per-role account counts for the admin accounts page.
func (s *Service) Accounts(ctx context.Context) (AccountCounts, error) {
	counts := AccountCounts{}
	var err error

	if counts.Users, err = s.documents.CountUsers(ctx, core.RoleUser); err != nil {
		return AccountCounts{}, err
	}

	if counts.Admins, err = s.documents.CountUsers(ctx, core.RoleAdmin); err != nil {
		return AccountCounts{}, err
	}

	if counts.PendingRequests, err = s.documents.CountRequests(ctx); err != nil {
		return AccountCounts{}, err
	}

	return counts, nil
}

// ForUser returns one user's issuance figures. CurrentlyIssued comes from the
// live catalog; the totals come from the ledger, so they keep counting books
// that were later deleted.
func (s *Service) ForUser(ctx context.Context, username core.UsernameString) (core.UserStats, error) {
	currentlyIssued, err := s.documents.CountBooks(ctx, store.BookFilter{IssuedTo: username})
	if err != nil {
		return core.UserStats{}, err
	}

	totalIssued, err := s.ledger.CountByUserAction(ctx, username, core.ActionIssued)
	if err != nil {
		return core.UserStats{}, err
	}

	totalReturned, err := s.ledger.CountByUserAction(ctx, username, core.ActionReturned)
	if err != nil {
		return core.UserStats{}, err
	}

	return core.ComputeUserStats(currentlyIssued, totalIssued, totalReturned), nil
}

// PerUserReport builds the admin user-stats page: every patron account with
// its figures and its five most recent ledger entries.
func (s *Service) PerUserReport(ctx context.Context) ([]UserReport, error) {
	users, err := s.documents.ListUsers(ctx, core.RoleUser)
	if err != nil {
		return nil, err
	}

	reports := make([]UserReport, 0, len(users))

	for _, user := range users {
		userStats, statsErr := s.ForUser(ctx, user.Username)
		if statsErr != nil {
			return nil, statsErr
		}

		recent, recentErr := s.ledger.RecentByUser(ctx, user.Username, recentActivityLimit)
		if recentErr != nil {
			return nil, recentErr
		}

		reports = append(reports, UserReport{
			User:           user,
			Stats:          userStats,
			RecentActivity: recent,
		})
	}

	return reports, nil
}
