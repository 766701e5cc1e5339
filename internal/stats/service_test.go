package stats_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium-app/librarium/internal/core"
	"github.com/librarium-app/librarium/internal/stats"
	"github.com/librarium-app/librarium/internal/store"
)

type fakeDocuments struct {
	booksByState map[core.BookState]int
	booksByUser  map[core.UsernameString]int
	usersByRole  map[core.Role]int
	requests     int
	users        []core.User
}

func (f *fakeDocuments) CountBooks(_ context.Context, filter store.BookFilter) (int, error) {
	if filter.IssuedTo != "" {
		return f.booksByUser[filter.IssuedTo], nil
	}

	if filter.State != "" {
		return f.booksByState[filter.State], nil
	}

	total := 0
	for _, count := range f.booksByState {
		total += count
	}

	return total, nil
}

func (f *fakeDocuments) CountUsers(_ context.Context, role core.Role) (int, error) {
	if role == "" {
		total := 0
		for _, count := range f.usersByRole {
			total += count
		}

		return total, nil
	}

	return f.usersByRole[role], nil
}

func (f *fakeDocuments) CountRequests(_ context.Context) (int, error) {
	return f.requests, nil
}

func (f *fakeDocuments) ListUsers(_ context.Context, _ core.Role) ([]core.User, error) {
	return f.users, nil
}

type fakeActivity struct {
	counts map[string]int
	recent []core.ActivityRecord
}

func (f *fakeActivity) CountByUserAction(_ context.Context, username core.UsernameString, action core.ActivityAction) (int, error) {
	return f.counts[username+"/"+string(action)], nil
}

func (f *fakeActivity) RecentByUser(_ context.Context, _ core.UsernameString, limit uint) ([]core.ActivityRecord, error) {
	if uint(len(f.recent)) > limit {
		return f.recent[:limit], nil
	}

	return f.recent, nil
}

func Test_Overview_RecomputesAllCounts(t *testing.T) {
	// arrange
	documents := &fakeDocuments{
		booksByState: map[core.BookState]int{core.BookStateAvailable: 8, core.BookStateIssued: 4},
		usersByRole:  map[core.Role]int{core.RoleUser: 5, core.RoleAdmin: 1},
		requests:     2,
	}
	service := stats.NewService(documents, &fakeActivity{})

	// act
	overview, err := service.Overview(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.OverviewStats{
		TotalBooks:      12,
		AvailableBooks:  8,
		IssuedBooks:     4,
		TotalUsers:      6,
		PendingRequests: 2,
	}, overview)
}

func Test_ForUser_CombinesCatalogAndLedgerCounts(t *testing.T) {
	// arrange - 2 of 3 issues returned rounds to 67 percent
	documents := &fakeDocuments{booksByUser: map[core.UsernameString]int{"alice": 1}}
	activity := &fakeActivity{counts: map[string]int{
		"alice/issued":   3,
		"alice/returned": 2,
	}}
	service := stats.NewService(documents, activity)

	// act
	userStats, err := service.ForUser(context.Background(), "alice")

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.UserStats{
		CurrentlyIssued: 1,
		TotalIssued:     3,
		TotalReturned:   2,
		ReturnRate:      67,
	}, userStats)
}

func Test_ForUser_ZeroIssuesMeansZeroRate(t *testing.T) {
	// arrange
	service := stats.NewService(&fakeDocuments{}, &fakeActivity{})

	// act
	userStats, err := service.ForUser(context.Background(), "newcomer")

	// assert
	require.NoError(t, err)
	assert.Zero(t, userStats.ReturnRate)
}

func Test_PerUserReport_LimitsRecentActivityToFive(t *testing.T) {
	// arrange
	recent := make([]core.ActivityRecord, 0, 8)
	for i := 0; i < 8; i++ {
		recent = append(recent, core.BuildActivityRecord("alice", "book-1", "Dune", core.ActionIssued, time.Now()))
	}

	documents := &fakeDocuments{users: []core.User{
		core.BuildUser("alice", "hash", core.RoleUser, "alice@example.com", time.Now()),
	}}
	service := stats.NewService(documents, &fakeActivity{recent: recent})

	// act
	reports, err := service.PerUserReport(context.Background())

	// assert
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "alice", reports[0].User.Username)
	assert.Len(t, reports[0].RecentActivity, 5)
}
