package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium-app/librarium/internal/core"
	"github.com/librarium-app/librarium/internal/store"
)

func Test_InsertUser_RejectsDuplicateUsername(t *testing.T) {
	// arrange - the lookup finds an existing row
	adapter := &fakeAdapter{queryResults: [][][]any{
		{{"alice", "hash", "user", "alice@example.com", true, time.Now()}},
	}}
	documentStore := newFakeStore(adapter)

	// act
	err := documentStore.InsertUser(context.Background(), core.BuildUser("alice", "hash2", core.RoleUser, "other@example.com", time.Now()))

	// assert
	assert.ErrorIs(t, err, store.ErrUserExists)
	assert.Empty(t, adapter.execs)
}

func Test_GetUser_ReturnsNotFoundForUnknownUsername(t *testing.T) {
	// arrange
	adapter := &fakeAdapter{}
	documentStore := newFakeStore(adapter)

	// act
	_, err := documentStore.GetUser(context.Background(), "nobody")

	// assert
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func Test_CountUsers_FiltersByRole(t *testing.T) {
	// arrange
	adapter := &fakeAdapter{queryResults: [][][]any{{{2}}}}
	documentStore := newFakeStore(adapter)

	// act
	count, err := documentStore.CountUsers(context.Background(), core.RoleAdmin)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, adapter.queries, 1)
	assert.Contains(t, adapter.queries[0], `"role" = 'admin'`)
}

func Test_DeleteUser_ReturnsNotFoundWhenNothingDeleted(t *testing.T) {
	// arrange
	adapter := &fakeAdapter{affected: []int64{0}}
	documentStore := newFakeStore(adapter)

	// act
	err := documentStore.DeleteUser(context.Background(), "nobody")

	// assert
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func Test_IsSuspended_MatchesUsernameOrEmail(t *testing.T) {
	// arrange
	adapter := &fakeAdapter{queryResults: [][][]any{{{1}}}}
	documentStore := newFakeStore(adapter)

	// act
	suspended, err := documentStore.IsSuspended(context.Background(), "alice", "alice@example.com")

	// assert
	require.NoError(t, err)
	assert.True(t, suspended)
	require.Len(t, adapter.queries, 1)
	assert.Contains(t, adapter.queries[0], `"username" = 'alice'`)
	assert.Contains(t, adapter.queries[0], " OR ")
	assert.Contains(t, adapter.queries[0], `"email" = 'alice@example.com'`)
}

func Test_IsSuspended_FalseWhenDenylistHasNoMatch(t *testing.T) {
	// arrange
	adapter := &fakeAdapter{queryResults: [][][]any{{{0}}}}
	documentStore := newFakeStore(adapter)

	// act
	suspended, err := documentStore.IsSuspended(context.Background(), "bob", "bob@example.com")

	// assert
	require.NoError(t, err)
	assert.False(t, suspended)
}
