package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium-app/librarium/internal/core"
	"github.com/librarium-app/librarium/internal/session"
)

func Test_MemoryStore_CreateAndGetRoundTrip(t *testing.T) {
	// arrange
	store := session.NewMemoryStore(time.Hour)
	defer store.Close()

	// act
	id, err := store.Create(context.Background(), session.Data{Username: "alice", Role: core.RoleUser})
	require.NoError(t, err)
	data, err := store.Get(context.Background(), id)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "alice", data.Username)
	assert.True(t, data.IsAuthenticated())
}

func Test_MemoryStore_IDsAreOpaqueAndUnique(t *testing.T) {
	// arrange
	store := session.NewMemoryStore(time.Hour)
	defer store.Close()

	// act
	first, err := store.Create(context.Background(), session.Data{Username: "alice"})
	require.NoError(t, err)
	second, err := store.Create(context.Background(), session.Data{Username: "alice"})
	require.NoError(t, err)

	// assert
	assert.NotEqual(t, first, second)
	assert.NotContains(t, first, "alice")
}

func Test_MemoryStore_GetUnknownIDFails(t *testing.T) {
	// arrange
	store := session.NewMemoryStore(time.Hour)
	defer store.Close()

	// act
	_, err := store.Get(context.Background(), session.NewSessionID())

	// assert
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func Test_MemoryStore_DeleteIsHardLogout(t *testing.T) {
	// arrange
	store := session.NewMemoryStore(time.Hour)
	defer store.Close()
	id, err := store.Create(context.Background(), session.Data{Username: "alice"})
	require.NoError(t, err)

	// act
	require.NoError(t, store.Delete(context.Background(), id))
	_, err = store.Get(context.Background(), id)

	// assert
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func Test_MemoryStore_SaveUnknownIDFails(t *testing.T) {
	// arrange
	store := session.NewMemoryStore(time.Hour)
	defer store.Close()

	// act
	err := store.Save(context.Background(), session.NewSessionID(), session.Data{})

	// assert
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func Test_Data_PopFlashesIsOneShot(t *testing.T) {
	// arrange
	data := session.Data{}
	data.AddSuccess("Book issued.")
	data.AddError("Book cannot be returned.")

	// act
	success, failure := data.PopFlashes()
	successAgain, failureAgain := data.PopFlashes()

	// assert
	assert.Equal(t, []string{"Book issued."}, success)
	assert.Equal(t, []string{"Book cannot be returned."}, failure)
	assert.Empty(t, successAgain)
	assert.Empty(t, failureAgain)
}
