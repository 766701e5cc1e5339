package registration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/librarium-app/librarium/internal/core"
	"github.com/librarium-app/librarium/internal/mail"
	"github.com/librarium-app/librarium/internal/registration"
	"github.com/librarium-app/librarium/internal/store"
)

type fakeDocuments struct {
	users       map[core.UsernameString]core.User
	requests    map[string]core.RegistrationRequest
	suspensions []core.SuspendedUser
	resets      map[string]core.PasswordReset
	passwords   map[core.EmailString]string
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{
		users:     make(map[core.UsernameString]core.User),
		requests:  make(map[string]core.RegistrationRequest),
		resets:    make(map[string]core.PasswordReset),
		passwords: make(map[core.EmailString]string),
	}
}

func (f *fakeDocuments) GetUser(_ context.Context, username core.UsernameString) (core.User, error) {
	user, ok := f.users[username]
	if !ok {
		return core.User{}, store.ErrUserNotFound
	}

	return user, nil
}

func (f *fakeDocuments) GetUserByEmail(_ context.Context, email core.EmailString) (core.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}

	return core.User{}, store.ErrUserNotFound
}

func (f *fakeDocuments) InsertUser(_ context.Context, user core.User) error {
	if _, ok := f.users[user.Username]; ok {
		return store.ErrUserExists
	}

	f.users[user.Username] = user

	return nil
}

func (f *fakeDocuments) DeleteUser(_ context.Context, username core.UsernameString) error {
	if _, ok := f.users[username]; !ok {
		return store.ErrUserNotFound
	}

	delete(f.users, username)

	return nil
}

func (f *fakeDocuments) CountUsers(_ context.Context, role core.Role) (int, error) {
	count := 0
	for _, user := range f.users {
		if role == "" || user.Role == role {
			count++
		}
	}

	return count, nil
}

func (f *fakeDocuments) InsertRequest(_ context.Context, request core.RegistrationRequest) error {
	f.requests[request.ID] = request

	return nil
}

func (f *fakeDocuments) GetRequest(_ context.Context, id string) (core.RegistrationRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return core.RegistrationRequest{}, store.ErrRequestNotFound
	}

	return request, nil
}

func (f *fakeDocuments) DeleteRequest(_ context.Context, id string) error {
	delete(f.requests, id)

	return nil
}

func (f *fakeDocuments) RequestExistsForUsername(_ context.Context, username core.UsernameString) (bool, error) {
	for _, request := range f.requests {
		if request.Username == username {
			return true, nil
		}
	}

	return false, nil
}

func (f *fakeDocuments) InsertSuspension(_ context.Context, suspended core.SuspendedUser) error {
	f.suspensions = append(f.suspensions, suspended)

	return nil
}

func (f *fakeDocuments) IsSuspended(_ context.Context, username core.UsernameString, email core.EmailString) (bool, error) {
	for _, suspended := range f.suspensions {
		if suspended.Username == username || (email != "" && suspended.Email == email) {
			return true, nil
		}
	}

	return false, nil
}

func (f *fakeDocuments) SaveReset(_ context.Context, reset core.PasswordReset) error {
	for token, existing := range f.resets {
		if existing.Email == reset.Email {
			delete(f.resets, token)
		}
	}

	f.resets[reset.Token] = reset

	return nil
}

func (f *fakeDocuments) GetResetByToken(_ context.Context, token string, now time.Time) (core.PasswordReset, error) {
	reset, ok := f.resets[token]
	if !ok || reset.IsExpired(now) {
		return core.PasswordReset{}, store.ErrResetNotFound
	}

	return reset, nil
}

func (f *fakeDocuments) DeleteReset(_ context.Context, id string) error {
	for token, reset := range f.resets {
		if reset.ID == id {
			delete(f.resets, token)
		}
	}

	return nil
}

func (f *fakeDocuments) UpdatePasswordByEmail(_ context.Context, email core.EmailString, passwordHash string) error {
	f.passwords[email] = passwordHash

	for username, user := range f.users {
		if user.Email == email {
			user.PasswordHash = passwordHash
			f.users[username] = user
		}
	}

	return nil
}

type spyMailer struct {
	messages []mail.Message
}

func (s *spyMailer) Enqueue(message mail.Message) {
	s.messages = append(s.messages, message)
}

func newService(documents *fakeDocuments, mailer *spyMailer) *registration.Service {
	return registration.NewService(documents, mailer, registration.Config{
		AdminEmail: "admin@example.com",
		BaseURL:    "http://library.example.com",
		BcryptCost: bcrypt.MinCost,
	})
}

func hashOf(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(hash)
}

func addUser(documents *fakeDocuments, username core.UsernameString, passwordHash string, role core.Role, email core.EmailString) {
	documents.users[username] = core.BuildUser(username, passwordHash, role, email, time.Now())
}

func Test_Login_SuspensionIsCheckedBeforeCredentials(t *testing.T) {
	// arrange - suspended identity with perfectly valid credentials
	documents := newFakeDocuments()
	addUser(documents, "alice", hashOf(t, "secret"), core.RoleUser, "alice@example.com")
	documents.suspensions = append(documents.suspensions, core.BuildSuspendedUser("alice", "alice@example.com", "", time.Now()))
	service := newService(documents, &spyMailer{})

	// act
	_, err := service.Login(context.Background(), "alice", "secret")

	// assert
	assert.ErrorIs(t, err, registration.ErrSuspended)
}

func Test_Login_WrongPasswordAndUnknownUserLookTheSame(t *testing.T) {
	// arrange
	documents := newFakeDocuments()
	addUser(documents, "alice", hashOf(t, "secret"), core.RoleUser, "alice@example.com")
	service := newService(documents, &spyMailer{})

	// act
	_, wrongPassword := service.Login(context.Background(), "alice", "nope")
	_, unknownUser := service.Login(context.Background(), "bob", "secret")

	// assert
	assert.ErrorIs(t, wrongPassword, registration.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, registration.ErrInvalidCredentials)
}

func Test_Login_UnapprovedAccountIsRejectedAfterCredentials(t *testing.T) {
	// arrange
	documents := newFakeDocuments()
	user := core.BuildUser("alice", hashOf(t, "secret"), core.RoleUser, "alice@example.com", time.Now())
	user.Approved = false
	documents.users["alice"] = user
	service := newService(documents, &spyMailer{})

	// act
	_, err := service.Login(context.Background(), "alice", "secret")

	// assert
	assert.ErrorIs(t, err, registration.ErrNotApproved)
}

func Test_Login_Success(t *testing.T) {
	// arrange
	documents := newFakeDocuments()
	addUser(documents, "alice", hashOf(t, "secret"), core.RoleUser, "alice@example.com")
	service := newService(documents, &spyMailer{})

	// act
	user, err := service.Login(context.Background(), "alice", "secret")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func Test_Submit_StoresHashedPasswordAndMailsAdmin(t *testing.T) {
	// arrange
	documents := newFakeDocuments()
	mailer := &spyMailer{}
	service := newService(documents, mailer)

	// act
	request, err := service.Submit(context.Background(), "alice", "secret", "alice@example.com")

	// assert
	require.NoError(t, err)
	assert.NotEqual(t, "secret", request.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(request.PasswordHash), []byte("secret")))

	require.Len(t, mailer.messages, 1)
	assert.Equal(t, "admin@example.com", mailer.messages[0].To)
	assert.Contains(t, mailer.messages[0].Body, "/approve/"+request.ID)
	assert.Contains(t, mailer.messages[0].Body, "/reject/"+request.ID)
}

func Test_Submit_RejectsSuspendedIdentityByEmailToo(t *testing.T) {
	// arrange - same email, different username
	documents := newFakeDocuments()
	documents.suspensions = append(documents.suspensions, core.BuildSuspendedUser("alice", "alice@example.com", "", time.Now()))
	service := newService(documents, &spyMailer{})

	// act
	_, err := service.Submit(context.Background(), "alice2", "secret", "alice@example.com")

	// assert
	assert.ErrorIs(t, err, registration.ErrSuspended)
}

func Test_Submit_RejectsTakenAndPendingUsernames(t *testing.T) {
	// arrange
	documents := newFakeDocuments()
	addUser(documents, "alice", "hash", core.RoleUser, "alice@example.com")
	pending := core.BuildRegistrationRequest("bob", "hash", "bob@example.com", time.Now())
	documents.requests[pending.ID] = pending
	service := newService(documents, &spyMailer{})

	// act
	_, takenErr := service.Submit(context.Background(), "alice", "secret", "new@example.com")
	_, pendingErr := service.Submit(context.Background(), "bob", "secret", "new@example.com")

	// assert
	assert.ErrorIs(t, takenErr, registration.ErrUsernameTaken)
	assert.ErrorIs(t, pendingErr, registration.ErrUsernameTaken)
}

func Test_Approve_PromotesRequestAndConsumesIt(t *testing.T) {
	// arrange
	documents := newFakeDocuments()
	mailer := &spyMailer{}
	request := core.BuildRegistrationRequest("alice", "hash", "alice@example.com", time.Now())
	documents.requests[request.ID] = request
	service := newService(documents, mailer)

	// act
	approved, err := service.Approve(context.Background(), request.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "alice", approved.Username)

	user, ok := documents.users["alice"]
	require.True(t, ok)
	assert.True(t, user.Approved)
	assert.Equal(t, core.RoleUser, user.Role)
	assert.Empty(t, documents.requests)

	require.Len(t, mailer.messages, 1)
	assert.Equal(t, "alice@example.com", mailer.messages[0].To)
	assert.Equal(t, "Library Approval", mailer.messages[0].Subject)

	// a second approval of the same id finds nothing
	_, err = service.Approve(context.Background(), request.ID)
	assert.ErrorIs(t, err, registration.ErrRequestNotFound)
}

func Test_Reject_DiscardsRequestAndMailsRequester(t *testing.T) {
	// arrange
	documents := newFakeDocuments()
	mailer := &spyMailer{}
	request := core.BuildRegistrationRequest("alice", "hash", "alice@example.com", time.Now())
	documents.requests[request.ID] = request
	service := newService(documents, mailer)

	// act
	_, err := service.Reject(context.Background(), request.ID)

	// assert
	require.NoError(t, err)
	assert.Empty(t, documents.requests)
	assert.NotContains(t, documents.users, "alice")

	require.Len(t, mailer.messages, 1)
	assert.Equal(t, "Library Rejection", mailer.messages[0].Subject)
}

func Test_DeleteUser_WritesExactlyOneSuspensionEntry(t *testing.T) {
	// arrange
	documents := newFakeDocuments()
	addUser(documents, "alice", "hash", core.RoleUser, "alice@example.com")
	service := newService(documents, &spyMailer{})

	// act
	deleted, err := service.DeleteUser(context.Background(), "alice")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "alice", deleted.Username)
	assert.NotContains(t, documents.users, "alice")
	require.Len(t, documents.suspensions, 1)
	assert.Equal(t, core.DefaultSuspensionReason, documents.suspensions[0].Reason)
}

func Test_DeleteUser_LastAdminIsProtected(t *testing.T) {
	// arrange
	documents := newFakeDocuments()
	addUser(documents, "admin", "hash", core.RoleAdmin, "admin@example.com")
	service := newService(documents, &spyMailer{})

	// act
	_, err := service.DeleteUser(context.Background(), "admin")

	// assert
	assert.ErrorIs(t, err, registration.ErrLastAdmin)
	assert.Contains(t, documents.users, "admin")
	assert.Empty(t, documents.suspensions)
}

func Test_DeleteUser_SecondAdminCanBeDeleted(t *testing.T) {
	// arrange
	documents := newFakeDocuments()
	addUser(documents, "admin", "hash", core.RoleAdmin, "admin@example.com")
	addUser(documents, "admin2", "hash", core.RoleAdmin, "admin2@example.com")
	service := newService(documents, &spyMailer{})

	// act
	_, err := service.DeleteUser(context.Background(), "admin2")

	// assert
	require.NoError(t, err)
	assert.NotContains(t, documents.users, "admin2")
}

func Test_RequestReset_UnknownEmailFails(t *testing.T) {
	// arrange
	service := newService(newFakeDocuments(), &spyMailer{})

	// act
	err := service.RequestReset(context.Background(), "nobody@example.com")

	// assert
	assert.ErrorIs(t, err, registration.ErrNoAccountForEmail)
}

func Test_RequestReset_MailsTheTokenLink(t *testing.T) {
	// arrange
	documents := newFakeDocuments()
	addUser(documents, "alice", "hash", core.RoleUser, "alice@example.com")
	mailer := &spyMailer{}
	service := newService(documents, mailer)

	// act
	err := service.RequestReset(context.Background(), "alice@example.com")

	// assert
	require.NoError(t, err)
	require.Len(t, documents.resets, 1)
	require.Len(t, mailer.messages, 1)

	for token := range documents.resets {
		assert.Contains(t, mailer.messages[0].Body, "/reset-password/"+token)
	}
}

func Test_CompleteReset_MismatchedConfirmationFailsFirst(t *testing.T) {
	// arrange
	service := newService(newFakeDocuments(), &spyMailer{})

	// act
	err := service.CompleteReset(context.Background(), "any-token", "newpass", "different")

	// assert
	assert.ErrorIs(t, err, registration.ErrPasswordMismatch)
}

func Test_CompleteReset_ConsumesTokenAndUpdatesHash(t *testing.T) {
	// arrange
	documents := newFakeDocuments()
	addUser(documents, "alice", hashOf(t, "old"), core.RoleUser, "alice@example.com")
	reset := core.BuildPasswordReset("alice@example.com", time.Now())
	documents.resets[reset.Token] = reset
	service := newService(documents, &spyMailer{})

	// act
	err := service.CompleteReset(context.Background(), reset.Token, "newpass", "newpass")

	// assert
	require.NoError(t, err)
	assert.Empty(t, documents.resets)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(documents.users["alice"].PasswordHash), []byte("newpass")))

	// the token is single use
	err = service.CompleteReset(context.Background(), reset.Token, "again", "again")
	assert.ErrorIs(t, err, registration.ErrResetInvalid)
}

func Test_CompleteReset_ExpiredTokenIsInvalid(t *testing.T) {
	// arrange
	documents := newFakeDocuments()
	addUser(documents, "alice", "hash", core.RoleUser, "alice@example.com")
	reset := core.BuildPasswordReset("alice@example.com", time.Now().Add(-2*time.Hour))
	documents.resets[reset.Token] = reset
	service := newService(documents, &spyMailer{})

	// act
	err := service.CompleteReset(context.Background(), reset.Token, "newpass", "newpass")

	// assert
	assert.ErrorIs(t, err, registration.ErrResetInvalid)
}
