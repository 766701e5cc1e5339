package mail_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium-app/librarium/internal/core"
	"github.com/librarium-app/librarium/internal/mail"
)

type spySender struct {
	mu      sync.Mutex
	sent    []mail.Message
	sendErr error
}

func (s *spySender) Send(_ context.Context, message mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sendErr != nil {
		return s.sendErr
	}

	s.sent = append(s.sent, message)

	return nil
}

func (s *spySender) messages() []mail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]mail.Message(nil), s.sent...)
}

func Test_Queue_DeliversEnqueuedMessages(t *testing.T) {
	// arrange
	sender := &spySender{}
	queue := mail.NewQueue(sender, nil)

	// act
	queue.Enqueue(mail.Message{To: "admin@example.com", Subject: "New Registration Request"})
	queue.Enqueue(mail.Message{To: "alice@example.com", Subject: "Library Approval"})
	queue.Close()

	// assert
	sent := sender.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, "admin@example.com", sent[0].To)
	assert.Equal(t, "alice@example.com", sent[1].To)
}

func Test_Queue_DeliveryFailureDoesNotStopTheWorker(t *testing.T) {
	// arrange
	sender := &spySender{sendErr: errors.New("smtp unreachable")}
	queue := mail.NewQueue(sender, nil)

	// act - both fail, Close still returns
	queue.Enqueue(mail.Message{To: "a@example.com"})
	queue.Enqueue(mail.Message{To: "b@example.com"})

	done := make(chan struct{})
	go func() {
		queue.Close()
		close(done)
	}()

	// assert
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("queue did not drain after delivery failures")
	}
	assert.Empty(t, sender.messages())
}

func Test_RegistrationNotice_LinksApproveAndReject(t *testing.T) {
	// arrange
	request := core.BuildRegistrationRequest("alice", "hash", "alice@example.com", time.Now())

	// act
	message, err := mail.RegistrationNotice("admin@example.com", request, "http://library.example.com")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", message.To)
	assert.Contains(t, message.Body, "http://library.example.com/approve/"+request.ID)
	assert.Contains(t, message.Body, "http://library.example.com/reject/"+request.ID)
	assert.Contains(t, message.Body, "alice")
}

func Test_PasswordResetNotice_CarriesTokenLink(t *testing.T) {
	// act
	message, err := mail.PasswordResetNotice("alice@example.com", "tok123", "http://library.example.com")

	// assert
	require.NoError(t, err)
	assert.Contains(t, message.Body, "http://library.example.com/reset-password/tok123")
	assert.Contains(t, message.Body, "expire in 1 hour")
}
