package core

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationRequest is a pending account awaiting an admin decision.
// It is consumed on approval (promoted to a User) or rejection (discarded);
// both transitions are terminal.
type RegistrationRequest struct {
	ID           string
	Username     UsernameString
	PasswordHash string
	Email        EmailString
	RequestedAt  time.Time
}

// BuildRegistrationRequest creates a pending request with a fresh identity.
func BuildRegistrationRequest(username UsernameString, passwordHash string, email EmailString, requestedAt time.Time) RegistrationRequest {
	return RegistrationRequest{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		RequestedAt:  ToOccurredAt(requestedAt),
	}
}

// Promote converts an approved request into a regular approved User.
func (r RegistrationRequest) Promote(approvedAt time.Time) User {
	user := BuildUser(r.Username, r.PasswordHash, RoleUser, r.Email, approvedAt)
	user.Approved = true

	return user
}

// DefaultSuspensionReason is recorded when an admin deletes an account.
const DefaultSuspensionReason = "Account deleted by admin"

// SuspendedUser is a permanent denylist entry: it blocks registration and
// login under the same username or email until an operator removes the record
// out-of-band. There is no unsuspend operation and no expiry.
type SuspendedUser struct {
	ID          string
	Username    UsernameString
	Email       EmailString
	Reason      string
	SuspendedAt time.Time
}

// BuildSuspendedUser creates the denylist entry for a deleted account.
func BuildSuspendedUser(username UsernameString, email EmailString, reason string, suspendedAt time.Time) SuspendedUser {
	if reason == "" {
		reason = DefaultSuspensionReason
	}

	return SuspendedUser{
		ID:          uuid.New().String(),
		Username:    username,
		Email:       email,
		Reason:      reason,
		SuspendedAt: ToOccurredAt(suspendedAt),
	}
}
