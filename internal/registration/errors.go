package registration

import "errors"

var (
	// ErrSuspended rejects logins and registrations from denylisted identities.
	ErrSuspended = errors.New("account is suspended")

	// ErrInvalidCredentials hides whether the username or the password was
	// wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotApproved rejects logins from accounts still awaiting approval.
	ErrNotApproved = errors.New("account not approved yet")

	// ErrUsernameTaken rejects registrations colliding with an existing
	// account or a pending request.
	ErrUsernameTaken = errors.New("username already taken or pending approval")

	// ErrUserExists rejects direct account creation for an existing username.
	ErrUserExists = errors.New("username already exists")

	// ErrUserNotFound is returned for operations on unknown accounts.
	ErrUserNotFound = errors.New("user not found")

	// ErrRequestNotFound is returned when a registration request was already
	// decided or never existed. Approval and rejection are terminal.
	ErrRequestNotFound = errors.New("request not found or already processed")

	// ErrLastAdmin protects the system from losing its only administrator.
	ErrLastAdmin = errors.New("cannot delete the last administrator")

	// ErrNoAccountForEmail is returned when a password reset is requested for
	// an unknown address.
	ErrNoAccountForEmail = errors.New("no account found with that email address")

	// ErrPasswordMismatch is returned when the reset confirmation differs.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrResetInvalid covers unknown and expired reset tokens alike.
	ErrResetInvalid = errors.New("invalid or expired reset token")
)
