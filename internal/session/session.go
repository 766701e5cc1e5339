// Package session implements opaque server-side sessions. The browser only
// ever holds a random uuid cookie; everything else lives in the backing
// store, so deleting the server-side record is a hard logout no client can
// outlive.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/librarium-app/librarium/internal/core"
)

// DefaultTTL is how long an untouched session survives.
const DefaultTTL = 24 * time.Hour

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Data is the server-side session record. Flash messages ride along with the
// signed-in identity and are consumed on the next render.
type Data struct {
	Username     core.UsernameString `json:"username"`
	Role         core.Role           `json:"role"`
	FlashSuccess []string            `json:"flashSuccess,omitempty"`
	FlashError   []string            `json:"flashError,omitempty"`
}

// IsAuthenticated reports whether the session belongs to a signed-in user.
// Anonymous sessions exist to carry flash messages across redirects.
func (d Data) IsAuthenticated() bool {
	return d.Username != ""
}

// AddSuccess queues a one-shot success message.
func (d *Data) AddSuccess(message string) {
	d.FlashSuccess = append(d.FlashSuccess, message)
}

// AddError queues a one-shot error message.
func (d *Data) AddError(message string) {
	d.FlashError = append(d.FlashError, message)
}

// PopFlashes returns the queued messages and clears them.
func (d *Data) PopFlashes() (success, failure []string) {
	success, failure = d.FlashSuccess, d.FlashError
	d.FlashSuccess, d.FlashError = nil, nil

	return success, failure
}

// Store persists session records under opaque ids.
type Store interface {
	Create(ctx context.Context, data Data) (string, error)
	Get(ctx context.Context, id string) (Data, error)
	Save(ctx context.Context, id string, data Data) error
	Delete(ctx context.Context, id string) error
}

// NewSessionID generates an opaque session identifier. It carries no
// user-derived information.
func NewSessionID() string {
	return uuid.NewString()
}
