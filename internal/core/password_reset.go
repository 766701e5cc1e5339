package core

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PasswordResetTTL is the store-level lifetime of a reset token.
const PasswordResetTTL = time.Hour

const resetTokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const resetTokenLength = 26

// PasswordReset is a pending reset token for one email. A newer request for
// the same email supersedes the old row; a successful reset consumes it.
type PasswordReset struct {
	ID        string
	Email     EmailString
	Token     string
	CreatedAt time.Time
}

// BuildPasswordReset creates a reset entry with a fresh random token.
func BuildPasswordReset(email EmailString, createdAt time.Time) PasswordReset {
	return PasswordReset{
		ID:        uuid.New().String(),
		Email:     email,
		Token:     NewResetToken(),
		CreatedAt: ToOccurredAt(createdAt),
	}
}

// IsExpired reports whether the token has outlived PasswordResetTTL.
func (p PasswordReset) IsExpired(now time.Time) bool {
	return now.Sub(p.CreatedAt) > PasswordResetTTL
}

// NewResetToken generates a random alphanumeric token.
func NewResetToken() string {
	token := make([]byte, resetTokenLength)
	max := big.NewInt(int64(len(resetTokenAlphabet)))

	for i := range token {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// fall back to a uuid-derived token rather than a weak one.
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		}

		token[i] = resetTokenAlphabet[n.Int64()]
	}

	return string(token)
}
