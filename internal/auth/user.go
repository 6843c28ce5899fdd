package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/mentorai/mentorai/internal/email"
	"github.com/mentorai/mentorai/internal/krypto"
)

// User contains the data for a user.
//
// While a verification request is outstanding VerificationToken and
// VerificationTokenExpiresAt are both set, at any other time both are
// nil. The store enforces this pairing.
type User struct {
	ID           uuid.UUID
	Email        email.Address
	PasswordHash krypto.Argon2Hash
	IsVerified   bool
	// VerificationToken is the outstanding email verification token.
	// It is compared by exact value when the user proves control of
	// their mailbox.
	VerificationToken          *krypto.Token
	VerificationTokenExpiresAt *time.Time
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// Public is the projection of a user that is safe to return to clients.
// The password hash is deliberately not part of it.
type Public struct {
	ID    uuid.UUID     `json:"id"`
	Email email.Address `json:"email"`
}

// Public returns the public projection of the user.
func (u User) Public() Public {
	return Public{
		ID:    u.ID,
		Email: u.Email,
	}
}

// Credentials are the login credentials for a user.
type Credentials struct {
	Email    email.Address
	Password Password
}
