package auth

import (
	"time"

	"github.com/mentorai/mentorai/internal/krypto"
)

// verificationExpiry is how long an email verification token stays valid.
const verificationExpiry = 24 * time.Hour

// Verification is a single-use email verification token and its expiry.
type Verification struct {
	Token     krypto.Token
	ExpiresAt time.Time
}

// issueVerification generates a fresh verification token that expires
// 24 hours from now. The token is cryptographically random and not
// derived from any user data.
func issueVerification(now time.Time) (Verification, error) {
	token, err := krypto.GenerateToken()
	if err != nil {
		return Verification{}, err
	}

	return Verification{
		Token:     token,
		ExpiresAt: now.Add(verificationExpiry),
	}, nil
}
