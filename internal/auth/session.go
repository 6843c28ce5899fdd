package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mentorai/mentorai/internal/email"
	"github.com/mentorai/mentorai/internal/krypto"
)

// LoginSessionTTL is how long a session issued by a successful login stays valid.
const LoginSessionTTL = 7 * 24 * time.Hour

// ErrInvalidSession indicates a session token did not validate. Tampering,
// a signature mismatch and expiry all collapse into this single error, a
// token that fails validation carries no trusted claims at all.
var ErrInvalidSession = errors.New("invalid or expired session token")

// Session is the identity asserted by a validated session token.
type Session struct {
	UserID uuid.UUID
	Email  email.Address
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// SessionTokens issues and validates signed session tokens.
//
// The tokens are self-contained, there is no server side session table.
// Possession of a validly signed, unexpired token is the sole proof of
// identity, revocation is limited to the expiry window.
type SessionTokens struct {
	signingKey krypto.Key

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

// NewSessionTokens creates a session token service that signs with the
// provided key.
func NewSessionTokens(signingKey krypto.Key) *SessionTokens {
	return &SessionTokens{
		signingKey: signingKey,
		NowFunc:    time.Now,
	}
}

// Issue creates a signed token asserting the identity of the user for
// the provided duration.
func (s *SessionTokens) Issue(userID uuid.UUID, addr email.Address, ttl time.Duration) (string, error) {
	now := s.NowFunc()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: string(addr),
	})

	return token.SignedString(s.signingKey.SecretValue())
}

// Validate verifies the signature and expiry of a raw token and returns
// the session it asserts. Any failure results in ErrInvalidSession,
// claims from an invalid token are never returned.
func (s *SessionTokens) Validate(raw string) (Session, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.signingKey.SecretValue(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.NowFunc() }),
	)
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidSession
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Session{}, ErrInvalidSession
	}

	return Session{
		UserID: userID,
		Email:  email.Address(claims.Email),
	}, nil
}
