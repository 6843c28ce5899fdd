// Package auth implements the authentication core: credential
// registration with email verification, login and stateless session
// tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mentorai/mentorai/internal/email"
	"github.com/mentorai/mentorai/internal/errorz"
	"github.com/mentorai/mentorai/internal/krypto"
)

var (
	// ErrDuplicateUser indicates the email address is already registered.
	ErrDuplicateUser = errors.New("duplicate user")
	// ErrTokenInvalid covers both unknown and expired verification tokens.
	// The two causes are deliberately not distinguished, distinguishing
	// them would give feedback to someone guessing tokens.
	ErrTokenInvalid = errors.New("invalid or expired verification token")
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	// Same reasoning as above, a distinct error per cause would allow
	// user enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotVerified indicates the password matched but the account has
	// not completed email verification. This one is intentionally
	// distinct, the caller already proved password knowledge.
	ErrNotVerified = errors.New("account not verified")
)

// Emailer is used to send templated emails.
type Emailer interface {
	Send(ctx context.Context, template string, to email.Address, data any) error
}

// ErrFunc is a function that handles errors from worker goroutines.
type ErrFunc func(error)

// VerificationEmail is the data passed to the verification email template.
type VerificationEmail struct {
	Link string
}

// ServiceConfig is the configuration for the Service.
type ServiceConfig struct {
	// WorkerTimeout is the max duration worker goroutines are allowed
	// to take before they are cancelled.
	WorkerTimeout time.Duration
	// BaseURL is used to build the verification link sent by email.
	BaseURL string
}

// Service provides the main rules for authentication. It drives each
// user through the states pending verification -> verified.
type Service struct {
	store      Store
	emailer    Emailer
	sessions   *SessionTokens
	wg         *sync.WaitGroup
	errHandler ErrFunc
	cfg        ServiceConfig

	// comparisonHash is used to compare passwords when no user was found.
	comparisonHash krypto.Argon2Hash

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(s Store, emailer Emailer, sessions *SessionTokens, errHandler ErrFunc, cfg ServiceConfig) (*Service, error) {
	tok, err := krypto.GenerateToken()
	if err != nil {
		return nil, err
	}

	hash, err := krypto.HashArgon2(tok[:])
	if err != nil {
		return nil, err
	}

	svc := &Service{
		store:          s,
		emailer:        emailer,
		sessions:       sessions,
		wg:             &sync.WaitGroup{},
		errHandler:     errHandler,
		cfg:            cfg,
		comparisonHash: hash,
		NowFunc:        time.Now,
	}

	return svc, nil
}

// Wait waits for all open workers to finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Register registers a new user with the provided credentials and kicks
// off the verification flow.
//
// It returns ErrDuplicateUser if the email address is already taken. The
// unique index on the email column is the safeguard against concurrent
// registrations, two racing calls both observing "not found" still end
// up with a single user and one ErrDuplicateUser.
//
// The verification email is sent in a separate goroutine. A failure to
// send is reported to the error handler, not to the caller, at that
// point the registration itself has already succeeded.
func (s *Service) Register(ctx context.Context, c Credentials) error {
	pwdHash, err := c.Password.Hash()
	if err != nil {
		return err
	}

	now := s.NowFunc()

	verification, err := issueVerification(now)
	if err != nil {
		return err
	}

	user := User{
		ID:                         uuid.New(),
		Email:                      c.Email,
		PasswordHash:               pwdHash,
		IsVerified:                 false,
		VerificationToken:          &verification.Token,
		VerificationTokenExpiresAt: &verification.ExpiresAt,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}

	err = s.inTx(ctx, func(tx Tx) error {
		users, txErr := tx.FindUsers(&UserFilter{
			Emails: []email.Address{user.Email},
		})
		if txErr != nil {
			return txErr
		}

		if len(users) > 0 {
			return ErrDuplicateUser
		}

		return tx.CreateUser(&user)
	})
	if err != nil {
		// The unique index caught a registration race.
		if errors.Is(err, errorz.ErrConstraintViolated) {
			return ErrDuplicateUser
		}
		return err
	}

	// Send the email in the background. This could fail independently of
	// the transaction, an acceptable risk, the user record is already in
	// the pending state and a failed email only means the user needs to
	// register again.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		wCtx, cancel := context.WithTimeout(context.Background(), s.cfg.WorkerTimeout)
		defer cancel()

		sendErr := s.emailer.Send(wCtx, "user-verification", user.Email, VerificationEmail{
			Link: fmt.Sprintf("%s/verify?token=%s", s.cfg.BaseURL, verification.Token),
		})
		if sendErr != nil {
			s.errHandler(fmt.Errorf("failed to send verification email: %w", sendErr))
		}
	}()

	return nil
}

// VerifyEmail marks the user identified by the token as verified.
//
// It returns ErrTokenInvalid when no user holds the token or when the
// token has expired. On success the token fields are cleared, so a
// second call with the same token fails, tokens are single use.
func (s *Service) VerifyEmail(ctx context.Context, token krypto.Token) error {
	return s.inTx(ctx, func(tx Tx) error {
		users, err := tx.FindUsers(&UserFilter{
			VerificationTokens: []krypto.Token{token},
		})
		if err != nil {
			return err
		}

		if len(users) != 1 {
			return ErrTokenInvalid
		}

		user := users[0]
		now := s.NowFunc()

		if user.VerificationTokenExpiresAt == nil || !now.Before(*user.VerificationTokenExpiresAt) {
			return ErrTokenInvalid
		}

		user.IsVerified = true
		user.VerificationToken = nil
		user.VerificationTokenExpiresAt = nil
		user.UpdatedAt = now

		return tx.UpdateUser(&user)
	})
}

// Login checks the provided credentials and issues a session token.
//
// Unknown emails and wrong passwords both result in
// ErrInvalidCredentials. A correct password on an unverified account
// results in ErrNotVerified.
func (s *Service) Login(ctx context.Context, c Credentials) (string, Public, error) {
	users, err := s.store.FindUsers(ctx, &UserFilter{
		Emails: []email.Address{c.Email},
	})
	if err != nil {
		return "", Public{}, err
	}

	if len(users) != 1 {
		// Even if no user is found we compare to a hash to prevent timing
		// differences that could result in user enumeration attacks.
		_ = c.Password.Match(s.comparisonHash)
		return "", Public{}, ErrInvalidCredentials
	}

	user := users[0]

	if !c.Password.Match(user.PasswordHash) {
		return "", Public{}, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return "", Public{}, ErrNotVerified
	}

	token, err := s.sessions.Issue(user.ID, user.Email, LoginSessionTTL)
	if err != nil {
		return "", Public{}, err
	}

	return token, user.Public(), nil
}

func (s *Service) inTx(ctx context.Context, f func(tx Tx) error) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}

	err = f(tx)
	if err != nil {
		rBackErr := tx.Rollback()
		if rBackErr != nil {
			err = errors.Join(err, rBackErr)
		}
		return err
	}

	return tx.Commit()
}
