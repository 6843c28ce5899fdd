package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/mentorai/mentorai/internal/email"
	"github.com/mentorai/mentorai/internal/krypto"
)

// UserFilter is used to filter users.
// Returned users must match all the provided fields.
// If a field is empty or nil, it's ignored.
type UserFilter struct {
	IDs                []uuid.UUID
	Emails             []email.Address
	VerificationTokens []krypto.Token
	IsVerified         *bool
}

// Store provides access to the user store.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)

	// FindUsers queries outside of a transaction, for read-only paths
	// like login that don't need read-then-write atomicity.
	FindUsers(ctx context.Context, filter *UserFilter) ([]User, error)
}

// Tx is a transaction. If an error occurs on any of the Create/Update/Find
// methods, the transaction is considered to have failed and should be
// rolled back. Tx is not safe for concurrent use.
type Tx interface {
	Commit() error
	Rollback() error

	CreateUser(u *User) error
	UpdateUser(u *User) error
	FindUsers(filter *UserFilter) ([]User, error)
}
