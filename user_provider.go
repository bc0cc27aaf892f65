package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserStore is the slice of the Users repository the provider consumes.
type UserStore interface {
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

// UserProvider verifies credentials against the user store. Unknown
// identifiers and password mismatches are indistinguishable to callers.
type UserProvider struct {
	store             UserStore
	hasher            PasswordAuthenticator
	logger            Logger
	skipPasswordCheck bool
}

var _ IdentityProvider = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserStore, hasher PasswordAuthenticator) *UserProvider {
	if hasher == nil {
		hasher = NewHasher(DefaultBcryptCost)
	}
	return &UserProvider{
		store:  store,
		hasher: hasher,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// WithInsecureSkipPasswordCheck disables password verification so that any
// known identifier authenticates. It exists only to reproduce the behavior
// of a legacy deployment that authenticated by email alone and must never
// be enabled for new installs.
func (u *UserProvider) WithInsecureSkipPasswordCheck() *UserProvider {
	u.skipPasswordCheck = true
	u.logger.Warn("password verification is DISABLED; identifiers alone grant access")
	return u
}

// VerifyIdentity will find the user, compare the password, and return the
// user on success.
func (u *UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (*User, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user.HashedPassword == "" {
		// persisted users always carry a hash; treat the hole as a mismatch
		u.logger.Error("user record has empty password hash", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	if !u.skipPasswordCheck {
		if err := u.hasher.ComparePasswordAndHash(password, user.HashedPassword); err != nil {
			return nil, ErrInvalidCredentials
		}
	}

	return user, nil
}

// FindUserBySubject resolves a verified token subject to its user record.
func (u *UserProvider) FindUserBySubject(ctx context.Context, subject string) (*User, error) {
	id, err := ParseSubject(subject)
	if err != nil {
		return nil, err
	}

	user, err := u.store.GetByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}
