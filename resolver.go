package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
)

// CurrentUserResolver derives a trusted user from a raw bearer token:
// validate the token, then load the user the subject claim names.
type CurrentUserResolver struct {
	tokens         TokenValidator
	provider       IdentityProvider
	logger         Logger
	strictNotFound bool
}

// NewCurrentUserResolver returns a resolver over the given validator and
// identity provider.
func NewCurrentUserResolver(tokens TokenValidator, provider IdentityProvider) *CurrentUserResolver {
	return &CurrentUserResolver{
		tokens:   tokens,
		provider: provider,
		logger:   defLogger{},
	}
}

func (r *CurrentUserResolver) WithLogger(l Logger) *CurrentUserResolver {
	if l != nil {
		r.logger = l
	}
	return r
}

// WithStrictNotFound normalizes valid-but-stale tokens (user removed after
// issuance) to the same unauthorized outcome as a bad token, so callers
// cannot distinguish the two. The default preserves the upstream contract
// of a not-found outcome.
func (r *CurrentUserResolver) WithStrictNotFound() *CurrentUserResolver {
	r.strictNotFound = true
	return r
}

// Resolve validates the raw token and loads the user it names.
func (r *CurrentUserResolver) Resolve(ctx context.Context, rawToken string) (*User, error) {
	claims, err := r.tokens.Validate(rawToken)
	if err != nil {
		// expired vs malformed stays visible in logs, not to callers
		r.logger.Info("token rejected", "error", err)
		return nil, err
	}

	return r.ResolveSubject(ctx, claims.Subject())
}

// ResolveSubject loads the user behind an already verified subject claim.
func (r *CurrentUserResolver) ResolveSubject(ctx context.Context, subject string) (*User, error) {
	user, err := r.provider.FindUserBySubject(ctx, subject)
	if err != nil {
		if errors.IsNotFound(err) {
			r.logger.Info("token subject has no backing user", "subject", subject)
			if r.strictNotFound {
				return nil, ErrUnauthorized
			}
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// RequireSuperuser passes the user through if it holds superuser
// privileges and fails with ErrForbidden otherwise.
func RequireSuperuser(user *User) (*User, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	if !user.IsSuperuser {
		return nil, ErrForbidden
	}
	return user, nil
}
