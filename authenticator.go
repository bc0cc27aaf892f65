package accounts

import (
	"context"
)

// Auther authenticates credentials and issues access tokens.
type Auther struct {
	provider        IdentityProvider
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        []string
	logger          Logger
	tokenService    TokenService
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:        provider,
		signingKey:      []byte(opts.GetSigningKey()),
		tokenExpiration: opts.GetTokenExpiration(),
		audience:        opts.GetAudience(),
		issuer:          opts.GetIssuer(),
		logger:          defLogger{},
		tokenService:    tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	// Keep the TokenService logger in sync
	s.tokenService = NewTokenService(
		s.signingKey,
		s.tokenExpiration,
		s.issuer,
		s.audience,
		logger,
	)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Authenticate validates an identifier/password pair and returns the user.
// Failures carry no signal about whether the identifier exists.
func (s *Auther) Authenticate(ctx context.Context, identifier, password string) (*User, error) {
	user, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Info("authentication failed", "identifier", identifier)
		return nil, err
	}
	return user, nil
}

// Login authenticates and issues a bearer token whose subject is the
// user's ID.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	user, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		return "", err
	}

	token, err := s.tokenService.Issue(user.Subject(), s.tokenService.DefaultTTL())
	if err != nil {
		s.logger.Error("login token issuance failed", "error", err)
		return "", err
	}

	return token, nil
}
