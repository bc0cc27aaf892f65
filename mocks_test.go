package accounts_test

import (
	"context"
	"database/sql"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// mockConfig implements accounts.Config for wiring tests.
type mockConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
	audience        []string
	bcryptCost      int
}

func (c mockConfig) GetSigningKey() string    { return c.signingKey }
func (c mockConfig) GetSigningMethod() string { return "HS256" }
func (c mockConfig) GetContextKey() string    { return "user" }
func (c mockConfig) GetTokenExpiration() int {
	if c.tokenExpiration == 0 {
		return 30
	}
	return c.tokenExpiration
}
func (c mockConfig) GetTokenLookup() string { return "header:Authorization" }
func (c mockConfig) GetAuthScheme() string  { return "Bearer" }
func (c mockConfig) GetIssuer() string      { return c.issuer }
func (c mockConfig) GetAudience() []string  { return c.audience }
func (c mockConfig) GetBcryptCost() int     { return c.bcryptCost }

// MockUserStore implements accounts.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByIdentifier(ctx context.Context, identifier string) (*accounts.User, error) {
	args := m.Called(ctx, identifier)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*accounts.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockIdentityProvider implements accounts.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (*accounts.User, error) {
	args := m.Called(ctx, identifier, password)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindUserBySubject(ctx context.Context, subject string) (*accounts.User, error) {
	args := m.Called(ctx, subject)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUsers implements accounts.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByID(ctx context.Context, id int64) (*accounts.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*accounts.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByIdentifier(ctx context.Context, identifier string) (*accounts.User, error) {
	args := m.Called(ctx, identifier)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, record)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, tx, record)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Save(ctx context.Context, record *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, record)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) SaveTx(ctx context.Context, tx bun.IDB, record *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, tx, record)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) ResetPasswordTx(ctx context.Context, tx bun.IDB, id int64, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) List(ctx context.Context, offset, limit int) ([]*accounts.User, error) {
	args := m.Called(ctx, offset, limit)
	if u, ok := args.Get(0).([]*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockPasswordResets stubs the password reset repository. Only the methods
// the command handlers touch are overridden; anything else panics through
// the embedded nil interface.
type MockPasswordResets struct {
	repository.Repository[*accounts.PasswordReset]
	mock.Mock
}

func (m *MockPasswordResets) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*accounts.PasswordReset, error) {
	args := m.Called(ctx, id, criteria)
	if r, ok := args.Get(0).(*accounts.PasswordReset); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPasswordResets) CreateTx(ctx context.Context, tx bun.IDB, record *accounts.PasswordReset, criteria ...repository.InsertCriteria) (*accounts.PasswordReset, error) {
	args := m.Called(ctx, tx, record, criteria)
	if r, ok := args.Get(0).(*accounts.PasswordReset); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPasswordResets) UpdateTx(ctx context.Context, tx bun.IDB, record *accounts.PasswordReset, criteria ...repository.UpdateCriteria) (*accounts.PasswordReset, error) {
	args := m.Called(ctx, tx, record, criteria)
	if r, ok := args.Get(0).(*accounts.PasswordReset); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRepositoryManager implements accounts.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Users() accounts.Users {
	args := m.Called()
	return args.Get(0).(accounts.Users)
}

func (m *MockRepositoryManager) PasswordResets() repository.Repository[*accounts.PasswordReset] {
	args := m.Called()
	return args.Get(0).(repository.Repository[*accounts.PasswordReset])
}

func (m *MockRepositoryManager) Validate() error { return nil }

func (m *MockRepositoryManager) MustValidate() {}

// RunInTx executes the closure with a zero transaction so handler logic can
// run against the other mocks. A non nil Return short circuits the closure.
func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	if err := args.Error(0); err != nil {
		return err
	}
	return f(ctx, bun.Tx{})
}
