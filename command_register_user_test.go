package accounts_test

import (
	"context"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterUserHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the user inside a transaction", func(t *testing.T) {
		users := &MockUsers{}
		repo := &MockRepositoryManager{}

		repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		repo.On("Users").Return(users)

		users.On("CreateTx", mock.Anything, mock.Anything, mock.MatchedBy(func(u *accounts.User) bool {
			return u.Email == "pepe@example.com" &&
				u.Username == "pepe" &&
				u.FirstName == "Pepe" &&
				!u.IsSuperuser &&
				u.HashedPassword != "" &&
				u.HashedPassword != "super secret pass"
		})).Return(&accounts.User{ID: 42, Email: "pepe@example.com"}, nil)

		var created *accounts.User
		event := accounts.RegisterUserMessage{
			FirstName: "Pepe",
			LastName:  "Grillo",
			Username:  "pepe",
			Email:     "pepe@example.com",
			Password:  "super secret pass",
			OnResponse: func(u *accounts.User) {
				created = u
			},
		}

		handler := accounts.NewRegisterUserHandler(repo)
		require.NoError(t, handler.Execute(ctx, event))

		require.NotNil(t, created)
		assert.Equal(t, int64(42), created.ID)

		repo.AssertExpectations(t)
		users.AssertExpectations(t)
	})

	t.Run("stored hash verifies against the original password", func(t *testing.T) {
		users := &MockUsers{}
		repo := &MockRepositoryManager{}

		repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		repo.On("Users").Return(users)

		var hash string
		users.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				hash = args.Get(2).(*accounts.User).HashedPassword
			}).
			Return(&accounts.User{ID: 1}, nil)

		handler := accounts.NewRegisterUserHandler(repo)
		require.NoError(t, handler.Execute(ctx, accounts.RegisterUserMessage{
			Email:    "pepe@example.com",
			Password: "super secret pass",
		}))

		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("super secret pass")))
	})

	t.Run("empty password fails validation before hitting the store", func(t *testing.T) {
		users := &MockUsers{}
		repo := &MockRepositoryManager{}

		repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		repo.On("Users").Return(users)

		handler := accounts.NewRegisterUserHandler(repo)
		err := handler.Execute(ctx, accounts.RegisterUserMessage{
			Email: "pepe@example.com",
		})

		require.Error(t, err)
		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, goerrors.CategoryValidation, richErr.Category)
		users.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate identifier surfaces as a conflict", func(t *testing.T) {
		users := &MockUsers{}
		repo := &MockRepositoryManager{}

		repo.On("RunInTx", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		repo.On("Users").Return(users)

		users.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, accounts.ErrDuplicateIdentifier)

		handler := accounts.NewRegisterUserHandler(repo)
		err := handler.Execute(ctx, accounts.RegisterUserMessage{
			Email:    "taken@example.com",
			Password: "super secret pass",
		})

		assert.ErrorIs(t, err, accounts.ErrDuplicateIdentifier)
	})

	t.Run("cancelled context aborts before the transaction", func(t *testing.T) {
		repo := &MockRepositoryManager{}

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		handler := accounts.NewRegisterUserHandler(repo)
		err := handler.Execute(cancelled, accounts.RegisterUserMessage{
			Email:    "pepe@example.com",
			Password: "super secret pass",
		})

		require.Error(t, err)
		repo.AssertNotCalled(t, "RunInTx", mock.Anything, mock.Anything, mock.Anything)
	})
}
