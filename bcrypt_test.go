package accounts_test

import (
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hasher := accounts.NewHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true, // bcrypt can hash empty strings, we refuse them
		},
		{
			name:     "Long password",
			password: "a-password-with-quite-a-few-characters-in-it!!",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.HashPassword(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, accounts.ErrNoEmptyString)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)
			assert.NoError(t, hasher.ComparePasswordAndHash(tt.password, hash))
		})
	}
}

func TestComparePasswordAndHash(t *testing.T) {
	hasher := accounts.NewHasher(bcrypt.MinCost)

	hash, err := hasher.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  bool
	}{
		{
			name:     "Matching password",
			password: "correct horse battery staple",
			hash:     hash,
			wantErr:  false,
		},
		{
			name:     "Wrong password",
			password: "incorrect horse",
			hash:     hash,
			wantErr:  true,
		},
		{
			name:     "Malformed hash",
			password: "correct horse battery staple",
			hash:     "not-a-bcrypt-hash",
			wantErr:  true,
		},
		{
			name:     "Empty hash",
			password: "correct horse battery staple",
			hash:     "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hasher.ComparePasswordAndHash(tt.password, tt.hash)

			if tt.wantErr {
				// every failure collapses to the same credential error
				assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewHasherCostClamping(t *testing.T) {
	// out-of-range costs fall back to the default; hashing still works
	for _, cost := range []int{-1, 0, 99} {
		hasher := accounts.NewHasher(cost)
		hash, err := hasher.HashPassword("some password")
		require.NoError(t, err)

		actual, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, accounts.DefaultBcryptCost, actual)
	}
}

func TestHashesAreSalted(t *testing.T) {
	hasher := accounts.NewHasher(bcrypt.MinCost)

	h1, err := hasher.HashPassword("same password")
	require.NoError(t, err)
	h2, err := hasher.HashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
