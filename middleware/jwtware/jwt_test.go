package jwtware_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-accounts/middleware/jwtware"
)

type stubClaims struct {
	subject string
}

func (s stubClaims) Subject() string { return s.subject }

type stubValidator struct {
	claims jwtware.AuthClaims
	err    error
	seen   []string
}

func (s *stubValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	s.seen = append(s.seen, tokenString)
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func applyMiddleware(m router.MiddlewareFunc) router.HandlerFunc {
	return m(func(c router.Context) error {
		return nil
	})
}

func TestJWTWare_BasicHeaderExtraction(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "12345"}}

	cfg := jwtware.Config{
		TokenValidator: validator,
		ErrorHandler: func(ctx router.Context, err error) error {
			return err
		},
		// it will look for Authorization: Bearer <token>
	}

	handler := applyMiddleware(jwtware.New(cfg))

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer raw.jwt.token"
	ctx.On("GetString", "Authorization", "").Return("Bearer raw.jwt.token")
	ctx.On("Locals", "user", mock.Anything).Return(nil)

	err := handler(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
	require.Equal(t, []string{"raw.jwt.token"}, validator.seen)
}

func TestJWTWare_MissingToken(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "12345"}}

	handler := applyMiddleware(jwtware.New(jwtware.Config{
		TokenValidator: validator,
		ErrorHandler: func(ctx router.Context, err error) error {
			return err
		},
	}))

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("")

	err := handler(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), jwtware.ErrJWTMissingOrMalformed.Error())
	assert.Empty(t, validator.seen)
}

func TestJWTWare_ValidatorRejection(t *testing.T) {
	validator := &stubValidator{err: errors.New("token is malformed")}

	handler := applyMiddleware(jwtware.New(jwtware.Config{
		TokenValidator: validator,
		ErrorHandler: func(ctx router.Context, err error) error {
			return err
		},
	}))

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer bad.token"
	ctx.On("GetString", "Authorization", "").Return("Bearer bad.token")

	err := handler(ctx)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "token is malformed"))
	assert.False(t, ctx.NextCalled)
}

func TestJWTWare_FilterSkipsAuth(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "12345"}}

	handler := applyMiddleware(jwtware.New(jwtware.Config{
		TokenValidator: validator,
		Filter: func(c router.Context) bool {
			return true
		},
	}))

	ctx := router.NewMockContext()

	err := handler(ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
	assert.Empty(t, validator.seen)
}

func TestJWTWare_ValidationListeners(t *testing.T) {
	validator := &stubValidator{claims: stubClaims{subject: "42"}}

	var subjects []string
	listenerErr := errors.New("listener rejected")

	t.Run("listener sees claims", func(t *testing.T) {
		handler := applyMiddleware(jwtware.New(jwtware.Config{
			TokenValidator: validator,
			ErrorHandler: func(ctx router.Context, err error) error {
				return err
			},
			ValidationListeners: []jwtware.ValidationListener{
				nil, // skipped
				func(ctx router.Context, claims jwtware.AuthClaims) error {
					subjects = append(subjects, claims.Subject())
					return nil
				},
			},
		}))

		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer raw.jwt.token"
		ctx.On("GetString", "Authorization", "").Return("Bearer raw.jwt.token")
		ctx.On("Locals", "user", mock.Anything).Return(nil)

		require.NoError(t, handler(ctx))
		assert.Equal(t, []string{"42"}, subjects)
	})

	t.Run("listener failure stops the request", func(t *testing.T) {
		handler := applyMiddleware(jwtware.New(jwtware.Config{
			TokenValidator: validator,
			ErrorHandler: func(ctx router.Context, err error) error {
				return err
			},
			ValidationListeners: []jwtware.ValidationListener{
				func(ctx router.Context, claims jwtware.AuthClaims) error {
					return listenerErr
				},
			},
		}))

		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer raw.jwt.token"
		ctx.On("GetString", "Authorization", "").Return("Bearer raw.jwt.token")

		err := handler(ctx)
		require.ErrorIs(t, err, listenerErr)
		assert.False(t, ctx.NextCalled)
	})
}

func TestGetDefaultConfig(t *testing.T) {
	t.Run("fills in defaults", func(t *testing.T) {
		cfg := jwtware.GetDefaultConfig(jwtware.Config{
			TokenValidator: &stubValidator{},
		})

		assert.Equal(t, "user", cfg.ContextKey)
		assert.Equal(t, "Bearer", cfg.AuthScheme)
		assert.Equal(t, "header:"+router.HeaderAuthorization, cfg.TokenLookup)
		assert.NotNil(t, cfg.SuccessHandler)
		assert.NotNil(t, cfg.ErrorHandler)
	})

	t.Run("panics without a validator", func(t *testing.T) {
		assert.Panics(t, func() {
			jwtware.GetDefaultConfig(jwtware.Config{})
		})
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		cfg := jwtware.GetDefaultConfig(jwtware.Config{
			TokenValidator: &stubValidator{},
			ContextKey:     "principal",
			AuthScheme:     "Token",
			TokenLookup:    "cookie:jwt",
		})

		assert.Equal(t, "principal", cfg.ContextKey)
		assert.Equal(t, "Token", cfg.AuthScheme)
		assert.Equal(t, "cookie:jwt", cfg.TokenLookup)
	})
}

func TestGetExtractors(t *testing.T) {
	extractors := jwtware.GetExtractors("header:Authorization,query:token,cookie:jwt")
	assert.Len(t, extractors, 3)

	extractors = jwtware.GetExtractors("header:Authorization")
	assert.Len(t, extractors, 1)
}
