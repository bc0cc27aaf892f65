package accounts

import (
	"context"
	"net/http"

	"github.com/goliatone/go-accounts/middleware/jwtware"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteAuthenticator glues the token service and the identity provider into
// router middleware for bearer-token protected JSON routes.
type RouteAuthenticator struct {
	auth         Authenticator
	cfg          Config
	resolver     *CurrentUserResolver
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther Authenticator, resolver *CurrentUserResolver, cfg Config) (*RouteAuthenticator, error) {
	if auther == nil {
		return nil, errors.New("http authenticator requires an Authenticator", errors.CategoryBadInput)
	}

	if resolver == nil {
		return nil, errors.New("http authenticator requires a CurrentUserResolver", errors.CategoryBadInput)
	}

	a := &RouteAuthenticator{
		cfg:      cfg,
		auth:     auther,
		resolver: resolver,
		Logger:   defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

// tokenValidatorAdapter narrows TokenService.Validate to the middleware
// contract without an import cycle.
type tokenValidatorAdapter struct {
	tokens TokenValidator
}

func (v tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := v.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ProtectedRoute rejects requests that do not carry a trusted bearer token.
// Validated claims travel in both router locals and the request context.
func (a *RouteAuthenticator) ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = a.MakeClientRouteAuthErrorHandler()
	}

	return jwtware.New(jwtware.Config{
		ErrorHandler:   errorHandler,
		TokenValidator: tokenValidatorAdapter{tokens: a.auth.TokenService()},
		AuthScheme:     cfg.GetAuthScheme(),
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			if ac, ok := claims.(*AccessClaims); ok {
				return WithClaimsContext(ctx, ac)
			}
			return ctx
		},
	})
}

// WithCurrentUser loads the user behind the validated claims and stores the
// record in the request context. Must run after ProtectedRoute.
func (a *RouteAuthenticator) WithCurrentUser() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			claims, ok := GetClaims(ctx.Context())
			if !ok {
				return a.ErrorHandler(ctx, ErrUnauthorized)
			}

			user, err := a.resolver.ResolveSubject(ctx.Context(), claims.Subject())
			if err != nil {
				return a.ErrorHandler(ctx, err)
			}

			ctx.SetContext(WithContext(ctx.Context(), user))
			return hf(ctx)
		}
	}
}

// SuperuserOnly rejects requests whose resolved user lacks superuser
// privileges. Must run after WithCurrentUser.
func (a *RouteAuthenticator) SuperuserOnly() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			user, _ := FromContext(ctx.Context())
			if _, err := RequireSuperuser(user); err != nil {
				return a.ErrorHandler(ctx, err)
			}
			return hf(ctx)
		}
	}
}

// MakeClientRouteAuthErrorHandler normalizes middleware token failures to
// the rich error taxonomy before rendering.
func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler() func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *errors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else if !errors.As(err, &richErr) {
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
				WithCode(errors.CodeUnauthorized)
		}

		return a.ErrorHandler(ctx, richErr)
	}
}

// ErrorStatus maps a failure to its HTTP status code.
func ErrorStatus(err error) int {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return http.StatusInternalServerError
	}

	switch richErr.Category {
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case errors.CategoryOperation:
		return http.StatusServiceUnavailable
	default:
		if richErr.Code >= http.StatusBadRequest {
			return richErr.Code
		}
		return http.StatusInternalServerError
	}
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		if IsTokenExpiredError(err) || IsMalformedError(err) {
			richErr = ErrUnauthorized
		} else {
			richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
				WithCode(errors.CodeInternal)
		}
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	return RenderError(c, richErr)
}

// RenderError writes the JSON error envelope. Server-side failures hide
// their message from the client.
func RenderError(c router.Context, err error) error {
	status := ErrorStatus(err)

	detail := "An unexpected server error occurred"
	code := ""

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		code = richErr.TextCode
		if status < http.StatusInternalServerError {
			detail = richErr.Message
		}
	}

	body := map[string]any{"detail": detail}
	if code != "" {
		body["code"] = code
	}

	return c.JSON(status, body)
}
