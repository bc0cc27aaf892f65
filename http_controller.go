package accounts

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RegisterAccountRoutes mounts the account API on the given router.
// Public: login, signup, password reset, health. Protected: the me
// endpoints. Superuser: the user administration endpoints.
func RegisterAccountRoutes[T any](app router.Router[T], opts ...AccountControllerOption) {

	controller := NewAccountController(opts...)

	protected := controller.RouteAuth.ProtectedRoute(controller.Config, nil)
	withUser := controller.RouteAuth.WithCurrentUser()
	superuser := controller.RouteAuth.SuperuserOnly()

	app.Get("/", controller.Health).SetName("health.get")

	app.Post("/login", controller.LoginPost).SetName("login.post")

	app.Post("/users/signup", controller.SignupPost).SetName("signup.post")

	app.Post("/password-reset", controller.PasswordResetPost).
		SetName("pwd-reset.post")
	app.Post("/password-reset/finalize", controller.PasswordResetFinalize).
		SetName("pwd-reset-finalize.post")

	app.Get("/users/me", controller.MeGet, protected, withUser).
		SetName("users-me.get")
	app.Patch("/users/me", controller.MePatch, protected, withUser).
		SetName("users-me.patch")

	app.Get("/users", controller.UsersList, protected, withUser, superuser).
		SetName("users.list")
	app.Post("/users", controller.UsersCreate, protected, withUser, superuser).
		SetName("users.create")
}

type AccountController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Auther       Authenticator
	RouteAuth    *RouteAuthenticator
	Config       Config
	ErrorHandler router.ErrorHandler
}

type AccountControllerOption func(*AccountController) *AccountController

func NewAccountController(opts ...AccountControllerOption) *AccountController {
	c := &AccountController{
		Logger:       defLogger{},
		ErrorHandler: RenderError,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in account controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in account controller...")
	}

	if c.RouteAuth == nil {
		panic("Missing RouteAuthenticator in account controller...")
	}

	if c.Config == nil {
		panic("Missing Config in account controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuthenticator(auther Authenticator) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Auther = auther
		return c
	}
}

func WithControllerRouteAuth(routeAuth *RouteAuthenticator) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.RouteAuth = routeAuth
		return c
	}
}

func WithControllerConfig(cfg Config) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Config = cfg
		return c
	}
}

// Health is the liveness probe.
func (a *AccountController) Health(ctx router.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// TokenResponse is the login response body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (a *AccountController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, validationError(err))
	}

	token, err := a.Auther.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// SignupPayload is the public registration payload.
type SignupPayload struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Username  string `form:"username" json:"username"`
	Email     string `form:"email" json:"email"`
	Password  string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(0, 200)),
		validation.Field(&r.LastName, validation.Length(0, 200)),
		validation.Field(&r.Username, validation.Length(0, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
	)
}

func (a *AccountController) SignupPost(ctx router.Context) error {
	payload := new(SignupPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signup parse payload", "error", err)
		return a.ErrorHandler(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("signup validate payload", "error", err)
		return a.ErrorHandler(ctx, validationError(err))
	}

	var created *User

	req := RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  payload.Password,
		// self registration never grants privileges
		IsSuperuser: false,
		OnResponse: func(user *User) {
			created = user
		},
	}

	registerUser := NewRegisterUserHandler(a.Repo)
	if err := registerUser.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("signup register user", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, created)
}

func (a *AccountController) MeGet(ctx router.Context) error {
	user, ok := FromContext(ctx.Context())
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthorized)
	}
	return ctx.JSON(http.StatusOK, user)
}

// UserUpdatePayload carries the self-service profile mutation. Nil fields
// are left untouched.
type UserUpdatePayload struct {
	FirstName *string `form:"first_name" json:"first_name"`
	LastName  *string `form:"last_name" json:"last_name"`
	Email     *string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r UserUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(0, 200)),
		validation.Field(&r.LastName, validation.Length(0, 200)),
		validation.Field(&r.Email, validation.Length(6, 100), is.Email),
	)
}

func (a *AccountController) MePatch(ctx router.Context) error {
	user, ok := FromContext(ctx.Context())
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthorized)
	}

	payload := new(UserUpdatePayload)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, validationError(err))
	}

	if payload.FirstName != nil {
		user.FirstName = *payload.FirstName
	}
	if payload.LastName != nil {
		user.LastName = *payload.LastName
	}
	if payload.Email != nil {
		user.Email = *payload.Email
	}

	updated, err := a.Repo.Users().Save(ctx.Context(), user)
	if err != nil {
		a.Logger.Error("me update", "error", err, "user_id", user.ID)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, updated)
}

// UsersListResponse is the admin listing envelope.
type UsersListResponse struct {
	Users []*User `json:"users"`
	Count int     `json:"count"`
}

func (a *AccountController) UsersList(ctx router.Context) error {
	skip := ctx.QueryInt("skip", 0)
	limit := ctx.QueryInt("limit", 100)

	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	users, err := a.Repo.Users().List(ctx.Context(), skip, limit)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	count, err := a.Repo.Users().Count(ctx.Context())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, UsersListResponse{
		Users: users,
		Count: count,
	})
}

// AdminCreateUserPayload is the privileged user creation payload.
type AdminCreateUserPayload struct {
	FirstName   string `form:"first_name" json:"first_name"`
	LastName    string `form:"last_name" json:"last_name"`
	Username    string `form:"username" json:"username"`
	Email       string `form:"email" json:"email"`
	Password    string `form:"password" json:"password"`
	IsSuperuser bool   `form:"is_superuser" json:"is_superuser"`
}

// Validate will validate the payload
func (r AdminCreateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(0, 200)),
		validation.Field(&r.LastName, validation.Length(0, 200)),
		validation.Field(&r.Username, validation.Length(0, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
	)
}

func (a *AccountController) UsersCreate(ctx router.Context) error {
	payload := new(AdminCreateUserPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, validationError(err))
	}

	var created *User

	req := RegisterUserMessage{
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		Username:    payload.Username,
		Email:       payload.Email,
		Password:    payload.Password,
		IsSuperuser: payload.IsSuperuser,
		OnResponse: func(user *User) {
			created = user
		},
	}

	registerUser := NewRegisterUserHandler(a.Repo)
	if err := registerUser.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("admin create user", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, created)
}

// PasswordResetRequestPayload holds values for password reset
type PasswordResetRequestPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r PasswordResetRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
	)
}

func (a *AccountController) PasswordResetPost(ctx router.Context) error {
	payload := new(PasswordResetRequestPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("password reset parse payload", "error", err)
		return a.ErrorHandler(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("password reset validate payload", "error", err)
		return a.ErrorHandler(ctx, validationError(err))
	}

	req := InitializePasswordResetMessage{
		Email: payload.Email,
	}

	initPwdReset := NewInitializePasswordResetHandler(a.Repo).WithLogger(a.Logger)

	if err := initPwdReset.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("password reset initialize", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	// the same body goes back whether or not the email exists
	return ctx.JSON(http.StatusAccepted, map[string]string{
		"detail": "If the account exists, a reset link has been sent",
	})
}

// PasswordResetFinalizePayload holds values for completing a password reset
type PasswordResetFinalizePayload struct {
	Session         string `form:"session" json:"session"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r PasswordResetFinalizePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Session,
			validation.Required,
			is.UUID,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(10, 100),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(10, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AccountController) PasswordResetFinalize(ctx router.Context) error {
	payload := new(PasswordResetFinalizePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("password reset finalize parse payload", "error", err)
		return a.ErrorHandler(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("password reset finalize validate payload", "error", err)
		return a.ErrorHandler(ctx, validationError(err))
	}

	input := FinalizePasswordResetMessage{
		Session:  payload.Session,
		Password: payload.Password,
	}

	finalizePwdReset := NewFinalizePasswordResetHandler(a.Repo).WithLogger(a.Logger)

	if err := finalizePwdReset.Execute(ctx.Context(), input); err != nil {
		a.Logger.Error("password reset finalize", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"detail": "Password updated successfully",
	})
}

func bindError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
		WithCode(goerrors.CodeBadRequest)
}

func validationError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid request payload").
		WithMetadata(map[string]any{
			"validation": FormatValidationErrorToMap(err),
		})
}
