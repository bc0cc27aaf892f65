package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// InitializePasswordResetMessage opens a reset session for the account
// behind the given email. Unknown emails still report success so the
// endpoint leaks nothing about which accounts exist.
type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	Reset   *PasswordReset
	Success bool
}

type InitializePasswordResetHandler struct {
	repo   RepositoryManager
	notify func(email, session string)
	logger Logger
}

// NewInitializePasswordResetHandler creates a handler with sane defaults.
func NewInitializePasswordResetHandler(repo RepositoryManager) *InitializePasswordResetHandler {
	h := &InitializePasswordResetHandler{
		repo:   repo,
		logger: defLogger{},
	}
	h.notify = h.logNotification
	return h
}

// WithNotifier sets the delivery hook for the reset link. The default logs
// the link instead of sending email.
func (h *InitializePasswordResetHandler) WithNotifier(notify func(email, session string)) *InitializePasswordResetHandler {
	if notify != nil {
		h.notify = notify
	}
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	reset := &PasswordReset{}
	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByEmail(ctx, event.Email)
		if err != nil {
			if goerrors.IsNotFound(err) || repository.IsRecordNotFound(err) {
				// succeed without a session so callers cannot probe emails
				h.logger.Info("password reset requested for unknown email")
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
		}

		reset.UserID = user.ID
		reset.Email = event.Email
		reset.Status = ResetRequestedStatus

		createdReset, err := h.repo.PasswordResets().CreateTx(ctx, tx, reset)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create password reset record")
		}
		resp.Reset = createdReset

		h.notify(resp.Reset.Email, resp.Reset.ID.String())

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize password reset")
	}

	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

func (h *InitializePasswordResetHandler) logNotification(email, session string) {
	// TODO: wire an email sender; for now we surface the link in the logs
	h.logger.Info("password reset link issued", "email", email, "link", "/password-reset/"+session)
}
