package usecase

import (
	"context"
	"net/http"
	"strings"

	"talent-marketplace/internal/domain"
	"talent-marketplace/internal/session"
	"talent-marketplace/pkg/apperror"
	"talent-marketplace/pkg/logger"
	"talent-marketplace/pkg/security"

	"github.com/go-playground/validator/v10"
)

// SessionTracker is satisfied by *session.Manager.
type SessionTracker interface {
	Notify(accountID string, ev session.Event) error
	SignOut(accountID string)
}

type authUsecase struct {
	client   domain.AuthClient
	sessions SessionTracker
	tracker  *security.LoginTracker
	secLog   *security.SecurityLogger
	validate *validator.Validate
}

func NewAuthUsecase(
	client domain.AuthClient,
	sessions SessionTracker,
	tracker *security.LoginTracker,
	secLog *security.SecurityLogger,
	validate *validator.Validate,
) domain.AuthUsecase {
	if secLog == nil {
		secLog = security.DefaultLogger()
	}
	if tracker == nil {
		tracker = security.NewLoginTracker(nil, security.DefaultLoginTrackerConfig(), secLog)
	}
	return &authUsecase{
		client:   client,
		sessions: sessions,
		tracker:  tracker,
		secLog:   secLog,
		validate: validate,
	}
}

func (u *authUsecase) SignIn(ctx context.Context, creds domain.Credentials, meta domain.ClientMeta) (*domain.AuthSession, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := validateForm(u.validate, creds); err != nil {
		return nil, err
	}

	blocked, err := u.tracker.IsBlocked(ctx, creds.Email, meta.IP)
	if err != nil {
		logger.FromContext(ctx).Warn("login block check failed", "error", err)
	}
	if blocked {
		u.secLog.LogLoginBlocked(ctx, creds.Email, meta.IP, meta.UserAgent, meta.RequestID)
		return nil, apperror.TooManyRequests("Too many failed attempts. Try again later")
	}

	sess, err := u.client.SignInWithPassword(ctx, creds.Email, creds.Password, meta)
	if err != nil {
		if apperror.CodeOf(err) == http.StatusUnauthorized {
			nowBlocked, _, trackErr := u.tracker.RecordFailedAttempt(ctx, creds.Email, meta.IP, meta.UserAgent, meta.RequestID)
			if trackErr != nil {
				logger.FromContext(ctx).Warn("failed to record login attempt", "error", trackErr)
			}
			if nowBlocked {
				return nil, apperror.TooManyRequests("Too many failed attempts. Try again later")
			}
			return nil, apperror.New(http.StatusUnauthorized, "Invalid email or password", err)
		}
		return nil, err
	}

	if err := u.tracker.ClearAttempts(ctx, creds.Email, meta.IP); err != nil {
		logger.FromContext(ctx).Warn("failed to clear login attempts", "error", err)
	}
	u.secLog.LogLoginSuccess(ctx, creds.Email, meta.IP, meta.UserAgent, meta.RequestID)
	u.notify(ctx, sess.Account.ID, session.SignedIn)
	return sess, nil
}

func (u *authUsecase) SignUp(ctx context.Context, creds domain.Credentials) (*domain.AuthSession, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := validateForm(u.validate, creds); err != nil {
		return nil, err
	}
	sess, err := u.client.SignUp(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		u.notify(ctx, sess.Account.ID, session.SignedIn)
	}
	return sess, nil
}

func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (*domain.AuthSession, error) {
	if refreshToken == "" {
		return nil, apperror.New(http.StatusUnauthorized, "Session expired", domain.ErrNoSession)
	}
	sess, err := u.client.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	u.notify(ctx, sess.Account.ID, session.TokenRefreshed)
	return sess, nil
}

// SignOut always clears local state. A failed remote revoke is only logged.
func (u *authUsecase) SignOut(ctx context.Context, accountID, accessToken string) error {
	if accountID != "" {
		u.sessions.SignOut(accountID)
		u.secLog.LogSignedOut(ctx, accountID, domain.ClientMetaFrom(ctx).RequestID)
	}
	if accessToken == "" {
		return nil
	}
	if err := u.client.SignOut(ctx, accessToken); err != nil {
		logger.FromContext(ctx).Warn("remote sign-out failed", "error", err)
	}
	return nil
}

func (u *authUsecase) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	email = strings.TrimSpace(email)
	if err := u.validate.Var(email, "required,email"); err != nil {
		return apperror.BadRequest("Enter a valid email address")
	}
	return u.client.RecoverPassword(ctx, email, redirectTo)
}

func (u *authUsecase) notify(ctx context.Context, accountID string, ev session.Event) {
	if accountID == "" || u.sessions == nil {
		return
	}
	if err := u.sessions.Notify(accountID, ev); err != nil {
		logger.FromContext(ctx).Warn("session notify failed", "event", ev.String(), "error", err)
	}
}
