package domain

import (
	"context"
	"time"
)

// Account is the identity owned by the auth service.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthSession is a signed-in session as issued by the auth service.
type AuthSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	Account      Account   `json:"user"`
}

// Credentials is the sign-in and sign-up form.
type Credentials struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required,min=6,max=72"`
}

// ClientMeta identifies the browser behind an auth request.
type ClientMeta struct {
	IP        string
	UserAgent string
	RequestID string
}

type AuthClient interface {
	SignInWithPassword(ctx context.Context, email, password string, meta ClientMeta) (*AuthSession, error)
	SignUp(ctx context.Context, email, password string) (*AuthSession, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
	RecoverPassword(ctx context.Context, email, redirectTo string) error
}

type AuthUsecase interface {
	SignIn(ctx context.Context, creds Credentials, meta ClientMeta) (*AuthSession, error)
	// SignUp returns a nil session when the account must confirm its email first.
	SignUp(ctx context.Context, creds Credentials) (*AuthSession, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthSession, error)
	SignOut(ctx context.Context, accountID, accessToken string) error
	RequestPasswordReset(ctx context.Context, email, redirectTo string) error
}
