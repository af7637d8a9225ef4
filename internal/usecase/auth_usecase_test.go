package usecase_test

import (
	"context"
	"testing"

	"talent-marketplace/internal/domain"
	"talent-marketplace/internal/session"
	"talent-marketplace/internal/usecase"
	"talent-marketplace/pkg/apperror"
	"talent-marketplace/pkg/security"
	"talent-marketplace/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockAuthClient struct {
	mock.Mock
}

func (m *MockAuthClient) SignInWithPassword(ctx context.Context, email, password string, meta domain.ClientMeta) (*domain.AuthSession, error) {
	args := m.Called(ctx, email, password, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthSession), args.Error(1)
}

func (m *MockAuthClient) SignUp(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthSession), args.Error(1)
}

func (m *MockAuthClient) Refresh(ctx context.Context, refreshToken string) (*domain.AuthSession, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthSession), args.Error(1)
}

func (m *MockAuthClient) SignOut(ctx context.Context, accessToken string) error {
	return m.Called(ctx, accessToken).Error(0)
}

func (m *MockAuthClient) RecoverPassword(ctx context.Context, email, redirectTo string) error {
	return m.Called(ctx, email, redirectTo).Error(0)
}

type recordingSessions struct {
	events    []session.Event
	signedOut []string
}

func (r *recordingSessions) Notify(accountID string, ev session.Event) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingSessions) SignOut(accountID string) {
	r.signedOut = append(r.signedOut, accountID)
}

func newAuth(client domain.AuthClient, sessions usecase.SessionTracker) domain.AuthUsecase {
	secLog := security.NewSecurityLogger(zap.NewNop(), "test", "test")
	return usecase.NewAuthUsecase(client, sessions, nil, secLog, validation.New())
}

func TestSignIn_NotifiesSessionManager(t *testing.T) {
	client, sessions := new(MockAuthClient), &recordingSessions{}
	uc := newAuth(client, sessions)
	ctx := context.Background()
	meta := domain.ClientMeta{IP: "10.0.0.1"}

	client.On("SignInWithPassword", ctx, "ada@example.com", "secret123", meta).
		Return(&domain.AuthSession{AccessToken: "at", Account: domain.Account{ID: "acct-1"}}, nil)

	sess, err := uc.SignIn(ctx, domain.Credentials{Email: " ada@example.com ", Password: "secret123"}, meta)
	require.NoError(t, err)
	assert.Equal(t, "at", sess.AccessToken)
	assert.Equal(t, []session.Event{session.SignedIn}, sessions.events)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	client := new(MockAuthClient)
	uc := newAuth(client, &recordingSessions{})
	client.On("SignInWithPassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperror.New(401, "Invalid login credentials", nil))

	_, err := uc.SignIn(context.Background(), domain.Credentials{Email: "ada@example.com", Password: "wrongpass"}, domain.ClientMeta{})
	require.Error(t, err)
	assert.Equal(t, 401, apperror.CodeOf(err))
	assert.Equal(t, "Invalid email or password", err.Error())
}

func TestSignIn_ValidationSkipsNetwork(t *testing.T) {
	client := new(MockAuthClient)
	uc := newAuth(client, &recordingSessions{})

	_, err := uc.SignIn(context.Background(), domain.Credentials{Email: "nope", Password: "1"}, domain.ClientMeta{})
	assert.Equal(t, 400, apperror.CodeOf(err))
	client.AssertNotCalled(t, "SignInWithPassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSignOut_RemoteFailureStillClearsLocalState(t *testing.T) {
	client, sessions := new(MockAuthClient), &recordingSessions{}
	uc := newAuth(client, sessions)
	client.On("SignOut", mock.Anything, "at").Return(apperror.Unavailable("auth down", nil))

	err := uc.SignOut(context.Background(), "acct-1", "at")
	assert.NoError(t, err)
	assert.Equal(t, []string{"acct-1"}, sessions.signedOut)
}

func TestRefresh_WithoutTokenIsNoSession(t *testing.T) {
	uc := newAuth(new(MockAuthClient), &recordingSessions{})
	_, err := uc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNoSession)
}
