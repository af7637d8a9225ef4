package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"talent-marketplace/internal/domain"
	"talent-marketplace/pkg/apperror"
)

// AuthClient talks to the project's GoTrue REST API.
type AuthClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ domain.AuthClient = (*AuthClient)(nil)

func NewAuthClient(projectURL, apiKey string, httpClient *http.Client) *AuthClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &AuthClient{
		baseURL:    strings.TrimRight(projectURL, "/") + "/auth/v1",
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type tokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    int            `json:"expires_in"`
	ExpiresAt    int64          `json:"expires_at"`
	User         domain.Account `json:"user"`
}

func (t tokenResponse) session() *domain.AuthSession {
	s := &domain.AuthSession{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
		Account:      t.User,
	}
	if t.ExpiresAt > 0 {
		s.ExpiresAt = time.Unix(t.ExpiresAt, 0)
	} else if t.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return s
}

type errorResponse struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e errorResponse) text() string {
	for _, s := range []string{e.Msg, e.ErrorDescription, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// SignInWithPassword exchanges email and password for a session.
func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string, meta domain.ClientMeta) (*domain.AuthSession, error) {
	var tok tokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/token?grant_type=password", "", meta, body, &tok); err != nil {
		return nil, err
	}
	return tok.session(), nil
}

// SignUp registers an account. With email confirmation enabled GoTrue returns the
// user without tokens; the session is nil in that case.
func (a *AuthClient) SignUp(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	var raw json.RawMessage
	body := map[string]string{"email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/signup", "", domain.ClientMeta{}, body, &raw); err != nil {
		return nil, err
	}
	var tok tokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, apperror.Unavailable("Unexpected response from auth service", err)
	}
	if tok.AccessToken == "" {
		return nil, nil
	}
	return tok.session(), nil
}

func (a *AuthClient) Refresh(ctx context.Context, refreshToken string) (*domain.AuthSession, error) {
	var tok tokenResponse
	body := map[string]string{"refresh_token": refreshToken}
	if err := a.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", domain.ClientMeta{}, body, &tok); err != nil {
		return nil, err
	}
	return tok.session(), nil
}

// SignOut revokes the refresh tokens of the session behind accessToken.
func (a *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	return a.do(ctx, http.MethodPost, "/logout", accessToken, domain.ClientMeta{}, nil, nil)
}

// RecoverPassword asks GoTrue to mail a password reset link.
func (a *AuthClient) RecoverPassword(ctx context.Context, email, redirectTo string) error {
	body := map[string]string{"email": email}
	if redirectTo != "" {
		body["redirect_to"] = redirectTo
	}
	return a.do(ctx, http.MethodPost, "/recover", "", domain.ClientMeta{}, body, nil)
}

// do sends a JSON request. 4xx responses become 401 AppErrors carrying GoTrue's
// message; network failures and 5xx become 503.
func (a *AuthClient) do(ctx context.Context, method, path, bearer string, meta domain.ClientMeta, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return apperror.Internal(err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return apperror.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", a.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if meta.IP != "" {
		req.Header.Set("X-Forwarded-For", meta.IP)
	}
	if meta.UserAgent != "" {
		req.Header.Set("User-Agent", meta.UserAgent)
	}
	if meta.RequestID != "" {
		req.Header.Set("X-Request-ID", meta.RequestID)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return apperror.Unavailable("Auth service unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return apperror.Unavailable("Auth service unavailable", fmt.Errorf("gotrue %s: status %d", path, resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return apperror.New(http.StatusUnauthorized, msg, fmt.Errorf("gotrue %s: status %d", path, resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.Unavailable("Unexpected response from auth service", err)
	}
	return nil
}
