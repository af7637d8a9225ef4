package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"talent-marketplace/config"
	"talent-marketplace/internal/delivery/http/middleware"
	"talent-marketplace/internal/domain"
	"talent-marketplace/pkg/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "super-secret-jwt-token-with-at-least-32-characters"

// recordingAuth records SignOut calls; other methods are unused here.
type recordingAuth struct {
	domain.AuthUsecase
	signedOut []string
	tokens    []string
}

func (a *recordingAuth) SignOut(ctx context.Context, accountID, accessToken string) error {
	a.signedOut = append(a.signedOut, accountID)
	a.tokens = append(a.tokens, accessToken)
	return nil
}

func signedToken(t *testing.T, secret, subject string, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestLogout_ResolvesAccount(t *testing.T) {
	cases := []struct {
		name   string
		token  string
		wantID string
	}{
		{"expired access token", signedToken(t, testJWTSecret, "acc-1", time.Now().Add(-3*time.Hour)), "acc-1"},
		{"forged token", signedToken(t, "another-secret-of-sufficient-length-000", "acc-1", time.Now().Add(time.Hour)), ""},
		{"no cookie", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recordingAuth{}
			ah := &authHandler{auth: rec, verifier: auth.NewVerifier(testJWTSecret, nil), cfg: &config.Config{}}
			r := newTestEngine(t, nil)
			r.POST("/logout", ah.logout)

			req := httptest.NewRequest(http.MethodPost, "/logout", nil)
			if tc.token != "" {
				req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: tc.token})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/login", w.Header().Get("Location"))
			require.Len(t, rec.signedOut, 1)
			assert.Equal(t, tc.wantID, rec.signedOut[0])
			assert.Equal(t, "success|You have been signed out", flashOf(t, w))
		})
	}
}
