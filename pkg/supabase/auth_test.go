package supabase

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"talent-marketplace/internal/domain"
	"talent-marketplace/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthClient_SignInWithPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "203.0.113.9", r.Header.Get("X-Forwarded-For"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dev@example.com", body["email"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "access",
			"refresh_token": "refresh",
			"expires_in":    3600,
			"expires_at":    1900000000,
			"user":          map[string]string{"id": "acc-1", "email": "dev@example.com"},
		})
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL+"/", "anon-key", srv.Client())
	session, err := client.SignInWithPassword(t.Context(), "dev@example.com", "secret", domain.ClientMeta{IP: "203.0.113.9"})

	require.NoError(t, err)
	assert.Equal(t, "access", session.AccessToken)
	assert.Equal(t, "refresh", session.RefreshToken)
	assert.Equal(t, "acc-1", session.Account.ID)
	assert.Equal(t, int64(1900000000), session.ExpiresAt.Unix())
}

func TestAuthClient_ClientErrorIsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, "anon-key", srv.Client())
	_, err := client.SignInWithPassword(t.Context(), "dev@example.com", "wrong", domain.ClientMeta{})

	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperror.CodeOf(err))
	assert.Equal(t, "Invalid login credentials", err.Error())
}

func TestAuthClient_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, "anon-key", srv.Client())
	err := client.RecoverPassword(t.Context(), "dev@example.com", "")

	assert.Equal(t, http.StatusServiceUnavailable, apperror.CodeOf(err))
}

func TestAuthClient_SignUpAwaitingConfirmation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"acc-2","email":"new@example.com","confirmation_sent_at":"2024-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, "anon-key", srv.Client())
	session, err := client.SignUp(t.Context(), "new@example.com", "secret123")

	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestAuthClient_SignOutSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewAuthClient(srv.URL, "anon-key", srv.Client())
	assert.NoError(t, client.SignOut(t.Context(), "access"))
}

func TestPublicObjectURL(t *testing.T) {
	assert.Equal(t,
		"https://ref.supabase.co/storage/v1/object/public/avatars/acc-1/avatar-1.jpg",
		PublicObjectURL("https://ref.supabase.co/", "avatars", "acc-1/avatar-1.jpg"))
}
