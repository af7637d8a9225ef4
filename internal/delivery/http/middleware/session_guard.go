package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"talent-marketplace/internal/domain"
	"talent-marketplace/internal/session"
	"talent-marketplace/pkg/apperror"
	"talent-marketplace/pkg/auth"
	"talent-marketplace/pkg/logger"
	"talent-marketplace/pkg/security"

	"github.com/gin-gonic/gin"
)

// TokenVerifier is satisfied by *auth.Verifier.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
	Subject(token string) (string, error)
}

// SnapshotSource is satisfied by *session.Manager.
type SnapshotSource interface {
	Current(ctx context.Context, accountID string) (session.Snapshot, error)
}

type GuardConfig struct {
	Verifier TokenVerifier
	Auth     domain.AuthUsecase
	Sessions SnapshotSource
	SecLog   *security.SecurityLogger
	// SecureCookies marks refreshed cookies Secure.
	SecureCookies bool
	// API answers with 401 JSON instead of redirecting to the login page.
	API bool
	// SnapshotTimeout bounds the wait for a pending reconciliation.
	SnapshotTimeout time.Duration
}

// SessionGuard authenticates the request and attaches the account's reconciled snapshot.
// An expired access token is refreshed once with the refresh cookie.
func SessionGuard(cfg GuardConfig) gin.HandlerFunc {
	if cfg.SnapshotTimeout <= 0 {
		cfg.SnapshotTimeout = 10 * time.Second
	}
	if cfg.SecLog == nil {
		cfg.SecLog = security.DefaultLogger()
	}

	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			deny(c, cfg, "missing_token")
			return
		}

		claims, err := cfg.Verifier.Verify(token)
		if errors.Is(err, auth.ErrTokenExpired) && !cfg.API {
			claims, token, err = refresh(c, cfg)
		}
		if err != nil {
			logger.FromContext(c.Request.Context()).Debug("token rejected", "error", err)
			deny(c, cfg, "invalid_token")
			return
		}

		accountID := claims.Subject
		c.Set(string(domain.KeyAccountID), accountID)
		c.Set(string(domain.KeyAccountEmail), claims.Email)
		c.Set(string(domain.KeyAccessToken), token)

		ctx := domain.WithAccountID(c.Request.Context(), accountID)
		ctx = logger.WithAccountID(ctx, accountID)
		c.Request = c.Request.WithContext(ctx)

		waitCtx, cancel := context.WithTimeout(ctx, cfg.SnapshotTimeout)
		snap, err := cfg.Sessions.Current(waitCtx, accountID)
		cancel()
		if err != nil {
			if cfg.API {
				_ = c.Error(apperror.Unavailable("Your session could not be loaded", err))
				c.Abort()
				return
			}
			// pages render this as a retryable failure
			snap = session.Snapshot{AccountID: accountID, Err: err}
		}
		c.Set(string(domain.KeySnapshot), snap)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

func refresh(c *gin.Context, cfg GuardConfig) (*auth.Claims, string, error) {
	rt, err := c.Cookie(RefreshTokenCookie)
	if err != nil || rt == "" {
		return nil, "", auth.ErrTokenExpired
	}
	sess, err := cfg.Auth.Refresh(c.Request.Context(), rt)
	if err != nil {
		return nil, "", err
	}
	claims, err := cfg.Verifier.Verify(sess.AccessToken)
	if err != nil {
		return nil, "", err
	}
	SetSessionCookies(c, sess, cfg.SecureCookies)
	return claims, sess.AccessToken, nil
}

func deny(c *gin.Context, cfg GuardConfig, reason string) {
	meta := domain.ClientMetaFrom(c.Request.Context())
	if reason != "missing_token" {
		cfg.SecLog.LogUnauthorized(c.Request.Context(), meta.IP, c.Request.URL.Path, reason)
	}
	if cfg.API {
		_ = c.Error(apperror.Unauthorized("Authentication required"))
		c.Abort()
		return
	}
	ClearSessionCookies(c, cfg.SecureCookies)
	next := url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusSeeOther, "/login?next="+next)
	c.Abort()
}

// SnapshotFrom returns the snapshot SessionGuard attached to c.
func SnapshotFrom(c *gin.Context) (session.Snapshot, bool) {
	v, ok := c.Get(string(domain.KeySnapshot))
	if !ok {
		return session.Snapshot{}, false
	}
	snap, ok := v.(session.Snapshot)
	return snap, ok
}

func AccountID(c *gin.Context) string {
	return c.GetString(string(domain.KeyAccountID))
}
