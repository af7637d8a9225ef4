package middleware

import (
	"net/http"
	"time"

	"talent-marketplace/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "auth_token"
	RefreshTokenCookie = "refresh_token"
	// refresh tokens outlive access tokens; GoTrue rotates them on every use
	refreshCookieMaxAge = 30 * 24 * time.Hour
)

// SetSessionCookies stores both tokens in HttpOnly cookies.
func SetSessionCookies(c *gin.Context, sess *domain.AuthSession, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	// the access cookie outlives the token so an expired token can still trigger a refresh
	c.SetCookie(AccessTokenCookie, sess.AccessToken, int(refreshCookieMaxAge.Seconds()), "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, sess.RefreshToken, int(refreshCookieMaxAge.Seconds()), "/", "", secure, true)
}

func ClearSessionCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}
