package web

import (
	"net/http"
	"strings"

	"talent-marketplace/config"
	"talent-marketplace/internal/delivery/http/middleware"
	"talent-marketplace/internal/domain"
	"talent-marketplace/pkg/apperror"
	"talent-marketplace/pkg/logger"

	"github.com/gin-gonic/gin"
)

type authHandler struct {
	auth     domain.AuthUsecase
	verifier middleware.TokenVerifier
	cfg      *config.Config
}

func (h *authHandler) loginPage(c *gin.Context) {
	render(c, http.StatusOK, "login.html", "Sign in", gin.H{
		"Next": safeNext(c.Query("next")),
		"Tab":  c.DefaultQuery("tab", "signin"),
	})
}

func (h *authHandler) login(c *gin.Context) {
	var creds domain.Credentials
	next := safeNext(c.PostForm("next"))

	var sess *domain.AuthSession
	err := bindForm(c, &creds)
	if err == nil {
		sess, err = h.auth.SignIn(c.Request.Context(), creds, domain.ClientMetaFrom(c.Request.Context()))
	}
	if err != nil {
		render(c, statusFor(err), "login.html", "Sign in", gin.H{
			"Tab":    "signin",
			"Next":   next,
			"Email":  creds.Email,
			"Error":  userMessage(err),
			"Errors": fieldErrors(err),
		})
		return
	}

	middleware.SetSessionCookies(c, sess, h.cfg.CookieSecure)
	c.Redirect(http.StatusSeeOther, next)
}

func (h *authHandler) signup(c *gin.Context) {
	var creds domain.Credentials
	var sess *domain.AuthSession
	err := bindForm(c, &creds)
	if err == nil {
		sess, err = h.auth.SignUp(c.Request.Context(), creds)
	}
	if err != nil {
		render(c, statusFor(err), "login.html", "Create account", gin.H{
			"Tab":    "signup",
			"Email":  creds.Email,
			"Error":  userMessage(err),
			"Errors": fieldErrors(err),
		})
		return
	}
	if sess == nil {
		render(c, http.StatusOK, "login.html", "Sign in", gin.H{
			"Tab":     "signin",
			"Email":   creds.Email,
			"Success": "Check your email to confirm your account, then sign in.",
		})
		return
	}

	middleware.SetSessionCookies(c, sess, h.cfg.CookieSecure)
	c.Redirect(http.StatusSeeOther, "/setup")
}

func (h *authHandler) forgotPassword(c *gin.Context) {
	email := c.PostForm("email")
	redirectTo := ""
	if h.cfg.AppURL != "" {
		redirectTo = h.cfg.AppURL + "/login"
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), email, redirectTo); err != nil {
		render(c, statusFor(err), "login.html", "Reset password", gin.H{
			"Tab":   "reset",
			"Email": email,
			"Error": "Could not send reset email. " + userMessage(err),
		})
		return
	}
	render(c, http.StatusOK, "login.html", "Sign in", gin.H{
		"Tab":     "signin",
		"Email":   email,
		"Success": "Email sent. Check your inbox for the reset link.",
	})
}

// logout works with an expired or missing token; local state is always cleared.
func (h *authHandler) logout(c *gin.Context) {
	token, _ := c.Cookie(middleware.AccessTokenCookie)
	accountID := ""
	if token != "" {
		sub, err := h.verifier.Subject(token)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("sign-out token unreadable", "error", err)
		}
		accountID = sub
	}
	_ = h.auth.SignOut(c.Request.Context(), accountID, token)

	middleware.ClearSessionCookies(c, h.cfg.CookieSecure)
	redirectWith(c, "/login", "success", "You have been signed out")
}

// safeNext only follows local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/dashboard"
	}
	return next
}

func statusFor(err error) int {
	code := apperror.CodeOf(err)
	if code < 400 {
		return http.StatusInternalServerError
	}
	return code
}
