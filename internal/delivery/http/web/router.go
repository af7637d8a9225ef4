package web

import (
	"context"
	"net/http"
	"time"

	"talent-marketplace/config"
	"talent-marketplace/internal/delivery/http/middleware"
	v1 "talent-marketplace/internal/delivery/http/v1"
	"talent-marketplace/internal/domain"
	"talent-marketplace/internal/session"
	"talent-marketplace/internal/usecase"
	"talent-marketplace/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// SessionService is satisfied by *session.Manager.
type SessionService interface {
	Current(ctx context.Context, accountID string) (session.Snapshot, error)
	Notify(accountID string, ev session.Event) error
	CreateProfile(ctx context.Context, accountID string, input domain.SetupInput) (*domain.Profile, error)
}

type RouterDeps struct {
	Config     *config.Config
	Auth       domain.AuthUsecase
	Sessions   SessionService
	Developers domain.DeveloperProfileUsecase
	Companies  domain.CompanyProfileUsecase
	Directory  domain.DirectoryUsecase
	Uploads    domain.UploadUsecase
	Health     usecase.HealthUsecase
	Verifier   middleware.TokenVerifier
	Redis      *goredis.Client
	SecLog     *security.SecurityLogger
}

func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	cfg := deps.Config
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadBytes

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.SupabaseUrl, cfg.CookieSecure))
	r.Use(middleware.RateLimitMiddleware(deps.Redis, middleware.DefaultRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))

	v1.Register(r.Group("/api/v1"), v1.Deps{
		Directory:     deps.Directory,
		Health:        deps.Health,
		Sessions:      deps.Sessions,
		Verifier:      deps.Verifier,
		Auth:          deps.Auth,
		SecLog:        deps.SecLog,
		AllowedOrigin: cfg.AllowedOrigins,
		DevMode:       gin.Mode() != gin.ReleaseMode,
	})

	pages := r.Group("/")
	pages.Use(limitBody(cfg.MaxUploadBytes + 1<<20))
	pages.Use(middleware.CSRFMiddleware(cfg.CookieSecure))

	authLimit := middleware.AuthRateLimitConfig(cfg.RateLimitLoginThreshold, window)
	authLimit.Reject = func(c *gin.Context, retryAfter int) {
		render(c, http.StatusTooManyRequests, "login.html", "Sign in", gin.H{
			"Tab":   "signin",
			"Error": "Too many attempts. Please wait a minute and try again.",
		})
	}

	ah := &authHandler{auth: deps.Auth, verifier: deps.Verifier, cfg: cfg}
	pages.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/dashboard") })
	pages.GET("/login", ah.loginPage)
	limited := pages.Group("", middleware.RateLimitMiddleware(deps.Redis, authLimit))
	{
		limited.POST("/login", ah.login)
		limited.POST("/signup", ah.signup)
		limited.POST("/forgot-password", ah.forgotPassword)
	}
	pages.POST("/logout", ah.logout)

	dh := &directoryHandler{directory: deps.Directory}
	pages.GET("/public/developers", dh.publicDevelopers)

	authed := pages.Group("")
	authed.Use(middleware.SessionGuard(middleware.GuardConfig{
		Verifier:      deps.Verifier,
		Auth:          deps.Auth,
		Sessions:      deps.Sessions,
		SecLog:        deps.SecLog,
		SecureCookies: cfg.CookieSecure,
	}))

	sh := &setupHandler{sessions: deps.Sessions}
	authed.GET("/setup", sh.page)
	authed.POST("/setup", sh.submit)

	withProfile := authed.Group("", requireProfile())
	withProfile.GET("/dashboard", dashboard)
	withProfile.GET("/developers", dh.developers)
	withProfile.GET("/talent", requireRole(domain.RoleCompany), dh.talent)
	withProfile.GET("/companies", dh.companies)

	ph := &publicHandler{directory: deps.Directory}
	withProfile.GET("/developer/:id", ph.developer)
	withProfile.GET("/company/:id", ph.company)

	devh := &developerHandler{profiles: deps.Developers, uploads: deps.Uploads, sessions: deps.Sessions}
	dev := withProfile.Group("/developer/profile", requireRole(domain.RoleDeveloper))
	{
		dev.GET("", devh.edit)
		dev.POST("", devh.submit)
		dev.POST("/cv", devh.uploadCV)
		dev.GET("/cv/download", devh.downloadCV)
		dev.POST("/cv/delete", devh.deleteCV)
		dev.POST("/avatar", devh.uploadAvatar)
	}

	ch := &companyHandler{profiles: deps.Companies, uploads: deps.Uploads, sessions: deps.Sessions}
	co := withProfile.Group("/company/profile", requireRole(domain.RoleCompany))
	{
		co.GET("", ch.edit)
		co.POST("", ch.submit)
		co.POST("/logo", ch.uploadLogo)
	}

	r.NoRoute(func(c *gin.Context) {
		render(c, http.StatusNotFound, "not_found.html", "Page not found", nil)
	})

	return r, nil
}

// limitBody caps request bodies; uploads are checked again, more precisely, by the upload usecase.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
