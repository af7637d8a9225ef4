package v1

import (
	"net/http"

	"talent-marketplace/internal/delivery/http/middleware"
	"talent-marketplace/internal/delivery/http/response"
	"talent-marketplace/internal/domain"
	"talent-marketplace/internal/usecase"
	"talent-marketplace/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Deps struct {
	Directory domain.DirectoryUsecase
	Health    usecase.HealthUsecase
	Sessions  middleware.SnapshotSource
	Verifier  middleware.TokenVerifier
	Auth      domain.AuthUsecase
	SecLog    *security.SecurityLogger
	// AllowedOrigin lists the browser origins allowed to call the API with credentials.
	AllowedOrigin []string
	DevMode       bool
}

// Register mounts the read-only JSON API on group.
func Register(group *gin.RouterGroup, deps Deps) {
	// CORS must run before anything that can abort
	group.Use(middleware.CORSMiddleware(deps.AllowedOrigin, deps.DevMode))
	group.Use(middleware.ErrorHandler())

	hh := &healthHandler{health: deps.Health}
	group.GET("/health", hh.check)

	if deps.DevMode {
		group.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	protected := group.Group("")
	protected.Use(middleware.SessionGuard(middleware.GuardConfig{
		Verifier: deps.Verifier,
		Auth:     deps.Auth,
		Sessions: deps.Sessions,
		SecLog:   deps.SecLog,
		API:      true,
	}))
	{
		protected.GET("/me", me)

		dh := &directoryHandler{directory: deps.Directory}
		protected.GET("/developers", dh.listDevelopers)
		protected.GET("/developers/:id", dh.getDeveloper)
		protected.GET("/companies", dh.listCompanies)
		protected.GET("/companies/:id", dh.getCompany)
	}
}

type healthHandler struct {
	health usecase.HealthUsecase
}

// check godoc
// @Summary Health check
// @Description Reports the state of the database, Redis and Storage
// @Tags System
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *healthHandler) check(c *gin.Context) {
	checks, ok := h.health.Check(c.Request.Context())
	if !ok {
		response.Error(c, http.StatusServiceUnavailable, "System degraded", checks)
		return
	}
	response.Success(c, http.StatusOK, "System operational", checks)
}
