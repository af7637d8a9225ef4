package v1

import (
	"net/http"

	"talent-marketplace/internal/delivery/http/middleware"
	"talent-marketplace/internal/delivery/http/response"
	"talent-marketplace/internal/domain"
	"talent-marketplace/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type meResponse struct {
	AccountID  string      `json:"user_id"`
	Email      string      `json:"email"`
	NeedsSetup bool        `json:"needs_setup"`
	Profile    interface{} `json:"profile,omitempty"`
}

// me godoc
// @Summary Current account
// @Description Returns the reconciled profile of the signed-in account
// @Tags Account
// @Produce json
// @Success 200 {object} response.Response{data=meResponse}
// @Failure 401 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /me [get]
// @Security BearerAuth
func me(c *gin.Context) {
	snap, ok := middleware.SnapshotFrom(c)
	if !ok {
		_ = c.Error(apperror.Unauthorized("User not authenticated"))
		return
	}
	out := meResponse{
		AccountID:  snap.AccountID,
		Email:      c.GetString(string(domain.KeyAccountEmail)),
		NeedsSetup: snap.NeedsSetup(),
	}
	if snap.Profile != nil {
		out.Profile = snap.Profile
	}
	response.Success(c, http.StatusOK, "Account retrieved", out)
}
