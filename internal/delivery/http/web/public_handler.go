package web

import (
	"errors"
	"net/http"

	"talent-marketplace/internal/domain"
	"talent-marketplace/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	noticeNotFound   = "Profile not found"
	noticeLoadFailed = "Could not load the profile. Please try again."
)

type publicHandler struct {
	directory domain.DirectoryUsecase
}

func (h *publicHandler) developer(c *gin.Context) {
	dev, err := h.directory.GetPublicDeveloper(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "/developers", err)
		return
	}
	render(c, http.StatusOK, "developer_public.html", dev.FullName, gin.H{"Developer": dev})
}

func (h *publicHandler) company(c *gin.Context) {
	company, err := h.directory.GetPublicCompany(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "/companies", err)
		return
	}
	render(c, http.StatusOK, "company_public.html", company.CompanyName, gin.H{"Company": company})
}

// fail sends the visitor back to the listing. A missing record and a failed fetch get different notices.
func (h *publicHandler) fail(c *gin.Context, listing string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		redirectWith(c, listing, "error", noticeNotFound)
		return
	}
	logger.FromContext(c.Request.Context()).Error("public profile load failed", "id", c.Param("id"), "error", err)
	redirectWith(c, listing, "error", noticeLoadFailed)
}
