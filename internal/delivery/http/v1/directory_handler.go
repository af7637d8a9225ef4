package v1

import (
	"errors"
	"net/http"

	"talent-marketplace/internal/delivery/http/response"
	"talent-marketplace/internal/directory"
	"talent-marketplace/internal/domain"
	"talent-marketplace/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type directoryHandler struct {
	directory domain.DirectoryUsecase
}

type listing[T any] struct {
	Items []T    `json:"items"`
	Total int    `json:"total"`
	State string `json:"state"`
}

func toListing[T any](r directory.Result[T]) listing[T] {
	items := r.Items
	if items == nil {
		items = []T{}
	}
	return listing[T]{Items: items, Total: r.Total, State: r.State.String()}
}

// listDevelopers godoc
// @Summary List developers
// @Description Filtered developer directory. Filters combine with AND.
// @Tags Directory
// @Produce json
// @Param q query string false "Name or bio"
// @Param skill query string false "Skill substring"
// @Param experience query string false "Experience band" Enums(0-2, 3-5, 6-10, 10+)
// @Param location query string false "Location substring"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /developers [get]
// @Security BearerAuth
func (h *directoryHandler) listDevelopers(c *gin.Context) {
	var f directory.DeveloperFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		_ = c.Error(apperror.BadRequest("Invalid filter"))
		return
	}
	all, err := h.directory.ListDevelopers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	matches := directory.FilterDevelopers(all, f)
	response.Success(c, http.StatusOK, "Developers retrieved", toListing(directory.NewResult(matches, len(all), nil)))
}

// getDeveloper godoc
// @Summary Public developer profile
// @Tags Directory
// @Produce json
// @Param id path string true "Developer profile ID"
// @Success 200 {object} response.Response{data=domain.PublicDeveloperProfile}
// @Failure 404 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /developers/{id} [get]
// @Security BearerAuth
func (h *directoryHandler) getDeveloper(c *gin.Context) {
	p, err := h.directory.GetPublicDeveloper(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(lookupError("Developer not found", err))
		return
	}
	response.Success(c, http.StatusOK, "Developer retrieved", p)
}

// listCompanies godoc
// @Summary List companies
// @Tags Directory
// @Produce json
// @Param q query string false "Name, sector or description"
// @Param sector query string false "Sector substring"
// @Param size query string false "Company size substring"
// @Param location query string false "Location substring"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /companies [get]
// @Security BearerAuth
func (h *directoryHandler) listCompanies(c *gin.Context) {
	var f directory.CompanyFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		_ = c.Error(apperror.BadRequest("Invalid filter"))
		return
	}
	all, err := h.directory.ListCompanies(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	matches := directory.FilterCompanies(all, f)
	response.Success(c, http.StatusOK, "Companies retrieved", toListing(directory.NewResult(matches, len(all), nil)))
}

// getCompany godoc
// @Summary Public company profile
// @Tags Directory
// @Produce json
// @Param id path string true "Company profile ID"
// @Success 200 {object} response.Response{data=domain.CompanyProfile}
// @Failure 404 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /companies/{id} [get]
// @Security BearerAuth
func (h *directoryHandler) getCompany(c *gin.Context) {
	p, err := h.directory.GetPublicCompany(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(lookupError("Company not found", err))
		return
	}
	response.Success(c, http.StatusOK, "Company retrieved", p)
}

// lookupError keeps a missing row apart from a failed read.
func lookupError(notFound string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound(notFound)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Unavailable("Could not load the profile", err)
}
