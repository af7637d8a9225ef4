package web

import (
	"errors"
	"net/http"

	"talent-marketplace/internal/delivery/http/middleware"
	"talent-marketplace/internal/domain"

	"github.com/gin-gonic/gin"
)

const companyProfilePath = "/company/profile"

type companyHandler struct {
	profiles domain.CompanyProfileUsecase
	uploads  domain.UploadUsecase
	sessions SessionService
}

func (h *companyHandler) edit(c *gin.Context) {
	accountID := middleware.AccountID(c)
	company, err := h.profiles.Get(c.Request.Context(), accountID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		renderError(c, err)
		return
	}

	form := domain.FormFromCompany(company)
	if company == nil {
		form.Email = c.GetString(string(domain.KeyAccountEmail))
	}
	h.renderForm(c, http.StatusOK, company, form, nil)
}

func (h *companyHandler) submit(c *gin.Context) {
	accountID := middleware.AccountID(c)

	var form domain.CompanyForm
	err := bindForm(c, &form)
	if err == nil {
		_, err = h.profiles.Save(c.Request.Context(), accountID, form)
	}
	if err != nil {
		current, getErr := h.profiles.Get(c.Request.Context(), accountID)
		logLoadFailure(c, "company profile", getErr)
		h.renderForm(c, statusFor(err), current, form, err)
		return
	}

	notifyChanged(c, h.sessions, accountID)
	redirectWith(c, companyProfilePath, "success", "Company profile saved")
}

func (h *companyHandler) renderForm(c *gin.Context, status int, company *domain.CompanyProfile, form domain.CompanyForm, err error) {
	data := gin.H{
		"Form":    form,
		"Company": company,
	}
	if err != nil {
		data["Error"] = userMessage(err)
		data["Errors"] = fieldErrors(err)
	}
	render(c, status, "company_profile.html", "My company profile", data)
}

func (h *companyHandler) uploadLogo(c *gin.Context) {
	accountID := middleware.AccountID(c)
	if err := receiveUpload(c, h.uploads, accountID, domain.PurposeLogo); err != nil {
		redirectWith(c, companyProfilePath, "error", userMessage(err))
		return
	}
	notifyChanged(c, h.sessions, accountID)
	redirectWith(c, companyProfilePath, "success", "Logo updated")
}
