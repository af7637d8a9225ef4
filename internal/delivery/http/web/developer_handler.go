package web

import (
	"errors"
	"net/http"
	"strings"

	"talent-marketplace/internal/delivery/http/middleware"
	"talent-marketplace/internal/domain"
	"talent-marketplace/internal/session"
	"talent-marketplace/pkg/logger"
	"talent-marketplace/pkg/security"

	"github.com/gin-gonic/gin"
)

const developerProfilePath = "/developer/profile"

type developerHandler struct {
	profiles domain.DeveloperProfileUsecase
	uploads  domain.UploadUsecase
	sessions SessionService
}

func (h *developerHandler) edit(c *gin.Context) {
	accountID := middleware.AccountID(c)
	dev, err := h.profiles.Get(c.Request.Context(), accountID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		renderError(c, err)
		return
	}

	form := domain.FormFromDeveloper(dev)
	if dev == nil {
		form.Email = c.GetString(string(domain.KeyAccountEmail))
	}
	h.renderForm(c, http.StatusOK, dev, form, nil)
}

func (h *developerHandler) submit(c *gin.Context) {
	accountID := middleware.AccountID(c)

	var form domain.DeveloperForm
	bindErr := bindForm(c, &form)

	// the stored record is only needed for the file widgets
	current, err := h.profiles.Get(c.Request.Context(), accountID)
	logLoadFailure(c, "developer profile", err)

	if bindErr != nil {
		h.renderForm(c, http.StatusBadRequest, current, form, bindErr)
		return
	}
	if editSkills(c, &form) {
		h.renderForm(c, http.StatusOK, current, form, nil)
		return
	}

	if _, err := h.profiles.Save(c.Request.Context(), accountID, form); err != nil {
		h.renderForm(c, statusFor(err), current, form, err)
		return
	}

	h.profileChanged(c, accountID)
	redirectWith(c, developerProfilePath, "success", "Profile saved")
}

func (h *developerHandler) renderForm(c *gin.Context, status int, dev *domain.DeveloperProfile, form domain.DeveloperForm, err error) {
	data := gin.H{
		"Form":      form,
		"Developer": dev,
	}
	if err != nil {
		data["Error"] = userMessage(err)
		data["Errors"] = fieldErrors(err)
	}
	render(c, status, "developer_profile.html", "My developer profile", data)
}

func (h *developerHandler) uploadCV(c *gin.Context) {
	h.upload(c, domain.PurposeCV, "CV uploaded")
}

func (h *developerHandler) uploadAvatar(c *gin.Context) {
	h.upload(c, domain.PurposeAvatar, "Photo updated")
}

func (h *developerHandler) upload(c *gin.Context, purpose domain.UploadPurpose, done string) {
	accountID := middleware.AccountID(c)
	if err := receiveUpload(c, h.uploads, accountID, purpose); err != nil {
		redirectWith(c, developerProfilePath, "error", userMessage(err))
		return
	}
	h.profileChanged(c, accountID)
	redirectWith(c, developerProfilePath, "success", done)
}

func (h *developerHandler) downloadCV(c *gin.Context) {
	url, err := h.uploads.CVDownloadURL(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		redirectWith(c, developerProfilePath, "error", userMessage(err))
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h *developerHandler) deleteCV(c *gin.Context) {
	accountID := middleware.AccountID(c)
	if err := h.uploads.DeleteCV(c.Request.Context(), accountID); err != nil {
		redirectWith(c, developerProfilePath, "error", userMessage(err))
		return
	}
	h.profileChanged(c, accountID)
	redirectWith(c, developerProfilePath, "success", "CV deleted")
}

func (h *developerHandler) profileChanged(c *gin.Context, accountID string) {
	notifyChanged(c, h.sessions, accountID)
}

func notifyChanged(c *gin.Context, sessions SessionService, accountID string) {
	if err := sessions.Notify(accountID, session.ProfileChanged); err != nil {
		logger.FromContext(c.Request.Context()).Warn("profile change not propagated", "error", err)
	}
}

// receiveUpload hands the "file" form field to the upload usecase.
func receiveUpload(c *gin.Context, uploads domain.UploadUsecase, accountID string, purpose domain.UploadPurpose) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badUpload("Choose a file to upload")
	}
	if err := security.ValidateFileExtension(purpose, fh.Filename); err != nil {
		return badUpload("Allowed file types: " + strings.Join(security.AllowedExtensions(purpose), ", "))
	}
	f, err := fh.Open()
	if err != nil {
		return badUpload("Could not read the uploaded file")
	}
	defer f.Close()

	_, err = uploads.Upload(c.Request.Context(), accountID, purpose, domain.FileUpload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     f,
	})
	return err
}
