package web

import (
	"errors"
	"net/http"

	"talent-marketplace/internal/delivery/http/middleware"
	"talent-marketplace/internal/domain"

	"github.com/gin-gonic/gin"
)

type setupHandler struct {
	sessions SessionService
}

// page shows the role chooser, then the form for the chosen role.
func (h *setupHandler) page(c *gin.Context) {
	snap, _ := middleware.SnapshotFrom(c)
	if snap.Err != nil {
		renderError(c, snap.Err)
		return
	}
	if snap.Profile != nil {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	email := c.GetString(string(domain.KeyAccountEmail))
	render(c, http.StatusOK, "setup.html", "Set up your profile", gin.H{
		"Role":      c.Query("role"),
		"Developer": domain.DeveloperForm{Email: email},
		"Company":   domain.CompanyForm{Email: email, ContactEmail: email},
	})
}

func (h *setupHandler) submit(c *gin.Context) {
	if snap, _ := middleware.SnapshotFrom(c); snap.Profile != nil {
		redirectWith(c, "/dashboard", "error", "Your profile is already set up")
		return
	}

	accountID := middleware.AccountID(c)
	role := domain.Role(c.PostForm("role"))
	input := domain.SetupInput{Role: role}
	data := gin.H{"Role": string(role)}

	switch role {
	case domain.RoleDeveloper:
		var form domain.DeveloperForm
		if err := bindForm(c, &form); err != nil {
			data["Developer"] = form
			data["Error"] = userMessage(err)
			render(c, http.StatusBadRequest, "setup.html", "Set up your profile", data)
			return
		}
		if editSkills(c, &form) {
			data["Developer"] = form
			render(c, http.StatusOK, "setup.html", "Set up your profile", data)
			return
		}
		input.Developer = &form
		data["Developer"] = form
	case domain.RoleCompany:
		var form domain.CompanyForm
		if err := bindForm(c, &form); err != nil {
			data["Company"] = form
			data["Error"] = userMessage(err)
			render(c, http.StatusBadRequest, "setup.html", "Set up your profile", data)
			return
		}
		input.Company = &form
		data["Company"] = form
	default:
		render(c, http.StatusBadRequest, "setup.html", "Set up your profile", gin.H{
			"Error": "Choose whether you are a developer or a company",
		})
		return
	}

	if _, err := h.sessions.CreateProfile(c.Request.Context(), accountID, input); err != nil {
		if errors.Is(err, domain.ErrProfileExists) {
			redirectWith(c, "/dashboard", "error", "Your profile is already set up")
			return
		}
		data["Error"] = userMessage(err)
		data["Errors"] = fieldErrors(err)
		render(c, statusFor(err), "setup.html", "Set up your profile", data)
		return
	}

	redirectWith(c, "/dashboard", "success", "Profile created")
}

// editSkills applies an add or remove button of the skill editor.
// It reports whether the request was a skill edit rather than a submission.
func editSkills(c *gin.Context, form *domain.DeveloperForm) bool {
	if skill, ok := c.GetPostForm("remove_skill"); ok {
		form.Skills = domain.SkillSet(form.Skills).Remove(skill)
		return true
	}
	if c.PostForm("action") == "add_skill" {
		form.Skills = domain.SkillSet(form.Skills).Add(c.PostForm("new_skill"))
		return true
	}
	return false
}
