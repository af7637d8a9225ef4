package web

import (
	"net/http"
	"time"

	"talent-marketplace/internal/directory"
	"talent-marketplace/internal/domain"
	"talent-marketplace/pkg/logger"

	"github.com/gin-gonic/gin"
)

type directoryHandler struct {
	directory domain.DirectoryUsecase
}

// developerCard is one directory entry. Email is empty in the public view.
type developerCard struct {
	domain.PublicDeveloperProfile
	Email string
}

// developers serves the signed-in directory: cards, ?view=table, or ?format=xlsx.
func (h *directoryHandler) developers(c *gin.Context) {
	h.developerDirectory(c, "/developers", "Developers", false)
}

// talent is the company-facing variant whose search also covers contact emails.
func (h *directoryHandler) talent(c *gin.Context) {
	h.developerDirectory(c, "/talent", "Talent", true)
}

func (h *directoryHandler) developerDirectory(c *gin.Context, action, heading string, searchEmail bool) {
	var f directory.DeveloperFilter
	bindQuery(c, &f)
	table := c.Query("view") == "table"
	f.SearchSkills = table
	f.SearchEmail = searchEmail

	all, err := h.directory.ListDevelopers(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("developer listing failed", "error", err)
	}
	matches := directory.FilterDevelopers(all, f)

	if c.Query("format") == "xlsx" {
		if err != nil {
			redirectWith(c, action, "error", "Could not load developers. Please try again.")
			return
		}
		data, name, xerr := directory.ExportDevelopersXLSX(matches, time.Now())
		if xerr != nil {
			renderError(c, xerr)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
		return
	}

	cards := make([]developerCard, 0, len(matches))
	for _, d := range matches {
		cards = append(cards, developerCard{PublicDeveloperProfile: d.Listing(), Email: d.Email})
	}

	tmpl := "developers.html"
	if table {
		tmpl = "developers_table.html"
	}
	render(c, http.StatusOK, tmpl, heading, gin.H{
		"Result":    directory.NewResult(cards, len(all), err),
		"Filter":    f,
		"Query":     f.Query().Encode(),
		"Skills":    directory.Skills(all),
		"Locations": directory.Locations(all),
		"Bands":     directory.Bands,
		"Action":    action,
		"Heading":   heading,
		"Table":     table,
	})
}

// publicDevelopers is the directory for visitors. It reads the public view only.
func (h *directoryHandler) publicDevelopers(c *gin.Context) {
	var f directory.DeveloperFilter
	bindQuery(c, &f)

	all, err := h.directory.ListPublicDevelopers(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("public developer listing failed", "error", err)
	}
	matches := directory.FilterDevelopers(all, f)

	cards := make([]developerCard, 0, len(matches))
	for _, d := range matches {
		cards = append(cards, developerCard{PublicDeveloperProfile: d})
	}

	render(c, http.StatusOK, "developers.html", "Developers", gin.H{
		"Result":    directory.NewResult(cards, len(all), err),
		"Filter":    f,
		"Skills":    directory.Skills(all),
		"Locations": directory.Locations(all),
		"Bands":     directory.Bands,
		"Action":    "/public/developers",
		"Public":    true,
	})
}

func (h *directoryHandler) companies(c *gin.Context) {
	var f directory.CompanyFilter
	bindQuery(c, &f)
	table := c.Query("view") == "table"
	f.NameAndSectorOnly = table

	all, err := h.directory.ListCompanies(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("company listing failed", "error", err)
	}
	matches := directory.FilterCompanies(all, f)

	tmpl := "companies.html"
	if table {
		tmpl = "companies_table.html"
	}
	render(c, http.StatusOK, tmpl, "Companies", gin.H{
		"Result":    directory.NewResult(matches, len(all), err),
		"Filter":    f,
		"Sectors":   directory.Sectors(all),
		"Sizes":     directory.Sizes(all),
		"Locations": directory.CompanyLocations(all),
		"Table":     table,
	})
}
