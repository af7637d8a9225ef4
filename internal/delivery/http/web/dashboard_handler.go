package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func dashboard(c *gin.Context) {
	p := profileOf(c)
	data := gin.H{"Profile": p}
	if p != nil && p.Developer != nil {
		data["SkillCount"] = len(p.Developer.Skills)
		data["HasCV"] = p.Developer.HasCV()
	}
	render(c, http.StatusOK, "dashboard.html", "Dashboard", data)
}
