package web

import (
	"net/http"

	"talent-marketplace/internal/delivery/http/middleware"
	"talent-marketplace/internal/domain"

	"github.com/gin-gonic/gin"
)

// requireProfile sends accounts without a profile to the setup wizard.
// A failed reconciliation renders a retry page instead, since the profile may well exist.
func requireProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, _ := middleware.SnapshotFrom(c)
		switch {
		case snap.Err != nil:
			render(c, http.StatusServiceUnavailable, "error.html", "Error", gin.H{
				"Message": "We could not load your profile. Please try again.",
				"Retry":   true,
			})
			c.Abort()
		case snap.NeedsSetup():
			c.Redirect(http.StatusSeeOther, "/setup")
			c.Abort()
		default:
			c.Next()
		}
	}
}

// requireRole lets only the given role through; others go back to the dashboard.
func requireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, _ := middleware.SnapshotFrom(c)
		if snap.Profile == nil || snap.Profile.Role != role {
			redirectWith(c, "/dashboard", "error", "That page is not available for your account")
			c.Abort()
			return
		}
		c.Next()
	}
}

func profileOf(c *gin.Context) *domain.Profile {
	snap, _ := middleware.SnapshotFrom(c)
	return snap.Profile
}
