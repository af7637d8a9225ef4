package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"talent-marketplace/internal/delivery/http/middleware"
	"talent-marketplace/internal/domain"
	"talent-marketplace/pkg/apperror"
	"talent-marketplace/pkg/logger"
	"talent-marketplace/pkg/validation"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"years": func(n *int) int {
		if n == nil {
			return 0
		}
		return *n
	},
	"join": strings.Join,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2 Jan 2006")
	},
	"dict": func(kv ...interface{}) map[string]interface{} {
		m := make(map[string]interface{}, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			if k, ok := kv[i].(string); ok {
				m[k] = kv[i+1]
			}
		}
		return m
	},
	"fieldErr": func(errs interface{}, field string) string {
		fe, _ := errs.(validation.FieldErrors)
		return fe[field]
	},
	"selected": func(a, b string) template.HTMLAttr {
		if a == b {
			return "selected"
		}
		return ""
	},
}

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// page builds the data every template receives.
func page(c *gin.Context, title string, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["CSRF"] = middleware.CSRFToken(c)
	data["Flash"] = takeFlash(c)
	data["Path"] = c.Request.URL.Path
	if snap, ok := middleware.SnapshotFrom(c); ok && snap.Profile != nil {
		data["Me"] = snap.Profile
	}
	return data
}

func render(c *gin.Context, status int, name, title string, data gin.H) {
	c.HTML(status, name, page(c, title, data))
}

// renderError shows the error page for failures that cannot be shown inline.
func renderError(c *gin.Context, err error) {
	status := apperror.CodeOf(err)
	msg := "Something went wrong. Please try again."
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		msg = appErr.Message
	}
	if status == http.StatusServiceUnavailable {
		msg = "The service is temporarily unavailable. Please try again."
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("page failed", "path", c.Request.URL.Path, "error", err)
	}
	render(c, status, "error.html", "Error", gin.H{"Message": msg, "Retry": status >= http.StatusInternalServerError})
	c.Abort()
}

// fieldErrors extracts per-field messages from a validation failure.
func fieldErrors(err error) validation.FieldErrors {
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// userMessage is the notice shown for a failed action.
func userMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError {
		return appErr.Message
	}
	if errors.Is(err, domain.ErrNotFound) {
		return "Not found"
	}
	return "The service is temporarily unavailable. Please try again."
}

// bindForm binds the posted form. A body that cannot be read is logged and
// reported as a 400 the page can show next to the submitted values.
func bindForm(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBind(obj); err != nil {
		logger.FromContext(c.Request.Context()).Warn("form binding failed", "path", c.FullPath(), "error", err)
		return apperror.BadRequest("Some fields could not be read. Check your input and try again.")
	}
	return nil
}

// bindQuery binds listing filters. Unreadable values are logged and left at their zero value.
func bindQuery(c *gin.Context, obj interface{}) {
	if err := c.ShouldBindQuery(obj); err != nil {
		logger.FromContext(c.Request.Context()).Warn("query binding failed", "path", c.FullPath(), "error", err)
	}
}

// logLoadFailure records a profile read that only feeds page decoration.
func logLoadFailure(c *gin.Context, what string, err error) {
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.FromContext(c.Request.Context()).Error(what+" read failed", "error", err)
	}
}

func badUpload(msg string) error {
	return apperror.BadRequest(msg)
}
