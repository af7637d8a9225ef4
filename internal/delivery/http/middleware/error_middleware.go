package middleware

import (
	"errors"
	"net/http"

	"talent-marketplace/internal/delivery/http/response"
	"talent-marketplace/pkg/apperror"
	"talent-marketplace/pkg/logger"
	"talent-marketplace/pkg/validation"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error pushed with c.Error as a JSON envelope.
// It is mounted on the JSON routes only; pages render their own errors.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := logger.FromContext(c.Request.Context())

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				log.Error("request failed", "status", appErr.Code, "error", err, "cause", appErr.Err)
			}
			var fields validation.FieldErrors
			if errors.As(err, &fields) {
				response.Error(c, appErr.Code, appErr.Message, fields)
				return
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		// SECURITY: never expose internal error details to clients
		log.Error("internal server error", "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
