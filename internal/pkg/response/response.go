package response

import (
	"net/http"

	"carrental/internal/pkg/apperror"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// FromError renders a service error. Business rule violations become 4xx with
// their own message; anything else is attached to the gin context for the
// error logger and answered with a generic 500.
func FromError(c *gin.Context, err error) {
	if appErr, ok := apperror.As(err); ok {
		status := http.StatusBadRequest
		if appErr.Code == apperror.CodeNotFound {
			status = http.StatusNotFound
		}
		if len(appErr.Details) > 0 {
			ErrorWithDetails(c, status, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		Error(c, status, appErr.Code, appErr.Message)
		return
	}

	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}
