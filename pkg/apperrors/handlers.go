package apperrors

import (
	"crosslist_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// HandleError writes err as a JSON error response. Non-AppError values are
// wrapped as internal errors with the cause hidden from the client.
func HandleError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	if appErr.HTTPCode >= 500 {
		logger.CtxWithError(c.Request.Context(), "server error", appErr, "path", c.Request.URL.Path)
		// Hide wrapped causes from clients on 5xx.
		appErr = New(appErr.Code, "Internal server error", appErr.HTTPCode)
	}

	c.JSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
