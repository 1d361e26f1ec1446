package apperrors

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON envelope for every failed request.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// ServerErrorLogger receives 5xx failures before the generic response is written.
type ServerErrorLogger func(c *gin.Context, err error)

// GinErrorHandler converts errors into ErrorResponse bodies.
type GinErrorHandler struct {
	Debug    bool
	LogError ServerErrorLogger
}

// Handle writes err to the response and aborts the gin chain.
func (h *GinErrorHandler) Handle(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = Internal(err)
	}
	if appErr.HTTPCode >= 500 {
		if h.LogError != nil {
			h.LogError(c, err)
		}
		if !h.Debug {
			cp := *appErr
			cp.Message = "Internal server error"
			cp.Details = nil
			appErr = &cp
		}
	}
	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}
