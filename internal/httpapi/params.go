package httpapi

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"medilink/internal/apperrors"
)

var errBadBody = apperrors.Validation("request", "Invalid request body")

// bind decodes the JSON body into dst, writing a 400 on failure.
func (s *Server) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.fail(c, errBadBody.WithDetails(err.Error()))
		return false
	}
	return true
}

// pathID parses a positive integer path parameter.
func (s *Server) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		s.fail(c, apperrors.Validation("request", "Invalid "+name))
		return 0, false
	}
	return id, true
}

// formFloat returns nil for an absent or blank field.
func formFloat(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.PostForm(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.Validation("request", name+" must be a number")
	}
	return &v, nil
}
