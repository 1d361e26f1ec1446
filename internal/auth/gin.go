package auth

import (
	"github.com/gin-gonic/gin"

	"medilink/internal/apperrors"
)

const ginPrincipalKey = "principal"

// FailFunc writes an authentication or authorization failure and aborts the chain.
type FailFunc func(c *gin.Context, err error)

// GinMiddleware validates the Bearer token on every request and stores the Principal
// both in the gin context and in the request context.
func GinMiddleware(secret string, fail FailFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			fail(c, apperrors.ErrMissingToken)
			return
		}
		p, err := ParseBearer(header, secret)
		if err != nil {
			fail(c, apperrors.Wrap(err, apperrors.ErrInvalidToken.Code, "auth", apperrors.ErrInvalidToken.Message, apperrors.ErrInvalidToken.HTTPCode))
			return
		}
		c.Set(ginPrincipalKey, p)
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// RequireCustomer lets only customer principals through.
func RequireCustomer(fail FailFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Current(c).IsCustomer() {
			fail(c, apperrors.ErrCustomersOnly)
			return
		}
		c.Next()
	}
}

// RequirePharmacy lets only pharmacy principals through.
func RequirePharmacy(fail FailFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Current(c).IsPharmacy() {
			fail(c, apperrors.ErrPharmaciesOnly)
			return
		}
		c.Next()
	}
}

// Current returns the principal set by GinMiddleware, or nil.
func Current(c *gin.Context) *Principal {
	v, ok := c.Get(ginPrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*Principal)
	return p
}
