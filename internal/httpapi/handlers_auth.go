package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medilink/internal/apperrors"
	"medilink/internal/auth"
	"medilink/internal/marketplace"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Message string `json:"message"`
	*marketplace.Session
}

var errLoginFields = apperrors.Validation("auth", "Email and password are required")

func (s *Server) registerUser(c *gin.Context) {
	var req marketplace.RegisterUserInput
	if !s.bind(c, &req) {
		return
	}
	sess, err := s.deps.Accounts.RegisterUser(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{Message: "Registration successful", Session: sess})
}

func (s *Server) registerPharmacy(c *gin.Context) {
	var req marketplace.RegisterPharmacyInput
	if !s.bind(c, &req) {
		return
	}
	sess, err := s.deps.Accounts.RegisterPharmacy(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{Message: "Registration successful", Session: sess})
}

func (s *Server) loginUser(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errLoginFields)
		return
	}
	sess, err := s.deps.Accounts.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Message: "Login successful", Session: sess})
}

func (s *Server) loginPharmacy(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errLoginFields)
		return
	}
	sess, err := s.deps.Accounts.LoginPharmacy(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Message: "Login successful", Session: sess})
}

func (s *Server) me(c *gin.Context) {
	profile, err := s.deps.Accounts.Me(c.Request.Context(), auth.Current(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
