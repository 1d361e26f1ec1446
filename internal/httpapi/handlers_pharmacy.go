package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medilink/internal/apperrors"
	"medilink/internal/auth"
	"medilink/internal/geo"
)

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (s *Server) pharmacyOrders(c *gin.Context) {
	orders, err := s.deps.Orders.CandidateOrders(c.Request.Context(), auth.Current(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) pharmacyBids(c *gin.Context) {
	bids, err := s.deps.Bids.ListForPharmacy(c.Request.Context(), auth.Current(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bids)
}

func (s *Server) setPharmacyLocation(c *gin.Context) {
	var req locationRequest
	if !s.bind(c, &req) {
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		s.fail(c, apperrors.ErrPharmacyLocation)
		return
	}
	p, err := s.deps.Accounts.SetPharmacyLocation(c.Request.Context(), auth.Current(c).ID,
		geo.Coordinate{Lat: *req.Latitude, Lng: *req.Longitude})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Location updated", "pharmacy": p})
}
