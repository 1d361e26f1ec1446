package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medilink/internal/auth"
	"medilink/internal/marketplace"
)

func (s *Server) submitBid(c *gin.Context) {
	var req marketplace.SubmitBidInput
	if !s.bind(c, &req) {
		return
	}
	bid, err := s.deps.Bids.Submit(c.Request.Context(), auth.Current(c).ID, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Bid placed successfully", "bid": bid})
}

func (s *Server) acceptBid(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	bid, err := s.deps.Bids.Accept(c.Request.Context(), auth.Current(c).ID, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bid accepted", "bid": bid})
}

func (s *Server) rejectBid(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	bid, err := s.deps.Bids.Reject(c.Request.Context(), auth.Current(c).ID, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bid rejected", "bid": bid})
}
