package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medilink/internal/apperrors"
	"medilink/internal/auth"
	"medilink/internal/geo"
	"medilink/internal/marketplace"
)

// multipartSlack covers form fields and part headers on top of the image itself.
const multipartSlack = 64 << 10

func (s *Server) createOrder(c *gin.Context) {
	if s.deps.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.deps.MaxUploadBytes+multipartSlack)
	}
	in, err := s.orderInput(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if closer, ok := in.Prescription.Body.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	order, notified, err := s.deps.Orders.Create(c.Request.Context(), auth.Current(c).ID, *in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":             "Order created successfully",
		"order":               order,
		"notified_pharmacies": notified,
	})
}

func (s *Server) orderInput(c *gin.Context) (*marketplace.CreateOrderInput, error) {
	fh, err := c.FormFile("prescription")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, apperrors.ErrFileTooLarge
		}
		return nil, apperrors.ErrPrescriptionRequired
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	in := &marketplace.CreateOrderInput{
		Prescription: &marketplace.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		},
		Description: c.PostForm("description"),
	}

	radius, err := formFloat(c, "radius_km")
	if err != nil {
		f.Close()
		return nil, err
	}
	if radius != nil {
		in.RadiusKm = *radius
	}

	lat, errLat := formFloat(c, "latitude")
	lng, errLng := formFloat(c, "longitude")
	switch {
	case errLat != nil || errLng != nil:
		f.Close()
		return nil, apperrors.ErrInvalidLocation
	case lat != nil && lng != nil:
		in.Location = &geo.Coordinate{Lat: *lat, Lng: *lng}
	case lat != nil || lng != nil:
		f.Close()
		return nil, apperrors.ErrInvalidLocation
	}
	return in, nil
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.deps.Orders.ListForUser(c.Request.Context(), auth.Current(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getOrder(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	order, err := s.deps.Orders.Get(c.Request.Context(), auth.Current(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) listOrderBids(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	bids, err := s.deps.Orders.ListBids(c.Request.Context(), auth.Current(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bids)
}

func (s *Server) cancelOrder(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	order, err := s.deps.Orders.Cancel(c.Request.Context(), auth.Current(c).ID, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order": order})
}
