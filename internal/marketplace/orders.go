package marketplace

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"

	"medilink/internal/apperrors"
	"medilink/internal/auth"
	"medilink/internal/geo"
	"medilink/internal/logger"
	"medilink/internal/matching"
	"medilink/internal/storage"
	"medilink/models"
	"medilink/repository"
)

// ImageStore saves prescription uploads.
type ImageStore interface {
	SaveImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	Delete(url string) error
}

// Upload is a prescription image as received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// CreateOrderInput carries a customer's new request. Location is optional; without it
// the order is never matched. A zero radius means geo.DefaultRadiusKm.
type CreateOrderInput struct {
	Prescription *Upload
	Description  string
	RadiusKm     float64
	Location     *geo.Coordinate
}

// OrderService implements the order lifecycle and both directions of candidate matching.
type OrderService struct {
	orders     repository.OrderRepositoryI
	pharmacies repository.PharmacyRepositoryI
	bids       repository.BidRepositoryI
	images     ImageStore
	notifier   *Notifier
	log        *logger.Logger
}

func NewOrderService(orders repository.OrderRepositoryI, pharmacies repository.PharmacyRepositoryI, bids repository.BidRepositoryI,
	images ImageStore, notifier *Notifier, log *logger.Logger) *OrderService {
	return &OrderService{orders: orders, pharmacies: pharmacies, bids: bids, images: images, notifier: notifier, log: log}
}

// Create stores the prescription, persists the order in 'pending' and notifies every
// active pharmacy within the radius. It returns the order and the number of pharmacies notified.
func (s *OrderService) Create(ctx context.Context, userID int64, in CreateOrderInput) (*models.Order, int, error) {
	if in.Prescription == nil || in.Prescription.Body == nil {
		return nil, 0, apperrors.ErrPrescriptionRequired
	}
	radius := in.RadiusKm
	if radius == 0 {
		radius = geo.DefaultRadiusKm
	}
	if radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, 0, apperrors.ErrInvalidRadius
	}
	if in.Location != nil && !in.Location.Valid() {
		return nil, 0, apperrors.ErrInvalidLocation
	}

	url, err := s.images.SaveImage(ctx, in.Prescription.Filename, in.Prescription.ContentType, in.Prescription.Body)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			return nil, 0, apperrors.ErrFileTooLarge
		case errors.Is(err, storage.ErrInvalidFileType):
			return nil, 0, apperrors.ErrInvalidFileType
		}
		return nil, 0, apperrors.Internal(err)
	}

	o := &models.Order{
		UserID:      userID,
		ImageURL:    url,
		Description: strings.TrimSpace(in.Description),
		RadiusKm:    math.Round(radius*100) / 100,
	}
	if in.Location != nil {
		lat, lng := in.Location.Lat, in.Location.Lng
		o.Latitude, o.Longitude = &lat, &lng
	}
	created, err := s.orders.Create(ctx, o)
	if err != nil {
		if derr := s.images.Delete(url); derr != nil {
			s.log.Warnf("ORDER", "remove orphaned upload %s: %v", url, derr)
		}
		return nil, 0, apperrors.Internal(err)
	}
	s.log.LogOrder("created", created.ID, "by user")

	matches, err := s.PharmaciesNear(ctx, created)
	if err != nil {
		// Fanout is best effort; the order stands.
		s.log.Errorf("FANOUT", "match pharmacies for order %d: %v", created.ID, err)
	}
	sent := s.notifier.OrderCreated(ctx, created, matches)
	return created, sent, nil
}

// PharmaciesNear returns the active pharmacies inside the order's radius, nearest first.
// Orders without a coordinate match nobody.
func (s *OrderService) PharmaciesNear(ctx context.Context, o *models.Order) ([]matching.PharmacyMatch, error) {
	at, ok := o.Location()
	if !ok {
		return nil, nil
	}
	box := geo.BoundingBox(at, o.RadiusKm)
	candidates, err := s.pharmacies.ListActiveLocated(ctx, &box)
	if err != nil {
		return nil, err
	}
	return matching.PharmaciesNear(at, o.RadiusKm, candidates), nil
}

// ListForUser returns the customer's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID int64) ([]models.Order, error) {
	list, err := s.orders.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if list == nil {
		list = []models.Order{}
	}
	return list, nil
}

// Get returns an order visible to p: its owner or any pharmacy.
func (s *OrderService) Get(ctx context.Context, p *auth.Principal, id int64) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if o == nil {
		return nil, apperrors.ErrOrderNotFound
	}
	if !p.IsPharmacy() && !(p.IsCustomer() && p.ID == o.UserID) {
		return nil, apperrors.ErrNotOrderOwner
	}
	return o, nil
}

// ListBids returns the order's bids cheapest first, to the owner or any pharmacy.
func (s *OrderService) ListBids(ctx context.Context, p *auth.Principal, orderID int64) ([]models.OrderBid, error) {
	if _, err := s.Get(ctx, p, orderID); err != nil {
		return nil, err
	}
	list, err := s.bids.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

// Cancel moves the owner's open order to 'cancelled'.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if o == nil {
		return nil, apperrors.ErrOrderNotFound
	}
	if o.UserID != userID {
		return nil, apperrors.ErrNotOrderOwner
	}
	if err := s.orders.Cancel(ctx, orderID); err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderClosed):
			return nil, apperrors.ErrCannotCancel
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Internal(err)
	}
	o.Status = models.OrderStatusCancelled
	s.log.LogOrder("cancelled", o.ID, "by owner")
	s.notifier.OrderCancelled(ctx, o)
	return o, nil
}

// CandidateOrders returns the open orders whose own radius reaches the pharmacy, newest first.
// A pharmacy that has not set its location sees nothing.
func (s *OrderService) CandidateOrders(ctx context.Context, pharmacyID int64) ([]matching.OrderMatch, error) {
	p, err := s.pharmacies.GetByID(ctx, pharmacyID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if p == nil {
		return nil, apperrors.ErrPharmacyNotFound
	}
	at, ok := p.Location()
	if !ok {
		return []matching.OrderMatch{}, nil
	}
	maxRadius, err := s.orders.MaxOpenRadiusKm(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if maxRadius <= 0 {
		return []matching.OrderMatch{}, nil
	}
	box := geo.BoundingBox(at, maxRadius)
	orders, err := s.orders.ListOpenLocated(ctx, &box)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return matching.OrdersNear(*p, orders), nil
}
