package marketplace

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"medilink/internal/apperrors"
	"medilink/internal/lock"
	"medilink/internal/logger"
	"medilink/models"
	"medilink/repository"
)

const (
	maxBidMessageLen = 255
	orderLockTimeout = 5 * time.Second
)

type SubmitBidInput struct {
	OrderID int64   `json:"order_id"`
	Price   float64 `json:"price"`
	Message string  `json:"message"`
}

// BidService is the bid ledger: submit, accept (single winner) and reject.
type BidService struct {
	bids       repository.BidRepositoryI
	orders     repository.OrderRepositoryI
	pharmacies repository.PharmacyRepositoryI
	locker     lock.Locker
	notifier   *Notifier
	log        *logger.Logger
}

func NewBidService(bids repository.BidRepositoryI, orders repository.OrderRepositoryI, pharmacies repository.PharmacyRepositoryI,
	locker lock.Locker, notifier *Notifier, log *logger.Logger) *BidService {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &BidService{bids: bids, orders: orders, pharmacies: pharmacies, locker: locker, notifier: notifier, log: log}
}

// Submit places a pending bid for the pharmacy and moves the order to 'bidding'.
// Distance is not checked: any pharmacy may bid on any open order.
func (s *BidService) Submit(ctx context.Context, pharmacyID int64, in SubmitBidInput) (*models.Bid, error) {
	if in.OrderID <= 0 || in.Price == 0 {
		return nil, apperrors.ErrBidFieldsRequired
	}
	price := math.Round(in.Price*100) / 100
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return nil, apperrors.ErrInvalidPrice
	}
	if utf8.RuneCountInString(in.Message) > maxBidMessageLen {
		return nil, apperrors.ErrBidMessageTooLong
	}

	order, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if order == nil {
		return nil, apperrors.ErrOrderNotFound
	}
	if !order.Status.IsOpen() {
		return nil, apperrors.ErrCannotBid
	}
	pharmacy, err := s.pharmacies.GetByID(ctx, pharmacyID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if pharmacy == nil {
		return nil, apperrors.ErrPharmacyNotFound
	}

	bid, err := s.bids.Submit(ctx, &models.Bid{OrderID: order.ID, PharmacyID: pharmacyID, Price: price, Message: in.Message})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.ErrOrderNotFound
		case errors.Is(err, repository.ErrOrderClosed):
			return nil, apperrors.ErrCannotBid
		case errors.Is(err, repository.ErrConflict):
			return nil, apperrors.ErrDuplicateBid
		}
		return nil, apperrors.Internal(err)
	}
	s.log.LogBid("submitted", bid.ID, "order "+strconv.FormatInt(order.ID, 10)+" by "+pharmacy.Name)
	s.notifier.BidSubmitted(ctx, order, bid, pharmacy.Name)
	return bid, nil
}

// Accept lets the order owner pick one pending bid. The order completes and every other
// bid is rejected in the same transaction; concurrent acceptances on one order are
// serialized by the order lock and exactly one wins.
func (s *BidService) Accept(ctx context.Context, userID, bidID int64) (*models.Bid, error) {
	bid, order, err := s.ownedBid(ctx, userID, bidID)
	if err != nil {
		return nil, err
	}

	lockCtx, cancel := context.WithTimeout(ctx, orderLockTimeout)
	defer cancel()
	release, err := s.locker.Lock(lockCtx, orderLockKey(order.ID))
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			s.log.LogBid("accept_busy", bid.ID, "order lock held past timeout")
			return nil, apperrors.ErrOrderBusy
		}
		return nil, apperrors.Internal(err)
	}
	accepted, err := s.bids.Accept(ctx, bidID)
	release()
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.ErrBidNotFound
		case errors.Is(err, repository.ErrBidClosed), errors.Is(err, repository.ErrOrderClosed):
			return nil, apperrors.ErrBidNoLongerAvailable
		}
		return nil, apperrors.Internal(err)
	}
	s.log.LogBid("accepted", bid.ID, "order "+strconv.FormatInt(order.ID, 10)+" completed")
	s.notifier.BidAccepted(ctx, order, accepted)
	return accepted, nil
}

// Reject turns down a single bid. Siblings and the order are untouched.
// Rejecting an already rejected bid changes nothing and sends nothing.
func (s *BidService) Reject(ctx context.Context, userID, bidID int64) (*models.Bid, error) {
	_, order, err := s.ownedBid(ctx, userID, bidID)
	if err != nil {
		return nil, err
	}
	rejected, changed, err := s.bids.Reject(ctx, bidID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.ErrBidNotFound
		case errors.Is(err, repository.ErrBidClosed):
			return nil, apperrors.ErrCannotRejectAccepted
		}
		return nil, apperrors.Internal(err)
	}
	if changed {
		s.log.LogBid("rejected", rejected.ID, "by owner")
		s.notifier.BidRejected(ctx, order, rejected)
	}
	return rejected, nil
}

// ListForPharmacy returns the pharmacy's bids with their orders, newest first.
func (s *BidService) ListForPharmacy(ctx context.Context, pharmacyID int64) ([]models.PharmacyBid, error) {
	list, err := s.bids.ListByPharmacy(ctx, pharmacyID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

// ownedBid loads a bid and its order and checks that userID owns the order.
func (s *BidService) ownedBid(ctx context.Context, userID, bidID int64) (*models.Bid, *models.Order, error) {
	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		return nil, nil, apperrors.Internal(err)
	}
	if bid == nil {
		return nil, nil, apperrors.ErrBidNotFound
	}
	order, err := s.orders.GetByID(ctx, bid.OrderID)
	if err != nil {
		return nil, nil, apperrors.Internal(err)
	}
	if order == nil {
		return nil, nil, apperrors.ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, nil, apperrors.ErrNotOrderOwner
	}
	return bid, order, nil
}

func orderLockKey(orderID int64) string {
	return "order:" + strconv.FormatInt(orderID, 10)
}
