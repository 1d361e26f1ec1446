package repository

import (
	"context"

	"medilink/internal/geo"
	"medilink/models"
)

// UserRepositoryI defines operations on customer accounts.
type UserRepositoryI interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// PharmacyRepositoryI defines operations on pharmacy accounts.
type PharmacyRepositoryI interface {
	Create(ctx context.Context, p *models.Pharmacy) (*models.Pharmacy, error)
	GetByID(ctx context.Context, id int64) (*models.Pharmacy, error)
	GetByEmail(ctx context.Context, email string) (*models.Pharmacy, error)
	UpdateLocation(ctx context.Context, id int64, at geo.Coordinate) error
	ListActiveLocated(ctx context.Context, box *geo.Box) ([]models.Pharmacy, error)
}

// OrderRepositoryI defines operations on Order entities.
type OrderRepositoryI interface {
	Create(ctx context.Context, o *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	ListByUserID(ctx context.Context, userID int64) ([]models.Order, error)
	Cancel(ctx context.Context, id int64) error
	ListOpenLocated(ctx context.Context, box *geo.Box) ([]models.Order, error)
	MaxOpenRadiusKm(ctx context.Context) (float64, error)
}

// BidRepositoryI defines the bid ledger.
type BidRepositoryI interface {
	Submit(ctx context.Context, b *models.Bid) (*models.Bid, error)
	GetByID(ctx context.Context, id int64) (*models.Bid, error)
	Accept(ctx context.Context, id int64) (*models.Bid, error)
	Reject(ctx context.Context, id int64) (*models.Bid, bool, error)
	ListByOrder(ctx context.Context, orderID int64) ([]models.OrderBid, error)
	ListByPharmacy(ctx context.Context, pharmacyID int64) ([]models.PharmacyBid, error)
}

// NotificationRepositoryI defines operations on notifications.
type NotificationRepositoryI interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	GetByID(ctx context.Context, id int64) (*models.Notification, error)
	ListByReceiver(ctx context.Context, receiverID int64, receiverType models.PrincipalType) ([]models.Notification, error)
	CountUnread(ctx context.Context, receiverID int64, receiverType models.PrincipalType) (int, error)
	MarkRead(ctx context.Context, id, receiverID int64, receiverType models.PrincipalType) error
	MarkAllRead(ctx context.Context, receiverID int64, receiverType models.PrincipalType) (int64, error)
}

var (
	_ UserRepositoryI         = (*UserRepository)(nil)
	_ PharmacyRepositoryI     = (*PharmacyRepository)(nil)
	_ OrderRepositoryI        = (*OrderRepository)(nil)
	_ BidRepositoryI          = (*BidRepository)(nil)
	_ NotificationRepositoryI = (*NotificationRepository)(nil)
)
