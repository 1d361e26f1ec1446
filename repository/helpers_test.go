package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"medilink/internal/testutil"
	"medilink/models"
)

type fixture struct {
	db         *sql.DB
	users      *UserRepository
	pharmacies *PharmacyRepository
	orders     *OrderRepository
	bids       *BidRepository
	notes      *NotificationRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d := testutil.OpenTestDB(t)
	return &fixture{
		db:         d,
		users:      NewUserRepository(d),
		pharmacies: NewPharmacyRepository(d),
		orders:     NewOrderRepository(d),
		bids:       NewBidRepository(d),
		notes:      NewNotificationRepository(d),
	}
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), &models.User{FullName: "Customer " + email, Email: email, PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) pharmacy(t *testing.T, name string, lat, lng *float64) *models.Pharmacy {
	t.Helper()
	p, err := f.pharmacies.Create(context.Background(), &models.Pharmacy{
		Name: name, Email: fmt.Sprintf("%s@pharm.test", name), PasswordHash: "x",
		Phone: "021-111", Address: name + " street", Latitude: lat, Longitude: lng,
	})
	if err != nil {
		t.Fatalf("create pharmacy: %v", err)
	}
	return p
}

func (f *fixture) order(t *testing.T, userID int64, lat, lng *float64) *models.Order {
	t.Helper()
	o, err := f.orders.Create(context.Background(), &models.Order{UserID: userID, ImageURL: "/uploads/rx.png", Latitude: lat, Longitude: lng})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func (f *fixture) bid(t *testing.T, orderID, pharmacyID int64, price float64) *models.Bid {
	t.Helper()
	b, err := f.bids.Submit(context.Background(), &models.Bid{OrderID: orderID, PharmacyID: pharmacyID, Price: price})
	if err != nil {
		t.Fatalf("submit bid: %v", err)
	}
	return b
}
