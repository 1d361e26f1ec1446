package marketplace

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"medilink/internal/auth"
	"medilink/internal/events"
	"medilink/internal/geo"
	"medilink/internal/lock"
	"medilink/internal/logger"
	"medilink/internal/storage"
	"medilink/internal/testutil"
	"medilink/models"
	"medilink/repository"
)

var (
	karachi   = geo.Coordinate{Lat: 24.86, Lng: 67.01}
	near      = geo.Coordinate{Lat: 24.87, Lng: 67.02} // ~1.5 km from karachi
	far       = geo.Coordinate{Lat: 24.90, Lng: 67.05} // ~6 km from karachi
	pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
)

type harness struct {
	db         *sql.DB
	users      *repository.UserRepository
	pharmacies *repository.PharmacyRepository
	orders     *repository.OrderRepository
	bids       *repository.BidRepository
	notes      *repository.NotificationRepository
	recorder   *events.Recorder
	images     *storage.ImageStore

	accounts      *AccountService
	orderSvc      *OrderService
	bidSvc        *BidService
	notifications *NotificationService
}

type harnessOption func(*harnessDeps)

type harnessDeps struct {
	notes     repository.NotificationRepositoryI
	publisher events.Publisher
	locker    lock.Locker
}

func withNotificationRepo(r repository.NotificationRepositoryI) harnessOption {
	return func(d *harnessDeps) { d.notes = r }
}

func withPublisher(p events.Publisher) harnessOption {
	return func(d *harnessDeps) { d.publisher = p }
}

func withLocker(l lock.Locker) harnessOption {
	return func(d *harnessDeps) { d.locker = l }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	d := testutil.OpenTestDB(t)
	images, err := storage.NewImageStore(storage.Config{BasePath: t.TempDir(), BaseURL: "/uploads", MaxBytes: 1024})
	require.NoError(t, err)

	h := &harness{
		db:         d,
		users:      repository.NewUserRepository(d),
		pharmacies: repository.NewPharmacyRepository(d),
		orders:     repository.NewOrderRepository(d),
		bids:       repository.NewBidRepository(d),
		notes:      repository.NewNotificationRepository(d),
		recorder:   &events.Recorder{},
		images:     images,
	}
	deps := harnessDeps{notes: h.notes, publisher: h.recorder, locker: lock.NewLocalLocker()}
	for _, o := range opts {
		o(&deps)
	}
	log := logger.Discard()
	notifier := NewNotifier(deps.notes, deps.publisher, log)
	h.accounts = NewAccountService(h.users, h.pharmacies, "test-secret", time.Hour, log)
	h.orderSvc = NewOrderService(h.orders, h.pharmacies, h.bids, images, notifier, log)
	h.bidSvc = NewBidService(h.bids, h.orders, h.pharmacies, deps.locker, notifier, log)
	h.notifications = NewNotificationService(h.notes)
	return h
}

func (h *harness) customer(t *testing.T, email string) *auth.Principal {
	t.Helper()
	s, err := h.accounts.RegisterUser(context.Background(), RegisterUserInput{FullName: "C " + email, Email: email, Password: "secret1"})
	require.NoError(t, err)
	return &auth.Principal{ID: s.User.ID, Kind: models.PrincipalUser}
}

func (h *harness) pharmacy(t *testing.T, name string, at *geo.Coordinate) *auth.Principal {
	t.Helper()
	in := RegisterPharmacyInput{PharmacyName: name, Email: fmt.Sprintf("%s@pharm.test", name), Password: "secret1"}
	if at != nil {
		in.Latitude, in.Longitude = testutil.Ptr(at.Lat), testutil.Ptr(at.Lng)
	}
	s, err := h.accounts.RegisterPharmacy(context.Background(), in)
	require.NoError(t, err)
	return &auth.Principal{ID: s.Pharmacy.ID, Kind: models.PrincipalPharmacy}
}

func (h *harness) order(t *testing.T, owner *auth.Principal, at *geo.Coordinate, radius float64) *models.Order {
	t.Helper()
	o, _, err := h.orderSvc.Create(context.Background(), owner.ID, CreateOrderInput{
		Prescription: pngUpload(),
		RadiusKm:     radius,
		Location:     at,
	})
	require.NoError(t, err)
	return o
}

func (h *harness) bid(t *testing.T, p *auth.Principal, orderID int64, price float64) *models.Bid {
	t.Helper()
	b, err := h.bidSvc.Submit(context.Background(), p.ID, SubmitBidInput{OrderID: orderID, Price: price})
	require.NoError(t, err)
	return b
}

func (h *harness) inbox(t *testing.T, p *auth.Principal) []models.Notification {
	t.Helper()
	list, err := h.notifications.List(context.Background(), p)
	require.NoError(t, err)
	return list
}

func pngUpload() *Upload {
	return &Upload{Filename: "rx.png", ContentType: "image/png", Body: bytes.NewReader(pngHeader)}
}
