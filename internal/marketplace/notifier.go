package marketplace

import (
	"context"
	"fmt"
	"strconv"

	"medilink/internal/events"
	"medilink/internal/logger"
	"medilink/internal/matching"
	"medilink/models"
	"medilink/repository"
)

const (
	msgBidAccepted = "Your bid has been accepted! Customer will visit soon."
	msgBidRejected = "Your bid was rejected."
)

// Notifier delivers in-app notifications and marketplace events. Delivery is best
// effort: failures are logged and never surface to the action that triggered them.
type Notifier struct {
	repo   repository.NotificationRepositoryI
	events events.Publisher
	log    *logger.Logger
}

func NewNotifier(repo repository.NotificationRepositoryI, pub events.Publisher, log *logger.Logger) *Notifier {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Notifier{repo: repo, events: pub, log: log}
}

// OrderCreated notifies every matched pharmacy and returns how many notifications were stored.
func (n *Notifier) OrderCreated(ctx context.Context, order *models.Order, matches []matching.PharmacyMatch) int {
	msg := fmt.Sprintf("New prescription request within %skm of your location", formatAmount(order.RadiusKm))
	sent := 0
	for _, m := range matches {
		if n.store(ctx, models.Notification{
			SenderID: order.UserID, SenderType: models.PrincipalUser,
			ReceiverID: m.Pharmacy.ID, ReceiverType: models.PrincipalPharmacy,
			Type: models.NotificationOrder, Message: msg,
		}) {
			sent++
		}
	}
	n.publish(ctx, events.Event{Type: events.OrderCreated, OrderID: order.ID, UserID: order.UserID})
	if len(matches) > 0 {
		n.log.Infof("FANOUT", "order %d: notified %d/%d pharmacies", order.ID, sent, len(matches))
	}
	return sent
}

// BidSubmitted tells the order owner about a new bid.
func (n *Notifier) BidSubmitted(ctx context.Context, order *models.Order, bid *models.Bid, pharmacyName string) {
	n.store(ctx, models.Notification{
		SenderID: bid.PharmacyID, SenderType: models.PrincipalPharmacy,
		ReceiverID: order.UserID, ReceiverType: models.PrincipalUser,
		Type:    models.NotificationBid,
		Message: fmt.Sprintf("%s placed a bid of Rs. %s", pharmacyName, formatAmount(bid.Price)),
	})
	n.publish(ctx, events.Event{Type: events.BidSubmitted, OrderID: order.ID, BidID: bid.ID, UserID: order.UserID, PharmacyID: bid.PharmacyID, Price: bid.Price})
}

// BidAccepted tells the winning pharmacy.
func (n *Notifier) BidAccepted(ctx context.Context, order *models.Order, bid *models.Bid) {
	n.store(ctx, models.Notification{
		SenderID: order.UserID, SenderType: models.PrincipalUser,
		ReceiverID: bid.PharmacyID, ReceiverType: models.PrincipalPharmacy,
		Type: models.NotificationBid, Message: msgBidAccepted,
	})
	n.publish(ctx, events.Event{Type: events.BidAccepted, OrderID: order.ID, BidID: bid.ID, UserID: order.UserID, PharmacyID: bid.PharmacyID, Price: bid.Price})
}

// BidRejected tells the pharmacy whose bid was turned down.
func (n *Notifier) BidRejected(ctx context.Context, order *models.Order, bid *models.Bid) {
	n.store(ctx, models.Notification{
		SenderID: order.UserID, SenderType: models.PrincipalUser,
		ReceiverID: bid.PharmacyID, ReceiverType: models.PrincipalPharmacy,
		Type: models.NotificationBid, Message: msgBidRejected,
	})
	n.publish(ctx, events.Event{Type: events.BidRejected, OrderID: order.ID, BidID: bid.ID, UserID: order.UserID, PharmacyID: bid.PharmacyID})
}

// OrderCancelled only emits an event; nobody is notified in-app.
func (n *Notifier) OrderCancelled(ctx context.Context, order *models.Order) {
	n.publish(ctx, events.Event{Type: events.OrderCancelled, OrderID: order.ID, UserID: order.UserID})
}

func (n *Notifier) store(ctx context.Context, note models.Notification) bool {
	if _, err := n.repo.Create(ctx, &note); err != nil {
		n.log.Errorf("FANOUT", "notify %s %d failed: %v", note.ReceiverType, note.ReceiverID, err)
		return false
	}
	return true
}

func (n *Notifier) publish(ctx context.Context, e events.Event) {
	if err := n.events.Publish(ctx, e); err != nil {
		n.log.Warnf("FANOUT", "publish %s for order %d failed: %v", e.Type, e.OrderID, err)
	}
}

// formatAmount prints 5 as "5" and 12.5 as "12.5".
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
