package marketplace

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medilink/internal/apperrors"
	"medilink/internal/events"
	"medilink/internal/lock"
	"medilink/models"
)

func TestSubmitBid(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.customer(t, "c@x.test")
	p := h.pharmacy(t, "Shifa", nil)
	o := h.order(t, c, nil, 0)

	b, err := h.bidSvc.Submit(ctx, p.ID, SubmitBidInput{OrderID: o.ID, Price: 1250.499, Message: "available today"})
	require.NoError(t, err)
	assert.Equal(t, models.BidStatusPending, b.Status)
	assert.Equal(t, 1250.5, b.Price)

	order, _ := h.orders.GetByID(ctx, o.ID)
	assert.Equal(t, models.OrderStatusBidding, order.Status)

	inbox := h.inbox(t, c)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Shifa placed a bid of Rs. 1250.5", inbox[0].Message)
	assert.Equal(t, models.NotificationBid, inbox[0].Type)
	assert.Equal(t, models.PrincipalPharmacy, inbox[0].SenderType)

	_, err = h.bidSvc.Submit(ctx, p.ID, SubmitBidInput{OrderID: o.ID, Price: 1000})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateBid)
	assert.Equal(t, []events.Type{events.OrderCreated, events.BidSubmitted}, h.recorder.Types())
}

func TestSubmitBid_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.customer(t, "c@x.test")
	p := h.pharmacy(t, "p", nil)
	o := h.order(t, c, nil, 0)

	cases := []struct {
		name string
		in   SubmitBidInput
		want error
	}{
		{"missing order", SubmitBidInput{Price: 10}, apperrors.ErrBidFieldsRequired},
		{"missing price", SubmitBidInput{OrderID: o.ID}, apperrors.ErrBidFieldsRequired},
		{"negative price", SubmitBidInput{OrderID: o.ID, Price: -5}, apperrors.ErrInvalidPrice},
		{"rounds to zero", SubmitBidInput{OrderID: o.ID, Price: 0.001}, apperrors.ErrInvalidPrice},
		{"long message", SubmitBidInput{OrderID: o.ID, Price: 10, Message: strings.Repeat("x", 256)}, apperrors.ErrBidMessageTooLong},
		{"unknown order", SubmitBidInput{OrderID: 999, Price: 10}, apperrors.ErrOrderNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.bidSvc.Submit(ctx, p.ID, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	order, _ := h.orders.GetByID(ctx, o.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status, "rejected submissions leave the order pending")
}

func TestSubmitBid_OutsideRadiusIsAllowed(t *testing.T) {
	h := newHarness(t)
	c := h.customer(t, "c@x.test")
	o := h.order(t, c, &karachi, 1)
	farAway := h.pharmacy(t, "far", &far)

	_, err := h.bidSvc.Submit(context.Background(), farAway.ID, SubmitBidInput{OrderID: o.ID, Price: 10})
	assert.NoError(t, err)
}

func TestAcceptBid_SingleWinner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.customer(t, "c@x.test")
	other := h.customer(t, "other@x.test")
	p1 := h.pharmacy(t, "p1", nil)
	p2 := h.pharmacy(t, "p2", nil)
	o := h.order(t, c, nil, 0)
	b1 := h.bid(t, p1, o.ID, 500)
	b2 := h.bid(t, p2, o.ID, 450)

	_, err := h.bidSvc.Accept(ctx, other.ID, b2.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotOrderOwner)
	_, err = h.bidSvc.Accept(ctx, c.ID, 999)
	assert.ErrorIs(t, err, apperrors.ErrBidNotFound)

	accepted, err := h.bidSvc.Accept(ctx, c.ID, b2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BidStatusAccepted, accepted.Status)

	order, _ := h.orders.GetByID(ctx, o.ID)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	loser, _ := h.bids.GetByID(ctx, b1.ID)
	assert.Equal(t, models.BidStatusRejected, loser.Status)

	winnerInbox := h.inbox(t, p2)
	require.Len(t, winnerInbox, 1)
	assert.Equal(t, "Your bid has been accepted! Customer will visit soon.", winnerInbox[0].Message)
	assert.Empty(t, h.inbox(t, p1), "losing siblings are rejected silently")

	_, err = h.bidSvc.Accept(ctx, c.ID, b1.ID)
	assert.ErrorIs(t, err, apperrors.ErrBidNoLongerAvailable)
	_, err = h.bidSvc.Accept(ctx, c.ID, b2.ID)
	assert.ErrorIs(t, err, apperrors.ErrBidNoLongerAvailable)

	p3 := h.pharmacy(t, "p3", nil)
	_, err = h.bidSvc.Submit(ctx, p3.ID, SubmitBidInput{OrderID: o.ID, Price: 1})
	assert.ErrorIs(t, err, apperrors.ErrCannotBid)
}

func TestAcceptBid_ConcurrentAcceptsOneWins(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.customer(t, "c@x.test")
	o := h.order(t, c, nil, 0)

	var ids []int64
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		ids = append(ids, h.bid(t, h.pharmacy(t, name, nil), o.ID, 100).ID)
	}

	var wg sync.WaitGroup
	results := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			_, results[i] = h.bidSvc.Accept(ctx, c.ID, id)
		}(i, id)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrBidNoLongerAvailable)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestAcceptBid_LockTimeoutIsConflict(t *testing.T) {
	locker := lock.NewLocalLocker()
	h := newHarness(t, withLocker(locker))
	c := h.customer(t, "c@x.test")
	p := h.pharmacy(t, "near", &near)
	o := h.order(t, c, &karachi, 5)
	b := h.bid(t, p, o.ID, 100)

	release, err := locker.Lock(context.Background(), orderLockKey(o.ID))
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = h.bidSvc.Accept(ctx, c.ID, b.ID)
	assert.ErrorIs(t, err, apperrors.ErrOrderBusy)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.HTTPCode)

	got, err := h.bids.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BidStatusPending, got.Status)
}

func TestRejectBid(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.customer(t, "c@x.test")
	other := h.customer(t, "other@x.test")
	p1 := h.pharmacy(t, "p1", nil)
	p2 := h.pharmacy(t, "p2", nil)
	o := h.order(t, c, nil, 0)
	b1 := h.bid(t, p1, o.ID, 500)
	b2 := h.bid(t, p2, o.ID, 450)

	_, err := h.bidSvc.Reject(ctx, other.ID, b1.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotOrderOwner)

	rejected, err := h.bidSvc.Reject(ctx, c.ID, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BidStatusRejected, rejected.Status)

	_, err = h.bidSvc.Reject(ctx, c.ID, b1.ID)
	require.NoError(t, err)
	inbox := h.inbox(t, p1)
	require.Len(t, inbox, 1, "repeat rejection sends nothing")
	assert.Equal(t, "Your bid was rejected.", inbox[0].Message)

	order, _ := h.orders.GetByID(ctx, o.ID)
	assert.Equal(t, models.OrderStatusBidding, order.Status)
	sibling, _ := h.bids.GetByID(ctx, b2.ID)
	assert.Equal(t, models.BidStatusPending, sibling.Status)

	_, err = h.bidSvc.Accept(ctx, c.ID, b2.ID)
	require.NoError(t, err)
	_, err = h.bidSvc.Reject(ctx, c.ID, b2.ID)
	assert.ErrorIs(t, err, apperrors.ErrCannotRejectAccepted)
}

func TestListBids(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.customer(t, "c@x.test")
	p1 := h.pharmacy(t, "p1", nil)
	p2 := h.pharmacy(t, "p2", nil)
	o1 := h.order(t, c, nil, 0)
	o2 := h.order(t, c, nil, 0)
	h.bid(t, p1, o1.ID, 300)
	h.bid(t, p2, o1.ID, 200)
	h.bid(t, p1, o2.ID, 100)

	forOrder, err := h.orderSvc.ListBids(ctx, c, o1.ID)
	require.NoError(t, err)
	require.Len(t, forOrder, 2)
	assert.Equal(t, "p2", forOrder[0].PharmacyName)
	assert.Equal(t, 200.0, forOrder[0].Price)

	byPharmacy, err := h.bidSvc.ListForPharmacy(ctx, p1.ID)
	require.NoError(t, err)
	require.Len(t, byPharmacy, 2)
	assert.Equal(t, o2.ID, byPharmacy[0].OrderID)
}
