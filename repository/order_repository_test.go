package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medilink/internal/geo"
	"medilink/internal/testutil"
	"medilink/models"
)

func TestOrderRepository_CreateDefaults(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "a@x.test")

	o := f.order(t, u.ID, nil, nil)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.Equal(t, geo.DefaultRadiusKm, o.RadiusKm)
	assert.Nil(t, o.Latitude)
	_, ok := o.Location()
	assert.False(t, ok)

	got, err := f.orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o, got)
}

func TestOrderRepository_ListByUserID_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@x.test")
	other := f.user(t, "b@x.test")

	o1 := f.order(t, u.ID, nil, nil)
	o2 := f.order(t, u.ID, nil, nil)
	f.order(t, other.ID, nil, nil)

	list, err := f.orders.ListByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, o2.ID, list[0].ID)
	assert.Equal(t, o1.ID, list[1].ID)
}

func TestOrderRepository_Cancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@x.test")
	o := f.order(t, u.ID, nil, nil)

	require.NoError(t, f.orders.Cancel(ctx, o.ID))
	got, _ := f.orders.GetByID(ctx, o.ID)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	assert.ErrorIs(t, f.orders.Cancel(ctx, o.ID), ErrOrderClosed)
	assert.ErrorIs(t, f.orders.Cancel(ctx, 777), ErrNotFound)
}

func TestOrderRepository_ListOpenLocated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@x.test")

	near := f.order(t, u.ID, testutil.Ptr(24.87), testutil.Ptr(67.02))
	f.order(t, u.ID, nil, nil)
	f.order(t, u.ID, testutil.Ptr(31.52), testutil.Ptr(74.35))
	closed := f.order(t, u.ID, testutil.Ptr(24.87), testutil.Ptr(67.02))
	require.NoError(t, f.orders.Cancel(ctx, closed.ID))

	all, err := f.orders.ListOpenLocated(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	box := geo.BoundingBox(geo.Coordinate{Lat: 24.86, Lng: 67.01}, 10)
	inBox, err := f.orders.ListOpenLocated(ctx, &box)
	require.NoError(t, err)
	require.Len(t, inBox, 1)
	assert.Equal(t, near.ID, inBox[0].ID)
}

func TestOrderRepository_MaxOpenRadiusKm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.orders.MaxOpenRadiusKm(ctx)
	require.NoError(t, err)
	assert.Zero(t, r)

	u := f.user(t, "a@x.test")
	_, err = f.orders.Create(ctx, &models.Order{UserID: u.ID, ImageURL: "i", RadiusKm: 12.5, Latitude: testutil.Ptr(1.0), Longitude: testutil.Ptr(1.0)})
	require.NoError(t, err)
	_, err = f.orders.Create(ctx, &models.Order{UserID: u.ID, ImageURL: "i", RadiusKm: 80})
	require.NoError(t, err)

	r, err = f.orders.MaxOpenRadiusKm(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12.5, r)
}

func TestOpenStatusList_FollowsOpenStatuses(t *testing.T) {
	assert.Equal(t, "('pending','bidding')", openStatusList)
}
