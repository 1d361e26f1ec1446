package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medilink/internal/geo"
	"medilink/internal/testutil"
	"medilink/models"
)

var karachi = geo.Coordinate{Lat: 24.86, Lng: 67.01}

func pharmacy(id int64, lat, lng *float64, status models.AccountStatus) models.Pharmacy {
	return models.Pharmacy{ID: id, Name: "P", Latitude: lat, Longitude: lng, Status: status}
}

func order(id int64, lat, lng float64, radius float64, status models.OrderStatus, created string) models.Order {
	return models.Order{ID: id, Latitude: testutil.Ptr(lat), Longitude: testutil.Ptr(lng), RadiusKm: radius, Status: status, CreatedAt: created}
}

func TestPharmaciesNear_FiltersAndSorts(t *testing.T) {
	ps := []models.Pharmacy{
		pharmacy(1, testutil.Ptr(24.90), testutil.Ptr(67.05), models.AccountActive),     // ~6 km
		pharmacy(2, testutil.Ptr(24.87), testutil.Ptr(67.02), models.AccountActive),     // ~1.5 km
		pharmacy(3, nil, nil, models.AccountActive),                                     // no location
		pharmacy(4, testutil.Ptr(24.861), testutil.Ptr(67.011), models.AccountInactive), // inactive
	}

	got := PharmaciesNear(karachi, 5, ps)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].Pharmacy.ID)
	assert.InDelta(t, 1.5, got[0].DistanceKm, 0.2)

	got = PharmaciesNear(karachi, 10, ps)
	require.Len(t, got, 2)
	assert.Equal(t, []int64{2, 1}, []int64{got[0].Pharmacy.ID, got[1].Pharmacy.ID})
}

func TestPharmaciesNear_StableTies(t *testing.T) {
	ps := []models.Pharmacy{
		pharmacy(9, testutil.Ptr(24.87), testutil.Ptr(67.02), models.AccountActive),
		pharmacy(3, testutil.Ptr(24.87), testutil.Ptr(67.02), models.AccountActive),
	}
	got := PharmaciesNear(karachi, 5, ps)
	require.Len(t, got, 2)
	assert.Equal(t, int64(9), got[0].Pharmacy.ID)
	assert.Equal(t, int64(3), got[1].Pharmacy.ID)
}

func TestPharmaciesNear_ZeroRadiusMatchesOnlySamePoint(t *testing.T) {
	ps := []models.Pharmacy{
		pharmacy(1, testutil.Ptr(karachi.Lat), testutil.Ptr(karachi.Lng), models.AccountActive),
		pharmacy(2, testutil.Ptr(24.87), testutil.Ptr(67.02), models.AccountActive),
	}
	got := PharmaciesNear(karachi, 0, ps)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].Pharmacy.ID)
}

func TestOrdersNear_UsesEachOrdersRadius(t *testing.T) {
	ph := pharmacy(1, testutil.Ptr(karachi.Lat), testutil.Ptr(karachi.Lng), models.AccountActive)
	orders := []models.Order{
		order(1, 24.90, 67.05, 5, models.OrderStatusPending, "2025-01-01 10:00:00"),   // ~6 km, radius 5: out
		order(2, 24.90, 67.05, 10, models.OrderStatusBidding, "2025-01-01 11:00:00"),  // ~6 km, radius 10: in
		order(3, 24.87, 67.02, 5, models.OrderStatusPending, "2025-01-01 12:00:00"),   // ~1.5 km: in
		order(4, 24.87, 67.02, 5, models.OrderStatusCompleted, "2025-01-01 13:00:00"), // closed
		order(5, 24.87, 67.02, 5, models.OrderStatusPending, "2025-01-01 12:00:00"),   // same time as 3, higher id
	}
	orders = append(orders, models.Order{ID: 6, RadiusKm: 50, Status: models.OrderStatusPending, CreatedAt: "2025-01-02 00:00:00"})

	got := OrdersNear(ph, orders)
	ids := make([]int64, len(got))
	for i, m := range got {
		ids[i] = m.ID
	}
	assert.Equal(t, []int64{5, 3, 2}, ids)
}

func TestOrdersNear_UnlocatedPharmacy(t *testing.T) {
	got := OrdersNear(pharmacy(1, nil, nil, models.AccountActive), []models.Order{
		order(1, 24.87, 67.02, 5, models.OrderStatusPending, "2025-01-01 12:00:00"),
	})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
