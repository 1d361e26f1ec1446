// Package matching ranks pharmacies and orders by great-circle distance.
// Callers may pre-filter rows (for example with geo.BoundingBox); these functions apply the exact test.
package matching

import (
	"sort"

	"medilink/internal/geo"
	"medilink/models"
)

// PharmacyMatch is a candidate pharmacy with its distance from the order.
type PharmacyMatch struct {
	Pharmacy   models.Pharmacy `json:"pharmacy"`
	DistanceKm float64         `json:"distance_km"`
}

// OrderMatch is an open order with its distance from the pharmacy.
type OrderMatch struct {
	models.Order
	DistanceKm float64 `json:"distance_km"`
}

// PharmaciesNear returns every active, located pharmacy within radiusKm of origin,
// nearest first. Ties keep input order.
func PharmaciesNear(origin geo.Coordinate, radiusKm float64, pharmacies []models.Pharmacy) []PharmacyMatch {
	out := make([]PharmacyMatch, 0, len(pharmacies))
	for _, p := range pharmacies {
		if p.Status != models.AccountActive {
			continue
		}
		loc, ok := p.Location()
		if !ok {
			continue
		}
		if !geo.IsWithinRadiusKm(origin, loc, radiusKm) {
			continue
		}
		out = append(out, PharmacyMatch{Pharmacy: p, DistanceKm: geo.HaversineKm(origin, loc)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

// OrdersNear returns the open, located orders whose own radius reaches the pharmacy,
// newest first. A pharmacy without a location matches nothing.
func OrdersNear(pharmacy models.Pharmacy, orders []models.Order) []OrderMatch {
	at, ok := pharmacy.Location()
	if !ok {
		return []OrderMatch{}
	}
	out := make([]OrderMatch, 0, len(orders))
	for _, o := range orders {
		if !o.Status.IsOpen() {
			continue
		}
		loc, ok := o.Location()
		if !ok {
			continue
		}
		if !geo.IsWithinRadiusKm(at, loc, o.RadiusKm) {
			continue
		}
		out = append(out, OrderMatch{Order: o, DistanceKm: geo.HaversineKm(at, loc)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID > out[j].ID
	})
	return out
}
