package models

import "medilink/internal/geo"

// OrderStatus represents the current progress of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusBidding   OrderStatus = "bidding"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsOpen reports whether the order still accepts bids, acceptance and cancellation.
func (s OrderStatus) IsOpen() bool {
	return s == OrderStatusPending || s == OrderStatusBidding
}

// OpenOrderStatuses lists the non-terminal states.
var OpenOrderStatuses = []OrderStatus{OrderStatusPending, OrderStatusBidding}

// Order represents a prescription request with a many-to-one relation to User via UserID.
type Order struct {
	ID          int64       `db:"id" json:"order_id"`
	UserID      int64       `db:"user_id" json:"user_id"`
	ImageURL    string      `db:"image_url" json:"image_url"`
	Description string      `db:"description" json:"description,omitempty"`
	RadiusKm    float64     `db:"radius_km" json:"radius_km"`
	Status      OrderStatus `db:"status" json:"status"`
	CreatedAt   string      `db:"created_at" json:"created_at"`
	// Coordinates are nullable in DB; orders without them never enter matching.
	Latitude  *float64 `db:"latitude" json:"latitude"`
	Longitude *float64 `db:"longitude" json:"longitude"`
}

// Location returns the stored coordinate, or false when the order was created without one.
func (o *Order) Location() (geo.Coordinate, bool) {
	if o == nil || o.Latitude == nil || o.Longitude == nil {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Lat: *o.Latitude, Lng: *o.Longitude}, true
}
