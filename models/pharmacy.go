package models

import "medilink/internal/geo"

// Pharmacy represents a seller that receives fanout and submits bids.
// Latitude/Longitude are nullable until the pharmacy completes location setup.
type Pharmacy struct {
	ID           int64         `db:"id" json:"pharmacy_id"`
	Name         string        `db:"pharmacy_name" json:"pharmacy_name"`
	OwnerName    string        `db:"owner_name" json:"owner_name,omitempty"`
	Email        string        `db:"email" json:"email"`
	PasswordHash string        `db:"password_hash" json:"-"`
	Phone        string        `db:"phone" json:"phone,omitempty"`
	City         string        `db:"city" json:"city,omitempty"`
	Latitude     *float64      `db:"latitude" json:"latitude"`
	Longitude    *float64      `db:"longitude" json:"longitude"`
	Address      string        `db:"address" json:"address,omitempty"`
	OpeningHours string        `db:"opening_hours" json:"opening_hours,omitempty"`
	LicenseNo    string        `db:"license_no" json:"license_no,omitempty"`
	RatingAvg    float64       `db:"rating_avg" json:"rating_avg"`
	Status       AccountStatus `db:"status" json:"status"`
	Verified     bool          `db:"verified" json:"verified"`
	CreatedAt    string        `db:"created_at" json:"created_at"`
}

// Location returns the stored coordinate, or false when location setup is incomplete.
func (p *Pharmacy) Location() (geo.Coordinate, bool) {
	if p == nil || p.Latitude == nil || p.Longitude == nil {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Lat: *p.Latitude, Lng: *p.Longitude}, true
}
