package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"medilink/internal/geo"
	"medilink/models"
)

// PharmacyRepository persists pharmacy accounts and their locations.
type PharmacyRepository struct {
	db *sql.DB
}

func NewPharmacyRepository(db *sql.DB) *PharmacyRepository {
	return &PharmacyRepository{db: db}
}

const pharmacyColumns = `id, pharmacy_name, owner_name, email, password_hash, phone, city, latitude, longitude, address, opening_hours, license_no, rating_avg, status, verified, created_at`

// Create inserts a pharmacy. A duplicate email returns ErrConflict.
func (r *PharmacyRepository) Create(ctx context.Context, p *models.Pharmacy) (*models.Pharmacy, error) {
	if p == nil {
		return nil, errors.New("pharmacy is nil")
	}
	if p.Status == "" {
		p.Status = models.AccountActive
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO pharmacies (pharmacy_name, owner_name, email, password_hash, phone, city, latitude, longitude, address, opening_hours, license_no, status, verified)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.Name, nullString(p.OwnerName), normalizeEmail(p.Email), p.PasswordHash, nullString(p.Phone), nullString(p.City),
		p.Latitude, p.Longitude, nullString(p.Address), nullString(p.OpeningHours), nullString(p.LicenseNo), string(p.Status), p.Verified)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	created, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("created pharmacy not found: id=%d", id)
	}
	return created, nil
}

func (r *PharmacyRepository) GetByID(ctx context.Context, id int64) (*models.Pharmacy, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanPharmacy(r.db.QueryRowContext(ctx, `SELECT `+pharmacyColumns+` FROM pharmacies WHERE id = ?`, id))
}

func (r *PharmacyRepository) GetByEmail(ctx context.Context, email string) (*models.Pharmacy, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanPharmacy(r.db.QueryRowContext(ctx, `SELECT `+pharmacyColumns+` FROM pharmacies WHERE email = ?`, normalizeEmail(email)))
}

// UpdateLocation sets the pharmacy coordinate. Returns ErrNotFound for an unknown id.
func (r *PharmacyRepository) UpdateLocation(ctx context.Context, id int64, at geo.Coordinate) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE pharmacies SET latitude = ?, longitude = ? WHERE id = ?`, at.Lat, at.Lng, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActiveLocated returns active pharmacies that have a coordinate, optionally
// restricted to box. Rows come back in id order.
func (r *PharmacyRepository) ListActiveLocated(ctx context.Context, box *geo.Box) ([]models.Pharmacy, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + pharmacyColumns + ` FROM pharmacies
WHERE status = 'active' AND latitude IS NOT NULL AND longitude IS NOT NULL`
	var args []any
	if box != nil {
		query += ` AND latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`
		args = append(args, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Pharmacy
	for rows.Next() {
		p, err := scanPharmacy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPharmacy(row rowScanner) (*models.Pharmacy, error) {
	var p models.Pharmacy
	var owner, phone, city, address, hours, license sql.NullString
	var lat, lng sql.NullFloat64
	var status string
	err := row.Scan(&p.ID, &p.Name, &owner, &p.Email, &p.PasswordHash, &phone, &city, &lat, &lng,
		&address, &hours, &license, &p.RatingAvg, &status, &p.Verified, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.OwnerName, p.Phone, p.City = owner.String, phone.String, city.String
	p.Address, p.OpeningHours, p.LicenseNo = address.String, hours.String, license.String
	p.Latitude = floatPtr(lat)
	p.Longitude = floatPtr(lng)
	p.Status = models.AccountStatus(status)
	return &p, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
