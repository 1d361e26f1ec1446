package repository

import (
	"context"
	"database/sql"
	"time"

	"medilink/internal/geo"
	"medilink/models"
)

// ListByUserID returns all orders for a user, newest first.
func (r *OrderRepository) ListByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderRows(rows)
}

// ListOpenLocated returns pending and bidding orders that carry a coordinate, newest first.
// When box is set only orders inside it are returned; the exact radius test is left to the caller.
func (r *OrderRepository) ListOpenLocated(ctx context.Context, box *geo.Box) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders
WHERE status IN ` + openStatusList + ` AND latitude IS NOT NULL AND longitude IS NOT NULL`
	var args []any
	if box != nil {
		query += ` AND latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`
		args = append(args, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderRows(rows)
}

// MaxOpenRadiusKm returns the largest radius among open located orders, or 0 when there are none.
// It sizes the bounding box for a pharmacy's candidate search.
func (r *OrderRepository) MaxOpenRadiusKm(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var v sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `SELECT MAX(radius_km) FROM orders
WHERE status IN `+openStatusList+` AND latitude IS NOT NULL AND longitude IS NOT NULL`).Scan(&v)
	if err != nil {
		return 0, err
	}
	return v.Float64, nil
}
