package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"medilink/internal/geo"
	"medilink/models"
)

// OrderRepository is the core repository for Order entities.
// It handles basic CRUD operations and the cancel transition.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, user_id, image_url, description, radius_km, latitude, longitude, status, created_at`

// openStatusList renders models.OpenOrderStatuses as a SQL list, e.g. ('pending','bidding').
var openStatusList = func() string {
	quoted := make([]string, len(models.OpenOrderStatuses))
	for i, st := range models.OpenOrderStatuses {
		quoted[i] = "'" + string(st) + "'"
	}
	return "(" + strings.Join(quoted, ",") + ")"
}()

// Create inserts a new order. Status defaults to 'pending' and radius to geo.DefaultRadiusKm.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	if o == nil {
		return nil, errors.New("order is nil")
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	if o.RadiusKm <= 0 {
		o.RadiusKm = geo.DefaultRadiusKm
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO orders (user_id, image_url, description, radius_km, latitude, longitude, status) VALUES (?,?,?,?,?,?,?)`,
		o.UserID, o.ImageURL, nullString(o.Description), o.RadiusKm, o.Latitude, o.Longitude, string(o.Status))
	if err != nil {
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
		return nil, fmt.Errorf("created order not found: id=%d", id)
	}
	return created, nil
}

// GetByID fetches an order by its ID. A missing order returns (nil, nil).
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
}

// Cancel moves an open order to 'cancelled'. Returns ErrNotFound for an unknown id
// and ErrOrderClosed when the order is already completed or cancelled.
func (r *OrderRepository) Cancel(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = 'cancelled' WHERE id = ? AND status IN `+openStatusList, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	return orderMissOrClosed(ctx, r.db, id)
}

// orderMissOrClosed explains a compare-and-set that matched no rows.
func orderMissOrClosed(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, id int64) error {
	var status string
	err := q.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrOrderClosed
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var description sql.NullString
	var lat, lng sql.NullFloat64
	var status string
	err := row.Scan(&o.ID, &o.UserID, &o.ImageURL, &description, &o.RadiusKm, &lat, &lng, &status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Description = description.String
	o.Latitude = floatPtr(lat)
	o.Longitude = floatPtr(lng)
	o.Status = models.OrderStatus(status)
	return &o, nil
}

func scanOrderRows(rows *sql.Rows) ([]models.Order, error) {
	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
