package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"medilink/internal/db"
	"medilink/models"
)

// BidRepository is the bid ledger. Every transition that touches both a bid and its
// order runs in one transaction guarded by a compare-and-set on the order status.
type BidRepository struct {
	db *sql.DB
}

func NewBidRepository(db *sql.DB) *BidRepository {
	return &BidRepository{db: db}
}

const bidColumns = `id, order_id, pharmacy_id, price, message, status, created_at`

// Submit records a pending bid and moves its order to 'bidding'.
// Returns ErrNotFound for an unknown order, ErrOrderClosed when the order is completed or
// cancelled and ErrConflict when the pharmacy already bid on the order.
func (r *BidRepository) Submit(ctx context.Context, b *models.Bid) (*models.Bid, error) {
	if b == nil {
		return nil, errors.New("bid is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var id int64
	err := db.InTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE orders SET status = 'bidding' WHERE id = ? AND status IN `+openStatusList, b.OrderID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return orderMissOrClosed(ctx, tx, b.OrderID)
		}
		res, err = tx.ExecContext(ctx, `INSERT INTO bids (order_id, pharmacy_id, price, message, status) VALUES (?,?,?,?,'pending')`,
			b.OrderID, b.PharmacyID, b.Price, nullString(b.Message))
		if err != nil {
			if isUniqueViolation(err) {
				return ErrConflict
			}
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	created, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("created bid not found: id=%d", id)
	}
	return created, nil
}

// GetByID fetches a bid. A missing bid returns (nil, nil).
func (r *BidRepository) GetByID(ctx context.Context, id int64) (*models.Bid, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanBid(r.db.QueryRowContext(ctx, `SELECT `+bidColumns+` FROM bids WHERE id = ?`, id))
}

// Accept completes the bid's order, accepts the bid and rejects every sibling, all or nothing.
// Returns ErrNotFound, ErrBidClosed when the bid is not pending, or ErrOrderClosed when the
// order already left pending/bidding (for example another bid won first).
func (r *BidRepository) Accept(ctx context.Context, id int64) (*models.Bid, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := db.InTx(ctx, r.db, func(tx *sql.Tx) error {
		b, err := scanBid(tx.QueryRowContext(ctx, `SELECT `+bidColumns+` FROM bids WHERE id = ?`, id))
		if err != nil {
			return err
		}
		if b == nil {
			return ErrNotFound
		}
		if b.Status != models.BidStatusPending {
			return ErrBidClosed
		}
		res, err := tx.ExecContext(ctx, `UPDATE orders SET status = 'completed' WHERE id = ? AND status IN `+openStatusList, b.OrderID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return orderMissOrClosed(ctx, tx, b.OrderID)
		}
		res, err = tx.ExecContext(ctx, `UPDATE bids SET status = 'accepted' WHERE id = ? AND status = 'pending'`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrBidClosed
		}
		_, err = tx.ExecContext(ctx, `UPDATE bids SET status = 'rejected' WHERE order_id = ? AND id <> ?`, b.OrderID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Reject marks a single pending bid rejected. Rejecting an already rejected bid is a no-op
// reported by changed=false; rejecting an accepted bid returns ErrBidClosed.
// Siblings and the order are never touched.
func (r *BidRepository) Reject(ctx context.Context, id int64) (*models.Bid, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	changed := false
	err := db.InTx(ctx, r.db, func(tx *sql.Tx) error {
		b, err := scanBid(tx.QueryRowContext(ctx, `SELECT `+bidColumns+` FROM bids WHERE id = ?`, id))
		if err != nil {
			return err
		}
		if b == nil {
			return ErrNotFound
		}
		switch b.Status {
		case models.BidStatusRejected:
			return nil
		case models.BidStatusAccepted:
			return ErrBidClosed
		}
		if _, err := tx.ExecContext(ctx, `UPDATE bids SET status = 'rejected' WHERE id = ? AND status = 'pending'`, id); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	b, err := r.GetByID(ctx, id)
	return b, changed, err
}

// ListByOrder returns an order's bids with pharmacy details, cheapest first (ties by id).
func (r *BidRepository) ListByOrder(ctx context.Context, orderID int64) ([]models.OrderBid, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `
SELECT b.id, b.order_id, b.pharmacy_id, b.price, b.message, b.status, b.created_at,
       p.pharmacy_name, p.phone, p.address, p.rating_avg
FROM bids b
JOIN pharmacies p ON p.id = b.pharmacy_id
WHERE b.order_id = ?
ORDER BY b.price ASC, b.id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.OrderBid{}
	for rows.Next() {
		var ob models.OrderBid
		var message, phone, address sql.NullString
		var status string
		if err := rows.Scan(&ob.ID, &ob.OrderID, &ob.PharmacyID, &ob.Price, &message, &status, &ob.CreatedAt,
			&ob.PharmacyName, &phone, &address, &ob.PharmacyRating); err != nil {
			return nil, err
		}
		ob.Message = message.String
		ob.Status = models.BidStatus(status)
		ob.PharmacyPhone, ob.PharmacyAddress = phone.String, address.String
		out = append(out, ob)
	}
	return out, rows.Err()
}

// ListByPharmacy returns a pharmacy's bids with their orders, newest first.
func (r *BidRepository) ListByPharmacy(ctx context.Context, pharmacyID int64) ([]models.PharmacyBid, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `
SELECT b.id, b.order_id, b.pharmacy_id, b.price, b.message, b.status, b.created_at,
       o.image_url, o.description, o.status
FROM bids b
JOIN orders o ON o.id = b.order_id
WHERE b.pharmacy_id = ?
ORDER BY b.created_at DESC, b.id DESC`, pharmacyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PharmacyBid{}
	for rows.Next() {
		var pb models.PharmacyBid
		var message, description sql.NullString
		var status, orderStatus string
		if err := rows.Scan(&pb.ID, &pb.OrderID, &pb.PharmacyID, &pb.Price, &message, &status, &pb.CreatedAt,
			&pb.OrderImage, &description, &orderStatus); err != nil {
			return nil, err
		}
		pb.Message = message.String
		pb.Status = models.BidStatus(status)
		pb.OrderDescription = description.String
		pb.OrderStatus = models.OrderStatus(orderStatus)
		out = append(out, pb)
	}
	return out, rows.Err()
}

func scanBid(row rowScanner) (*models.Bid, error) {
	var b models.Bid
	var message sql.NullString
	var status string
	err := row.Scan(&b.ID, &b.OrderID, &b.PharmacyID, &b.Price, &message, &status, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	b.Message = message.String
	b.Status = models.BidStatus(status)
	return &b, nil
}
