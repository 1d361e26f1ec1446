package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"medilink/models"
)

// NotificationRepository stores in-app notifications. Rows are never deleted.
type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, sender_id, sender_type, receiver_id, receiver_type, type, message, is_read, created_at`

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if n == nil {
		return nil, errors.New("notification is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `INSERT INTO notifications (sender_id, sender_type, receiver_id, receiver_type, type, message) VALUES (?,?,?,?,?,?)`,
		n.SenderID, string(n.SenderType), n.ReceiverID, string(n.ReceiverType), string(n.Type), n.Message)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return scanNotification(r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id))
}

// GetByID fetches a notification. A missing one returns (nil, nil).
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanNotification(r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id))
}

// ListByReceiver returns the receiver's notifications, newest first.
func (r *NotificationRepository) ListByReceiver(ctx context.Context, receiverID int64, receiverType models.PrincipalType) ([]models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+notificationColumns+` FROM notifications
WHERE receiver_id = ? AND receiver_type = ?
ORDER BY created_at DESC, id DESC`, receiverID, string(receiverType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) CountUnread(ctx context.Context, receiverID int64, receiverType models.PrincipalType) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE receiver_id = ? AND receiver_type = ? AND is_read = 0`,
		receiverID, string(receiverType)).Scan(&count)
	return count, err
}

// MarkRead flags one notification as read. It returns ErrNotFound unless the
// notification exists and belongs to the receiver. Marking twice is harmless.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, receiverID int64, receiverType models.PrincipalType) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ? AND receiver_id = ? AND receiver_type = ?`,
		id, receiverID, string(receiverType))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of the receiver and returns how many changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, receiverID int64, receiverType models.PrincipalType) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE receiver_id = ? AND receiver_type = ? AND is_read = 0`,
		receiverID, string(receiverType))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var n models.Notification
	var senderType, receiverType, typ string
	var message sql.NullString
	err := row.Scan(&n.ID, &n.SenderID, &senderType, &n.ReceiverID, &receiverType, &typ, &message, &n.IsRead, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	n.SenderType = models.PrincipalType(senderType)
	n.ReceiverType = models.PrincipalType(receiverType)
	n.Type = models.NotificationType(typ)
	n.Message = message.String
	return &n, nil
}
