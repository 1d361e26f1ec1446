package models

// PrincipalType identifies which table a notification sender/receiver id points into.
type PrincipalType string

const (
	PrincipalUser     PrincipalType = "user"
	PrincipalPharmacy PrincipalType = "pharmacy"
)

// NotificationType is the category of a notification.
type NotificationType string

const (
	NotificationOrder NotificationType = "order"
	NotificationBid   NotificationType = "bid"
)

// Notification is a fire-and-forget message between two principals.
// Sender and receiver are weak references (id + type); there is no foreign key.
type Notification struct {
	ID           int64            `db:"id" json:"notification_id"`
	SenderID     int64            `db:"sender_id" json:"sender_id"`
	SenderType   PrincipalType    `db:"sender_type" json:"sender_type"`
	ReceiverID   int64            `db:"receiver_id" json:"receiver_id"`
	ReceiverType PrincipalType    `db:"receiver_type" json:"receiver_type"`
	Type         NotificationType `db:"type" json:"type"`
	Message      string           `db:"message" json:"message"`
	IsRead       bool             `db:"is_read" json:"is_read"`
	CreatedAt    string           `db:"created_at" json:"created_at"`
}
