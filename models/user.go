package models

// AccountStatus gates login for both customers and pharmacies.
type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
)

// User represents a customer in the system.
// It maps to the `users` table in SQLite.
type User struct {
	ID           int64         `db:"id" json:"user_id"`
	FullName     string        `db:"full_name" json:"full_name"`
	Email        string        `db:"email" json:"email"`
	PasswordHash string        `db:"password_hash" json:"-"`
	Phone        string        `db:"phone" json:"phone,omitempty"`
	Address      string        `db:"address" json:"address,omitempty"`
	City         string        `db:"city" json:"city,omitempty"`
	Status       AccountStatus `db:"status" json:"status"`
	CreatedAt    string        `db:"created_at" json:"created_at"`
}
