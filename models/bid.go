package models

// BidStatus represents the decision state of a bid.
type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusAccepted BidStatus = "accepted"
	BidStatusRejected BidStatus = "rejected"
)

// Bid is a pharmacy's price offer against one order.
type Bid struct {
	ID         int64     `db:"id" json:"bid_id"`
	OrderID    int64     `db:"order_id" json:"order_id"`
	PharmacyID int64     `db:"pharmacy_id" json:"pharmacy_id"`
	Price      float64   `db:"price" json:"price"`
	Message    string    `db:"message" json:"message,omitempty"`
	Status     BidStatus `db:"status" json:"status"`
	CreatedAt  string    `db:"created_at" json:"created_at"`
}

// OrderBid is a bid as the order owner sees it, with the bidding pharmacy's details.
type OrderBid struct {
	Bid
	PharmacyName    string  `json:"pharmacy_name"`
	PharmacyPhone   string  `json:"pharmacy_phone,omitempty"`
	PharmacyAddress string  `json:"pharmacy_address,omitempty"`
	PharmacyRating  float64 `json:"pharmacy_rating"`
}

// PharmacyBid is a bid as the pharmacy sees it, with the order it was placed on.
type PharmacyBid struct {
	Bid
	OrderImage       string      `json:"order_image"`
	OrderDescription string      `json:"order_description,omitempty"`
	OrderStatus      OrderStatus `json:"order_status"`
}
