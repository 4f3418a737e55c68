package purchases

import "time"

// Customer identifies the buyer. Every field is optional.
type Customer struct {
	Name    string `json:"name,omitempty" bson:"name,omitempty"`
	Place   string `json:"place,omitempty" bson:"place,omitempty"`
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty"`
	Address string `json:"address,omitempty" bson:"address,omitempty"`
}

// Purchase is an immutable checkout record. Products is a snapshot of the
// line items as the client sent them, whatever their shape.
type Purchase struct {
	ID       string    `json:"_id"`
	Customer Customer  `json:"customer"`
	Products []any     `json:"products"`
	Total    float64   `json:"total"`
	Date     time.Time `json:"date"`
}

// RecordInput describes a checkout. A nil Date is stamped with server time.
type RecordInput struct {
	Customer       Customer
	Products       []any
	Total          float64
	Date           *time.Time
	IdempotencyKey string
}
