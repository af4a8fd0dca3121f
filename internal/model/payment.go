package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus enumerates payment record states.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusRejected  PaymentStatus = "rejected"
)

// Payment is a recorded purchase of direction access. Processing happens in
// an external collaborator; the engine only reads confirmation status.
type Payment struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	DirectionID   uuid.UUID     `json:"direction_id"`
	Amount        int           `json:"amount"`
	Status        PaymentStatus `json:"status"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	TransactionID string        `json:"transaction_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
