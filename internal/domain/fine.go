package domain

import (
	"time"

	"github.com/google/uuid"
)

type FineKind string

const (
	FineOvermileage FineKind = "OVERMILEAGE"
	FineLateReturn  FineKind = "LATE_RETURN"
)

// Fine is raised when a rental completes. Once paid it is never hard-deleted:
// voiding zeroes the amount and keeps the ledger link.
type Fine struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	RentalID      int64      `json:"rental_id" gorm:"not null;index"`
	ClientID      int64      `json:"client_id" gorm:"not null;index"`
	Kind          FineKind   `json:"kind" gorm:"size:32;not null"`
	Quantity      int64      `json:"quantity"`
	UnitPrice     int64      `json:"unit_price"`
	Amount        int64      `json:"amount"`
	Currency      string     `json:"currency" gorm:"size:3"`
	Description   string     `json:"description"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty" gorm:"type:uuid;uniqueIndex"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	VoidedAt      *time.Time `json:"voided_at,omitempty"`
	VoidNote      string     `json:"void_note,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (f *Fine) IsPaid() bool {
	return f.TransactionID != nil
}
