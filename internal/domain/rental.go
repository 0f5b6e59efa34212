package domain

import (
	"time"

	"gorm.io/datatypes"
)

type RentalStatus string

const (
	RentalActive    RentalStatus = "active"
	RentalCompleted RentalStatus = "completed"
	RentalCancelled RentalStatus = "cancelled"
)

type Rental struct {
	ID        int64        `json:"id" gorm:"primaryKey"`
	VehicleID int64        `json:"vehicle_id" gorm:"not null;index"`
	ClientID  int64        `json:"client_id" gorm:"not null;index"`
	Status    RentalStatus `json:"status" gorm:"size:16;not null;index"`

	// At most one rental per reservation.
	ReservationID *int64 `json:"reservation_id,omitempty" gorm:"uniqueIndex:idx_rentals_reservation_id"`

	PickupDate       time.Time  `json:"pickup_date" gorm:"not null"`
	ReturnDate       time.Time  `json:"return_date" gorm:"not null"`
	ActualReturnDate *time.Time `json:"actual_return_date,omitempty"`

	PickupOdometer *int64 `json:"pickup_odometer,omitempty"`
	ReturnOdometer *int64 `json:"return_odometer,omitempty"`
	// AllowedMileage of 0 means unlimited.
	AllowedMileage int64  `json:"allowed_mileage"`
	ContractNumber string `json:"contract_number" gorm:"size:64;index"`

	PriceSnapshot     datatypes.JSONType[PriceBreakdown] `json:"price_snapshot"`
	DepositAmount     int64                              `json:"deposit_amount"`
	DepositCollected  bool                               `json:"deposit_collected" gorm:"not null"`
	DepositReturned   bool                               `json:"deposit_returned" gorm:"not null"`
	DepositReturnedAt *time.Time                         `json:"deposit_returned_at,omitempty"`

	CancelReason string     `json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	AddOns     []RentalAddOn `json:"add_ons,omitempty" gorm:"foreignKey:RentalID"`
	Extensions []Extension   `json:"extensions,omitempty" gorm:"foreignKey:RentalID"`
	Fines      []Fine        `json:"fines,omitempty" gorm:"foreignKey:RentalID"`
}

func (r *Rental) Blocks() bool {
	return r.Status == RentalActive
}

type RentalAddOn struct {
	ID          int64       `json:"id" gorm:"primaryKey"`
	RentalID    int64       `json:"rental_id" gorm:"not null;index"`
	AddOnID     int64       `json:"addon_id" gorm:"not null"`
	Name        string      `json:"name"`
	PricingMode PricingMode `json:"pricing_mode" gorm:"size:16"`
	Quantity    int         `json:"quantity"`
	UnitPrice   int64       `json:"unit_price"`
	Currency    string      `json:"currency" gorm:"size:3"`
	Total       int64       `json:"total"`
}

// Extension records one move of a rental's return date. The rental's own
// ReturnDate stays the canonical value.
type Extension struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	RentalID      int64     `json:"rental_id" gorm:"not null;index"`
	OldReturnDate time.Time `json:"old_return_date"`
	NewReturnDate time.Time `json:"new_return_date"`
	ExtraDays     int       `json:"extra_days"`
	Fee           int64     `json:"fee"`
	Currency      string    `json:"currency" gorm:"size:3"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
