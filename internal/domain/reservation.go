package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationPickedUp  ReservationStatus = "picked_up"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationNoShow    ReservationStatus = "no_show"
)

type Reservation struct {
	ID        int64             `json:"id" gorm:"primaryKey"`
	VehicleID int64             `json:"vehicle_id" gorm:"not null;index"`
	ClientID  int64             `json:"client_id" gorm:"not null;index"`
	RequestID *int64            `json:"request_id,omitempty" gorm:"index"`
	Status    ReservationStatus `json:"status" gorm:"size:16;not null;index"`

	PickupDate     time.Time `json:"pickup_date" gorm:"not null"`
	ReturnDate     time.Time `json:"return_date" gorm:"not null"`
	PickupLocation string    `json:"pickup_location"`
	ReturnLocation string    `json:"return_location"`

	CoveragePackageID *int64                             `json:"coverage_package_id,omitempty"`
	DeliveryFee       int64                              `json:"delivery_fee"`
	PriceSnapshot     datatypes.JSONType[PriceBreakdown] `json:"price_snapshot"`

	CancelReason string     `json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	PickedUpAt   *time.Time `json:"picked_up_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	AddOns []ReservationAddOn `json:"add_ons,omitempty" gorm:"foreignKey:ReservationID"`
}

// Blocks reports whether the reservation holds the vehicle. A picked-up
// reservation is represented by its rental instead.
func (r *Reservation) Blocks() bool {
	return r.Status == ReservationConfirmed
}

type ReservationAddOn struct {
	ID            int64       `json:"id" gorm:"primaryKey"`
	ReservationID int64       `json:"reservation_id" gorm:"not null;index"`
	AddOnID       int64       `json:"addon_id" gorm:"not null"`
	Name          string      `json:"name"`
	PricingMode   PricingMode `json:"pricing_mode" gorm:"size:16"`
	Quantity      int         `json:"quantity"`
	UnitPrice     int64       `json:"unit_price"`
	Currency      string      `json:"currency" gorm:"size:3"`
	Total         int64       `json:"total"`
}

func (a ReservationAddOn) Line() AddOnLine {
	return AddOnLine{
		AddOnID:     a.AddOnID,
		Name:        a.Name,
		PricingMode: a.PricingMode,
		Quantity:    a.Quantity,
		UnitPrice:   a.UnitPrice,
		Currency:    a.Currency,
		Total:       a.Total,
	}
}
