package domain

import (
	"time"

	"gorm.io/datatypes"
)

type RequestStatus string

const (
	RequestNew       RequestStatus = "new"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// RentalRequest is an inbound lead or walk-in that has not been allocated a
// vehicle yet.
type RentalRequest struct {
	ID             int64         `json:"id" gorm:"primaryKey"`
	Status         RequestStatus `json:"status" gorm:"size:16;not null;index"`
	FullName       string        `json:"full_name"`
	Phone          string        `json:"phone"`
	Email          string        `json:"email"`
	VehicleID      *int64        `json:"vehicle_id,omitempty"`
	PickupDate     time.Time     `json:"pickup_date"`
	ReturnDate     time.Time     `json:"return_date"`
	PickupLocation string        `json:"pickup_location"`
	ReturnLocation string        `json:"return_location"`
	Source         string        `json:"source,omitempty"`
	Comment        string        `json:"comment,omitempty" gorm:"type:text"`

	// QuotedPrice is the breakdown shown to the lead when the request was made.
	QuotedPrice datatypes.JSON `json:"quoted_price,omitempty"`

	ClientID        *int64     `json:"client_id,omitempty"`
	ReservationID   *int64     `json:"reservation_id,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
