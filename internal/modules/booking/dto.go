package booking

import (
	"time"

	"carrental/internal/domain"
	"carrental/internal/modules/client"
	"carrental/internal/modules/pricing"
)

type CreateRequestRequest struct {
	FullName       string    `json:"full_name" validate:"max=255"`
	Phone          string    `json:"phone" validate:"max=32"`
	Email          string    `json:"email" validate:"omitempty,email"`
	VehicleID      *int64    `json:"vehicle_id,omitempty" validate:"omitempty,gt=0"`
	PickupDate     time.Time `json:"pickup_date" binding:"required"`
	ReturnDate     time.Time `json:"return_date" binding:"required"`
	PickupLocation string    `json:"pickup_location"`
	ReturnLocation string    `json:"return_location"`
	Source         string    `json:"source" validate:"max=64"`
	Comment        string    `json:"comment"`
}

func (r CreateRequestRequest) Input() CreateRequestInput {
	return CreateRequestInput{
		FullName:       r.FullName,
		Phone:          r.Phone,
		Email:          r.Email,
		VehicleID:      r.VehicleID,
		PickupDate:     r.PickupDate,
		ReturnDate:     r.ReturnDate,
		PickupLocation: r.PickupLocation,
		ReturnLocation: r.ReturnLocation,
		Source:         r.Source,
		Comment:        r.Comment,
	}
}

type ApproveRequest struct {
	VehicleID         int64                    `json:"vehicle_id" binding:"required" validate:"gt=0"`
	PickupDate        time.Time                `json:"pickup_date" binding:"required"`
	ReturnDate        time.Time                `json:"return_date" binding:"required"`
	PickupLocation    string                   `json:"pickup_location"`
	ReturnLocation    string                   `json:"return_location"`
	CoveragePackageID *int64                   `json:"coverage_package_id,omitempty" validate:"omitempty,gt=0"`
	AddOns            []pricing.AddOnSelection `json:"add_ons,omitempty" validate:"omitempty,dive"`
	DeliveryFee       int64                    `json:"delivery_fee" validate:"gte=0"`
	PriceSnapshot     *domain.PriceBreakdown   `json:"price_snapshot,omitempty"`
}

func (r ApproveRequest) Input() ApproveInput {
	return ApproveInput{
		VehicleID:         r.VehicleID,
		PickupDate:        r.PickupDate,
		ReturnDate:        r.ReturnDate,
		PickupLocation:    r.PickupLocation,
		ReturnLocation:    r.ReturnLocation,
		CoveragePackageID: r.CoveragePackageID,
		AddOns:            r.AddOns,
		DeliveryFee:       r.DeliveryFee,
		PriceSnapshot:     r.PriceSnapshot,
	}
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type CreateReservationRequest struct {
	ClientID          *int64                   `json:"client_id,omitempty" validate:"omitempty,gt=0"`
	FullName          string                   `json:"full_name"`
	Phone             string                   `json:"phone"`
	Email             string                   `json:"email" validate:"omitempty,email"`
	LicenseNumber     string                   `json:"license_number"`
	LicenseExpiry     *time.Time               `json:"license_expiry,omitempty"`
	VehicleID         int64                    `json:"vehicle_id" binding:"required" validate:"gt=0"`
	PickupDate        time.Time                `json:"pickup_date" binding:"required"`
	ReturnDate        time.Time                `json:"return_date" binding:"required"`
	PickupLocation    string                   `json:"pickup_location"`
	ReturnLocation    string                   `json:"return_location"`
	CoveragePackageID *int64                   `json:"coverage_package_id,omitempty" validate:"omitempty,gt=0"`
	AddOns            []pricing.AddOnSelection `json:"add_ons,omitempty" validate:"omitempty,dive"`
	DeliveryFee       int64                    `json:"delivery_fee" validate:"gte=0"`
	PriceSnapshot     *domain.PriceBreakdown   `json:"price_snapshot,omitempty"`
}

func (r CreateReservationRequest) Input() CreateReservationInput {
	return CreateReservationInput{
		ClientID: r.ClientID,
		Contact: client.Contact{
			FullName:      r.FullName,
			Phone:         r.Phone,
			Email:         r.Email,
			LicenseNumber: r.LicenseNumber,
			LicenseExpiry: r.LicenseExpiry,
		},
		VehicleID:         r.VehicleID,
		PickupDate:        r.PickupDate,
		ReturnDate:        r.ReturnDate,
		PickupLocation:    r.PickupLocation,
		ReturnLocation:    r.ReturnLocation,
		CoveragePackageID: r.CoveragePackageID,
		AddOns:            r.AddOns,
		DeliveryFee:       r.DeliveryFee,
		PriceSnapshot:     r.PriceSnapshot,
	}
}

type UpdateDatesRequest struct {
	PickupDate time.Time `json:"pickup_date" binding:"required"`
	ReturnDate time.Time `json:"return_date" binding:"required"`
}

type PickupRequest struct {
	Odometer         *int64 `json:"odometer,omitempty" validate:"omitempty,gte=0"`
	ContractNumber   string `json:"contract_number" validate:"max=64"`
	DepositAccountID *int64 `json:"deposit_account_id,omitempty" validate:"omitempty,gt=0"`
}

type CompleteRequest struct {
	ReturnOdometer   *int64    `json:"return_odometer,omitempty" validate:"omitempty,gte=0"`
	ActualReturnDate time.Time `json:"actual_return_date"`
}

type CancelRentalRequest struct {
	Reason           string `json:"reason" binding:"required" validate:"max=500"`
	DepositAccountID *int64 `json:"deposit_account_id,omitempty" validate:"omitempty,gt=0"`
}

type ExtendRequest struct {
	NewReturnDate time.Time `json:"new_return_date" binding:"required"`
	Reason        string    `json:"reason" validate:"max=500"`
}
