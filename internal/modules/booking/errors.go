package booking

import (
	"carrental/internal/domain"
	"carrental/internal/pkg/apperror"
)

const (
	CodeVehicleInactive = "VEHICLE_INACTIVE"
	CodeEarlyPickup     = "EARLY_PICKUP"
	CodeLicenseExpired  = "LICENSE_EXPIRED"
)

var (
	ErrRequestNotFound     = apperror.NotFound("rental request")
	ErrReservationNotFound = apperror.NotFound("reservation")
	ErrRentalNotFound      = apperror.NotFound("rental")
	ErrVehicleNotFound     = apperror.NotFound("vehicle")
	ErrClientNotFound      = apperror.NotFound("client")

	ErrInvalidDates     = apperror.Validation("return date must be after pickup date")
	ErrMissingVehicle   = apperror.Validation("vehicle_id is required")
	ErrMissingContact   = apperror.Validation("phone or email is required")
	ErrExtendNotLater   = apperror.Validation("new return date must be after the current return date")
	ErrOdometerBackward = apperror.Validation("return odometer must not be below pickup odometer")
	ErrNegativeFee      = apperror.Validation("delivery fee must not be negative")

	ErrVehicleInactive = apperror.New(CodeVehicleInactive, "vehicle is not active")

	ErrAlreadyApproved         = apperror.New(apperror.CodeInvalidTransition, "rental request is already approved")
	ErrRequestClosed           = apperror.New(apperror.CodeInvalidTransition, "rental request is no longer open")
	ErrReservationNotConfirmed = apperror.New(apperror.CodeInvalidTransition, "reservation is not confirmed")
	ErrAlreadyPickedUp         = apperror.New(apperror.CodeInvalidTransition, "reservation has already been picked up")
	ErrCannotReactivate        = apperror.New(apperror.CodeInvalidTransition, "only cancelled or no-show reservations can be reactivated")
	ErrRentalNotActive         = apperror.New(apperror.CodeInvalidTransition, "rental is not active")

	ErrEarlyPickup    = apperror.New(CodeEarlyPickup, "pickup is not allowed before the reservation pickup date")
	ErrLicenseExpired = apperror.New(CodeLicenseExpired, "client driving licence has expired")

	ErrConcurrentUpdate = apperror.Conflict("the vehicle timeline changed concurrently, please retry")
)

func blockedError(c *domain.Client) error {
	if c.BlockReason == "" {
		return apperror.New(apperror.CodeBlocked, "client is blocked")
	}
	return apperror.Newf(apperror.CodeBlocked, "client is blocked: %s", c.BlockReason).
		WithDetails(map[string]any{"client_id": c.ID, "reason": c.BlockReason})
}
