package pricing

import "time"

type CalculateRequest struct {
	VehicleID         int64            `json:"vehicle_id" binding:"required" validate:"gt=0"`
	StartDate         time.Time        `json:"start_date" binding:"required"`
	EndDate           time.Time        `json:"end_date" binding:"required"`
	CoveragePackageID *int64           `json:"coverage_package_id,omitempty" validate:"omitempty,gt=0"`
	AddOns            []AddOnSelection `json:"add_ons,omitempty" validate:"omitempty,dive"`
	DeliveryFee       int64            `json:"delivery_fee" validate:"gte=0"`
}

func (r CalculateRequest) Quote() Quote {
	return Quote{
		VehicleID:         r.VehicleID,
		Start:             r.StartDate.UTC(),
		End:               r.EndDate.UTC(),
		CoveragePackageID: r.CoveragePackageID,
		AddOns:            r.AddOns,
		DeliveryFee:       r.DeliveryFee,
	}
}
