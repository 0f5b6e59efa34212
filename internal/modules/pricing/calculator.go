package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carrental/internal/domain"
	"carrental/internal/pkg/apperror"

	"gorm.io/gorm"
)

var (
	ErrVehicleNotFound  = apperror.NotFound("vehicle")
	ErrCoverageNotFound = apperror.NotFound("coverage package")
)

// Quote is a pricing request against the live catalog.
type Quote struct {
	VehicleID         int64
	Start             time.Time
	End               time.Time
	CoveragePackageID *int64
	AddOns            []AddOnSelection
	DeliveryFee       int64
}

type Calculator struct {
	defaults Defaults
	now      func() time.Time
}

func NewCalculator(defaults Defaults) *Calculator {
	return &Calculator{defaults: defaults, now: time.Now}
}

func (c *Calculator) Defaults() Defaults {
	return c.defaults
}

// Calculate loads the catalog through db (which may be an open transaction)
// and prices the quote. It never writes.
func (c *Calculator) Calculate(ctx context.Context, db *gorm.DB, q Quote) (domain.PriceBreakdown, error) {
	if q.End.Before(q.Start) {
		return domain.PriceBreakdown{}, apperror.Validation("end date must not be before start date")
	}
	if q.DeliveryFee < 0 {
		return domain.PriceBreakdown{}, apperror.Validation("delivery fee must not be negative")
	}
	if err := ValidateSelections(q.AddOns); err != nil {
		return domain.PriceBreakdown{}, err
	}

	db = db.WithContext(ctx)

	var vehicle domain.Vehicle
	if err := db.First(&vehicle, q.VehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PriceBreakdown{}, ErrVehicleNotFound
		}
		return domain.PriceBreakdown{}, fmt.Errorf("load vehicle: %w", err)
	}

	in := Inputs{
		Start:       q.Start,
		End:         q.End,
		Selections:  q.AddOns,
		DeliveryFee: q.DeliveryFee,
		Currency:    vehicle.Currency,
		At:          c.now().UTC(),
	}

	if err := db.Where("vehicle_id = ?", vehicle.ID).Find(&in.Plans).Error; err != nil {
		return domain.PriceBreakdown{}, fmt.Errorf("load rate plans: %w", err)
	}
	if err := db.Where("vehicle_id = ?", vehicle.ID).Find(&in.Legacy).Error; err != nil {
		return domain.PriceBreakdown{}, fmt.Errorf("load legacy tariffs: %w", err)
	}

	if q.CoveragePackageID != nil {
		var pkg domain.CoveragePackage
		if err := db.First(&pkg, *q.CoveragePackageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.PriceBreakdown{}, ErrCoverageNotFound
			}
			return domain.PriceBreakdown{}, fmt.Errorf("load coverage package: %w", err)
		}
		in.Coverage = &pkg
	}

	catalog, err := LoadAddOns(ctx, db, q.AddOns)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}
	in.Catalog = catalog

	b := Compute(in, c.defaults)
	b.VehicleID = vehicle.ID
	return b, nil
}

// LoadAddOns fetches the catalog rows referenced by the selections.
func LoadAddOns(ctx context.Context, db *gorm.DB, selections []AddOnSelection) (map[int64]domain.AddOn, error) {
	out := make(map[int64]domain.AddOn, len(selections))
	if len(selections) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(selections))
	for _, s := range selections {
		ids = append(ids, s.AddOnID)
	}

	var rows []domain.AddOn
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load add-ons: %w", err)
	}
	for _, a := range rows {
		out[a.ID] = a
	}
	return out, nil
}
