package availability

import (
	"context"
	"time"

	"carrental/internal/pkg/apperror"

	"gorm.io/gorm"
)

var ErrInvalidRange = apperror.Validation("return date must be after pickup date")

// Detector decides whether a vehicle is free over a window by consulting
// every blocking source.
type Detector struct {
	sources []Source
}

func NewDetector(sources ...Source) *Detector {
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	return &Detector{sources: sources}
}

// Check is read-only. Callers that write afterwards must pass the handle of
// their own open transaction so that the check and the write commit together.
func (d *Detector) Check(ctx context.Context, tx *gorm.DB, vehicleID int64, start, end time.Time, ex Exclusions) (*Result, error) {
	window := Closed(start.UTC(), end.UTC())
	if !window.Valid() {
		return nil, ErrInvalidRange
	}
	return d.CheckInterval(ctx, tx, vehicleID, window, ex)
}

func (d *Detector) CheckInterval(ctx context.Context, tx *gorm.DB, vehicleID int64, window Interval, ex Exclusions) (*Result, error) {
	res := &Result{Conflicts: []Conflict{}}
	for _, src := range d.sources {
		found, err := src.Overlapping(ctx, tx, vehicleID, window, ex)
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			// the SQL scope and the predicate must agree; keep only true overlaps
			if window.Overlaps(c.Interval()) {
				res.Conflicts = append(res.Conflicts, c)
			}
		}
	}
	res.Available = len(res.Conflicts) == 0
	return res, nil
}

// Require fails with an allocation conflict when the vehicle is not free.
func (d *Detector) Require(ctx context.Context, tx *gorm.DB, vehicleID int64, start, end time.Time, ex Exclusions) error {
	res, err := d.Check(ctx, tx, vehicleID, start, end, ex)
	if err != nil {
		return err
	}
	if !res.Available {
		return ConflictError(res.Conflicts)
	}
	return nil
}
