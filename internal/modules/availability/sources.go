package availability

import (
	"context"
	"fmt"

	"carrental/internal/domain"

	"gorm.io/gorm"
)

// Source yields the blocking allocations of one kind that overlap a window.
type Source interface {
	Kind() Kind
	Overlapping(ctx context.Context, tx *gorm.DB, vehicleID int64, window Interval, ex Exclusions) ([]Conflict, error)
}

// DefaultSources are the three record kinds that hold a vehicle.
func DefaultSources() []Source {
	return []Source{reservationSource{}, rentalSource{}, serviceEventSource{}}
}

// overlapScope applies the half-open overlap predicate in SQL. endCol may be
// NULL for open-ended rows; an open-ended window only bounds the start.
func overlapScope(startCol, endCol string, window Interval) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if window.End != nil {
			db = db.Where(startCol+" < ?", *window.End)
		}
		return db.Where("("+endCol+" IS NULL OR "+endCol+" > ?)", window.Start)
	}
}

type reservationSource struct{}

func (reservationSource) Kind() Kind { return KindReservation }

func (reservationSource) Overlapping(ctx context.Context, tx *gorm.DB, vehicleID int64, window Interval, ex Exclusions) ([]Conflict, error) {
	q := tx.WithContext(ctx).
		Model(&domain.Reservation{}).
		Where("vehicle_id = ? AND status = ?", vehicleID, domain.ReservationConfirmed).
		Scopes(overlapScope("pickup_date", "return_date", window))
	if ex.ReservationID != 0 {
		q = q.Where("id <> ?", ex.ReservationID)
	}

	var rows []domain.Reservation
	if err := q.Order("pickup_date").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}

	out := make([]Conflict, 0, len(rows))
	for _, r := range rows {
		end := r.ReturnDate
		out = append(out, Conflict{
			Kind:     KindReservation,
			SourceID: r.ID,
			Start:    r.PickupDate,
			End:      &end,
			Status:   string(r.Status),
			Label:    fmt.Sprintf("reservation #%d", r.ID),
		})
	}
	return out, nil
}

type rentalSource struct{}

func (rentalSource) Kind() Kind { return KindRental }

func (rentalSource) Overlapping(ctx context.Context, tx *gorm.DB, vehicleID int64, window Interval, ex Exclusions) ([]Conflict, error) {
	q := tx.WithContext(ctx).
		Model(&domain.Rental{}).
		Where("vehicle_id = ? AND status = ?", vehicleID, domain.RentalActive).
		Scopes(overlapScope("pickup_date", "return_date", window))
	if ex.RentalID != 0 {
		q = q.Where("id <> ?", ex.RentalID)
	}

	var rows []domain.Rental
	if err := q.Order("pickup_date").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query rentals: %w", err)
	}

	out := make([]Conflict, 0, len(rows))
	for _, r := range rows {
		end := r.ReturnDate
		label := fmt.Sprintf("rental #%d", r.ID)
		if r.ContractNumber != "" {
			label = fmt.Sprintf("rental #%d (contract %s)", r.ID, r.ContractNumber)
		}
		out = append(out, Conflict{
			Kind:     KindRental,
			SourceID: r.ID,
			Start:    r.PickupDate,
			End:      &end,
			Status:   string(r.Status),
			Label:    label,
		})
	}
	return out, nil
}

type serviceEventSource struct{}

func (serviceEventSource) Kind() Kind { return KindServiceEvent }

func (serviceEventSource) Overlapping(ctx context.Context, tx *gorm.DB, vehicleID int64, window Interval, _ Exclusions) ([]Conflict, error) {
	q := tx.WithContext(ctx).
		Model(&domain.ServiceEvent{}).
		Where("vehicle_id = ? AND blocks_booking = ?", vehicleID, true).
		Scopes(overlapScope("start_date", "end_date", window))

	var rows []domain.ServiceEvent
	if err := q.Order("start_date").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query service events: %w", err)
	}

	out := make([]Conflict, 0, len(rows))
	for _, e := range rows {
		out = append(out, Conflict{
			Kind:     KindServiceEvent,
			SourceID: e.ID,
			Start:    e.StartDate,
			End:      e.EndDate,
			Status:   e.Status,
			Label:    e.Title,
		})
	}
	return out, nil
}
