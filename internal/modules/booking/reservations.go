package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carrental/internal/domain"
	"carrental/internal/modules/availability"
	"carrental/internal/modules/client"
	"carrental/internal/modules/pricing"

	"gorm.io/gorm"
)

type CreateReservationInput struct {
	ClientID          *int64
	Contact           client.Contact
	VehicleID         int64
	PickupDate        time.Time
	ReturnDate        time.Time
	PickupLocation    string
	ReturnLocation    string
	CoveragePackageID *int64
	AddOns            []pricing.AddOnSelection
	DeliveryFee       int64
	PriceSnapshot     *domain.PriceBreakdown
}

// CreateReservation books a vehicle directly, without a preceding request.
func (s *Service) CreateReservation(ctx context.Context, in CreateReservationInput) (*domain.Reservation, error) {
	if in.VehicleID <= 0 {
		return nil, ErrMissingVehicle
	}
	if in.DeliveryFee < 0 {
		return nil, ErrNegativeFee
	}
	start, end := in.PickupDate.UTC(), in.ReturnDate.UTC()
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	var res *domain.Reservation
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.lockActiveVehicle(tx, in.VehicleID); err != nil {
			return err
		}
		if err := s.requireFree(ctx, tx, in.VehicleID, start, end, noExclusions); err != nil {
			return err
		}

		var cl *domain.Client
		var err error
		if in.ClientID != nil {
			cl, err = s.loadClient(tx, *in.ClientID)
		} else {
			cl, _, err = s.clients.Resolve(ctx, tx, in.Contact)
		}
		if err != nil {
			return err
		}
		if cl.IsBlocked {
			return blockedError(cl)
		}

		snapshot, err := s.snapshotFor(ctx, tx, in.PriceSnapshot, nil, pricing.Quote{
			VehicleID:         in.VehicleID,
			Start:             start,
			End:               end,
			CoveragePackageID: in.CoveragePackageID,
			AddOns:            in.AddOns,
			DeliveryFee:       in.DeliveryFee,
		})
		if err != nil {
			return err
		}

		res = &domain.Reservation{
			VehicleID:         in.VehicleID,
			ClientID:          cl.ID,
			Status:            domain.ReservationConfirmed,
			PickupDate:        start,
			ReturnDate:        end,
			PickupLocation:    in.PickupLocation,
			ReturnLocation:    in.ReturnLocation,
			CoveragePackageID: snapshot.CoveragePackageID,
			DeliveryFee:       snapshot.DeliveryFee,
			PriceSnapshot:     snapshotColumn(snapshot),
			AddOns:            reservationAddOns(snapshot.AddOns),
		}
		if err := tx.Create(res).Error; err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "reservation.created", "reservation", res.ID, map[string]any{
		"vehicle_id": res.VehicleID,
		"client_id":  res.ClientID,
	})
	return res, nil
}

func (s *Service) GetReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := s.db.WithContext(ctx).Preload("AddOns").First(&res, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// UpdateReservationDates moves a confirmed reservation. PER_DAY add-ons follow
// the new day count and the snapshot is repriced at its captured daily rate.
func (s *Service) UpdateReservationDates(ctx context.Context, id int64, pickup, ret time.Time) (*domain.Reservation, error) {
	start, end := pickup.UTC(), ret.UTC()
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	var res *domain.Reservation
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		res, err = lockRow[domain.Reservation](tx, id, ErrReservationNotFound)
		if err != nil {
			return err
		}
		if res.Status != domain.ReservationConfirmed {
			return ErrReservationNotConfirmed
		}

		if _, err := s.lockActiveVehicle(tx, res.VehicleID); err != nil {
			return err
		}
		if err := s.requireFree(ctx, tx, res.VehicleID, start, end, availability.Exclusions{ReservationID: res.ID}); err != nil {
			return err
		}

		days := pricing.TotalDays(start, end)

		var lines []domain.ReservationAddOn
		if err := tx.Where("reservation_id = ?", res.ID).Order("id").Find(&lines).Error; err != nil {
			return fmt.Errorf("load reservation add-ons: %w", err)
		}
		for i := range lines {
			if lines[i].PricingMode != domain.PricingPerDay {
				continue
			}
			lines[i].Quantity = days
			lines[i].Total = lines[i].UnitPrice * int64(days)
			if err := tx.Model(&lines[i]).Updates(map[string]any{
				"quantity": lines[i].Quantity,
				"total":    lines[i].Total,
			}).Error; err != nil {
				return fmt.Errorf("update reservation add-on: %w", err)
			}
		}

		snapshot := res.PriceSnapshot.Data()
		if !snapshot.IsEmpty() {
			snapshot = pricing.Reprice(snapshot, days)
		}

		res.PickupDate = start
		res.ReturnDate = end
		res.PriceSnapshot = snapshotColumn(snapshot)
		res.AddOns = lines
		if err := tx.Model(res).Updates(map[string]any{
			"pickup_date":    start,
			"return_date":    end,
			"price_snapshot": res.PriceSnapshot,
		}).Error; err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "reservation.rescheduled", "reservation", res.ID, map[string]any{
		"pickup_date": start,
		"return_date": end,
	})
	return res, nil
}

// CancelReservation releases a confirmed reservation.
func (s *Service) CancelReservation(ctx context.Context, id int64, reason string) (*domain.Reservation, error) {
	return s.release(ctx, id, domain.ReservationCancelled, reason)
}

// MarkNoShow releases a confirmed reservation whose renter never came.
func (s *Service) MarkNoShow(ctx context.Context, id int64) (*domain.Reservation, error) {
	return s.release(ctx, id, domain.ReservationNoShow, "no show")
}

func (s *Service) release(ctx context.Context, id int64, status domain.ReservationStatus, reason string) (*domain.Reservation, error) {
	var res *domain.Reservation
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		res, err = lockRow[domain.Reservation](tx, id, ErrReservationNotFound)
		if err != nil {
			return err
		}
		switch res.Status {
		case domain.ReservationConfirmed:
		case domain.ReservationPickedUp:
			return ErrAlreadyPickedUp
		default:
			return ErrReservationNotConfirmed
		}

		now := s.clock()
		if err := tx.Model(res).Updates(map[string]any{
			"status":        status,
			"cancel_reason": reason,
			"cancelled_at":  now,
		}).Error; err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}
		res.Status = status
		res.CancelReason = reason
		res.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "reservation."+string(status), "reservation", res.ID, map[string]any{"reason": reason})
	return res, nil
}

// Reactivate restores a cancelled or no-show reservation to confirmed if its
// original dates are still free. Any other status is refused untouched.
func (s *Service) Reactivate(ctx context.Context, id int64) (*domain.Reservation, error) {
	var res *domain.Reservation
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		res, err = lockRow[domain.Reservation](tx, id, ErrReservationNotFound)
		if err != nil {
			return err
		}
		if res.Status != domain.ReservationNoShow && res.Status != domain.ReservationCancelled {
			return ErrCannotReactivate
		}

		if _, err := s.lockActiveVehicle(tx, res.VehicleID); err != nil {
			return err
		}
		if err := s.requireFree(ctx, tx, res.VehicleID, res.PickupDate, res.ReturnDate, availability.Exclusions{ReservationID: res.ID}); err != nil {
			return err
		}

		if err := tx.Model(res).Updates(map[string]any{
			"status":        domain.ReservationConfirmed,
			"cancel_reason": "",
			"cancelled_at":  nil,
		}).Error; err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}
		res.Status = domain.ReservationConfirmed
		res.CancelReason = ""
		res.CancelledAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "reservation.reactivated", "reservation", res.ID, nil)
	return res, nil
}

// OverdueReservations lists confirmed reservations whose pickup date is
// before cutoff.
func (s *Service) OverdueReservations(ctx context.Context, cutoff time.Time) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Where("status = ? AND pickup_date < ?", domain.ReservationConfirmed, cutoff.UTC()).
		Order("pickup_date").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list overdue reservations: %w", err)
	}
	return ids, nil
}
