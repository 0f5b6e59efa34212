package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrental/internal/domain"
	"carrental/internal/modules/availability"
	"carrental/internal/modules/ledger"
	"carrental/internal/modules/pricing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PickupInput struct {
	Odometer         *int64
	ContractNumber   string
	DepositAccountID *int64
}

type PickupResult struct {
	Reservation *domain.Reservation `json:"reservation"`
	Rental      *domain.Rental      `json:"rental"`
	Warnings    []string            `json:"warnings"`
}

// Pickup hands the vehicle over: the reservation becomes picked_up and an
// active rental carrying its snapshot and add-ons takes its place.
func (s *Service) Pickup(ctx context.Context, reservationID int64, in PickupInput) (*PickupResult, error) {
	if in.Odometer != nil && *in.Odometer < 0 {
		return nil, ErrOdometerBackward
	}

	out := PickupResult{Warnings: []string{}}
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		res, err := lockRow[domain.Reservation](tx, reservationID, ErrReservationNotFound)
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

		var existing int64
		if err := tx.Model(&domain.Rental{}).Where("reservation_id = ?", res.ID).Count(&existing).Error; err != nil {
			return fmt.Errorf("check existing rental: %w", err)
		}
		if existing > 0 {
			return ErrAlreadyPickedUp
		}

		cl, err := s.loadClient(tx, res.ClientID)
		if err != nil {
			return err
		}
		if cl.IsBlocked {
			return blockedError(cl)
		}

		now := s.clock()
		if cl.LicenseExpiry != nil {
			switch {
			case cl.LicenseExpiry.Before(now):
				return ErrLicenseExpired
			case cl.LicenseExpiry.Before(res.ReturnDate):
				out.Warnings = append(out.Warnings, fmt.Sprintf(
					"client driving licence expires on %s, before the return date %s",
					cl.LicenseExpiry.UTC().Format("2006-01-02"), res.ReturnDate.UTC().Format("2006-01-02")))
			}
		}

		if startOfDay(now).Before(startOfDay(res.PickupDate)) {
			return ErrEarlyPickup
		}

		vehicle, err := s.lockActiveVehicle(tx, res.VehicleID)
		if err != nil {
			return err
		}
		if err := s.requireFree(ctx, tx, res.VehicleID, res.PickupDate, res.ReturnDate, availability.Exclusions{ReservationID: res.ID}); err != nil {
			return err
		}

		var lines []domain.ReservationAddOn
		if err := tx.Where("reservation_id = ?", res.ID).Order("id").Find(&lines).Error; err != nil {
			return fmt.Errorf("load reservation add-ons: %w", err)
		}
		res.AddOns = lines

		snapshot := res.PriceSnapshot.Data()
		if snapshot.IsEmpty() {
			snapshot, err = s.pricing.Calculate(ctx, tx, pricing.Quote{
				VehicleID:         res.VehicleID,
				Start:             res.PickupDate,
				End:               res.ReturnDate,
				CoveragePackageID: res.CoveragePackageID,
				AddOns:            selectionsFrom(lines),
				DeliveryFee:       res.DeliveryFee,
			})
			if err != nil {
				return err
			}
		}

		contract := strings.TrimSpace(in.ContractNumber)
		if contract == "" {
			contract = newContractNumber(now)
		}

		resID := res.ID
		rental := &domain.Rental{
			VehicleID:      res.VehicleID,
			ClientID:       res.ClientID,
			Status:         domain.RentalActive,
			ReservationID:  &resID,
			PickupDate:     res.PickupDate,
			ReturnDate:     res.ReturnDate,
			PickupOdometer: in.Odometer,
			AllowedMileage: vehicle.DailyMileageLimit * int64(snapshot.TotalDays),
			ContractNumber: contract,
			PriceSnapshot:  snapshotColumn(snapshot),
			DepositAmount:  snapshot.DepositAmount,
			AddOns:         rentalAddOns(lines),
		}
		collect := in.DepositAccountID != nil && snapshot.DepositAmount > 0
		rental.DepositCollected = collect
		if err := tx.Create(rental).Error; err != nil {
			return fmt.Errorf("create rental: %w", err)
		}

		if collect {
			if _, err := s.ledger.Record(ctx, tx, ledger.Entry{
				AccountID:   *in.DepositAccountID,
				Direction:   domain.DirectionIn,
				Category:    domain.CategoryDepositIn,
				Amount:      snapshot.DepositAmount,
				Currency:    snapshot.Currency,
				RentalID:    &rental.ID,
				Description: "deposit for contract " + contract,
			}); err != nil {
				return err
			}
		}

		if err := tx.Model(res).Updates(map[string]any{
			"status":       domain.ReservationPickedUp,
			"picked_up_at": now,
		}).Error; err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}
		res.Status = domain.ReservationPickedUp
		res.PickedUpAt = &now

		out.Reservation = res
		out.Rental = rental
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "reservation.picked_up", "reservation", reservationID, map[string]any{
		"rental_id":       out.Rental.ID,
		"contract_number": out.Rental.ContractNumber,
	})
	return &out, nil
}

type CompleteInput struct {
	ReturnOdometer   *int64
	ActualReturnDate time.Time
}

type CompleteResult struct {
	Rental          *domain.Rental `json:"rental"`
	OvermileageFine *domain.Fine   `json:"overmileage_fine"`
	LateReturnFine  *domain.Fine   `json:"late_return_fine"`
}

// Complete closes an active rental. Overmileage and late return are judged
// independently, so zero, one or two fines may be raised. A fine that would
// come to 0 because no per-km or daily rate is set is not raised.
func (s *Service) Complete(ctx context.Context, rentalID int64, in CompleteInput) (*CompleteResult, error) {
	actual := in.ActualReturnDate.UTC()
	if in.ActualReturnDate.IsZero() {
		actual = s.clock()
	}

	var out CompleteResult
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		rental, err := lockRow[domain.Rental](tx, rentalID, ErrRentalNotFound)
		if err != nil {
			return err
		}
		if rental.Status != domain.RentalActive {
			return ErrRentalNotActive
		}
		if actual.Before(rental.PickupDate) {
			return ErrInvalidDates
		}

		snapshot := rental.PriceSnapshot.Data()
		currency := snapshot.Currency

		if in.ReturnOdometer != nil && rental.PickupOdometer != nil {
			driven := *in.ReturnOdometer - *rental.PickupOdometer
			if driven < 0 {
				return ErrOdometerBackward
			}
			if over := driven - rental.AllowedMileage; rental.AllowedMileage > 0 && over > 0 {
				var vehicle domain.Vehicle
				if err := tx.First(&vehicle, rental.VehicleID).Error; err != nil {
					return fmt.Errorf("load vehicle: %w", err)
				}
				if fee := over * vehicle.OvermileageRatePerKm; fee > 0 {
					fine := &domain.Fine{
						RentalID:    rental.ID,
						ClientID:    rental.ClientID,
						Kind:        domain.FineOvermileage,
						Quantity:    over,
						UnitPrice:   vehicle.OvermileageRatePerKm,
						Amount:      fee,
						Currency:    firstNonEmpty(currency, vehicle.Currency),
						Description: fmt.Sprintf("%d km over the allowed %d km", over, rental.AllowedMileage),
					}
					if err := tx.Create(fine).Error; err != nil {
						return fmt.Errorf("create overmileage fine: %w", err)
					}
					out.OvermileageFine = fine
				}
			}
		}

		if actual.After(rental.ReturnDate) && snapshot.DailyRate > 0 {
			lateDays := int64(pricing.CeilDays(actual.Sub(rental.ReturnDate)))
			fine := &domain.Fine{
				RentalID:    rental.ID,
				ClientID:    rental.ClientID,
				Kind:        domain.FineLateReturn,
				Quantity:    lateDays,
				UnitPrice:   snapshot.DailyRate,
				Amount:      lateDays * snapshot.DailyRate,
				Currency:    currency,
				Description: fmt.Sprintf("returned %d day(s) late", lateDays),
			}
			if err := tx.Create(fine).Error; err != nil {
				return fmt.Errorf("create late return fine: %w", err)
			}
			out.LateReturnFine = fine
		}

		now := s.clock()
		updates := map[string]any{
			"status":             domain.RentalCompleted,
			"actual_return_date": actual,
			"completed_at":       now,
		}
		if in.ReturnOdometer != nil {
			updates["return_odometer"] = *in.ReturnOdometer
		}
		if err := tx.Model(rental).Updates(updates).Error; err != nil {
			return fmt.Errorf("update rental: %w", err)
		}
		rental.Status = domain.RentalCompleted
		rental.ActualReturnDate = &actual
		rental.CompletedAt = &now
		rental.ReturnOdometer = in.ReturnOdometer

		out.Rental = rental
		return nil
	})
	if err != nil {
		return nil, err
	}

	payload := map[string]any{}
	if out.OvermileageFine != nil {
		payload["overmileage_fine_id"] = out.OvermileageFine.ID
	}
	if out.LateReturnFine != nil {
		payload["late_return_fine_id"] = out.LateReturnFine.ID
	}
	s.record(ctx, "rental.completed", "rental", rentalID, payload)
	return &out, nil
}

type CancelRentalInput struct {
	Reason           string
	DepositAccountID *int64
}

// CancelRental ends an active rental early. A collected deposit is marked
// returned; the outbound ledger movement is written only when a settlement
// account is given.
func (s *Service) CancelRental(ctx context.Context, rentalID int64, in CancelRentalInput) (*domain.Rental, error) {
	var rental *domain.Rental
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		rental, err = lockRow[domain.Rental](tx, rentalID, ErrRentalNotFound)
		if err != nil {
			return err
		}
		if rental.Status != domain.RentalActive {
			return ErrRentalNotActive
		}

		now := s.clock()
		updates := map[string]any{
			"status":        domain.RentalCancelled,
			"cancel_reason": in.Reason,
			"cancelled_at":  now,
		}

		if rental.DepositCollected && !rental.DepositReturned {
			updates["deposit_returned"] = true
			updates["deposit_returned_at"] = now
			rental.DepositReturned = true
			rental.DepositReturnedAt = &now

			if in.DepositAccountID != nil && rental.DepositAmount > 0 {
				if _, err := s.ledger.Record(ctx, tx, ledger.Entry{
					AccountID:   *in.DepositAccountID,
					Direction:   domain.DirectionOut,
					Category:    domain.CategoryDepositReturn,
					Amount:      rental.DepositAmount,
					Currency:    rental.PriceSnapshot.Data().Currency,
					RentalID:    &rental.ID,
					Description: "deposit return for contract " + rental.ContractNumber,
				}); err != nil {
					return err
				}
			}
		}

		if err := tx.Model(rental).Updates(updates).Error; err != nil {
			return fmt.Errorf("update rental: %w", err)
		}
		rental.Status = domain.RentalCancelled
		rental.CancelReason = in.Reason
		rental.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "rental.cancelled", "rental", rentalID, map[string]any{
		"reason":           in.Reason,
		"deposit_returned": rental.DepositReturned,
	})
	return rental, nil
}

type ExtendInput struct {
	NewReturnDate time.Time
	Reason        string
}

// Extend moves an active rental's return date later. Only the added range
// [current return, new return) is checked against other allocations.
func (s *Service) Extend(ctx context.Context, rentalID int64, in ExtendInput) (*domain.Rental, *domain.Extension, error) {
	newReturn := in.NewReturnDate.UTC()
	if newReturn.IsZero() {
		return nil, nil, ErrExtendNotLater
	}

	var rental *domain.Rental
	var ext *domain.Extension
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		rental, err = lockRow[domain.Rental](tx, rentalID, ErrRentalNotFound)
		if err != nil {
			return err
		}
		if rental.Status != domain.RentalActive {
			return ErrRentalNotActive
		}
		if !newReturn.After(rental.ReturnDate) {
			return ErrExtendNotLater
		}

		vehicle, err := s.lockVehicle(tx, rental.VehicleID)
		if err != nil {
			return err
		}
		if err := s.requireFree(ctx, tx, rental.VehicleID, rental.ReturnDate, newReturn, availability.Exclusions{RentalID: rental.ID}); err != nil {
			return err
		}

		snapshot := rental.PriceSnapshot.Data()
		extraDays := pricing.CeilDays(newReturn.Sub(rental.ReturnDate))
		ext = &domain.Extension{
			RentalID:      rental.ID,
			OldReturnDate: rental.ReturnDate,
			NewReturnDate: newReturn,
			ExtraDays:     extraDays,
			Fee:           snapshot.DailyRate * int64(extraDays),
			Currency:      snapshot.Currency,
			Reason:        in.Reason,
		}
		if err := tx.Create(ext).Error; err != nil {
			return fmt.Errorf("create extension: %w", err)
		}

		updates := map[string]any{"return_date": newReturn}
		if rental.AllowedMileage > 0 && vehicle.DailyMileageLimit > 0 {
			rental.AllowedMileage += vehicle.DailyMileageLimit * int64(extraDays)
			updates["allowed_mileage"] = rental.AllowedMileage
		}
		if err := tx.Model(rental).Updates(updates).Error; err != nil {
			return fmt.Errorf("update rental: %w", err)
		}
		rental.ReturnDate = newReturn
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.record(ctx, "rental.extended", "rental", rentalID, map[string]any{
		"extension_id": ext.ID,
		"extra_days":   ext.ExtraDays,
		"fee":          ext.Fee,
	})
	return rental, ext, nil
}

func (s *Service) GetRental(ctx context.Context, id int64) (*domain.Rental, error) {
	var rental domain.Rental
	err := s.db.WithContext(ctx).
		Preload("AddOns").
		Preload("Extensions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Fines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&rental, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRentalNotFound
		}
		return nil, err
	}
	return &rental, nil
}

func rentalAddOns(lines []domain.ReservationAddOn) []domain.RentalAddOn {
	out := make([]domain.RentalAddOn, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.RentalAddOn{
			AddOnID:     l.AddOnID,
			Name:        l.Name,
			PricingMode: l.PricingMode,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Currency:    l.Currency,
			Total:       l.Total,
		})
	}
	return out
}

func selectionsFrom(lines []domain.ReservationAddOn) []pricing.AddOnSelection {
	out := make([]pricing.AddOnSelection, 0, len(lines))
	for _, l := range lines {
		unit := l.UnitPrice
		out = append(out, pricing.AddOnSelection{
			AddOnID:   l.AddOnID,
			Quantity:  l.Quantity,
			UnitPrice: &unit,
			Currency:  l.Currency,
		})
	}
	return out
}

func newContractNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("CR-%s-%s", at.Format("20060102"), suffix)
}
