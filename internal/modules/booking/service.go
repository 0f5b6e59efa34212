package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrental/internal/domain"
	"carrental/internal/modules/audit"
	"carrental/internal/modules/availability"
	"carrental/internal/modules/pricing"
	"carrental/internal/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const rentalReservationIndex = "idx_rentals_reservation_id"

var noExclusions = availability.Exclusions{}

// Service is the booking lifecycle engine. Every transition is one
// transaction script: lock, re-check availability, write.
type Service struct {
	db       *gorm.DB
	detector AvailabilityChecker
	pricing  PriceCalculator
	clients  ClientResolver
	ledger   LedgerWriter
	audit    audit.Sink
	now      func() time.Time
}

func NewService(
	db *gorm.DB,
	detector AvailabilityChecker,
	pricing PriceCalculator,
	clients ClientResolver,
	ledger LedgerWriter,
	sink audit.Sink,
) *Service {
	if sink == nil {
		sink = audit.Nop()
	}
	return &Service{
		db:       db,
		detector: detector,
		pricing:  pricing,
		clients:  clients,
		ledger:   ledger,
		audit:    sink,
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func (s *Service) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return translateStoreError(s.db.WithContext(ctx).Transaction(fn))
}

// translateStoreError maps store-level contention into business conflicts so
// that a lost race reads like any other unavailable vehicle.
func translateStoreError(err error) error {
	if err == nil || apperror.IsBusiness(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return ErrConcurrentUpdate
		case "23505":
			if pgErr.ConstraintName == rentalReservationIndex {
				return ErrAlreadyPickedUp
			}
		}
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: rentals.reservation_id"):
		return ErrAlreadyPickedUp
	case strings.Contains(msg, "SQLITE_BUSY"), strings.Contains(msg, "database is locked"):
		return ErrConcurrentUpdate
	}
	return err
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return ErrInvalidDates
	}
	return nil
}

// lockVehicle takes the row lock that serializes every transition touching
// the vehicle's timeline.
func (s *Service) lockVehicle(tx *gorm.DB, vehicleID int64) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&v, vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("lock vehicle: %w", err)
	}
	return &v, nil
}

// lockActiveVehicle is lockVehicle for transitions that start a new
// allocation on the vehicle.
func (s *Service) lockActiveVehicle(tx *gorm.DB, vehicleID int64) (*domain.Vehicle, error) {
	v, err := s.lockVehicle(tx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsActive {
		return nil, ErrVehicleInactive
	}
	return v, nil
}

func (s *Service) requireFree(ctx context.Context, tx *gorm.DB, vehicleID int64, start, end time.Time, ex availability.Exclusions) error {
	res, err := s.detector.Check(ctx, tx, vehicleID, start, end, ex)
	if err != nil {
		return err
	}
	if !res.Available {
		return availability.ConflictError(res.Conflicts)
	}
	return nil
}

func lockRow[T any](tx *gorm.DB, id int64, notFound error) (*T, error) {
	var row T
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("lock %T: %w", row, err)
	}
	return &row, nil
}

func (s *Service) loadClient(tx *gorm.DB, id int64) (*domain.Client, error) {
	var c domain.Client
	if err := tx.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("load client: %w", err)
	}
	return &c, nil
}

// snapshotFor picks the contractual price: an explicit snapshot wins, then a
// captured quote that still describes the booking being made, and only then
// the live catalog.
func (s *Service) snapshotFor(ctx context.Context, tx *gorm.DB, explicit, quoted *domain.PriceBreakdown, q pricing.Quote) (domain.PriceBreakdown, error) {
	if err := pricing.ValidateSelections(q.AddOns); err != nil {
		return domain.PriceBreakdown{}, err
	}
	if explicit != nil && !explicit.IsEmpty() {
		return completeSnapshot(ctx, tx, *explicit, q)
	}
	if quoteApplies(quoted, q) {
		return completeSnapshot(ctx, tx, *quoted, q)
	}
	return s.pricing.Calculate(ctx, tx, q)
}

// quoteApplies reports whether a quote captured at request time can stand in
// for the catalog: same vehicle, same day count, and no coverage package or
// add-ons chosen since that it does not already carry.
func quoteApplies(quoted *domain.PriceBreakdown, q pricing.Quote) bool {
	if quoted == nil || quoted.IsEmpty() {
		return false
	}
	if quoted.VehicleID != q.VehicleID || quoted.TotalDays != pricing.TotalDays(q.Start, q.End) {
		return false
	}
	if q.CoveragePackageID != nil && (quoted.CoveragePackageID == nil || *quoted.CoveragePackageID != *q.CoveragePackageID) {
		return false
	}
	return len(q.AddOns) == 0
}

// completeSnapshot prices add-on selections and the delivery fee the captured
// breakdown did not carry.
func completeSnapshot(ctx context.Context, tx *gorm.DB, b domain.PriceBreakdown, q pricing.Quote) (domain.PriceBreakdown, error) {
	b.VehicleID = q.VehicleID
	changed := false

	if len(b.AddOns) == 0 && len(q.AddOns) > 0 {
		catalog, err := pricing.LoadAddOns(ctx, tx, q.AddOns)
		if err != nil {
			return domain.PriceBreakdown{}, err
		}
		for _, sel := range q.AddOns {
			a, ok := catalog[sel.AddOnID]
			if !ok || !a.IsActive {
				continue
			}
			b.AddOns = append(b.AddOns, pricing.PriceAddOn(a, sel, b.TotalDays))
		}
		changed = true
	}
	if b.DeliveryFee == 0 && q.DeliveryFee > 0 {
		b.DeliveryFee = q.DeliveryFee
		changed = true
	}
	if b.AddOns == nil {
		b.AddOns = []domain.AddOnLine{}
	}
	if changed {
		b = pricing.Totals(b)
	}
	return b, nil
}

func reservationAddOns(lines []domain.AddOnLine) []domain.ReservationAddOn {
	out := make([]domain.ReservationAddOn, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.ReservationAddOn{
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

func (s *Service) record(ctx context.Context, action, entityType string, entityID int64, payload map[string]any) {
	s.audit.Record(ctx, audit.Event{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    payload,
		At:         s.clock(),
	})
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func snapshotColumn(b domain.PriceBreakdown) datatypes.JSONType[domain.PriceBreakdown] {
	return datatypes.NewJSONType(b)
}
