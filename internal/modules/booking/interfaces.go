package booking

import (
	"context"
	"time"

	"carrental/internal/domain"
	"carrental/internal/modules/availability"
	"carrental/internal/modules/client"
	"carrental/internal/modules/ledger"
	"carrental/internal/modules/pricing"

	"gorm.io/gorm"
)

// AvailabilityChecker must run on the transaction that performs the write.
type AvailabilityChecker interface {
	Check(ctx context.Context, tx *gorm.DB, vehicleID int64, start, end time.Time, ex availability.Exclusions) (*availability.Result, error)
}

// PriceCalculator prices a quote against the catalog without writing.
type PriceCalculator interface {
	Calculate(ctx context.Context, db *gorm.DB, q pricing.Quote) (domain.PriceBreakdown, error)
}

// ClientResolver finds or creates the renter inside the caller's transaction.
type ClientResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, c client.Contact) (*domain.Client, bool, error)
}

// LedgerWriter records deposit movements inside the caller's transaction.
type LedgerWriter interface {
	Record(ctx context.Context, tx *gorm.DB, e ledger.Entry) (*domain.LedgerTransaction, error)
}
