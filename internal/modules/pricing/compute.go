package pricing

import (
	"math"
	"time"

	"carrental/internal/domain"
	"carrental/internal/pkg/apperror"
)

const day = 24 * time.Hour

const (
	RateSourcePlan   = "rate_plan"
	RateSourceLegacy = "legacy_tariff"
	RateSourceNone   = "none"
)

// Defaults collects the values applied when a booking does not specify them.
type Defaults struct {
	DepositPercent int
	Currency       string
}

func DefaultDefaults() Defaults {
	return Defaults{DepositPercent: 100, Currency: "KZT"}
}

// AddOnSelection is one requested add-on. UnitPrice and Currency override the
// catalog values when set. Quantity is ignored for ONE_TIME and non-editable
// PER_DAY add-ons but must still be at least 1.
type AddOnSelection struct {
	AddOnID   int64  `json:"addon_id" binding:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
	UnitPrice *int64 `json:"unit_price,omitempty"`
	Currency  string `json:"currency,omitempty"`
}

// ValidateSelections reports the first selection with a quantity below 1.
func ValidateSelections(selections []AddOnSelection) error {
	for _, sel := range selections {
		if sel.Quantity < 1 {
			return apperror.Newf(apperror.CodeValidation, "add-on %d: quantity must be at least 1", sel.AddOnID).
				WithDetails(map[string]any{"addon_id": sel.AddOnID, "quantity": sel.Quantity})
		}
	}
	return nil
}

// TotalDays is the billable day count: whole days rounded up, never below one.
func TotalDays(start, end time.Time) int {
	return max(1, CeilDays(end.Sub(start)))
}

// CeilDays rounds a positive duration up to whole days. Non-positive
// durations yield 0.
func CeilDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + day - 1) / day)
}

// ResolveDailyRate picks the active rate plan whose bracket contains days,
// falling back to legacy tariffs. When nothing matches the rate is 0.
func ResolveDailyRate(plans []domain.RatePlan, legacy []domain.LegacyTariff, days int, at time.Time) (rate int64, currency, source string) {
	var best *domain.RatePlan
	for i := range plans {
		p := &plans[i]
		if !p.IsActive || days < p.MinDays || days > p.MaxDays {
			continue
		}
		if p.ValidFrom != nil && at.Before(*p.ValidFrom) {
			continue
		}
		if p.ValidTo != nil && !at.Before(*p.ValidTo) {
			continue
		}
		if best == nil || p.MinDays > best.MinDays {
			best = p
		}
	}
	if best != nil {
		return best.DailyRate, best.Currency, RateSourcePlan
	}

	var bestLegacy *domain.LegacyTariff
	for i := range legacy {
		l := &legacy[i]
		if days < l.MinDays || (l.MaxDays != 0 && days > l.MaxDays) {
			continue
		}
		if bestLegacy == nil || l.MinDays > bestLegacy.MinDays {
			bestLegacy = l
		}
	}
	if bestLegacy != nil {
		return bestLegacy.DailyRate, bestLegacy.Currency, RateSourceLegacy
	}
	return 0, "", RateSourceNone
}

func Deposit(subtotal int64, percent int) int64 {
	return int64(math.Round(float64(subtotal) * float64(percent) / 100))
}

// PriceAddOn applies the pricing mode rules to one selection.
func PriceAddOn(a domain.AddOn, sel AddOnSelection, totalDays int) domain.AddOnLine {
	unit := a.UnitPrice
	if sel.UnitPrice != nil {
		unit = *sel.UnitPrice
	}
	currency := a.Currency
	if sel.Currency != "" {
		currency = sel.Currency
	}
	qty := sel.Quantity

	line := domain.AddOnLine{
		AddOnID:     a.ID,
		Name:        a.Name,
		PricingMode: a.PricingMode,
		UnitPrice:   unit,
		Currency:    currency,
	}

	switch a.PricingMode {
	case domain.PricingPerDay:
		if a.QtyEditable {
			line.Quantity = qty
			line.Total = unit * int64(totalDays) * int64(qty)
		} else {
			line.Quantity = 1
			line.Total = unit * int64(totalDays)
		}
	case domain.PricingManualQty:
		line.Quantity = qty
		line.Total = unit * int64(qty)
	default:
		line.Quantity = 1
		line.Total = unit
	}
	return line
}

// Inputs is everything Compute needs, already loaded from the catalog.
type Inputs struct {
	Start, End  time.Time
	Plans       []domain.RatePlan
	Legacy      []domain.LegacyTariff
	Coverage    *domain.CoveragePackage
	Catalog     map[int64]domain.AddOn
	Selections  []AddOnSelection
	DeliveryFee int64
	Currency    string
	At          time.Time
}

// Compute builds a breakdown without touching storage. Selections that are not
// in the catalog or are inactive are skipped.
func Compute(in Inputs, defaults Defaults) domain.PriceBreakdown {
	days := TotalDays(in.Start, in.End)
	rate, currency, source := ResolveDailyRate(in.Plans, in.Legacy, days, in.At)
	if currency == "" {
		currency = in.Currency
	}
	if currency == "" {
		currency = defaults.Currency
	}

	b := domain.PriceBreakdown{
		DailyRate:      rate,
		Currency:       currency,
		RateSource:     source,
		TotalDays:      days,
		RentalSubtotal: rate * int64(days),
		DepositPercent: defaults.DepositPercent,
		AddOns:         []domain.AddOnLine{},
		DeliveryFee:    in.DeliveryFee,
	}
	if in.Coverage != nil {
		id := in.Coverage.ID
		b.CoveragePackageID = &id
		b.DepositPercent = in.Coverage.DepositPercent
	}
	b.DepositAmount = Deposit(b.RentalSubtotal, b.DepositPercent)

	for _, sel := range in.Selections {
		a, ok := in.Catalog[sel.AddOnID]
		if !ok || !a.IsActive {
			continue
		}
		b.AddOns = append(b.AddOns, PriceAddOn(a, sel, days))
	}
	return Totals(b)
}

// Totals recomputes the add-on sum and grand total from the line items.
func Totals(b domain.PriceBreakdown) domain.PriceBreakdown {
	b.AddOnsTotal = 0
	for _, l := range b.AddOns {
		b.AddOnsTotal += l.Total
	}
	b.GrandTotal = b.RentalSubtotal + b.AddOnsTotal + b.DeliveryFee
	return b
}

// Reprice moves a captured breakdown to a new day count at the same daily
// rate. PER_DAY lines follow the new count; other lines are left as they are.
func Reprice(b domain.PriceBreakdown, days int) domain.PriceBreakdown {
	b.TotalDays = days
	b.RentalSubtotal = b.DailyRate * int64(days)
	b.DepositAmount = Deposit(b.RentalSubtotal, b.DepositPercent)

	lines := make([]domain.AddOnLine, len(b.AddOns))
	for i, l := range b.AddOns {
		if l.PricingMode == domain.PricingPerDay {
			l.Quantity = days
			l.Total = l.UnitPrice * int64(days)
		}
		lines[i] = l
	}
	b.AddOns = lines
	return Totals(b)
}
