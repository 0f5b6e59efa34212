package domain

import "time"

type PricingMode string

const (
	PricingPerDay    PricingMode = "PER_DAY"
	PricingOneTime   PricingMode = "ONE_TIME"
	PricingManualQty PricingMode = "MANUAL_QTY"
)

// RatePlan maps a [MinDays, MaxDays] bracket to a daily price for one vehicle.
type RatePlan struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	VehicleID int64      `json:"vehicle_id" gorm:"not null;index"`
	MinDays   int        `json:"min_days" gorm:"not null"`
	MaxDays   int        `json:"max_days" gorm:"not null"`
	DailyRate int64      `json:"daily_rate" gorm:"not null"`
	Currency  string     `json:"currency" gorm:"size:3"`
	IsActive  bool       `json:"is_active" gorm:"not null"`
	ValidFrom *time.Time `json:"valid_from,omitempty"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`
}

// LegacyTariff predates rate plans. MaxDays == 0 means no upper bound.
type LegacyTariff struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	VehicleID int64  `json:"vehicle_id" gorm:"not null;index"`
	MinDays   int    `json:"min_days" gorm:"not null"`
	MaxDays   int    `json:"max_days" gorm:"not null"`
	DailyRate int64  `json:"daily_rate" gorm:"not null"`
	Currency  string `json:"currency" gorm:"size:3"`
}

type CoveragePackage struct {
	ID             int64  `json:"id" gorm:"primaryKey"`
	Name           string `json:"name" gorm:"not null"`
	DepositPercent int    `json:"deposit_percent" gorm:"not null"`
	IsActive       bool   `json:"is_active" gorm:"not null"`
}

type AddOn struct {
	ID          int64       `json:"id" gorm:"primaryKey"`
	Name        string      `json:"name" gorm:"not null"`
	PricingMode PricingMode `json:"pricing_mode" gorm:"size:16;not null"`
	QtyEditable bool        `json:"qty_editable" gorm:"not null"`
	UnitPrice   int64       `json:"unit_price" gorm:"not null"`
	Currency    string      `json:"currency" gorm:"size:3"`
	IsActive    bool        `json:"is_active" gorm:"not null"`
}

// AddOnLine is one priced add-on inside a breakdown.
type AddOnLine struct {
	AddOnID     int64       `json:"addon_id"`
	Name        string      `json:"name"`
	PricingMode PricingMode `json:"pricing_mode"`
	Quantity    int         `json:"quantity"`
	UnitPrice   int64       `json:"unit_price"`
	Currency    string      `json:"currency"`
	Total       int64       `json:"total"`
}

// PriceBreakdown is the itemised price of a booking. Stored on reservations
// and rentals it is the contractual price snapshot and is never recomputed
// from the catalog. Amounts are in minor currency units.
type PriceBreakdown struct {
	VehicleID         int64       `json:"vehicle_id,omitempty"`
	DailyRate         int64       `json:"daily_rate"`
	Currency          string      `json:"currency"`
	RateSource        string      `json:"rate_source"`
	TotalDays         int         `json:"total_days"`
	RentalSubtotal    int64       `json:"rental_subtotal"`
	CoveragePackageID *int64      `json:"coverage_package_id,omitempty"`
	DepositPercent    int         `json:"deposit_percent"`
	DepositAmount     int64       `json:"deposit_amount"`
	AddOns            []AddOnLine `json:"add_ons"`
	AddOnsTotal       int64       `json:"add_ons_total"`
	DeliveryFee       int64       `json:"delivery_fee"`
	GrandTotal        int64       `json:"grand_total"`
}

// IsEmpty reports whether the breakdown was never captured.
func (p PriceBreakdown) IsEmpty() bool {
	return p.TotalDays == 0
}
