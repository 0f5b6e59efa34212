package pricing

import (
	"testing"
	"time"

	"carrental/internal/domain"
	"carrental/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var june1 = time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)

func TestTotalDaysFloor(t *testing.T) {
	assert.Equal(t, 1, TotalDays(june1, june1))
	assert.Equal(t, 1, TotalDays(june1, june1.Add(time.Hour)))
	assert.Equal(t, 1, TotalDays(june1, june1.Add(24*time.Hour)))
	assert.Equal(t, 2, TotalDays(june1, june1.Add(25*time.Hour)))
	assert.Equal(t, 3, TotalDays(june1, june1.AddDate(0, 0, 3)))
}

func TestCeilDays(t *testing.T) {
	assert.Equal(t, 0, CeilDays(0))
	assert.Equal(t, 0, CeilDays(-time.Hour))
	assert.Equal(t, 1, CeilDays(time.Minute))
	assert.Equal(t, 2, CeilDays(48*time.Hour))
	assert.Equal(t, 3, CeilDays(48*time.Hour+time.Second))
}

func TestResolveDailyRate(t *testing.T) {
	plans := []domain.RatePlan{
		{ID: 1, MinDays: 1, MaxDays: 3, DailyRate: 15000, Currency: "KZT", IsActive: true},
		{ID: 2, MinDays: 4, MaxDays: 7, DailyRate: 13000, Currency: "KZT", IsActive: true},
		{ID: 3, MinDays: 8, MaxDays: 30, DailyRate: 11000, Currency: "KZT", IsActive: false},
	}
	legacy := []domain.LegacyTariff{
		{ID: 1, MinDays: 1, MaxDays: 0, DailyRate: 9000, Currency: "KZT"},
	}

	rate, cur, src := ResolveDailyRate(plans, legacy, 2, june1)
	assert.Equal(t, int64(15000), rate)
	assert.Equal(t, "KZT", cur)
	assert.Equal(t, RateSourcePlan, src)

	rate, _, _ = ResolveDailyRate(plans, legacy, 5, june1)
	assert.Equal(t, int64(13000), rate)

	rate, _, src = ResolveDailyRate(plans, legacy, 10, june1)
	assert.Equal(t, int64(9000), rate, "inactive plan falls through to legacy")
	assert.Equal(t, RateSourceLegacy, src)

	rate, cur, src = ResolveDailyRate(nil, nil, 10, june1)
	assert.Zero(t, rate)
	assert.Empty(t, cur)
	assert.Equal(t, RateSourceNone, src)
}

func TestResolveDailyRateValidityWindow(t *testing.T) {
	from := june1.AddDate(0, 0, 10)
	plans := []domain.RatePlan{
		{ID: 1, MinDays: 1, MaxDays: 30, DailyRate: 20000, IsActive: true, ValidFrom: &from},
		{ID: 2, MinDays: 1, MaxDays: 30, DailyRate: 10000, IsActive: true},
	}

	rate, _, _ := ResolveDailyRate(plans, nil, 3, june1)
	assert.Equal(t, int64(10000), rate)

	rate, _, _ = ResolveDailyRate(plans, nil, 3, from)
	assert.Equal(t, int64(20000), rate, "equal MinDays keeps the first match")
}

func TestDeposit(t *testing.T) {
	assert.Equal(t, int64(3000), Deposit(3000, 100))
	assert.Equal(t, int64(1500), Deposit(3000, 50))
	assert.Equal(t, int64(2), Deposit(5, 30)) // 1.5 rounds half away from zero
	assert.Zero(t, Deposit(3000, 0))
}

func TestValidateSelections(t *testing.T) {
	assert.NoError(t, ValidateSelections(nil))
	assert.NoError(t, ValidateSelections([]AddOnSelection{{AddOnID: 1, Quantity: 1}, {AddOnID: 2, Quantity: 12}}))

	err := ValidateSelections([]AddOnSelection{{AddOnID: 1, Quantity: 2}, {AddOnID: 7, Quantity: 0}})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, int64(7), appErr.Details["addon_id"])

	assert.Error(t, ValidateSelections([]AddOnSelection{{AddOnID: 3, Quantity: -1}}))
}

func TestPriceAddOnModes(t *testing.T) {
	perDay := domain.AddOn{ID: 1, Name: "Child seat", PricingMode: domain.PricingPerDay, UnitPrice: 1000, Currency: "KZT", IsActive: true}
	perDayQty := domain.AddOn{ID: 2, Name: "Extra driver", PricingMode: domain.PricingPerDay, QtyEditable: true, UnitPrice: 2000, Currency: "KZT", IsActive: true}
	oneTime := domain.AddOn{ID: 3, Name: "Cleaning", PricingMode: domain.PricingOneTime, UnitPrice: 5000, Currency: "KZT", IsActive: true}
	manual := domain.AddOn{ID: 4, Name: "Fuel litre", PricingMode: domain.PricingManualQty, UnitPrice: 300, Currency: "KZT", IsActive: true}

	line := PriceAddOn(perDay, AddOnSelection{AddOnID: 1, Quantity: 5}, 3)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, int64(3000), line.Total)

	line = PriceAddOn(perDayQty, AddOnSelection{AddOnID: 2, Quantity: 2}, 3)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, int64(12000), line.Total)

	line = PriceAddOn(oneTime, AddOnSelection{AddOnID: 3, Quantity: 4}, 3)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, int64(5000), line.Total)

	line = PriceAddOn(manual, AddOnSelection{AddOnID: 4, Quantity: 40}, 3)
	assert.Equal(t, 40, line.Quantity)
	assert.Equal(t, int64(12000), line.Total)

	override := int64(250)
	line = PriceAddOn(manual, AddOnSelection{AddOnID: 4, Quantity: 10, UnitPrice: &override, Currency: "USD"}, 3)
	assert.Equal(t, int64(2500), line.Total)
	assert.Equal(t, "USD", line.Currency)
}

func TestCompute(t *testing.T) {
	coverage := &domain.CoveragePackage{ID: 9, Name: "Half", DepositPercent: 50, IsActive: true}
	in := Inputs{
		Start:    june1,
		End:      june1.AddDate(0, 0, 3),
		Plans:    []domain.RatePlan{{MinDays: 1, MaxDays: 7, DailyRate: 10000, Currency: "KZT", IsActive: true}},
		Coverage: coverage,
		Catalog: map[int64]domain.AddOn{
			1: {ID: 1, Name: "Child seat", PricingMode: domain.PricingPerDay, UnitPrice: 1000, Currency: "KZT", IsActive: true},
			2: {ID: 2, Name: "GPS", PricingMode: domain.PricingOneTime, UnitPrice: 2000, Currency: "KZT", IsActive: false},
		},
		Selections: []AddOnSelection{
			{AddOnID: 1, Quantity: 5},
			{AddOnID: 2, Quantity: 1},
			{AddOnID: 99, Quantity: 1},
		},
		DeliveryFee: 1500,
	}

	b := Compute(in, DefaultDefaults())

	assert.Equal(t, 3, b.TotalDays)
	assert.Equal(t, int64(10000), b.DailyRate)
	assert.Equal(t, int64(30000), b.RentalSubtotal)
	assert.Equal(t, 50, b.DepositPercent)
	assert.Equal(t, int64(15000), b.DepositAmount)
	require.NotNil(t, b.CoveragePackageID)
	assert.Equal(t, int64(9), *b.CoveragePackageID)

	require.Len(t, b.AddOns, 1, "inactive and unknown add-ons are skipped")
	assert.Equal(t, 1, b.AddOns[0].Quantity)
	assert.Equal(t, int64(3000), b.AddOns[0].Total)
	assert.Equal(t, int64(3000), b.AddOnsTotal)
	assert.Equal(t, int64(1500), b.DeliveryFee)
	assert.Equal(t, int64(34500), b.GrandTotal)
}

func TestComputeDefaultsWithoutCoverageOrRate(t *testing.T) {
	b := Compute(Inputs{Start: june1, End: june1}, Defaults{DepositPercent: 80, Currency: "USD"})

	assert.Equal(t, 1, b.TotalDays)
	assert.Zero(t, b.DailyRate)
	assert.Equal(t, "USD", b.Currency)
	assert.Equal(t, 80, b.DepositPercent)
	assert.Nil(t, b.CoveragePackageID)
	assert.NotNil(t, b.AddOns)
	assert.Zero(t, b.GrandTotal)
}

func TestReprice(t *testing.T) {
	b := Totals(domain.PriceBreakdown{
		DailyRate:      1000,
		TotalDays:      3,
		RentalSubtotal: 3000,
		DepositPercent: 100,
		DeliveryFee:    500,
		AddOns: []domain.AddOnLine{
			{AddOnID: 1, PricingMode: domain.PricingPerDay, Quantity: 1, UnitPrice: 200, Total: 600},
			{AddOnID: 2, PricingMode: domain.PricingOneTime, Quantity: 1, UnitPrice: 700, Total: 700},
		},
	})

	r := Reprice(b, 5)

	assert.Equal(t, 5, r.TotalDays)
	assert.Equal(t, int64(5000), r.RentalSubtotal)
	assert.Equal(t, int64(5000), r.DepositAmount)
	assert.Equal(t, 5, r.AddOns[0].Quantity)
	assert.Equal(t, int64(1000), r.AddOns[0].Total)
	assert.Equal(t, int64(700), r.AddOns[1].Total)
	assert.Equal(t, int64(1700), r.AddOnsTotal)
	assert.Equal(t, int64(7200), r.GrandTotal)

	assert.Equal(t, int64(600), b.AddOns[0].Total, "original breakdown is not mutated")
}
