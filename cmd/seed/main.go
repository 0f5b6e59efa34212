package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"carrental/internal/config"
	"carrental/internal/database"
	"carrental/internal/domain"
	jwtsvc "carrental/internal/pkg/jwt"
	"carrental/internal/pkg/logger"

	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Error("DB connection failed", "error", err)
		os.Exit(1)
	}
	log.Info("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Error("AutoMigrate failed", "error", err)
		os.Exit(1)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		log.Info("Cleaning old data...")
		// children first
		for _, table := range []string{
			"audit_entries", "ledger_transactions", "fines", "extensions", "rental_add_ons", "rentals",
			"reservation_add_ons", "reservations", "rental_requests", "clients", "accounts",
			"service_events", "add_ons", "coverage_packages", "legacy_tariffs", "rate_plans", "vehicles",
		} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clean %s: %w", table, err)
			}
		}
		return seed(tx, cfg.DefaultCurrency)
	})
	if err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}

	token, err := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL).GenerateToken(1, "admin")
	if err != nil {
		log.Error("token", "error", err)
		os.Exit(1)
	}
	log.Info("Seed complete")
	fmt.Printf("dev admin token (valid %s):\n%s\n", cfg.JWTTTL, token)
}

func seed(tx *gorm.DB, currency string) error {
	vehicles := []domain.Vehicle{
		{Plate: "001AAA02", Title: "Toyota Camry 70", IsActive: true, Currency: currency, DailyMileageLimit: 300, OvermileageRatePerKm: 60},
		{Plate: "777KZA02", Title: "Hyundai Tucson", IsActive: true, Currency: currency, DailyMileageLimit: 250, OvermileageRatePerKm: 80},
		{Plate: "123BCD01", Title: "Kia Rio", IsActive: true, Currency: currency},
		{Plate: "900ZZZ02", Title: "Lexus LX 600", IsActive: false, Currency: currency, DailyMileageLimit: 200, OvermileageRatePerKm: 200},
	}
	if err := tx.Create(&vehicles).Error; err != nil {
		return fmt.Errorf("vehicles: %w", err)
	}

	// short, week and month brackets per vehicle
	base := []int64{25000, 30000, 15000, 90000}
	for i, v := range vehicles {
		plans := []domain.RatePlan{
			{VehicleID: v.ID, MinDays: 1, MaxDays: 6, DailyRate: base[i], Currency: currency, IsActive: true},
			{VehicleID: v.ID, MinDays: 7, MaxDays: 29, DailyRate: base[i] * 9 / 10, Currency: currency, IsActive: true},
		}
		if err := tx.Create(&plans).Error; err != nil {
			return fmt.Errorf("rate plans: %w", err)
		}
		legacy := domain.LegacyTariff{VehicleID: v.ID, MinDays: 30, DailyRate: base[i] * 8 / 10, Currency: currency}
		if err := tx.Create(&legacy).Error; err != nil {
			return fmt.Errorf("legacy tariff: %w", err)
		}
	}

	coverage := []domain.CoveragePackage{
		{Name: "Basic", DepositPercent: 100, IsActive: true},
		{Name: "Standard", DepositPercent: 50, IsActive: true},
		{Name: "Full", DepositPercent: 0, IsActive: true},
	}
	if err := tx.Create(&coverage).Error; err != nil {
		return fmt.Errorf("coverage: %w", err)
	}

	addOns := []domain.AddOn{
		{Name: "Child seat", PricingMode: domain.PricingPerDay, UnitPrice: 1500, Currency: currency, IsActive: true},
		{Name: "Additional driver", PricingMode: domain.PricingPerDay, QtyEditable: true, UnitPrice: 2000, Currency: currency, IsActive: true},
		{Name: "Interior cleaning", PricingMode: domain.PricingOneTime, UnitPrice: 5000, Currency: currency, IsActive: true},
		{Name: "Fuel refill (litre)", PricingMode: domain.PricingManualQty, QtyEditable: true, UnitPrice: 250, Currency: currency, IsActive: true},
	}
	if err := tx.Create(&addOns).Error; err != nil {
		return fmt.Errorf("add-ons: %w", err)
	}

	accounts := []domain.Account{
		{Name: "Cash desk", Currency: currency},
		{Name: "Kaspi", Currency: currency},
	}
	if err := tx.Create(&accounts).Error; err != nil {
		return fmt.Errorf("accounts: %w", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	service := domain.ServiceEvent{
		VehicleID:     vehicles[1].ID,
		Title:         "Scheduled maintenance",
		Status:        "planned",
		StartDate:     today.AddDate(0, 0, 10),
		EndDate:       ptr(today.AddDate(0, 0, 12)),
		BlocksBooking: true,
	}
	if err := tx.Create(&service).Error; err != nil {
		return fmt.Errorf("service event: %w", err)
	}

	requests := []domain.RentalRequest{
		{Status: domain.RequestNew, FullName: "Асель Нурланова", Phone: "+7 701 123 4567", PickupDate: today.AddDate(0, 0, 2).Add(10 * time.Hour), ReturnDate: today.AddDate(0, 0, 5).Add(10 * time.Hour), Source: "website"},
		{Status: domain.RequestNew, FullName: "Бекзат Ахметов", Email: "bekzat@gmail.com", VehicleID: &vehicles[0].ID, PickupDate: today.AddDate(0, 0, 7).Add(9 * time.Hour), ReturnDate: today.AddDate(0, 0, 14).Add(9 * time.Hour), Source: "whatsapp"},
	}
	if err := tx.Create(&requests).Error; err != nil {
		return fmt.Errorf("rental requests: %w", err)
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
