package database

import (
	"fmt"
	"log/slog"
	"strings"

	"carrental/internal/domain"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Connect opens PostgreSQL for postgres:// URLs and SQLite (modernc, pure Go)
// for anything else. SQLite DSNs should carry _txlock=immediate so that
// booking transactions serialize on the write lock.
func Connect(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		slog.Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	slog.Info("using SQLite", "dsn", dsn)

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Models lists every table owned by the booking engine.
func Models() []any {
	return []any{
		&domain.Vehicle{},
		&domain.ServiceEvent{},
		&domain.RatePlan{},
		&domain.LegacyTariff{},
		&domain.CoveragePackage{},
		&domain.AddOn{},
		&domain.Client{},
		&domain.RentalRequest{},
		&domain.Reservation{},
		&domain.ReservationAddOn{},
		&domain.Rental{},
		&domain.RentalAddOn{},
		&domain.Extension{},
		&domain.Account{},
		&domain.LedgerTransaction{},
		&domain.Fine{},
		&domain.AuditEntry{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
