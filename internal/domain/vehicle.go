package domain

import "time"

// Vehicle is owned by fleet management; bookings reference it by id only.
type Vehicle struct {
	ID                   int64     `json:"id" gorm:"primaryKey"`
	Plate                string    `json:"plate" gorm:"size:32;uniqueIndex;not null"`
	Title                string    `json:"title" gorm:"not null"`
	IsActive             bool      `json:"is_active" gorm:"not null"`
	Currency             string    `json:"currency" gorm:"size:3"`
	DailyMileageLimit    int64     `json:"daily_mileage_limit"`
	OvermileageRatePerKm int64     `json:"overmileage_rate_per_km"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ServiceEvent is a maintenance window. A nil EndDate means the vehicle is
// out of service until further notice.
type ServiceEvent struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	VehicleID     int64      `json:"vehicle_id" gorm:"not null;index"`
	Title         string     `json:"title" gorm:"not null"`
	Status        string     `json:"status" gorm:"size:32"`
	StartDate     time.Time  `json:"start_date" gorm:"not null"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	BlocksBooking bool       `json:"blocks_booking" gorm:"not null"`
	CreatedAt     time.Time  `json:"created_at"`
}
