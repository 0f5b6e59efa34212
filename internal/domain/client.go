package domain

import "time"

// Client is a renter. Normalized contact columns are the deduplication keys.
type Client struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	FullName        string     `json:"full_name"`
	Phone           string     `json:"phone"`
	PhoneNormalized string     `json:"-" gorm:"size:32;index"`
	Email           string     `json:"email"`
	EmailNormalized string     `json:"-" gorm:"size:255;index"`
	LicenseNumber   string     `json:"license_number,omitempty"`
	LicenseExpiry   *time.Time `json:"license_expiry,omitempty"`
	IsBlocked       bool       `json:"is_blocked" gorm:"not null"`
	BlockReason     string     `json:"block_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
