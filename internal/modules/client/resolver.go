package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carrental/internal/domain"
	"carrental/internal/pkg/apperror"

	"gorm.io/gorm"
)

var ErrNoContact = apperror.Validation("client phone or email is required")

// Contact is what a request or walk-in knows about the renter.
type Contact struct {
	FullName      string
	Phone         string
	Email         string
	LicenseNumber string
	LicenseExpiry *time.Time
}

// Resolver finds or creates clients, deduplicating by normalized phone first
// and then by normalized email.
type Resolver struct {
	region string
}

func NewResolver(region string) *Resolver {
	return &Resolver{region: region}
}

// Resolve runs on the caller's transaction. Existing clients only get fields
// they are missing; nothing already on file is overwritten.
func (r *Resolver) Resolve(ctx context.Context, tx *gorm.DB, c Contact) (*domain.Client, bool, error) {
	phone := NormalizePhone(c.Phone, r.region)
	email := NormalizeEmail(c.Email)
	if phone == "" && email == "" {
		return nil, false, ErrNoContact
	}

	tx = tx.WithContext(ctx)

	existing, err := r.find(tx, phone, email)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		cl := &domain.Client{
			FullName:        c.FullName,
			Phone:           c.Phone,
			PhoneNormalized: phone,
			Email:           c.Email,
			EmailNormalized: email,
			LicenseNumber:   c.LicenseNumber,
			LicenseExpiry:   c.LicenseExpiry,
		}
		if err := tx.Create(cl).Error; err != nil {
			return nil, false, fmt.Errorf("create client: %w", err)
		}
		return cl, true, nil
	}

	updates := map[string]any{}
	if existing.FullName == "" && c.FullName != "" {
		updates["full_name"] = c.FullName
	}
	if existing.PhoneNormalized == "" && phone != "" {
		updates["phone"] = c.Phone
		updates["phone_normalized"] = phone
	}
	if existing.EmailNormalized == "" && email != "" {
		updates["email"] = c.Email
		updates["email_normalized"] = email
	}
	if existing.LicenseNumber == "" && c.LicenseNumber != "" {
		updates["license_number"] = c.LicenseNumber
	}
	if existing.LicenseExpiry == nil && c.LicenseExpiry != nil {
		updates["license_expiry"] = c.LicenseExpiry
	}
	if len(updates) > 0 {
		if err := tx.Model(existing).Updates(updates).Error; err != nil {
			return nil, false, fmt.Errorf("update client: %w", err)
		}
		if err := tx.First(existing, existing.ID).Error; err != nil {
			return nil, false, fmt.Errorf("reload client: %w", err)
		}
	}
	return existing, false, nil
}

func (r *Resolver) find(tx *gorm.DB, phone, email string) (*domain.Client, error) {
	lookups := []struct {
		column, value string
	}{
		{"phone_normalized", phone},
		{"email_normalized", email},
	}

	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		var cl domain.Client
		err := tx.Where(l.column+" = ?", l.value).Order("id").First(&cl).Error
		if err == nil {
			return &cl, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find client by %s: %w", l.column, err)
		}
	}
	return nil, nil
}
