package client

import (
	"context"
	"testing"
	"time"

	"carrental/internal/database/dbtest"
	"carrental/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+77011234567", NormalizePhone("+7 701 123 4567", "KZ"))
	assert.Equal(t, "+77011234567", NormalizePhone("+7 (701) 123-45-67", "KZ"))
	assert.Equal(t, "+77011234567", NormalizePhone("8 701 123 4567", "KZ"))
	assert.Equal(t, "", NormalizePhone("   ", "KZ"))
	assert.Equal(t, "12", NormalizePhone("ext 12", "KZ"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "anna@example.com", NormalizeEmail("  Anna@Example.COM "))
}

func TestResolveDeduplicatesByPhone(t *testing.T) {
	db := dbtest.Open(t)
	r := NewResolver("KZ")
	ctx := context.Background()

	first, created, err := r.Resolve(ctx, db, Contact{FullName: "Anna", Phone: "+7 701 123 4567"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := r.Resolve(ctx, db, Contact{FullName: "Anna K.", Phone: "+77011234567", Email: "Anna@Example.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Anna", second.FullName, "existing fields are kept")
	assert.Equal(t, "anna@example.com", second.EmailNormalized, "missing fields are filled in")

	var count int64
	require.NoError(t, db.Model(&domain.Client{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestResolveDeduplicatesByEmail(t *testing.T) {
	db := dbtest.Open(t)
	r := NewResolver("KZ")
	ctx := context.Background()

	first, _, err := r.Resolve(ctx, db, Contact{FullName: "Boris", Email: "boris@example.com"})
	require.NoError(t, err)

	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	second, created, err := r.Resolve(ctx, db, Contact{Email: " BORIS@example.com", Phone: "+7 702 000 1122", LicenseExpiry: &expiry})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "+77020001122", second.PhoneNormalized)
	require.NotNil(t, second.LicenseExpiry)
	assert.True(t, expiry.Equal(*second.LicenseExpiry))
}

func TestResolveRequiresContact(t *testing.T) {
	db := dbtest.Open(t)

	_, _, err := NewResolver("KZ").Resolve(context.Background(), db, Contact{FullName: "Nobody"})
	assert.ErrorIs(t, err, ErrNoContact)
}
