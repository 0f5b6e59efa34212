package ledger

import (
	"context"
	"testing"

	"carrental/internal/database/dbtest"
	"carrental/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRecordInAndOut(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	w := NewWriter()

	acc := &domain.Account{Name: "Cash desk", Currency: "KZT"}
	require.NoError(t, db.Create(acc).Error)

	rentalID := int64(5)
	in, err := w.Record(ctx, db, Entry{AccountID: acc.ID, Direction: domain.DirectionIn, Category: domain.CategoryDepositIn, Amount: 30000, RentalID: &rentalID})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, in.ID)
	assert.Equal(t, "KZT", in.Currency)

	_, err = w.Record(ctx, db, Entry{AccountID: acc.ID, Direction: domain.DirectionOut, Category: domain.CategoryDepositReturn, Amount: 10000})
	require.NoError(t, err)

	bal, err := w.Balance(ctx, db, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), bal)

	var n int64
	require.NoError(t, db.Model(&domain.LedgerTransaction{}).Where("account_id = ?", acc.ID).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestRecordRejects(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	w := NewWriter()

	acc := &domain.Account{Name: "Bank", Currency: "KZT", Balance: 100}
	require.NoError(t, db.Create(acc).Error)

	_, err := w.Record(ctx, db, Entry{AccountID: acc.ID, Direction: domain.DirectionIn, Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = w.Record(ctx, db, Entry{AccountID: 999, Direction: domain.DirectionIn, Amount: 10})
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = w.Record(ctx, db, Entry{AccountID: acc.ID, Direction: domain.DirectionOut, Amount: 101})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = w.Record(ctx, db, Entry{AccountID: acc.ID, Direction: domain.DirectionIn, Amount: 10, Currency: "USD"})
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	bal, err := w.Balance(ctx, db, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)
}

func TestRecordRollsBackWithCaller(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	w := NewWriter()

	acc := &domain.Account{Name: "Terminal", Currency: "KZT"}
	require.NoError(t, db.Create(acc).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := w.Record(ctx, tx, Entry{AccountID: acc.ID, Direction: domain.DirectionIn, Amount: 500}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	bal, err := w.Balance(ctx, db, acc.ID)
	require.NoError(t, err)
	assert.Zero(t, bal)
}
