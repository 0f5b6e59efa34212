package ledger

import (
	"context"
	"errors"
	"fmt"

	"carrental/internal/domain"
	"carrental/internal/pkg/apperror"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAccountNotFound     = apperror.NotFound("account")
	ErrInvalidAmount       = apperror.New(apperror.CodePayment, "transaction amount must be positive")
	ErrInsufficientBalance = apperror.New(apperror.CodePayment, "insufficient account balance")
	ErrCurrencyMismatch    = apperror.New(apperror.CodePayment, "transaction currency does not match account currency")
)

// Entry is one movement of money on a settlement account.
type Entry struct {
	AccountID   int64
	Direction   domain.TransactionDirection
	Category    domain.TransactionCategory
	Amount      int64
	Currency    string
	RentalID    *int64
	FineID      *int64
	Description string
}

// Writer appends ledger transactions. It never opens a transaction of its
// own: deposit and fine flows must commit the ledger row together with their
// status change.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Record(ctx context.Context, tx *gorm.DB, e Entry) (*domain.LedgerTransaction, error) {
	if e.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	tx = tx.WithContext(ctx)

	var acc domain.Account
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&acc, e.AccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lock account: %w", err)
	}

	if e.Currency == "" {
		e.Currency = acc.Currency
	}
	if acc.Currency != "" && e.Currency != acc.Currency {
		return nil, ErrCurrencyMismatch
	}

	delta := e.Amount
	if e.Direction == domain.DirectionOut {
		if acc.Balance < e.Amount {
			return nil, ErrInsufficientBalance
		}
		delta = -e.Amount
	}

	if err := tx.Model(&acc).Update("balance", gorm.Expr("balance + ?", delta)).Error; err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	txn := &domain.LedgerTransaction{
		AccountID:   acc.ID,
		Direction:   e.Direction,
		Category:    e.Category,
		Amount:      e.Amount,
		Currency:    e.Currency,
		RentalID:    e.RentalID,
		FineID:      e.FineID,
		Description: e.Description,
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, fmt.Errorf("create ledger transaction: %w", err)
	}
	return txn, nil
}

// Balance reads the current balance of an account.
func (w *Writer) Balance(ctx context.Context, db *gorm.DB, accountID int64) (int64, error) {
	var acc domain.Account
	if err := db.WithContext(ctx).Select("balance").First(&acc, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return acc.Balance, nil
}
