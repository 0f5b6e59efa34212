package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionDirection string

const (
	DirectionIn  TransactionDirection = "IN"
	DirectionOut TransactionDirection = "OUT"
)

type TransactionCategory string

const (
	CategoryDepositIn     TransactionCategory = "DEPOSIT_IN"
	CategoryDepositReturn TransactionCategory = "DEPOSIT_RETURN"
	CategoryFinePayment   TransactionCategory = "FINE_PAYMENT"
)

// Account is a settlement account (cash desk, bank, card terminal).
type Account struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Currency  string    `json:"currency" gorm:"size:3"`
	Balance   int64     `json:"balance" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LedgerTransaction struct {
	ID          uuid.UUID            `json:"id" gorm:"type:uuid;primaryKey"`
	AccountID   int64                `json:"account_id" gorm:"not null;index"`
	Direction   TransactionDirection `json:"direction" gorm:"size:8;not null"`
	Category    TransactionCategory  `json:"category" gorm:"size:32;not null;index"`
	Amount      int64                `json:"amount" gorm:"not null"`
	Currency    string               `json:"currency" gorm:"size:3"`
	RentalID    *int64               `json:"rental_id,omitempty" gorm:"index"`
	FineID      *int64               `json:"fine_id,omitempty" gorm:"index"`
	Description string               `json:"description"`
	CreatedAt   time.Time            `json:"created_at" gorm:"autoCreateTime"`
}

func (t *LedgerTransaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
