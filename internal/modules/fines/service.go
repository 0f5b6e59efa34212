package fines

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrental/internal/domain"
	"carrental/internal/modules/audit"
	"carrental/internal/modules/ledger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerWriter books the payment inside the caller's transaction.
type LedgerWriter interface {
	Record(ctx context.Context, tx *gorm.DB, e ledger.Entry) (*domain.LedgerTransaction, error)
}

type Service struct {
	db     *gorm.DB
	ledger LedgerWriter
	audit  audit.Sink
	now    func() time.Time
}

func NewService(db *gorm.DB, ledger LedgerWriter, sink audit.Sink) *Service {
	if sink == nil {
		sink = audit.Nop()
	}
	return &Service{db: db, ledger: ledger, audit: sink, now: time.Now}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Fine, error) {
	var f domain.Fine
	if err := s.db.WithContext(ctx).First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFineNotFound
		}
		return nil, err
	}
	return &f, nil
}

// ListByRental returns the fines raised for a rental, oldest first.
func (s *Service) ListByRental(ctx context.Context, rentalID int64) ([]domain.Fine, error) {
	var out []domain.Fine
	if err := s.db.WithContext(ctx).Where("rental_id = ?", rentalID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list fines: %w", err)
	}
	return out, nil
}

// Pay books the fine amount as an inbound transaction on accountID and links
// the transaction to the fine. Both writes commit together.
func (s *Service) Pay(ctx context.Context, fineID, accountID int64) (*domain.Fine, error) {
	var fine *domain.Fine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		fine, err = lockFine(tx, fineID)
		if err != nil {
			return err
		}
		switch {
		case fine.VoidedAt != nil:
			return ErrVoided
		case fine.IsPaid():
			return ErrAlreadyPaid
		case fine.Amount <= 0:
			return ErrNothingToPay
		}

		id := fine.ID
		txn, err := s.ledger.Record(ctx, tx, ledger.Entry{
			AccountID:   accountID,
			Direction:   domain.DirectionIn,
			Category:    domain.CategoryFinePayment,
			Amount:      fine.Amount,
			Currency:    fine.Currency,
			RentalID:    &fine.RentalID,
			FineID:      &id,
			Description: fmt.Sprintf("%s fine for rental #%d", strings.ToLower(string(fine.Kind)), fine.RentalID),
		})
		if err != nil {
			return err
		}

		paidAt := s.now().UTC()
		if err := tx.Model(fine).Updates(map[string]any{
			"transaction_id": txn.ID,
			"paid_at":        paidAt,
		}).Error; err != nil {
			return fmt.Errorf("update fine: %w", err)
		}
		fine.TransactionID = &txn.ID
		fine.PaidAt = &paidAt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		Action:     "fine.paid",
		EntityType: "fine",
		EntityID:   fine.ID,
		Payload:    map[string]any{"account_id": accountID, "transaction_id": fine.TransactionID.String()},
		At:         s.now().UTC(),
	})
	return fine, nil
}

// Delete removes an unpaid fine. A paid fine is voided instead: its amount is
// zeroed and the note recorded, and the ledger link stays.
func (s *Service) Delete(ctx context.Context, fineID int64, note string) (deleted bool, err error) {
	note = strings.TrimSpace(note)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fine, err := lockFine(tx, fineID)
		if err != nil {
			return err
		}
		if fine.VoidedAt != nil {
			return ErrVoided
		}

		if !fine.IsPaid() {
			if err := tx.Delete(fine).Error; err != nil {
				return fmt.Errorf("delete fine: %w", err)
			}
			deleted = true
			return nil
		}

		if note == "" {
			return ErrMissingNote
		}
		voidNote := fmt.Sprintf("voided (was %d %s): %s", fine.Amount, fine.Currency, note)
		if err := tx.Model(fine).Updates(map[string]any{
			"amount":    0,
			"voided_at": s.now().UTC(),
			"void_note": voidNote,
		}).Error; err != nil {
			return fmt.Errorf("void fine: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	action := "fine.voided"
	if deleted {
		action = "fine.deleted"
	}
	s.audit.Record(ctx, audit.Event{
		Action:     action,
		EntityType: "fine",
		EntityID:   fineID,
		Payload:    map[string]any{"note": note},
		At:         s.now().UTC(),
	})
	return deleted, nil
}

func lockFine(tx *gorm.DB, id int64) (*domain.Fine, error) {
	var f domain.Fine
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFineNotFound
		}
		return nil, fmt.Errorf("lock fine: %w", err)
	}
	return &f, nil
}
