package fines

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carrental/internal/database/dbtest"
	"carrental/internal/domain"
	"carrental/internal/modules/audit"
	"carrental/internal/modules/ledger"
	"carrental/internal/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     *Service
	account *domain.Account
	rental  *domain.Rental
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)

	v := &domain.Vehicle{Plate: "777KZ02", Title: "Kia Rio", IsActive: true, Currency: "KZT"}
	require.NoError(t, db.Create(v).Error)
	c := &domain.Client{FullName: "Nurlan", Phone: "+77017777777", PhoneNormalized: "+77017777777"}
	require.NoError(t, db.Create(c).Error)
	r := &domain.Rental{
		VehicleID:      v.ID,
		ClientID:       c.ID,
		Status:         domain.RentalCompleted,
		PickupDate:     time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		ReturnDate:     time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC),
		ContractNumber: "CR-1",
	}
	require.NoError(t, db.Create(r).Error)
	acc := &domain.Account{Name: "Cash desk", Currency: "KZT"}
	require.NoError(t, db.Create(acc).Error)

	svc := NewService(db, ledger.NewWriter(), audit.Nop())
	svc.SetClock(func() time.Time { return time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC) })
	return &fixture{db: db, svc: svc, account: acc, rental: r}
}

func (f *fixture) fine(t *testing.T, amount int64) *domain.Fine {
	t.Helper()
	fine := &domain.Fine{
		RentalID:  f.rental.ID,
		ClientID:  f.rental.ClientID,
		Kind:      domain.FineLateReturn,
		Quantity:  1,
		UnitPrice: amount,
		Amount:    amount,
		Currency:  "KZT",
	}
	require.NoError(t, f.db.Create(fine).Error)
	return fine
}

func TestPayLinksLedgerTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fine := f.fine(t, 2000)

	paid, err := f.svc.Pay(ctx, fine.ID, f.account.ID)
	require.NoError(t, err)
	require.NotNil(t, paid.TransactionID)
	require.NotNil(t, paid.PaidAt)

	var txn domain.LedgerTransaction
	require.NoError(t, f.db.First(&txn, "id = ?", *paid.TransactionID).Error)
	assert.Equal(t, domain.CategoryFinePayment, txn.Category)
	assert.Equal(t, domain.DirectionIn, txn.Direction)
	assert.Equal(t, int64(2000), txn.Amount)
	require.NotNil(t, txn.FineID)
	assert.Equal(t, fine.ID, *txn.FineID)

	bal, err := ledger.NewWriter().Balance(ctx, f.db, f.account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), bal)

	_, err = f.svc.Pay(ctx, fine.ID, f.account.ID)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	bal, err = ledger.NewWriter().Balance(ctx, f.db, f.account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), bal)
}

func TestPayFailureLeavesFineUnpaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fine := f.fine(t, 2000)

	usd := &domain.Account{Name: "USD", Currency: "USD"}
	require.NoError(t, f.db.Create(usd).Error)

	_, err := f.svc.Pay(ctx, fine.ID, usd.ID)
	assert.ErrorIs(t, err, ledger.ErrCurrencyMismatch)

	_, err = f.svc.Pay(ctx, fine.ID, 9999)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

	stored, err := f.svc.Get(ctx, fine.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPaid())

	var n int64
	require.NoError(t, f.db.Model(&domain.LedgerTransaction{}).Count(&n).Error)
	assert.Zero(t, n)

	zero := f.fine(t, 0)
	_, err = f.svc.Pay(ctx, zero.ID, f.account.ID)
	assert.ErrorIs(t, err, ErrNothingToPay)

	_, err = f.svc.Pay(ctx, 4242, f.account.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}

func TestDeleteUnpaidRemovesRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fine := f.fine(t, 1500)

	deleted, err := f.svc.Delete(ctx, fine.ID, "")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = f.svc.Get(ctx, fine.ID)
	assert.ErrorIs(t, err, ErrFineNotFound)
}

func TestDeletePaidVoidsAndKeepsLedgerLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fine := f.fine(t, 1500)
	paid, err := f.svc.Pay(ctx, fine.ID, f.account.ID)
	require.NoError(t, err)

	_, err = f.svc.Delete(ctx, fine.ID, "  ")
	assert.ErrorIs(t, err, ErrMissingNote)

	deleted, err := f.svc.Delete(ctx, fine.ID, "goodwill")
	require.NoError(t, err)
	assert.False(t, deleted)

	stored, err := f.svc.Get(ctx, fine.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Amount)
	require.NotNil(t, stored.VoidedAt)
	assert.Contains(t, stored.VoidNote, "goodwill")
	assert.Contains(t, stored.VoidNote, "1500 KZT")
	require.NotNil(t, stored.TransactionID)
	assert.Equal(t, *paid.TransactionID, *stored.TransactionID)

	_, err = f.svc.Delete(ctx, fine.ID, "again")
	assert.ErrorIs(t, err, ErrVoided)
	_, err = f.svc.Pay(ctx, fine.ID, f.account.ID)
	assert.ErrorIs(t, err, ErrVoided)
}

func TestListByRental(t *testing.T) {
	f := newFixture(t)
	a := f.fine(t, 100)
	b := f.fine(t, 200)

	list, err := f.svc.ListByRental(context.Background(), f.rental.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
}

func TestHandlerPayAndDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	fine := f.fine(t, 3000)

	r := gin.New()
	NewHandler(f.svc).RegisterRoutes(r.Group("/api/v1"))

	do := func(method, path string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	rr := do(http.MethodPost, "/api/v1/fines/"+itoa(fine.ID)+"/pay", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(http.MethodPost, "/api/v1/fines/"+itoa(fine.ID)+"/pay", []byte(`{"account_id": `+itoa(f.account.ID)+`}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(http.MethodDelete, "/api/v1/fines/"+itoa(fine.ID)+"?note=waived", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Data struct {
			Deleted bool `json:"deleted"`
			Voided  bool `json:"voided"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Deleted)
	assert.True(t, resp.Data.Voided)

	rr = do(http.MethodGet, "/api/v1/fines/999", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func itoa(id int64) string {
	return fmt.Sprint(id)
}
