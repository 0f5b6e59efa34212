package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrental/internal/domain"
	"carrental/internal/modules/client"
	"carrental/internal/modules/pricing"

	"gorm.io/gorm"
)

type CreateRequestInput struct {
	FullName       string
	Phone          string
	Email          string
	VehicleID      *int64
	PickupDate     time.Time
	ReturnDate     time.Time
	PickupLocation string
	ReturnLocation string
	Source         string
	Comment        string
}

// CreateRequest stores an inbound lead. When a vehicle is named the current
// catalog price is captured as the quote. Callers never supply the quote.
func (s *Service) CreateRequest(ctx context.Context, in CreateRequestInput) (*domain.RentalRequest, error) {
	if strings.TrimSpace(in.Phone) == "" && strings.TrimSpace(in.Email) == "" {
		return nil, ErrMissingContact
	}
	start, end := in.PickupDate.UTC(), in.ReturnDate.UTC()
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	var quote *domain.PriceBreakdown
	if in.VehicleID != nil {
		b, err := s.pricing.Calculate(ctx, s.db, pricing.Quote{VehicleID: *in.VehicleID, Start: start, End: end})
		if err != nil {
			return nil, err
		}
		quote = &b
	}

	req := &domain.RentalRequest{
		Status:         domain.RequestNew,
		FullName:       strings.TrimSpace(in.FullName),
		Phone:          strings.TrimSpace(in.Phone),
		Email:          strings.TrimSpace(in.Email),
		VehicleID:      in.VehicleID,
		PickupDate:     start,
		ReturnDate:     end,
		PickupLocation: in.PickupLocation,
		ReturnLocation: in.ReturnLocation,
		Source:         in.Source,
		Comment:        in.Comment,
	}
	if quote != nil {
		raw, err := json.Marshal(quote)
		if err != nil {
			return nil, fmt.Errorf("encode quoted price: %w", err)
		}
		req.QuotedPrice = raw
	}

	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, fmt.Errorf("create rental request: %w", err)
	}

	s.record(ctx, "rental_request.created", "rental_request", req.ID, map[string]any{"source": req.Source})
	return req, nil
}

func (s *Service) GetRequest(ctx context.Context, id int64) (*domain.RentalRequest, error) {
	var req domain.RentalRequest
	if err := s.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

type ApproveInput struct {
	VehicleID         int64
	PickupDate        time.Time
	ReturnDate        time.Time
	PickupLocation    string
	ReturnLocation    string
	CoveragePackageID *int64
	AddOns            []pricing.AddOnSelection
	DeliveryFee       int64
	PriceSnapshot     *domain.PriceBreakdown
}

type ApproveResult struct {
	Reservation *domain.Reservation   `json:"reservation"`
	Request     *domain.RentalRequest `json:"request"`
}

// Approve turns a new request into a confirmed reservation. The availability
// check, client resolution, request update and reservation insert commit
// together or not at all.
func (s *Service) Approve(ctx context.Context, requestID int64, in ApproveInput) (*ApproveResult, error) {
	if in.VehicleID <= 0 {
		return nil, ErrMissingVehicle
	}
	if in.DeliveryFee < 0 {
		return nil, ErrNegativeFee
	}
	start, end := in.PickupDate.UTC(), in.ReturnDate.UTC()
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	var out ApproveResult
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		req, err := lockRow[domain.RentalRequest](tx, requestID, ErrRequestNotFound)
		if err != nil {
			return err
		}
		switch req.Status {
		case domain.RequestNew:
		case domain.RequestApproved:
			return ErrAlreadyApproved
		default:
			return ErrRequestClosed
		}

		if _, err := s.lockActiveVehicle(tx, in.VehicleID); err != nil {
			return err
		}
		if err := s.requireFree(ctx, tx, in.VehicleID, start, end, noExclusions); err != nil {
			return err
		}

		cl, _, err := s.clients.Resolve(ctx, tx, client.Contact{
			FullName: req.FullName,
			Phone:    req.Phone,
			Email:    req.Email,
		})
		if err != nil {
			return err
		}
		if cl.IsBlocked {
			return blockedError(cl)
		}

		quoted, err := decodeQuote(req.QuotedPrice)
		if err != nil {
			return err
		}
		snapshot, err := s.snapshotFor(ctx, tx, in.PriceSnapshot, quoted, pricing.Quote{
			VehicleID:         in.VehicleID,
			Start:             start,
			End:               end,
			CoveragePackageID: in.CoveragePackageID,
			AddOns:            in.AddOns,
			DeliveryFee:       in.DeliveryFee,
		})
		if err != nil {
			return err
		}

		res := &domain.Reservation{
			VehicleID:         in.VehicleID,
			ClientID:          cl.ID,
			RequestID:         &req.ID,
			Status:            domain.ReservationConfirmed,
			PickupDate:        start,
			ReturnDate:        end,
			PickupLocation:    firstNonEmpty(in.PickupLocation, req.PickupLocation),
			ReturnLocation:    firstNonEmpty(in.ReturnLocation, req.ReturnLocation),
			CoveragePackageID: snapshot.CoveragePackageID,
			DeliveryFee:       snapshot.DeliveryFee,
			PriceSnapshot:     snapshotColumn(snapshot),
			AddOns:            reservationAddOns(snapshot.AddOns),
		}
		if err := tx.Create(res).Error; err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}

		decidedAt := s.clock()
		vehicleID := in.VehicleID
		if err := tx.Model(req).Updates(map[string]any{
			"status":         domain.RequestApproved,
			"vehicle_id":     vehicleID,
			"client_id":      cl.ID,
			"reservation_id": res.ID,
			"decided_at":     decidedAt,
		}).Error; err != nil {
			return fmt.Errorf("update rental request: %w", err)
		}
		req.Status = domain.RequestApproved
		req.VehicleID = &vehicleID
		req.ClientID = &cl.ID
		req.ReservationID = &res.ID
		req.DecidedAt = &decidedAt

		out = ApproveResult{Reservation: res, Request: req}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "rental_request.approved", "rental_request", requestID, map[string]any{
		"reservation_id": out.Reservation.ID,
		"vehicle_id":     out.Reservation.VehicleID,
		"client_id":      out.Reservation.ClientID,
	})
	return &out, nil
}

// RejectRequest closes a new request without allocating anything.
func (s *Service) RejectRequest(ctx context.Context, requestID int64, reason string) (*domain.RentalRequest, error) {
	return s.closeRequest(ctx, requestID, domain.RequestRejected, reason)
}

func (s *Service) CancelRequest(ctx context.Context, requestID int64) (*domain.RentalRequest, error) {
	return s.closeRequest(ctx, requestID, domain.RequestCancelled, "")
}

func (s *Service) closeRequest(ctx context.Context, requestID int64, status domain.RequestStatus, reason string) (*domain.RentalRequest, error) {
	var out *domain.RentalRequest
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		req, err := lockRow[domain.RentalRequest](tx, requestID, ErrRequestNotFound)
		if err != nil {
			return err
		}
		switch req.Status {
		case domain.RequestNew:
		case domain.RequestApproved:
			return ErrAlreadyApproved
		default:
			return ErrRequestClosed
		}

		decidedAt := s.clock()
		if err := tx.Model(req).Updates(map[string]any{
			"status":           status,
			"rejection_reason": reason,
			"decided_at":       decidedAt,
		}).Error; err != nil {
			return fmt.Errorf("update rental request: %w", err)
		}
		req.Status = status
		req.RejectionReason = reason
		req.DecidedAt = &decidedAt
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "rental_request."+string(status), "rental_request", requestID, map[string]any{"reason": reason})
	return out, nil
}

func decodeQuote(raw []byte) (*domain.PriceBreakdown, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var b domain.PriceBreakdown
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode quoted price: %w", err)
	}
	return &b, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
