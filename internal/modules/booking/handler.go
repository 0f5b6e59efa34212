package booking

import (
	"context"
	"net/http"
	"strconv"

	"carrental/internal/modules/audit"
	"carrental/internal/pkg/response"
	"carrental/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes exposes lead intake to unauthenticated callers.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/rental-requests", h.CreateRequest)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rental-request/:id", h.GetRequest)
	rg.POST("/rental-request/:id/approve", h.Approve)
	rg.POST("/rental-request/:id/reject", h.RejectRequest)
	rg.POST("/rental-request/:id/cancel", h.CancelRequest)

	rg.POST("/reservations", h.CreateReservation)
	rg.GET("/reservation/:id", h.GetReservation)
	rg.PATCH("/reservation/:id/dates", h.UpdateReservationDates)
	rg.POST("/reservation/:id/pickup", h.Pickup)
	rg.POST("/reservation/:id/cancel", h.CancelReservation)
	rg.POST("/reservation/:id/no-show", h.MarkNoShow)
	rg.POST("/reservation/:id/reactivate", h.Reactivate)

	rg.GET("/rental/:id", h.GetRental)
	rg.POST("/rental/:id/complete", h.Complete)
	rg.POST("/rental/:id/cancel", h.CancelRental)
	rg.POST("/rental/:id/extend", h.Extend)
}

func (h *Handler) CreateRequest(c *gin.Context) {
	var req CreateRequestRequest
	if !bind(c, &req) {
		return
	}

	out, err := h.service.CreateRequest(requestContext(c), req.Input())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"request": out})
}

func (h *Handler) GetRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	out, err := h.service.GetRequest(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": out})
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ApproveRequest
	if !bind(c, &req) {
		return
	}

	out, err := h.service.Approve(requestContext(c), id, req.Input())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) RejectRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ReasonRequest
	if !bindOptional(c, &req) {
		return
	}

	out, err := h.service.RejectRequest(requestContext(c), id, req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": out})
}

func (h *Handler) CancelRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	out, err := h.service.CancelRequest(requestContext(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": out})
}

func (h *Handler) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if !bind(c, &req) {
		return
	}

	out, err := h.service.CreateReservation(requestContext(c), req.Input())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"reservation": out})
}

func (h *Handler) GetReservation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	out, err := h.service.GetReservation(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": out})
}

func (h *Handler) UpdateReservationDates(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateDatesRequest
	if !bind(c, &req) {
		return
	}

	out, err := h.service.UpdateReservationDates(requestContext(c), id, req.PickupDate, req.ReturnDate)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": out})
}

func (h *Handler) Pickup(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req PickupRequest
	if !bindOptional(c, &req) {
		return
	}

	out, err := h.service.Pickup(requestContext(c), id, PickupInput{
		Odometer:         req.Odometer,
		ContractNumber:   req.ContractNumber,
		DepositAccountID: req.DepositAccountID,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) CancelReservation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ReasonRequest
	if !bindOptional(c, &req) {
		return
	}

	out, err := h.service.CancelReservation(requestContext(c), id, req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": out})
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	out, err := h.service.MarkNoShow(requestContext(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": out})
}

func (h *Handler) Reactivate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	out, err := h.service.Reactivate(requestContext(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": out})
}

func (h *Handler) GetRental(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	out, err := h.service.GetRental(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rental": out})
}

func (h *Handler) Complete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CompleteRequest
	if !bindOptional(c, &req) {
		return
	}

	out, err := h.service.Complete(requestContext(c), id, CompleteInput{
		ReturnOdometer:   req.ReturnOdometer,
		ActualReturnDate: req.ActualReturnDate,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) CancelRental(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CancelRentalRequest
	if !bind(c, &req) {
		return
	}

	out, err := h.service.CancelRental(requestContext(c), id, CancelRentalInput{
		Reason:           req.Reason,
		DepositAccountID: req.DepositAccountID,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rental": out})
}

func (h *Handler) Extend(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ExtendRequest
	if !bind(c, &req) {
		return
	}

	rental, ext, err := h.service.Extend(requestContext(c), id, ExtendInput{
		NewReturnDate: req.NewReturnDate,
		Reason:        req.Reason,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rental": rental, "extension": ext})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return 0, false
	}
	return id, true
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return false
	}
	if err := validator.Struct(dst); err != nil {
		response.FromError(c, err)
		return false
	}
	return true
}

// bindOptional accepts an empty body for endpoints whose fields are all
// optional.
func bindOptional(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bind(c, dst)
}

// requestContext carries the authenticated actor into audit events.
func requestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if actorID := c.GetInt64("actor_id"); actorID != 0 {
		ctx = audit.WithActor(ctx, actorID)
	}
	return ctx
}
