package fines

import (
	"context"
	"net/http"
	"strconv"

	"carrental/internal/modules/audit"
	"carrental/internal/pkg/response"
	"carrental/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type PayRequest struct {
	AccountID int64 `json:"account_id" binding:"required" validate:"gt=0"`
}

type DeleteRequest struct {
	Note string `json:"note" validate:"max=500"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/fines/:id", h.Get)
	rg.GET("/rental/:id/fines", h.ListByRental)
	rg.POST("/fines/:id/pay", h.Pay)
	rg.DELETE("/fines/:id", h.Delete)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	fine, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"fine": fine})
}

func (h *Handler) ListByRental(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	list, err := h.service.ListByRental(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"fines": list})
}

func (h *Handler) Pay(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := validator.Struct(&req); err != nil {
		response.FromError(c, err)
		return
	}

	fine, err := h.service.Pay(actorContext(c), id, req.AccountID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"fine": fine})
}

// Delete takes the void note from the body or the ?note= query parameter.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req DeleteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}
	if req.Note == "" {
		req.Note = c.Query("note")
	}

	deleted, err := h.service.Delete(actorContext(c), id, req.Note)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": deleted, "voided": !deleted})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return 0, false
	}
	return id, true
}

func actorContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if actorID := c.GetInt64("actor_id"); actorID != 0 {
		ctx = audit.WithActor(ctx, actorID)
	}
	return ctx
}
