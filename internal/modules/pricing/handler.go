package pricing

import (
	"net/http"

	"carrental/internal/pkg/response"
	"carrental/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db   *gorm.DB
	calc *Calculator
}

func NewHandler(db *gorm.DB, calc *Calculator) *Handler {
	return &Handler{db: db, calc: calc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/pricing/calculate", h.Calculate)
}

func (h *Handler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := validator.Struct(req); err != nil {
		response.FromError(c, err)
		return
	}

	breakdown, err := h.calc.Calculate(c.Request.Context(), h.db, req.Quote())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, breakdown)
}
