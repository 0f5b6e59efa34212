package availability

import (
	"net/http"
	"strconv"
	"time"

	"carrental/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db       *gorm.DB
	detector *Detector
}

func NewHandler(db *gorm.DB, detector *Detector) *Handler {
	return &Handler{db: db, detector: detector}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/vehicles/:id/availability", h.GetAvailability)
}

// GetAvailability answers GET /vehicles/:id/availability?from=...&to=...
// with RFC 3339 timestamps or plain dates.
func (h *Handler) GetAvailability(c *gin.Context) {
	vehicleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || vehicleID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid vehicle id")
		return
	}

	from, errFrom := parseTime(c.Query("from"))
	to, errTo := parseTime(c.Query("to"))
	if errFrom != nil || errTo != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "from and to must be RFC 3339 timestamps or YYYY-MM-DD dates")
		return
	}

	res, err := h.detector.Check(c.Request.Context(), h.db, vehicleID, from, to, Exclusions{})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"available": res.Available,
		"conflicts": res.Conflicts,
		"message":   FormatConflicts(res.Conflicts),
	})
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
