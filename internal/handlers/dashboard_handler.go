package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/services"
)

// DashboardHandler serves the monthly summary.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
	now              func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, now: time.Now}
}

// GetDashboard returns the summary for a month
// @Summary     Monthly dashboard
// @Description Income, expenses, balance, budget usage and expenses by category for one month.
// @Description month and year default to the current UTC month.
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       month query int false "Month (1-12)"
// @Param       year  query int false "Year (1-9999)"
// @Success     200 {object} services.DashboardSummary "Monthly summary"
// @Failure     400 {object} ErrorResponse "Invalid month or year"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/ [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	period, err := h.parsePeriod(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.dashboardService.GetSummary(c.Request.Context(), userID, period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// parsePeriod reads the month and year query parameters, falling back to
// the current month for whichever is missing.
func (h *DashboardHandler) parsePeriod(c *gin.Context) (services.Period, error) {
	current := services.CurrentPeriod(h.now())
	month, year := int(current.Month), current.Year

	fields := map[string]string{}
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			fields["month"] = "Must be an integer"
		}
		month = v
	}
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			fields["year"] = "Must be an integer"
		}
		year = v
	}
	if len(fields) > 0 {
		return services.Period{}, apperrors.WithFields(apperrors.ErrInvalidInput, "Invalid period", fields)
	}

	return services.NewPeriod(year, month)
}
