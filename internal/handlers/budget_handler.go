package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
	"budgettracker/internal/services"
)

const monthLayout = "2006-01"

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// BudgetRequest is the payload for creating or replacing a budget.
type BudgetRequest struct {
	Month  string           `json:"month" binding:"required" example:"2024-03"`
	Amount *decimal.Decimal `json:"amount" binding:"required" swaggertype:"number"`
}

// PatchBudgetRequest is the payload for a partial budget update.
type PatchBudgetRequest struct {
	Month  *string          `json:"month" example:"2024-03"`
	Amount *decimal.Decimal `json:"amount" swaggertype:"number"`
}

// BudgetResponse wraps a single budget.
type BudgetResponse struct {
	Budget *models.Budget `json:"budget"`
}

// parseMonth accepts YYYY-MM-DD or YYYY-MM and returns the first of that month.
func parseMonth(raw string) (models.Date, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(monthLayout, raw); err == nil {
		return models.DateOf(t), nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, apperrors.WithFields(apperrors.ErrInvalidInput, "Validation failed",
			map[string]string{"month": "Must be a month in YYYY-MM or YYYY-MM-DD format"})
	}
	return d.MonthStart(), nil
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Set the spending limit for a month. Only one budget per month is allowed.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BudgetRequest true "Budget details"
// @Success     201 {object} BudgetResponse "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Budget already exists for the month"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/ [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BudgetRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	month, err := parseMonth(req.Month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.CreateBudget(userID, month, *req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreateBudget, "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"month": budget.Month.String(), "amount": budget.Amount.String()})

	c.JSON(http.StatusCreated, BudgetResponse{Budget: budget})
}

// GetBudgets handles listing budgets for the authenticated user.
// @Summary     Get budgets
// @Description Get a paginated list of budgets, most recent month first
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       year      query int false "Filter by year (1-9999)"
// @Param       month     query int false "Filter by month (1-12); requires year"
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/ [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var filter services.BudgetFilter
	if filter.Year, err = queryInt(c, "year"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.Month, err = queryInt(c, "month"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.Year != nil && (*filter.Year < 1 || *filter.Year > 9999) {
		respondWithError(c, invalidParam("year", "Must be between 1 and 9999"))
		return
	}
	if filter.Month != nil && (*filter.Month < 1 || *filter.Month > 12) {
		respondWithError(c, invalidParam("month", "Must be between 1 and 12"))
		return
	}
	if filter.Month != nil && filter.Year == nil {
		respondWithError(c, invalidParam("year", "Required when month is given"))
		return
	}

	result, err := h.budgetService.GetUserBudgets(userID, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget handles retrieving a specific budget.
// @Summary     Get budget by ID
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} BudgetResponse "Budget details"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/ [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Budget: budget})
}

// ReplaceBudget handles a full budget update.
// @Summary     Replace budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int           true "Budget ID"
// @Param       request body BudgetRequest true "Budget details"
// @Success     200 {object} BudgetResponse "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Budget already exists for the month"
// @Router      /budgets/{id}/ [put]
func (h *BudgetHandler) ReplaceBudget(c *gin.Context) {
	var req BudgetRequest
	h.update(c, &req, func() (*models.Date, *decimal.Decimal, error) {
		month, err := parseMonth(req.Month)
		if err != nil {
			return nil, nil, err
		}
		return &month, req.Amount, nil
	})
}

// UpdateBudget handles a partial budget update.
// @Summary     Update budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                true "Budget ID"
// @Param       request body PatchBudgetRequest true "Fields to change"
// @Success     200 {object} BudgetResponse "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Budget already exists for the month"
// @Router      /budgets/{id}/ [patch]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	var req PatchBudgetRequest
	h.update(c, &req, func() (*models.Date, *decimal.Decimal, error) {
		if req.Month == nil {
			return nil, req.Amount, nil
		}
		month, err := parseMonth(*req.Month)
		if err != nil {
			return nil, nil, err
		}
		return &month, req.Amount, nil
	})
}

func (h *BudgetHandler) update(c *gin.Context, req interface{}, fields func() (*models.Date, *decimal.Decimal, error)) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := bindJSON(c, req); err != nil {
		respondWithError(c, err)
		return
	}

	month, amount, err := fields()
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.UpdateBudget(userID, budgetID, month, amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdateBudget, "budget", budgetID, c.ClientIP(),
		map[string]interface{}{"month": budget.Month.String(), "amount": budget.Amount.String()})

	c.JSON(http.StatusOK, BudgetResponse{Budget: budget})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     204 "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/ [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteBudget, "budget", budgetID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
