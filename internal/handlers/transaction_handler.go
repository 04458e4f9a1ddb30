package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"budgettracker/internal/models"
	"budgettracker/internal/services"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// TransactionRequest is the payload for creating or replacing a transaction.
// Amount accepts a JSON number or a decimal string.
type TransactionRequest struct {
	Amount      *decimal.Decimal       `json:"amount" binding:"required" swaggertype:"number"`
	Type        models.TransactionType `json:"type" binding:"required,transaction_type"`
	Date        *models.Date           `json:"date" binding:"required" swaggertype:"string" example:"2024-03-05"`
	Category    *uint                  `json:"category"`
	Description string                 `json:"description" binding:"max=255"`
}

// PatchTransactionRequest is the payload for a partial transaction update.
// An explicit "category": null removes the category.
type PatchTransactionRequest struct {
	Amount      *decimal.Decimal        `json:"amount" swaggertype:"number"`
	Type        *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Date        *models.Date            `json:"date" swaggertype:"string" example:"2024-03-05"`
	Category    nullableID              `json:"category" swaggertype:"integer"`
	Description *string                 `json:"description" binding:"omitempty,max=255"`
}

// nullableID records whether a JSON field was present, and whether it was null.
type nullableID struct {
	Set bool
	ID  *uint
}

// UnmarshalJSON implements json.Unmarshaler. It is also called for null.
func (n *nullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.ID = nil
		return nil
	}
	var id uint
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	n.ID = &id
	return nil
}

// TransactionResponse wraps a single transaction.
type TransactionResponse struct {
	Transaction *models.Transaction `json:"transaction"`
}

func (r TransactionRequest) input() services.TransactionInput {
	return services.TransactionInput{
		CategoryID:  r.Category,
		Type:        r.Type,
		Amount:      *r.Amount,
		Description: strings.TrimSpace(r.Description),
		Date:        *r.Date,
	}
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record an income or expense
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} TransactionResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/ [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreateTransaction, "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"type": transaction.Type, "amount": transaction.Amount.String(), "date": transaction.Date.String()})

	c.JSON(http.StatusCreated, TransactionResponse{Transaction: transaction})
}

// GetTransactions lists the user's transactions
// @Summary     List transactions
// @Description Get a filtered, paginated list of transactions, newest first
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       type       query string false "Filter by type (income/expense)"
// @Param       category   query int    false "Filter by category ID"
// @Param       start_date query string false "Earliest date, inclusive (YYYY-MM-DD)"
// @Param       end_date   query string false "Latest date, inclusive (YYYY-MM-DD)"
// @Param       min_amount query number false "Minimum amount, inclusive"
// @Param       max_amount query number false "Maximum amount, inclusive"
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/ [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
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

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var (
		filter services.TransactionFilter
		err    error
	)

	if v := strings.TrimSpace(c.Query("type")); v != "" {
		t := models.TransactionType(v)
		if t != models.TransactionTypeIncome && t != models.TransactionTypeExpense {
			return filter, invalidParam("type", "Must be one of: income, expense")
		}
		filter.Type = &t
	}
	if filter.CategoryID, err = queryID(c, "category"); err != nil {
		return filter, err
	}
	if filter.StartDate, err = queryDate(c, "start_date"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = queryDate(c, "end_date"); err != nil {
		return filter, err
	}
	if filter.MinAmount, err = queryDecimal(c, "min_amount"); err != nil {
		return filter, err
	}
	if filter.MaxAmount, err = queryDecimal(c, "max_amount"); err != nil {
		return filter, err
	}
	return filter, nil
}

// GetTransaction returns a single transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} TransactionResponse "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/ [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{Transaction: transaction})
}

// ReplaceTransaction handles a full transaction update
// @Summary     Replace transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                true "Transaction ID"
// @Param       request body TransactionRequest true "Transaction details"
// @Success     200 {object} TransactionResponse "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction or category not found"
// @Router      /transactions/{id}/ [put]
func (h *TransactionHandler) ReplaceTransaction(c *gin.Context) {
	var req TransactionRequest
	h.update(c, &req, func() services.TransactionUpdate {
		in := req.input()
		category := in.CategoryID
		return services.TransactionUpdate{
			CategoryID:  &category,
			Type:        &in.Type,
			Amount:      &in.Amount,
			Description: &in.Description,
			Date:        &in.Date,
		}
	})
}

// UpdateTransaction handles a partial transaction update
// @Summary     Update transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                     true "Transaction ID"
// @Param       request body PatchTransactionRequest true "Fields to change"
// @Success     200 {object} TransactionResponse "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction or category not found"
// @Router      /transactions/{id}/ [patch]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var req PatchTransactionRequest
	h.update(c, &req, func() services.TransactionUpdate {
		update := services.TransactionUpdate{
			Type:   req.Type,
			Amount: req.Amount,
			Date:   req.Date,
		}
		if req.Category.Set {
			update.CategoryID = &req.Category.ID
		}
		if req.Description != nil {
			d := strings.TrimSpace(*req.Description)
			update.Description = &d
		}
		return update
	})
}

func (h *TransactionHandler) update(c *gin.Context, req interface{}, toUpdate func() services.TransactionUpdate) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := bindJSON(c, req); err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, transactionID, toUpdate())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdateTransaction, "transaction", transactionID, c.ClientIP(),
		map[string]interface{}{"type": transaction.Type, "amount": transaction.Amount.String(), "date": transaction.Date.String()})

	c.JSON(http.StatusOK, TransactionResponse{Transaction: transaction})
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     204 "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/ [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteTransaction, "transaction", transactionID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
