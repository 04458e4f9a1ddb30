package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
	"budgettracker/internal/pagination"
	"budgettracker/internal/services"
)

// --- mock budget service ---

type mockBudgetService struct {
	createBudgetFn   func(userID uint, month models.Date, amount decimal.Decimal) (*models.Budget, error)
	getUserBudgetsFn func(userID uint, filter services.BudgetFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	getBudgetByIDFn  func(userID, budgetID uint) (*models.Budget, error)
	updateBudgetFn   func(userID, budgetID uint, month *models.Date, amount *decimal.Decimal) (*models.Budget, error)
	deleteBudgetFn   func(userID, budgetID uint) error
}

func (m *mockBudgetService) CreateBudget(userID uint, month models.Date, amount decimal.Decimal) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(userID, month, amount)
	}
	return &models.Budget{Base: models.Base{ID: 1}, UserID: userID, Month: month, Amount: amount}, nil
}

func (m *mockBudgetService) GetUserBudgets(userID uint, filter services.BudgetFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	if m.getUserBudgetsFn != nil {
		return m.getUserBudgetsFn(userID, filter, page)
	}
	resp := pagination.NewPageResponse([]models.Budget{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockBudgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	if m.getBudgetByIDFn != nil {
		return m.getBudgetByIDFn(userID, budgetID)
	}
	return &models.Budget{Base: models.Base{ID: budgetID}, UserID: userID}, nil
}

func (m *mockBudgetService) UpdateBudget(userID, budgetID uint, month *models.Date, amount *decimal.Decimal) (*models.Budget, error) {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(userID, budgetID, month, amount)
	}
	return &models.Budget{Base: models.Base{ID: budgetID}, UserID: userID}, nil
}

func (m *mockBudgetService) DeleteBudget(userID, budgetID uint) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(userID, budgetID)
	}
	return nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/budgets", handler.CreateBudget)
	auth.GET("/budgets", handler.GetBudgets)
	auth.GET("/budgets/:id", handler.GetBudget)
	auth.PUT("/budgets/:id", handler.ReplaceBudget)
	auth.PATCH("/budgets/:id", handler.UpdateBudget)
	auth.DELETE("/budgets/:id", handler.DeleteBudget)
	return r
}

func TestBudgetHandler_CreateBudget(t *testing.T) {
	months := []struct {
		name  string
		input string
	}{
		{"first of month", "2024-03-01"},
		{"mid month", "2024-03-17"},
		{"year and month", "2024-03"},
	}
	for _, tt := range months {
		t.Run("normalises "+tt.name, func(t *testing.T) {
			var got models.Date
			svc := &mockBudgetService{
				createBudgetFn: func(userID uint, month models.Date, amount decimal.Decimal) (*models.Budget, error) {
					got = month
					return &models.Budget{Base: models.Base{ID: 1}, UserID: userID, Month: month, Amount: amount}, nil
				},
			}
			r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

			rec := doRequest(r, "POST", "/budgets", `{"month":"`+tt.input+`","amount":300}`)

			if rec.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
			}
			if got.String() != "2024-03-01" {
				t.Errorf("expected 2024-03-01, got %s", got)
			}
			budget := parseJSON(t, rec)["budget"].(map[string]interface{})
			if budget["month"] != "2024-03-01" || budget["amount"].(float64) != 300 {
				t.Errorf("unexpected budget: %v", budget)
			}
		})
	}

	t.Run("returns 400 on malformed month", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets", `{"month":"March","amount":300}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorField(t, parseJSON(t, rec), "month")
	})

	t.Run("returns 400 on missing amount", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets", `{"month":"2024-03"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorField(t, parseJSON(t, rec), "amount")
	})

	t.Run("returns 409 on duplicate month", func(t *testing.T) {
		svc := &mockBudgetService{
			createBudgetFn: func(_ uint, _ models.Date, _ decimal.Decimal) (*models.Budget, error) {
				return nil, apperrors.ErrDuplicateBudget
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/budgets", `{"month":"2024-03","amount":300}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_BUDGET")
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := gin.New()
		r.POST("/budgets", handler.CreateBudget)

		rec := doRequest(r, "POST", "/budgets", `{"month":"2024-03","amount":300}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_GetBudgets(t *testing.T) {
	t.Run("passes year and month filters", func(t *testing.T) {
		var got services.BudgetFilter
		svc := &mockBudgetService{
			getUserBudgetsFn: func(_ uint, filter services.BudgetFilter, _ pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
				got = filter
				resp := pagination.NewPageResponse([]models.Budget{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets?year=2024&month=%203%20", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Year == nil || *got.Year != 2024 {
			t.Errorf("expected year 2024, got %v", got.Year)
		}
		if got.Month == nil || *got.Month != 3 {
			t.Errorf("expected month 3, got %v", got.Month)
		}
	})

	t.Run("returns 400 on month out of range", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets?month=13", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorField(t, parseJSON(t, rec), "month")
	})

	t.Run("returns 400 on month without year", func(t *testing.T) {
		called := false
		svc := &mockBudgetService{
			getUserBudgetsFn: func(uint, services.BudgetFilter, pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
				called = true
				return nil, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets?month=3", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorField(t, parseJSON(t, rec), "year")
		if called {
			t.Error("service must not be called with a month-only filter")
		}
	})

	t.Run("returns 400 on year out of range", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets?year=10000", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorField(t, parseJSON(t, rec), "year")
	})

	t.Run("returns 400 on non-numeric year", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets?year=last", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorField(t, parseJSON(t, rec), "year")
	})
}

func TestBudgetHandler_GetBudget(t *testing.T) {
	t.Run("returns 404 for another user's budget", func(t *testing.T) {
		svc := &mockBudgetService{
			getBudgetByIDFn: func(_, _ uint) (*models.Budget, error) {
				return nil, apperrors.ErrBudgetNotFound
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/budgets/8", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})
}

func TestBudgetHandler_UpdateBudget(t *testing.T) {
	t.Run("PATCH amount only", func(t *testing.T) {
		var gotMonth *models.Date
		var gotAmount *decimal.Decimal
		svc := &mockBudgetService{
			updateBudgetFn: func(_, id uint, month *models.Date, amount *decimal.Decimal) (*models.Budget, error) {
				gotMonth, gotAmount = month, amount
				return &models.Budget{Base: models.Base{ID: id}, Amount: *amount}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PATCH", "/budgets/2", `{"amount":"450.25"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotMonth != nil {
			t.Errorf("expected month unchanged, got %v", gotMonth)
		}
		if gotAmount == nil || gotAmount.String() != "450.25" {
			t.Errorf("expected amount 450.25, got %v", gotAmount)
		}
	})

	t.Run("PUT normalises the month", func(t *testing.T) {
		var gotMonth *models.Date
		svc := &mockBudgetService{
			updateBudgetFn: func(_, id uint, month *models.Date, amount *decimal.Decimal) (*models.Budget, error) {
				gotMonth = month
				return &models.Budget{Base: models.Base{ID: id}, Month: *month, Amount: *amount}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/budgets/2", `{"month":"2024-04-20","amount":100}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotMonth == nil || gotMonth.String() != "2024-04-01" {
			t.Errorf("expected 2024-04-01, got %v", gotMonth)
		}
	})

	t.Run("PATCH rejects a malformed month", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "PATCH", "/budgets/2", `{"month":"04/2024"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorField(t, parseJSON(t, rec), "month")
	})

	t.Run("returns 409 when moving onto a taken month", func(t *testing.T) {
		svc := &mockBudgetService{
			updateBudgetFn: func(_, _ uint, _ *models.Date, _ *decimal.Decimal) (*models.Budget, error) {
				return nil, apperrors.ErrDuplicateBudget
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PATCH", "/budgets/2", `{"month":"2024-05"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_DeleteBudget(t *testing.T) {
	t.Run("returns 204 on success", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/budgets/1", "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/budgets/0", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
