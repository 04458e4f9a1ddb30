package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/services"
)

func setupDashboardRouter(handler *DashboardHandler) *gin.Engine {
	r := gin.New()
	r.GET("/dashboard", injectUserID(1), handler.GetDashboard)
	return r
}

func newDashboardHandler(t *testing.T) (*DashboardHandler, *services.MockDashboardServicer) {
	t.Helper()
	svc := services.NewMockDashboardServicer(gomock.NewController(t))
	handler := NewDashboardHandler(svc)
	handler.now = func() time.Time { return time.Date(2024, time.June, 15, 23, 0, 0, 0, time.UTC) }
	return handler, svc
}

func TestDashboardHandler_GetDashboard(t *testing.T) {
	t.Run("returns the summary for the requested month", func(t *testing.T) {
		handler, svc := newDashboardHandler(t)
		food := "Food"
		svc.EXPECT().
			GetSummary(gomock.Any(), uint(1), services.Period{Year: 2024, Month: time.March}).
			Return(&services.DashboardSummary{
				Month:            3,
				Year:             2024,
				IncomeTotal:      decimal.NewFromInt(1000),
				ExpenseTotal:     decimal.NewFromInt(280),
				Balance:          decimal.NewFromInt(720),
				BudgetAmount:     decimal.NewFromInt(300),
				BudgetRemaining:  decimal.NewFromInt(20),
				BudgetPercentage: 93.33,
				ExpensesByCategory: []services.CategoryTotal{
					{CategoryName: &food, Total: decimal.NewFromInt(250)},
					{CategoryName: nil, Total: decimal.NewFromInt(30)},
				},
			}, nil)

		rec := doRequest(setupDashboardRouter(handler), "GET", "/dashboard?month=3&year=2024", "")

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		result := parseJSON(t, rec)
		assert.Equal(t, 1000.0, result["income_total"])
		assert.Equal(t, 280.0, result["expense_total"])
		assert.Equal(t, 720.0, result["balance"])
		assert.Equal(t, 300.0, result["budget_amount"])
		assert.Equal(t, 20.0, result["budget_remaining"])
		assert.InDelta(t, 93.33, result["budget_percentage"], 0.001)

		byCategory := result["expenses_by_category"].([]interface{})
		require.Len(t, byCategory, 2)
		assert.Equal(t, "Food", byCategory[0].(map[string]interface{})["category__name"])
		assert.Contains(t, byCategory[1].(map[string]interface{}), "category__name")
		assert.Nil(t, byCategory[1].(map[string]interface{})["category__name"])
	})

	t.Run("defaults to the current UTC month", func(t *testing.T) {
		handler, svc := newDashboardHandler(t)
		svc.EXPECT().
			GetSummary(gomock.Any(), uint(1), services.Period{Year: 2024, Month: time.June}).
			Return(&services.DashboardSummary{Month: 6, Year: 2024}, nil)

		rec := doRequest(setupDashboardRouter(handler), "GET", "/dashboard", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("defaults only the missing parameter", func(t *testing.T) {
		handler, svc := newDashboardHandler(t)
		svc.EXPECT().
			GetSummary(gomock.Any(), uint(1), services.Period{Year: 2024, Month: time.January}).
			Return(&services.DashboardSummary{Month: 1, Year: 2024}, nil)

		rec := doRequest(setupDashboardRouter(handler), "GET", "/dashboard?month=%201%20", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	invalid := []struct {
		name  string
		query string
		field string
	}{
		{"month thirteen", "month=13&year=2024", "month"},
		{"month zero", "month=0", "month"},
		{"month text", "month=march", "month"},
		{"year zero", "year=0", "year"},
		{"year too large", "year=10000", "year"},
		{"year text", "year=twenty", "year"},
	}
	for _, tt := range invalid {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			handler, _ := newDashboardHandler(t)

			rec := doRequest(setupDashboardRouter(handler), "GET", "/dashboard?"+tt.query, "")

			require.Equal(t, http.StatusBadRequest, rec.Code)
			result := parseJSON(t, rec)
			assertErrorCode(t, result, "INVALID_INPUT")
			assertErrorField(t, result, tt.field)
		})
	}

	t.Run("returns 500 without leaking the cause", func(t *testing.T) {
		handler, svc := newDashboardHandler(t)
		svc.EXPECT().
			GetSummary(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, apperrors.Wrap(apperrors.ErrInternalServer, assert.AnError))

		rec := doRequest(setupDashboardRouter(handler), "GET", "/dashboard", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler, _ := newDashboardHandler(t)
		r := gin.New()
		r.GET("/dashboard", handler.GetDashboard)

		rec := doRequest(r, "GET", "/dashboard", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
