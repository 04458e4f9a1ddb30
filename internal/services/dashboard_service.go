package services

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
)

//go:generate mockgen -destination=mock_dashboard.go -package=services budgettracker/internal/services DashboardServicer

var hundred = decimal.NewFromInt(100)

// CategoryTotal is the expense total for one category name. A nil name
// groups uncategorised expenses. The category__name key is what the web
// dashboard reads.
type CategoryTotal struct {
	CategoryName *string         `json:"category__name"`
	Total        decimal.Decimal `json:"total"`
}

// DashboardSummary is the monthly overview of a user's finances.
type DashboardSummary struct {
	Month              int             `json:"month"`
	Year               int             `json:"year"`
	IncomeTotal        decimal.Decimal `json:"income_total"`
	ExpenseTotal       decimal.Decimal `json:"expense_total"`
	Balance            decimal.Decimal `json:"balance"`
	BudgetAmount       decimal.Decimal `json:"budget_amount"`
	BudgetRemaining    decimal.Decimal `json:"budget_remaining"`
	BudgetPercentage   float64         `json:"budget_percentage"`
	ExpensesByCategory []CategoryTotal `json:"expenses_by_category"`
}

// dashboardService aggregates transactions and budgets per month.
type dashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db}
}

// GetSummary reads the period's income, expenses, budget and per-category
// expenses concurrently and combines them. It never writes.
func (s *dashboardService) GetSummary(ctx context.Context, userID uint, period Period) (*DashboardSummary, error) {
	start, end := period.Start(), period.End()

	var (
		income, expense decimal.Decimal
		budget          *models.Budget
		byCategory      []CategoryTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		income, err = sumTransactions(s.db.WithContext(gctx), userID, models.TransactionTypeIncome, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		expense, err = sumTransactions(s.db.WithContext(gctx), userID, models.TransactionTypeExpense, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		budget, err = findBudgetForMonth(s.db.WithContext(gctx), userID, start)
		return err
	})
	g.Go(func() error {
		var err error
		byCategory, err = s.expensesByCategory(gctx, userID, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &DashboardSummary{
		Month:              int(period.Month),
		Year:               period.Year,
		IncomeTotal:        income.Round(models.MoneyPlaces),
		ExpenseTotal:       expense.Round(models.MoneyPlaces),
		Balance:            income.Sub(expense).Round(models.MoneyPlaces),
		BudgetAmount:       decimal.Zero,
		BudgetRemaining:    decimal.Zero,
		ExpensesByCategory: byCategory,
	}

	if budget != nil {
		summary.BudgetAmount = budget.Amount.Round(models.MoneyPlaces)
		summary.BudgetRemaining = budget.Amount.Sub(expense).Round(models.MoneyPlaces)
		if budget.Amount.IsPositive() {
			summary.BudgetPercentage = expense.Div(budget.Amount).Mul(hundred).Round(2).InexactFloat64()
		}
	}

	return summary, nil
}

// expensesByCategory groups the period's expenses by category name,
// largest total first. Uncategorised expenses form a group with a nil name.
func (s *dashboardService) expensesByCategory(ctx context.Context, userID uint, start, end models.Date) ([]CategoryTotal, error) {
	var rows []CategoryTotal
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("categories.name AS category_name, COALESCE(SUM(transactions.amount), 0) AS total").
		Joins("LEFT JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.type = ? AND transactions.date >= ? AND transactions.date <= ?",
			userID, models.TransactionTypeExpense, start, end).
		Group("categories.name").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].Total = rows[i].Total.Round(models.MoneyPlaces)
	}
	if rows == nil {
		rows = []CategoryTotal{}
	}
	return rows, nil
}
