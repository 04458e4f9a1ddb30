package services

import (
	"context"

	"gorm.io/gorm"

	"budgettracker/internal/logger"
	"budgettracker/internal/models"
	"budgettracker/internal/notify"
)

// budgetMonitor publishes an alert when a month's expenses exceed its budget.
type budgetMonitor struct {
	db        *gorm.DB
	publisher notify.Publisher
}

// NewBudgetMonitor creates a BudgetMonitor that reports through publisher.
func NewBudgetMonitor(db *gorm.DB, publisher notify.Publisher) BudgetMonitor {
	return &budgetMonitor{db: db, publisher: publisher}
}

// CheckMonth compares the month's expenses with its budget. Failures are
// logged and never reach the caller.
func (m *budgetMonitor) CheckMonth(ctx context.Context, userID uint, month models.Date) {
	log := logger.Named("budget_monitor")
	start := month.MonthStart()
	db := m.db.WithContext(ctx)

	budget, err := findBudgetForMonth(db, userID, start)
	if err != nil {
		log.Errorw("failed to load budget", "error", err, "user_id", userID, "month", start.String())
		return
	}
	if budget == nil {
		return
	}

	expenses, err := sumTransactions(db, userID, models.TransactionTypeExpense, start, start.MonthEnd())
	if err != nil {
		log.Errorw("failed to total expenses", "error", err, "user_id", userID, "month", start.String())
		return
	}
	if !expenses.GreaterThan(budget.Amount) {
		return
	}

	alert := notify.NewBudgetAlert(userID, start.String(), budget.Amount, expenses.Round(models.MoneyPlaces))
	if err := m.publisher.PublishBudgetAlert(ctx, alert); err != nil {
		log.Warnw("failed to publish budget alert", "error", err, "user_id", userID, "month", start.String())
	}
}
