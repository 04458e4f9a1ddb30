// Package notify publishes budget notifications to a message broker.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetAlert is emitted when a user's expenses for a month exceed the
// budget set for that month.
type BudgetAlert struct {
	UserID       uint            `json:"user_id"`
	Month        string          `json:"month"`
	BudgetAmount decimal.Decimal `json:"budget_amount"`
	ExpenseTotal decimal.Decimal `json:"expense_total"`
	OverspentBy  decimal.Decimal `json:"overspent_by"`
	Message      string          `json:"message"`
	Timestamp    time.Time       `json:"timestamp"`
}

// NewBudgetAlert builds an alert for the given month (YYYY-MM-DD, first day).
func NewBudgetAlert(userID uint, month string, budget, expenses decimal.Decimal) BudgetAlert {
	over := expenses.Sub(budget)
	return BudgetAlert{
		UserID:       userID,
		Month:        month,
		BudgetAmount: budget,
		ExpenseTotal: expenses,
		OverspentBy:  over,
		Message: fmt.Sprintf("Expenses of %s for %s exceed the budget of %s by %s",
			expenses.StringFixed(2), month[:7], budget.StringFixed(2), over.StringFixed(2)),
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON encodes the alert for publishing.
func (a BudgetAlert) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}
