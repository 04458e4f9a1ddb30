package models

import "github.com/shopspring/decimal"

// Budget is a user's spending limit for one calendar month. Month is
// always the first day of that month.
type Budget struct {
	Base
	UserID uint            `gorm:"not null;uniqueIndex:idx_budgets_user_month" json:"-"`
	Month  Date            `gorm:"not null;uniqueIndex:idx_budgets_user_month" json:"month"`
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
}
