package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction represents a dated income or expense entry.
type Transaction struct {
	Base
	UserID       uint            `gorm:"not null;index:idx_transactions_user_date" json:"-"`
	CategoryID   *uint           `gorm:"index" json:"category"`
	CategoryName *string         `gorm:"-" json:"category_name"`
	Type         TransactionType `gorm:"size:10;not null" json:"type"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description  string          `json:"description"`
	Date         Date            `gorm:"not null;index:idx_transactions_user_date" json:"date"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"-"`
}

// AfterFind exposes the name of a preloaded category.
func (t *Transaction) AfterFind(_ *gorm.DB) error {
	if t.Category != nil {
		name := t.Category.Name
		t.CategoryName = &name
	}
	return nil
}
