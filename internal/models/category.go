package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category groups transactions of one type for a single user.
type Category struct {
	Base
	UserID uint         `gorm:"not null;index" json:"-"`
	Name   string       `gorm:"size:100;not null" json:"name"`
	Type   CategoryType `gorm:"size:10;not null" json:"type"`
}
