package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
)

// sumTransactions totals a user's transactions of one type dated in [start, end].
func sumTransactions(db *gorm.DB, userID uint, txType models.TransactionType, start, end models.Date) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND type = ? AND date >= ? AND date <= ?", userID, txType, start, end).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// findBudgetForMonth returns the user's budget for the month starting at
// month, or nil when none exists.
func findBudgetForMonth(db *gorm.DB, userID uint, month models.Date) (*models.Budget, error) {
	var budget models.Budget
	err := db.Where("user_id = ? AND month = ?", userID, month.MonthStart()).First(&budget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// ensureCategoryOwned verifies a category exists and belongs to the user.
func ensureCategoryOwned(db *gorm.DB, userID, categoryID uint) error {
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ? AND user_id = ?", categoryID, userID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}
