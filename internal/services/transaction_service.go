package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
	"budgettracker/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db      *gorm.DB
	monitor BudgetMonitor
}

// NewTransactionService creates a new TransactionServicer. The monitor is
// consulted after every expense write; it may be nil.
func NewTransactionService(db *gorm.DB, monitor BudgetMonitor) TransactionServicer {
	return &transactionService{db: db, monitor: monitor}
}

// withCategory preloads the category, including soft-deleted ones, so the
// transaction can report its category name.
func withCategory(db *gorm.DB) *gorm.DB {
	return db.Preload("Category", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.WithFields(apperrors.ErrInvalidInput, "Validation failed",
			map[string]string{"amount": "Must be greater than or equal to 0"})
	}
	return nil
}

// CreateTransaction records a new income or expense for the user.
func (s *transactionService) CreateTransaction(ctx context.Context, userID uint, input TransactionInput) (*models.Transaction, error) {
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if input.CategoryID != nil {
		if err := ensureCategoryOwned(s.db, userID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	transaction := &models.Transaction{
		UserID:      userID,
		CategoryID:  input.CategoryID,
		Type:        input.Type,
		Amount:      input.Amount.Round(models.MoneyPlaces),
		Description: input.Description,
		Date:        input.Date,
	}
	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.afterWrite(ctx, transaction)
	return s.GetTransactionByID(userID, transaction.ID)
}

// GetUserTransactions returns a filtered page of the user's transactions,
// most recent first.
func (s *transactionService) GetUserTransactions(
	userID uint,
	page pagination.PageRequest,
	filter TransactionFilter,
) (*pagination.PageResponse[models.Transaction], error) {
	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	result, err := pagination.List[models.Transaction](base, page, "date DESC, id DESC", withCategory)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.StartDate != nil {
		q = q.Where("date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("date <= ?", *f.EndDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetTransactionByID returns a transaction by ID if it belongs to the user.
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := withCategory(s.db).
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction changes the given fields of a transaction.
func (s *transactionService) UpdateTransaction(
	ctx context.Context,
	userID, transactionID uint,
	update TransactionUpdate,
) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Amount != nil {
		if err := validateAmount(*update.Amount); err != nil {
			return nil, err
		}
		updates["amount"] = update.Amount.Round(models.MoneyPlaces)
	}
	if update.CategoryID != nil {
		categoryID := *update.CategoryID
		if categoryID != nil {
			if err := ensureCategoryOwned(s.db, userID, *categoryID); err != nil {
				return nil, err
			}
		}
		updates["category_id"] = categoryID
	}
	if update.Type != nil {
		updates["type"] = *update.Type
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Date != nil {
		updates["date"] = *update.Date
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Transaction{}).
			Where("id = ? AND user_id = ?", transaction.ID, userID).
			Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	updated, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, updated)
	return updated, nil
}

// DeleteTransaction soft-deletes a transaction.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", transactionID, userID).Delete(&models.Transaction{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

func (s *transactionService) afterWrite(ctx context.Context, transaction *models.Transaction) {
	if s.monitor == nil || transaction.Type != models.TransactionTypeExpense {
		return
	}
	s.monitor.CheckMonth(ctx, transaction.UserID, transaction.Date)
}
