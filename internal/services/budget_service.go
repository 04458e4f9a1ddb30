package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
	"budgettracker/internal/pagination"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

func validateBudgetAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.WithFields(apperrors.ErrInvalidInput, "Validation failed",
			map[string]string{"amount": "Must be greater than or equal to 0"})
	}
	return nil
}

// monthTaken reports whether the user already has another budget for month.
func (s *budgetService) monthTaken(userID uint, month models.Date, exceptID uint) (bool, error) {
	var count int64
	q := s.db.Model(&models.Budget{}).Where("user_id = ? AND month = ?", userID, month)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateBudget creates the user's budget for a month. The month is
// normalised to its first day.
func (s *budgetService) CreateBudget(userID uint, month models.Date, amount decimal.Decimal) (*models.Budget, error) {
	if err := validateBudgetAmount(amount); err != nil {
		return nil, err
	}
	month = month.MonthStart()

	taken, err := s.monthTaken(userID, month, 0)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if taken {
		return nil, apperrors.ErrDuplicateBudget
	}

	budget := &models.Budget{
		UserID: userID,
		Month:  month,
		Amount: amount.Round(models.MoneyPlaces),
	}
	if err := s.db.Create(budget).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateBudget
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// GetUserBudgets returns a page of the user's budgets, newest month first.
func (s *budgetService) GetUserBudgets(
	userID uint,
	filter BudgetFilter,
	page pagination.PageRequest,
) (*pagination.PageResponse[models.Budget], error) {
	if filter.Month != nil && filter.Year == nil {
		return nil, apperrors.WithFields(apperrors.ErrInvalidInput, "Invalid budget filter",
			map[string]string{"year": "Required when month is given"})
	}

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	switch {
	case filter.Year != nil && filter.Month != nil:
		base = base.Where("month = ?", models.NewDate(*filter.Year, time.Month(*filter.Month), 1))
	case filter.Year != nil:
		base = base.Where("month >= ? AND month <= ?",
			models.NewDate(*filter.Year, time.January, 1), models.NewDate(*filter.Year, time.December, 1))
	}

	result, err := pagination.List[models.Budget](base, page, "month DESC, id DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget changes a budget's month and/or amount.
func (s *budgetService) UpdateBudget(userID, budgetID uint, month *models.Date, amount *decimal.Decimal) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if amount != nil {
		if err := validateBudgetAmount(*amount); err != nil {
			return nil, err
		}
		updates["amount"] = amount.Round(models.MoneyPlaces)
	}
	if month != nil {
		start := month.MonthStart()
		taken, err := s.monthTaken(userID, start, budget.ID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if taken {
			return nil, apperrors.ErrDuplicateBudget
		}
		updates["month"] = start
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.ErrDuplicateBudget
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetBudgetByID(userID, budgetID)
}

// DeleteBudget permanently deletes a budget so its month can be budgeted again.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	result := s.db.Unscoped().Where("id = ? AND user_id = ?", budgetID, userID).Delete(&models.Budget{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrBudgetNotFound
	}
	return nil
}
