package services

import (
	"context"

	"github.com/shopspring/decimal"

	"budgettracker/internal/models"
	"budgettracker/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, email, password, firstName, lastName string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	Authenticate(username, password string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// CategoryUpdate holds the category fields to change. Nil fields are left as they are.
type CategoryUpdate struct {
	Name *string
	Type *models.CategoryType
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID uint, name string, categoryType models.CategoryType) (*models.Category, error)
	GetUserCategories(userID uint, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID uint) (*models.Category, error)
	UpdateCategory(userID, categoryID uint, update CategoryUpdate) (*models.Category, error)
	DeleteCategory(userID, categoryID uint) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
// Date bounds are inclusive calendar dates; amount bounds are inclusive.
type TransactionFilter struct {
	StartDate  *models.Date
	EndDate    *models.Date
	Type       *models.TransactionType
	CategoryID *uint
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
}

// TransactionInput holds every field of a transaction for create and full replace.
type TransactionInput struct {
	CategoryID  *uint
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
	Date        models.Date
}

// TransactionUpdate holds the transaction fields to change. Nil fields are
// left as they are; a non-nil CategoryID pointing at nil clears the category.
type TransactionUpdate struct {
	CategoryID  **uint
	Type        *models.TransactionType
	Amount      *decimal.Decimal
	Description *string
	Date        *models.Date
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID uint, input TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID uint, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
}

// BudgetFilter restricts budget listings to a year and optionally a month.
type BudgetFilter struct {
	Year  *int
	Month *int
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID uint, month models.Date, amount decimal.Decimal) (*models.Budget, error)
	GetUserBudgets(userID uint, filter BudgetFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	UpdateBudget(userID, budgetID uint, month *models.Date, amount *decimal.Decimal) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
}

// DashboardServicer computes the monthly summary shown on the dashboard.
type DashboardServicer interface {
	GetSummary(ctx context.Context, userID uint, period Period) (*DashboardSummary, error)
}

// BudgetMonitor checks a month's spending against its budget after expenses change.
type BudgetMonitor interface {
	CheckMonth(ctx context.Context, userID uint, month models.Date)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]any)
}
