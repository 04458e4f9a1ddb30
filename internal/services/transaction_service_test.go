package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"budgettracker/internal/models"
	"budgettracker/internal/pagination"
	"budgettracker/internal/testutil"
)

// recordingMonitor captures CheckMonth calls.
type recordingMonitor struct {
	mu     sync.Mutex
	months []string
}

func (m *recordingMonitor) CheckMonth(_ context.Context, _ uint, month models.Date) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.months = append(m.months, month.String())
}

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	testutil.AssertNoError(t, err)
	return d
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateTransaction(t *testing.T) {
	t.Run("with_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		monitor := &recordingMonitor{}
		svc := NewTransactionService(db, monitor)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategoryNamed(t, db, user.ID, "Food", models.CategoryTypeExpense)

		tx, err := svc.CreateTransaction(context.Background(), user.ID, TransactionInput{
			CategoryID:  &cat.ID,
			Type:        models.TransactionTypeExpense,
			Amount:      decimal.RequireFromString("19.999"),
			Description: "Lunch",
			Date:        mustDate(t, "2024-03-10"),
		})
		testutil.AssertNoError(t, err)

		if tx.ID == 0 {
			t.Fatal("expected non-zero ID")
		}
		testutil.AssertDecimal(t, "amount", tx.Amount, "20")
		if tx.CategoryName == nil || *tx.CategoryName != "Food" {
			t.Errorf("expected category_name Food, got %v", tx.CategoryName)
		}
		if len(monitor.months) != 1 || monitor.months[0] != "2024-03-10" {
			t.Errorf("expected monitor check for 2024-03-10, got %v", monitor.months)
		}
	})

	t.Run("income_skips_monitor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		monitor := &recordingMonitor{}
		svc := NewTransactionService(db, monitor)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(context.Background(), user.ID, TransactionInput{
			Type:   models.TransactionTypeIncome,
			Amount: decimal.NewFromInt(1000),
			Date:   mustDate(t, "2024-03-05"),
		})
		testutil.AssertNoError(t, err)

		if tx.CategoryID != nil || tx.CategoryName != nil {
			t.Errorf("expected no category, got %v / %v", tx.CategoryID, tx.CategoryName)
		}
		if len(monitor.months) != 0 {
			t.Errorf("monitor should not run for income, got %v", monitor.months)
		}
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(context.Background(), user.ID, TransactionInput{
			Type:   models.TransactionTypeExpense,
			Amount: decimal.NewFromInt(-5),
			Date:   mustDate(t, "2024-03-05"),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("other_users_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)

		_, err := svc.CreateTransaction(context.Background(), user.ID, TransactionInput{
			CategoryID: &cat.ID,
			Type:       models.TransactionTypeExpense,
			Amount:     decimal.NewFromInt(5),
			Date:       mustDate(t, "2024-03-05"),
		})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestGetUserTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, nil)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

	testutil.CreateTestTransaction(t, db, user.ID, nil, models.TransactionTypeIncome, "1000", "2024-03-05")
	testutil.CreateTestTransaction(t, db, user.ID, &food.ID, models.TransactionTypeExpense, "200", "2024-03-10")
	testutil.CreateTestTransaction(t, db, user.ID, &food.ID, models.TransactionTypeExpense, "50", "2024-03-20")
	testutil.CreateTestTransaction(t, db, user.ID, nil, models.TransactionTypeExpense, "30", "2024-03-12")
	testutil.CreateTestTransaction(t, db, other.ID, nil, models.TransactionTypeExpense, "75", "2024-03-12")

	expense := models.TransactionType("expense")
	start := mustDate(t, "2024-03-10")
	end := mustDate(t, "2024-03-12")

	tests := []struct {
		name   string
		filter TransactionFilter
		want   []string
	}{
		{name: "all newest first", filter: TransactionFilter{}, want: []string{"50", "30", "200", "1000"}},
		{name: "type", filter: TransactionFilter{Type: &expense}, want: []string{"50", "30", "200"}},
		{name: "category", filter: TransactionFilter{CategoryID: &food.ID}, want: []string{"50", "200"}},
		{name: "inclusive date range", filter: TransactionFilter{StartDate: &start, EndDate: &end}, want: []string{"30", "200"}},
		{name: "amount range", filter: TransactionFilter{MinAmount: decimalPtr("30"), MaxAmount: decimalPtr("200")}, want: []string{"50", "30", "200"}},
		{name: "min only", filter: TransactionFilter{MinAmount: decimalPtr("200.01")}, want: []string{"1000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, tt.filter)
			testutil.AssertNoError(t, err)

			if len(result.Data) != len(tt.want) {
				t.Fatalf("expected %d transactions, got %d", len(tt.want), len(result.Data))
			}
			for i, tx := range result.Data {
				testutil.AssertDecimal(t, "amount", tx.Amount, tt.want[i])
			}
			if result.TotalItems != int64(len(tt.want)) {
				t.Errorf("expected total %d, got %d", len(tt.want), result.TotalItems)
			}
		})
	}
}

func TestGetTransactionByID_OtherUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, nil)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	tx := testutil.CreateTestTransaction(t, db, other.ID, nil, models.TransactionTypeIncome, "10", "2024-03-05")

	_, err := svc.GetTransactionByID(user.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("partial_update_and_clear_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		monitor := &recordingMonitor{}
		svc := NewTransactionService(db, monitor)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		tx := testutil.CreateTestTransaction(t, db, user.ID, &cat.ID, models.TransactionTypeExpense, "10", "2024-03-05")

		var noCategory *uint
		description := "Corrected"
		newDate := mustDate(t, "2024-04-02")
		updated, err := svc.UpdateTransaction(context.Background(), user.ID, tx.ID, TransactionUpdate{
			CategoryID:  &noCategory,
			Amount:      decimalPtr("12.34"),
			Description: &description,
			Date:        &newDate,
		})
		testutil.AssertNoError(t, err)

		if updated.CategoryID != nil || updated.CategoryName != nil {
			t.Errorf("expected category cleared, got %v", updated.CategoryID)
		}
		testutil.AssertDecimal(t, "amount", updated.Amount, "12.34")
		if updated.Description != "Corrected" || updated.Date.String() != "2024-04-02" {
			t.Errorf("unexpected update result %+v", updated)
		}
		if updated.Type != models.TransactionTypeExpense {
			t.Errorf("type should be unchanged, got %s", updated.Type)
		}
		if len(monitor.months) != 1 || monitor.months[0] != "2024-04-02" {
			t.Errorf("expected monitor check for the new date, got %v", monitor.months)
		}
	})

	t.Run("other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, other.ID, nil, models.TransactionTypeIncome, "10", "2024-03-05")

		_, err := svc.UpdateTransaction(context.Background(), user.ID, tx.ID, TransactionUpdate{Amount: decimalPtr("1")})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

		unchanged, err := svc.GetTransactionByID(other.ID, tx.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "amount", unchanged.Amount, "10")
	})
}

func TestDeleteTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, nil)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	tx := testutil.CreateTestTransaction(t, db, user.ID, nil, models.TransactionTypeIncome, "10", "2024-03-05")

	testutil.AssertAppError(t, svc.DeleteTransaction(other.ID, tx.ID), "TRANSACTION_NOT_FOUND")
	testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, tx.ID))

	_, err := svc.GetTransactionByID(user.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	testutil.AssertAppError(t, svc.DeleteTransaction(user.ID, tx.ID), "TRANSACTION_NOT_FOUND")
}
