package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"flowtrack/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a zero budget, a hashed password and
// a unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithBudget(t, db, "0")
}

// CreateTestUserWithBudget creates a user whose budget is the given amount.
func CreateTestUserWithBudget(t *testing.T, db *gorm.DB, budget string) *models.User {
	t.Helper()
	return CreateTestUserWithEmail(t, db, fmt.Sprintf("user%d@test.com", nextID()), budget)
}

// CreateTestUserWithEmail creates a user with the given email whose budget
// and opening budget are both the given amount, like a fresh registration.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email, budget string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	opening := decimal.RequireFromString(budget)
	user := &models.User{
		Username:      fmt.Sprintf("user%d", nextID()),
		Email:         email,
		Title:         "Tester",
		Password:      string(hash),
		Budget:        opening,
		OpeningBudget: opening,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestExpense creates a Food expense of the given amount owned by ownerID.
func CreateTestExpense(t *testing.T, db *gorm.DB, ownerID, amount string) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		OwnerID:  &ownerID,
		Name:     fmt.Sprintf("Test Expense %d", nextID()),
		Amount:   decimal.RequireFromString(amount),
		Category: models.ExpenseCategoryFood,
		Date:     time.Now().UTC(),
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestIncome creates a Salary income of the given amount owned by ownerID.
func CreateTestIncome(t *testing.T, db *gorm.DB, ownerID, amount string) *models.Income {
	t.Helper()

	income := &models.Income{
		OwnerID:  &ownerID,
		Name:     fmt.Sprintf("Test Income %d", nextID()),
		Amount:   decimal.RequireFromString(amount),
		Category: models.IncomeCategorySalary,
		Date:     time.Now().UTC(),
	}
	if err := db.Create(income).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return income
}

// CreateTestTransaction inserts a transaction row directly, without touching
// the user's budget. factID must match txType.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, factID string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:          userID,
		Type:            txType,
		TransactionDate: date.UTC(),
	}
	if txType == models.TransactionTypeExpense {
		tx.ExpenseID = &factID
	} else {
		tx.IncomeID = &factID
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
