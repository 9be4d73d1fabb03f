package services

import (
	"testing"
	"time"

	"flowtrack/internal/metrics"
	"flowtrack/internal/models"
	"flowtrack/internal/testutil"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func reloadBudget(t *testing.T, db *gorm.DB, userID string) decimal.Decimal {
	t.Helper()
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	return user.Budget
}

func TestBudgetLedgerAdjust(t *testing.T) {
	t.Run("income_credits", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ledger := NewBudgetLedger(db)
		user := testutil.CreateTestUserWithBudget(t, db, "100")

		updated, err := ledger.Adjust(db, user.ID, models.TransactionTypeIncome, decimal.RequireFromString("50.25"))
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, updated.Budget, "150.25")
		testutil.AssertDecimal(t, reloadBudget(t, db, user.ID), "150.25")
	})

	t.Run("expense_within_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ledger := NewBudgetLedger(db)
		user := testutil.CreateTestUserWithBudget(t, db, "100")

		updated, err := ledger.Adjust(db, user.ID, models.TransactionTypeExpense, decimal.RequireFromString("40"))
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, updated.Budget, "60")
	})

	t.Run("expense_equal_to_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ledger := NewBudgetLedger(db)
		user := testutil.CreateTestUserWithBudget(t, db, "100")

		updated, err := ledger.Adjust(db, user.ID, models.TransactionTypeExpense, decimal.RequireFromString("100"))
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, updated.Budget, "0")
	})

	t.Run("expense_over_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ledger := NewBudgetLedger(db)
		user := testutil.CreateTestUserWithBudget(t, db, "100")

		_, err := ledger.Adjust(db, user.ID, models.TransactionTypeExpense, decimal.RequireFromString("150"))
		testutil.AssertAppError(t, err, "INSUFFICIENT_BUDGET")
		testutil.AssertDecimal(t, reloadBudget(t, db, user.ID), "100")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ledger := NewBudgetLedger(db)

		missing := "0190a8e2-7b6f-7c3d-9a10-4f2e8d6b1c55"
		_, err := ledger.Adjust(db, missing, models.TransactionTypeExpense, decimal.NewFromInt(1))
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")

		_, err = ledger.Adjust(db, missing, models.TransactionTypeIncome, decimal.NewFromInt(1))
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("invalid_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ledger := NewBudgetLedger(db)
		user := testutil.CreateTestUserWithBudget(t, db, "100")

		_, err := ledger.Adjust(db, user.ID, models.TransactionType("Transfer"), decimal.NewFromInt(1))
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
		testutil.AssertDecimal(t, reloadBudget(t, db, user.ID), "100")
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ledger := NewBudgetLedger(db)
		user := testutil.CreateTestUserWithBudget(t, db, "100")

		_, err := ledger.Adjust(db, user.ID, models.TransactionTypeIncome, decimal.NewFromInt(-10))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rolls_back_with_caller_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		ledger := NewBudgetLedger(db)
		user := testutil.CreateTestUserWithBudget(t, db, "100")

		err := db.Transaction(func(tx *gorm.DB) error {
			if _, err := ledger.Adjust(tx, user.ID, models.TransactionTypeIncome, decimal.NewFromInt(25)); err != nil {
				return err
			}
			_, err := ledger.Adjust(tx, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(1000))
			return err
		})
		testutil.AssertAppError(t, err, "INSUFFICIENT_BUDGET")
		testutil.AssertDecimal(t, reloadBudget(t, db, user.ID), "100")
	})
}

func TestBudgetLedgerReverse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ledger := NewBudgetLedger(db)
	user := testutil.CreateTestUserWithBudget(t, db, "100")

	updated, err := ledger.Reverse(db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(30))
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, updated.Budget, "130")

	updated, err = ledger.Reverse(db, user.ID, models.TransactionTypeIncome, decimal.NewFromInt(30))
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, updated.Budget, "100")

	_, err = ledger.Reverse(db, user.ID, models.TransactionTypeIncome, decimal.NewFromInt(500))
	testutil.AssertAppError(t, err, "INSUFFICIENT_BUDGET")
}

func TestBudgetLedgerReverseMetrics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ledger := NewBudgetLedger(db)
	user := testutil.CreateTestUserWithBudget(t, db, "100")

	counter := func(txType models.TransactionType, outcome string) float64 {
		return promtestutil.ToFloat64(metrics.LedgerAdjustments.WithLabelValues(string(txType), outcome))
	}
	reversedExpense := counter(models.TransactionTypeExpense, metrics.OutcomeReversed)
	appliedIncome := counter(models.TransactionTypeIncome, metrics.OutcomeApplied)

	_, err := ledger.Reverse(db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(30))
	testutil.AssertNoError(t, err)

	if got := counter(models.TransactionTypeExpense, metrics.OutcomeReversed); got != reversedExpense+1 {
		t.Errorf("expected one reversed expense, counter went %v -> %v", reversedExpense, got)
	}
	if got := counter(models.TransactionTypeIncome, metrics.OutcomeApplied); got != appliedIncome {
		t.Errorf("a reversal must not count as applied income, counter went %v -> %v", appliedIncome, got)
	}

	appliedExpense := counter(models.TransactionTypeExpense, metrics.OutcomeApplied)
	_, err = ledger.Adjust(db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(10))
	testutil.AssertNoError(t, err)
	if got := counter(models.TransactionTypeExpense, metrics.OutcomeApplied); got != appliedExpense+1 {
		t.Errorf("expected one applied expense, counter went %v -> %v", appliedExpense, got)
	}
}

func TestBudgetLedgerReconcile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ledger := NewBudgetLedger(db)
	facts := NewFactService(db)
	txSvc := NewTransactionService(db, ledger)

	user, err := NewUserService(db).CreateUser(RegisterInput{
		Username: "grace",
		Email:    "grace@example.com",
		Password: "password123",
		Budget:   decimal.NewFromInt(100),
	})
	testutil.AssertNoError(t, err)

	income, err := facts.CreateIncome(user.ID, incomeInput("500"))
	testutil.AssertNoError(t, err)
	expense, err := facts.CreateExpense(user.ID, expenseInput("200"))
	testutil.AssertNoError(t, err)

	_, err = txSvc.CreateTransaction(user.ID, models.TransactionTypeIncome, income.ID, time.Time{})
	testutil.AssertNoError(t, err)
	_, err = txSvc.CreateTransaction(user.ID, models.TransactionTypeExpense, expense.ID, time.Time{})
	testutil.AssertNoError(t, err)

	rec, err := ledger.Reconcile(user.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, rec.Budget, "400")
	testutil.AssertDecimal(t, rec.TotalIncome, "500")
	testutil.AssertDecimal(t, rec.TotalExpense, "200")
	testutil.AssertDecimal(t, rec.LedgerBalance, "400")
	if !rec.Consistent {
		t.Errorf("expected consistent ledger, drift %s", rec.Drift)
	}

	// An out-of-band write shows up as drift.
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("budget", decimal.NewFromInt(450)).Error; err != nil {
		t.Fatalf("failed to tamper with budget: %v", err)
	}
	rec, err = ledger.Reconcile(user.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, rec.Drift, "50")
	if rec.Consistent {
		t.Error("expected drift to be reported")
	}

	_, err = ledger.Reconcile("0190a8e2-7b6f-7c3d-9a10-4f2e8d6b1c55")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}
