package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "flowtrack/internal/errors"
	"flowtrack/internal/logger"
	"flowtrack/internal/metrics"
	"flowtrack/internal/models"
)

// budgetLedger owns every write to users.budget.
type budgetLedger struct {
	db *gorm.DB
}

// NewBudgetLedger creates a new BudgetLedger.
func NewBudgetLedger(db *gorm.DB) BudgetLedger {
	return &budgetLedger{db: db}
}

// Adjust applies one transaction's effect to the user's budget: income
// credits it, expense debits it only if the budget covers the amount.
// The floor check and the write are a single conditional UPDATE.
func (l *budgetLedger) Adjust(tx *gorm.DB, userID string, transactionType models.TransactionType, amount decimal.Decimal) (*models.User, error) {
	return l.apply(tx, userID, transactionType, amount, transactionType, metrics.OutcomeApplied)
}

// apply moves the budget as a transaction of type effect would. Metrics
// and logs are labelled with label, and a success is recorded as applied.
func (l *budgetLedger) apply(
	tx *gorm.DB,
	userID string,
	effect models.TransactionType,
	amount decimal.Decimal,
	label models.TransactionType,
	applied string,
) (*models.User, error) {
	if amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}

	var res *gorm.DB
	switch effect {
	case models.TransactionTypeIncome:
		res = tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("budget", gorm.Expr("budget + ?", amount))
	case models.TransactionTypeExpense:
		res = tx.Model(&models.User{}).
			Where("id = ? AND budget >= ?", userID, amount).
			Update("budget", gorm.Expr("budget - ?", amount))
	default:
		return nil, apperrors.ErrInvalidTransactionType
	}
	if res.Error != nil {
		observeAdjustment(label, metrics.OutcomeError)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}

	var user models.User
	if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observeAdjustment(label, metrics.OutcomeNotFound)
			return nil, apperrors.ErrUserNotFound
		}
		observeAdjustment(label, metrics.OutcomeError)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// The user exists, so an untouched row means the floor check failed.
	if res.RowsAffected == 0 {
		observeAdjustment(label, metrics.OutcomeInsufficient)
		return nil, apperrors.ErrInsufficientBudget
	}

	observeAdjustment(label, applied)
	logger.Get().Infow("budget adjusted",
		"user_id", userID,
		"type", label,
		"outcome", applied,
		"amount", amount.String(),
		"budget", user.Budget.String(),
	)
	return &user, nil
}

// Reverse undoes a transaction's effect: a removed expense credits the
// budget and a removed income debits it, subject to the same floor.
func (l *budgetLedger) Reverse(tx *gorm.DB, userID string, transactionType models.TransactionType, amount decimal.Decimal) (*models.User, error) {
	switch transactionType {
	case models.TransactionTypeExpense:
		return l.apply(tx, userID, models.TransactionTypeIncome, amount, transactionType, metrics.OutcomeReversed)
	case models.TransactionTypeIncome:
		return l.apply(tx, userID, models.TransactionTypeExpense, amount, transactionType, metrics.OutcomeReversed)
	default:
		return nil, apperrors.ErrInvalidTransactionType
	}
}

// Reconcile recomputes the balance from the opening budget and the live
// transactions and reports how far the running budget has drifted.
func (l *budgetLedger) Reconcile(userID string) (*BudgetReconciliation, error) {
	var user models.User
	if err := l.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	income, err := sumTransactions(l.db, userID, models.TransactionTypeIncome)
	if err != nil {
		return nil, err
	}
	expense, err := sumTransactions(l.db, userID, models.TransactionTypeExpense)
	if err != nil {
		return nil, err
	}

	ledgerBalance := user.OpeningBudget.Add(income).Sub(expense)
	drift := user.Budget.Sub(ledgerBalance)
	return &BudgetReconciliation{
		UserID:        userID,
		Budget:        user.Budget,
		OpeningBudget: user.OpeningBudget,
		TotalIncome:   income,
		TotalExpense:  expense,
		LedgerBalance: ledgerBalance,
		Drift:         drift,
		Consistent:    drift.IsZero(),
	}, nil
}

// sumTransactions totals the amount snapshots of a user's live
// transactions of one type.
func sumTransactions(db *gorm.DB, userID string, transactionType models.TransactionType) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND type = ?", userID, transactionType).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return row.Total, nil
}

func observeAdjustment(transactionType models.TransactionType, outcome string) {
	metrics.LedgerAdjustments.WithLabelValues(string(transactionType), outcome).Inc()
}
