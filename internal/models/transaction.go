package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType says which kind of fact a transaction references.
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "Expense"
	TransactionTypeIncome  TransactionType = "Income"
)

// Valid reports whether t is Expense or Income.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeExpense || t == TransactionTypeIncome
}

// Transaction binds one user to exactly one expense or income fact.
// Exactly one of ExpenseID and IncomeID is set, matching Type. Amount is
// the fact's amount when the transaction was recorded.
type Transaction struct {
	Base
	UserID          string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Type            TransactionType `gorm:"not null;index" json:"type"`
	ExpenseID       *string         `gorm:"type:uuid;index" json:"expense_id"`
	IncomeID        *string         `gorm:"type:uuid;index" json:"income_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	TransactionDate time.Time       `gorm:"not null;index" json:"transaction_date"`

	Expense *Expense     `gorm:"foreignKey:ExpenseID" json:"-"`
	Income  *Income      `gorm:"foreignKey:IncomeID" json:"-"`
	Fact    *FactSummary `gorm:"-" json:"fact,omitempty"`
}

// FactSummary carries the display fields of the fact a transaction points at.
type FactSummary struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     time.Time       `json:"date"`
}

// FactID returns the referenced fact's ID, or "" if none is set.
func (t *Transaction) FactID() string {
	switch {
	case t.ExpenseID != nil:
		return *t.ExpenseID
	case t.IncomeID != nil:
		return *t.IncomeID
	}
	return ""
}

// AttachFact fills Fact from whichever relation was preloaded.
func (t *Transaction) AttachFact() {
	switch {
	case t.Expense != nil:
		t.Fact = &FactSummary{ID: t.Expense.ID, Name: t.Expense.Name, Amount: t.Expense.Amount, Category: string(t.Expense.Category), Date: t.Expense.Date}
	case t.Income != nil:
		t.Fact = &FactSummary{ID: t.Income.ID, Name: t.Income.Name, Amount: t.Income.Amount, Category: string(t.Income.Category), Date: t.Income.Date}
	}
}
