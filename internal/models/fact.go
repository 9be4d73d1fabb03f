package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory is the fixed set of expense classifications.
type ExpenseCategory string

const (
	ExpenseCategoryFood           ExpenseCategory = "Food"
	ExpenseCategoryTransportation ExpenseCategory = "Transportation"
	ExpenseCategoryUtilities      ExpenseCategory = "Utilities"
	ExpenseCategoryEntertainment  ExpenseCategory = "Entertainment"
	ExpenseCategoryHealthcare     ExpenseCategory = "Healthcare"
	ExpenseCategoryOther          ExpenseCategory = "Other"
)

// ExpenseCategories lists every accepted ExpenseCategory.
var ExpenseCategories = []ExpenseCategory{
	ExpenseCategoryFood,
	ExpenseCategoryTransportation,
	ExpenseCategoryUtilities,
	ExpenseCategoryEntertainment,
	ExpenseCategoryHealthcare,
	ExpenseCategoryOther,
}

// Valid reports whether c is a member of the expense category set.
func (c ExpenseCategory) Valid() bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// IncomeCategory is the fixed set of income classifications.
type IncomeCategory string

const (
	IncomeCategorySalary           IncomeCategory = "Salary"
	IncomeCategoryInterestReceived IncomeCategory = "Interest Received"
	IncomeCategoryDividend         IncomeCategory = "Dividend"
	IncomeCategoryBonus            IncomeCategory = "Bonus"
	IncomeCategoryOvertime         IncomeCategory = "Overtime"
	IncomeCategoryRentalIncome     IncomeCategory = "Rental Income"
	IncomeCategoryOther            IncomeCategory = "Other"
)

// IncomeCategories lists every accepted IncomeCategory.
var IncomeCategories = []IncomeCategory{
	IncomeCategorySalary,
	IncomeCategoryInterestReceived,
	IncomeCategoryDividend,
	IncomeCategoryBonus,
	IncomeCategoryOvertime,
	IncomeCategoryRentalIncome,
	IncomeCategoryOther,
}

// Valid reports whether c is a member of the income category set.
func (c IncomeCategory) Valid() bool {
	for _, known := range IncomeCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Expense is a standalone record of money spent. It does not touch any
// budget until a Transaction references it. OwnerID is nil for records
// created without an authenticated user.
type Expense struct {
	Base
	OwnerID     *string         `gorm:"type:uuid;index" json:"owner_id"`
	Name        string          `gorm:"not null" json:"name"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Category    ExpenseCategory `gorm:"not null" json:"category"`
	Date        time.Time       `gorm:"not null" json:"date"`
	Description string          `json:"description"`
}

// Income is a standalone record of money received.
type Income struct {
	Base
	OwnerID     *string         `gorm:"type:uuid;index" json:"owner_id"`
	Name        string          `gorm:"not null" json:"name"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Category    IncomeCategory  `gorm:"not null" json:"category"`
	Date        time.Time       `gorm:"not null" json:"date"`
	Description string          `json:"description"`
}

// OwnedBy reports whether a fact with the given owner may be used by userID.
// Unowned facts are usable by anyone.
func OwnedBy(ownerID *string, userID string) bool {
	return ownerID == nil || *ownerID == userID
}
