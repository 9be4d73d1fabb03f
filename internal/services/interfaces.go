package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"flowtrack/internal/models"
	"flowtrack/internal/pagination"
)

// RegisterInput holds the fields required to create a user.
type RegisterInput struct {
	Username string
	Email    string
	Title    string
	Password string
	Budget   decimal.Decimal
}

// ProfileUpdate holds optional profile changes. The budget is not
// editable here; it moves only through recorded transactions.
type ProfileUpdate struct {
	Username       *string
	Title          *string
	ProfilePicture *string
	Password       *string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(input RegisterInput) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	UpdateProfile(userID string, update ProfileUpdate) (*models.User, error)
	FindOrCreateGoogleUser(subject, email, name, picture string) (*models.User, error)
}

// FactInput carries the fields shared by expenses and incomes.
type FactInput struct {
	Name        string
	Amount      decimal.Decimal
	Category    string
	Date        time.Time
	Description string
}

// FactServicer manages standalone expense and income records.
type FactServicer interface {
	CreateExpense(ownerID string, input FactInput) (*models.Expense, error)
	GetExpense(id string) (*models.Expense, error)
	ListExpenses(page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	CreateIncome(ownerID string, input FactInput) (*models.Income, error)
	GetIncome(id string) (*models.Income, error)
	ListIncomes(page pagination.PageRequest) (*pagination.PageResponse[models.Income], error)
}

// BudgetReconciliation compares the running budget with the balance
// implied by the opening budget and the user's live transactions.
type BudgetReconciliation struct {
	UserID        string          `json:"user_id"`
	Budget        decimal.Decimal `json:"budget"`
	OpeningBudget decimal.Decimal `json:"opening_budget"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpense  decimal.Decimal `json:"total_expense"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	Drift         decimal.Decimal `json:"drift"`
	Consistent    bool            `json:"consistent"`
}

// BudgetLedger is the only writer of users.budget. Adjust and Reverse run
// inside the caller's database transaction.
type BudgetLedger interface {
	Adjust(tx *gorm.DB, userID string, transactionType models.TransactionType, amount decimal.Decimal) (*models.User, error)
	Reverse(tx *gorm.DB, userID string, transactionType models.TransactionType, amount decimal.Decimal) (*models.User, error)
	Reconcile(userID string) (*BudgetReconciliation, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	UserID   *string
	Type     *models.TransactionType
	FromDate *time.Time
	ToDate   *time.Time
}

// CascadeResult reports what a cascading delete removed.
type CascadeResult struct {
	FactID                string                 `json:"fact_id"`
	FactType              models.TransactionType `json:"fact_type"`
	DeletedTransactionIDs []string               `json:"deleted_transaction_ids"`
	BudgetReversed        bool                   `json:"budget_reversed"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, transactionType models.TransactionType, factID string, date time.Time) (*models.Transaction, error)
	GetTransaction(transactionID string) (*models.Transaction, error)
	ListTransactions(filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	TotalByType(userID string, transactionType models.TransactionType) (decimal.Decimal, error)
	DeleteTransactionCascade(userID, transactionID string) (*CascadeResult, error)
}

// ReportServicer builds the calendar-year monthly reports.
type ReportServicer interface {
	YearlyTotals(userID string, year int) ([]models.MonthTotals, error)
	MonthlyReport(userID string, year int) ([]models.MonthSummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
