package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flowtrack/internal/cache"
	apperrors "flowtrack/internal/errors"
	"flowtrack/internal/events"
	"flowtrack/internal/logger"
	"flowtrack/internal/models"
	"flowtrack/internal/pagination"
	"flowtrack/internal/uuid"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db              *gorm.DB
	ledger          BudgetLedger
	reportCache     cache.ReportCache
	publisher       events.Publisher
	reverseOnDelete bool
}

// TransactionOption configures optional collaborators of the transaction service.
type TransactionOption func(*transactionService)

// WithReportCache invalidates cached reports whenever the ledger changes.
func WithReportCache(c cache.ReportCache) TransactionOption {
	return func(s *transactionService) { s.reportCache = c }
}

// WithPublisher emits ledger events after each committed change.
func WithPublisher(p events.Publisher) TransactionOption {
	return func(s *transactionService) { s.publisher = p }
}

// WithReverseOnDelete makes cascade deletes undo the budget effect of the
// removed transactions.
func WithReverseOnDelete(enabled bool) TransactionOption {
	return func(s *transactionService) { s.reverseOnDelete = enabled }
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, ledger BudgetLedger, opts ...TransactionOption) TransactionServicer {
	s := &transactionService{
		db:          db,
		ledger:      ledger,
		reportCache: cache.NopReportCache{},
		publisher:   events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// factRef is the part of a fact a transaction needs.
type factRef struct {
	id      string
	ownerID *string
	amount  decimal.Decimal
}

func (s *transactionService) lookupFact(transactionType models.TransactionType, factID string) (*factRef, error) {
	switch transactionType {
	case models.TransactionTypeExpense:
		var expense models.Expense
		if err := s.findFact(&expense, factID, apperrors.ErrExpenseNotFound); err != nil {
			return nil, err
		}
		return &factRef{id: expense.ID, ownerID: expense.OwnerID, amount: expense.Amount}, nil
	case models.TransactionTypeIncome:
		var income models.Income
		if err := s.findFact(&income, factID, apperrors.ErrIncomeNotFound); err != nil {
			return nil, err
		}
		return &factRef{id: income.ID, ownerID: income.OwnerID, amount: income.Amount}, nil
	default:
		return nil, apperrors.ErrInvalidTransactionType
	}
}

func (s *transactionService) findFact(dest interface{}, factID string, notFound *apperrors.AppError) error {
	if !uuid.IsValid(factID) {
		return notFound
	}
	if err := s.db.Where("id = ?", factID).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CreateTransaction records a transaction for the referenced fact and
// adjusts the user's budget. Both writes commit together or not at all.
func (s *transactionService) CreateTransaction(
	userID string,
	transactionType models.TransactionType,
	factID string,
	date time.Time,
) (*models.Transaction, error) {
	if !transactionType.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}

	fact, err := s.lookupFact(transactionType, factID)
	if err != nil {
		return nil, err
	}
	// Someone else's fact is reported exactly like a missing one.
	if !models.OwnedBy(fact.ownerID, userID) {
		if transactionType == models.TransactionTypeExpense {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.ErrIncomeNotFound
	}

	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		UserID:          userID,
		Type:            transactionType,
		Amount:          fact.amount,
		TransactionDate: date.UTC(),
	}
	if transactionType == models.TransactionTypeExpense {
		transaction.ExpenseID = &fact.id
	} else {
		transaction.IncomeID = &fact.id
	}

	var user *models.User
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		user, txErr = s.ledger.Adjust(tx, userID, transactionType, fact.amount)
		if txErr != nil {
			return txErr
		}
		if txErr = tx.Create(transaction).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.reportCache.Invalidate(userID)
	s.publish(events.LedgerEvent{
		Kind:           events.KindTransactionCreated,
		UserID:         userID,
		TransactionIDs: []string{transaction.ID},
		Type:           string(transactionType),
		FactID:         fact.id,
		Amount:         fact.amount,
		Budget:         user.Budget,
		OccurredAt:     time.Now().UTC(),
	})

	return s.GetTransaction(transaction.ID)
}

// GetTransaction retrieves a transaction by ID with its fact attached.
func (s *transactionService) GetTransaction(transactionID string) (*models.Transaction, error) {
	if !uuid.IsValid(transactionID) {
		return nil, apperrors.ErrTransactionNotFound
	}
	var transaction models.Transaction
	if err := s.db.Preload("Expense").Preload("Income").
		Where("id = ?", transactionID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	transaction.AttachFact()
	return &transaction, nil
}

// ListTransactions retrieves a paginated, filtered list of transactions,
// newest transaction date first.
func (s *transactionService) ListTransactions(filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := applyTransactionFilters(s.db.Model(&models.Transaction{}), filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Expense").Preload("Income").
		Scopes(pagination.Paginate(page)).
		Order("transaction_date DESC").
		Order("id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range transactions {
		transactions[i].AttachFact()
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.FromDate != nil {
		q = q.Where("transaction_date >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("transaction_date <= ?", f.ToDate.UTC())
	}
	return q
}

// TotalByType sums the user's transaction amounts of one type.
func (s *transactionService) TotalByType(userID string, transactionType models.TransactionType) (decimal.Decimal, error) {
	if !transactionType.Valid() {
		return decimal.Zero, apperrors.ErrInvalidTransactionType
	}
	return sumTransactions(s.db, userID, transactionType)
}

// DeleteTransactionCascade removes the fact referenced by the transaction
// together with every transaction that references that fact.
func (s *transactionService) DeleteTransactionCascade(userID, transactionID string) (*CascadeResult, error) {
	transaction, err := s.GetTransaction(transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.UserID != userID {
		return nil, apperrors.ErrTransactionNotFound
	}

	factID := transaction.FactID()
	factColumn := "expense_id"
	var factModel interface{} = &models.Expense{}
	if transaction.Type == models.TransactionTypeIncome {
		factColumn = "income_id"
		factModel = &models.Income{}
	}

	result := &CascadeResult{FactID: factID, FactType: transaction.Type, BudgetReversed: s.reverseOnDelete}
	var linked []models.Transaction

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Row locks make a concurrent delete of the same fact wait here and
		// then see the rows gone.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(factColumn+" = ?", factID).
			Find(&linked).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !containsTransaction(linked, transactionID) {
			return apperrors.ErrTransactionNotFound
		}

		res := tx.Where(factColumn+" = ?", factID).Delete(&models.Transaction{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected != int64(len(linked)) {
			return apperrors.ErrTransactionNotFound
		}

		if s.reverseOnDelete {
			for _, t := range linked {
				if _, err := s.ledger.Reverse(tx, t.UserID, t.Type, t.Amount); err != nil {
					return err
				}
			}
		}

		if err := tx.Where("id = ?", factID).Delete(factModel).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	affected := map[string]struct{}{}
	for _, t := range linked {
		result.DeletedTransactionIDs = append(result.DeletedTransactionIDs, t.ID)
		affected[t.UserID] = struct{}{}
	}
	for uid := range affected {
		s.reportCache.Invalidate(uid)
	}

	logger.Get().Infow("transaction cascade deleted",
		"user_id", userID,
		"fact_id", factID,
		"fact_type", transaction.Type,
		"transactions", len(linked),
		"reversed", s.reverseOnDelete,
	)

	var owner models.User
	if err := s.db.Select("budget").Where("id = ?", userID).First(&owner).Error; err != nil {
		logger.Get().Warnw("could not read budget for ledger event", "user_id", userID, "error", err)
	}
	s.publish(events.LedgerEvent{
		Kind:           events.KindTransactionsDeleted,
		UserID:         userID,
		TransactionIDs: result.DeletedTransactionIDs,
		Type:           string(transaction.Type),
		FactID:         factID,
		Amount:         transaction.Amount,
		Budget:         owner.Budget,
		OccurredAt:     time.Now().UTC(),
	})

	return result, nil
}

func containsTransaction(transactions []models.Transaction, id string) bool {
	for _, t := range transactions {
		if t.ID == id {
			return true
		}
	}
	return false
}

// publish sends a ledger event; failures are logged and never surface to
// the caller because the change has already committed.
func (s *transactionService) publish(event events.LedgerEvent) {
	if err := s.publisher.Publish(context.Background(), event); err != nil {
		logger.Get().Errorw("failed to publish ledger event",
			"kind", event.Kind,
			"user_id", event.UserID,
			"error", err,
		)
	}
}
