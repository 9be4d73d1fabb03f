package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "flowtrack/internal/errors"
	"flowtrack/internal/logger"
	"flowtrack/internal/models"
	"flowtrack/internal/pagination"
	"flowtrack/internal/uuid"
)

const (
	maxFactNameLength        = 100
	maxFactDescriptionLength = 500
)

// factService handles expense and income records.
type factService struct {
	db *gorm.DB
}

// NewFactService creates a new FactServicer.
func NewFactService(db *gorm.DB) FactServicer {
	return &factService{db: db}
}

// CreateExpense validates and stores an expense. ownerID may be empty.
func (s *factService) CreateExpense(ownerID string, input FactInput) (*models.Expense, error) {
	input, err := normalizeFact(input, true)
	if err != nil {
		return nil, err
	}
	category := models.ExpenseCategory(input.Category)
	if !category.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown expense category: "+input.Category)
	}

	expense := &models.Expense{
		OwnerID:     optionalID(ownerID),
		Name:        input.Name,
		Amount:      input.Amount,
		Category:    category,
		Date:        input.Date,
		Description: input.Description,
	}
	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("expense recorded", "expense_id", expense.ID, "owner_id", ownerID, "amount", expense.Amount.String())
	return expense, nil
}

// CreateIncome validates and stores an income. ownerID may be empty.
func (s *factService) CreateIncome(ownerID string, input FactInput) (*models.Income, error) {
	input, err := normalizeFact(input, false)
	if err != nil {
		return nil, err
	}
	category := models.IncomeCategory(input.Category)
	if !category.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown income category: "+input.Category)
	}

	income := &models.Income{
		OwnerID:     optionalID(ownerID),
		Name:        input.Name,
		Amount:      input.Amount,
		Category:    category,
		Date:        input.Date,
		Description: input.Description,
	}
	if err := s.db.Create(income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("income recorded", "income_id", income.ID, "owner_id", ownerID, "amount", income.Amount.String())
	return income, nil
}

// GetExpense retrieves an expense by ID
func (s *factService) GetExpense(id string) (*models.Expense, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrExpenseNotFound
	}
	var expense models.Expense
	if err := s.db.Where("id = ?", id).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// GetIncome retrieves an income by ID
func (s *factService) GetIncome(id string) (*models.Income, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrIncomeNotFound
	}
	var income models.Income
	if err := s.db.Where("id = ?", id).First(&income).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &income, nil
}

// ListExpenses returns every expense, newest date first.
func (s *factService) ListExpenses(page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	return listFacts[models.Expense](s.db, page)
}

// ListIncomes returns every income, newest date first.
func (s *factService) ListIncomes(page pagination.PageRequest) (*pagination.PageResponse[models.Income], error) {
	return listFacts[models.Income](s.db, page)
}

func listFacts[T any](db *gorm.DB, page pagination.PageRequest) (*pagination.PageResponse[T], error) {
	page.Defaults()

	var totalItems int64
	if err := db.Model(new(T)).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var items []T
	if err := db.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Order("id DESC").
		Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(items, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// normalizeFact trims text fields, rounds the amount to cents and checks
// the rules shared by both fact kinds.
func normalizeFact(input FactInput, requireDescription bool) (FactInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)
	input.Description = strings.TrimSpace(input.Description)

	switch {
	case input.Name == "":
		return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	case utf8.RuneCountInString(input.Name) > maxFactNameLength:
		return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "name must be at most 100 characters")
	case input.Amount.IsNegative():
		return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	case input.Date.IsZero():
		return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	case requireDescription && input.Description == "":
		return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	case utf8.RuneCountInString(input.Description) > maxFactDescriptionLength:
		return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "description must be at most 500 characters")
	}

	input.Amount = input.Amount.Round(2)
	input.Date = input.Date.UTC()
	return input, nil
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
