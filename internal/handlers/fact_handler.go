package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "flowtrack/internal/errors"
	"flowtrack/internal/pagination"
	"flowtrack/internal/services"
)

// FactHandler serves the expense and income records.
type FactHandler struct {
	factService  services.FactServicer
	auditService services.AuditServicer
}

// NewFactHandler creates a new FactHandler.
func NewFactHandler(factService services.FactServicer, auditService services.AuditServicer) *FactHandler {
	return &FactHandler{factService: factService, auditService: auditService}
}

// CreateExpenseRequest represents the request payload for creating an expense.
type CreateExpenseRequest struct {
	Name        string           `json:"name" binding:"required,max=100"`
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	Category    string           `json:"category" binding:"required,expense_category"`
	Date        string           `json:"date" binding:"required"`
	Description string           `json:"description" binding:"required,max=500"`
}

// CreateIncomeRequest represents the request payload for creating an income.
type CreateIncomeRequest struct {
	Name        string           `json:"name" binding:"required,max=100"`
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	Category    string           `json:"category" binding:"required,income_category"`
	Date        string           `json:"date" binding:"required"`
	Description string           `json:"description" binding:"max=500"`
}

func factInput(name string, amount *decimal.Decimal, category, date, description string) (services.FactInput, error) {
	parsed, err := parseFlexibleTime(date)
	if err != nil {
		return services.FactInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return services.FactInput{
		Name:        name,
		Amount:      *amount,
		Category:    category,
		Date:        parsed,
		Description: description,
	}, nil
}

// CreateExpense records a new expense
// @Summary     Create an expense
// @Description Record a standalone expense. It does not touch the budget until a transaction references it.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExpenseRequest true "Expense details"
// @Success     201 {object} Envelope{data=models.Expense} "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses [post]
func (h *FactHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := factInput(req.Name, req.Amount, req.Category, req.Date, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.factService.CreateExpense(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionCreateExpense, "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"amount": expense.Amount.String(), "category": expense.Category})

	respondOK(c, http.StatusCreated, "Expense created", expense)
}

// ListExpenses lists every expense
// @Summary     List expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} Envelope{data=pagination.PageResponse[models.Expense]} "Paginated expenses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses [get]
func (h *FactHandler) ListExpenses(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.factService.ListExpenses(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Expenses retrieved", result)
}

// GetExpense returns one expense
// @Summary     Get expense by ID
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} Envelope{data=models.Expense} "Expense details"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [get]
func (h *FactHandler) GetExpense(c *gin.Context) {
	id, err := parsePathID(c, "id", apperrors.ErrExpenseNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.factService.GetExpense(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Expense retrieved", expense)
}

// CreateIncome records a new income
// @Summary     Create an income
// @Description Record a standalone income. It does not touch the budget until a transaction references it.
// @Tags        incomes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateIncomeRequest true "Income details"
// @Success     201 {object} Envelope{data=models.Income} "Income created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /incomes [post]
func (h *FactHandler) CreateIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := factInput(req.Name, req.Amount, req.Category, req.Date, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.factService.CreateIncome(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionCreateIncome, "income", income.ID, c.ClientIP(),
		map[string]interface{}{"amount": income.Amount.String(), "category": income.Category})

	respondOK(c, http.StatusCreated, "Income created", income)
}

// ListIncomes lists every income
// @Summary     List incomes
// @Tags        incomes
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} Envelope{data=pagination.PageResponse[models.Income]} "Paginated incomes"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /incomes [get]
func (h *FactHandler) ListIncomes(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.factService.ListIncomes(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Incomes retrieved", result)
}

// GetIncome returns one income
// @Summary     Get income by ID
// @Tags        incomes
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income ID"
// @Success     200 {object} Envelope{data=models.Income} "Income details"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Router      /incomes/{id} [get]
func (h *FactHandler) GetIncome(c *gin.Context) {
	id, err := parsePathID(c, "id", apperrors.ErrIncomeNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	income, err := h.factService.GetIncome(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Income retrieved", income)
}
