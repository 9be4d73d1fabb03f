package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "flowtrack/internal/errors"
	"flowtrack/internal/models"
	"flowtrack/internal/pagination"
	"flowtrack/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Type   models.TransactionType `json:"type" binding:"required,transaction_type"`
	FactID string                 `json:"fact_id" binding:"required"`
	Date   *string                `json:"date"`
}

// TotalResponse is the sum of one transaction type for the caller.
type TotalResponse struct {
	Type  models.TransactionType `json:"type"`
	Total decimal.Decimal        `json:"total"`
}

// CreateTransaction records a transaction against an expense or income
// @Summary     Create a transaction
// @Description Record a transaction for an existing expense or income and adjust the budget
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} Envelope{data=models.Transaction} "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input or transaction type"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense or income not found"
// @Failure     422 {object} ErrorResponse "Insufficient budget"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	var transactionDate time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		transactionDate = parsed
	}

	transaction, err := h.transactionService.CreateTransaction(userID, req.Type, req.FactID, transactionDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionCreateTransaction, "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"type": req.Type, "fact_id": req.FactID, "amount": transaction.Amount.String()})

	respondOK(c, http.StatusCreated, "Transaction created", transaction)
}

// ListTransactions lists transactions across all users
// @Summary     List transactions
// @Description List every transaction. Use user=me to restrict to the caller.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       user      query string false "Only 'me' is accepted"
// @Param       type      query string false "Expense or Income"
// @Param       from_date query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date   query string false "End date (RFC3339 or YYYY-MM-DD)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} Envelope{data=pagination.PageResponse[models.Transaction]} "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	switch c.Query("user") {
	case "":
	case "me":
		filter.UserID = &userID
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "user filter only accepts 'me'"))
		return
	}

	h.list(c, filter)
}

// ListMyTransactions lists the caller's transactions, newest first
// @Summary     List my transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       type      query string false "Expense or Income"
// @Param       from_date query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date   query string false "End date (RFC3339 or YYYY-MM-DD)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} Envelope{data=pagination.PageResponse[models.Transaction]} "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/mine [get]
func (h *TransactionHandler) ListMyTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	filter.UserID = &userID

	h.list(c, filter)
}

func (h *TransactionHandler) list(c *gin.Context, filter services.TransactionFilter) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.ListTransactions(filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Transactions retrieved", result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		if !txType.Valid() {
			return filter, apperrors.ErrInvalidTransactionType
		}
		filter.Type = &txType
	}

	return filter, nil
}

// GetTransaction returns one transaction with its fact summary
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} Envelope{data=models.Transaction} "Transaction details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	transactionID, err := parsePathID(c, "id", apperrors.ErrTransactionNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransaction(transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Transaction retrieved", transaction)
}

// DeleteTransaction removes the transaction's fact and every transaction
// that references it
// @Summary     Delete transaction (cascade)
// @Description Delete the referenced expense or income together with all transactions pointing at it
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} Envelope{data=services.CascadeResult} "Cascade result"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     422 {object} ErrorResponse "Reversal would overdraw the budget"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id", apperrors.ErrTransactionNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.DeleteTransactionCascade(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionDeleteTransaction, "transaction", transactionID, c.ClientIP(),
		map[string]interface{}{
			"fact_id":      result.FactID,
			"fact_type":    result.FactType,
			"transactions": result.DeletedTransactionIDs,
			"reversed":     result.BudgetReversed,
		})

	respondOK(c, http.StatusOK, "Transaction deleted", result)
}

// TotalExpense returns the sum of the caller's expense transactions
// @Summary     Total expenses
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Envelope{data=TotalResponse} "Total"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/totals/expense [get]
func (h *TransactionHandler) TotalExpense(c *gin.Context) {
	h.total(c, models.TransactionTypeExpense)
}

// TotalIncome returns the sum of the caller's income transactions
// @Summary     Total incomes
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Envelope{data=TotalResponse} "Total"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/totals/income [get]
func (h *TransactionHandler) TotalIncome(c *gin.Context) {
	h.total(c, models.TransactionTypeIncome)
}

func (h *TransactionHandler) total(c *gin.Context, transactionType models.TransactionType) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	total, err := h.transactionService.TotalByType(userID, transactionType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Total retrieved", TotalResponse{Type: transactionType, Total: total})
}
