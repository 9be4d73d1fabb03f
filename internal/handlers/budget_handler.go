package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flowtrack/internal/services"
)

// BudgetHandler exposes the budget ledger's read side.
type BudgetHandler struct {
	ledger services.BudgetLedger
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(ledger services.BudgetLedger) *BudgetHandler {
	return &BudgetHandler{ledger: ledger}
}

// Reconcile compares the running budget with the transaction ledger
// @Summary     Reconcile budget
// @Description Compare the stored budget with opening budget + income - expense over live transactions
// @Tags        user
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Envelope{data=services.BudgetReconciliation} "Reconciliation"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /profile/budget/reconcile [get]
func (h *BudgetHandler) Reconcile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.ledger.Reconcile(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Budget reconciled", result)
}
