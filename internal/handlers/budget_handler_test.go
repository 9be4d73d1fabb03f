package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "flowtrack/internal/errors"
	"flowtrack/internal/models"
	"flowtrack/internal/services"
)

type mockBudgetLedger struct {
	reconcileFn func(userID string) (*services.BudgetReconciliation, error)
}

func (m *mockBudgetLedger) Adjust(*gorm.DB, string, models.TransactionType, decimal.Decimal) (*models.User, error) {
	return &models.User{}, nil
}

func (m *mockBudgetLedger) Reverse(*gorm.DB, string, models.TransactionType, decimal.Decimal) (*models.User, error) {
	return &models.User{}, nil
}

func (m *mockBudgetLedger) Reconcile(userID string) (*services.BudgetReconciliation, error) {
	return m.reconcileFn(userID)
}

func TestBudgetHandler_Reconcile(t *testing.T) {
	t.Run("reports drift", func(t *testing.T) {
		ledger := &mockBudgetLedger{reconcileFn: func(userID string) (*services.BudgetReconciliation, error) {
			return &services.BudgetReconciliation{
				UserID:        userID,
				Budget:        decimal.NewFromInt(300),
				LedgerBalance: decimal.NewFromInt(400),
				Drift:         decimal.NewFromInt(-100),
				Consistent:    false,
			}, nil
		}}
		r := gin.New()
		r.GET("/profile/budget/reconcile", injectUserID(testUserID), NewBudgetHandler(ledger).Reconcile)

		rec := doRequest(r, http.MethodGet, "/profile/budget/reconcile", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		data := dataObject(t, parseJSON(t, rec))
		if data["drift"] != float64(-100) || data["consistent"] != false {
			t.Errorf("unexpected reconciliation: %v", data)
		}
	})

	t.Run("returns 404 for missing user", func(t *testing.T) {
		ledger := &mockBudgetLedger{reconcileFn: func(string) (*services.BudgetReconciliation, error) {
			return nil, apperrors.ErrUserNotFound
		}}
		r := gin.New()
		r.GET("/profile/budget/reconcile", injectUserID(testUserID), NewBudgetHandler(ledger).Reconcile)

		rec := doRequest(r, http.MethodGet, "/profile/budget/reconcile", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "USER_NOT_FOUND")
	})
}
