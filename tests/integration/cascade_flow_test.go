package integration

import (
	"net/http"
	"testing"

	"flowtrack/internal/services"
)

func TestCascadeFlow_DeleteRemovesFactAndReferences(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "cascade@test.com", "500")

	expenseID := app.createExpense(t, token, "100")
	first := data(t, app.createTransaction(t, token, "Expense", expenseID, "2026-02-20"))["id"].(string)
	second := data(t, app.createTransaction(t, token, "Expense", expenseID, "2026-03-20"))["id"].(string)

	rec := app.request(http.MethodDelete, "/api/v1/transactions/"+first, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}
	result := data(t, rec)
	if result["fact_id"] != expenseID || len(result["deleted_transaction_ids"].([]interface{})) != 2 {
		t.Errorf("unexpected cascade result: %v", result)
	}

	for _, path := range []string{
		"/api/v1/transactions/" + first,
		"/api/v1/transactions/" + second,
		"/api/v1/expenses/" + expenseID,
	} {
		rec = app.request(http.MethodGet, path, "", token)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404 after cascade, got %d", path, rec.Code)
		}
	}

	// Deletes keep the budget unless reversal is enabled; reconciliation
	// shows the gap.
	if got := app.budget(t, token); got != 300 {
		t.Errorf("expected budget 300, got %v", got)
	}
	rec = app.request(http.MethodGet, "/api/v1/profile/budget/reconcile", "", token)
	recon := data(t, rec)
	if recon["consistent"] != false || recon["drift"] != float64(-200) {
		t.Errorf("expected drift of -200, got %v", recon)
	}

	rec = app.request(http.MethodGet, "/api/v1/reports/monthly?year=2026", "", token)
	rows := parseJSON(t, rec)["data"].([]interface{})
	if feb := rows[1].(map[string]interface{}); feb["expense"] != float64(0) {
		t.Errorf("deleted transactions must drop out of reports, got %v", feb)
	}
}

func TestCascadeFlow_ReverseOnDelete(t *testing.T) {
	app := setupApp(t, services.WithReverseOnDelete(true))
	token, _ := app.registerUser(t, "reverse@test.com", "500")

	expenseID := app.createExpense(t, token, "100")
	txID := data(t, app.createTransaction(t, token, "Expense", expenseID, "2026-02-20"))["id"].(string)
	if got := app.budget(t, token); got != 400 {
		t.Fatalf("expected budget 400, got %v", got)
	}

	rec := app.request(http.MethodDelete, "/api/v1/transactions/"+txID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}
	if data(t, rec)["budget_reversed"] != true {
		t.Error("expected budget_reversed=true")
	}
	if got := app.budget(t, token); got != 500 {
		t.Errorf("expected budget restored to 500, got %v", got)
	}
}

func TestCascadeFlow_OtherUsersTransaction(t *testing.T) {
	app := setupApp(t)
	ownerToken, _ := app.registerUser(t, "owner@test.com", "500")
	otherToken, _ := app.registerUser(t, "other@test.com", "500")

	expenseID := app.createExpense(t, ownerToken, "50")
	txID := data(t, app.createTransaction(t, ownerToken, "Expense", expenseID, "2026-02-20"))["id"].(string)

	rec := app.request(http.MethodDelete, "/api/v1/transactions/"+txID, "", otherToken)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "TRANSACTION_NOT_FOUND" {
		t.Errorf("expected TRANSACTION_NOT_FOUND, got %s", code)
	}

	rec = app.request(http.MethodGet, "/api/v1/transactions/"+txID, "", ownerToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("transaction should survive, got %d", rec.Code)
	}
}
