package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"flowtrack/internal/cache"
	"flowtrack/internal/logger"
	"flowtrack/internal/server"
	"flowtrack/internal/services"
	"flowtrack/internal/testutil"
	"flowtrack/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T, opts ...services.TransactionOption) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	ledger := services.NewBudgetLedger(db)
	router := server.NewRouter(server.Services{
		Users:        services.NewUserService(db),
		Facts:        services.NewFactService(db),
		Ledger:       ledger,
		Transactions: services.NewTransactionService(db, ledger, opts...),
		Reports:      services.NewReportService(db, cache.NopReportCache{}),
		Audit:        services.NewAuditService(db),
	}, server.Options{})

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// data returns the payload of a success envelope.
func data(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	result := parseJSON(t, rec)
	if result["success"] != true {
		t.Fatalf("expected success envelope, got %d: %s", rec.Code, rec.Body.String())
	}
	d, ok := result["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected object payload, got %v", result["data"])
	}
	return d
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// registerUser registers a new user with the given opening budget and
// returns the access token and user ID.
func (app *testApp) registerUser(t *testing.T, email, budget string) (token, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"username":"tester","email":%q,"password":"password123","budget":%s}`, email, budget)
	rec := app.request(http.MethodPost, "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	d := data(t, rec)
	user := d["user"].(map[string]interface{})
	return d["token"].(string), user["id"].(string)
}

func (app *testApp) createExpense(t *testing.T, token, amount string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Rent","amount":%s,"category":"Utilities","date":"2026-02-20","description":"monthly rent"}`, amount)
	rec := app.request(http.MethodPost, "/api/v1/expenses", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense failed: %d %s", rec.Code, rec.Body.String())
	}
	return data(t, rec)["id"].(string)
}

func (app *testApp) createIncome(t *testing.T, token, amount string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Salary","amount":%s,"category":"Salary","date":"2026-02-03"}`, amount)
	rec := app.request(http.MethodPost, "/api/v1/incomes", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create income failed: %d %s", rec.Code, rec.Body.String())
	}
	return data(t, rec)["id"].(string)
}

func (app *testApp) createTransaction(t *testing.T, token, txType, factID, date string) *httptest.ResponseRecorder {
	t.Helper()
	body := fmt.Sprintf(`{"type":%q,"fact_id":%q,"date":%q}`, txType, factID, date)
	return app.request(http.MethodPost, "/api/v1/transactions", body, token)
}

func (app *testApp) budget(t *testing.T, token string) float64 {
	t.Helper()
	rec := app.request(http.MethodGet, "/api/v1/profile", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile failed: %d %s", rec.Code, rec.Body.String())
	}
	return data(t, rec)["budget"].(float64)
}
