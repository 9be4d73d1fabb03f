package handlers

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "flowtrack/internal/errors"
	"flowtrack/internal/models"
	"flowtrack/internal/services"
)

type mockReportService struct {
	yearlyTotalsFn  func(userID string, year int) ([]models.MonthTotals, error)
	monthlyReportFn func(userID string, year int) ([]models.MonthSummary, error)
}

func (m *mockReportService) YearlyTotals(userID string, year int) ([]models.MonthTotals, error) {
	if m.yearlyTotalsFn != nil {
		return m.yearlyTotalsFn(userID, year)
	}
	return nil, nil
}

func (m *mockReportService) MonthlyReport(userID string, year int) ([]models.MonthSummary, error) {
	if m.monthlyReportFn != nil {
		return m.monthlyReportFn(userID, year)
	}
	return nil, nil
}

func twelveMonths() []models.MonthSummary {
	out := make([]models.MonthSummary, 12)
	for i := range out {
		out[i] = models.MonthSummary{
			MonthTotals: models.MonthTotals{Month: i + 1, Income: decimal.Zero, Expense: decimal.Zero},
			Savings:     decimal.Zero,
			Budget:      decimal.NewFromInt(300),
		}
	}
	out[1].Income = decimal.NewFromInt(500)
	out[1].Expense = decimal.NewFromInt(200)
	out[1].Savings = decimal.NewFromInt(300)
	return out
}

func setupReportRouter(handler *ReportHandler) *gin.Engine {
	r := gin.New()
	auth := injectUserID(testUserID)
	r.GET("/reports/monthly", auth, handler.MonthlyTotals)
	r.GET("/reports/monthly/budget", auth, handler.MonthlyBudgetReport)
	r.GET("/reports/statement.pdf", auth, handler.Statement)
	return r
}

func newReportHandler(reports services.ReportServicer) *ReportHandler {
	users := &mockUserService{
		getUserByIDFn: func(id string) (*models.User, error) {
			return &models.User{Base: models.Base{ID: id}, Username: "alice", Email: "alice@example.com", Budget: decimal.NewFromInt(300)}, nil
		},
	}
	return NewReportHandler(reports, users)
}

func TestReportHandler_MonthlyTotals(t *testing.T) {
	var gotYear int
	svc := &mockReportService{
		yearlyTotalsFn: func(_ string, year int) ([]models.MonthTotals, error) {
			gotYear = year
			if year < 1970 {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "year must be between 1970 and 9999")
			}
			rows := make([]models.MonthTotals, 12)
			for i := range rows {
				rows[i] = models.MonthTotals{Month: i + 1}
			}
			return rows, nil
		},
	}
	r := setupReportRouter(newReportHandler(svc))

	rec := doRequest(r, http.MethodGet, "/reports/monthly?year=2026", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := parseJSON(t, rec)
	rows, _ := result["data"].([]interface{})
	if len(rows) != 12 || gotYear != 2026 {
		t.Errorf("expected 12 rows for 2026, got %d rows for %d", len(rows), gotYear)
	}

	for _, q := range []string{"", "?year=abc", "?year=1800"} {
		rec = doRequest(r, http.MethodGet, "/reports/monthly"+q, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestReportHandler_MonthlyBudgetReport(t *testing.T) {
	svc := &mockReportService{
		monthlyReportFn: func(string, int) ([]models.MonthSummary, error) { return twelveMonths(), nil },
	}
	r := setupReportRouter(newReportHandler(svc))

	rec := doRequest(r, http.MethodGet, "/reports/monthly/budget?year=2026", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rows, _ := parseJSON(t, rec)["data"].([]interface{})
	if len(rows) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(rows))
	}
	feb, _ := rows[1].(map[string]interface{})
	if feb["month"] != float64(2) || feb["income"] != float64(500) || feb["expense"] != float64(200) ||
		feb["savings"] != float64(300) || feb["budget"] != float64(300) {
		t.Errorf("unexpected february row: %v", feb)
	}
}

func TestReportHandler_Statement(t *testing.T) {
	svc := &mockReportService{
		monthlyReportFn: func(string, int) ([]models.MonthSummary, error) { return twelveMonths(), nil },
	}
	r := setupReportRouter(newReportHandler(svc))

	rec := doRequest(r, http.MethodGet, "/reports/statement.pdf?year=2026", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("expected a PDF body")
	}
}
