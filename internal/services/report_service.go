package services

import (
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"flowtrack/internal/cache"
	apperrors "flowtrack/internal/errors"
	"flowtrack/internal/metrics"
	"flowtrack/internal/models"
)

const (
	minReportYear = 1970
	maxReportYear = 9999
)

// reportService aggregates transactions into calendar-year reports.
type reportService struct {
	db    *gorm.DB
	cache cache.ReportCache
}

// NewReportService creates a new ReportServicer. A nil cache disables caching.
func NewReportService(db *gorm.DB, reportCache cache.ReportCache) ReportServicer {
	if reportCache == nil {
		reportCache = cache.NopReportCache{}
	}
	return &reportService{db: db, cache: reportCache}
}

type monthTypeTotal struct {
	Month int
	Type  string
	Total decimal.Decimal
}

// monthExpr extracts the UTC calendar month of transaction_date as an
// integer. Postgres would otherwise use the session time zone.
func monthExpr(dialect string) string {
	if dialect == "sqlite" {
		return "CAST(strftime('%m', transaction_date) AS INTEGER)"
	}
	return "CAST(EXTRACT(MONTH FROM transaction_date AT TIME ZONE 'UTC') AS INTEGER)"
}

// monthlyTotalsQuery sums a user's live transactions per month and type
// within the UTC calendar year.
func monthlyTotalsQuery(dialect, userID string, year int) (string, []interface{}, error) {
	span := now.With(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))
	month := monthExpr(dialect)

	return sq.Select(month+" AS month", "type", "COALESCE(SUM(amount), 0) AS total").
		From("transactions").
		Where(sq.Eq{"user_id": userID, "deleted_at": nil}).
		Where(sq.GtOrEq{"transaction_date": span.BeginningOfYear()}).
		Where(sq.LtOrEq{"transaction_date": span.EndOfYear()}).
		GroupBy(month, "type").
		ToSql()
}

// YearlyTotals returns twelve rows, January first, with the user's expense
// and income sums for each month of the year. Months without transactions
// are zero.
func (s *reportService) YearlyTotals(userID string, year int) ([]models.MonthTotals, error) {
	if year < minReportYear || year > maxReportYear {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("year must be between %d and %d", minReportYear, maxReportYear))
	}

	// The generation is read before the query so that a ledger change
	// committed meanwhile orphans this fill instead of being hidden by it.
	gen, cacheable := s.cache.Generation(userID)
	if cacheable {
		if totals, ok := s.cache.GetMonthlyTotals(userID, gen, year); ok {
			metrics.ReportCacheLookups.WithLabelValues(metrics.CacheHit).Inc()
			return totals, nil
		}
	}
	metrics.ReportCacheLookups.WithLabelValues(metrics.CacheMiss).Inc()

	query, args, err := monthlyTotalsQuery(s.db.Dialector.Name(), userID, year)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rows []monthTypeTotal
	if err := s.db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := make([]models.MonthTotals, 12)
	for i := range totals {
		totals[i] = models.MonthTotals{Month: i + 1, Expense: decimal.Zero, Income: decimal.Zero}
	}
	for _, r := range rows {
		if r.Month < 1 || r.Month > 12 {
			continue
		}
		switch models.TransactionType(r.Type) {
		case models.TransactionTypeExpense:
			totals[r.Month-1].Expense = r.Total
		case models.TransactionTypeIncome:
			totals[r.Month-1].Income = r.Total
		}
	}

	if cacheable {
		s.cache.SetMonthlyTotals(userID, gen, year, totals)
	}
	return totals, nil
}

// MonthlyReport is YearlyTotals with each month's savings and the user's
// current budget added.
func (s *reportService) MonthlyReport(userID string, year int) ([]models.MonthSummary, error) {
	var user models.User
	if err := s.db.Select("id", "budget").Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals, err := s.YearlyTotals(userID, year)
	if err != nil {
		return nil, err
	}

	report := make([]models.MonthSummary, len(totals))
	for i, t := range totals {
		report[i] = models.MonthSummary{
			MonthTotals: t,
			Savings:     t.Income.Sub(t.Expense),
			Budget:      user.Budget,
		}
	}
	return report, nil
}
