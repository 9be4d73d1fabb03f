package statement

import (
	"bytes"
	"testing"
	"time"

	"flowtrack/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":          "0.00",
		"5":          "5.00",
		"150.5":      "150.50",
		"1234":       "1,234.00",
		"1234567.89": "1,234,567.89",
		"-2500.1":    "-2,500.10",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatMoney(decimal.RequireFromString(in)), "input %s", in)
	}
}

func TestRender(t *testing.T) {
	months := make([]models.MonthSummary, 12)
	for i := range months {
		months[i] = models.MonthSummary{
			MonthTotals: models.MonthTotals{Month: i + 1, Expense: decimal.NewFromInt(int64(i * 10)), Income: decimal.NewFromInt(100)},
			Savings:     decimal.NewFromInt(int64(100 - i*10)),
			Budget:      decimal.NewFromInt(500),
		}
	}

	var buf bytes.Buffer
	err := Render(&buf, Statement{
		Holder:      "Ada",
		Email:       "ada@example.com",
		Year:        2026,
		Budget:      decimal.NewFromInt(500),
		Months:      months,
		GeneratedAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "output should be a PDF document")
}
