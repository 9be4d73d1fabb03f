// Package statement renders the yearly budget statement as a PDF.
package statement

import (
	"fmt"
	"io"
	"time"

	"flowtrack/internal/models"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
)

// Statement is the data printed on one yearly statement.
type Statement struct {
	Holder      string
	Email       string
	Year        int
	Budget      decimal.Decimal
	Months      []models.MonthSummary
	GeneratedAt time.Time
}

var headerW = []float64{40, 48, 48, 46}

// Render writes the statement PDF to w.
func Render(w io.Writer, s Statement) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetTitle(fmt.Sprintf("FlowTrack statement %d", s.Year), false)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, fmt.Sprintf("FlowTrack Statement %d", s.Year))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Account holder: "+s.Holder+" <"+s.Email+">")
	pdf.Ln(5)
	pdf.Cell(0, 6, "Generated: "+s.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	pdf.Ln(10)

	var totalExpense, totalIncome decimal.Decimal
	for _, m := range s.Months {
		totalExpense = totalExpense.Add(m.Expense)
		totalIncome = totalIncome.Add(m.Income)
	}

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)
	sumW := []float64{45, 45, 46, 46}
	pdf.CellFormat(sumW[0], 10, "Income", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[1], 10, "Expense", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[2], 10, "Savings", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[3], 10, "Current budget", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(sumW[0], 10, FormatMoney(totalIncome), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[1], 10, FormatMoney(totalExpense), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[2], 10, FormatMoney(totalIncome.Sub(totalExpense)), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[3], 10, FormatMoney(s.Budget), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	writeHeader(pdf)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(30, 30, 30)
	for _, m := range s.Months {
		pdf.CellFormat(headerW[0], 8, time.Month(m.Month).String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(headerW[1], 8, FormatMoney(m.Income), "1", 0, "R", false, 0, "")
		pdf.CellFormat(headerW[2], 8, FormatMoney(m.Expense), "1", 0, "R", false, 0, "")
		pdf.CellFormat(headerW[3], 8, FormatMoney(m.Savings), "1", 1, "R", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build statement pdf: %w", err)
	}
	return pdf.Output(w)
}

func writeHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(245, 245, 245)
	pdf.CellFormat(headerW[0], 8, "MONTH", "1", 0, "L", true, 0, "")
	pdf.CellFormat(headerW[1], 8, "INCOME", "1", 0, "R", true, 0, "")
	pdf.CellFormat(headerW[2], 8, "EXPENSE", "1", 0, "R", true, 0, "")
	pdf.CellFormat(headerW[3], 8, "SAVINGS", "1", 1, "R", true, 0, "")
}

// FormatMoney prints an amount with two decimals and thousands separators.
func FormatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]

	out := make([]byte, 0, len(whole)+len(whole)/3)
	for i := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, whole[i])
	}
	return sign + string(out) + "." + frac
}
