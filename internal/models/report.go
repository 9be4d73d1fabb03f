package models

import "github.com/shopspring/decimal"

// MonthTotals is the expense and income sum for one calendar month.
type MonthTotals struct {
	Month   int             `json:"month"`
	Expense decimal.Decimal `json:"expense"`
	Income  decimal.Decimal `json:"income"`
}

// MonthSummary is a MonthTotals row with savings and the user's current
// budget overlaid.
type MonthSummary struct {
	MonthTotals
	Savings decimal.Decimal `json:"savings"`
	Budget  decimal.Decimal `json:"budget"`
}
