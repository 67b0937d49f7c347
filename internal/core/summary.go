package core

import "github.com/shopspring/decimal"

// CategorySummary is the total of one transaction type within one category.
type CategorySummary struct {
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Count     int             `json:"count"`
	AvgAmount decimal.Decimal `json:"avgAmount"`
}

// MonthlyData is a compact summary for a specific year+month. Balance is the
// month's own net, with no carry-over from earlier months.
type MonthlyData struct {
	Month    string          `json:"month"` // YYYY-MM
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}
