// Package export renders the ledger as CSV, Excel workbooks and PNG charts.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/finance"
)

// SheetName is the worksheet holding the financial report.
const SheetName = "Financial Report"

// Report is the financial report of one month selection.
type Report struct {
	Period      string
	GeneratedOn time.Time
	Totals      finance.Totals
	Ledger      []finance.LedgerRow
	formatter   *core.Formatter
}

// BuildReport selects txs by month ("all" or YYYY-MM) and computes the
// summary and running balance.
func BuildReport(txs []core.Transaction, month string, now time.Time, f *core.Formatter) (*Report, error) {
	if month == "" {
		month = finance.AllMonths
	}
	selected, err := finance.FilterByMonth(txs, month)
	if err != nil {
		return nil, err
	}
	if f == nil {
		f = core.NewFormatter(core.DefaultCurrency, core.DefaultLocale)
	}
	return &Report{
		Period:      periodLabel(month),
		GeneratedOn: now,
		Totals:      finance.ComputeTotals(selected),
		Ledger:      finance.RunningBalance(selected),
		formatter:   f,
	}, nil
}

func periodLabel(month string) string {
	if month == "" || month == finance.AllMonths {
		return "All Time"
	}
	t, err := core.ParseMonthKey(month, time.UTC)
	if err != nil {
		return month
	}
	return t.Format("January 2006")
}

// Filename returns the download name of the report for month.
func Filename(month, ext string) string {
	if month == "" {
		month = finance.AllMonths
	}
	return fmt.Sprintf("financial-report-%s.%s", month, ext)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Rows lays the report out as a grid: a summary block followed by the
// transaction details in date order with a running balance.
func (r *Report) Rows() [][]any {
	f := r.formatter
	rows := [][]any{
		{"PERSONAL FINANCE TRACKER"},
		{"FINANCIAL REPORT"},
		{},
		{"Generated on:", r.GeneratedOn.Format("January 02, 2006")},
		{"Report Period:", r.Period},
		{"Total Transactions:", len(r.Ledger)},
		{},
		{"FINANCIAL SUMMARY"},
		{"Total Income:", f.Format(r.Totals.Income)},
		{"Total Expenses:", f.Format(r.Totals.Expenses)},
		{"Net Balance:", f.Format(r.Totals.Balance)},
		{},
		{},
		{"TRANSACTION DETAILS"},
		{},
		{"Date", "Type", "Category", "Description", "Amount", "Running Balance"},
	}
	for _, row := range r.Ledger {
		amount, _ := row.Amount.Round(2).Float64()
		balance, _ := row.RunningBalance.Round(2).Float64()
		rows = append(rows, []any{
			row.Date.Format("01/02/2006"),
			titleCase(string(row.Type)),
			row.Category,
			row.Description,
			amount,
			balance,
		})
	}
	return rows
}

// DetailHeaderRow is the 1-based row of the transaction details header.
const DetailHeaderRow = 16

var csvHeader = []string{"Date", "Amount", "Description", "Category", "Type"}

// WriteCSV writes txs oldest first in the import template layout, so an
// export can be imported again.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range finance.RunningBalance(txs) {
		rec := []string{
			row.Date.Format("2006-01-02"),
			row.Amount.StringFixed(2),
			row.Description,
			row.Category,
			string(row.Type),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
