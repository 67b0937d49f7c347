package importer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
)

var importNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

const bankCSV = `Date,Amount,Memo,Category,Type
2024-01-15,-50.00,Grocery shopping,Food,expense
01/16/2024,3000.00,Salary payment,Salary,Income
2024-01-17,25.99,,,

2024-01-18,0,Zero row,Food,expense
not a date,12.00,Bad date,Food,expense
2024-01-19,abc,Bad amount,Food,expense
`

func TestReadCSVAndConvert(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(bankCSV))
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Amount", "Memo", "Category", "Type"}, table.Headers)
	assert.Len(t, table.Rows, 6)

	m := DetectMapping(table.Headers)
	assert.Equal(t, Mapping{Date: "Date", Amount: "Amount", Description: "Memo", Category: "Category", Type: "Type"}, m)

	res, err := Convert(table, m, time.UTC, importNow)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Skipped)
	require.Len(t, res.Transactions, 3)

	grocery := res.Transactions[0]
	assert.True(t, grocery.Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, core.Expense, grocery.Type)
	assert.Equal(t, "Food", grocery.Category)
	assert.Equal(t, importNow, grocery.CreatedAt)

	salary := res.Transactions[1]
	assert.Equal(t, core.Income, salary.Type)
	assert.Equal(t, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), salary.Date)

	defaults := res.Transactions[2]
	assert.Equal(t, DefaultCategory, defaults.Category)
	assert.Equal(t, DefaultDescription, defaults.Description)
	assert.Equal(t, core.Expense, defaults.Type)
	for _, tx := range res.Transactions {
		assert.NoError(t, tx.Validate())
	}
}

func TestConvert_MappingErrors(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(bankCSV))
	require.NoError(t, err)

	_, err = Convert(table, Mapping{Date: "Date"}, nil, importNow)
	assert.ErrorIs(t, err, ErrMappingIncomplete)

	_, err = Convert(table, Mapping{Date: "Date", Amount: "Value"}, nil, importNow)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestConvert_NoTypeColumnIsExpense(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("when,total\n2024-02-01,-10\n2024-02-02,income 5\n"))
	require.NoError(t, err)

	res, err := Convert(table, Mapping{Date: "when", Amount: "total"}, time.UTC, importNow)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	for _, tx := range res.Transactions {
		assert.Equal(t, core.Expense, tx.Type)
	}
}

func TestConvert_SubCentAmountIsSkipped(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("Date,Amount\n2024-01-16,0.001\n2024-01-17,-0.004\n2024-01-18,0.005\n"))
	require.NoError(t, err)

	res, err := Convert(table, DetectMapping(table.Headers), time.UTC, importNow)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Transactions, 1)
	assert.True(t, res.Transactions[0].Amount.Equal(decimal.RequireFromString("0.01")))
	assert.NoError(t, res.Transactions[0].Validate())
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestTemplateRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), "Date,Amount,Description,Category,Type\n"))

	table, err := ReadCSV(&buf)
	require.NoError(t, err)
	res, err := Convert(table, DetectMapping(table.Headers), time.UTC, importNow)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 3)
	assert.Equal(t, core.Income, res.Transactions[1].Type)
	assert.Equal(t, "Netflix subscription", res.Transactions[2].Description)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Date", "Amount", "Description"},
		{"2024-02-10", "42.10", "Books"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := ReadXLSX(&buf)
	require.NoError(t, err)
	res, err := Convert(table, DetectMapping(table.Headers), time.UTC, importNow)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Books", res.Transactions[0].Description)
	assert.True(t, res.Transactions[0].Amount.Equal(decimal.RequireFromString("42.10")))
}

func TestParseDate(t *testing.T) {
	tests := map[string]time.Time{
		"2024-01-05":           time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		"1/5/2024":             time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		"Jan 5, 2024":          time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		"2024-01-05T10:30:00Z": time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC),
	}
	for in, want := range tests {
		got, err := ParseDate(in, time.UTC)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "ParseDate(%q) = %v, want %v", in, got, want)
	}
	_, err := ParseDate("yesterday", time.UTC)
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}
