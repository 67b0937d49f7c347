// Package importer turns bank exports and spreadsheets into transactions.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
)

const (
	DefaultCategory    = "Imported"
	DefaultDescription = "Imported transaction"
)

var (
	ErrMappingIncomplete = errors.New("date and amount columns must be mapped")
	ErrUnknownColumn     = errors.New("mapped column not in header")
	ErrEmptyFile         = errors.New("file has no header row")
)

// Mapping names the source column of each transaction field. Date and
// Amount are required; the others fall back to defaults.
type Mapping struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Type        string `json:"type"`
}

// Validate checks m against the header of t.
func (m Mapping) Validate(t *Table) error {
	if m.Date == "" || m.Amount == "" {
		return ErrMappingIncomplete
	}
	for _, col := range []string{m.Date, m.Amount, m.Description, m.Category, m.Type} {
		if col != "" && !t.HasColumn(col) {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, col)
		}
	}
	return nil
}

var headerAliases = map[string][]string{
	"date":        {"date", "transaction date", "posted", "posting date", "booking date"},
	"amount":      {"amount", "value", "sum", "transaction amount"},
	"description": {"description", "memo", "details", "payee", "name", "narrative"},
	"category":    {"category", "group"},
	"type":        {"type", "transaction type", "kind", "direction"},
}

// DetectMapping maps well-known header names, ignoring case and surrounding
// space. Unrecognised fields stay empty.
func DetectMapping(headers []string) Mapping {
	find := func(field string) string {
		for _, alias := range headerAliases[field] {
			for _, h := range headers {
				if strings.EqualFold(strings.TrimSpace(h), alias) {
					return h
				}
			}
		}
		return ""
	}
	return Mapping{
		Date:        find("date"),
		Amount:      find("amount"),
		Description: find("description"),
		Category:    find("category"),
		Type:        find("type"),
	}
}

// Table is a header row plus records keyed by header.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

func newTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	t := &Table{Headers: make([]string, len(records[0]))}
	for i, h := range records[0] {
		t.Headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ReadCSV reads a CSV file with a header row. Rows may have fewer fields
// than the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return newTable(records)
}

// ReadXLSX reads the first worksheet of an Excel workbook.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return newTable(records)
}

// Result is the outcome of converting a table.
type Result struct {
	Transactions []core.Transaction `json:"transactions"`
	Skipped      int                `json:"skipped"`
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"01-02-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate accepts ISO dates and the common US spreadsheet formats.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
}

// Convert maps every row of t to a transaction. Amounts are taken as absolute
// values and the type is income only when the type cell contains "income".
// Rows whose amount is missing, unparseable or zero once rounded to cents,
// or whose date cannot be parsed, are skipped and counted.
func Convert(t *Table, m Mapping, loc *time.Location, now time.Time) (Result, error) {
	if err := m.Validate(t); err != nil {
		return Result{}, err
	}
	if loc == nil {
		loc = time.UTC
	}

	res := Result{Transactions: []core.Transaction{}}
	for _, row := range t.Rows {
		amount, err := core.ParseSignedAmount(row[m.Amount])
		if err == nil {
			amount = amount.Abs().Round(2)
		}
		if err != nil || !amount.IsPositive() {
			res.Skipped++
			continue
		}
		date, err := ParseDate(row[m.Date], loc)
		if err != nil {
			res.Skipped++
			continue
		}

		typ := core.Expense
		if m.Type != "" && strings.Contains(strings.ToLower(row[m.Type]), "income") {
			typ = core.Income
		}
		res.Transactions = append(res.Transactions, core.Transaction{
			ID:          core.NewID(),
			Amount:      amount,
			Type:        typ,
			Category:    orDefault(row[m.Category], DefaultCategory),
			Description: core.Truncate(orDefault(row[m.Description], DefaultDescription), core.MaxDescriptionLength),
			Date:        date,
			CreatedAt:   now,
		})
	}
	return res, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

var templateRows = [][]string{
	{"Date", "Amount", "Description", "Category", "Type"},
	{"2024-01-15", "50.00", "Grocery shopping", "Food", "expense"},
	{"2024-01-16", "3000.00", "Salary payment", "Salary", "income"},
	{"2024-01-17", "25.99", "Netflix subscription", "Entertainment", "expense"},
}

// WriteTemplate writes a sample CSV whose header DetectMapping recognises.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(templateRows); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}
