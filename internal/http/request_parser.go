// Package http provides the JSON API server and its handlers.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/importer"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 10 << 20
)

// errBadRequest marks malformed requests, as opposed to well-formed input
// that fails validation.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields
// and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is empty")
		}
		return badRequest("invalid JSON body: %v", err)
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

// sanitizeInput removes control characters except tab, newline and carriage
// return and trims whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// Date accepts either YYYY-MM-DD or RFC 3339 in JSON bodies.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
	}
	d.Time = t
	return nil
}

// orNow returns d, or now when d is unset.
func (d Date) orNow(now time.Time) time.Time {
	if d.IsZero() {
		return now
	}
	return d.Time
}

// Amount is a money value sent either as a JSON number or a string. The text
// is kept so ParseAmount applies the same rules to both.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a number or a string: %w", err)
	}
	*a = Amount(n)
	return nil
}

type transactionRequest struct {
	Amount             Amount   `json:"amount"`
	Type               string   `json:"type"`
	Category           string   `json:"category"`
	Description        string   `json:"description"`
	Date               Date     `json:"date"`
	Tags               []string `json:"tags"`
	Recurring          bool     `json:"recurring"`
	RecurringFrequency string   `json:"recurringFrequency"`
	Notes              string   `json:"notes"`
	ReceiptURL         string   `json:"receiptUrl"`
	TaxDeductible      bool     `json:"taxDeductible"`
	Currency           string   `json:"currency"`
}

func (req transactionRequest) toTransaction(now time.Time) (core.Transaction, error) {
	amount, err := core.ParseAmount(string(req.Amount))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", req.Amount, err)
	}
	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if tag = sanitizeInput(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return core.Transaction{
		Amount:             amount,
		Type:               core.TransactionType(strings.ToLower(strings.TrimSpace(req.Type))),
		Category:           sanitizeInput(req.Category),
		Description:        sanitizeInput(req.Description),
		Date:               req.Date.orNow(now),
		Tags:               tags,
		Recurring:          req.Recurring,
		RecurringFrequency: core.Period(req.RecurringFrequency),
		Notes:              sanitizeInput(req.Notes),
		ReceiptURL:         strings.TrimSpace(req.ReceiptURL),
		TaxDeductible:      req.TaxDeductible,
		Currency:           strings.TrimSpace(req.Currency),
	}, nil
}

type goalRequest struct {
	Name         string           `json:"name"`
	TargetAmount decimal.Decimal  `json:"targetAmount"`
	TargetDate   Date             `json:"targetDate"`
	Category     string           `json:"category"`
	TrackIncome  bool             `json:"trackIncome"`
	Type         string           `json:"type"`
	Milestones   []core.Milestone `json:"milestones"`
}

func (req goalRequest) toGoal() core.Goal {
	return core.Goal{
		Name:         sanitizeInput(req.Name),
		TargetAmount: req.TargetAmount,
		TargetDate:   req.TargetDate.Time,
		Category:     sanitizeInput(req.Category),
		TrackIncome:  req.TrackIncome,
		Type:         core.GoalType(req.Type),
		Milestones:   req.Milestones,
	}
}

type billRequest struct {
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   Date            `json:"dueDate"`
	Category  string          `json:"category"`
	Recurring bool            `json:"recurring"`
	Frequency string          `json:"frequency"`
	Notes     string          `json:"notes"`
}

func (req billRequest) toBill() core.Bill {
	return core.Bill{
		Name:      sanitizeInput(req.Name),
		Amount:    req.Amount,
		DueDate:   req.DueDate.Time,
		Category:  sanitizeInput(req.Category),
		Recurring: req.Recurring,
		Frequency: core.Period(req.Frequency),
		Notes:     sanitizeInput(req.Notes),
	}
}

type recurringRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Frequency   string          `json:"frequency"`
	NextDate    Date            `json:"nextDate"`
	Active      *bool           `json:"active"`
}

func (req recurringRequest) toRecurring(now time.Time) core.RecurringTransaction {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return core.RecurringTransaction{
		Amount:      req.Amount,
		Category:    sanitizeInput(req.Category),
		Type:        core.TransactionType(strings.ToLower(req.Type)),
		Description: sanitizeInput(req.Description),
		Frequency:   core.Period(req.Frequency),
		NextDate:    req.NextDate.orNow(now),
		Active:      active,
	}
}

type progressRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// parseMonth reads the month query parameter: "all", YYYY-MM, or the
// default when absent.
func parseMonth(query url.Values, def string) (string, error) {
	month := strings.TrimSpace(query.Get("month"))
	if month == "" {
		return def, nil
	}
	if month == finance.AllMonths {
		return month, nil
	}
	if _, err := core.ParseMonthKey(month, time.UTC); err != nil {
		return "", err
	}
	return month, nil
}

// parseType reads a transaction type parameter, defaulting to expense.
func parseType(query url.Values) (core.TransactionType, error) {
	v := strings.ToLower(strings.TrimSpace(query.Get("type")))
	if v == "" {
		return core.Expense, nil
	}
	t := core.TransactionType(v)
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("%w: %q", err, v)
	}
	return t, nil
}

func parseDecimalParam(query url.Values, name string) (*decimal.Decimal, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, badRequest("invalid %s %q", name, v)
	}
	return &d, nil
}

// parseSearchQuery maps the transaction list parameters q, type, month, min,
// max, sort and order to a finance.Query.
func parseSearchQuery(query url.Values) (finance.Query, error) {
	q := finance.Query{
		Text:      sanitizeInput(query.Get("q")),
		Month:     strings.TrimSpace(query.Get("month")),
		SortBy:    finance.SortField(strings.ToLower(strings.TrimSpace(query.Get("sort")))),
		Ascending: strings.EqualFold(query.Get("order"), "asc"),
	}
	if v := strings.TrimSpace(query.Get("type")); v != "" {
		t := core.TransactionType(strings.ToLower(v))
		if err := t.Validate(); err != nil {
			return q, fmt.Errorf("%w: %q", err, v)
		}
		q.Type = t
	}
	var err error
	if q.MinAmount, err = parseDecimalParam(query, "min"); err != nil {
		return q, err
	}
	if q.MaxAmount, err = parseDecimalParam(query, "max"); err != nil {
		return q, err
	}
	switch q.SortBy {
	case "", finance.SortByDate, finance.SortByAmount, finance.SortByCategory:
	default:
		return q, badRequest("invalid sort field %q", q.SortBy)
	}
	return q, nil
}

// parseMapping builds a column mapping from query parameters, filling the
// gaps from the header.
func parseMapping(query url.Values, headers []string) importer.Mapping {
	m := importer.DetectMapping(headers)
	override := func(dst *string, name string) {
		if v := strings.TrimSpace(query.Get(name)); v != "" {
			*dst = v
		}
	}
	override(&m.Date, "date")
	override(&m.Amount, "amount")
	override(&m.Description, "description")
	override(&m.Category, "category")
	override(&m.Type, "type")
	return m
}
