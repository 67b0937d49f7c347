package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagPattern  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// normalizeOFX repairs formatting mistakes common in bank-issued OFX files.
func normalizeOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagPattern.ReplaceAllString(content, "$1>")
}

// ReadOFX parses bank and credit card statements from an OFX/QFX file.
// Credits become income and debits expenses, all in DefaultCategory.
// Transactions repeating a FITID already seen in the file are dropped.
func ReadOFX(ctx context.Context, r io.Reader, now time.Time) ([]core.Transaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(normalizeOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("parse OFX file: %w", err)
	}

	var lists []*ofxgo.TransactionList
	currency := map[*ofxgo.TransactionList]string{}
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList)
			currency[stmt.BankTranList] = stmt.CurDef.String()
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList)
			currency[stmt.BankTranList] = stmt.CurDef.String()
		}
	}

	seen := map[string]bool{}
	out := []core.Transaction{}
	for _, list := range lists {
		for _, t := range list.Transactions {
			fitID := string(t.FiTID)
			if fitID != "" && seen[fitID] {
				continue
			}
			seen[fitID] = true

			tx, ok := convertOFX(t, now)
			if !ok {
				continue
			}
			tx.Currency = currency[list]
			out = append(out, tx)
		}
	}

	slog.InfoContext(ctx, "Parsed OFX file",
		"transactions", len(out),
		"bank_statements", len(resp.Bank),
		"cc_statements", len(resp.CreditCard))
	return out, nil
}

func convertOFX(t ofxgo.Transaction, now time.Time) (core.Transaction, bool) {
	amount, err := decimal.NewFromString(t.TrnAmt.FloatString(2))
	if err != nil || amount.IsZero() {
		return core.Transaction{}, false
	}
	typ := core.Expense
	if amount.IsPositive() {
		typ = core.Income
	}
	tx := core.Transaction{
		ID:          core.NewID(),
		Amount:      amount.Abs(),
		Type:        typ,
		Category:    DefaultCategory,
		Description: core.Truncate(ofxDescription(t), core.MaxDescriptionLength),
		Date:        t.DtPosted.Time,
		CreatedAt:   now,
	}
	if t.FiTID != "" {
		tx.Notes = "FITID " + string(t.FiTID)
	}
	return tx, true
}

// ofxDescription prefers the payee, then the name, then the memo.
func ofxDescription(t ofxgo.Transaction) string {
	if t.Payee != nil && t.Payee.Name != "" {
		return strings.TrimSpace(string(t.Payee.Name))
	}
	if name := strings.TrimSpace(string(t.Name)); name != "" {
		return name
	}
	if memo := strings.TrimSpace(string(t.Memo)); memo != "" {
		return memo
	}
	return DefaultDescription
}
