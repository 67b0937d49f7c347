package memory

import (
	"context"
	"fmt"
	"sync"

	ports "fintrack/internal/sheets"
)

var _ ports.ReportPublisher = (*Publisher)(nil)

// Publisher keeps the last published grid in memory. It stands in for
// Google Sheets when no spreadsheet is configured.
type Publisher struct {
	mu        sync.Mutex
	sheet     string
	rows      [][]any
	published int
}

func New(sheet string) *Publisher {
	if sheet == "" {
		sheet = "Report"
	}
	return &Publisher{sheet: sheet}
}

// Publish stores a copy of rows and returns a synthetic A1 range.
func (p *Publisher) Publish(_ context.Context, rows [][]any) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	width := 0
	p.rows = make([][]any, len(rows))
	for i, row := range rows {
		p.rows[i] = append([]any(nil), row...)
		width = max(width, len(row))
	}
	p.published++
	if len(rows) == 0 {
		return fmt.Sprintf("%s!A1", p.sheet), nil
	}
	return fmt.Sprintf("%s!A1:%c%d", p.sheet, 'A'+rune(max(width, 1)-1), len(rows)), nil
}

// Rows returns the last published grid.
func (p *Publisher) Rows() [][]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]any(nil), p.rows...)
}

// Count reports how many times Publish was called.
func (p *Publisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published
}
