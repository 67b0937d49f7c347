package sheets

import (
	"context"
)

// Ports for outbound adapters.
type (
	// ReportPublisher replaces the contents of a report sheet with rows.
	ReportPublisher interface {
		Publish(ctx context.Context, rows [][]any) (rangeRef string, err error)
	}
)
