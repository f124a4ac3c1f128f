// Package numerator holds the document auto-numbering contract. The
// database-backed implementation lives in pkg/numerator.
package numerator

import (
	"context"
	"time"
)

// Generator issues sequential document numbers.
//
// Implementations resolve their database connection from context
// (tenant.GetPool or tenant.GetTxManager) in the DB-per-tenant setup.
type Generator interface {
	// GetNextNumber generates the next number in the configured pattern,
	// e.g. GR-2026-00001 for a goods receipt.
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber seeds the counter, used when migrating numbering
	// from another system.
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
