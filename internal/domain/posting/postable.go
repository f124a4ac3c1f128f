// Package posting provides the document posting engine: the single path by
// which a business document's stock effect enters the ledger. A document
// projects itself into movement records; the engine saves the document and
// records the movements atomically, so a ledger failure always blocks the
// posting.
package posting

import (
	"context"
	"time"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
)

// Postable is implemented by documents that record stock movements.
// entity.Document provides most of it; concrete documents add
// GetDocumentType and ProjectMovements.
type Postable interface {
	GetID() id.ID
	GetDocumentType() string
	GetScope() tenant.Scope
	GetNumber() string
	GetDate() time.Time
	GetPostedVersion() int
	IsPosted() bool

	// CanPost validates the document for posting.
	CanPost(ctx context.Context) error

	MarkPosted()
	MarkUnposted()

	// ProjectMovements builds the document's stock effect. Quantities, costs
	// and values are already converted to each product's base inventory unit
	// of measure; outbound movements leave cost and value at zero for the
	// ledger to resolve.
	ProjectMovements(ctx context.Context) ([]entity.MovementRecord, error)
}

// BalanceInitializer is implemented by documents whose movements seed the
// manual opening balance instead of recording regular stock flow.
type BalanceInitializer interface {
	InitializesBalance() bool
}
