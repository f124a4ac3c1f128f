package registration

import (
	"context"
	"fmt"

	"valora/internal/core/entity"
	"valora/internal/core/id"
	"valora/internal/core/tenant"
	"valora/internal/domain/posting"
	"valora/pkg/logger"
)

// Service updates fulfillment state from posted stock logs. It runs inside
// the posting transaction, so a failed update rolls the posting back.
type Service struct {
	repo Repository
}

// NewService creates a new fulfillment tracking service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ConsumeStockLogs implements posting.LogConsumer. Outbound logs carrying a
// sale order reference add to the delivered quantity; inbound ones (returns,
// unpost reversals) subtract.
func (s *Service) ConsumeStockLogs(ctx context.Context, logs []*entity.StockLog) error {
	updated := 0
	for _, l := range logs {
		if l.SaleOrderID == nil || id.IsNil(*l.SaleOrderID) {
			continue
		}

		delta := l.Quantity
		if l.StockType == entity.StockTypeIn {
			delta = delta.Neg()
		}

		if err := s.repo.AccumulateDelivered(ctx, l.Scope, *l.SaleOrderID, l.ProductID, delta, l.PostingDate); err != nil {
			return fmt.Errorf("accumulate delivered: %w", err)
		}
		updated++
	}

	if updated > 0 {
		logger.Debug(ctx, "updated order fulfillment", "logs", updated)
	}
	return nil
}

// FulfillmentForOrder returns the per-product delivered state of a sale order.
func (s *Service) FulfillmentForOrder(ctx context.Context, scope tenant.Scope, saleOrderID id.ID) ([]OrderFulfillment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return s.repo.GetBySaleOrder(ctx, scope, saleOrderID)
}

var _ posting.LogConsumer = (*Service)(nil)
