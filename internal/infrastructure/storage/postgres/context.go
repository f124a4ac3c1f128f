package postgres

import (
	"context"
	"fmt"

	"valora/internal/core/tenant"
)

// MustGetTxManager pulls the concrete *TxManager out of the context for
// infrastructure code that needs GetQuerier or GetTx. Domain code stays
// on the tx.Manager interface instead.
func MustGetTxManager(ctx context.Context) *TxManager {
	manager := tenant.MustGetTxManager(ctx)
	pg, ok := manager.(*TxManager)
	if !ok || pg == nil {
		panic(fmt.Sprintf("TxManager in context has unexpected type: %T", manager))
	}
	return pg
}
