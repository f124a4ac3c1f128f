package balance_init

import "valora/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Opening balances are rare one-off documents, gapless numbering is cheap.
	NumeratorStrategy = numerator.StrategyStrict
)
